package entity

import (
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTrackedAccountChecksumsAddress(t *testing.T) {
	acc, err := NewTrackedAccount("ethereum", "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", 3)
	require.NoError(t, err)
	assert.Equal(t, ChainEthereum, acc.Chain)
	assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", acc.Address)
	assert.Equal(t, AaveV3, acc.AaveVersion)
}

func TestNewTrackedAccountRejectsBadInput(t *testing.T) {
	cases := []struct {
		name    string
		chain   string
		address string
		version int
	}{
		{"unknown chain", "SOLANA", "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", 3},
		{"bad address", "POLYGON", "0x1234", 3},
		{"bad version", "POLYGON", "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTrackedAccount(tc.chain, tc.address, tc.version)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidAccount)
		})
	}
}

func TestTrackedAccountKeyIgnoresAddressCase(t *testing.T) {
	a := TrackedAccount{Chain: ChainBase, Address: "0xABCDEF0000000000000000000000000000000001", AaveVersion: AaveV3}
	b := TrackedAccount{Chain: ChainBase, Address: "0xabcdef0000000000000000000000000000000001", AaveVersion: AaveV3}
	assert.Equal(t, a.Key(), b.Key())
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, KindUnsupportedMarket, ErrorKind(fmt.Errorf("resolve: %w", ErrUnsupportedMarket)))
	assert.Equal(t, KindRPCUnavailable, ErrorKind(fmt.Errorf("call: %w", ErrRPCUnavailable)))
	assert.Equal(t, KindContractCallFailed, ErrorKind(fmt.Errorf("call: %w", ErrContractCallFailed)))
	assert.Equal(t, KindInternal, ErrorKind(errors.New("boom")))
}

func TestUserAccountDataHealthFactorIsLastField(t *testing.T) {
	d := UserAccountData{Fields: []*big.Int{big.NewInt(1), big.NewInt(2), big.NewInt(7)}}
	assert.Equal(t, int64(7), d.HealthFactor().Int64())
	assert.Nil(t, UserAccountData{}.HealthFactor())
}
