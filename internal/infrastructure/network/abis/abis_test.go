package abis

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectors(t *testing.T) {
	set := Get()
	cases := map[string][]byte{
		"0261bf8b": set.AddressesProviderV2.Methods[MethodGetLendingPool].ID,
		"026b1d5f": set.AddressesProviderV3.Methods[MethodGetPool].ID,
		"bf92857c": set.PoolV3.Methods[MethodGetUserAccountData].ID,
		"82ad56cb": set.Multicall3.Methods[MethodAggregate3].ID,
	}
	for want, got := range cases {
		assert.Equal(t, want, hex.EncodeToString(got))
	}
	assert.Equal(t, set.PoolV3.Methods[MethodGetUserAccountData].ID, set.LendingPoolV2.Methods[MethodGetUserAccountData].ID)
}

func TestUserReservesOutputsDifferByVersion(t *testing.T) {
	set := Get()
	assert.Len(t, set.UIPoolDataProviderV2.Methods[MethodGetUserReservesData].Outputs, 1)
	assert.Len(t, set.UIPoolDataProviderV3.Methods[MethodGetUserReservesData].Outputs, 2)
}

func TestConvertUserReserves(t *testing.T) {
	method := Get().UIPoolDataProviderV3.Methods[MethodGetUserReservesData]
	in := []UserReserveData{{
		UnderlyingAsset:                 common.HexToAddress("0x01"),
		ScaledATokenBalance:             big.NewInt(5),
		UsageAsCollateralEnabledOnUser:  true,
		StableBorrowRate:                big.NewInt(0),
		ScaledVariableDebt:              big.NewInt(2),
		PrincipalStableDebt:             big.NewInt(0),
		StableBorrowLastUpdateTimestamp: big.NewInt(0),
	}}
	packed, err := method.Outputs.Pack(in, uint8(0))
	require.NoError(t, err)

	out, err := method.Outputs.Unpack(packed)
	require.NoError(t, err)
	got, err := Convert[[]UserReserveData](out[0])
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, in[0].UnderlyingAsset, got[0].UnderlyingAsset)
	assert.Equal(t, int64(2), got[0].ScaledVariableDebt.Int64())
	assert.True(t, got[0].UsageAsCollateralEnabledOnUser)
}

func TestConvertReportsShapeMismatch(t *testing.T) {
	_, err := Convert[[]UserReserveData]("not a tuple")
	assert.Error(t, err)
}
