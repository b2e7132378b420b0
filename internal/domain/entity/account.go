package entity

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// AaveVersion is the major protocol version of a market.
type AaveVersion int

const (
	AaveV2 AaveVersion = 2
	AaveV3 AaveVersion = 3
)

func (v AaveVersion) Valid() bool { return v == AaveV2 || v == AaveV3 }

// TrackedAccount is identified by the whole triple; there is no surrogate key.
type TrackedAccount struct {
	Chain       Chain       `json:"chain"`
	Address     string      `json:"address"`
	AaveVersion AaveVersion `json:"aaveVersion"`
}

// NewTrackedAccount validates its input and returns an account with a checksummed address.
func NewTrackedAccount(chain string, address string, version int) (TrackedAccount, error) {
	c, err := ParseChain(chain)
	if err != nil {
		return TrackedAccount{}, err
	}
	acc := TrackedAccount{Chain: c, Address: address, AaveVersion: AaveVersion(version)}
	if err := acc.Normalize(); err != nil {
		return TrackedAccount{}, err
	}
	return acc, nil
}

// Normalize checks the account and rewrites Address in EIP-55 checksum form.
func (a *TrackedAccount) Normalize() error {
	if _, err := ParseChain(string(a.Chain)); err != nil {
		return err
	}
	a.Chain = Chain(strings.ToUpper(string(a.Chain)))
	if !a.AaveVersion.Valid() {
		return fmt.Errorf("%w: aave version %d", ErrInvalidAccount, a.AaveVersion)
	}
	if !common.IsHexAddress(a.Address) {
		return fmt.Errorf("%w: address %q", ErrInvalidAccount, a.Address)
	}
	a.Address = common.HexToAddress(a.Address).Hex()
	return nil
}

// Key is a stable textual identity used by stores and logs.
func (a TrackedAccount) Key() string {
	return fmt.Sprintf("%s:%s:v%d", a.Chain, strings.ToLower(a.Address), a.AaveVersion)
}

// UserSettings is the per-user configuration kept by the account store.
type UserSettings struct {
	UserID                string  `json:"userId"`
	HealthFactorThreshold float64 `json:"healthFactorThreshold"`
	DeviceToken           string  `json:"deviceToken,omitempty"`
}

// DefaultHealthFactorThreshold applies to users that never set one.
const DefaultHealthFactorThreshold = 1.1
