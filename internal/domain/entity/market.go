package entity

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Market describes one Aave deployment on one chain.
type Market struct {
	Chain                 Chain          `json:"chain"`
	Version               AaveVersion    `json:"version"`
	ChainID               uint64         `json:"chainId"`
	PoolAddressesProvider common.Address `json:"poolAddressesProvider"`
	UIPoolDataProvider    common.Address `json:"uiPoolDataProvider"`
}

// ReserveInfo is the global configuration of one reserve as reported by the UI data provider.
type ReserveInfo struct {
	UnderlyingAsset          common.Address
	Name                     string
	Symbol                   string
	Decimals                 uint8
	PriceInReferenceCurrency *big.Int
	IsActive                 bool
	IsFrozen                 bool
	UsageAsCollateralEnabled bool
	BorrowingEnabled         bool
	LiquidityIndex           *big.Int // ray
	VariableBorrowIndex      *big.Int // ray
	LiquidityRate            *big.Int // ray, APR
	VariableBorrowRate       *big.Int // ray, APR
}

// UserReserveRaw holds scaled balances exactly as returned on-chain.
type UserReserveRaw struct {
	UnderlyingAsset                common.Address
	ScaledATokenBalance            *big.Int
	ScaledVariableDebt             *big.Int
	PrincipalStableDebt            *big.Int
	StableBorrowRate               *big.Int
	UsageAsCollateralEnabledOnUser bool
}

// ReferenceCurrency carries the market's pricing unit. Reserve prices are
// expressed in Unit (10^Decimals); PriceInUSD is scaled by 10^USDPriceDecimals.
type ReferenceCurrency struct {
	Unit             *big.Int
	Decimals         int32
	PriceInUSD       *big.Int
	USDPriceDecimals int32
}

// ReservesBundle is the combined result of the reserve and user reserve reads.
type ReservesBundle struct {
	Reserves     []ReserveInfo
	UserReserves []UserReserveRaw
	Reference    ReferenceCurrency
}

// UserAccountData keeps every field of getUserAccountData in order. The
// health factor is always the last one.
type UserAccountData struct {
	Fields []*big.Int
}

// HealthFactor returns the last field, or nil if the tuple is empty.
func (d UserAccountData) HealthFactor() *big.Int {
	if len(d.Fields) == 0 {
		return nil
	}
	return d.Fields[len(d.Fields)-1]
}
