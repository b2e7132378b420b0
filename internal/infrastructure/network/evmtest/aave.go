package evmtest

import (
	"math/big"
	"testing"

	"aave_alarm/internal/domain/entity"
	"aave_alarm/internal/infrastructure/network/abis"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Pow10 returns 10^n.
func Pow10(n int64) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(n), nil)
}

// Units returns whole * 10^decimals.
func Units(whole int64, decimals int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(whole), Pow10(decimals))
}

// Ray is 1e27, the unit of Aave indexes and rates.
func Ray() *big.Int { return Pow10(27) }

// Reserve returns an active, unfrozen reserve with both actions enabled,
// indexes at one ray and zero rates.
func Reserve(symbol string, asset common.Address, decimals int64, price *big.Int) abis.AggregatedReserveData {
	zero := func() *big.Int { return big.NewInt(0) }
	return abis.AggregatedReserveData{
		UnderlyingAsset:                asset,
		Name:                           symbol,
		Symbol:                         symbol,
		Decimals:                       big.NewInt(decimals),
		BaseLTVasCollateral:            big.NewInt(8000),
		ReserveLiquidationThreshold:    big.NewInt(8250),
		ReserveLiquidationBonus:        big.NewInt(10500),
		ReserveFactor:                  big.NewInt(1000),
		UsageAsCollateralEnabled:       true,
		BorrowingEnabled:               true,
		StableBorrowRateEnabled:        false,
		IsActive:                       true,
		IsFrozen:                       false,
		LiquidityIndex:                 Ray(),
		VariableBorrowIndex:            Ray(),
		LiquidityRate:                  zero(),
		VariableBorrowRate:             zero(),
		StableBorrowRate:               zero(),
		LastUpdateTimestamp:            big.NewInt(1700000000),
		ATokenAddress:                  common.Address{},
		StableDebtTokenAddress:         common.Address{},
		VariableDebtTokenAddress:       common.Address{},
		InterestRateStrategyAddress:    common.Address{},
		AvailableLiquidity:             zero(),
		TotalPrincipalStableDebt:       zero(),
		AverageStableRate:              zero(),
		StableDebtLastUpdateTimestamp:  zero(),
		TotalScaledVariableDebt:        zero(),
		PriceInMarketReferenceCurrency: price,
	}
}

// UserReserve returns a user reserve with the given raw balances; nil means zero.
func UserReserve(asset common.Address, scaledSupply, scaledVariableDebt, principalStableDebt *big.Int) abis.UserReserveData {
	orZero := func(v *big.Int) *big.Int {
		if v == nil {
			return big.NewInt(0)
		}
		return v
	}
	return abis.UserReserveData{
		UnderlyingAsset:                 asset,
		ScaledATokenBalance:             orZero(scaledSupply),
		UsageAsCollateralEnabledOnUser:  true,
		StableBorrowRate:                big.NewInt(0),
		ScaledVariableDebt:              orZero(scaledVariableDebt),
		PrincipalStableDebt:             orZero(principalStableDebt),
		StableBorrowLastUpdateTimestamp: big.NewInt(0),
	}
}

// USDBase is the base currency info of a v3 market priced in USD with 8 decimals.
func USDBase() abis.BaseCurrencyInfo {
	return abis.BaseCurrencyInfo{
		MarketReferenceCurrencyUnit:       Pow10(8),
		MarketReferenceCurrencyPriceInUsd: Pow10(8),
		NetworkBaseTokenPriceInUsd:        Units(2000, 8),
		NetworkBaseTokenPriceDecimals:     8,
	}
}

func uiABI(version entity.AaveVersion) abi.ABI {
	if version == entity.AaveV2 {
		return abis.Get().UIPoolDataProviderV2
	}
	return abis.Get().UIPoolDataProviderV3
}

func poolABI(version entity.AaveVersion) abi.ABI {
	if version == entity.AaveV2 {
		return abis.Get().LendingPoolV2
	}
	return abis.Get().PoolV3
}

// ServePool answers the addresses provider's pool getter with pool.
func (n *Node) ServePool(tb testing.TB, market entity.Market, pool common.Address) {
	tb.Helper()
	if market.Version == entity.AaveV2 {
		n.Return(tb, market.PoolAddressesProvider, abis.Get().AddressesProviderV2, abis.MethodGetLendingPool, pool)
		return
	}
	n.Return(tb, market.PoolAddressesProvider, abis.Get().AddressesProviderV3, abis.MethodGetPool, pool)
}

// ServeAccountData answers getUserAccountData for every user with the given health factor.
func (n *Node) ServeAccountData(tb testing.TB, market entity.Market, pool common.Address, healthFactor *big.Int) {
	tb.Helper()
	n.Return(tb, pool, poolABI(market.Version), abis.MethodGetUserAccountData,
		Units(1000, 8), Units(500, 8), Units(100, 8), big.NewInt(8250), big.NewInt(8000), healthFactor)
}

// ServeHealthFactors answers getUserAccountData per user; users missing from
// factors revert.
func (n *Node) ServeHealthFactors(tb testing.TB, market entity.Market, pool common.Address, factors map[common.Address]*big.Int) {
	tb.Helper()
	contract := poolABI(market.Version)
	method := contract.Methods[abis.MethodGetUserAccountData]
	n.Handle(pool, method, func(input []byte) ([]byte, error) {
		args, err := method.Inputs.Unpack(input)
		if err != nil {
			return nil, err
		}
		user, _ := args[0].(common.Address)
		hf, ok := factors[user]
		if !ok {
			return nil, RevertError{}
		}
		return method.Outputs.Pack(big.NewInt(0), big.NewInt(0), big.NewInt(0), big.NewInt(0), big.NewInt(0), hf)
	})
}

// ServeReserves answers both UI pool data provider reads.
func (n *Node) ServeReserves(tb testing.TB, market entity.Market, reserves []abis.AggregatedReserveData, users []abis.UserReserveData, base abis.BaseCurrencyInfo) {
	tb.Helper()
	contract := uiABI(market.Version)
	n.Return(tb, market.UIPoolDataProvider, contract, abis.MethodGetReservesData, reserves, base)
	if market.Version == entity.AaveV2 {
		n.Return(tb, market.UIPoolDataProvider, contract, abis.MethodGetUserReservesData, users)
		return
	}
	n.Return(tb, market.UIPoolDataProvider, contract, abis.MethodGetUserReservesData, users, uint8(0))
}
