// Package abis holds the Aave and Multicall3 contract interfaces used by the
// protocol gateway, together with Go mirrors of their tuple types.
package abis

import (
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Method names.
const (
	MethodGetLendingPool      = "getLendingPool"
	MethodGetPool             = "getPool"
	MethodGetUserAccountData  = "getUserAccountData"
	MethodGetReservesData     = "getReservesData"
	MethodGetUserReservesData = "getUserReservesData"
	MethodAggregate3          = "aggregate3"
)

// AggregatedReserveData mirrors the declared prefix of the on-chain tuple.
// Field order and types must match the ABI exactly.
type AggregatedReserveData struct {
	UnderlyingAsset                common.Address
	Name                           string
	Symbol                         string
	Decimals                       *big.Int
	BaseLTVasCollateral            *big.Int
	ReserveLiquidationThreshold    *big.Int
	ReserveLiquidationBonus        *big.Int
	ReserveFactor                  *big.Int
	UsageAsCollateralEnabled       bool
	BorrowingEnabled               bool
	StableBorrowRateEnabled        bool
	IsActive                       bool
	IsFrozen                       bool
	LiquidityIndex                 *big.Int
	VariableBorrowIndex            *big.Int
	LiquidityRate                  *big.Int
	VariableBorrowRate             *big.Int
	StableBorrowRate               *big.Int
	LastUpdateTimestamp            *big.Int
	ATokenAddress                  common.Address
	StableDebtTokenAddress         common.Address
	VariableDebtTokenAddress       common.Address
	InterestRateStrategyAddress    common.Address
	AvailableLiquidity             *big.Int
	TotalPrincipalStableDebt       *big.Int
	AverageStableRate              *big.Int
	StableDebtLastUpdateTimestamp  *big.Int
	TotalScaledVariableDebt        *big.Int
	PriceInMarketReferenceCurrency *big.Int
}

// BaseCurrencyInfo is the second output of getReservesData.
type BaseCurrencyInfo struct {
	MarketReferenceCurrencyUnit       *big.Int
	MarketReferenceCurrencyPriceInUsd *big.Int
	NetworkBaseTokenPriceInUsd        *big.Int
	NetworkBaseTokenPriceDecimals     uint8
}

// UserReserveData is one element of getUserReservesData.
type UserReserveData struct {
	UnderlyingAsset                 common.Address
	ScaledATokenBalance             *big.Int
	UsageAsCollateralEnabledOnUser  bool
	StableBorrowRate                *big.Int
	ScaledVariableDebt              *big.Int
	PrincipalStableDebt             *big.Int
	StableBorrowLastUpdateTimestamp *big.Int
}

// Call3 is a Multicall3 aggregate3 call.
type Call3 struct {
	Target       common.Address
	AllowFailure bool
	CallData     []byte
}

// Multicall3Result is one aggregate3 result.
type Multicall3Result struct {
	Success    bool
	ReturnData []byte
}

// Set groups every parsed contract interface.
type Set struct {
	AddressesProviderV2  abi.ABI
	AddressesProviderV3  abi.ABI
	LendingPoolV2        abi.ABI
	PoolV3               abi.ABI
	UIPoolDataProviderV2 abi.ABI
	UIPoolDataProviderV3 abi.ABI
	Multicall3           abi.ABI
}

var (
	parsedSet  *Set
	parsedOnce sync.Once
)

// Get parses the ABIs on first use. The JSON is compiled in, so a parse
// failure is a programming error.
func Get() *Set {
	parsedOnce.Do(func() {
		parsedSet = &Set{
			AddressesProviderV2:  mustParse("LendingPoolAddressesProvider", addressesProviderV2JSON),
			AddressesProviderV3:  mustParse("PoolAddressesProvider", addressesProviderV3JSON),
			LendingPoolV2:        mustParse("LendingPool", lendingPoolV2JSON),
			PoolV3:               mustParse("Pool", poolV3JSON),
			UIPoolDataProviderV2: mustParse("UiPoolDataProviderV2", uiPoolDataProviderV2JSON),
			UIPoolDataProviderV3: mustParse("UiPoolDataProviderV3", uiPoolDataProviderV3JSON),
			Multicall3:           mustParse("Multicall3", multicall3JSON),
		}
	})
	return parsedSet
}

func mustParse(name, raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("failed to parse %s ABI: %v", name, err))
	}
	return parsed
}

// Convert copies an unpacked anonymous tuple value into T, the way abigen
// bindings do. A shape mismatch is reported as an error instead of a panic.
func Convert[T any](in interface{}) (out T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected tuple shape %T: %v", in, r)
		}
	}()
	converted := abi.ConvertType(in, new(T))
	ptr, ok := converted.(*T)
	if !ok {
		return out, fmt.Errorf("unexpected converted type %T", converted)
	}
	return *ptr, nil
}
