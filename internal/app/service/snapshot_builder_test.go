package service

import (
	"math/big"
	"math/rand"
	"testing"

	"aave_alarm/internal/domain/entity"
	"aave_alarm/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pow10(n int64) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(n), nil)
}

func units(whole, decimals int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(whole), pow10(decimals))
}

func assetAddr(i int) common.Address {
	return common.BigToAddress(big.NewInt(int64(0xc0 + i)))
}

func reserve(i int, symbol string) entity.ReserveInfo {
	return entity.ReserveInfo{
		UnderlyingAsset:          assetAddr(i),
		Symbol:                   symbol,
		Decimals:                 18,
		PriceInReferenceCurrency: units(1, 8),
		IsActive:                 true,
		UsageAsCollateralEnabled: true,
		BorrowingEnabled:         true,
		LiquidityIndex:           pow10(27),
		VariableBorrowIndex:      pow10(27),
	}
}

func userReserve(i int, supply, variable, stable *big.Int) entity.UserReserveRaw {
	return entity.UserReserveRaw{
		UnderlyingAsset:     assetAddr(i),
		ScaledATokenBalance: supply,
		ScaledVariableDebt:  variable,
		PrincipalStableDebt: stable,
	}
}

func usdReference() entity.ReferenceCurrency {
	return entity.ReferenceCurrency{Unit: pow10(8), Decimals: 8, PriceInUSD: pow10(8), USDPriceDecimals: 8}
}

func TestDecodeHealthFactor(t *testing.T) {
	hf, err := decodeHealthFactor(utils.MaxUint256())
	require.NoError(t, err)
	assert.Equal(t, entity.NoLiquidationRisk, hf)

	raw, _ := new(big.Int).SetString("1050000000000000000", 10)
	hf, err = decodeHealthFactor(raw)
	require.NoError(t, err)
	assert.Equal(t, 1.05, hf)

	hf, err = decodeHealthFactor(big.NewInt(950_000_000_000_000_000))
	require.NoError(t, err)
	assert.Equal(t, 0.95, hf)

	_, err = decodeHealthFactor(nil)
	assert.ErrorIs(t, err, entity.ErrContractCallFailed)
}

func TestSuppliedAmountInReferenceCurrency(t *testing.T) {
	r := reserve(0, "WETH")
	r.PriceInReferenceCurrency = units(2, 8)
	bundle := &entity.ReservesBundle{
		Reserves:     []entity.ReserveInfo{r},
		UserReserves: []entity.UserReserveRaw{userReserve(0, units(5, 18), nil, nil)},
		Reference:    usdReference(),
	}

	snapshot := buildSnapshot(bundle, "")
	require.Len(t, snapshot.Assets, 1)
	require.NotNil(t, snapshot.Assets[0].Supplied)
	assert.Equal(t, 10.0, *snapshot.Assets[0].Supplied)
	require.NotNil(t, snapshot.Assets[0].Borrowed)
	assert.Equal(t, 0.0, *snapshot.Assets[0].Borrowed)
	assert.Equal(t, 10.0, snapshot.TotalSupplied)
	assert.Equal(t, 0.0, snapshot.TotalBorrowed)
}

func TestMarketCurrencyMultiplier(t *testing.T) {
	r := reserve(0, "DAI")
	r.PriceInReferenceCurrency = pow10(15) // 0.001 ETH
	bundle := &entity.ReservesBundle{
		Reserves:     []entity.ReserveInfo{r},
		UserReserves: []entity.UserReserveRaw{userReserve(0, units(100, 18), nil, nil)},
		Reference: entity.ReferenceCurrency{
			Unit: pow10(18), Decimals: 18, PriceInUSD: units(2000, 8), USDPriceDecimals: 8,
		},
	}

	snapshot := buildSnapshot(bundle, "")
	require.NotNil(t, snapshot.Assets[0].Supplied)
	assert.InDelta(t, 200.0, *snapshot.Assets[0].Supplied, 1e-9)
}

func TestBalancesAreNormalizedByIndex(t *testing.T) {
	r := reserve(0, "USDC")
	r.Decimals = 6
	r.LiquidityIndex = new(big.Int).Div(new(big.Int).Mul(pow10(27), big.NewInt(11)), big.NewInt(10))
	r.VariableBorrowIndex = new(big.Int).Mul(pow10(27), big.NewInt(2))
	bundle := &entity.ReservesBundle{
		Reserves:     []entity.ReserveInfo{r},
		UserReserves: []entity.UserReserveRaw{userReserve(0, units(100, 6), units(10, 6), nil)},
		Reference:    usdReference(),
	}

	snapshot := buildSnapshot(bundle, "")
	assert.InDelta(t, 110.0, *snapshot.Assets[0].Supplied, 1e-9)
	assert.InDelta(t, 20.0, *snapshot.Assets[0].Borrowed, 1e-9)
}

func TestUnavailableSidesAreUndefined(t *testing.T) {
	frozen := reserve(0, "FROZEN")
	frozen.IsFrozen = true
	inactive := reserve(1, "INACTIVE")
	inactive.IsActive = false
	noCollateral := reserve(2, "NOCOLL")
	noCollateral.UsageAsCollateralEnabled = false
	noBorrow := reserve(3, "NOBORROW")
	noBorrow.BorrowingEnabled = false

	big5 := units(5, 18)
	bundle := &entity.ReservesBundle{
		Reserves: []entity.ReserveInfo{frozen, inactive, noCollateral, noBorrow},
		UserReserves: []entity.UserReserveRaw{
			userReserve(0, big5, big5, big5),
			userReserve(1, big5, big5, big5),
			userReserve(2, big5, big5, nil),
			userReserve(3, big5, big5, nil),
		},
		Reference: usdReference(),
	}

	bySymbol := map[string]entity.SingleAssetUsageInfo{}
	for _, a := range buildSnapshot(bundle, "").Assets {
		bySymbol[a.Symbol] = a
	}
	require.Len(t, bySymbol, 4)

	assert.Nil(t, bySymbol["FROZEN"].Supplied)
	assert.Nil(t, bySymbol["FROZEN"].Borrowed)
	assert.Nil(t, bySymbol["INACTIVE"].Supplied)
	assert.Nil(t, bySymbol["INACTIVE"].Borrowed)

	assert.Nil(t, bySymbol["NOCOLL"].Supplied)
	require.NotNil(t, bySymbol["NOCOLL"].Borrowed)
	assert.Equal(t, 5.0, *bySymbol["NOCOLL"].Borrowed)

	require.NotNil(t, bySymbol["NOBORROW"].Supplied)
	assert.Equal(t, 5.0, *bySymbol["NOBORROW"].Supplied)
	assert.Nil(t, bySymbol["NOBORROW"].Borrowed)
}

func TestFrozenReserveIgnoresBalancesInTotals(t *testing.T) {
	frozen := reserve(0, "FROZEN")
	frozen.IsFrozen = true
	bundle := &entity.ReservesBundle{
		Reserves:     []entity.ReserveInfo{frozen, reserve(1, "DAI")},
		UserReserves: []entity.UserReserveRaw{userReserve(0, units(50, 18), units(7, 18), nil), userReserve(1, units(3, 18), nil, nil)},
		Reference:    usdReference(),
	}

	snapshot := buildSnapshot(bundle, "")
	assert.Equal(t, 3.0, snapshot.TotalSupplied)
	assert.Equal(t, 0.0, snapshot.TotalBorrowed)
}

func TestVariableDebtTakesPrecedence(t *testing.T) {
	bundle := &entity.ReservesBundle{
		Reserves:     []entity.ReserveInfo{reserve(0, "A"), reserve(1, "B")},
		UserReserves: []entity.UserReserveRaw{userReserve(0, nil, units(2, 18), units(9, 18)), userReserve(1, nil, nil, units(4, 18))},
		Reference:    usdReference(),
	}

	snapshot := buildSnapshot(bundle, "")
	bySymbol := map[string]float64{}
	for _, a := range snapshot.Assets {
		bySymbol[a.Symbol] = *a.Borrowed
	}
	assert.Equal(t, 2.0, bySymbol["A"])
	assert.Equal(t, 4.0, bySymbol["B"])
	assert.Equal(t, 6.0, snapshot.TotalBorrowed)
}

func TestUserReservesWithoutReserveAreDropped(t *testing.T) {
	bundle := &entity.ReservesBundle{
		Reserves:     []entity.ReserveInfo{reserve(0, "A")},
		UserReserves: []entity.UserReserveRaw{userReserve(0, nil, nil, nil), userReserve(9, units(1, 18), nil, nil)},
		Reference:    usdReference(),
	}

	snapshot := buildSnapshot(bundle, "")
	require.Len(t, snapshot.Assets, 1)
	assert.Equal(t, "A", snapshot.Assets[0].Symbol)
}

func TestTotalsEqualSumOfDefinedAmounts(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 50; round++ {
		n := 1 + rng.Intn(12)
		bundle := &entity.ReservesBundle{Reference: usdReference()}
		for i := 0; i < n; i++ {
			r := reserve(i, "R")
			r.Decimals = uint8(6 + rng.Intn(13))
			r.PriceInReferenceCurrency = big.NewInt(rng.Int63n(1e11))
			r.IsFrozen = rng.Intn(5) == 0
			r.IsActive = rng.Intn(6) != 0
			r.UsageAsCollateralEnabled = rng.Intn(4) != 0
			r.BorrowingEnabled = rng.Intn(3) != 0
			bundle.Reserves = append(bundle.Reserves, r)
			bundle.UserReserves = append(bundle.UserReserves, userReserve(i,
				units(rng.Int63n(1000), int64(r.Decimals)),
				units(rng.Int63n(3), int64(r.Decimals)),
				units(rng.Int63n(3), int64(r.Decimals))))
		}

		snapshot := buildSnapshot(bundle, "")
		var supplied, borrowed float64
		for _, a := range snapshot.Assets {
			if a.Supplied != nil {
				supplied += *a.Supplied
			}
			if a.Borrowed != nil {
				borrowed += *a.Borrowed
			}
		}
		assert.InDelta(t, supplied, snapshot.TotalSupplied, 1e-6, "round %d", round)
		assert.InDelta(t, borrowed, snapshot.TotalBorrowed, 1e-6, "round %d", round)
	}
}

func TestNetAPY(t *testing.T) {
	supply := reserve(0, "USDC")
	supply.LiquidityRate = new(big.Int).Div(pow10(27), big.NewInt(20)) // 5% APR
	debt := reserve(1, "DAI")
	debt.VariableBorrowRate = new(big.Int).Div(pow10(27), big.NewInt(10)) // 10% APR
	bundle := &entity.ReservesBundle{
		Reserves:     []entity.ReserveInfo{supply, debt},
		UserReserves: []entity.UserReserveRaw{userReserve(0, units(100, 18), nil, nil), userReserve(1, nil, units(50, 18), nil)},
		Reference:    usdReference(),
	}

	snapshot := buildSnapshot(bundle, "")
	supplyAPY := compoundedAPY(supply.LiquidityRate)
	debtAPY := compoundedAPY(debt.VariableBorrowRate)
	assert.InDelta(t, 0.05127, supplyAPY, 1e-4)
	assert.InDelta(t, (100*supplyAPY-50*debtAPY)/50, snapshot.NetAPY, 1e-9)
}

func TestNetAPYIsZeroWithoutNetWorth(t *testing.T) {
	r := reserve(0, "USDC")
	r.LiquidityRate = pow10(25)
	r.VariableBorrowRate = pow10(25)
	bundle := &entity.ReservesBundle{
		Reserves:     []entity.ReserveInfo{r},
		UserReserves: []entity.UserReserveRaw{userReserve(0, units(10, 18), units(10, 18), nil)},
		Reference:    usdReference(),
	}
	assert.Equal(t, 0.0, buildSnapshot(bundle, "").NetAPY)
	assert.Equal(t, 0.0, buildSnapshot(&entity.ReservesBundle{Reference: usdReference()}, "").NetAPY)
}

func ptr(v float64) *float64 { return &v }

func TestOrderAssetsByTier(t *testing.T) {
	assets := []entity.SingleAssetUsageInfo{
		{Symbol: "neither"},
		{Symbol: "borrowAvail", Borrowed: ptr(0)},
		{Symbol: "supplyAvail", Supplied: ptr(0)},
		{Symbol: "bothAvail1", Supplied: ptr(0), Borrowed: ptr(0)},
		{Symbol: "borrowUsed", Supplied: ptr(0), Borrowed: ptr(3)},
		{Symbol: "supplyUsed", Supplied: ptr(1)},
		{Symbol: "bothUsed", Supplied: ptr(1), Borrowed: ptr(1)},
		{Symbol: "bothAvail2", Supplied: ptr(0), Borrowed: ptr(0)},
		{Symbol: "gho", Borrowed: ptr(0)},
	}

	orderAssets(assets, "GHO")

	got := make([]string, len(assets))
	for i, a := range assets {
		got[i] = a.Symbol
	}
	assert.Equal(t, []string{
		"gho", "bothUsed", "supplyUsed", "borrowUsed",
		"bothAvail1", "bothAvail2", "supplyAvail", "borrowAvail", "neither",
	}, got)
}

func TestOrderIsStableWithinTier(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	sides := []*float64{nil, ptr(0), ptr(1)}
	for round := 0; round < 30; round++ {
		assets := make([]entity.SingleAssetUsageInfo, 20)
		position := map[string]int{}
		for i := range assets {
			sym := string(rune('a'+i%26)) + string(rune('A'+round%26)) + big.NewInt(int64(i)).String()
			assets[i] = entity.SingleAssetUsageInfo{Symbol: sym, Supplied: sides[rng.Intn(3)], Borrowed: sides[rng.Intn(3)]}
			position[sym] = i
		}

		orderAssets(assets, "")
		for i := 1; i < len(assets); i++ {
			prev, cur := assetTier(assets[i-1], ""), assetTier(assets[i], "")
			require.LessOrEqual(t, prev, cur)
			if prev == cur {
				require.Less(t, position[assets[i-1].Symbol], position[assets[i].Symbol])
			}
		}
	}
}

func TestAssetsWithNeitherSideAreKept(t *testing.T) {
	r := reserve(0, "OLD")
	r.IsActive = false
	bundle := &entity.ReservesBundle{
		Reserves:     []entity.ReserveInfo{r},
		UserReserves: []entity.UserReserveRaw{userReserve(0, nil, nil, nil)},
		Reference:    usdReference(),
	}
	snapshot := buildSnapshot(bundle, "")
	require.Len(t, snapshot.Assets, 1)
	assert.Nil(t, snapshot.Assets[0].Supplied)
	assert.Nil(t, snapshot.Assets[0].Borrowed)
}
