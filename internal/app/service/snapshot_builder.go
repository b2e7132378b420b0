package service

import (
	"fmt"
	"math"
	"math/big"
	"sort"
	"strings"

	"aave_alarm/internal/domain/entity"
	"aave_alarm/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

const (
	healthFactorDecimals = 18
	rayDecimals          = 27
	secondsPerYear       = 365 * 24 * 60 * 60
)

// decodeHealthFactor turns the 1e18-scaled on-chain value into a ratio.
// 2^256-1 means the account has no debt.
func decodeHealthFactor(raw *big.Int) (float64, error) {
	if raw == nil {
		return 0, fmt.Errorf("%w: missing health factor", entity.ErrContractCallFailed)
	}
	if utils.IsMaxUint256(raw) {
		return entity.NoLiquidationRisk, nil
	}
	return utils.ScaleDown(raw, healthFactorDecimals).InexactFloat64(), nil
}

// assetLine is one joined reserve with its converted amounts. A nil side is
// not supported by the reserve.
type assetLine struct {
	symbol    string
	supplied  *decimal.Decimal
	borrowed  *decimal.Decimal
	supplyAPY float64
	debtAPY   float64
}

func buildSnapshot(bundle *entity.ReservesBundle, promotedSymbol string) *entity.AccountSnapshot {
	snapshot := &entity.AccountSnapshot{Assets: []entity.SingleAssetUsageInfo{}}
	if bundle == nil {
		return snapshot
	}

	reserves := make(map[common.Address]entity.ReserveInfo, len(bundle.Reserves))
	for _, r := range bundle.Reserves {
		reserves[r.UnderlyingAsset] = r
	}

	multiplier := utils.ScaleDown(bundle.Reference.PriceInUSD, bundle.Reference.USDPriceDecimals)

	lines := make([]assetLine, 0, len(bundle.UserReserves))
	for _, ur := range bundle.UserReserves {
		reserve, ok := reserves[ur.UnderlyingAsset]
		if !ok {
			continue
		}
		lines = append(lines, joinReserve(reserve, ur, bundle.Reference, multiplier))
	}

	totalSupplied, totalBorrowed := decimal.Zero, decimal.Zero
	var supplyYield, debtCost float64
	for _, l := range lines {
		if l.supplied != nil {
			totalSupplied = totalSupplied.Add(*l.supplied)
			supplyYield += l.supplied.InexactFloat64() * l.supplyAPY
		}
		if l.borrowed != nil {
			totalBorrowed = totalBorrowed.Add(*l.borrowed)
			debtCost += l.borrowed.InexactFloat64() * l.debtAPY
		}
	}

	snapshot.TotalSupplied = totalSupplied.InexactFloat64()
	snapshot.TotalBorrowed = totalBorrowed.InexactFloat64()
	if netWorth := totalSupplied.Sub(totalBorrowed); !netWorth.IsZero() {
		snapshot.NetAPY = (supplyYield - debtCost) / netWorth.InexactFloat64()
	}

	for _, l := range lines {
		snapshot.Assets = append(snapshot.Assets, entity.SingleAssetUsageInfo{
			Symbol:   l.symbol,
			Supplied: toFloat(l.supplied),
			Borrowed: toFloat(l.borrowed),
		})
	}
	orderAssets(snapshot.Assets, promotedSymbol)
	return snapshot
}

func joinReserve(reserve entity.ReserveInfo, ur entity.UserReserveRaw, ref entity.ReferenceCurrency, multiplier decimal.Decimal) assetLine {
	line := assetLine{symbol: reserve.Symbol}
	usable := reserve.IsActive && !reserve.IsFrozen
	price := utils.ScaleDown(reserve.PriceInReferenceCurrency, ref.Decimals).Mul(multiplier)
	toCurrency := func(balance decimal.Decimal) *decimal.Decimal {
		v := balance.Shift(-int32(reserve.Decimals)).Mul(price)
		return &v
	}

	if usable && reserve.UsageAsCollateralEnabled {
		line.supplied = toCurrency(applyIndex(ur.ScaledATokenBalance, reserve.LiquidityIndex))
		line.supplyAPY = compoundedAPY(reserve.LiquidityRate)
	}

	if usable && reserve.BorrowingEnabled {
		variable := applyIndex(ur.ScaledVariableDebt, reserve.VariableBorrowIndex)
		if !variable.IsZero() {
			line.borrowed = toCurrency(variable)
			line.debtAPY = compoundedAPY(reserve.VariableBorrowRate)
		} else {
			line.borrowed = toCurrency(decimalOf(ur.PrincipalStableDebt))
			line.debtAPY = compoundedAPY(ur.StableBorrowRate)
		}
	}
	return line
}

// applyIndex converts a scaled balance to the actual one using a ray index.
// A missing or zero index leaves the balance as is.
func applyIndex(scaled, index *big.Int) decimal.Decimal {
	balance := decimalOf(scaled)
	if index == nil || index.Sign() == 0 {
		return balance
	}
	return balance.Mul(decimal.NewFromBigInt(index, 0)).Shift(-rayDecimals)
}

// compoundedAPY compounds a ray APR once per second over a year.
func compoundedAPY(rate *big.Int) float64 {
	if rate == nil || rate.Sign() == 0 {
		return 0
	}
	apr := utils.ScaleDown(rate, rayDecimals).InexactFloat64()
	return math.Pow(1+apr/secondsPerYear, secondsPerYear) - 1
}

func decimalOf(v *big.Int) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(v, 0)
}

func toFloat(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}

// Display tiers, lowest first.
const (
	tierPromoted = iota
	tierBothUsed
	tierSupplyUsed
	tierBorrowUsed
	tierBothAvailable
	tierSupplyAvailable
	tierBorrowAvailable
	tierNeither
)

func assetTier(a entity.SingleAssetUsageInfo, promotedSymbol string) int {
	if promotedSymbol != "" && strings.EqualFold(a.Symbol, promotedSymbol) {
		return tierPromoted
	}
	supplyUsed := a.Supplied != nil && *a.Supplied > 0
	borrowUsed := a.Borrowed != nil && *a.Borrowed > 0
	switch {
	case supplyUsed && borrowUsed:
		return tierBothUsed
	case supplyUsed:
		return tierSupplyUsed
	case borrowUsed:
		return tierBorrowUsed
	case a.Supplied != nil && a.Borrowed != nil:
		return tierBothAvailable
	case a.Supplied != nil:
		return tierSupplyAvailable
	case a.Borrowed != nil:
		return tierBorrowAvailable
	default:
		return tierNeither
	}
}

// orderAssets sorts in place by display tier, keeping the input order within a tier.
func orderAssets(assets []entity.SingleAssetUsageInfo, promotedSymbol string) {
	sort.SliceStable(assets, func(i, j int) bool {
		return assetTier(assets[i], promotedSymbol) < assetTier(assets[j], promotedSymbol)
	})
}
