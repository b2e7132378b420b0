package utils

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// ScaleDown converts a fixed-point integer into a decimal by dividing it by
// 10^decimals. A nil amount is zero.
func ScaleDown(amount *big.Int, decimals int32) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount, -decimals)
}

// DecimalsOfUnit returns n for a unit of 10^n. Units that are not a power of
// ten are rounded down to the nearest one.
func DecimalsOfUnit(unit *big.Int) int32 {
	if unit == nil || unit.Sign() <= 0 {
		return 0
	}
	return int32(len(unit.String()) - 1)
}

// IsMaxUint256 reports whether v equals 2^256-1.
func IsMaxUint256(v *big.Int) bool {
	return v != nil && v.Cmp(maxUint256) == 0
}

var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// MaxUint256 returns a fresh copy of 2^256-1.
func MaxUint256() *big.Int {
	return new(big.Int).Set(maxUint256)
}
