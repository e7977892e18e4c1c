// Package money provides integer minor-unit arithmetic and the two
// percentage conversion boundaries used by the allocation engine.
//
// All monetary amounts are int64 minor units (cents). Percentages are the
// only floating-point quantity and are rounded to 2 decimal places before
// they are stored or compared. Rounding is always half away from zero.
package money

import (
	"math"

	"github.com/shopspring/decimal"

	apperrors "fiscus/internal/errors"
)

// MaxAmount is the largest minor-unit amount the engine accepts. Amounts are
// capped at 2^53-1 so they survive a round trip through JSON consumers that
// read numbers as float64.
const MaxAmount int64 = 1<<53 - 1

var hundred = decimal.NewFromInt(100)

// InRange reports whether amount is a valid minor-unit value.
func InRange(amount int64) bool {
	return amount >= 0 && amount <= MaxAmount
}

// FromPercent converts a percentage of an income amount to minor units,
// rounding half away from zero at the integer boundary. Points outside
// [0, 100] fail with PERCENTAGE_OUT_OF_RANGE.
func FromPercent(points float64, incomeMinor int64) (int64, error) {
	if points < 0 || points > 100 {
		return 0, apperrors.ErrPercentageOutOfRange
	}
	amount := decimal.NewFromInt(incomeMinor).
		Mul(decimal.NewFromFloat(points)).
		Div(hundred).
		Round(0)
	return amount.IntPart(), nil
}

// Scale is the raw percentage scaling step without the range guard:
// round(amount * points / 100) half away from zero. Used where points may
// legitimately exceed 100 and the excess itself is what gets reported,
// such as allocation-total validation.
func Scale(points float64, amountMinor int64) int64 {
	return decimal.NewFromInt(amountMinor).
		Mul(decimal.NewFromFloat(points)).
		Div(hundred).
		Round(0).
		IntPart()
}

// PercentOf returns part as a percentage of whole, rounded to 2 decimal
// places. A zero whole yields 0 rather than an error: a ratio against zero
// income is a degenerate but valid state.
func PercentOf(partMinor, wholeMinor int64) float64 {
	if wholeMinor == 0 {
		return 0
	}
	pct, _ := decimal.NewFromInt(partMinor).
		Mul(hundred).
		Div(decimal.NewFromInt(wholeMinor)).
		Round(2).
		Float64()
	return pct
}

// Round2 rounds a percentage value to 2 decimal places, half away from zero.
func Round2(points float64) float64 {
	r, _ := decimal.NewFromFloat(points).Round(2).Float64()
	return r
}

// RoundToMinor rounds a real-valued amount to the nearest minor unit,
// half away from zero.
func RoundToMinor(amount float64) int64 {
	return int64(math.Round(amount))
}
