package billing

import (
	"github.com/shopspring/decimal"

	"github.com/hourbook/billing/internal/core/domain"
)

const centPlaces = 2

// Amount returns hours × rate rounded to cents. A sentinel rate bills nothing.
func Amount(hours, rate float64) float64 {
	if rate == domain.FixedRateSentinel {
		return 0
	}
	return decimal.NewFromFloat(hours).
		Mul(decimal.NewFromFloat(rate)).
		Round(centPlaces).
		InexactFloat64()
}

// Sum adds monetary values exactly and rounds the result to cents.
func Sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.Round(centPlaces).InexactFloat64()
}

// RoundCents rounds v half away from zero to two decimals.
func RoundCents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(centPlaces).InexactFloat64()
}

// FixedShare apportions a fixed fee evenly across n items. It is a
// presentation value only and never stored.
func FixedShare(total float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	return decimal.NewFromFloat(total).
		Div(decimal.NewFromInt(int64(n))).
		Round(centPlaces).
		InexactFloat64()
}
