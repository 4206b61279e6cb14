package model

import (
	"math"

	"github.com/shopspring/decimal"
)

// RoundTo rounds v to the given number of decimal places, half away from zero.
// Rounding goes through decimal, so 2.675 becomes 2.68. NaN and ±Inf are
// returned unchanged.
func RoundTo(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// RoundPrice rounds a monetary amount to cents.
func RoundPrice(v float64) float64 {
	return RoundTo(v, 2)
}
