package rewards

import (
	"math"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ValidAmount reports whether amount is a finite, non-negative purchase amount.
func ValidAmount(amount float64) bool {
	return !math.IsNaN(amount) && !math.IsInf(amount, 0) && amount >= 0
}

// Points is amount * rate / 100 at full precision. Aggregation uses this.
func Points(amount, rate float64) float64 {
	return amount * rate / 100
}

// EstimatePoints rounds amount * rate / 100 to the nearest whole point,
// halves away from zero. Only presentation values are rounded. Non-finite
// inputs estimate to 0.
func EstimatePoints(amount, rate float64) int64 {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0
	}
	return decimal.NewFromFloat(amount).
		Mul(decimal.NewFromFloat(rate)).
		Div(hundred).
		Round(0).
		IntPart()
}
