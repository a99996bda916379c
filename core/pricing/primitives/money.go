package primitives

import (
	"math"

	"github.com/shopspring/decimal"
)

// FromFloat converts a usage float to a decimal. NaN, Inf and negatives become zero.
func FromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

// NonNegative returns d, or zero when d is negative
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Clamp bounds d to [lo, hi]
func Clamp(d, lo, hi decimal.Decimal) decimal.Decimal {
	if d.LessThan(lo) {
		return lo
	}
	if d.GreaterThan(hi) {
		return hi
	}
	return d
}

// Money rounds to cents for display; results keep full precision
func Money(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
