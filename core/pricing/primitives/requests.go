// Package primitives - Request and usage-based pricing primitives
// Requests, API calls, GB-months, data processing
package primitives

import (
	"math"

	"github.com/shopspring/decimal"
)

// Unit prices quantity at a per-unit rate
func Unit(quantity, rate decimal.Decimal) Cost {
	q := NonNegative(quantity)
	return Cost{Quantity: q, Rate: rate, Amount: q.Mul(rate)}
}

// PerBlock prices quantity at a rate quoted per block of units (e.g. per 1,000 requests).
// The returned Rate is per single unit.
func PerBlock(quantity, blockRate, blockSize decimal.Decimal) Cost {
	if !blockSize.IsPositive() {
		blockSize = decimal.NewFromInt(1)
	}
	return Unit(quantity, blockRate.Div(blockSize))
}

// Requests prices a request count at a per-block rate
func Requests(count int64, blockRate, blockSize decimal.Decimal) Cost {
	return PerBlock(decimal.NewFromInt(count), blockRate, blockSize)
}

// Split divides a request count by ratio, flooring the first share.
// The two shares always add up to count.
func Split(count int64, ratio float64) (int64, int64) {
	if count <= 0 {
		return 0, 0
	}
	if ratio <= 0 || math.IsNaN(ratio) {
		return 0, count
	}
	if ratio >= 1 {
		return count, 0
	}
	first := int64(math.Floor(float64(count) * ratio))
	return first, count - first
}
