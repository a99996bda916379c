// Package primitives - Compute pricing primitives
// Instance hours, node hours, vCPU and memory hours
package primitives

import "github.com/shopspring/decimal"

// InstanceHours prices count instances running hours each at an hourly rate
func InstanceHours(count int, hours float64, hourlyRate decimal.Decimal) Cost {
	if count < 0 {
		count = 0
	}
	qty := decimal.NewFromInt(int64(count)).Mul(FromFloat(hours))
	return Unit(qty, hourlyRate)
}

// ResourceHours prices a fractional resource amount (vCPU, GB of memory) over hours
func ResourceHours(amount float64, count int, hours float64, hourlyRate decimal.Decimal) Cost {
	if count < 0 {
		count = 0
	}
	qty := FromFloat(amount).Mul(decimal.NewFromInt(int64(count))).Mul(FromFloat(hours))
	return Unit(qty, hourlyRate)
}

// MonthlyHours returns configured hours, or fallback when unset, capped at a 31-day month
func MonthlyHours(configured, fallback float64) float64 {
	h := configured
	if h <= 0 {
		h = fallback
	}
	if h < 0 {
		return 0
	}
	if h > 744 {
		return 744
	}
	return h
}
