// Package primitives - Tiered pricing primitives
// Marginal-bracket semantics: each bracket prices only the units inside it.
package primitives

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TieredCost computes the cost of quantity across the brackets.
// The first bracket starts at zero; a bracket with UpTo zero takes all remaining units.
// Units beyond the last bounded bracket are priced at that bracket's rate.
func TieredCost(quantity decimal.Decimal, tiers []Tier) decimal.Decimal {
	if !quantity.IsPositive() || len(tiers) == 0 {
		return decimal.Zero
	}

	total := decimal.Zero
	remaining := quantity
	previousLimit := decimal.Zero

	for _, tier := range tiers {
		if !remaining.IsPositive() {
			break
		}

		if tier.Unlimited() {
			total = total.Add(remaining.Mul(tier.Rate))
			remaining = decimal.Zero
			break
		}

		size := tier.UpTo.Sub(previousLimit)
		inTier := decimal.Min(remaining, size)
		total = total.Add(inTier.Mul(tier.Rate))
		remaining = remaining.Sub(inTier)
		previousLimit = tier.UpTo
	}

	if remaining.IsPositive() {
		total = total.Add(remaining.Mul(tiers[len(tiers)-1].Rate))
	}

	return total
}

// Tiered returns the cost of quantity with the average rate over the quantity
func Tiered(quantity decimal.Decimal, tiers []Tier) Cost {
	amount := TieredCost(quantity, tiers)
	rate := decimal.Zero
	if quantity.IsPositive() {
		rate = amount.Div(quantity)
	}
	return Cost{Quantity: NonNegative(quantity), Rate: rate, Amount: amount}
}

// ValidateTiers checks brackets are strictly ascending, rates are non-negative,
// and only the last bracket is unlimited.
func ValidateTiers(tiers []Tier) error {
	if len(tiers) == 0 {
		return fmt.Errorf("no tiers")
	}
	previous := decimal.Zero
	for i, t := range tiers {
		if t.Rate.IsNegative() {
			return fmt.Errorf("tier %d: negative rate %s", i, t.Rate)
		}
		if t.Unlimited() {
			if i != len(tiers)-1 {
				return fmt.Errorf("tier %d: only the last tier may be unlimited", i)
			}
			continue
		}
		if !t.UpTo.GreaterThan(previous) {
			return fmt.Errorf("tier %d: limit %s must exceed %s", i, t.UpTo, previous)
		}
		previous = t.UpTo
	}
	return nil
}
