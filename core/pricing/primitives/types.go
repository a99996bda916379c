// Package primitives - Centralized pricing math
// Calculators declare quantities and rates, not arithmetic.
// All money math flows through these primitives on shopspring/decimal.
package primitives

import "github.com/shopspring/decimal"

// HoursPerMonth is the billing month used for always-on resources (24*365/12)
const HoursPerMonth = 730

// Tier is one bracket of a tiered rate schedule
type Tier struct {
	// UpTo is the cumulative upper limit of the bracket (zero = unlimited)
	UpTo decimal.Decimal `json:"up_to" yaml:"up_to"`

	// Rate is the unit rate inside the bracket
	Rate decimal.Decimal `json:"rate" yaml:"rate"`
}

// Unlimited reports whether the bracket has no upper limit
func (t Tier) Unlimited() bool {
	return t.UpTo.IsZero()
}

// Cost is a computed quantity/rate/cost triple
type Cost struct {
	Quantity decimal.Decimal
	Rate     decimal.Decimal
	Amount   decimal.Decimal
}

// IsZero reports whether the amount is zero
func (c Cost) IsZero() bool {
	return c.Amount.IsZero()
}
