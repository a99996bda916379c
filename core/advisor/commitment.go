package advisor

import (
	"math"

	"github.com/shopspring/decimal"

	"archcost/core/types"
)

// Commitment discount for one term and payment option
type Commitment struct {
	Term     types.Term          `json:"term"`
	Payment  types.PaymentOption `json:"payment"`
	Discount decimal.Decimal     `json:"discount"`
}

// DefaultCommitments are approximate reserved-capacity discounts.
// They are not per-family or per-region; override them through Thresholds.
func DefaultCommitments() []Commitment {
	return []Commitment{
		{types.Term1Year, types.PaymentNoUpfront, decimal.RequireFromString("0.31")},
		{types.Term1Year, types.PaymentPartialUpfront, decimal.RequireFromString("0.37")},
		{types.Term1Year, types.PaymentAllUpfront, decimal.RequireFromString("0.40")},
		{types.Term3Year, types.PaymentNoUpfront, decimal.RequireFromString("0.50")},
		{types.Term3Year, types.PaymentPartialUpfront, decimal.RequireFromString("0.57")},
		{types.Term3Year, types.PaymentAllUpfront, decimal.RequireFromString("0.62")},
	}
}

// headline is the option whose savings become the recommendation's PotentialSavings
var headline = struct {
	term    types.Term
	payment types.PaymentOption
}{types.Term1Year, types.PaymentAllUpfront}

// CommitmentOptions prices every commitment against an on-demand monthly cost.
//
//	termCost       = monthly × (1 − discount) × months
//	upfront        = 0 | termCost/2 | termCost
//	paybackMonths  = upfront / monthlySavings
//	roi            = termSavings / upfront, +Inf when nothing is paid upfront
func CommitmentOptions(monthly decimal.Decimal, commitments []Commitment) []types.CommitmentOption {
	options := make([]types.CommitmentOption, 0, len(commitments))
	for _, c := range commitments {
		months := decimal.NewFromInt(int64(c.Term.Months()))
		monthlySavings := monthly.Mul(c.Discount)
		termCost := monthly.Sub(monthlySavings).Mul(months)

		var upfront decimal.Decimal
		switch c.Payment {
		case types.PaymentAllUpfront:
			upfront = termCost
		case types.PaymentPartialUpfront:
			upfront = termCost.Div(decimal.NewFromInt(2))
		default:
			upfront = decimal.Zero
		}

		termSavings := monthlySavings.Mul(months)
		opt := types.CommitmentOption{
			Term:             c.Term,
			Payment:          c.Payment,
			Discount:         c.Discount,
			UpfrontCost:      upfront,
			MonthlySavings:   monthlySavings,
			TermSavings:      termSavings,
			MonthlyRecurring: termCost.Sub(upfront).Div(months),
			ROI:              math.Inf(1),
		}
		if upfront.IsPositive() {
			opt.ROI = termSavings.Div(upfront).InexactFloat64()
			if monthlySavings.IsPositive() {
				opt.PaybackMonths = upfront.Div(monthlySavings).InexactFloat64()
			}
		}
		options = append(options, opt)
	}
	return options
}

// headlineSavings returns the monthly savings of the headline option, or the best one if it is missing
func headlineSavings(options []types.CommitmentOption) decimal.Decimal {
	best := decimal.Zero
	for _, o := range options {
		if o.Term == headline.term && o.Payment == headline.payment {
			return o.MonthlySavings
		}
		if o.MonthlySavings.GreaterThan(best) {
			best = o.MonthlySavings
		}
	}
	return best
}
