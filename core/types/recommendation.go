package types

import (
	"math"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// RecommendationType identifies the rule that produced a recommendation
type RecommendationType string

const (
	RecRightsizing       RecommendationType = "rightsizing"
	RecGenerationUpgrade RecommendationType = "generation-upgrade"
	RecReservedInstance  RecommendationType = "reserved-instance"
	RecSpotInstance      RecommendationType = "spot-instance"
	RecStorageLifecycle  RecommendationType = "storage-lifecycle"
	RecCDNIntroduction   RecommendationType = "cdn-introduction"
	RecFreeTier          RecommendationType = "free-tier-enablement"
	RecServerless        RecommendationType = "serverless-migration"
	RecCapacityMode      RecommendationType = "capacity-mode"
)

// Level is an ordered low/medium/high rating used for impact, effort and risk
type Level int

const (
	LevelLow Level = iota + 1
	LevelMedium
	LevelHigh
)

// String returns the string representation
func (l Level) String() string {
	switch l {
	case LevelLow:
		return "low"
	case LevelMedium:
		return "medium"
	case LevelHigh:
		return "high"
	}
	return "unknown"
}

// MarshalText encodes the level by name
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Term is a commitment term
type Term string

const (
	Term1Year Term = "1yr"
	Term3Year Term = "3yr"
)

// Months returns the term length in months
func (t Term) Months() int {
	if t == Term3Year {
		return 36
	}
	return 12
}

// PaymentOption is a commitment payment option
type PaymentOption string

const (
	PaymentNoUpfront      PaymentOption = "no-upfront"
	PaymentPartialUpfront PaymentOption = "partial-upfront"
	PaymentAllUpfront     PaymentOption = "all-upfront"
)

// CommitmentOption is one term/payment variant of a reserved-capacity recommendation
type CommitmentOption struct {
	Term             Term            `json:"term"`
	Payment          PaymentOption   `json:"payment"`
	Discount         decimal.Decimal `json:"discount"`
	UpfrontCost      decimal.Decimal `json:"upfront_cost"`
	MonthlySavings   decimal.Decimal `json:"monthly_savings"`
	TermSavings      decimal.Decimal `json:"term_savings"`
	PaybackMonths    float64         `json:"payback_months"`
	ROI              float64         `json:"roi"`
	MonthlyRecurring decimal.Decimal `json:"monthly_recurring"`
}

// commitmentJSON mirrors CommitmentOption with ROI as a string so +Inf survives encoding
type commitmentJSON struct {
	Term             Term            `json:"term"`
	Payment          PaymentOption   `json:"payment"`
	Discount         decimal.Decimal `json:"discount"`
	UpfrontCost      decimal.Decimal `json:"upfront_cost"`
	MonthlySavings   decimal.Decimal `json:"monthly_savings"`
	TermSavings      decimal.Decimal `json:"term_savings"`
	PaybackMonths    float64         `json:"payback_months"`
	ROI              string          `json:"roi"`
	MonthlyRecurring decimal.Decimal `json:"monthly_recurring"`
}

// MarshalJSON encodes ROI as a string; it is "Infinity" when nothing is paid upfront.
func (o CommitmentOption) MarshalJSON() ([]byte, error) {
	roi := "Infinity"
	if !math.IsInf(o.ROI, 1) {
		roi = strconv.FormatFloat(o.ROI, 'f', 4, 64)
	}
	return json.Marshal(commitmentJSON{
		Term:             o.Term,
		Payment:          o.Payment,
		Discount:         o.Discount,
		UpfrontCost:      o.UpfrontCost,
		MonthlySavings:   o.MonthlySavings,
		TermSavings:      o.TermSavings,
		PaybackMonths:    o.PaybackMonths,
		ROI:              roi,
		MonthlyRecurring: o.MonthlyRecurring,
	})
}

// Recommendation is one ranked savings suggestion
type Recommendation struct {
	ID               string             `json:"id"`
	Type             RecommendationType `json:"type"`
	ServiceID        ServiceID          `json:"service,omitempty"`
	Purpose          string             `json:"purpose,omitempty"`
	Title            string             `json:"title"`
	Description      string             `json:"description"`
	Impact           Level              `json:"impact"`
	Effort           Level              `json:"effort"`
	RiskLevel        Level              `json:"risk_level"`
	PotentialSavings decimal.Decimal    `json:"potential_savings"`
	Preconditions    []string           `json:"preconditions,omitempty"`

	// Options lists commitment variants; the headline option drives PotentialSavings
	Options []CommitmentOption `json:"options,omitempty"`

	// Supersedes lists recommendation IDs that accepting this one replaces
	Supersedes []string `json:"supersedes,omitempty"`

	// ExclusiveGroup is shared by alternatives of which at most one should be applied
	ExclusiveGroup string `json:"exclusive_group,omitempty"`
}

// IsAlternative reports whether the recommendation belongs to an exclusive group
func (r Recommendation) IsAlternative() bool {
	return r.ExclusiveGroup != ""
}

// UsagePatternFlags describe workload traits the advisor cannot infer from costs
type UsagePatternFlags struct {
	// FaultTolerant enables spot recommendations. nil = true for non-critical categories.
	FaultTolerant *bool `json:"fault_tolerant,omitempty" yaml:"fault_tolerant"`

	// Steady marks usage as predictable enough for commitments. nil = true.
	Steady *bool `json:"steady,omitempty" yaml:"steady"`
}

// BoolPtr returns a pointer to v
func BoolPtr(v bool) *bool {
	return &v
}

// Float64Ptr returns a pointer to v
func Float64Ptr(v float64) *float64 {
	return &v
}
