package types

import "github.com/shopspring/decimal"

// GrowthModel names a usage growth curve
type GrowthModel string

const (
	GrowthLinear      GrowthModel = "linear"
	GrowthExponential GrowthModel = "exponential"
	GrowthSeasonal    GrowthModel = "seasonal"
	GrowthCustom      GrowthModel = "custom"
)

// GrowthScenario configures a projection run
type GrowthScenario struct {
	Model GrowthModel `json:"model" yaml:"model"`

	// Rate is the growth fraction per month (0.05 = 5%)
	Rate float64 `json:"rate" yaml:"rate"`

	// CostThreshold raises a cost alert when a month's net cost exceeds it (zero = off)
	CostThreshold decimal.Decimal `json:"cost_threshold" yaml:"-"`

	// GrowthThresholdPercent raises a growth alert when month-over-month growth exceeds it (zero = off)
	GrowthThresholdPercent float64 `json:"growth_threshold_percent" yaml:"growth_threshold_percent"`
}

// BaseConfig is the month-0 state a projection starts from
type BaseConfig struct {
	Usage    UsageProfile `json:"usage"`
	Region   string       `json:"region"`
	FreeTier bool         `json:"free_tier"`
}

// AlertType identifies a projection alert
type AlertType string

const (
	AlertCostThreshold   AlertType = "cost-threshold"
	AlertGrowthThreshold AlertType = "growth-threshold"
)

// Alert reports a threshold crossed in one projected month
type Alert struct {
	Type      AlertType       `json:"type"`
	Month     int             `json:"month"`
	Message   string          `json:"message"`
	Value     decimal.Decimal `json:"value"`
	Threshold decimal.Decimal `json:"threshold"`
}

// ScenarioProjection is the projected state of one month
type ScenarioProjection struct {
	Month             int          `json:"month"`
	Usage             UsageProfile `json:"usage"`
	Costs             CostResult   `json:"costs"`
	GrowthMultiplier  float64      `json:"growth_multiplier"`
	GrowthRatePercent float64      `json:"growth_rate_percent"`
	FreeTierApplied   bool         `json:"free_tier_applied"`
	Alerts            []Alert      `json:"alerts,omitempty"`
}

// ProjectionSummary aggregates a projection
type ProjectionSummary struct {
	Months           int             `json:"months"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	AverageMonthly   decimal.Decimal `json:"average_monthly"`
	PeakMonth        int             `json:"peak_month"`
	PeakCost         decimal.Decimal `json:"peak_cost"`
	FirstAlertMonth  int             `json:"first_alert_month,omitempty"`
	FreeTierEndMonth int             `json:"free_tier_end_month,omitempty"`
}
