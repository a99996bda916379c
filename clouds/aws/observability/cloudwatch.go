// Package observability - AWS CloudWatch cost calculator
// CloudWatch pricing model:
// - Custom metrics (per metric-month)
// - Alarms (per alarm-month)
// - Log ingestion (per GB)
package observability

import (
	"github.com/shopspring/decimal"

	"archcost/clouds"
	"archcost/core/pricing/primitives"
	"archcost/core/types"
)

const kbPerGB = 1024 * 1024

// CloudWatchCalculator prices metrics, alarms and logs
type CloudWatchCalculator struct{}

// NewCloudWatchCalculator creates a CloudWatch calculator
func NewCloudWatchCalculator() *CloudWatchCalculator {
	return &CloudWatchCalculator{}
}

// ServiceID returns the catalog service id
func (c *CloudWatchCalculator) ServiceID() types.ServiceID {
	return types.ServiceCloudWatch
}

// Calculate prices metrics, alarms and log ingestion.
// Without a configured volume, logs are estimated from API requests.
func (c *CloudWatchCalculator) Calculate(ctx clouds.PricingContext) ([]types.Component, error) {
	cfg, _ := clouds.ConfigAs[types.MonitoringConfig](ctx.Config)

	metrics, err := ctx.Unit("metrics", decimal.NewFromInt(int64(cfg.CustomMetrics)))
	if err != nil {
		return nil, err
	}
	alarms, err := ctx.Unit("alarms", decimal.NewFromInt(int64(cfg.Alarms)))
	if err != nil {
		return nil, err
	}

	var logGB decimal.Decimal
	if cfg.LogIngestionGB > 0 {
		logGB = primitives.FromFloat(cfg.LogIngestionGB)
	} else {
		logGB = decimal.NewFromInt(ctx.Usage.APIRequests).
			Mul(primitives.FromFloat(ctx.Settings.LogKBPerRequest)).
			Div(decimal.NewFromInt(kbPerGB))
	}
	logs, err := ctx.Unit("logs", logGB)
	if err != nil {
		return nil, err
	}

	return []types.Component{metrics, alarms, logs}, nil
}
