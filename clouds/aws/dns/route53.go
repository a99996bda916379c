// Package dns - AWS Route 53 cost calculator
// Route 53 pricing model:
// - Hosted zones (flat monthly fee)
// - Standard queries (per 1M)
package dns

import (
	"github.com/shopspring/decimal"

	"archcost/clouds"
	"archcost/core/types"
)

// Route53Calculator prices DNS
type Route53Calculator struct{}

// NewRoute53Calculator creates a Route 53 calculator
func NewRoute53Calculator() *Route53Calculator {
	return &Route53Calculator{}
}

// ServiceID returns the catalog service id
func (c *Route53Calculator) ServiceID() types.ServiceID {
	return types.ServiceRoute53
}

// Calculate prices hosted zones and queries (page views plus API requests)
func (c *Route53Calculator) Calculate(ctx clouds.PricingContext) ([]types.Component, error) {
	cfg, _ := clouds.ConfigAs[types.NetworkingConfig](ctx.Config)

	zonesCount := cfg.HostedZones
	if zonesCount <= 0 {
		zonesCount = 1
	}
	zones, err := ctx.Unit("hosted_zones", decimal.NewFromInt(int64(zonesCount)))
	if err != nil {
		return nil, err
	}

	queries, err := ctx.Unit("queries", decimal.NewFromInt(ctx.Usage.TotalRequests()))
	if err != nil {
		return nil, err
	}

	return []types.Component{zones, queries}, nil
}
