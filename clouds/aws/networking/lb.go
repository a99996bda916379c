// Package networking - AWS Application Load Balancer cost calculator
// ALB pricing model:
// - Load balancer hours
// - Load Balancer Capacity Units (LCU) hours
package networking

import (
	"github.com/shopspring/decimal"

	"archcost/clouds"
	"archcost/core/pricing/primitives"
	"archcost/core/types"
)

// ALBCalculator prices application load balancers
type ALBCalculator struct{}

// NewALBCalculator creates an ALB calculator
func NewALBCalculator() *ALBCalculator {
	return &ALBCalculator{}
}

// ServiceID returns the catalog service id
func (c *ALBCalculator) ServiceID() types.ServiceID {
	return types.ServiceALB
}

// Calculate prices balancer hours and LCU-hours derived from API requests
func (c *ALBCalculator) Calculate(ctx clouds.PricingContext) ([]types.Component, error) {
	hours, err := ctx.Unit("hours", decimal.NewFromInt(primitives.HoursPerMonth))
	if err != nil {
		return nil, err
	}

	perLCU := ctx.Settings.RequestsPerLCU
	if perLCU <= 0 {
		perLCU = clouds.DefaultSettings().RequestsPerLCU
	}
	lcuHours := decimal.NewFromInt(ctx.Usage.APIRequests).Div(decimal.NewFromFloat(perLCU))
	lcu, err := ctx.Unit("lcu", lcuHours)
	if err != nil {
		return nil, err
	}

	return []types.Component{hours, lcu}, nil
}
