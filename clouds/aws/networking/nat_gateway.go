// Package networking - AWS NAT Gateway cost calculator
// NAT Gateway pricing model:
// - Gateway hours
// - Data processed (per GB)
package networking

import (
	"github.com/shopspring/decimal"

	"archcost/clouds"
	"archcost/core/pricing/primitives"
	"archcost/core/types"
)

// NATGatewayCalculator prices managed NAT gateways
type NATGatewayCalculator struct{}

// NewNATGatewayCalculator creates a NAT Gateway calculator
func NewNATGatewayCalculator() *NATGatewayCalculator {
	return &NATGatewayCalculator{}
}

// ServiceID returns the catalog service id
func (c *NATGatewayCalculator) ServiceID() types.ServiceID {
	return types.ServiceNATGateway
}

// Calculate prices gateway hours (one per AZ when MultiAZ) and processed GB
func (c *NATGatewayCalculator) Calculate(ctx clouds.PricingContext) ([]types.Component, error) {
	cfg, _ := clouds.ConfigAs[types.NetworkingConfig](ctx.Config)

	gateways := cfg.Gateways
	if gateways <= 0 {
		gateways = 1
	}
	if cfg.MultiAZ && gateways < 2 {
		gateways = 2
	}

	hours, err := ctx.Unit("hours", decimal.NewFromInt(int64(gateways*primitives.HoursPerMonth)))
	if err != nil {
		return nil, err
	}

	processedGB := cfg.ProcessedGB
	if processedGB <= 0 {
		processedGB = ctx.Usage.DataTransferGB
	}
	processed, err := ctx.Unit("processed", primitives.FromFloat(processedGB))
	if err != nil {
		return nil, err
	}

	return []types.Component{hours, processed}, nil
}
