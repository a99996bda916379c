// Package compute - AWS EC2 cost calculator
// EC2 pricing model:
// - Instance hours (by instance type)
// - EBS root volume (per GB-month)
package compute

import (
	"github.com/shopspring/decimal"

	"archcost/clouds"
	"archcost/core/pricing/primitives"
	"archcost/core/types"
)

// DefaultInstanceType is priced when no instance type is configured
const DefaultInstanceType = "t3.micro"

// EC2Calculator prices always-on virtual machines
type EC2Calculator struct{}

// NewEC2Calculator creates an EC2 calculator
func NewEC2Calculator() *EC2Calculator {
	return &EC2Calculator{}
}

// ServiceID returns the catalog service id
func (c *EC2Calculator) ServiceID() types.ServiceID {
	return types.ServiceEC2
}

// Calculate prices instance hours and the optional root volume.
// Instances run HoursPerMonth (default 730) each. With autoscaling, fleet hours
// grow to cover usage ComputeHours, capped at MaxCount instances.
func (c *EC2Calculator) Calculate(ctx clouds.PricingContext) ([]types.Component, error) {
	cfg, _ := clouds.ConfigAs[types.ComputeConfig](ctx.Config)

	instanceType := cfg.InstanceType
	if instanceType == "" {
		instanceType = DefaultInstanceType
	}

	hours := primitives.MonthlyHours(cfg.HoursPerMonth, primitives.HoursPerMonth)
	count := cfg.Instances()
	fleetHours := float64(count) * hours

	if cfg.Autoscaling && ctx.Usage.ComputeHours > fleetHours {
		maxCount := cfg.MaxCount
		if maxCount < count {
			maxCount = count
		}
		fleetHours = min(ctx.Usage.ComputeHours, float64(maxCount)*hours)
	}

	compute, err := ctx.Hourly("compute", instanceType, 1, fleetHours)
	if err != nil {
		return nil, err
	}
	components := []types.Component{compute}

	if cfg.RootVolumeGB > 0 {
		gbMonths := primitives.FromFloat(cfg.RootVolumeGB).Mul(decimal.NewFromInt(int64(count)))
		root, err := ctx.Unit("root_storage", gbMonths)
		if err != nil {
			return nil, err
		}
		components = append(components, root)
	}

	return components, nil
}

// InstanceFamily returns the family prefix of an instance type (e.g., "m5" from "m5.large")
func InstanceFamily(instanceType string) string {
	for i, c := range instanceType {
		if c == '.' {
			return instanceType[:i]
		}
	}
	return instanceType
}
