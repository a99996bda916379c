// Package containers - AWS Fargate cost calculator
// Fargate pricing model:
// - vCPU hours per task
// - Memory GB hours per task
package containers

import (
	"archcost/clouds"
	"archcost/core/pricing/primitives"
	"archcost/core/types"
)

// Default task size when none is configured (0.25 vCPU / 0.5 GB)
const (
	DefaultVCPU     = 0.25
	DefaultMemoryGB = 0.5
)

// FargateCalculator prices serverless container tasks
type FargateCalculator struct{}

// NewFargateCalculator creates a Fargate calculator
func NewFargateCalculator() *FargateCalculator {
	return &FargateCalculator{}
}

// ServiceID returns the catalog service id
func (c *FargateCalculator) ServiceID() types.ServiceID {
	return types.ServiceFargate
}

// Calculate prices task vCPU-hours and GB-hours.
// With autoscaling, task hours grow to cover usage ComputeHours.
func (c *FargateCalculator) Calculate(ctx clouds.PricingContext) ([]types.Component, error) {
	cfg, _ := clouds.ConfigAs[types.ContainerConfig](ctx.Config)

	vcpu := cfg.VCPU
	if vcpu <= 0 {
		vcpu = DefaultVCPU
	}
	memory := cfg.MemoryGB
	if memory <= 0 {
		memory = DefaultMemoryGB
	}
	tasks := cfg.Tasks
	if tasks <= 0 {
		tasks = 1
	}

	hours := primitives.MonthlyHours(cfg.HoursPerMonth, primitives.HoursPerMonth)
	taskHours := float64(tasks) * hours
	if cfg.Autoscaling && ctx.Usage.ComputeHours > taskHours {
		taskHours = ctx.Usage.ComputeHours
	}

	vcpuHours, err := ctx.Unit("vcpu", primitives.FromFloat(vcpu*taskHours))
	if err != nil {
		return nil, err
	}
	memoryHours, err := ctx.Unit("memory", primitives.FromFloat(memory*taskHours))
	if err != nil {
		return nil, err
	}

	return []types.Component{vcpuHours, memoryHours}, nil
}
