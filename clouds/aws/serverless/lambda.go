// Package serverless - AWS Lambda cost calculator
// Lambda pricing model:
// - Requests (per 1M requests)
// - Duration (per GB-second)
// - Architecture affects pricing (x86 vs ARM)
package serverless

import (
	"github.com/shopspring/decimal"

	"archcost/clouds"
	"archcost/core/types"
)

// LambdaCalculator prices functions
type LambdaCalculator struct{}

// NewLambdaCalculator creates a Lambda calculator
func NewLambdaCalculator() *LambdaCalculator {
	return &LambdaCalculator{}
}

// ServiceID returns the catalog service id
func (c *LambdaCalculator) ServiceID() types.ServiceID {
	return types.ServiceLambda
}

// Calculate prices requests and GB-seconds.
// Invocations default to the profile's API requests.
func (c *LambdaCalculator) Calculate(ctx clouds.PricingContext) ([]types.Component, error) {
	cfg, _ := clouds.ConfigAs[types.ServerlessConfig](ctx.Config)

	invocations := cfg.InvocationsPerMonth
	if invocations <= 0 {
		invocations = ctx.Usage.APIRequests
	}
	memoryMB := cfg.MemoryMB
	if memoryMB <= 0 {
		memoryMB = ctx.Settings.DefaultLambdaMemoryMB
	}
	durationMs := cfg.AvgDurationMs
	if durationMs <= 0 {
		durationMs = ctx.Settings.DefaultLambdaDurationMs
	}

	requests, err := ctx.Unit("requests", decimal.NewFromInt(invocations))
	if err != nil {
		return nil, err
	}

	durationComponent := "compute"
	if cfg.Architecture == "arm64" {
		durationComponent = "compute_arm64"
	}
	compute, err := ctx.Unit(durationComponent, GBSeconds(invocations, memoryMB, durationMs))
	if err != nil {
		return nil, err
	}

	return []types.Component{requests, compute}, nil
}

// GBSeconds returns invocations × memory (GB) × duration (s)
func GBSeconds(invocations int64, memoryMB int, durationMs float64) decimal.Decimal {
	if invocations <= 0 || memoryMB <= 0 || durationMs <= 0 {
		return decimal.Zero
	}
	memoryGB := decimal.NewFromInt(int64(memoryMB)).Div(decimal.NewFromInt(1024))
	seconds := decimal.NewFromFloat(durationMs).Div(decimal.NewFromInt(1000))
	return decimal.NewFromInt(invocations).Mul(memoryGB).Mul(seconds)
}
