// Package apigateway - AWS API Gateway cost calculator
// API Gateway pricing model:
// - REST API: tiered per-request pricing
// - HTTP API: cheaper tiered per-request pricing
package apigateway

import (
	"github.com/shopspring/decimal"

	"archcost/clouds"
	"archcost/core/types"
)

// APIGatewayCalculator prices managed API front doors
type APIGatewayCalculator struct{}

// NewAPIGatewayCalculator creates an API Gateway calculator
func NewAPIGatewayCalculator() *APIGatewayCalculator {
	return &APIGatewayCalculator{}
}

// ServiceID returns the catalog service id
func (c *APIGatewayCalculator) ServiceID() types.ServiceID {
	return types.ServiceAPIGateway
}

// Calculate prices API requests with the REST (default) or HTTP schedule
func (c *APIGatewayCalculator) Calculate(ctx clouds.PricingContext) ([]types.Component, error) {
	cfg, _ := clouds.ConfigAs[types.NetworkingConfig](ctx.Config)

	name := "rest_requests"
	if cfg.APIType == "http" {
		name = "http_requests"
	}

	requests, err := ctx.Tiered(name, decimal.NewFromInt(ctx.Usage.APIRequests))
	if err != nil {
		return nil, err
	}
	return []types.Component{requests}, nil
}
