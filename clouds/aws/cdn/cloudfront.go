// Package cdn - AWS CloudFront cost calculator
// CloudFront pricing model:
// - Data transfer out to internet (tiered)
// - HTTP/HTTPS requests (per 10K)
package cdn

import (
	"github.com/shopspring/decimal"

	"archcost/clouds"
	"archcost/core/pricing/primitives"
	"archcost/core/types"
)

// CloudFrontCalculator prices content delivery
type CloudFrontCalculator struct{}

// NewCloudFrontCalculator creates a CloudFront calculator
func NewCloudFrontCalculator() *CloudFrontCalculator {
	return &CloudFrontCalculator{}
}

// ServiceID returns the catalog service id
func (c *CloudFrontCalculator) ServiceID() types.ServiceID {
	return types.ServiceCloudFront
}

// Calculate prices edge transfer (DataTransferGB) and requests (PageViews)
func (c *CloudFrontCalculator) Calculate(ctx clouds.PricingContext) ([]types.Component, error) {
	cfg, _ := clouds.ConfigAs[types.NetworkingConfig](ctx.Config)

	transfer, err := ctx.Tiered("transfer", primitives.FromFloat(ctx.Usage.DataTransferGB))
	if err != nil {
		return nil, err
	}

	requestComponent := "requests"
	if cfg.Protocol == "http" {
		requestComponent = "requests_http"
	}
	requests, err := ctx.Unit(requestComponent, decimal.NewFromInt(ctx.Usage.PageViews))
	if err != nil {
		return nil, err
	}

	return []types.Component{transfer, requests}, nil
}
