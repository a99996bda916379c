// Package networking - AWS data transfer cost calculator
// Internet egress is tiered: the first GB is free, then rates drop by volume.
package networking

import (
	"archcost/clouds"
	"archcost/core/pricing/primitives"
	"archcost/core/types"
)

// DataTransferCalculator prices internet egress
type DataTransferCalculator struct{}

// NewDataTransferCalculator creates a data transfer calculator
func NewDataTransferCalculator() *DataTransferCalculator {
	return &DataTransferCalculator{}
}

// ServiceID returns the catalog service id
func (c *DataTransferCalculator) ServiceID() types.ServiceID {
	return types.ServiceDataTransfer
}

// Calculate prices DataTransferGB across the egress brackets
func (c *DataTransferCalculator) Calculate(ctx clouds.PricingContext) ([]types.Component, error) {
	egress, err := ctx.Tiered("egress", primitives.FromFloat(ctx.Usage.DataTransferGB))
	if err != nil {
		return nil, err
	}
	return []types.Component{egress}, nil
}
