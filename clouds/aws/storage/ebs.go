// Package storage - AWS EBS cost calculator
// EBS pricing model:
// - Storage (per GB-month, by volume type)
// - Provisioned IOPS (io1/io2, and gp3 above the 3,000 baseline)
package storage

import (
	"github.com/shopspring/decimal"

	"archcost/clouds"
	"archcost/core/pricing/primitives"
	"archcost/core/types"
)

// GP3BaselineIOPS is included in the gp3 storage price
const GP3BaselineIOPS = 3000

// EBSCalculator prices block storage volumes
type EBSCalculator struct{}

// NewEBSCalculator creates an EBS calculator
func NewEBSCalculator() *EBSCalculator {
	return &EBSCalculator{}
}

// ServiceID returns the catalog service id
func (c *EBSCalculator) ServiceID() types.ServiceID {
	return types.ServiceEBS
}

// Calculate prices volume storage and provisioned IOPS
func (c *EBSCalculator) Calculate(ctx clouds.PricingContext) ([]types.Component, error) {
	cfg, _ := clouds.ConfigAs[types.StorageConfig](ctx.Config)

	volumeType := cfg.VolumeType
	if volumeType == "" {
		volumeType = "gp3"
	}
	storageGB := cfg.StorageGB
	if storageGB <= 0 {
		storageGB = ctx.Usage.StorageGB
	}

	storage, err := ctx.Unit("storage_"+volumeType, primitives.FromFloat(storageGB))
	if err != nil {
		return nil, err
	}
	components := []types.Component{storage}

	var iopsName string
	var billableIOPS int
	switch volumeType {
	case "io1", "io2":
		iopsName, billableIOPS = "iops_provisioned", cfg.IOPS
	case "gp3":
		iopsName, billableIOPS = "iops_gp3", cfg.IOPS-GP3BaselineIOPS
	}
	if iopsName != "" && billableIOPS > 0 {
		iops, err := ctx.Unit(iopsName, decimal.NewFromInt(int64(billableIOPS)))
		if err != nil {
			return nil, err
		}
		components = append(components, iops)
	}

	return components, nil
}
