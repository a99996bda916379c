// Package database - AWS RDS cost calculator
// RDS pricing model:
// - Instance hours (by instance class; Multi-AZ doubles them)
// - Storage (per GB-month)
package database

import (
	"math"

	"archcost/clouds"
	"archcost/core/pricing/primitives"
	"archcost/core/types"
)

const (
	// DefaultDBInstanceClass is priced when no class is configured
	DefaultDBInstanceClass = "db.t3.micro"

	// MinAllocatedStorageGB is the smallest volume RDS provisions
	MinAllocatedStorageGB = 20
)

// RDSCalculator prices relational database instances
type RDSCalculator struct{}

// NewRDSCalculator creates an RDS calculator
func NewRDSCalculator() *RDSCalculator {
	return &RDSCalculator{}
}

// ServiceID returns the catalog service id
func (c *RDSCalculator) ServiceID() types.ServiceID {
	return types.ServiceRDS
}

// Calculate prices instance hours and allocated storage.
// Without a configured size, storage follows the profile's StorageGB with a 20 GB floor.
func (c *RDSCalculator) Calculate(ctx clouds.PricingContext) ([]types.Component, error) {
	cfg, _ := clouds.ConfigAs[types.DatabaseConfig](ctx.Config)

	class := cfg.InstanceClass
	if class == "" {
		class = DefaultDBInstanceClass
	}
	instances := 1
	if cfg.MultiAZ {
		instances = 2
	}
	hours := primitives.MonthlyHours(cfg.HoursPerMonth, primitives.HoursPerMonth)

	instance, err := ctx.Hourly("instance", class, instances, hours)
	if err != nil {
		return nil, err
	}

	storageGB := cfg.StorageGB
	if storageGB <= 0 {
		storageGB = math.Max(MinAllocatedStorageGB, ctx.Usage.StorageGB)
	}
	if cfg.MultiAZ {
		storageGB *= 2
	}
	storage, err := ctx.Unit("storage", primitives.FromFloat(storageGB))
	if err != nil {
		return nil, err
	}

	return []types.Component{instance, storage}, nil
}
