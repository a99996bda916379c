// Package database - AWS DynamoDB cost calculator
// DynamoDB pricing model:
// - On-demand: read/write request units
// - Provisioned: read/write capacity unit hours
// - Storage (per GB-month)
package database

import (
	"github.com/shopspring/decimal"

	"archcost/clouds"
	"archcost/core/pricing/primitives"
	"archcost/core/types"
)

// Billing modes
const (
	BillingOnDemand    = "on-demand"
	BillingProvisioned = "provisioned"
)

// DefaultCapacityUnits is provisioned when no capacity is configured
const DefaultCapacityUnits = 5

// DynamoDBCalculator prices key-value tables
type DynamoDBCalculator struct{}

// NewDynamoDBCalculator creates a DynamoDB calculator
func NewDynamoDBCalculator() *DynamoDBCalculator {
	return &DynamoDBCalculator{}
}

// ServiceID returns the catalog service id
func (c *DynamoDBCalculator) ServiceID() types.ServiceID {
	return types.ServiceDynamoDB
}

// Calculate prices request or capacity units plus storage.
// On-demand requests come from the profile's APIRequests split by the read ratio.
func (c *DynamoDBCalculator) Calculate(ctx clouds.PricingContext) ([]types.Component, error) {
	cfg, _ := clouds.ConfigAs[types.DatabaseConfig](ctx.Config)

	var components []types.Component

	if cfg.BillingMode == BillingProvisioned {
		hours := primitives.MonthlyHours(cfg.HoursPerMonth, primitives.HoursPerMonth)
		rcu := cfg.ReadCapacityUnits
		if rcu <= 0 {
			rcu = DefaultCapacityUnits
		}
		wcu := cfg.WriteCapacityUnits
		if wcu <= 0 {
			wcu = DefaultCapacityUnits
		}

		read, err := ctx.Unit("read_capacity", unitHours(rcu, hours))
		if err != nil {
			return nil, err
		}
		write, err := ctx.Unit("write_capacity", unitHours(wcu, hours))
		if err != nil {
			return nil, err
		}
		components = append(components, read, write)
	} else {
		ratio := ctx.Settings.DynamoDBReadRatio
		if cfg.ReadRatio != nil {
			ratio = *cfg.ReadRatio
		}
		reads, writes := primitives.Split(ctx.Usage.APIRequests, ratio)

		read, err := ctx.Unit("read_requests", decimal.NewFromInt(reads))
		if err != nil {
			return nil, err
		}
		write, err := ctx.Unit("write_requests", decimal.NewFromInt(writes))
		if err != nil {
			return nil, err
		}
		components = append(components, read, write)
	}

	storageGB := cfg.StorageGB
	if storageGB <= 0 {
		storageGB = ctx.Usage.StorageGB
	}
	storage, err := ctx.Unit("storage", primitives.FromFloat(storageGB))
	if err != nil {
		return nil, err
	}

	return append(components, storage), nil
}

func unitHours(units int, hours float64) decimal.Decimal {
	return decimal.NewFromInt(int64(units)).Mul(primitives.FromFloat(hours))
}
