// Package storage - AWS S3 cost calculator
// S3 pricing model:
// - Storage (per GB-month, by storage class; STANDARD is tiered)
// - Requests (PUT/COPY/POST/LIST per 1K, GET per 1K)
// - Data transfer out (tiered)
package storage

import (
	"github.com/shopspring/decimal"

	"archcost/clouds"
	"archcost/core/pricing/primitives"
	"archcost/core/types"
)

var storageClassComponents = map[string]string{
	"":                    "storage",
	"STANDARD":            "storage",
	"STANDARD_IA":         "storage_standard_ia",
	"INTELLIGENT_TIERING": "storage_intelligent_tiering",
	"GLACIER":             "storage_glacier",
}

// S3Calculator prices object storage
type S3Calculator struct{}

// NewS3Calculator creates an S3 calculator
func NewS3Calculator() *S3Calculator {
	return &S3Calculator{}
}

// ServiceID returns the catalog service id
func (c *S3Calculator) ServiceID() types.ServiceID {
	return types.ServiceS3
}

// Calculate prices storage, PUT/GET requests and transfer out.
// Storage defaults to the profile's StorageGB and requests to its APIRequests.
func (c *S3Calculator) Calculate(ctx clouds.PricingContext) ([]types.Component, error) {
	cfg, _ := clouds.ConfigAs[types.StorageConfig](ctx.Config)

	storageGB := cfg.StorageGB
	if storageGB <= 0 {
		storageGB = ctx.Usage.StorageGB
	}
	requests := cfg.Requests
	if requests <= 0 {
		requests = ctx.Usage.APIRequests
	}
	writeRatio := ctx.Settings.S3WriteRatio
	if cfg.WriteRatio != nil {
		writeRatio = *cfg.WriteRatio
	}

	var components []types.Component

	name := storageClassComponents[cfg.StorageClass]
	var (
		storage types.Component
		err     error
	)
	if name == "storage" {
		storage, err = ctx.Tiered(name, primitives.FromFloat(storageGB))
	} else {
		storage, err = ctx.Unit(name, primitives.FromFloat(storageGB))
	}
	if err != nil {
		return nil, err
	}
	components = append(components, storage)

	writes, reads := primitives.Split(requests, writeRatio)
	put, err := ctx.Unit("put_requests", decimal.NewFromInt(writes))
	if err != nil {
		return nil, err
	}
	get, err := ctx.Unit("get_requests", decimal.NewFromInt(reads))
	if err != nil {
		return nil, err
	}
	components = append(components, put, get)

	if cfg.TransferOutGB > 0 {
		transfer, err := ctx.Tiered("transfer_out", primitives.FromFloat(cfg.TransferOutGB))
		if err != nil {
			return nil, err
		}
		components = append(components, transfer)
	}

	return components, nil
}
