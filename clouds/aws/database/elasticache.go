// Package database - AWS ElastiCache cost calculator
// ElastiCache pricing model:
// - Node hours (by node type) × node count
package database

import (
	"archcost/clouds"
	"archcost/core/pricing/primitives"
	"archcost/core/types"
)

// DefaultCacheNodeType is priced when no node type is configured
const DefaultCacheNodeType = "cache.t3.micro"

// ElastiCacheCalculator prices in-memory cache clusters
type ElastiCacheCalculator struct{}

// NewElastiCacheCalculator creates an ElastiCache calculator
func NewElastiCacheCalculator() *ElastiCacheCalculator {
	return &ElastiCacheCalculator{}
}

// ServiceID returns the catalog service id
func (c *ElastiCacheCalculator) ServiceID() types.ServiceID {
	return types.ServiceElastiCache
}

// Calculate prices node hours
func (c *ElastiCacheCalculator) Calculate(ctx clouds.PricingContext) ([]types.Component, error) {
	cfg, _ := clouds.ConfigAs[types.CacheConfig](ctx.Config)

	nodeType := cfg.NodeType
	if nodeType == "" {
		nodeType = DefaultCacheNodeType
	}
	hours := primitives.MonthlyHours(cfg.HoursPerMonth, primitives.HoursPerMonth)

	nodes, err := ctx.Hourly("nodes", nodeType, cfg.NodeCount(), hours)
	if err != nil {
		return nil, err
	}
	return []types.Component{nodes}, nil
}
