// Package freetier computes free tier savings for priced services.
// Savings per dimension are min(used, limit) at the effective unit rate,
// or the lesser of cost and allotment for flat components, and never
// exceed the service's gross cost. Coverage is none only when the free
// tier cannot apply at all: disabled, ineligible region, or no catalog limits.
package freetier

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"archcost/core/catalog"
	"archcost/core/pricing/primitives"
	"archcost/core/types"
	"archcost/internal/logging"
)

// DimensionSavings is the free tier applied to one component
type DimensionSavings struct {
	Component string          `json:"component"`
	Dimension string          `json:"dimension"`
	Used      decimal.Decimal `json:"used"`
	Free      decimal.Decimal `json:"free"`
	Savings   decimal.Decimal `json:"savings"`
	Always    bool            `json:"always"`
}

// Result is the free tier outcome for one service
type Result struct {
	Savings    decimal.Decimal    `json:"savings"`
	Coverage   types.Coverage     `json:"coverage"`
	Dimensions []DimensionSavings `json:"dimensions,omitempty"`
}

func none() Result {
	return Result{Savings: decimal.Zero, Coverage: types.CoverageNone}
}

// Calculator applies catalog free tier limits
type Calculator struct {
	logger *zap.Logger
}

// NewCalculator creates a free tier calculator. A nil logger uses the global logger.
func NewCalculator(logger *zap.Logger) *Calculator {
	return &Calculator{logger: logging.Named("freetier", logger)}
}

// ApplySavings computes the savings of one service.
// components are the service's priced components after the region multiplier;
// their quantities are the used amount of each dimension.
func (c *Calculator) ApplySavings(
	def *catalog.ServiceDefinition,
	components []types.Component,
	grossCost decimal.Decimal,
	region types.Region,
	enabled bool,
) Result {
	if !enabled || !Eligible(def, region) {
		return none()
	}

	multiplier := primitives.FromFloat(region.Multiplier)
	if multiplier.IsZero() {
		multiplier = decimal.NewFromInt(1)
	}

	remaining := make(map[string]decimal.Decimal, len(def.FreeTier))
	for _, l := range def.FreeTier {
		if l.Allotment.IsPositive() {
			remaining[l.Dimension] = l.Allotment.Mul(multiplier)
		} else {
			remaining[l.Dimension] = l.Quantity
		}
	}

	result := Result{Savings: decimal.Zero}

	for _, comp := range components {
		if comp.Dimension == "" {
			continue
		}
		limit, ok := def.FreeTierFor(comp.Dimension)
		if !ok || !limit.AppliesTo(comp.Class) {
			continue
		}

		left := remaining[comp.Dimension]
		var free, savings decimal.Decimal

		if limit.Allotment.IsPositive() {
			// flat allotment: left is a USD amount
			savings = decimal.Min(comp.Cost, left)
			free = savings
			remaining[comp.Dimension] = left.Sub(savings)
		} else {
			free = decimal.Min(comp.Quantity, left)
			savings = c.unitSavings(def, comp, free, multiplier)
			remaining[comp.Dimension] = left.Sub(free)
		}

		savings = primitives.Clamp(savings, decimal.Zero, comp.Cost)
		if free.IsZero() && savings.IsZero() {
			continue
		}

		result.Savings = result.Savings.Add(savings)
		result.Dimensions = append(result.Dimensions, DimensionSavings{
			Component: comp.Name,
			Dimension: comp.Dimension,
			Used:      comp.Quantity,
			Free:      free,
			Savings:   savings,
			Always:    limit.Always(),
		})
	}

	result.Savings = primitives.Clamp(result.Savings, decimal.Zero, primitives.NonNegative(grossCost))
	result.Coverage = coverage(result.Savings, grossCost)

	c.logger.Debug("free tier applied",
		zap.String("service", string(def.ID)),
		zap.String("savings", result.Savings.String()),
		zap.String("coverage", string(result.Coverage)))

	return result
}

// unitSavings prices the free quantity at the component's effective rate.
// Tiered components are priced through their brackets so the free units
// receive the bracket rates they were billed at.
func (c *Calculator) unitSavings(def *catalog.ServiceDefinition, comp types.Component, free, multiplier decimal.Decimal) decimal.Decimal {
	if !free.IsPositive() {
		return decimal.Zero
	}
	if pc, ok := def.Component(comp.Name); ok && pc.Shape == catalog.ShapeTiered {
		return primitives.TieredCost(free, pc.Tiers).Mul(multiplier)
	}
	if free.Equal(comp.Quantity) {
		return comp.Cost
	}
	return free.Mul(comp.Rate)
}

// coverage grades a service the free tier applies to. Anything the allowance
// leaves billable, including classes it excludes, is partial.
func coverage(savings, gross decimal.Decimal) types.Coverage {
	if savings.GreaterThanOrEqual(gross) {
		return types.CoverageFull
	}
	return types.CoveragePartial
}

// Eligible reports whether any free tier could apply to the service in the region
func Eligible(def *catalog.ServiceDefinition, region types.Region) bool {
	return def != nil && def.HasFreeTier() && region.FreeTierEligible
}
