package types

import (
	"github.com/shopspring/decimal"

	cerrors "archcost/internal/errors"
)

// Coverage describes how much of a service's usage falls inside the free tier
type Coverage string

const (
	CoverageFull    Coverage = "full"
	CoveragePartial Coverage = "partial"
	CoverageNone    Coverage = "none"
)

// Component is one named line of a service's cost breakdown
type Component struct {
	// Name is the component name (e.g., "compute", "storage", "requests")
	Name string `json:"name"`

	// Dimension is the free-tier dimension this component consumes (empty = none)
	Dimension string `json:"dimension,omitempty"`

	// Quantity is the billed quantity in Unit
	Quantity decimal.Decimal `json:"quantity"`

	// Unit is the billing unit (e.g., "instance-hours", "GB-months")
	Unit string `json:"unit"`

	// Rate is the effective unit rate after the region multiplier.
	// For tiered components it is the average rate over the quantity.
	Rate decimal.Decimal `json:"rate"`

	// Cost is the monthly cost of this component
	Cost decimal.Decimal `json:"cost"`

	// Class is the instance/node class when the rate depends on one
	Class string `json:"class,omitempty"`
}

// ServiceCost is the priced result for one architecture entry
type ServiceCost struct {
	ServiceID        ServiceID       `json:"service"`
	Purpose          string          `json:"purpose,omitempty"`
	Category         Category        `json:"category,omitempty"`
	MonthlyCost      decimal.Decimal `json:"monthly_cost"`
	FreeTierSavings  decimal.Decimal `json:"free_tier_savings"`
	FreeTierCoverage Coverage        `json:"free_tier_coverage"`
	Breakdown        []Component     `json:"breakdown,omitempty"`

	// Unpriced is set when the service could not be priced (unknown id, bad config)
	Unpriced bool `json:"unpriced,omitempty"`
}

// NetCost returns the monthly cost after free tier savings
func (s ServiceCost) NetCost() decimal.Decimal {
	net := s.MonthlyCost.Sub(s.FreeTierSavings)
	if net.IsNegative() {
		return decimal.Zero
	}
	return net
}

// Component returns the named component, if present
func (s ServiceCost) Component(name string) (Component, bool) {
	for _, c := range s.Breakdown {
		if c.Name == name {
			return c, true
		}
	}
	return Component{}, false
}

// CostResult is the priced result for a whole architecture.
//
// Invariants:
//
//	TotalMonthlyCost == Σ ServiceCosts[i].MonthlyCost
//	NetMonthlyCost   == max(0, TotalMonthlyCost − FreeTierSavings)
//	ServiceCosts[i].FreeTierSavings <= ServiceCosts[i].MonthlyCost
type CostResult struct {
	ServiceCosts        []ServiceCost                `json:"service_costs"`
	TotalMonthlyCost    decimal.Decimal              `json:"total_monthly_cost"`
	FreeTierSavings     decimal.Decimal              `json:"free_tier_savings"`
	NetMonthlyCost      decimal.Decimal              `json:"net_monthly_cost"`
	BreakdownByCategory map[Category]decimal.Decimal `json:"breakdown_by_category"`

	// Region is the region code the result was priced in
	Region string `json:"region"`

	// RegionMultiplier is the multiplier that was applied
	RegionMultiplier decimal.Decimal `json:"region_multiplier"`

	// Currency of every amount in the result
	Currency Currency `json:"currency"`

	// FreeTierEnabled echoes the flag the result was computed with
	FreeTierEnabled bool `json:"free_tier_enabled"`

	// Usage is the sanitized usage profile that was priced
	Usage UsageProfile `json:"usage"`

	// Diagnostics are non-fatal issues found while pricing
	Diagnostics []*cerrors.Error `json:"diagnostics,omitempty"`
}

// Service returns the first service cost entry for the id
func (r *CostResult) Service(id ServiceID) (ServiceCost, bool) {
	for _, sc := range r.ServiceCosts {
		if sc.ServiceID == id {
			return sc, true
		}
	}
	return ServiceCost{}, false
}

// ServiceFor returns the cost entry for an exact (serviceId, purpose) pair
func (r *CostResult) ServiceFor(id ServiceID, purpose string) (ServiceCost, bool) {
	for _, sc := range r.ServiceCosts {
		if sc.ServiceID == id && sc.Purpose == purpose {
			return sc, true
		}
	}
	return ServiceCost{}, false
}

// HasDiagnostic reports whether a diagnostic of the given type was recorded
func (r *CostResult) HasDiagnostic(t cerrors.Type) bool {
	for _, d := range r.Diagnostics {
		if d.Is(t) {
			return true
		}
	}
	return false
}
