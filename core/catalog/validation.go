// Package catalog - Catalog validation
// Ensures catalog integrity and enforces invariants.
package catalog

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/shopspring/decimal"

	"archcost/core/pricing/primitives"
	"archcost/core/types"
	cerrors "archcost/internal/errors"
)

// ValidationRule is a service definition validation rule
type ValidationRule func(*ServiceDefinition) error

// DefaultValidationRules returns the standard validation rules
func DefaultValidationRules() []ValidationRule {
	return []ValidationRule{
		validateIdentity,
		validateComponents,
		validateFreeTier,
	}
}

// Validate checks every service definition against the rules
func (c *Catalog) Validate(rules []ValidationRule) []error {
	var errs []error

	for _, id := range c.Services() {
		def := c.services[id]
		for _, rule := range rules {
			if err := rule(def); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", id, err))
			}
		}
	}

	return errs
}

// check runs all service rules plus the edition-wide rules and
// folds every violation into one CatalogIntegrity error
func (c *Catalog) check(ed edition) error {
	var result *multierror.Error

	seen := make(map[types.ServiceID]bool, len(ed.Services))
	for _, def := range ed.Services {
		if seen[def.ID] {
			result = multierror.Append(result, fmt.Errorf("%s: duplicate service", def.ID))
		}
		seen[def.ID] = true
	}

	for _, err := range c.Validate(DefaultValidationRules()) {
		result = multierror.Append(result, err)
	}

	if len(c.regions) == 0 {
		result = multierror.Append(result, fmt.Errorf("no regions"))
	}
	for _, r := range c.Regions() {
		if r.Multiplier < 1.0 {
			result = multierror.Append(result, fmt.Errorf("region %s: multiplier %v below 1.0", r.Code, r.Multiplier))
		}
	}
	if len(ed.Regions) != len(c.regions) {
		result = multierror.Append(result, fmt.Errorf("duplicate region codes"))
	}

	usd, ok := c.currencies[types.CurrencyUSD]
	if !ok || !usd.Equal(decimal.NewFromInt(1)) {
		result = multierror.Append(result, fmt.Errorf("currency table must map USD to 1"))
	}
	for _, code := range c.Currencies() {
		if !c.currencies[code].IsPositive() {
			result = multierror.Append(result, fmt.Errorf("currency %s: rate must be positive", code))
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return cerrors.CatalogIntegrity(
			fmt.Sprintf("pricing edition %s has %d integrity violations", ed.Version, len(result.Errors)), err)
	}
	return nil
}

// validateIdentity ensures the service is addressable and categorized
func validateIdentity(s *ServiceDefinition) error {
	if s.ID == "" {
		return fmt.Errorf("missing service id")
	}
	if !s.Category.Valid() {
		return fmt.Errorf("unknown category %q", s.Category)
	}
	if len(s.Components) == 0 {
		return fmt.Errorf("no pricing components")
	}
	return nil
}

// validateComponents ensures each component carries the fields its shape needs
func validateComponents(s *ServiceDefinition) error {
	var result *multierror.Error
	names := make(map[string]bool, len(s.Components))

	for _, pc := range s.Components {
		if pc.Name == "" {
			result = multierror.Append(result, fmt.Errorf("component without name"))
			continue
		}
		if names[pc.Name] {
			result = multierror.Append(result, fmt.Errorf("component %s: duplicate", pc.Name))
		}
		names[pc.Name] = true

		if pc.Per.IsNegative() {
			result = multierror.Append(result, fmt.Errorf("component %s: negative block size", pc.Name))
		}

		switch pc.Shape {
		case ShapeFlat, ShapeUnit, ShapeCapacity:
			if pc.Rate.IsNegative() {
				result = multierror.Append(result, fmt.Errorf("component %s: negative rate %s", pc.Name, pc.Rate))
			}
		case ShapeHourly:
			if len(pc.Classes) == 0 {
				result = multierror.Append(result, fmt.Errorf("component %s: hourly shape needs classes", pc.Name))
			}
			for class, rate := range pc.Classes {
				if !rate.IsPositive() {
					result = multierror.Append(result, fmt.Errorf("component %s: class %s rate must be positive", pc.Name, class))
				}
			}
		case ShapeTiered:
			if err := primitives.ValidateTiers(pc.Tiers); err != nil {
				result = multierror.Append(result, fmt.Errorf("component %s: %w", pc.Name, err))
			}
		default:
			result = multierror.Append(result, fmt.Errorf("component %s: unknown shape %q", pc.Name, pc.Shape))
		}
	}

	return result.ErrorOrNil()
}

// validateFreeTier ensures each limit points at a priced dimension
func validateFreeTier(s *ServiceDefinition) error {
	var result *multierror.Error
	dims := make(map[string]*PriceComponent)
	for i := range s.Components {
		if s.Components[i].Dimension != "" {
			dims[s.Components[i].Dimension] = &s.Components[i]
		}
	}

	seen := make(map[string]bool, len(s.FreeTier))
	for _, l := range s.FreeTier {
		pc, ok := dims[l.Dimension]
		if !ok {
			result = multierror.Append(result, fmt.Errorf("free tier dimension %q has no component", l.Dimension))
			continue
		}
		if seen[l.Dimension] {
			result = multierror.Append(result, fmt.Errorf("free tier dimension %q declared twice", l.Dimension))
		}
		seen[l.Dimension] = true

		hasQty, hasAllot := l.Quantity.IsPositive(), l.Allotment.IsPositive()
		if hasQty == hasAllot {
			result = multierror.Append(result, fmt.Errorf("free tier %s: exactly one of quantity or allotment must be positive", l.Dimension))
		}
		if hasAllot && pc.Shape != ShapeFlat {
			result = multierror.Append(result, fmt.Errorf("free tier %s: allotment requires a flat component", l.Dimension))
		}
		if l.Months < 0 {
			result = multierror.Append(result, fmt.Errorf("free tier %s: negative months", l.Dimension))
		}
		for _, class := range l.Classes {
			if _, ok := pc.ClassRate(class); !ok {
				result = multierror.Append(result, fmt.Errorf("free tier %s: class %s is not priced", l.Dimension, class))
			}
		}
	}

	return result.ErrorOrNil()
}

// MustLoad panics if the catalog cannot be loaded
func MustLoad(data []byte) *Catalog {
	c, err := Load(data, farFuture)
	if err != nil {
		panic(fmt.Sprintf("pricing catalog: %v", err))
	}
	return c
}
