// Package cost prices an architecture against the catalog.
// The engine looks up each service's calculator, scales components by the
// region multiplier, applies free tier savings and aggregates totals.
// Calculate never fails: problems become diagnostics on the result.
package cost

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"archcost/clouds"
	"archcost/clouds/aws"
	"archcost/core/catalog"
	"archcost/core/freetier"
	"archcost/core/pricing/primitives"
	"archcost/core/types"
	cerrors "archcost/internal/errors"
	"archcost/internal/logging"
)

// Engine computes monthly costs
type Engine struct {
	catalog  *catalog.Catalog
	registry *clouds.Registry
	freeTier *freetier.Calculator
	settings clouds.Settings
	logger   *zap.Logger
}

// Option configures an engine
type Option func(*Engine)

// WithRegistry replaces the default AWS calculator registry
func WithRegistry(r *clouds.Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// WithSettings replaces the default calculator assumptions
func WithSettings(s clouds.Settings) Option {
	return func(e *Engine) { e.settings = s }
}

// WithLogger sets the engine logger
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an engine over a loaded catalog
func NewEngine(cat *catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog:  cat,
		settings: clouds.DefaultSettings(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = aws.NewRegistry()
	}
	e.logger = logging.Named("cost", e.logger)
	e.freeTier = freetier.NewCalculator(e.logger.Named("freetier"))
	return e
}

// Catalog returns the catalog the engine prices against
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Settings returns the calculator assumptions
func (e *Engine) Settings() clouds.Settings {
	return e.settings
}

// ResolveRegion returns the catalog region, or the 1.0 fallback and a diagnostic
func (e *Engine) ResolveRegion(code string) (types.Region, *cerrors.Error) {
	if r, ok := e.catalog.Region(code); ok {
		return r, nil
	}
	return types.Region{Code: code, Multiplier: 1.0, FreeTierEligible: false}, cerrors.RegionNotFound(code)
}

// Calculate prices every service of the architecture for one month
func (e *Engine) Calculate(arch types.Architecture, usage types.UsageProfile, region string, freeTierEnabled bool) *types.CostResult {
	result := &types.CostResult{
		ServiceCosts:        make([]types.ServiceCost, 0, len(arch.Services)),
		BreakdownByCategory: make(map[types.Category]decimal.Decimal),
		Region:              region,
		Currency:            types.CurrencyUSD,
		FreeTierEnabled:     freeTierEnabled,
	}

	clean, issues := usage.Sanitize()
	for _, issue := range issues {
		result.Diagnostics = append(result.Diagnostics, cerrors.InvalidUsage(issue.Metric, issue.Value))
	}
	result.Usage = clean

	r, diag := e.ResolveRegion(region)
	if diag != nil {
		result.Diagnostics = append(result.Diagnostics, diag)
	}
	result.RegionMultiplier = primitives.FromFloat(r.Multiplier)

	for _, su := range arch.Services {
		sc, diag := e.price(su, clean, r, freeTierEnabled)
		if diag != nil {
			result.Diagnostics = append(result.Diagnostics, diag)
			e.logger.Warn("service not priced",
				zap.String("service", string(su.ServiceID)),
				zap.String("purpose", su.Purpose),
				zap.Error(diag))
		}
		result.ServiceCosts = append(result.ServiceCosts, sc)
	}

	aggregate(result)

	e.logger.Debug("architecture priced",
		zap.String("region", region),
		zap.Int("services", len(result.ServiceCosts)),
		zap.String("total", result.TotalMonthlyCost.String()),
		zap.String("net", result.NetMonthlyCost.String()),
		zap.Int("diagnostics", len(result.Diagnostics)))

	return result
}

// price computes one service entry
func (e *Engine) price(su types.ServiceUsage, usage types.UsageProfile, region types.Region, freeTierEnabled bool) (types.ServiceCost, *cerrors.Error) {
	sc := types.ServiceCost{
		ServiceID:        su.ServiceID,
		Purpose:          su.Purpose,
		MonthlyCost:      decimal.Zero,
		FreeTierSavings:  decimal.Zero,
		FreeTierCoverage: types.CoverageNone,
	}

	def, err := e.catalog.Lookup(su.ServiceID)
	calc, ok := e.registry.Get(su.ServiceID)
	if err != nil || !ok {
		sc.Unpriced = true
		return sc, cerrors.UnknownService(string(su.ServiceID))
	}
	sc.Category = def.Category

	if err := types.CheckConfiguration(su.ServiceID, su.Config); err != nil {
		sc.Unpriced = true
		return sc, cerrors.InvalidConfiguration(string(su.ServiceID), err)
	}

	components, err := calc.Calculate(clouds.PricingContext{
		Service:  def,
		Usage:    usage,
		Config:   su.Config,
		Settings: e.settings,
	})
	if err != nil {
		sc.Unpriced = true
		return sc, cerrors.InvalidConfiguration(string(su.ServiceID), err)
	}

	multiplier := primitives.FromFloat(region.Multiplier)
	for i := range components {
		components[i].Rate = components[i].Rate.Mul(multiplier)
		components[i].Cost = primitives.NonNegative(components[i].Cost.Mul(multiplier))
		sc.MonthlyCost = sc.MonthlyCost.Add(components[i].Cost)
	}
	sc.Breakdown = components

	ft := e.freeTier.ApplySavings(def, components, sc.MonthlyCost, region, freeTierEnabled)
	sc.FreeTierSavings = ft.Savings
	sc.FreeTierCoverage = ft.Coverage

	return sc, nil
}

func aggregate(result *types.CostResult) {
	total := decimal.Zero
	savings := decimal.Zero
	for _, sc := range result.ServiceCosts {
		total = total.Add(sc.MonthlyCost)
		savings = savings.Add(sc.FreeTierSavings)
		if sc.Category != "" {
			result.BreakdownByCategory[sc.Category] = result.BreakdownByCategory[sc.Category].Add(sc.MonthlyCost)
		}
	}
	result.TotalMonthlyCost = total
	result.FreeTierSavings = savings
	result.NetMonthlyCost = primitives.NonNegative(total.Sub(savings))
}
