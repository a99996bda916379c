// Package clouds - Common calculator interfaces and types
// This package defines the contract that every service calculator implements.
// Calculators turn configuration + usage into base-rate components;
// they never apply region multipliers or free tier.
package clouds

import (
	"fmt"

	"github.com/shopspring/decimal"

	"archcost/core/catalog"
	"archcost/core/pricing/primitives"
	"archcost/core/types"
)

// Calculator prices one service
type Calculator interface {
	// ServiceID returns the catalog service this calculator prices
	ServiceID() types.ServiceID

	// Calculate returns the service's cost components at base (us-east-1) rates
	Calculate(ctx PricingContext) ([]types.Component, error)
}

// Settings are engine-wide assumptions that calculators read
type Settings struct {
	// DynamoDBReadRatio is the share of on-demand requests that are reads
	DynamoDBReadRatio float64 `json:"dynamodb_read_ratio"`

	// S3WriteRatio is the share of S3 requests that are PUT/POST
	S3WriteRatio float64 `json:"s3_write_ratio"`

	// RequestsPerLCU is how many requests one ALB LCU-hour absorbs
	RequestsPerLCU float64 `json:"requests_per_lcu"`

	// LogKBPerRequest estimates log ingestion when no volume is configured
	LogKBPerRequest float64 `json:"log_kb_per_request"`

	// DefaultLambdaMemoryMB and DefaultLambdaDurationMs apply when a function has no config
	DefaultLambdaMemoryMB   int     `json:"default_lambda_memory_mb"`
	DefaultLambdaDurationMs float64 `json:"default_lambda_duration_ms"`
}

// DefaultSettings returns the standard assumptions
func DefaultSettings() Settings {
	return Settings{
		DynamoDBReadRatio:       0.7,
		S3WriteRatio:            0.1,
		RequestsPerLCU:          90000,
		LogKBPerRequest:         1,
		DefaultLambdaMemoryMB:   128,
		DefaultLambdaDurationMs: 100,
	}
}

// PricingContext is everything a calculator sees
type PricingContext struct {
	// Service is the catalog definition
	Service *catalog.ServiceDefinition

	// Usage is the sanitized architecture-wide usage profile
	Usage types.UsageProfile

	// Config is the validated configuration variant (nil = defaults)
	Config types.Configuration

	// Settings are engine assumptions
	Settings Settings
}

// component looks up a catalog component or fails
func (ctx PricingContext) component(name string) (*catalog.PriceComponent, error) {
	pc, ok := ctx.Service.Component(name)
	if !ok {
		return nil, fmt.Errorf("%s: catalog has no %q component", ctx.Service.ID, name)
	}
	return pc, nil
}

// Unit prices quantity with a unit, flat or capacity component
func (ctx PricingContext) Unit(name string, quantity decimal.Decimal) (types.Component, error) {
	pc, err := ctx.component(name)
	if err != nil {
		return types.Component{}, err
	}
	return newComponent(pc, primitives.Unit(quantity, pc.UnitRate()), ""), nil
}

// Hourly prices instance-hours of a class with an hourly component
func (ctx PricingContext) Hourly(name, class string, count int, hours float64) (types.Component, error) {
	pc, err := ctx.component(name)
	if err != nil {
		return types.Component{}, err
	}
	rate, ok := pc.ClassRate(class)
	if !ok {
		return types.Component{}, fmt.Errorf("%s: no %s rate for class %q", ctx.Service.ID, name, class)
	}
	return newComponent(pc, primitives.InstanceHours(count, hours, rate), class), nil
}

// Tiered prices quantity with a tiered component
func (ctx PricingContext) Tiered(name string, quantity decimal.Decimal) (types.Component, error) {
	pc, err := ctx.component(name)
	if err != nil {
		return types.Component{}, err
	}
	return newComponent(pc, primitives.Tiered(quantity, pc.Tiers), ""), nil
}

// ConfigAs returns the configuration as variant T; false when unset or a different variant
func ConfigAs[T types.Configuration](cfg types.Configuration) (T, bool) {
	var zero T
	if cfg == nil {
		return zero, false
	}
	v, ok := cfg.(T)
	return v, ok
}

func newComponent(pc *catalog.PriceComponent, c primitives.Cost, class string) types.Component {
	return types.Component{
		Name:      pc.Name,
		Dimension: pc.Dimension,
		Quantity:  c.Quantity,
		Unit:      pc.Unit,
		Rate:      c.Rate,
		Cost:      c.Amount,
		Class:     class,
	}
}
