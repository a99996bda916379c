// Package catalog - Authoritative pricing catalog
// Holds per-service pricing components, the region table and the currency table.
// The catalog is loaded once, validated, and never mutated afterwards.
package catalog

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"archcost/core/pricing/primitives"
	"archcost/core/types"
	cerrors "archcost/internal/errors"
)

// DateLayout is the layout of effective dates in the pricing file
const DateLayout = "2006-01-02"

// Shape classifies how a pricing component turns a quantity into cost
type Shape string

const (
	// ShapeFlat - fixed monthly fee per item (hosted zone, alarm)
	ShapeFlat Shape = "flat"
	// ShapeUnit - rate per unit or per block of units (GB-month, requests)
	ShapeUnit Shape = "unit"
	// ShapeHourly - hourly rate by instance/node class
	ShapeHourly Shape = "hourly"
	// ShapeTiered - marginal-bracket rate schedule
	ShapeTiered Shape = "tiered"
	// ShapeCapacity - hourly rate per provisioned capacity unit
	ShapeCapacity Shape = "capacity"
)

// Valid reports whether the shape is known
func (s Shape) Valid() bool {
	switch s {
	case ShapeFlat, ShapeUnit, ShapeHourly, ShapeTiered, ShapeCapacity:
		return true
	}
	return false
}

// PriceComponent is one billable dimension of a service
type PriceComponent struct {
	Name  string `yaml:"name" json:"name"`
	Shape Shape  `yaml:"shape" json:"shape"`
	Unit  string `yaml:"unit" json:"unit"`

	// Rate applies to flat, unit and capacity shapes, in USD per Per units
	Rate decimal.Decimal `yaml:"rate" json:"rate"`

	// Per is the block size Rate is quoted for (zero = 1)
	Per decimal.Decimal `yaml:"per" json:"per"`

	// Classes maps instance/node class to hourly rate (hourly shape)
	Classes map[string]decimal.Decimal `yaml:"classes" json:"classes,omitempty"`

	// Tiers is the bracket schedule (tiered shape)
	Tiers []primitives.Tier `yaml:"tiers" json:"tiers,omitempty"`

	// Dimension links the component to a free tier limit
	Dimension string `yaml:"dimension" json:"dimension,omitempty"`
}

// UnitRate returns the rate for a single unit
func (c *PriceComponent) UnitRate() decimal.Decimal {
	if c.Per.IsPositive() {
		return c.Rate.Div(c.Per)
	}
	return c.Rate
}

// ClassRate returns the hourly rate for a class
func (c *PriceComponent) ClassRate(class string) (decimal.Decimal, bool) {
	rate, ok := c.Classes[class]
	return rate, ok
}

// ClassNames returns the priced classes sorted by hourly rate, then name
func (c *PriceComponent) ClassNames() []string {
	names := make([]string, 0, len(c.Classes))
	for name := range c.Classes {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ri, rj := c.Classes[names[i]], c.Classes[names[j]]
		if !ri.Equal(rj) {
			return ri.LessThan(rj)
		}
		return names[i] < names[j]
	})
	return names
}

// FreeTierLimit is the monthly allotment of one dimension
type FreeTierLimit struct {
	Dimension string `yaml:"dimension" json:"dimension"`

	// Quantity is the free amount in the component's unit
	Quantity decimal.Decimal `yaml:"quantity" json:"quantity"`

	// Allotment is a free USD amount for flat components
	Allotment decimal.Decimal `yaml:"allotment" json:"allotment"`

	// Months is the eligibility window from account creation (zero = always free)
	Months int `yaml:"months" json:"months"`

	// Classes restricts the limit to these instance/node classes (empty = any)
	Classes []string `yaml:"classes" json:"classes,omitempty"`
}

// Always reports whether the limit never expires
func (l FreeTierLimit) Always() bool {
	return l.Months == 0
}

// AppliesTo reports whether the limit covers a class
func (l FreeTierLimit) AppliesTo(class string) bool {
	if len(l.Classes) == 0 {
		return true
	}
	for _, c := range l.Classes {
		if c == class {
			return true
		}
	}
	return false
}

// Duration returns "always" or "<n> months"
func (l FreeTierLimit) Duration() string {
	if l.Always() {
		return "always"
	}
	return fmt.Sprintf("%d months", l.Months)
}

// ServiceDefinition is the immutable pricing entry of a service
type ServiceDefinition struct {
	ID         types.ServiceID  `yaml:"id" json:"id"`
	Name       string           `yaml:"name" json:"name"`
	Category   types.Category   `yaml:"category" json:"category"`
	Components []PriceComponent `yaml:"components" json:"components"`
	FreeTier   []FreeTierLimit  `yaml:"free_tier" json:"free_tier,omitempty"`
}

// Component returns the named pricing component
func (s *ServiceDefinition) Component(name string) (*PriceComponent, bool) {
	for i := range s.Components {
		if s.Components[i].Name == name {
			return &s.Components[i], true
		}
	}
	return nil, false
}

// FreeTierFor returns the limit for a dimension
func (s *ServiceDefinition) FreeTierFor(dimension string) (FreeTierLimit, bool) {
	for _, l := range s.FreeTier {
		if l.Dimension == dimension {
			return l, true
		}
	}
	return FreeTierLimit{}, false
}

// HasFreeTier reports whether any free tier limit exists
func (s *ServiceDefinition) HasFreeTier() bool {
	return len(s.FreeTier) > 0
}

// edition is one dated version of the pricing table
type edition struct {
	Version       string                     `yaml:"version"`
	EffectiveDate string                     `yaml:"effective_date"`
	Currencies    map[string]decimal.Decimal `yaml:"currencies"`
	Regions       []types.Region             `yaml:"regions"`
	Services      []ServiceDefinition        `yaml:"services"`
}

type pricingFile struct {
	Editions []edition `yaml:"editions"`
}

// Catalog is the read-only pricing catalog.
// Definitions returned by Lookup must not be modified.
type Catalog struct {
	version    string
	effective  time.Time
	services   map[types.ServiceID]*ServiceDefinition
	regions    map[string]types.Region
	currencies map[types.Currency]decimal.Decimal
}

// Load parses a pricing file and selects the newest edition effective at asOf.
// Every integrity violation is reported; any violation is fatal.
func Load(data []byte, asOf time.Time) (*Catalog, error) {
	var f pricingFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, cerrors.CatalogIntegrity("malformed pricing file", err)
	}
	if len(f.Editions) == 0 {
		return nil, cerrors.CatalogIntegrity("pricing file has no editions", nil)
	}

	ed, effective, err := selectEdition(f.Editions, asOf)
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		version:    ed.Version,
		effective:  effective,
		services:   make(map[types.ServiceID]*ServiceDefinition, len(ed.Services)),
		regions:    make(map[string]types.Region, len(ed.Regions)),
		currencies: make(map[types.Currency]decimal.Decimal, len(ed.Currencies)),
	}
	for i := range ed.Services {
		def := ed.Services[i]
		c.services[def.ID] = &def
	}
	for _, r := range ed.Regions {
		c.regions[r.Code] = r
	}
	for code, rate := range ed.Currencies {
		c.currencies[types.Currency(code)] = rate
	}

	if err := c.check(ed); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadFile reads and loads a pricing file from disk
func LoadFile(path string, asOf time.Time) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cerrors.CatalogIntegrity("cannot read pricing file "+path, err)
	}
	return Load(data, asOf)
}

func selectEdition(editions []edition, asOf time.Time) (edition, time.Time, error) {
	var (
		best      edition
		bestDate  time.Time
		found     bool
		badDates  []string
		seenDates = make(map[string]bool)
	)
	for _, ed := range editions {
		date, err := time.Parse(DateLayout, ed.EffectiveDate)
		if err != nil {
			badDates = append(badDates, fmt.Sprintf("%s: %q", ed.Version, ed.EffectiveDate))
			continue
		}
		if seenDates[ed.EffectiveDate] {
			return edition{}, time.Time{}, cerrors.CatalogIntegrity(
				fmt.Sprintf("duplicate effective date %s", ed.EffectiveDate), nil)
		}
		seenDates[ed.EffectiveDate] = true
		if date.After(asOf) {
			continue
		}
		if !found || date.After(bestDate) {
			best, bestDate, found = ed, date, true
		}
	}
	if len(badDates) > 0 {
		return edition{}, time.Time{}, cerrors.CatalogIntegrity(
			fmt.Sprintf("invalid effective dates %v", badDates), nil)
	}
	if !found {
		return edition{}, time.Time{}, cerrors.CatalogIntegrity(
			fmt.Sprintf("no edition effective on %s", asOf.Format(DateLayout)), nil)
	}
	return best, bestDate, nil
}

// Lookup returns the definition for a service
func (c *Catalog) Lookup(id types.ServiceID) (*ServiceDefinition, error) {
	def, ok := c.services[id]
	if !ok {
		return nil, cerrors.NotFound("service", string(id))
	}
	return def, nil
}

// Region returns a region by code
func (c *Catalog) Region(code string) (types.Region, bool) {
	r, ok := c.regions[code]
	return r, ok
}

// Regions returns all regions sorted by code
func (c *Catalog) Regions() []types.Region {
	out := make([]types.Region, 0, len(c.regions))
	for _, r := range c.regions {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// CurrencyRate returns units of code per USD
func (c *Catalog) CurrencyRate(code types.Currency) (decimal.Decimal, bool) {
	rate, ok := c.currencies[code]
	return rate, ok
}

// Currencies returns all currency codes, sorted
func (c *Catalog) Currencies() []types.Currency {
	out := make([]types.Currency, 0, len(c.currencies))
	for code := range c.currencies {
		out = append(out, code)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Services returns all service ids, sorted
func (c *Catalog) Services() []types.ServiceID {
	out := make([]types.ServiceID, 0, len(c.services))
	for id := range c.services {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Version returns the edition version
func (c *Catalog) Version() string {
	return c.version
}

// EffectiveDate returns the edition's effective date
func (c *Catalog) EffectiveDate() time.Time {
	return c.effective
}

// Stats returns catalog statistics
func (c *Catalog) Stats() Stats {
	stats := Stats{ByCategory: make(map[types.Category]int)}
	for _, def := range c.services {
		stats.Services++
		stats.Components += len(def.Components)
		stats.ByCategory[def.Category]++
		if def.HasFreeTier() {
			stats.WithFreeTier++
		}
	}
	stats.Regions = len(c.regions)
	stats.Currencies = len(c.currencies)
	return stats
}

// Stats holds catalog statistics
type Stats struct {
	Services     int
	Components   int
	WithFreeTier int
	Regions      int
	Currencies   int
	ByCategory   map[types.Category]int
}
