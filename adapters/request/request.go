// Package request decodes estimation requests from YAML or HCL files into the
// architecture, usage and preference values the core consumes. Both formats
// share one document shape and one validation path.
package request

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2"
	"github.com/shopspring/decimal"

	"archcost/core/determinism"
	"archcost/core/scenario"
	"archcost/core/types"
	cerrors "archcost/internal/errors"
)

// DefaultMonths is the projection horizon when a request names none
const DefaultMonths = 12

// Document is a request as written in a file
type Document struct {
	Name         string           `yaml:"name" hcl:"name,optional"`
	Region       string           `yaml:"region" hcl:"region,optional"`
	Currency     string           `yaml:"currency" hcl:"currency,optional"`
	FreeTier     *bool            `yaml:"free_tier" hcl:"free_tier,optional"`
	Budget       float64          `yaml:"budget" hcl:"budget,optional"`
	Scalability  int              `yaml:"scalability" hcl:"scalability,optional"`
	Complexity   int              `yaml:"complexity" hcl:"complexity,optional"`
	Usage        *UsageSpec       `yaml:"usage" hcl:"usage,block"`
	Services     []ServiceSpec    `yaml:"services" hcl:"service,block"`
	Preferences  *PreferenceSpec  `yaml:"preferences" hcl:"preferences,block"`
	Requirements *RequirementSpec `yaml:"requirements" hcl:"requirements,block"`
	Growth       *GrowthSpec      `yaml:"growth" hcl:"growth,block"`
	Flags        *FlagSpec        `yaml:"flags" hcl:"flags,block"`
}

// ServiceSpec declares one service. Config keys are the service's configuration fields.
type ServiceSpec struct {
	ID      string                 `yaml:"id" hcl:"id,label"`
	Purpose string                 `yaml:"purpose" hcl:"purpose,optional"`
	Config  map[string]interface{} `yaml:"config"`

	// Remain holds the configuration attributes of an HCL service block
	Remain hcl.Body `yaml:"-" hcl:",remain"`
}

// UsageSpec is the monthly usage profile
type UsageSpec struct {
	PageViews      int64   `yaml:"page_views" hcl:"page_views,optional"`
	UniqueUsers    int64   `yaml:"unique_users" hcl:"unique_users,optional"`
	APIRequests    int64   `yaml:"api_requests" hcl:"api_requests,optional"`
	DataTransferGB float64 `yaml:"data_transfer_gb" hcl:"data_transfer_gb,optional"`
	StorageGB      float64 `yaml:"storage_gb" hcl:"storage_gb,optional"`
	ComputeHours   float64 `yaml:"compute_hours" hcl:"compute_hours,optional"`
}

// PreferenceSpec holds the 1-5 weights; unset weights are neutral
type PreferenceSpec struct {
	CostPriority        int `yaml:"cost_priority" hcl:"cost_priority,optional"`
	PerformancePriority int `yaml:"performance_priority" hcl:"performance_priority,optional"`
	ComplexityTolerance int `yaml:"complexity_tolerance" hcl:"complexity_tolerance,optional"`
	ScalabilityNeed     int `yaml:"scalability_need" hcl:"scalability_need,optional"`
}

// RequirementSpec holds hard constraints on variants
type RequirementSpec struct {
	LongRunning bool `yaml:"long_running" hcl:"long_running,optional"`
	Stateful    bool `yaml:"stateful" hcl:"stateful,optional"`
	Relational  bool `yaml:"relational" hcl:"relational,optional"`
}

// GrowthSpec configures projections
type GrowthSpec struct {
	Model                  string   `yaml:"model" hcl:"model,optional"`
	Rate                   *float64 `yaml:"rate" hcl:"rate,optional"`
	Months                 int      `yaml:"months" hcl:"months,optional"`
	CostThreshold          float64  `yaml:"cost_threshold" hcl:"cost_threshold,optional"`
	GrowthThresholdPercent float64  `yaml:"growth_threshold_percent" hcl:"growth_threshold_percent,optional"`
}

// FlagSpec describes the workload to the advisor
type FlagSpec struct {
	FaultTolerant *bool `yaml:"fault_tolerant" hcl:"fault_tolerant,optional"`
	Steady        *bool `yaml:"steady" hcl:"steady,optional"`
}

// Defaults fill what a request leaves unset
type Defaults struct {
	Region   string
	Currency types.Currency
	FreeTier bool

	// Months and Growth apply when the document has no growth block or leaves a field unset
	Months int
	Growth types.GrowthScenario
}

// Request is a validated request ready for the core
type Request struct {
	Pattern      types.Pattern
	Usage        types.UsageProfile
	Region       string
	Currency     types.Currency
	FreeTier     bool
	Preferences  types.PreferenceWeights
	Requirements types.Requirements
	Growth       types.GrowthScenario
	Months       int
	Flags        types.UsagePatternFlags

	// SourceHash identifies the file the request came from
	SourceHash string
}

// Architecture returns the requested architecture
func (r *Request) Architecture() types.Architecture {
	return r.Pattern.Architecture
}

// Base returns the month-0 state for projections
func (r *Request) Base() types.BaseConfig {
	return types.BaseConfig{Usage: r.Usage, Region: r.Region, FreeTier: r.FreeTier}
}

// LoadFile reads and builds a request. .hcl files are HCL; everything else is YAML.
func LoadFile(path string, defaults Defaults) (*Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cerrors.Wrap(cerrors.TypeInput, "failed to read request", err)
	}
	return Parse(data, path, defaults)
}

// Parse decodes and builds a request. The filename extension selects the format
// and names the source in HCL diagnostics.
func Parse(data []byte, filename string, defaults Defaults) (*Request, error) {
	var (
		doc *Document
		err error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".hcl":
		doc, err = DecodeHCL(data, filename)
	default:
		doc, err = DecodeYAML(data)
	}
	if err != nil {
		return nil, err
	}

	req, err := Build(doc, defaults)
	if err != nil {
		return nil, err
	}
	req.SourceHash = determinism.ComputeHash(data).Short()
	return req, nil
}

// Build validates a document and converts it to a request. Every problem is reported.
func Build(doc *Document, defaults Defaults) (*Request, error) {
	var errs *multierror.Error

	req := &Request{
		Region:   strings.TrimSpace(doc.Region),
		Currency: types.Currency(strings.ToUpper(strings.TrimSpace(doc.Currency))),
		FreeTier: defaults.FreeTier,
		Months:   DefaultMonths,
	}
	if req.Region == "" {
		req.Region = defaults.Region
	}
	if req.Currency == "" {
		req.Currency = defaults.Currency
	}
	if req.Currency == "" {
		req.Currency = types.CurrencyUSD
	}
	if doc.FreeTier != nil {
		req.FreeTier = *doc.FreeTier
	}

	if u := doc.Usage; u != nil {
		req.Usage = types.UsageProfile{
			PageViews:      u.PageViews,
			UniqueUsers:    u.UniqueUsers,
			APIRequests:    u.APIRequests,
			DataTransferGB: u.DataTransferGB,
			StorageGB:      u.StorageGB,
			ComputeHours:   u.ComputeHours,
		}
	}

	arch := types.Architecture{Name: doc.Name}
	for i, s := range doc.Services {
		id := types.ServiceID(strings.ToLower(strings.TrimSpace(s.ID)))
		if id == "" {
			errs = multierror.Append(errs, fmt.Errorf("services[%d]: id is required", i))
			continue
		}
		cfg, err := decodeConfig(id, s.Config)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("services[%d] (%s): %w", i, id, err))
			continue
		}
		arch.Services = append(arch.Services, types.ServiceUsage{ServiceID: id, Purpose: s.Purpose, Config: cfg})
	}
	for _, err := range arch.Validate() {
		errs = multierror.Append(errs, err)
	}

	req.Pattern = types.Pattern{
		Name:         doc.Name,
		Architecture: arch,
		Scalability:  doc.Scalability,
		Complexity:   doc.Complexity,
	}
	if doc.Scalability < 0 || doc.Scalability > 5 || doc.Complexity < 0 || doc.Complexity > 5 {
		errs = multierror.Append(errs, fmt.Errorf("scalability and complexity must be between 1 and 5"))
	}

	req.Preferences = types.DefaultPreferences()
	if p := doc.Preferences; p != nil {
		override(&req.Preferences.CostPriority, p.CostPriority)
		override(&req.Preferences.PerformancePriority, p.PerformancePriority)
		override(&req.Preferences.ComplexityTolerance, p.ComplexityTolerance)
		override(&req.Preferences.ScalabilityNeed, p.ScalabilityNeed)
	}
	if err := req.Preferences.Validate(); err != nil {
		errs = multierror.Append(errs, err)
	}

	if doc.Budget < 0 {
		errs = multierror.Append(errs, fmt.Errorf("budget must not be negative, got %v", doc.Budget))
	}
	req.Requirements = types.Requirements{
		MonthlyBudget: decimal.NewFromFloat(max(doc.Budget, 0)),
		Usage:         req.Usage,
		Region:        req.Region,
		FreeTier:      req.FreeTier,
	}
	if r := doc.Requirements; r != nil {
		req.Requirements.LongRunning = r.LongRunning
		req.Requirements.Stateful = r.Stateful
		req.Requirements.Relational = r.Relational
	}

	req.Growth = defaults.Growth
	if req.Growth.Model == "" {
		req.Growth.Model = types.GrowthExponential
	}
	if defaults.Months != 0 {
		req.Months = defaults.Months
	}
	if g := doc.Growth; g != nil {
		if g.Model != "" {
			req.Growth.Model = types.GrowthModel(strings.ToLower(g.Model))
		}
		if g.Rate != nil {
			req.Growth.Rate = *g.Rate
		}
		if g.CostThreshold != 0 {
			req.Growth.CostThreshold = decimal.NewFromFloat(g.CostThreshold)
		}
		if g.GrowthThresholdPercent != 0 {
			req.Growth.GrowthThresholdPercent = g.GrowthThresholdPercent
		}
		if g.Months != 0 {
			req.Months = g.Months
		}
	}
	if err := scenario.ValidateScenario(req.Growth); err != nil {
		errs = multierror.Append(errs, err)
	}
	if req.Months < 1 || req.Months > scenario.MaxHorizon {
		errs = multierror.Append(errs, fmt.Errorf("growth months must be between 1 and %d, got %d", scenario.MaxHorizon, req.Months))
	}

	if f := doc.Flags; f != nil {
		req.Flags = types.UsagePatternFlags{FaultTolerant: f.FaultTolerant, Steady: f.Steady}
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, cerrors.Wrap(cerrors.TypeInput, "invalid request", err)
	}
	return req, nil
}

func override(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

// decodeConfig converts raw keys to the service's configuration variant.
// Unknown keys are rejected so typos do not silently fall back to defaults.
func decodeConfig(id types.ServiceID, raw map[string]interface{}) (types.Configuration, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	kind, ok := types.ConfigKindFor(id)
	if !ok {
		return nil, fmt.Errorf("service %q has no configuration schema", id)
	}

	switch kind {
	case types.KindCompute:
		return decodeInto[types.ComputeConfig](raw)
	case types.KindServerless:
		return decodeInto[types.ServerlessConfig](raw)
	case types.KindContainer:
		return decodeInto[types.ContainerConfig](raw)
	case types.KindStorage:
		return decodeInto[types.StorageConfig](raw)
	case types.KindDatabase:
		return decodeInto[types.DatabaseConfig](raw)
	case types.KindCache:
		return decodeInto[types.CacheConfig](raw)
	case types.KindNetworking:
		return decodeInto[types.NetworkingConfig](raw)
	case types.KindMonitoring:
		return decodeInto[types.MonitoringConfig](raw)
	}
	return nil, fmt.Errorf("unsupported configuration kind %s", kind)
}

func decodeInto[T types.Configuration](raw map[string]interface{}) (types.Configuration, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var cfg T
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
