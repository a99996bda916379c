// Package config provides configuration management.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"

	"github.com/shopspring/decimal"

	"archcost/adapters/request"
	"archcost/clouds"
	"archcost/core/advisor"
	"archcost/core/catalog"
	"archcost/core/types"
	"archcost/internal/logging"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "ARCHCOST_"

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Pricing contains pricing configuration
	Pricing PricingConfig `json:"pricing"`

	// Estimation contains defaults for requests that leave them unset
	Estimation EstimationConfig `json:"estimation"`

	// Projection contains growth defaults for requests without a growth block
	Projection ProjectionConfig `json:"projection"`

	// Advisor contains recommendation rule thresholds and commitment discounts
	Advisor advisor.Thresholds `json:"advisor"`

	// Output contains output configuration
	Output OutputConfig `json:"output"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// PricingConfig contains pricing-related settings
type PricingConfig struct {
	// DefaultCurrency is the default currency
	DefaultCurrency types.Currency `json:"default_currency"`

	// CatalogPath replaces the embedded catalog when set
	CatalogPath string `json:"catalog_path,omitempty"`

	// AsOf selects the catalog edition effective on this date (YYYY-MM-DD, empty = today)
	AsOf string `json:"as_of,omitempty"`
}

// EstimationConfig contains engine defaults
type EstimationConfig struct {
	// DefaultRegion is used when a request names none
	DefaultRegion string `json:"default_region"`

	// FreeTier is used when a request does not say
	FreeTier bool `json:"free_tier"`

	// Workers bounds parallel projection steps (zero = GOMAXPROCS)
	Workers int `json:"workers"`

	// DynamoDBReadRatio is the share of on-demand requests that are reads
	DynamoDBReadRatio float64 `json:"dynamodb_read_ratio"`

	// S3WriteRatio is the share of S3 requests that are writes
	S3WriteRatio float64 `json:"s3_write_ratio"`
}

// ProjectionConfig contains projection defaults and alert limits
type ProjectionConfig struct {
	// Model is the growth model (linear, exponential, seasonal, custom)
	Model string `json:"model"`

	// Rate is the monthly growth fraction
	Rate float64 `json:"rate"`

	// Months is the projection horizon
	Months int `json:"months"`

	// CostThreshold raises a cost alert above this monthly net cost (zero = off)
	CostThreshold float64 `json:"cost_threshold"`

	// GrowthThresholdPercent raises a growth alert above this month-over-month growth (zero = off)
	GrowthThresholdPercent float64 `json:"growth_threshold_percent"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format
	DefaultFormat string `json:"default_format"`

	// ShowConfidence shows confidence scores
	ShowConfidence bool `json:"show_confidence"`
}

// Default returns a default configuration
func Default() *Config {
	settings := clouds.DefaultSettings()
	return &Config{
		Version: "1.0",
		Pricing: PricingConfig{
			DefaultCurrency: types.CurrencyUSD,
		},
		Estimation: EstimationConfig{
			DefaultRegion:     "us-east-1",
			FreeTier:          true,
			DynamoDBReadRatio: settings.DynamoDBReadRatio,
			S3WriteRatio:      settings.S3WriteRatio,
		},
		Projection: ProjectionConfig{
			Model:  string(types.GrowthExponential),
			Months: request.DefaultMonths,
		},
		Advisor: advisor.DefaultThresholds(),
		Output: OutputConfig{
			DefaultFormat:  "table",
			ShowConfidence: true,
		},
		Logging: logging.DefaultConfig(),
	}
}

// DefaultPath returns ~/.archcost/config.json
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".archcost", "config.json")
}

// Load loads configuration from a file. A missing file yields the defaults.
// Environment overrides are applied last.
func Load(path string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := json.Unmarshal(data, config); err != nil {
			return nil, err
		}
	}

	config.ApplyEnv()
	return config, nil
}

// LoadDotEnv loads KEY=value files into the process environment.
// Variables already set win; missing files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return err
		}
	}
	return nil
}

// ApplyEnv overrides fields from ARCHCOST_* variables. Malformed values are ignored.
func (c *Config) ApplyEnv() {
	if v, ok := lookup("REGION"); ok {
		c.Estimation.DefaultRegion = v
	}
	if v, ok := lookup("CURRENCY"); ok {
		c.Pricing.DefaultCurrency = types.Currency(strings.ToUpper(v))
	}
	if v, ok := lookup("CATALOG"); ok {
		c.Pricing.CatalogPath = v
	}
	if v, ok := lookup("AS_OF"); ok {
		c.Pricing.AsOf = v
	}
	if v, ok := lookup("FORMAT"); ok {
		c.Output.DefaultFormat = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		c.Logging.Level = v
	}
	if v, ok := lookup("LOG_FORMAT"); ok {
		c.Logging.Format = v
	}
	if b, ok := lookupBool("FREE_TIER"); ok {
		c.Estimation.FreeTier = b
	}
	if n, ok := lookupInt("WORKERS"); ok {
		c.Estimation.Workers = n
	}
	if f, ok := lookupFloat("DYNAMODB_READ_RATIO"); ok {
		c.Estimation.DynamoDBReadRatio = f
	}
	if f, ok := lookupFloat("S3_WRITE_RATIO"); ok {
		c.Estimation.S3WriteRatio = f
	}
	if v, ok := lookup("GROWTH_MODEL"); ok {
		c.Projection.Model = v
	}
	if f, ok := lookupFloat("GROWTH_RATE"); ok {
		c.Projection.Rate = f
	}
	if f, ok := lookupFloat("COST_THRESHOLD"); ok {
		c.Projection.CostThreshold = f
	}
}

// Settings returns the calculator settings with configured overrides
func (c *Config) Settings() clouds.Settings {
	s := clouds.DefaultSettings()
	if r := c.Estimation.DynamoDBReadRatio; r >= 0 && r <= 1 {
		s.DynamoDBReadRatio = r
	}
	if r := c.Estimation.S3WriteRatio; r >= 0 && r <= 1 {
		s.S3WriteRatio = r
	}
	return s
}

// RequestDefaults returns what a request falls back to when it leaves fields unset
func (c *Config) RequestDefaults() request.Defaults {
	return request.Defaults{
		Region:   c.Estimation.DefaultRegion,
		Currency: c.Pricing.DefaultCurrency,
		FreeTier: c.Estimation.FreeTier,
		Months:   c.Projection.Months,
		Growth: types.GrowthScenario{
			Model:                  types.GrowthModel(strings.ToLower(c.Projection.Model)),
			Rate:                   c.Projection.Rate,
			CostThreshold:          decimal.NewFromFloat(c.Projection.CostThreshold),
			GrowthThresholdPercent: c.Projection.GrowthThresholdPercent,
		},
	}
}

// CatalogDate returns the edition date, today when unset
func (c *Config) CatalogDate() (time.Time, error) {
	if c.Pricing.AsOf == "" {
		return time.Now().UTC(), nil
	}
	return time.Parse(catalog.DateLayout, c.Pricing.AsOf)
}

// LoadCatalog reads the configured catalog file, or the embedded catalog,
// at the configured edition date
func (c *Config) LoadCatalog() (*catalog.Catalog, error) {
	asOf, err := c.CatalogDate()
	if err != nil {
		return nil, fmt.Errorf("invalid catalog date %q: %w", c.Pricing.AsOf, err)
	}
	if c.Pricing.CatalogPath != "" {
		return catalog.LoadFile(c.Pricing.CatalogPath, asOf)
	}
	return catalog.DefaultAsOf(asOf)
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func lookupBool(key string) (bool, bool) {
	v, ok := lookup(key)
	if !ok {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	return b, err == nil
}

func lookupInt(key string) (int, bool) {
	v, ok := lookup(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	return n, err == nil
}

func lookupFloat(key string) (float64, bool) {
	v, ok := lookup(key)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	return f, err == nil
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
