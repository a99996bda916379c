package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"archcost/core/advisor"
	"archcost/core/cost"
	"archcost/core/types"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, Default().Estimation, cfg.Estimation)
	assert.Equal(t, "table", cfg.Output.DefaultFormat)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := Default()
	cfg.Estimation.DefaultRegion = "eu-west-1"
	cfg.Pricing.DefaultCurrency = types.CurrencyEUR
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", loaded.Estimation.DefaultRegion)
	assert.Equal(t, types.CurrencyEUR, loaded.Pricing.DefaultCurrency)
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ARCHCOST_REGION", "ap-northeast-1")
	t.Setenv("ARCHCOST_CURRENCY", "jpy")
	t.Setenv("ARCHCOST_FREE_TIER", "false")
	t.Setenv("ARCHCOST_WORKERS", "4")
	t.Setenv("ARCHCOST_DYNAMODB_READ_RATIO", "0.9")
	t.Setenv("ARCHCOST_S3_WRITE_RATIO", "not-a-number")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)

	assert.Equal(t, "ap-northeast-1", cfg.Estimation.DefaultRegion)
	assert.Equal(t, types.Currency("JPY"), cfg.Pricing.DefaultCurrency)
	assert.False(t, cfg.Estimation.FreeTier)
	assert.Equal(t, 4, cfg.Estimation.Workers)

	s := cfg.Settings()
	assert.Equal(t, 0.9, s.DynamoDBReadRatio)
	assert.Equal(t, 0.1, s.S3WriteRatio, "malformed override is ignored")
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ARCHCOST_FORMAT=json\nARCHCOST_LOG_LEVEL=debug\n"), 0644))

	t.Setenv("ARCHCOST_LOG_LEVEL", "error")
	t.Setenv("ARCHCOST_FORMAT", "")
	os.Unsetenv("ARCHCOST_FORMAT")

	require.NoError(t, LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")))

	cfg := Default()
	cfg.ApplyEnv()
	assert.Equal(t, "json", cfg.Output.DefaultFormat)
	assert.Equal(t, "error", cfg.Logging.Level, "existing variables win over the file")
}

func TestCatalogDate(t *testing.T) {
	cfg := Default()
	cfg.Pricing.AsOf = "2024-06-01"
	d, err := cfg.CatalogDate()
	require.NoError(t, err)
	assert.Equal(t, 2024, d.Year())

	cfg.Pricing.AsOf = "June"
	_, err = cfg.CatalogDate()
	assert.Error(t, err)
}

func TestLoadCatalog(t *testing.T) {
	cfg := Default()
	cat, err := cfg.LoadCatalog()
	require.NoError(t, err)
	assert.NotEmpty(t, cat.Version())

	cfg.Pricing.AsOf = "2001-01-01"
	_, err = cfg.LoadCatalog()
	assert.Error(t, err, "no edition is effective that early")

	cfg = Default()
	cfg.Pricing.CatalogPath = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = cfg.LoadCatalog()
	assert.Error(t, err)
}

func reservedSavings(t *testing.T, cfg *Config) decimal.Decimal {
	t.Helper()
	cat, err := cfg.LoadCatalog()
	require.NoError(t, err)
	engine := cost.NewEngine(cat, cost.WithSettings(cfg.Settings()), cost.WithLogger(zap.NewNop()))

	arch := types.Architecture{Services: []types.ServiceUsage{
		{ServiceID: types.ServiceEC2, Purpose: "web", Config: types.ComputeConfig{InstanceType: "m5.large", Count: 2}},
	}}
	result := engine.Calculate(arch, types.UsageProfile{ComputeHours: 730}, "us-east-1", false)
	recs := advisor.New(engine, cfg.Advisor, zap.NewNop()).
		Generate(arch, result, types.UsagePatternFlags{FaultTolerant: types.BoolPtr(false)})

	for _, r := range recs {
		if r.Type == types.RecReservedInstance {
			return r.PotentialSavings
		}
	}
	t.Fatalf("no reserved-instance recommendation in %v", recs)
	return decimal.Zero
}

func TestAdvisorThresholdsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	const data = `{"advisor": {"commitments": [{"term": "1yr", "payment": "all-upfront", "discount": "0.5"}]}}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Advisor.Commitments, 1)
	assert.True(t, cfg.Advisor.CommitmentFloor.Equal(advisor.DefaultThresholds().CommitmentFloor),
		"fields absent from the file keep their defaults")

	base := reservedSavings(t, Default())
	calibrated := reservedSavings(t, cfg)
	require.True(t, base.IsPositive())
	// 0.5 instead of the default 0.40 all-upfront discount
	assert.True(t, calibrated.Equal(base.Mul(decimal.RequireFromString("1.25"))),
		"base %s calibrated %s", base, calibrated)
}

func TestProjectionDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	const data = `{"projection": {"model": "Linear", "rate": 0.05, "months": 36, "cost_threshold": 250}}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	t.Setenv("ARCHCOST_GROWTH_RATE", "0.08")
	cfg, err := Load(path)
	require.NoError(t, err)

	d := cfg.RequestDefaults()
	assert.Equal(t, 36, d.Months)
	assert.Equal(t, types.GrowthLinear, d.Growth.Model)
	assert.Equal(t, 0.08, d.Growth.Rate)
	assert.True(t, d.Growth.CostThreshold.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, "us-east-1", d.Region)
}
