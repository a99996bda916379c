package request

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/go-multierror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"archcost/core/types"
	cerrors "archcost/internal/errors"
)

var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

var defaults = Defaults{Region: "us-east-1", Currency: types.CurrencyUSD, FreeTier: true}

const webYAML = `
name: web-app
region: eu-west-1
currency: eur
free_tier: false
budget: 250
scalability: 4
usage:
  page_views: 100000
  api_requests: 1000000
  data_transfer_gb: 50
  storage_gb: 20
  compute_hours: 730
services:
  - id: ec2
    purpose: web
    config:
      instance_type: t3.small
      count: 2
  - id: alb
    purpose: lb
  - id: rds
    purpose: db
    config:
      instance_class: db.t3.small
      multi_az: true
  - id: s3
    purpose: assets
    config:
      storage_gb: 50
preferences:
  cost_priority: 5
requirements:
  relational: true
growth:
  model: exponential
  rate: 0.15
  months: 24
  cost_threshold: 500
  growth_threshold_percent: 20
flags:
  fault_tolerant: false
`

const webHCL = `
name        = "web-app"
region      = "eu-west-1"
currency    = "eur"
free_tier   = false
budget      = 250
scalability = 4

usage {
  page_views       = 100000
  api_requests     = 1000000
  data_transfer_gb = 50
  storage_gb       = 20
  compute_hours    = 730
}

service "ec2" {
  purpose       = "web"
  instance_type = "t3.small"
  count         = 2
}

service "alb" {
  purpose = "lb"
}

service "rds" {
  purpose        = "db"
  instance_class = "db.t3.small"
  multi_az       = true
}

service "s3" {
  purpose    = "assets"
  storage_gb = 50
}

preferences {
  cost_priority = 5
}

requirements {
  relational = true
}

growth {
  model                    = "exponential"
  rate                     = 0.15
  months                   = 24
  cost_threshold           = 500
  growth_threshold_percent = 20
}

flags {
  fault_tolerant = false
}
`

func build(t *testing.T, doc *Document, err error) *Request {
	t.Helper()
	require.NoError(t, err)
	req, err := Build(doc, defaults)
	require.NoError(t, err)
	return req
}

func TestDecodeYAML(t *testing.T) {
	doc, err := DecodeYAML([]byte(webYAML))
	req := build(t, doc, err)

	assert.Equal(t, "eu-west-1", req.Region)
	assert.Equal(t, types.CurrencyEUR, req.Currency)
	assert.False(t, req.FreeTier)
	assert.Equal(t, int64(1_000_000), req.Usage.APIRequests)
	assert.True(t, req.Requirements.MonthlyBudget.Equal(decimal.NewFromInt(250)))
	assert.True(t, req.Requirements.Relational)
	assert.Equal(t, 4, req.Pattern.Scalability)

	arch := req.Architecture()
	require.Len(t, arch.Services, 4)
	assert.Equal(t, types.ComputeConfig{InstanceType: "t3.small", Count: 2}, arch.Services[0].Config)
	assert.Nil(t, arch.Services[1].Config)
	assert.Equal(t, types.DatabaseConfig{InstanceClass: "db.t3.small", MultiAZ: true}, arch.Services[2].Config)

	assert.Equal(t, types.PreferenceWeights{CostPriority: 5, PerformancePriority: 3, ComplexityTolerance: 3, ScalabilityNeed: 3}, req.Preferences)
	assert.Equal(t, types.GrowthExponential, req.Growth.Model)
	assert.Equal(t, 24, req.Months)
	assert.True(t, req.Growth.CostThreshold.Equal(decimal.NewFromInt(500)))
	require.NotNil(t, req.Flags.FaultTolerant)
	assert.False(t, *req.Flags.FaultTolerant)
	assert.Nil(t, req.Flags.Steady)

	assert.Equal(t, types.BaseConfig{Usage: req.Usage, Region: "eu-west-1", FreeTier: false}, req.Base())
}

func TestHCLMatchesYAML(t *testing.T) {
	yamlDoc, err := DecodeYAML([]byte(webYAML))
	fromYAML := build(t, yamlDoc, err)

	hclDoc, err := DecodeHCL([]byte(webHCL), "web.hcl")
	fromHCL := build(t, hclDoc, err)

	if diff := cmp.Diff(fromYAML, fromHCL, decimalEqual); diff != "" {
		t.Errorf("HCL and YAML requests differ (-yaml +hcl):\n%s", diff)
	}
}

func TestDefaultsApply(t *testing.T) {
	doc, err := DecodeYAML([]byte("services:\n  - id: S3\n"))
	req := build(t, doc, err)

	assert.Equal(t, "us-east-1", req.Region)
	assert.Equal(t, types.CurrencyUSD, req.Currency)
	assert.True(t, req.FreeTier)
	assert.Equal(t, DefaultMonths, req.Months)
	assert.Equal(t, types.DefaultPreferences(), req.Preferences)
	assert.Equal(t, types.ServiceS3, req.Architecture().Services[0].ServiceID)
	assert.True(t, req.Requirements.MonthlyBudget.IsZero())
}

func TestGrowthDefaults(t *testing.T) {
	d := defaults
	d.Months = 6
	d.Growth = types.GrowthScenario{Model: types.GrowthLinear, Rate: 0.05, CostThreshold: decimal.NewFromInt(300)}

	doc, err := DecodeYAML([]byte("services:\n  - id: s3\n"))
	require.NoError(t, err)
	req, err := Build(doc, d)
	require.NoError(t, err)
	assert.Equal(t, 6, req.Months)
	assert.Equal(t, types.GrowthLinear, req.Growth.Model)
	assert.Equal(t, 0.05, req.Growth.Rate)
	assert.True(t, req.Growth.CostThreshold.Equal(decimal.NewFromInt(300)))

	doc, err = DecodeYAML([]byte("growth:\n  rate: 0\n  growth_threshold_percent: 15\n"))
	require.NoError(t, err)
	req, err = Build(doc, d)
	require.NoError(t, err)
	assert.Zero(t, req.Growth.Rate, "an explicit zero rate wins over the default")
	assert.Equal(t, 15.0, req.Growth.GrowthThresholdPercent)
	assert.True(t, req.Growth.CostThreshold.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, types.GrowthLinear, req.Growth.Model)
}

func TestEmptyDocument(t *testing.T) {
	doc, err := DecodeYAML(nil)
	req := build(t, doc, err)
	assert.Empty(t, req.Architecture().Services)
}

func TestBuildReportsEveryProblem(t *testing.T) {
	const bad = `
budget: -5
services:
  - id: ""
  - id: lambda
    config:
      memory_mb: 64
  - id: ec2
    config:
      instance_typ: t3.small
  - id: mainframe
    config:
      mips: 100
preferences:
  cost_priority: 9
growth:
  model: sideways
  months: 500
`
	doc, err := DecodeYAML([]byte(bad))
	require.NoError(t, err)

	_, err = Build(doc, defaults)
	require.Error(t, err)
	assert.True(t, cerrors.IsType(err, cerrors.TypeInput))

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	// id, memory, unknown field, no schema, preferences, budget, model, months
	assert.Len(t, merr.Errors, 8)
	assert.Contains(t, err.Error(), "instance_typ")
	assert.Contains(t, err.Error(), "mainframe")
}

func TestDecodeYAMLRejectsUnknownKeys(t *testing.T) {
	_, err := DecodeYAML([]byte("regoin: us-east-1\n"))
	require.Error(t, err)
	assert.True(t, cerrors.IsType(err, cerrors.TypeInput))
}

func TestDecodeHCLErrors(t *testing.T) {
	_, err := DecodeHCL([]byte(`service "ec2" {`), "broken.hcl")
	require.Error(t, err)
	assert.True(t, cerrors.IsType(err, cerrors.TypeInput))

	_, err = DecodeHCL([]byte(`colour = "blue"`), "unknown.hcl")
	require.Error(t, err)

	_, err = DecodeHCL([]byte(`
service "ec2" {
  instance_type = var.size
}`), "vars.hcl")
	require.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "web.yaml")
	hclPath := filepath.Join(dir, "web.hcl")
	require.NoError(t, os.WriteFile(yamlPath, []byte(webYAML), 0644))
	require.NoError(t, os.WriteFile(hclPath, []byte(webHCL), 0644))

	fromYAML, err := LoadFile(yamlPath, defaults)
	require.NoError(t, err)
	fromHCL, err := LoadFile(hclPath, defaults)
	require.NoError(t, err)

	assert.Len(t, fromYAML.SourceHash, 12)
	assert.NotEqual(t, fromYAML.SourceHash, fromHCL.SourceHash)
	assert.Equal(t, fromYAML.Architecture().ServiceIDs(), fromHCL.Architecture().ServiceIDs())

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"), defaults)
	assert.Error(t, err)
}

func TestCtyToGo(t *testing.T) {
	v, err := ctyToGo(cty.NumberIntVal(3))
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	v, err = ctyToGo(cty.NumberFloatVal(0.5))
	require.NoError(t, err)
	assert.Equal(t, 0.5, v)

	v, err = ctyToGo(cty.ObjectVal(map[string]cty.Value{
		"tags": cty.ListVal([]cty.Value{cty.StringVal("a"), cty.StringVal("b")}),
		"on":   cty.True,
	}))
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"tags": []interface{}{"a", "b"}, "on": true}, v)

	v, err = ctyToGo(cty.NullVal(cty.String))
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = ctyToGo(cty.UnknownVal(cty.String))
	assert.Error(t, err)
}

func TestParseSelectsFormatByExtension(t *testing.T) {
	req, err := Parse([]byte(webHCL), "inline.HCL", defaults)
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", req.Region)

	_, err = Parse([]byte(webHCL), "inline.yaml", defaults)
	assert.Error(t, err, "HCL is not YAML")
}
