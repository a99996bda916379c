package output

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archcost/core/catalog"
	"archcost/core/confidence"
	"archcost/core/diff"
	"archcost/core/types"
	"archcost/core/variants"
	cerrors "archcost/internal/errors"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func estimate() *types.CostResult {
	return &types.CostResult{
		ServiceCosts: []types.ServiceCost{
			{ServiceID: types.ServiceEC2, Purpose: "web", Category: types.CategoryCompute,
				MonthlyCost: d("1215.184"), FreeTierSavings: d("0"), FreeTierCoverage: types.CoverageNone},
			{ServiceID: types.ServiceS3, Purpose: "assets", Category: types.CategoryStorage,
				MonthlyCost: d("0.2"), FreeTierSavings: d("0.2"), FreeTierCoverage: types.CoverageFull},
			{ServiceID: "quantum-db", MonthlyCost: d("0"), FreeTierSavings: d("0"), FreeTierCoverage: types.CoverageNone, Unpriced: true},
		},
		TotalMonthlyCost: d("1215.384"),
		FreeTierSavings:  d("0.2"),
		NetMonthlyCost:   d("1215.184"),
		BreakdownByCategory: map[types.Category]decimal.Decimal{
			types.CategoryStorage: d("0.2"),
			types.CategoryCompute: d("1215.184"),
		},
		Region:           "us-east-1",
		RegionMultiplier: d("1"),
		Currency:         types.CurrencyUSD,
		FreeTierEnabled:  true,
		Diagnostics:      []*cerrors.Error{cerrors.UnknownService("quantum-db")},
	}
}

func render(t *testing.T, f Formatter, r *Report) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, f.Render(&buf, r))
	return buf.String()
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("html")
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []Format{FormatJSON, FormatTable}, r.Formats())

	f, ok := r.Get(FormatTable)
	require.True(t, ok)
	assert.Equal(t, FormatTable, f.Format())

	assert.Error(t, r.Register(NewJSONFormatter(false)))
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "1,215.18 USD", Money(d("1215.184"), types.CurrencyUSD))
	assert.Equal(t, "0.00 EUR", Money(decimal.Zero, types.CurrencyEUR))
	assert.Equal(t, "3.50 USD", Money(d("3.5"), ""))
}

func TestTableEstimate(t *testing.T) {
	tr := confidence.NewTracker(1)
	tr.Apply(confidence.RuleUnknownService, "quantum-db")

	out := render(t, NewTableFormatter(), &Report{
		Estimate:   estimate(),
		Confidence: NewConfidence(tr),
		Metadata:   Metadata{CatalogVersion: "2024.06", EffectiveDate: "2024-06-01"},
	})

	assert.Contains(t, out, "us-east-1 (x1.00)")
	assert.Contains(t, out, "1,215.18 USD")
	assert.Contains(t, out, "unpriced")
	assert.Contains(t, out, "full")
	assert.Contains(t, out, "Confidence: 50% (low)")
	assert.Contains(t, out, "UNKNOWN_SERVICE")
	assert.Contains(t, out, "Pricing catalog 2024.06")
	assert.Less(t, bytes.Index([]byte(out), []byte("compute ")), bytes.Index([]byte(out), []byte("storage ")),
		"categories are listed in sorted order")
}

func TestTableRecommendations(t *testing.T) {
	recs := []types.Recommendation{
		{
			Type: types.RecReservedInstance, ServiceID: types.ServiceEC2, Purpose: "web",
			Title: "Reserve ec2 capacity", PotentialSavings: d("48"),
			Impact: types.LevelMedium, Effort: types.LevelLow, RiskLevel: types.LevelLow,
			ExclusiveGroup: "capacity:ec2/web",
			Options: []types.CommitmentOption{
				{Term: "1yr", Payment: "all-upfront", Discount: d("0.40"), UpfrontCost: d("864"), MonthlySavings: d("48"), PaybackMonths: 18, ROI: 0.6667},
				{Term: "1yr", Payment: "no-upfront", Discount: d("0.31"), MonthlyRecurring: d("82.8"), MonthlySavings: d("37.2"), ROI: math.Inf(1)},
			},
		},
	}

	out := render(t, NewTableFormatter(), &Report{Recommendations: recs})
	assert.Contains(t, out, "ec2/web")
	assert.Contains(t, out, "48.00 USD")
	assert.Contains(t, out, "(alternative)")
	assert.Contains(t, out, "40%")
	assert.Contains(t, out, "18.0 mo")
	assert.Contains(t, out, "∞")
	assert.Contains(t, out, "immediate")

	empty := render(t, NewTableFormatter(), &Report{Recommendations: []types.Recommendation{}})
	assert.Contains(t, empty, "No recommendations.")
}

func TestTableProjection(t *testing.T) {
	steps := []types.ScenarioProjection{
		{Month: 1, GrowthMultiplier: 1.05, Usage: types.UsageProfile{PageViews: 105000},
			Costs: types.CostResult{NetMonthlyCost: d("10"), Currency: types.CurrencyUSD}, GrowthRatePercent: 5, FreeTierApplied: true},
		{Month: 2, GrowthMultiplier: 1.1, Usage: types.UsageProfile{PageViews: 110000},
			Costs: types.CostResult{NetMonthlyCost: d("120"), Currency: types.CurrencyUSD}, GrowthRatePercent: 1100,
			Alerts: []types.Alert{{Type: types.AlertCostThreshold}, {Type: types.AlertGrowthThreshold}}},
	}
	summary := &types.ProjectionSummary{Months: 2, TotalCost: d("130"), AverageMonthly: d("65"), PeakMonth: 2, PeakCost: d("120"), FreeTierEndMonth: 2, FirstAlertMonth: 2}

	out := render(t, NewTableFormatter(), &Report{Projection: steps, Summary: summary})
	assert.Contains(t, out, "105,000")
	assert.Contains(t, out, "+1100.0%")
	assert.Contains(t, out, "cost-threshold,growth-threshold")
	assert.Contains(t, out, "month 2 at 120.00 USD")
	assert.Contains(t, out, "Free tier ends:")
}

func TestTableVariants(t *testing.T) {
	vs := []variants.Variant{
		{
			Kind: variants.KindCost, Name: "web (cost)", Confidence: 0.8,
			Architecture: types.Architecture{Services: []types.ServiceUsage{{ServiceID: types.ServiceLambda}, {ServiceID: types.ServiceAPIGateway}}},
			Costs:        &types.CostResult{TotalMonthlyCost: d("5"), NetMonthlyCost: d("5"), Currency: types.CurrencyUSD},
			Scalability:  5, Complexity: 2,
			Changes:      []string{"replaced ec2 with lambda"},
			Issues:       []*cerrors.Error{cerrors.ConfigurationConflict("rds and dynamodb both serve data", "rds", "dynamodb")},
			Score:        variants.Score{Total: 0.95},
		},
	}

	out := render(t, NewTableFormatter(), &Report{Variants: vs})
	assert.Contains(t, out, "0.95")
	assert.Contains(t, out, "apigateway,lambda")
	assert.Contains(t, out, "5/5")
	assert.Contains(t, out, "- replaced ec2 with lambda")
	assert.Contains(t, out, "! rds and dynamodb both serve data")
}

func TestTableCatalog(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)
	s3, err := c.Lookup(types.ServiceS3)
	require.NoError(t, err)

	out := render(t, NewTableFormatter(), &Report{Catalog: &CatalogListing{
		Services: []*catalog.ServiceDefinition{s3},
		Regions:  c.Regions(),
	}})
	assert.Contains(t, out, "storage_gb 5/12 months")
	assert.Contains(t, out, "storage [≤")
	assert.Contains(t, out, "us-gov-west-1")
}

func TestJSONReport(t *testing.T) {
	out := render(t, NewJSONFormatter(false), &Report{
		Estimate: estimate(),
		Metadata: Metadata{CatalogVersion: "2024.06", Version: "dev"},
	})

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))

	est, ok := decoded["estimate"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "1215.184", est["net_monthly_cost"])
	assert.Equal(t, "USD", est["currency"])
	assert.NotContains(t, decoded, "variants")

	meta := decoded["metadata"].(map[string]interface{})
	assert.Equal(t, "2024.06", meta["catalog_version"])
}

func TestTableDiff(t *testing.T) {
	report := &Report{Diff: &diff.Result{
		Currency:    types.CurrencyUSD,
		TotalBefore: d("15.18"),
		TotalAfter:  d("30.37"),
		TotalDelta:  d("15.19"),
		Changed: []*diff.ServiceDiff{{
			Key: "ec2/web", ChangeType: diff.ChangeModified,
			Before: d("15.18"), After: d("30.37"), Delta: d("15.19"),
			Reasons: []diff.ChangeReason{{Category: "rate", What: "compute class t3.small -> t3.medium", Impact: d("15.19")}},
		}},
		Removed: []*diff.ServiceDiff{{
			Key: "s3", ChangeType: diff.ChangeRemoved, Before: d("1"), After: d("0"), Delta: d("-1"),
		}},
	}}

	out := render(t, NewTableFormatter(), report)
	assert.Contains(t, out, "modified")
	assert.Contains(t, out, "+15.19 USD")
	assert.Contains(t, out, "-1.00 USD")
	assert.Contains(t, out, "compute class t3.small -> t3.medium")
	assert.NotContains(t, out, "Confidence:")
	assert.Less(t, strings.Index(out, "ec2/web"), strings.Index(out, "removed"),
		"rows are ordered by cost impact")
}
