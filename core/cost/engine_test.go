package cost

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"archcost/core/catalog"
	"archcost/core/types"
	cerrors "archcost/internal/errors"
)

var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	return NewEngine(c, WithLogger(zap.NewNop()))
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func webApp() types.Architecture {
	return types.Architecture{
		Name: "web",
		Services: []types.ServiceUsage{
			{ServiceID: types.ServiceEC2, Purpose: "app", Config: types.ComputeConfig{InstanceType: "t3.small", Count: 2}},
			{ServiceID: types.ServiceRDS, Purpose: "db"},
			{ServiceID: types.ServiceS3, Purpose: "assets"},
			{ServiceID: types.ServiceCloudFront, Purpose: "cdn"},
			{ServiceID: types.ServiceLambda, Purpose: "jobs", Config: types.ServerlessConfig{MemoryMB: 512}},
			{ServiceID: types.ServiceDynamoDB, Purpose: "sessions"},
			{ServiceID: types.ServiceDataTransfer},
			{ServiceID: types.ServiceCloudWatch},
		},
	}
}

func webUsage() types.UsageProfile {
	return types.UsageProfile{
		PageViews:      3_000_000,
		UniqueUsers:    40_000,
		APIRequests:    5_000_000,
		DataTransferGB: 300,
		StorageGB:      120,
		ComputeHours:   730,
	}
}

func TestS3WithinFreeTierCostsNothing(t *testing.T) {
	e := newTestEngine(t)
	arch := types.Architecture{Services: []types.ServiceUsage{
		{ServiceID: types.ServiceS3, Config: types.StorageConfig{StorageGB: 5, Requests: 15000}},
	}}

	result := e.Calculate(arch, types.UsageProfile{}, "us-east-1", true)

	require.Empty(t, result.Diagnostics)
	s3, ok := result.Service(types.ServiceS3)
	require.True(t, ok)
	assert.True(t, s3.MonthlyCost.IsPositive())
	assert.True(t, s3.FreeTierSavings.Equal(s3.MonthlyCost))
	assert.Equal(t, types.CoverageFull, s3.FreeTierCoverage)
	assert.True(t, result.NetMonthlyCost.IsZero(), "got %s", result.NetMonthlyCost)
}

func TestEC2WithoutFreeTier(t *testing.T) {
	e := newTestEngine(t)
	arch := types.Architecture{Services: []types.ServiceUsage{
		{ServiceID: types.ServiceEC2, Config: types.ComputeConfig{InstanceType: "t3.small", Count: 1}},
	}}

	result := e.Calculate(arch, types.UsageProfile{ComputeHours: 730}, "us-east-1", false)

	assert.True(t, result.TotalMonthlyCost.Equal(dec("15.184")), "got %s", result.TotalMonthlyCost)
	assert.True(t, result.NetMonthlyCost.Equal(result.TotalMonthlyCost))
	ec2, _ := result.Service(types.ServiceEC2)
	assert.Equal(t, types.CoverageNone, ec2.FreeTierCoverage)
	require.Len(t, ec2.Breakdown, 1)
	assert.Equal(t, "compute", ec2.Breakdown[0].Name)
}

func TestEC2FreeTierAppliesToEligibleClassOnly(t *testing.T) {
	e := newTestEngine(t)
	usage := types.UsageProfile{ComputeHours: 730}

	small := e.Calculate(types.Architecture{Services: []types.ServiceUsage{
		{ServiceID: types.ServiceEC2, Config: types.ComputeConfig{InstanceType: "t3.small"}},
	}}, usage, "us-east-1", true)
	assert.True(t, small.FreeTierSavings.IsZero())
	assert.Equal(t, types.CoveragePartial, small.ServiceCosts[0].FreeTierCoverage,
		"the service has a free tier; the class it excludes stays billable")

	micro := e.Calculate(types.Architecture{Services: []types.ServiceUsage{
		{ServiceID: types.ServiceEC2, Config: types.ComputeConfig{InstanceType: "t3.micro"}},
	}}, usage, "us-east-1", true)
	assert.Equal(t, types.CoverageFull, micro.ServiceCosts[0].FreeTierCoverage)
	assert.True(t, micro.NetMonthlyCost.IsZero())

	// two micros exceed 750 hours
	pair := e.Calculate(types.Architecture{Services: []types.ServiceUsage{
		{ServiceID: types.ServiceEC2, Config: types.ComputeConfig{InstanceType: "t3.micro", Count: 2}},
	}}, usage, "us-east-1", true)
	assert.Equal(t, types.CoveragePartial, pair.ServiceCosts[0].FreeTierCoverage)
	assert.True(t, pair.FreeTierSavings.Equal(dec("7.8")), "750 × 0.0104, got %s", pair.FreeTierSavings)
}

func TestTotalsAreConserved(t *testing.T) {
	e := newTestEngine(t)
	result := e.Calculate(webApp(), webUsage(), "eu-west-1", true)
	require.Empty(t, result.Diagnostics)

	total := decimal.Zero
	savings := decimal.Zero
	for _, sc := range result.ServiceCosts {
		component := decimal.Zero
		for _, c := range sc.Breakdown {
			assert.False(t, c.Cost.IsNegative(), "%s/%s", sc.ServiceID, c.Name)
			component = component.Add(c.Cost)
		}
		assert.True(t, component.Equal(sc.MonthlyCost), "%s breakdown %s != %s", sc.ServiceID, component, sc.MonthlyCost)
		assert.True(t, sc.FreeTierSavings.LessThanOrEqual(sc.MonthlyCost), sc.ServiceID)

		total = total.Add(sc.MonthlyCost)
		savings = savings.Add(sc.FreeTierSavings)
	}
	assert.True(t, total.Equal(result.TotalMonthlyCost))
	assert.True(t, savings.Equal(result.FreeTierSavings))
	assert.True(t, result.NetMonthlyCost.Equal(total.Sub(savings)))

	byCategory := decimal.Zero
	for _, amount := range result.BreakdownByCategory {
		byCategory = byCategory.Add(amount)
	}
	assert.True(t, byCategory.Equal(result.TotalMonthlyCost))
}

func TestCostIsMonotonicInUsage(t *testing.T) {
	e := newTestEngine(t)
	base := webUsage()

	for _, freeTier := range []bool{false, true} {
		previous := decimal.Zero
		previousNet := decimal.Zero
		for _, m := range []float64{0, 0.5, 1, 1.5, 2, 4, 10} {
			result := e.Calculate(webApp(), base.Scale(m), "us-east-1", freeTier)
			assert.True(t, result.TotalMonthlyCost.GreaterThanOrEqual(previous),
				"free tier %v: cost fell at ×%v (%s < %s)", freeTier, m, result.TotalMonthlyCost, previous)
			assert.True(t, result.NetMonthlyCost.GreaterThanOrEqual(previousNet),
				"free tier %v: net fell at ×%v", freeTier, m)
			previous = result.TotalMonthlyCost
			previousNet = result.NetMonthlyCost
		}
	}
}

func TestRegionMultiplierScalesEveryComponent(t *testing.T) {
	e := newTestEngine(t)

	east := e.Calculate(webApp(), webUsage(), "us-east-1", false)
	west := e.Calculate(webApp(), webUsage(), "us-west-2", false)

	assert.True(t, west.RegionMultiplier.Equal(dec("1.02")))
	assert.True(t, west.TotalMonthlyCost.Equal(east.TotalMonthlyCost.Mul(dec("1.02"))),
		"%s vs %s", west.TotalMonthlyCost, east.TotalMonthlyCost)

	for i := range east.ServiceCosts {
		for j, c := range east.ServiceCosts[i].Breakdown {
			w := west.ServiceCosts[i].Breakdown[j]
			assert.True(t, w.Cost.Equal(c.Cost.Mul(dec("1.02"))), "%s/%s", east.ServiceCosts[i].ServiceID, c.Name)
			assert.True(t, w.Quantity.Equal(c.Quantity))
		}
	}
}

func TestUnknownRegionFallsBack(t *testing.T) {
	e := newTestEngine(t)

	result := e.Calculate(webApp(), webUsage(), "moon-1", true)
	baseline := e.Calculate(webApp(), webUsage(), "us-east-1", false)

	assert.True(t, result.HasDiagnostic(cerrors.TypeRegionNotFound))
	assert.True(t, result.RegionMultiplier.Equal(decimal.NewFromInt(1)))
	assert.True(t, result.FreeTierSavings.IsZero())
	assert.True(t, result.TotalMonthlyCost.Equal(baseline.TotalMonthlyCost))
}

func TestFreeTierIneligibleRegion(t *testing.T) {
	e := newTestEngine(t)
	result := e.Calculate(webApp(), webUsage(), "us-gov-west-1", true)

	assert.False(t, result.HasDiagnostic(cerrors.TypeRegionNotFound))
	assert.True(t, result.FreeTierSavings.IsZero())
	for _, sc := range result.ServiceCosts {
		assert.Equal(t, types.CoverageNone, sc.FreeTierCoverage)
	}
}

func TestUnknownServiceIsReportedNotFatal(t *testing.T) {
	e := newTestEngine(t)
	arch := types.Architecture{Services: []types.ServiceUsage{
		{ServiceID: "quantum-db", Purpose: "magic"},
		{ServiceID: types.ServiceEC2, Config: types.ComputeConfig{InstanceType: "t3.small"}},
	}}

	result := e.Calculate(arch, types.UsageProfile{}, "us-east-1", false)

	require.Len(t, result.ServiceCosts, 2)
	unknown := result.ServiceCosts[0]
	assert.True(t, unknown.Unpriced)
	assert.True(t, unknown.MonthlyCost.IsZero())
	assert.Equal(t, "magic", unknown.Purpose)
	assert.True(t, result.HasDiagnostic(cerrors.TypeUnknownService))
	assert.True(t, result.TotalMonthlyCost.Equal(dec("15.184")))
}

func TestInvalidConfigurationIsReported(t *testing.T) {
	e := newTestEngine(t)
	tests := []struct {
		name string
		su   types.ServiceUsage
	}{
		{"field constraint", types.ServiceUsage{ServiceID: types.ServiceLambda, Config: types.ServerlessConfig{MemoryMB: 64}}},
		{"wrong variant", types.ServiceUsage{ServiceID: types.ServiceS3, Config: types.ComputeConfig{Count: 1}}},
		{"unknown instance type", types.ServiceUsage{ServiceID: types.ServiceEC2, Config: types.ComputeConfig{InstanceType: "z9.galactic"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := e.Calculate(types.Architecture{Services: []types.ServiceUsage{tt.su}}, webUsage(), "us-east-1", true)
			require.Len(t, result.ServiceCosts, 1)
			assert.True(t, result.ServiceCosts[0].Unpriced)
			assert.True(t, result.TotalMonthlyCost.IsZero())
			assert.True(t, result.HasDiagnostic(cerrors.TypeInvalidConfiguration))
		})
	}
}

func TestNegativeUsageIsClamped(t *testing.T) {
	e := newTestEngine(t)
	usage := webUsage()
	usage.PageViews = -10
	usage.StorageGB = -1

	result := e.Calculate(webApp(), usage, "us-east-1", false)

	assert.True(t, result.HasDiagnostic(cerrors.TypeInvalidUsage))
	assert.Equal(t, int64(0), result.Usage.PageViews)
	assert.Equal(t, 0.0, result.Usage.StorageGB)
	assert.False(t, result.TotalMonthlyCost.IsNegative())
}

func TestCalculateIsDeterministic(t *testing.T) {
	e := newTestEngine(t)
	first := e.Calculate(webApp(), webUsage(), "ap-southeast-1", true)
	second := e.Calculate(webApp(), webUsage(), "ap-southeast-1", true)

	if diff := cmp.Diff(first, second, decimalEqual); diff != "" {
		t.Errorf("results differ (-first +second):\n%s", diff)
	}
}

func TestEmptyArchitecture(t *testing.T) {
	e := newTestEngine(t)
	result := e.Calculate(types.Architecture{}, webUsage(), "us-east-1", true)

	assert.Empty(t, result.ServiceCosts)
	assert.True(t, result.TotalMonthlyCost.IsZero())
	assert.True(t, result.NetMonthlyCost.IsZero())
}

func TestConvertResult(t *testing.T) {
	e := newTestEngine(t)
	usd := e.Calculate(webApp(), webUsage(), "us-east-1", true)

	eur, err := e.ConvertResult(usd, types.CurrencyEUR)
	require.NoError(t, err)
	assert.Equal(t, types.CurrencyEUR, eur.Currency)
	assert.True(t, eur.TotalMonthlyCost.Equal(usd.TotalMonthlyCost.Mul(dec("0.92"))))
	assert.True(t, eur.ServiceCosts[0].MonthlyCost.Equal(usd.ServiceCosts[0].MonthlyCost.Mul(dec("0.92"))))
	assert.Equal(t, types.CurrencyUSD, usd.Currency, "source result must not change")

	_, err = e.ConvertResult(eur, types.CurrencyGBP)
	assert.Error(t, err)

	_, err = e.Convert(decimal.NewFromInt(1), "XXX")
	assert.True(t, cerrors.IsType(err, cerrors.TypeNotFound))

	jpy, err := e.Convert(decimal.NewFromInt(10), "JPY")
	require.NoError(t, err)
	assert.True(t, jpy.Equal(dec("1495")))
}
