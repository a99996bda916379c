package diff

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archcost/core/types"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func component(name, class, qty, rate, cost string) types.Component {
	return types.Component{Name: name, Class: class, Quantity: d(qty), Rate: d(rate), Cost: d(cost)}
}

func result(services ...types.ServiceCost) *types.CostResult {
	r := &types.CostResult{Currency: types.CurrencyUSD, NetMonthlyCost: decimal.Zero}
	for _, sc := range services {
		r.ServiceCosts = append(r.ServiceCosts, sc)
		r.NetMonthlyCost = r.NetMonthlyCost.Add(sc.NetCost())
	}
	return r
}

func TestDiffClassifiesServices(t *testing.T) {
	before := result(
		types.ServiceCost{ServiceID: "ec2", Purpose: "web", MonthlyCost: d("15.18"),
			Breakdown: []types.Component{component("compute", "t3.small", "730", "0.0208", "15.18")}},
		types.ServiceCost{ServiceID: "s3", MonthlyCost: d("1.15"), FreeTierSavings: d("0.15"),
			Breakdown: []types.Component{component("storage", "", "50", "0.023", "1.15")}},
		types.ServiceCost{ServiceID: "cloudwatch", MonthlyCost: d("3")},
	)
	after := result(
		types.ServiceCost{ServiceID: "ec2", Purpose: "web", MonthlyCost: d("30.37"),
			Breakdown: []types.Component{component("compute", "t3.medium", "730", "0.0416", "30.37")}},
		types.ServiceCost{ServiceID: "cloudwatch", MonthlyCost: d("3")},
		types.ServiceCost{ServiceID: "cloudfront", Purpose: "cdn", MonthlyCost: d("4.25")},
	)

	res, err := NewDiffer(0).Diff(before, after)
	require.NoError(t, err)

	require.Len(t, res.Added, 1)
	assert.Equal(t, "cloudfront/cdn", res.Added[0].Key)
	require.Len(t, res.Removed, 1)
	assert.Equal(t, "s3", res.Removed[0].Key)
	assert.True(t, res.Removed[0].Delta.Equal(d("-1")))
	require.Len(t, res.Unchanged, 1)
	assert.Equal(t, "cloudwatch", res.Unchanged[0].Key)

	require.Len(t, res.Changed, 1)
	ec2 := res.Changed[0]
	assert.Equal(t, ChangeModified, ec2.ChangeType)
	assert.True(t, ec2.Delta.Equal(d("15.19")))
	require.Len(t, ec2.Components, 1)
	assert.True(t, ec2.Components[0].RateChanged)
	assert.False(t, ec2.Components[0].UsageChanged)
	require.Len(t, ec2.Reasons, 1)
	assert.Equal(t, "compute class t3.small -> t3.medium", ec2.Reasons[0].What)

	assert.True(t, res.TotalDelta.Equal(after.NetMonthlyCost.Sub(before.NetMonthlyCost)))
	assert.Equal(t, "Cost increased by 18.44 USD\n  + 1 services added\n  - 1 services removed\n  ~ 1 services changed\n", res.Summary())

	top := res.TopChanges(2)
	require.Len(t, top, 2)
	assert.Equal(t, "ec2/web", top[0].Key)
	assert.Equal(t, "cloudfront/cdn", top[1].Key)
}

func TestDiffComponentsAndFreeTier(t *testing.T) {
	before := result(types.ServiceCost{ServiceID: "lambda", MonthlyCost: d("2"), FreeTierSavings: d("2"),
		Breakdown: []types.Component{
			component("requests", "", "1000000", "0.0000002", "0.2"),
			component("compute", "", "100000", "0.0000166667", "1.8"),
		}})
	after := result(types.ServiceCost{ServiceID: "lambda", MonthlyCost: d("0.4"),
		Breakdown: []types.Component{
			component("requests", "", "2000000", "0.0000002", "0.4"),
		}})

	res, err := NewDiffer(0).Diff(before, after)
	require.NoError(t, err)
	require.Len(t, res.Changed, 1)

	lambda := res.Changed[0]
	require.Len(t, lambda.Components, 2)
	assert.True(t, lambda.Components[0].UsageChanged)
	assert.Equal(t, ChangeRemoved, lambda.Components[1].ChangeType)

	var categories []string
	for _, r := range lambda.Reasons {
		categories = append(categories, r.Category)
	}
	assert.Equal(t, []string{"usage", "configuration", "free_tier"}, categories)
	assert.Equal(t, float64(0), res.DeltaPercent, "zero before total leaves percent unset")
}

func TestDiffRepeatedServices(t *testing.T) {
	before := result(
		types.ServiceCost{ServiceID: "ec2", Purpose: "web", MonthlyCost: d("10")},
		types.ServiceCost{ServiceID: "ec2", Purpose: "web", MonthlyCost: d("10")},
	)
	after := result(types.ServiceCost{ServiceID: "ec2", Purpose: "web", MonthlyCost: d("10")})

	res, err := NewDiffer(0).Diff(before, after)
	require.NoError(t, err)
	require.Len(t, res.Removed, 1)
	assert.Equal(t, "ec2/web#2", res.Removed[0].Key)
	assert.Equal(t, -50.0, res.DeltaPercent)
}

func TestDiffThreshold(t *testing.T) {
	before := result(types.ServiceCost{ServiceID: "rds", MonthlyCost: d("100")})
	after := result(types.ServiceCost{ServiceID: "rds", MonthlyCost: d("100.5")})

	res, err := NewDiffer(0.01).Diff(before, after)
	require.NoError(t, err)
	assert.Len(t, res.Unchanged, 1)

	res, err = NewDiffer(0).Diff(before, after)
	require.NoError(t, err)
	assert.Len(t, res.Changed, 1)
}

func TestDiffRejectsMixedCurrencies(t *testing.T) {
	eur := result()
	eur.Currency = types.CurrencyEUR
	_, err := NewDiffer(0).Diff(result(), eur)
	assert.Error(t, err)

	_, err = NewDiffer(0).Diff(nil, eur)
	assert.Error(t, err)
}

func TestChangeTypeJSON(t *testing.T) {
	data, err := json.Marshal(&ServiceDiff{Key: "s3", ChangeType: ChangeRemoved})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"change":"removed"`)
}
