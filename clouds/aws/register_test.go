package aws

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archcost/clouds"
	"archcost/core/catalog"
	"archcost/core/types"
)

func pricingContext(t *testing.T, id types.ServiceID, usage types.UsageProfile, cfg types.Configuration) clouds.PricingContext {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	def, err := c.Lookup(id)
	require.NoError(t, err)
	return clouds.PricingContext{Service: def, Usage: usage, Config: cfg, Settings: clouds.DefaultSettings()}
}

func calculate(t *testing.T, id types.ServiceID, usage types.UsageProfile, cfg types.Configuration) []types.Component {
	t.Helper()
	calc, ok := NewRegistry().Get(id)
	require.True(t, ok, id)
	components, err := calc.Calculate(pricingContext(t, id, usage, cfg))
	require.NoError(t, err)
	return components
}

func total(components []types.Component) decimal.Decimal {
	sum := decimal.Zero
	for _, c := range components {
		sum = sum.Add(c.Cost)
	}
	return sum
}

func find(t *testing.T, components []types.Component, name string) types.Component {
	t.Helper()
	for _, c := range components {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("component %s not found in %v", name, components)
	return types.Component{}
}

func TestEveryKnownServiceHasCalculator(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, types.KnownServices(), r.Services())
	assert.Error(t, Register(r), "duplicate registration must fail")
}

func TestEveryCalculatorPricesZeroUsage(t *testing.T) {
	for _, id := range types.KnownServices() {
		t.Run(string(id), func(t *testing.T) {
			components := calculate(t, id, types.UsageProfile{}, nil)
			require.NotEmpty(t, components)
			assert.False(t, total(components).IsNegative())
		})
	}
}

func TestEC2InstanceHours(t *testing.T) {
	components := calculate(t, types.ServiceEC2,
		types.UsageProfile{ComputeHours: 730},
		types.ComputeConfig{InstanceType: "t3.small", Count: 1})

	require.Len(t, components, 1)
	compute := components[0]
	assert.Equal(t, "compute", compute.Name)
	assert.Equal(t, "t3.small", compute.Class)
	assert.True(t, compute.Cost.Equal(decimal.RequireFromString("15.184")), "got %s", compute.Cost)
}

func TestEC2Autoscaling(t *testing.T) {
	cfg := types.ComputeConfig{InstanceType: "t3.small", Count: 1, Autoscaling: true, MaxCount: 3}

	c := find(t, calculate(t, types.ServiceEC2, types.UsageProfile{ComputeHours: 1000}, cfg), "compute")
	assert.True(t, c.Quantity.Equal(decimal.NewFromInt(1000)))

	c = find(t, calculate(t, types.ServiceEC2, types.UsageProfile{ComputeHours: 10000}, cfg), "compute")
	assert.True(t, c.Quantity.Equal(decimal.NewFromInt(2190)), "capped at max count, got %s", c.Quantity)
}

func TestEC2UnknownInstanceType(t *testing.T) {
	calc, ok := NewRegistry().Get(types.ServiceEC2)
	require.True(t, ok)
	_, err := calc.Calculate(pricingContext(t, types.ServiceEC2, types.UsageProfile{},
		types.ComputeConfig{InstanceType: "z9.galactic"}))
	assert.Error(t, err)
}

func TestLambdaRequestsAndDuration(t *testing.T) {
	components := calculate(t, types.ServiceLambda,
		types.UsageProfile{APIRequests: 2_000_000},
		types.ServerlessConfig{MemoryMB: 512, AvgDurationMs: 200})

	requests := find(t, components, "requests")
	assert.True(t, requests.Cost.Equal(decimal.RequireFromString("0.4")), "got %s", requests.Cost)

	compute := find(t, components, "compute")
	// 2M × 0.5 GB × 0.2 s
	assert.True(t, compute.Quantity.Equal(decimal.NewFromInt(200000)), "got %s", compute.Quantity)
}

func TestS3RequestSplit(t *testing.T) {
	components := calculate(t, types.ServiceS3, types.UsageProfile{},
		types.StorageConfig{StorageGB: 5, Requests: 15000})

	assert.True(t, find(t, components, "put_requests").Quantity.Equal(decimal.NewFromInt(1500)))
	assert.True(t, find(t, components, "get_requests").Quantity.Equal(decimal.NewFromInt(13500)))
	assert.True(t, find(t, components, "storage").Cost.Equal(decimal.RequireFromString("0.115")))
}

func TestDynamoDBReadRatio(t *testing.T) {
	usage := types.UsageProfile{APIRequests: 1_000_000}

	components := calculate(t, types.ServiceDynamoDB, usage, nil)
	assert.True(t, find(t, components, "read_requests").Quantity.Equal(decimal.NewFromInt(700000)))
	assert.True(t, find(t, components, "write_requests").Quantity.Equal(decimal.NewFromInt(300000)))

	components = calculate(t, types.ServiceDynamoDB, usage, types.DatabaseConfig{ReadRatio: types.Float64Ptr(0.9)})
	assert.True(t, find(t, components, "read_requests").Quantity.Equal(decimal.NewFromInt(900000)))

	components = calculate(t, types.ServiceDynamoDB, usage, types.DatabaseConfig{BillingMode: "provisioned", ReadCapacityUnits: 10})
	assert.True(t, find(t, components, "read_capacity").Quantity.Equal(decimal.NewFromInt(7300)))
}

func TestRDSMultiAZDoublesInstances(t *testing.T) {
	single := calculate(t, types.ServiceRDS, types.UsageProfile{}, types.DatabaseConfig{InstanceClass: "db.t3.small"})
	multi := calculate(t, types.ServiceRDS, types.UsageProfile{}, types.DatabaseConfig{InstanceClass: "db.t3.small", MultiAZ: true})

	assert.True(t, find(t, multi, "instance").Cost.Equal(find(t, single, "instance").Cost.Mul(decimal.NewFromInt(2))))
}

func TestDataTransferTiers(t *testing.T) {
	components := calculate(t, types.ServiceDataTransfer, types.UsageProfile{DataTransferGB: 50}, nil)
	assert.True(t, total(components).Equal(decimal.RequireFromString("4.21")), "got %s", total(components))
}

func TestAPIGatewayHTTPIsCheaper(t *testing.T) {
	usage := types.UsageProfile{APIRequests: 5_000_000}
	rest := calculate(t, types.ServiceAPIGateway, usage, nil)
	httpAPI := calculate(t, types.ServiceAPIGateway, usage, types.NetworkingConfig{APIType: "http"})

	assert.True(t, total(rest).Equal(decimal.RequireFromString("17.5")), "got %s", total(rest))
	assert.True(t, total(httpAPI).LessThan(total(rest)))
}
