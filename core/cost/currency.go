package cost

import (
	"github.com/shopspring/decimal"

	"archcost/core/types"
	cerrors "archcost/internal/errors"
)

// Convert converts a USD amount with the catalog exchange rate
func (e *Engine) Convert(amount decimal.Decimal, currency types.Currency) (decimal.Decimal, error) {
	rate, ok := e.catalog.CurrencyRate(currency)
	if !ok {
		return decimal.Zero, cerrors.NotFound("currency", string(currency))
	}
	return amount.Mul(rate), nil
}

// ConvertResult returns a copy of a USD result with every amount converted.
// Quantities and the region multiplier are unchanged.
func (e *Engine) ConvertResult(result *types.CostResult, currency types.Currency) (*types.CostResult, error) {
	rate, ok := e.catalog.CurrencyRate(currency)
	if !ok {
		return nil, cerrors.NotFound("currency", string(currency))
	}
	if result.Currency != "" && result.Currency != types.CurrencyUSD {
		return nil, cerrors.Newf(cerrors.TypeInput, "result is already in %s", result.Currency)
	}

	out := *result
	out.Currency = currency
	out.TotalMonthlyCost = result.TotalMonthlyCost.Mul(rate)
	out.FreeTierSavings = result.FreeTierSavings.Mul(rate)
	out.NetMonthlyCost = result.NetMonthlyCost.Mul(rate)

	out.BreakdownByCategory = make(map[types.Category]decimal.Decimal, len(result.BreakdownByCategory))
	for cat, amount := range result.BreakdownByCategory {
		out.BreakdownByCategory[cat] = amount.Mul(rate)
	}

	out.ServiceCosts = make([]types.ServiceCost, len(result.ServiceCosts))
	for i, sc := range result.ServiceCosts {
		sc.MonthlyCost = sc.MonthlyCost.Mul(rate)
		sc.FreeTierSavings = sc.FreeTierSavings.Mul(rate)
		breakdown := make([]types.Component, len(sc.Breakdown))
		for j, c := range sc.Breakdown {
			c.Rate = c.Rate.Mul(rate)
			c.Cost = c.Cost.Mul(rate)
			breakdown[j] = c
		}
		sc.Breakdown = breakdown
		out.ServiceCosts[i] = sc
	}
	return &out, nil
}
