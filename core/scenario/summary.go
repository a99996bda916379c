package scenario

import (
	"github.com/shopspring/decimal"

	"archcost/core/types"
)

// Summarize aggregates a projection.
// The peak is the earliest month with the highest net cost.
func Summarize(steps []types.ScenarioProjection) types.ProjectionSummary {
	s := types.ProjectionSummary{
		Months:         len(steps),
		TotalCost:      decimal.Zero,
		AverageMonthly: decimal.Zero,
		PeakCost:       decimal.Zero,
	}
	if len(steps) == 0 {
		return s
	}

	for i, step := range steps {
		net := step.Costs.NetMonthlyCost
		s.TotalCost = s.TotalCost.Add(net)
		if s.PeakMonth == 0 || net.GreaterThan(s.PeakCost) {
			s.PeakMonth = step.Month
			s.PeakCost = net
		}
		if s.FirstAlertMonth == 0 && len(step.Alerts) > 0 {
			s.FirstAlertMonth = step.Month
		}
		if s.FreeTierEndMonth == 0 && i > 0 && steps[i-1].FreeTierApplied && !step.FreeTierApplied {
			s.FreeTierEndMonth = step.Month
		}
	}
	s.AverageMonthly = s.TotalCost.Div(decimal.NewFromInt(int64(len(steps))))
	return s
}
