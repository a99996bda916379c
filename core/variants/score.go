package variants

import (
	"math"

	"archcost/core/types"
)

// Score is the suitability of a variant and its parts
type Score struct {
	Confidence  float64 `json:"confidence"`
	Preference  float64 `json:"preference"`
	Budget      float64 `json:"budget"`
	Scalability float64 `json:"scalability"`
	Total       float64 `json:"total"`
}

const (
	preferenceStep   = 0.05
	budgetBonus      = 0.1
	budgetMaxPenalty = 0.2
	scalabilityStep  = 0.05
)

// score adds the fit bonuses to confidence and clamps the sum to [0,1]
func score(v Variant, req types.Requirements, prefs types.PreferenceWeights) Score {
	s := Score{
		Confidence:  v.Confidence,
		Preference:  preferenceBonus(v, prefs),
		Budget:      budgetFit(v, req),
		Scalability: scalabilityFit(v, prefs),
	}
	s.Total = round4(math.Max(0, math.Min(1, s.Confidence+s.Preference+s.Budget+s.Scalability)))
	return s
}

// preferenceBonus rewards variants biased toward what the caller weights highly
// and penalizes complexity beyond the caller's tolerance
func preferenceBonus(v Variant, prefs types.PreferenceWeights) float64 {
	weight := 3
	switch v.Kind {
	case KindCost:
		weight = prefs.CostPriority
	case KindPerformance:
		weight = prefs.PerformancePriority
	case KindSimplicity:
		weight = 6 - prefs.ComplexityTolerance
	case KindScalability:
		weight = prefs.ScalabilityNeed
	}
	bonus := float64(weight-3) * preferenceStep
	if over := v.Complexity - prefs.ComplexityTolerance; over > 0 {
		bonus -= float64(over) * preferenceStep
	}
	return round4(bonus)
}

// budgetFit is a bonus within budget and a penalty growing with the overrun.
// No budget means no effect.
func budgetFit(v Variant, req types.Requirements) float64 {
	if !req.MonthlyBudget.IsPositive() || v.Costs == nil {
		return 0
	}
	net := v.Costs.NetMonthlyCost
	if net.LessThanOrEqual(req.MonthlyBudget) {
		return budgetBonus
	}
	overrun := net.Sub(req.MonthlyBudget).Div(req.MonthlyBudget).InexactFloat64()
	return round4(-math.Min(budgetMaxPenalty, overrun*budgetMaxPenalty))
}

func scalabilityFit(v Variant, prefs types.PreferenceWeights) float64 {
	gap := prefs.ScalabilityNeed - v.Scalability
	if gap <= 0 {
		return scalabilityStep
	}
	return round4(-float64(gap) * scalabilityStep)
}

func round4(f float64) float64 {
	return math.Round(f*1e4) / 1e4
}
