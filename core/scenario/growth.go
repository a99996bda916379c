package scenario

import (
	"math"

	"archcost/core/types"
	cerrors "archcost/internal/errors"
)

// SeasonalAmplitude is the peak deviation of the seasonal curve
const SeasonalAmplitude = 0.3

// Multiplier returns the usage multiplier for a 1-based month.
//
//	linear:      1 + r·t
//	exponential: (1 + r)^t
//	seasonal:    (1 + r·t) · (1 + 0.3·sin((t−1)·π/6))
//	custom:      (1 + r)^t with a caller-chosen rate
func Multiplier(model types.GrowthModel, rate float64, month int) float64 {
	t := float64(month)
	switch model {
	case types.GrowthLinear:
		return 1 + rate*t
	case types.GrowthSeasonal:
		return (1 + rate*t) * (1 + SeasonalAmplitude*math.Sin((t-1)*math.Pi/6))
	default:
		return math.Pow(1+rate, t)
	}
}

// ValidateScenario checks the model is known and the rate is usable
func ValidateScenario(g types.GrowthScenario) error {
	switch g.Model {
	case types.GrowthLinear, types.GrowthExponential, types.GrowthSeasonal, types.GrowthCustom:
	default:
		return cerrors.Newf(cerrors.TypeInput, "unknown growth model %q", g.Model)
	}
	if math.IsNaN(g.Rate) || math.IsInf(g.Rate, 0) || g.Rate <= -1 {
		return cerrors.Newf(cerrors.TypeInput, "growth rate %v must be a number greater than -1", g.Rate)
	}
	if g.CostThreshold.IsNegative() {
		return cerrors.Input("cost threshold must not be negative")
	}
	if g.GrowthThresholdPercent < 0 {
		return cerrors.Input("growth threshold must not be negative")
	}
	return nil
}
