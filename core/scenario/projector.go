// Package scenario projects monthly costs over a horizon under a growth model.
// Every month scales the baseline usage by its own multiplier, so months are
// independent and can be priced in any order.
package scenario

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"archcost/core/cost"
	"archcost/core/types"
	cerrors "archcost/internal/errors"
	"archcost/internal/logging"
)

// FreeTierMonths is how long free tier allowances are applied in a projection
const FreeTierMonths = 12

// MaxHorizon bounds projections to ten years
const MaxHorizon = 120

// Projector re-prices an architecture month by month
type Projector struct {
	engine  *cost.Engine
	workers int
	logger  *zap.Logger
}

// New creates a projector. workers bounds ProjectParallel; zero uses GOMAXPROCS.
func New(engine *cost.Engine, workers int, logger *zap.Logger) *Projector {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Projector{
		engine:  engine,
		workers: workers,
		logger:  logging.Named("scenario", logger),
	}
}

// Project prices each month from 1 to horizon in order
func (p *Projector) Project(arch types.Architecture, base types.BaseConfig, horizon int, g types.GrowthScenario) ([]types.ScenarioProjection, error) {
	if err := validate(horizon, g); err != nil {
		return nil, err
	}

	steps := make([]types.ScenarioProjection, horizon)
	for month := 1; month <= horizon; month++ {
		steps[month-1] = p.step(arch, base, month, g)
	}
	return p.finish(arch, base, steps, g), nil
}

// ProjectParallel prices the months concurrently and reassembles them by month.
// The result equals Project for the same inputs.
func (p *Projector) ProjectParallel(ctx context.Context, arch types.Architecture, base types.BaseConfig, horizon int, g types.GrowthScenario) ([]types.ScenarioProjection, error) {
	if err := validate(horizon, g); err != nil {
		return nil, err
	}

	steps := make([]types.ScenarioProjection, horizon)
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(p.workers)

	for month := 1; month <= horizon; month++ {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			steps[month-1] = p.step(arch, base, month, g)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return p.finish(arch, base, steps, g), nil
}

func validate(horizon int, g types.GrowthScenario) error {
	if horizon < 0 || horizon > MaxHorizon {
		return cerrors.Newf(cerrors.TypeInput, "horizon must be between 0 and %d months, got %d", MaxHorizon, horizon)
	}
	return ValidateScenario(g)
}

// step prices one month; it reads only its inputs
func (p *Projector) step(arch types.Architecture, base types.BaseConfig, month int, g types.GrowthScenario) types.ScenarioProjection {
	multiplier := Multiplier(g.Model, g.Rate, month)
	usage := base.Usage.Scale(multiplier)
	freeTier := base.FreeTier && month <= FreeTierMonths

	return types.ScenarioProjection{
		Month:            month,
		Usage:            usage,
		Costs:            *p.engine.Calculate(arch, usage, base.Region, freeTier),
		GrowthMultiplier: multiplier,
		FreeTierApplied:  freeTier,
	}
}

// finish fills month-over-month growth and alerts once every step is priced
func (p *Projector) finish(arch types.Architecture, base types.BaseConfig, steps []types.ScenarioProjection, g types.GrowthScenario) []types.ScenarioProjection {
	if len(steps) == 0 {
		return steps
	}

	previous := p.engine.Calculate(arch, base.Usage, base.Region, base.FreeTier).NetMonthlyCost
	growthLimit := decimal.NewFromFloat(g.GrowthThresholdPercent)

	for i := range steps {
		s := &steps[i]
		net := s.Costs.NetMonthlyCost
		s.GrowthRatePercent = growthPercent(previous, net)

		if g.CostThreshold.IsPositive() && net.GreaterThan(g.CostThreshold) {
			s.Alerts = append(s.Alerts, types.Alert{
				Type:      types.AlertCostThreshold,
				Month:     s.Month,
				Message:   fmt.Sprintf("month %d net cost %s exceeds %s", s.Month, net.StringFixed(2), g.CostThreshold.StringFixed(2)),
				Value:     net,
				Threshold: g.CostThreshold,
			})
		}
		if g.GrowthThresholdPercent > 0 && s.GrowthRatePercent > g.GrowthThresholdPercent {
			s.Alerts = append(s.Alerts, types.Alert{
				Type:      types.AlertGrowthThreshold,
				Month:     s.Month,
				Message:   fmt.Sprintf("month %d cost grew %.1f%%, above %.1f%%", s.Month, s.GrowthRatePercent, g.GrowthThresholdPercent),
				Value:     decimal.NewFromFloat(s.GrowthRatePercent),
				Threshold: growthLimit,
			})
		}
		previous = net
	}

	p.logger.Debug("projection complete",
		zap.String("model", string(g.Model)),
		zap.Float64("rate", g.Rate),
		zap.Int("months", len(steps)),
		zap.String("last_net", steps[len(steps)-1].Costs.NetMonthlyCost.String()))

	return steps
}

// growthPercent is the change from previous to current in percent; zero when previous is zero
func growthPercent(previous, current decimal.Decimal) float64 {
	if !previous.IsPositive() {
		return 0
	}
	return current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).InexactFloat64()
}
