// Package variants composes alternative architectures for a base pattern and
// ranks them by suitability. Every variant is priced by the cost engine and
// checked for incompatible or missing services before it is scored.
package variants

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"archcost/core/confidence"
	"archcost/core/cost"
	"archcost/core/determinism"
	"archcost/core/types"
	cerrors "archcost/internal/errors"
	"archcost/internal/logging"
)

// Kind names the objective a variant was biased toward
type Kind string

const (
	KindBase        Kind = "base"
	KindCost        Kind = "cost"
	KindPerformance Kind = "performance"
	KindSimplicity  Kind = "simplicity"
	KindScalability Kind = "scalability"
)

// BaseConfidence is the confidence of a variant with no issues or diagnostics
const BaseConfidence = 0.8

// Variant is one candidate architecture with its costs and score
type Variant struct {
	ID           string             `json:"id"`
	Kind         Kind               `json:"kind"`
	Name         string             `json:"name"`
	Architecture types.Architecture `json:"architecture"`
	Costs        *types.CostResult  `json:"costs"`

	// Scalability and Complexity rate the variant 1-5
	Scalability int `json:"scalability"`
	Complexity  int `json:"complexity"`

	// Changes describe how the variant differs from the pattern
	Changes []string `json:"changes,omitempty"`

	// Issues are compatibility problems that could not be resolved
	Issues []*cerrors.Error `json:"issues,omitempty"`

	Confidence float64 `json:"confidence"`
	Score      Score   `json:"score"`
}

// draft is a variant under construction
type draft struct {
	arch        types.Architecture
	scalability int
	complexity  int
	changes     []string
}

func (d *draft) note(format string, args ...interface{}) {
	d.changes = append(d.changes, fmt.Sprintf(format, args...))
}

// strategy biases a copy of the pattern toward one objective
type strategy struct {
	kind   Kind
	wanted func(p types.PreferenceWeights) bool
	apply  func(o *Optimizer, d *draft, req types.Requirements)
}

func strategies() []strategy {
	return []strategy{
		{KindCost, func(p types.PreferenceWeights) bool { return p.CostPriority >= 3 }, costBiased},
		{KindPerformance, func(p types.PreferenceWeights) bool { return p.PerformancePriority >= 3 }, performanceBiased},
		{KindSimplicity, func(p types.PreferenceWeights) bool { return p.ComplexityTolerance <= 3 }, simplicityBiased},
		{KindScalability, func(p types.PreferenceWeights) bool { return p.ScalabilityNeed >= 3 }, scalabilityBiased},
	}
}

// Optimizer generates and ranks architecture variants
type Optimizer struct {
	engine *cost.Engine
	ids    *determinism.IDGenerator
	logger *zap.Logger
}

// New creates an optimizer. A nil logger uses the global logger.
func New(engine *cost.Engine, logger *zap.Logger) *Optimizer {
	return &Optimizer{
		engine: engine,
		ids:    determinism.NewIDGenerator("variant"),
		logger: logging.Named("variants", logger),
	}
}

// Optimize returns the base variant plus every wanted biased variant that
// differs from it, ranked by score.
func (o *Optimizer) Optimize(pattern types.Pattern, req types.Requirements, prefs types.PreferenceWeights) ([]Variant, error) {
	if err := prefs.Validate(); err != nil {
		return nil, cerrors.Wrap(cerrors.TypeInput, "invalid preferences", err)
	}
	pattern = normalize(pattern)

	base := o.build(pattern, strategy{kind: KindBase}, req, prefs)
	variants := []Variant{base}

	for _, s := range strategies() {
		if !s.wanted(prefs) {
			continue
		}
		v := o.build(pattern, s, req, prefs)
		if identical(base, v) {
			o.logger.Debug("variant identical to base, discarded",
				zap.String("pattern", pattern.Name),
				zap.String("kind", string(s.kind)))
			continue
		}
		variants = append(variants, v)
	}

	Rank(variants)

	o.logger.Debug("variants ranked",
		zap.String("pattern", pattern.Name),
		zap.Int("count", len(variants)))

	return variants, nil
}

func (o *Optimizer) build(pattern types.Pattern, s strategy, req types.Requirements, prefs types.PreferenceWeights) Variant {
	d := &draft{
		arch:        pattern.Architecture.Clone(),
		scalability: pattern.Scalability,
		complexity:  pattern.Complexity,
	}
	if s.apply != nil {
		s.apply(o, d, req)
	}

	issues := o.resolve(d, req, prefs)
	d.complexity += complexityShift(pattern.Architecture, d.arch)

	costs := o.engine.Calculate(d.arch, req.Usage, req.Region, req.FreeTier)

	errs := make([]*cerrors.Error, len(issues))
	for i, is := range issues {
		errs[i] = is.Err()
	}

	tracker := confidence.NewTracker(BaseConfidence)
	tracker.ApplyDiagnostics(errs)
	tracker.ApplyDiagnostics(costs.Diagnostics)

	v := Variant{
		ID:           o.ids.Generate(pattern.Name, string(s.kind)).String(),
		Kind:         s.kind,
		Name:         fmt.Sprintf("%s (%s)", pattern.Name, s.kind),
		Architecture: d.arch,
		Costs:        costs,
		Scalability:  clampRating(d.scalability),
		Complexity:   clampRating(d.complexity),
		Changes:      d.changes,
		Issues:       errs,
		Confidence:   tracker.Current(),
	}
	v.Architecture.Name = v.Name
	v.Score = score(v, req, prefs)
	return v
}

// identical reports whether two variants use the same services at the same cost
func identical(a, b Variant) bool {
	return slices.Equal(a.Architecture.ServiceIDs(), b.Architecture.ServiceIDs()) &&
		a.Costs.TotalMonthlyCost.Equal(b.Costs.TotalMonthlyCost)
}

// Rank orders variants by score, highest first, then by ID
func Rank(variants []Variant) {
	determinism.SortSlice(variants, func(a, b Variant) bool {
		if a.Score.Total != b.Score.Total {
			return a.Score.Total > b.Score.Total
		}
		return a.ID < b.ID
	})
}

func normalize(p types.Pattern) types.Pattern {
	if p.Scalability == 0 {
		p.Scalability = 3
	}
	if p.Complexity == 0 {
		p.Complexity = 3
	}
	if p.Name == "" {
		p.Name = p.Architecture.Name
	}
	if p.Name == "" {
		p.Name = "pattern"
	}
	return p
}

func clampRating(r int) int {
	return max(1, min(5, r))
}
