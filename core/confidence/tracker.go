// Package confidence tracks how much an estimate can be trusted.
// Every issue found while pricing compounds the loss; nothing is averaged away.
package confidence

import (
	"fmt"
	"math"
	"strings"

	"archcost/core/types"
	cerrors "archcost/internal/errors"
)

// DecayRule defines how confidence decays
type DecayRule struct {
	Name          string
	BaseFactor    float64 // multiplier, 0.8 = 20% reduction
	Compounds     bool    // later compounding decays hit harder
	MinConfidence float64 // floor
}

// Rule names
const (
	RuleConflict       = "configuration_conflict"
	RuleUnknownService = "unknown_service"
	RuleInvalidConfig  = "invalid_configuration"
	RuleInvalidUsage   = "invalid_usage"
	RuleRegionFallback = "region_fallback"
	RuleDefaultConfig  = "default_configuration"
)

// StandardDecayRules are the default decay rules
var StandardDecayRules = map[string]*DecayRule{
	RuleConflict: {
		Name:          RuleConflict,
		BaseFactor:    0.8,
		Compounds:     true,
		MinConfidence: 0.1,
	},
	RuleUnknownService: {
		Name:          RuleUnknownService,
		BaseFactor:    0.5, // a whole service is missing from the total
		Compounds:     true,
		MinConfidence: 0.1,
	},
	RuleInvalidConfig: {
		Name:          RuleInvalidConfig,
		BaseFactor:    0.6,
		Compounds:     true,
		MinConfidence: 0.1,
	},
	RuleInvalidUsage: {
		Name:          RuleInvalidUsage,
		BaseFactor:    0.9,
		Compounds:     false,
		MinConfidence: 0.3,
	},
	RuleRegionFallback: {
		Name:          RuleRegionFallback,
		BaseFactor:    0.85,
		Compounds:     false,
		MinConfidence: 0.3,
	},
	RuleDefaultConfig: {
		Name:          RuleDefaultConfig,
		BaseFactor:    0.97,
		Compounds:     false,
		MinConfidence: 0.5,
	},
}

var diagnosticRules = map[cerrors.Type]string{
	cerrors.TypeConfigurationConflict: RuleConflict,
	cerrors.TypeUnknownService:        RuleUnknownService,
	cerrors.TypeInvalidConfiguration:  RuleInvalidConfig,
	cerrors.TypeInvalidUsage:          RuleInvalidUsage,
	cerrors.TypeRegionNotFound:        RuleRegionFallback,
}

// Tracker tracks confidence with full reasoning
type Tracker struct {
	initial       float64
	current       float64
	factors       []Decay
	compoundCount int
}

// Decay records a single confidence reduction
type Decay struct {
	Rule          string  `json:"rule"`
	Reason        string  `json:"reason"`
	Factor        float64 `json:"factor"`
	AppliedAt     float64 `json:"applied_at"`
	ResultedIn    float64 `json:"resulted_in"`
	WasCompounded bool    `json:"was_compounded,omitempty"`
}

// NewTracker creates a tracker starting at initial, clamped to [0,1]
func NewTracker(initial float64) *Tracker {
	initial = math.Max(0, math.Min(1, initial))
	return &Tracker{initial: initial, current: initial}
}

// Apply applies a decay rule
func (t *Tracker) Apply(ruleName, reason string) {
	rule, ok := StandardDecayRules[ruleName]
	if !ok {
		// unknown rule: moderate decay
		rule = &DecayRule{Name: ruleName, BaseFactor: 0.8, Compounds: true, MinConfidence: 0.1}
	}

	before := t.current
	factor := rule.BaseFactor

	// each compounding decay hits harder: 0.8 → 0.72 → 0.648 ...
	compounded := rule.Compounds && t.compoundCount > 0
	if compounded {
		factor *= math.Pow(0.9, float64(t.compoundCount))
	}

	t.current *= factor
	if t.current < rule.MinConfidence && before >= rule.MinConfidence {
		t.current = rule.MinConfidence
	}
	if t.current > before {
		t.current = before
	}

	t.factors = append(t.factors, Decay{
		Rule:          ruleName,
		Reason:        reason,
		Factor:        factor,
		AppliedAt:     before,
		ResultedIn:    t.current,
		WasCompounded: compounded,
	})

	if rule.Compounds {
		t.compoundCount++
	}
}

// ApplyDiagnostics decays once per diagnostic of a known type
func (t *Tracker) ApplyDiagnostics(diags []*cerrors.Error) {
	for _, d := range diags {
		if rule, ok := diagnosticRules[d.Type]; ok {
			t.Apply(rule, d.Message)
		}
	}
}

// ApplyDefaults decays once per service priced without an explicit configuration
func (t *Tracker) ApplyDefaults(arch types.Architecture) {
	for _, su := range arch.Services {
		if su.Config == nil {
			t.Apply(RuleDefaultConfig, fmt.Sprintf("%s priced with default configuration", su.ServiceID))
		}
	}
}

// Current returns the current confidence
func (t *Tracker) Current() float64 {
	return t.current
}

// Factors returns all decay factors
func (t *Tracker) Factors() []Decay {
	return t.factors
}

// TotalDecay returns how much confidence was lost
func (t *Tracker) TotalDecay() float64 {
	return t.initial - t.current
}

// Level returns the human-readable confidence level
func (t *Tracker) Level() string {
	return Level(t.current)
}

// Level names a confidence value
func Level(c float64) string {
	switch {
	case c >= 0.9:
		return "high"
	case c >= 0.7:
		return "medium"
	case c >= 0.5:
		return "low"
	case c >= 0.3:
		return "very_low"
	default:
		return "unreliable"
	}
}

// Explain returns a human-readable explanation
func (t *Tracker) Explain() string {
	if len(t.factors) == 0 {
		return fmt.Sprintf("Confidence: %.0f%% (%s), no uncertainties", t.current*100, t.Level())
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Confidence: %.0f%% (%s)\n", t.current*100, t.Level())
	sb.WriteString("Decay factors:\n")
	for i, f := range t.factors {
		compound := ""
		if f.WasCompounded {
			compound = " [compounded]"
		}
		fmt.Fprintf(&sb, "  %d. %s: %.0f%% → %.0f%% (%s)%s\n",
			i+1, f.Rule, f.AppliedAt*100, f.ResultedIn*100, f.Reason, compound)
	}
	return sb.String()
}

// ForResult returns a tracker for a priced architecture
func ForResult(arch types.Architecture, result *types.CostResult) *Tracker {
	t := NewTracker(1.0)
	t.ApplyDiagnostics(result.Diagnostics)
	t.ApplyDefaults(arch)
	return t
}
