// Package advisor turns a priced architecture into ranked savings recommendations.
// Each rule inspects the cost result and, where a change would help, prices the
// changed architecture with the cost engine so savings come from the same model
// that produced the estimate.
package advisor

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"archcost/core/cost"
	"archcost/core/determinism"
	"archcost/core/types"
	"archcost/internal/logging"
)

// Thresholds are the trigger points and assumptions of the rules
type Thresholds struct {
	// RightsizingFloor is the monthly cost above which a category is checked for oversized classes
	RightsizingFloor map[types.Category]decimal.Decimal `json:"rightsizing_floor"`

	// CommitmentFloor is the committable monthly cost above which reserved capacity is suggested
	CommitmentFloor decimal.Decimal `json:"commitment_floor"`

	// SpotFloor is the compute cost above which spot capacity is suggested
	SpotFloor decimal.Decimal `json:"spot_floor"`

	// SpotDiscount is the assumed spot saving as a fraction of on-demand
	SpotDiscount decimal.Decimal `json:"spot_discount"`

	// LifecycleMinGB is the smallest S3 Standard footprint worth a lifecycle policy
	LifecycleMinGB float64 `json:"lifecycle_min_gb"`

	// LifecycleColdShare is the assumed share of objects that can move to infrequent access
	LifecycleColdShare decimal.Decimal `json:"lifecycle_cold_share"`

	// CDNMinTransferGB is the monthly egress above which a CDN is considered
	CDNMinTransferGB float64 `json:"cdn_min_transfer_gb"`

	// ServerlessMaxRequests is the monthly request volume below which always-on compute is checked against Lambda
	ServerlessMaxRequests int64 `json:"serverless_max_requests"`

	// CapacityModeFloor is the DynamoDB request cost above which provisioned capacity is checked
	CapacityModeFloor decimal.Decimal `json:"capacity_mode_floor"`

	// TargetUtilization sizes provisioned capacity from average throughput
	TargetUtilization float64 `json:"target_utilization"`

	// ImpactHigh and ImpactMedium grade recommendations by monthly savings
	ImpactHigh   decimal.Decimal `json:"impact_high"`
	ImpactMedium decimal.Decimal `json:"impact_medium"`

	// Commitments are the reserved-capacity term and payment variants
	Commitments []Commitment `json:"commitments"`
}

// DefaultThresholds returns the standard rule settings
func DefaultThresholds() Thresholds {
	return Thresholds{
		RightsizingFloor: map[types.Category]decimal.Decimal{
			types.CategoryCompute:  decimal.NewFromInt(50),
			types.CategoryDatabase: decimal.NewFromInt(100),
		},
		CommitmentFloor:       decimal.NewFromInt(50),
		SpotFloor:             decimal.NewFromInt(20),
		SpotDiscount:          decimal.RequireFromString("0.70"),
		LifecycleMinGB:        100,
		LifecycleColdShare:    decimal.RequireFromString("0.5"),
		CDNMinTransferGB:      50,
		ServerlessMaxRequests: 5_000_000,
		CapacityModeFloor:     decimal.NewFromInt(25),
		TargetUtilization:     0.7,
		ImpactHigh:            decimal.NewFromInt(100),
		ImpactMedium:          decimal.NewFromInt(20),
		Commitments:           DefaultCommitments(),
	}
}

// Rule produces recommendations for one concern
type Rule func(a *Advisor, in *input) []types.Recommendation

// DefaultRules returns every rule in evaluation order
func DefaultRules() []Rule {
	return []Rule{
		rightsizing,
		generationUpgrade,
		reservedCapacity,
		spotCapacity,
		storageLifecycle,
		cdnIntroduction,
		freeTierEnablement,
		serverlessMigration,
		capacityMode,
	}
}

// Advisor generates recommendations
type Advisor struct {
	engine     *cost.Engine
	thresholds Thresholds
	rules      []Rule
	ids        *determinism.IDGenerator
	logger     *zap.Logger
}

// New creates an advisor that prices what-if changes with engine
func New(engine *cost.Engine, thresholds Thresholds, logger *zap.Logger) *Advisor {
	if len(thresholds.Commitments) == 0 {
		thresholds.Commitments = DefaultCommitments()
	}
	return &Advisor{
		engine:     engine,
		thresholds: thresholds,
		rules:      DefaultRules(),
		ids:        determinism.NewIDGenerator("recommendation"),
		logger:     logging.Named("advisor", logger),
	}
}

// Generate returns ranked recommendations for a priced architecture.
// result must come from pricing arch; it is not modified.
func (a *Advisor) Generate(arch types.Architecture, result *types.CostResult, flags types.UsagePatternFlags) []types.Recommendation {
	if result == nil {
		return nil
	}
	in := &input{arch: arch, result: result, flags: flags}

	var recs []types.Recommendation
	for _, rule := range a.rules {
		for _, r := range rule(a, in) {
			if r.PotentialSavings.IsPositive() {
				recs = append(recs, r)
			}
		}
	}

	linkAlternatives(recs)
	Rank(recs)

	a.logger.Debug("recommendations generated",
		zap.Int("count", len(recs)),
		zap.String("region", result.Region))

	return recs
}

// Rank sorts by savings descending, then lower risk, then lower effort, then id
func Rank(recs []types.Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if c := a.PotentialSavings.Cmp(b.PotentialSavings); c != 0 {
			return c > 0
		}
		if a.RiskLevel != b.RiskLevel {
			return a.RiskLevel < b.RiskLevel
		}
		if a.Effort != b.Effort {
			return a.Effort < b.Effort
		}
		return a.ID < b.ID
	})
}

// linkAlternatives puts every reserved and spot recommendation for the same
// (service, purpose) pair into one exclusive group; each supersedes the other kind.
func linkAlternatives(recs []types.Recommendation) {
	groups := make(map[string][]int)
	var keys []string
	for i, r := range recs {
		if r.Type != types.RecReservedInstance && r.Type != types.RecSpotInstance {
			continue
		}
		key := resourceKey(r)
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], i)
	}

	for _, key := range keys {
		members := groups[key]
		if !mixed(recs, members) {
			continue
		}
		group := "capacity:" + key
		for _, i := range members {
			recs[i].ExclusiveGroup = group
			for _, j := range members {
				if recs[j].Type != recs[i].Type {
					recs[i].Supersedes = append(recs[i].Supersedes, recs[j].ID)
				}
			}
		}
	}
}

// mixed reports whether members hold both reserved and spot recommendations
func mixed(recs []types.Recommendation, members []int) bool {
	var reserved, spot bool
	for _, i := range members {
		switch recs[i].Type {
		case types.RecReservedInstance:
			reserved = true
		case types.RecSpotInstance:
			spot = true
		}
	}
	return reserved && spot
}

func resourceKey(r types.Recommendation) string {
	return string(r.ServiceID) + "/" + r.Purpose
}

// input is what every rule sees for one Generate call
type input struct {
	arch     types.Architecture
	result   *types.CostResult
	flags    types.UsagePatternFlags
	baseline map[bool]*types.CostResult
}

// entry pairs an architecture service with its priced cost.
// occurrence counts repeats of the same (service, purpose) pair from 1.
type entry struct {
	index      int
	occurrence int
	su         types.ServiceUsage
	cost       types.ServiceCost
}

// entries returns the priced services of the architecture
func (in *input) entries() []entry {
	out := make([]entry, 0, len(in.arch.Services))
	seen := make(map[string]int, len(in.arch.Services))
	for i, su := range in.arch.Services {
		key := string(su.ServiceID) + "/" + su.Purpose
		seen[key]++
		var sc types.ServiceCost
		var ok bool
		if i < len(in.result.ServiceCosts) {
			sc = in.result.ServiceCosts[i]
			ok = sc.ServiceID == su.ServiceID && sc.Purpose == su.Purpose
		}
		if !ok {
			sc, ok = in.result.ServiceFor(su.ServiceID, su.Purpose)
		}
		if !ok || sc.Unpriced {
			continue
		}
		out = append(out, entry{index: i, occurrence: seen[key], su: su, cost: sc})
	}
	return out
}

// price prices arch under the result's usage and region
func (a *Advisor) price(in *input, arch types.Architecture, freeTier bool) *types.CostResult {
	return a.engine.Calculate(arch, in.result.Usage, in.result.Region, freeTier)
}

// baselineFor prices the unchanged architecture once per free tier setting
func (a *Advisor) baselineFor(in *input, freeTier bool) *types.CostResult {
	if in.baseline == nil {
		in.baseline = make(map[bool]*types.CostResult, 2)
	}
	if r, ok := in.baseline[freeTier]; ok {
		return r
	}
	r := a.price(in, in.arch, freeTier)
	in.baseline[freeTier] = r
	return r
}

// whatIf returns the monthly net saving of applying edit to a copy of the architecture
func (a *Advisor) whatIf(in *input, edit func(arch *types.Architecture)) decimal.Decimal {
	freeTier := in.result.FreeTierEnabled
	changed := in.arch.Clone()
	edit(&changed)
	return a.baselineFor(in, freeTier).NetMonthlyCost.Sub(a.price(in, changed, freeTier).NetMonthlyCost)
}

// recommend fills the fields every rule sets the same way
func (a *Advisor) recommend(t types.RecommendationType, id types.ServiceID, purpose string, savings decimal.Decimal, effort, risk types.Level) types.Recommendation {
	return types.Recommendation{
		ID:               a.ids.Generate(string(t), string(id), purpose).String(),
		Type:             t,
		ServiceID:        id,
		Purpose:          purpose,
		Impact:           a.impact(savings),
		Effort:           effort,
		RiskLevel:        risk,
		PotentialSavings: savings,
	}
}

// recommendFor is recommend for an architecture entry; repeated pairs get distinct ids
func (a *Advisor) recommendFor(t types.RecommendationType, e entry, savings decimal.Decimal, effort, risk types.Level) types.Recommendation {
	r := a.recommend(t, e.su.ServiceID, e.su.Purpose, savings, effort, risk)
	if e.occurrence > 1 {
		r.ID = a.ids.Generate(string(t), string(e.su.ServiceID), e.su.Purpose, strconv.Itoa(e.occurrence)).String()
	}
	return r
}

func (a *Advisor) impact(savings decimal.Decimal) types.Level {
	switch {
	case savings.GreaterThanOrEqual(a.thresholds.ImpactHigh):
		return types.LevelHigh
	case savings.GreaterThanOrEqual(a.thresholds.ImpactMedium):
		return types.LevelMedium
	default:
		return types.LevelLow
	}
}

func label(su types.ServiceUsage) string {
	if su.Purpose == "" {
		return string(su.ServiceID)
	}
	return fmt.Sprintf("%s (%s)", su.ServiceID, su.Purpose)
}
