package variants

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"archcost/clouds"
	"archcost/core/determinism"
	"archcost/core/types"
	cerrors "archcost/internal/errors"
)

// IssueKind classifies a compatibility problem
type IssueKind string

const (
	// IssueIncompatible marks two services serving the same purpose that should not coexist
	IssueIncompatible IssueKind = "incompatible"

	// IssueMissingCompanion marks a service that needs another in front of it
	IssueMissingCompanion IssueKind = "missing_companion"
)

// Issue is a compatibility problem in an architecture
type Issue struct {
	Kind    IssueKind
	Group   string
	Purpose string

	// Services are the conflicting services, or the service missing a companion
	Services []types.ServiceID

	// Candidates are the entries a resolution may keep (incompatible) or add (missing companion)
	Candidates []types.ServiceUsage

	reason string
}

// Err returns the issue as a configuration conflict diagnostic
func (i Issue) Err() *cerrors.Error {
	ids := make([]string, len(i.Services))
	for n, id := range i.Services {
		ids[n] = string(id)
	}

	var msg string
	switch i.Kind {
	case IssueIncompatible:
		msg = fmt.Sprintf("%s both serve %s for %q", strings.Join(ids, " and "), i.Group, i.Purpose)
	default:
		msg = fmt.Sprintf("%s: %s", strings.Join(ids, ", "), i.reason)
	}
	return cerrors.ConfigurationConflict(msg, ids...).
		WithContext("kind", string(i.Kind)).
		WithContext("group", i.Group)
}

// incompatibleGroups are services that do the same job
var incompatibleGroups = []struct {
	name     string
	services []types.ServiceID
}{
	{"data storage", []types.ServiceID{types.ServiceRDS, types.ServiceDynamoDB}},
	{"request routing", []types.ServiceID{types.ServiceALB, types.ServiceAPIGateway}},
}

type companionRule struct {
	service types.ServiceID
	needs   []types.ServiceID
	applies func(su types.ServiceUsage) bool
	reason  string
}

var companionRules = []companionRule{
	{
		service: types.ServiceLambda,
		needs:   []types.ServiceID{types.ServiceAPIGateway, types.ServiceALB},
		applies: func(types.ServiceUsage) bool { return true },
		reason:  "functions need a gateway or load balancer in front",
	},
	{
		service: types.ServiceFargate,
		needs:   []types.ServiceID{types.ServiceALB},
		applies: func(types.ServiceUsage) bool { return true },
		reason:  "containers need a load balancer in front",
	},
	{
		service: types.ServiceEC2,
		needs:   []types.ServiceID{types.ServiceALB},
		applies: func(su types.ServiceUsage) bool {
			cfg, _ := clouds.ConfigAs[types.ComputeConfig](su.Config)
			return cfg.Instances() > 1 || cfg.Autoscaling
		},
		reason: "multiple instances need a load balancer in front",
	},
}

// companions are the entries added to satisfy a companion rule
var companions = map[types.ServiceID]types.ServiceUsage{
	types.ServiceALB:        {ServiceID: types.ServiceALB, Purpose: "lb"},
	types.ServiceAPIGateway: {ServiceID: types.ServiceAPIGateway, Purpose: "api", Config: types.NetworkingConfig{APIType: "http"}},
}

// Check returns the compatibility issues of an architecture in a stable order
func Check(arch types.Architecture) []Issue {
	var issues []Issue

	for _, g := range incompatibleGroups {
		byPurpose := map[string]map[types.ServiceID]types.ServiceUsage{}
		for _, su := range arch.Services {
			if !containsID(g.services, su.ServiceID) {
				continue
			}
			if byPurpose[su.Purpose] == nil {
				byPurpose[su.Purpose] = map[types.ServiceID]types.ServiceUsage{}
			}
			if _, seen := byPurpose[su.Purpose][su.ServiceID]; !seen {
				byPurpose[su.Purpose][su.ServiceID] = su
			}
		}

		for _, purpose := range determinism.SortedKeys(byPurpose) {
			entries := byPurpose[purpose]
			if len(entries) < 2 {
				continue
			}
			ids := determinism.SortedKeys(entries)
			candidates := make([]types.ServiceUsage, len(ids))
			for i, id := range ids {
				candidates[i] = entries[id]
			}
			issues = append(issues, Issue{
				Kind:       IssueIncompatible,
				Group:      g.name,
				Purpose:    purpose,
				Services:   ids,
				Candidates: candidates,
			})
		}
	}

	for _, rule := range companionRules {
		if arch.HasAny(rule.needs...) {
			continue
		}
		for _, su := range arch.Services {
			if su.ServiceID != rule.service || !rule.applies(su) {
				continue
			}
			candidates := make([]types.ServiceUsage, len(rule.needs))
			for i, id := range rule.needs {
				candidates[i] = companions[id]
			}
			issues = append(issues, Issue{
				Kind:       IssueMissingCompanion,
				Group:      "companion",
				Purpose:    su.Purpose,
				Services:   []types.ServiceID{su.ServiceID},
				Candidates: candidates,
				reason:     rule.reason,
			})
			break
		}
	}

	return issues
}

// opsComplexity rates the operational burden of running each service
var opsComplexity = map[types.ServiceID]int{
	types.ServiceLambda:       1,
	types.ServiceS3:           1,
	types.ServiceDynamoDB:     1,
	types.ServiceAPIGateway:   1,
	types.ServiceCloudFront:   1,
	types.ServiceRoute53:      1,
	types.ServiceCloudWatch:   1,
	types.ServiceFargate:      2,
	types.ServiceRDS:          2,
	types.ServiceALB:          2,
	types.ServiceEBS:          2,
	types.ServiceNATGateway:   2,
	types.ServiceEC2:          3,
	types.ServiceElastiCache:  3,
	types.ServiceDataTransfer: 0,
}

func complexityOf(arch types.Architecture) int {
	total := 0
	for _, su := range arch.Services {
		total += opsComplexity[su.ServiceID]
	}
	return total
}

// complexityShift moves the complexity rating one step per three points of operational burden
func complexityShift(from, to types.Architecture) int {
	return (complexityOf(to) - complexityOf(from)) / 3
}

// resolve repairs issues where the preferences force a choice and returns the rest
func (o *Optimizer) resolve(d *draft, req types.Requirements, prefs types.PreferenceWeights) []Issue {
	for pass := 0; pass <= len(d.arch.Services)+len(companionRules); pass++ {
		issues := Check(d.arch)
		progressed := false
		for _, is := range issues {
			if o.repair(d, is, req, prefs) {
				progressed = true
				break
			}
		}
		if !progressed {
			return issues
		}
	}
	return Check(d.arch)
}

func (o *Optimizer) repair(d *draft, is Issue, req types.Requirements, prefs types.PreferenceWeights) bool {
	choice, why, ok := o.choose(is.Candidates, req, prefs)
	if !ok {
		return false
	}

	switch is.Kind {
	case IssueIncompatible:
		services := make([]types.ServiceUsage, 0, len(d.arch.Services))
		for _, su := range d.arch.Services {
			if su.Purpose == is.Purpose && su.ServiceID != choice.ServiceID && containsID(is.Services, su.ServiceID) {
				continue
			}
			services = append(services, su)
		}
		d.arch.Services = services
		d.note("kept %s for %q over %s (%s)", choice.ServiceID, is.Purpose, others(is.Services, choice.ServiceID), why)
	case IssueMissingCompanion:
		d.arch.Services = append(d.arch.Services, choice)
		d.note("added %s in front of %s (%s)", choice.ServiceID, is.Services[0], why)
	default:
		return false
	}
	return true
}

// choose picks the cheaper candidate when cost dominates, else the simpler one
// when complexity tolerance is low. Otherwise the issue stays unresolved.
func (o *Optimizer) choose(candidates []types.ServiceUsage, req types.Requirements, prefs types.PreferenceWeights) (types.ServiceUsage, string, bool) {
	if len(candidates) == 0 {
		return types.ServiceUsage{}, "", false
	}
	ranked := slices.Clone(candidates)

	switch {
	case prefs.CostPriority >= 4:
		costs := make(map[types.ServiceID]float64, len(ranked))
		for _, c := range ranked {
			result := o.engine.Calculate(types.Architecture{Services: []types.ServiceUsage{c}}, req.Usage, req.Region, false)
			costs[c.ServiceID] = result.TotalMonthlyCost.InexactFloat64()
		}
		sort.SliceStable(ranked, func(i, j int) bool {
			if costs[ranked[i].ServiceID] != costs[ranked[j].ServiceID] {
				return costs[ranked[i].ServiceID] < costs[ranked[j].ServiceID]
			}
			return simpler(ranked[i], ranked[j])
		})
		return ranked[0], "cheaper", true
	case prefs.ComplexityTolerance <= 2:
		sort.SliceStable(ranked, func(i, j int) bool { return simpler(ranked[i], ranked[j]) })
		return ranked[0], "simpler", true
	}
	return types.ServiceUsage{}, "", false
}

func simpler(a, b types.ServiceUsage) bool {
	if opsComplexity[a.ServiceID] != opsComplexity[b.ServiceID] {
		return opsComplexity[a.ServiceID] < opsComplexity[b.ServiceID]
	}
	return a.ServiceID < b.ServiceID
}

func containsID(ids []types.ServiceID, id types.ServiceID) bool {
	return slices.Contains(ids, id)
}

func others(ids []types.ServiceID, keep types.ServiceID) string {
	var rest []string
	for _, id := range ids {
		if id != keep {
			rest = append(rest, string(id))
		}
	}
	return strings.Join(rest, ", ")
}
