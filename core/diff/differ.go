// Package diff provides service-level cost diffing.
// Compares two priced architectures service by service and component by component.
package diff

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"archcost/core/determinism"
	"archcost/core/types"
	cerrors "archcost/internal/errors"
)

// Result is the complete diff between two cost results
type Result struct {
	Currency types.Currency `json:"currency"`

	// Net monthly totals
	TotalBefore  decimal.Decimal `json:"total_before"`
	TotalAfter   decimal.Decimal `json:"total_after"`
	TotalDelta   decimal.Decimal `json:"total_delta"`
	DeltaPercent float64         `json:"delta_percent"`

	// Service-level changes
	Added     []*ServiceDiff `json:"added,omitempty"`
	Removed   []*ServiceDiff `json:"removed,omitempty"`
	Changed   []*ServiceDiff `json:"changed,omitempty"`
	Unchanged []*ServiceDiff `json:"unchanged,omitempty"`

	// Confidence impact; set by callers that track confidence
	ConfidenceBefore float64 `json:"confidence_before,omitempty"`
	ConfidenceAfter  float64 `json:"confidence_after,omitempty"`
}

// ServiceDiff describes changes to a single service
type ServiceDiff struct {
	// Key is service/purpose, with #n appended for repeats
	Key        string          `json:"key"`
	ServiceID  types.ServiceID `json:"service"`
	Purpose    string          `json:"purpose,omitempty"`
	ChangeType ChangeType      `json:"change"`

	// Net monthly costs
	Before decimal.Decimal `json:"before"`
	After  decimal.Decimal `json:"after"`
	Delta  decimal.Decimal `json:"delta"`

	Components []*ComponentDiff `json:"components,omitempty"`
	Reasons    []ChangeReason   `json:"reasons,omitempty"`
}

// ChangeType indicates the type of change
type ChangeType int

const (
	ChangeAdded     ChangeType = iota // New service
	ChangeRemoved                     // Service removed
	ChangeModified                    // Service cost changed
	ChangeUnchanged                   // No cost change
)

// String returns the change type name
func (c ChangeType) String() string {
	switch c {
	case ChangeAdded:
		return "added"
	case ChangeRemoved:
		return "removed"
	case ChangeModified:
		return "modified"
	case ChangeUnchanged:
		return "unchanged"
	default:
		return "unknown"
	}
}

// MarshalText encodes the change type by name
func (c ChangeType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// ComponentDiff describes changes to one gross cost component
type ComponentDiff struct {
	Name       string     `json:"name"`
	ChangeType ChangeType `json:"change"`

	Before decimal.Decimal `json:"before"`
	After  decimal.Decimal `json:"after"`
	Delta  decimal.Decimal `json:"delta"`

	// What changed
	RateChanged  bool            `json:"rate_changed,omitempty"`
	UsageChanged bool            `json:"usage_changed,omitempty"`
	OldRate      decimal.Decimal `json:"old_rate"`
	NewRate      decimal.Decimal `json:"new_rate"`
	OldQuantity  decimal.Decimal `json:"old_quantity"`
	NewQuantity  decimal.Decimal `json:"new_quantity"`
}

// ChangeReason explains why a cost changed
type ChangeReason struct {
	Category string          `json:"category"` // "rate", "usage", "quantity", "configuration", "free_tier"
	What     string          `json:"what"`
	Impact   decimal.Decimal `json:"impact"`
}

// Differ computes diffs between cost results
type Differ struct {
	// Threshold for "unchanged" (e.g., 0.01 = 1%)
	ChangeThreshold float64
}

// NewDiffer creates a new differ
func NewDiffer(changeThreshold float64) *Differ {
	if changeThreshold <= 0 {
		changeThreshold = 0.001 // 0.1% default
	}
	return &Differ{ChangeThreshold: changeThreshold}
}

// Diff computes the diff between before and after. Both must be in the same currency.
func (d *Differ) Diff(before, after *types.CostResult) (*Result, error) {
	if before == nil || after == nil {
		return nil, cerrors.Input("diff needs two cost results")
	}
	if currencyOf(before) != currencyOf(after) {
		return nil, cerrors.Newf(cerrors.TypeInput, "cannot diff %s against %s", currencyOf(before), currencyOf(after))
	}

	result := &Result{
		Currency:    currencyOf(before),
		TotalBefore: before.NetMonthlyCost,
		TotalAfter:  after.NetMonthlyCost,
		TotalDelta:  after.NetMonthlyCost.Sub(before.NetMonthlyCost),
	}
	if !before.NetMonthlyCost.IsZero() {
		result.DeltaPercent = result.TotalDelta.Div(before.NetMonthlyCost).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
	}

	beforeMap := index(before.ServiceCosts)
	afterMap := index(after.ServiceCosts)

	determinism.RangeMapSorted(afterMap, func(key string, sc types.ServiceCost) bool {
		prev, existed := beforeMap[key]
		if !existed {
			result.Added = append(result.Added, d.added(key, sc))
			return true
		}
		diff := d.compareServices(key, prev, sc)
		if diff.ChangeType == ChangeModified {
			result.Changed = append(result.Changed, diff)
		} else {
			result.Unchanged = append(result.Unchanged, diff)
		}
		return true
	})

	determinism.RangeMapSorted(beforeMap, func(key string, sc types.ServiceCost) bool {
		if _, exists := afterMap[key]; !exists {
			result.Removed = append(result.Removed, d.removed(key, sc))
		}
		return true
	})

	return result, nil
}

// index keys services by id and purpose. Repeats get #2, #3... in architecture order.
func index(costs []types.ServiceCost) map[string]types.ServiceCost {
	out := make(map[string]types.ServiceCost, len(costs))
	seen := make(map[string]int, len(costs))
	for _, sc := range costs {
		key := string(sc.ServiceID)
		if sc.Purpose != "" {
			key += "/" + sc.Purpose
		}
		seen[key]++
		if n := seen[key]; n > 1 {
			key = fmt.Sprintf("%s#%d", key, n)
		}
		out[key] = sc
	}
	return out
}

func (d *Differ) added(key string, sc types.ServiceCost) *ServiceDiff {
	net := sc.NetCost()
	return &ServiceDiff{
		Key:        key,
		ServiceID:  sc.ServiceID,
		Purpose:    sc.Purpose,
		ChangeType: ChangeAdded,
		Before:     decimal.Zero,
		After:      net,
		Delta:      net,
		Reasons:    []ChangeReason{{Category: "quantity", What: "new service", Impact: net}},
	}
}

func (d *Differ) removed(key string, sc types.ServiceCost) *ServiceDiff {
	net := sc.NetCost()
	return &ServiceDiff{
		Key:        key,
		ServiceID:  sc.ServiceID,
		Purpose:    sc.Purpose,
		ChangeType: ChangeRemoved,
		Before:     net,
		After:      decimal.Zero,
		Delta:      net.Neg(),
		Reasons:    []ChangeReason{{Category: "quantity", What: "service removed", Impact: net.Neg()}},
	}
}

func (d *Differ) compareServices(key string, before, after types.ServiceCost) *ServiceDiff {
	diff := &ServiceDiff{
		Key:       key,
		ServiceID: after.ServiceID,
		Purpose:   after.Purpose,
		Before:    before.NetCost(),
		After:     after.NetCost(),
	}
	diff.Delta = diff.After.Sub(diff.Before)

	if !d.significant(before.MonthlyCost, after.MonthlyCost) && !d.significant(diff.Before, diff.After) {
		diff.ChangeType = ChangeUnchanged
		return diff
	}
	diff.ChangeType = ChangeModified

	beforeComponents := make(map[string]types.Component, len(before.Breakdown))
	for _, c := range before.Breakdown {
		beforeComponents[c.Name] = c
	}
	afterComponents := make(map[string]types.Component, len(after.Breakdown))

	for _, ac := range after.Breakdown {
		afterComponents[ac.Name] = ac
		bc, existed := beforeComponents[ac.Name]

		cd := &ComponentDiff{
			Name:        ac.Name,
			After:       ac.Cost,
			NewRate:     ac.Rate,
			NewQuantity: ac.Quantity,
		}
		if !existed {
			cd.ChangeType = ChangeAdded
			cd.Delta = ac.Cost
			diff.Reasons = append(diff.Reasons, ChangeReason{
				Category: "configuration",
				What:     "new component: " + ac.Name,
				Impact:   ac.Cost,
			})
			diff.Components = append(diff.Components, cd)
			continue
		}

		cd.Before = bc.Cost
		cd.OldRate = bc.Rate
		cd.OldQuantity = bc.Quantity
		cd.Delta = ac.Cost.Sub(bc.Cost)
		if cd.Delta.IsZero() {
			cd.ChangeType = ChangeUnchanged
			diff.Components = append(diff.Components, cd)
			continue
		}

		cd.ChangeType = ChangeModified
		if !bc.Rate.Equal(ac.Rate) || bc.Class != ac.Class {
			cd.RateChanged = true
			what := ac.Name + " rate changed"
			if bc.Class != ac.Class {
				what = fmt.Sprintf("%s class %s -> %s", ac.Name, bc.Class, ac.Class)
			}
			diff.Reasons = append(diff.Reasons, ChangeReason{Category: "rate", What: what, Impact: cd.Delta})
		}
		if !bc.Quantity.Equal(ac.Quantity) {
			cd.UsageChanged = true
			diff.Reasons = append(diff.Reasons, ChangeReason{
				Category: "usage",
				What:     ac.Name + " usage changed",
				Impact:   cd.Delta,
			})
		}
		diff.Components = append(diff.Components, cd)
	}

	for _, name := range determinism.SortedKeys(beforeComponents) {
		if _, found := afterComponents[name]; found {
			continue
		}
		bc := beforeComponents[name]
		diff.Components = append(diff.Components, &ComponentDiff{
			Name:        name,
			ChangeType:  ChangeRemoved,
			Before:      bc.Cost,
			Delta:       bc.Cost.Neg(),
			OldRate:     bc.Rate,
			OldQuantity: bc.Quantity,
		})
		diff.Reasons = append(diff.Reasons, ChangeReason{
			Category: "configuration",
			What:     "component removed: " + name,
			Impact:   bc.Cost.Neg(),
		})
	}

	if ft := after.FreeTierSavings.Sub(before.FreeTierSavings); !ft.IsZero() {
		diff.Reasons = append(diff.Reasons, ChangeReason{
			Category: "free_tier",
			What:     "free tier savings changed",
			Impact:   ft.Neg(),
		})
	}

	return diff
}

// significant reports whether before -> after moves by more than the threshold
func (d *Differ) significant(before, after decimal.Decimal) bool {
	if before.IsZero() {
		return !after.IsZero()
	}
	change := after.Sub(before).Div(before).Abs().InexactFloat64()
	return change > d.ChangeThreshold
}

func currencyOf(r *types.CostResult) types.Currency {
	if r.Currency == "" {
		return types.CurrencyUSD
	}
	return r.Currency
}

// Summary provides a human-readable summary
func (r *Result) Summary() string {
	var b strings.Builder

	switch {
	case r.TotalDelta.IsZero():
		b.WriteString("No cost change\n")
	case r.TotalDelta.IsNegative():
		fmt.Fprintf(&b, "Cost decreased by %s %s\n", r.TotalDelta.Neg().StringFixed(2), r.Currency)
	default:
		fmt.Fprintf(&b, "Cost increased by %s %s\n", r.TotalDelta.StringFixed(2), r.Currency)
	}

	if n := len(r.Added); n > 0 {
		fmt.Fprintf(&b, "  + %d services added\n", n)
	}
	if n := len(r.Removed); n > 0 {
		fmt.Fprintf(&b, "  - %d services removed\n", n)
	}
	if n := len(r.Changed); n > 0 {
		fmt.Fprintf(&b, "  ~ %d services changed\n", n)
	}

	return b.String()
}

// TopChanges returns the services with the largest cost impact
func (r *Result) TopChanges(n int) []*ServiceDiff {
	all := make([]*ServiceDiff, 0, len(r.Added)+len(r.Removed)+len(r.Changed))
	all = append(all, r.Added...)
	all = append(all, r.Removed...)
	all = append(all, r.Changed...)

	determinism.SortSlice(all, func(a, b *ServiceDiff) bool {
		if c := a.Delta.Abs().Cmp(b.Delta.Abs()); c != 0 {
			return c > 0
		}
		return a.Key < b.Key
	})

	if n > len(all) {
		n = len(all)
	}
	return all[:n]
}
