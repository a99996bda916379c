package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PreferenceWeights express what the caller optimizes for. Each weight is 1-5.
type PreferenceWeights struct {
	CostPriority        int `json:"cost_priority" yaml:"cost_priority" validate:"min=1,max=5"`
	PerformancePriority int `json:"performance_priority" yaml:"performance_priority" validate:"min=1,max=5"`
	ComplexityTolerance int `json:"complexity_tolerance" yaml:"complexity_tolerance" validate:"min=1,max=5"`
	ScalabilityNeed     int `json:"scalability_need" yaml:"scalability_need" validate:"min=1,max=5"`
}

// DefaultPreferences returns neutral weights
func DefaultPreferences() PreferenceWeights {
	return PreferenceWeights{CostPriority: 3, PerformancePriority: 3, ComplexityTolerance: 3, ScalabilityNeed: 3}
}

// Validate checks every weight is in 1..5
func (p PreferenceWeights) Validate() error {
	return validateStruct("preferences", p)
}

// Requirements are hard constraints on candidate architectures
type Requirements struct {
	// MonthlyBudget in USD; zero means no budget
	MonthlyBudget decimal.Decimal `json:"monthly_budget" yaml:"-"`

	// LongRunning compute (jobs over the serverless time limit) blocks serverless substitution
	LongRunning bool `json:"long_running" yaml:"long_running"`

	// Stateful compute blocks serverless substitution
	Stateful bool `json:"stateful" yaml:"stateful"`

	// Relational data blocks key-value substitution
	Relational bool `json:"relational" yaml:"relational"`

	// Usage is the profile every variant is priced with
	Usage UsageProfile `json:"usage" yaml:"usage"`

	Region   string `json:"region" yaml:"region"`
	FreeTier bool   `json:"free_tier" yaml:"free_tier"`
}

// Pattern is a named base architecture with its operational characteristics
type Pattern struct {
	Name         string       `json:"name"`
	Architecture Architecture `json:"architecture"`

	// Scalability rates how well the pattern scales (1-5); zero is treated as 3
	Scalability int `json:"scalability"`

	// Complexity rates the operational burden (1-5); zero is treated as 3
	Complexity int `json:"complexity"`
}

func (p Pattern) String() string {
	return fmt.Sprintf("%s (%d services)", p.Name, len(p.Architecture.Services))
}
