// Package output provides output formatting interfaces.
// This package produces human and machine-readable outputs.
package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"archcost/core/catalog"
	"archcost/core/confidence"
	"archcost/core/diff"
	"archcost/core/types"
	"archcost/core/variants"
)

// Format represents output format type
type Format string

const (
	// FormatTable is a human-readable table
	FormatTable Format = "table"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"
)

// ParseFormat returns the format named s
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTable, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (want table or json)", s)
}

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render produces output for the given report
	Render(w io.Writer, report *Report) error
}

// Report is everything a command can print. Empty sections are skipped.
type Report struct {
	Estimate        *types.CostResult          `json:"estimate,omitempty"`
	Confidence      *Confidence                `json:"confidence,omitempty"`
	Recommendations []types.Recommendation     `json:"recommendations,omitempty"`
	Projection      []types.ScenarioProjection `json:"projection,omitempty"`
	Summary         *types.ProjectionSummary   `json:"summary,omitempty"`
	Variants        []variants.Variant         `json:"variants,omitempty"`
	Diff            *diff.Result               `json:"diff,omitempty"`
	Catalog         *CatalogListing            `json:"catalog,omitempty"`
	Metadata        Metadata                   `json:"metadata"`
}

// Confidence summarizes how far an estimate can be trusted
type Confidence struct {
	Value   float64            `json:"value"`
	Level   string             `json:"level"`
	Factors []confidence.Decay `json:"factors,omitempty"`
}

// NewConfidence captures a tracker's state
func NewConfidence(t *confidence.Tracker) *Confidence {
	return &Confidence{Value: t.Current(), Level: t.Level(), Factors: t.Factors()}
}

// CatalogListing is the catalog content shown by the catalog command
type CatalogListing struct {
	Services   []*catalog.ServiceDefinition `json:"services"`
	Regions    []types.Region               `json:"regions,omitempty"`
	Currencies []types.Currency             `json:"currencies,omitempty"`
}

// Metadata contains execution context
type Metadata struct {
	// CatalogVersion and EffectiveDate identify the pricing edition used
	CatalogVersion string `json:"catalog_version"`
	EffectiveDate  string `json:"effective_date"`

	// InputHash is a hash of the request file
	InputHash string `json:"input_hash,omitempty"`

	// Version is the tool version
	Version string `json:"version"`
}

// Registry manages formatter registration
type Registry struct {
	formatters map[Format]Formatter
}

// NewRegistry returns a registry holding the table and JSON formatters
func NewRegistry() *Registry {
	r := &Registry{formatters: map[Format]Formatter{}}
	_ = r.Register(NewTableFormatter())
	_ = r.Register(NewJSONFormatter(true))
	return r
}

// Register adds a formatter to the registry
func (r *Registry) Register(f Formatter) error {
	if _, exists := r.formatters[f.Format()]; exists {
		return fmt.Errorf("formatter already registered: %s", f.Format())
	}
	r.formatters[f.Format()] = f
	return nil
}

// Get returns the formatter for a format
func (r *Registry) Get(format Format) (Formatter, bool) {
	f, ok := r.formatters[format]
	return f, ok
}

// Formats returns the registered formats, sorted
func (r *Registry) Formats() []Format {
	out := make([]Format, 0, len(r.formatters))
	for f := range r.formatters {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
