// Package api - API types for cost estimation
// Request bodies are request documents in YAML, JSON or HCL, selected by Content-Type.
// Every response carries the request id and the pricing edition it was computed with.
package api

import (
	"time"

	"archcost/core/confidence"
	"archcost/core/diff"
	"archcost/core/types"
	"archcost/core/variants"
)

// Response fields shared by every endpoint
type Response struct {
	// Request tracking
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`

	// Status
	Status  string `json:"status"` // "success", "partial", "error"
	Message string `json:"message,omitempty"`

	// Errors (for partial results)
	Errors []ErrorDetail `json:"errors,omitempty"`

	Metadata *ResponseMetadata `json:"metadata,omitempty"`
}

// EstimateResponse is the output of POST /estimate
type EstimateResponse struct {
	Response

	Estimate *types.CostResult `json:"estimate"`

	// Confidence in the estimate
	Confidence      float64            `json:"confidence"`
	ConfidenceLevel string             `json:"confidence_level"`
	Factors         []confidence.Decay `json:"confidence_factors,omitempty"`
}

// RecommendResponse is the output of POST /recommend
type RecommendResponse struct {
	Response

	Estimate        *types.CostResult      `json:"estimate"`
	Recommendations []types.Recommendation `json:"recommendations"`
}

// ProjectResponse is the output of POST /project
type ProjectResponse struct {
	Response

	Projection []types.ScenarioProjection `json:"projection"`
	Summary    types.ProjectionSummary    `json:"summary"`
}

// VariantsResponse is the output of POST /variants
type VariantsResponse struct {
	Response

	Variants []variants.Variant `json:"variants"`
}

// DiffResponse is the output of POST /diff
type DiffResponse struct {
	Response

	Diff *diff.Result `json:"diff"`
}

// ResponseMetadata contains audit/reproducibility metadata
type ResponseMetadata struct {
	InputHash      string `json:"input_hash"`
	EngineVersion  string `json:"engine_version"`
	CatalogVersion string `json:"catalog_version"`
	EffectiveDate  string `json:"effective_date"`
	DurationMs     int64  `json:"duration_ms"`
}

// ErrorDetail provides error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}
