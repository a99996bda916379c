// Package api - HTTP handler for cost estimation
// This handler wraps the engine - it contains NO estimation logic.
// All logic is delegated to core packages.
package api

import (
	"context"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"archcost/adapters/request"
	"archcost/core/advisor"
	"archcost/core/confidence"
	"archcost/core/cost"
	"archcost/core/diff"
	"archcost/core/scenario"
	"archcost/core/types"
	"archcost/core/variants"
	cerrors "archcost/internal/errors"
	"archcost/internal/logging"
)

// MaxBodyBytes bounds request documents
const MaxBodyBytes = 1 << 20

// Handler runs core operations for decoded requests
type Handler struct {
	engine     *cost.Engine
	defaults   request.Defaults
	thresholds advisor.Thresholds
	workers    int
	logger     *zap.Logger
}

// NewHandler creates a handler. workers bounds parallel projection steps.
func NewHandler(engine *cost.Engine, defaults request.Defaults, thresholds advisor.Thresholds, workers int, logger *zap.Logger) *Handler {
	return &Handler{
		engine:     engine,
		defaults:   defaults,
		thresholds: thresholds,
		workers:    workers,
		logger:     logging.Named("api", logger),
	}
}

// decode reads a request document from the body. HCL is selected by
// Content-Type application/hcl; anything else is YAML, which includes JSON.
// Query parameters region, currency and free_tier override the document.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (*request.Request, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		return nil, cerrors.Wrap(cerrors.TypeInput, "failed to read body", err)
	}

	filename := "request.yaml"
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); strings.HasSuffix(mt, "hcl") {
		filename = "request.hcl"
	}

	req, err := request.Parse(data, filename, h.defaults)
	if err != nil {
		return nil, err
	}

	q := r.URL.Query()
	if v := q.Get("region"); v != "" {
		req.Region = v
	}
	if v := q.Get("currency"); v != "" {
		req.Currency = types.Currency(strings.ToUpper(v))
	}
	if v := q.Get("free_tier"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, cerrors.Newf(cerrors.TypeInput, "invalid free_tier %q", v)
		}
		req.FreeTier = b
	}
	req.Requirements.Region = req.Region
	req.Requirements.FreeTier = req.FreeTier
	return req, nil
}

func (h *Handler) convert(result *types.CostResult, cur types.Currency) (*types.CostResult, error) {
	if cur == "" || cur == types.CurrencyUSD {
		return result, nil
	}
	return h.engine.ConvertResult(result, cur)
}

func (h *Handler) estimate(req *request.Request) (*EstimateResponse, error) {
	arch := req.Architecture()
	result := h.engine.Calculate(arch, req.Usage, req.Region, req.FreeTier)
	tracker := confidence.ForResult(arch, result)

	converted, err := h.convert(result, req.Currency)
	if err != nil {
		return nil, err
	}

	resp := &EstimateResponse{
		Estimate:        converted,
		Confidence:      tracker.Current(),
		ConfidenceLevel: tracker.Level(),
		Factors:         tracker.Factors(),
	}
	resp.Errors = diagnostics(result.Diagnostics)
	return resp, nil
}

func (h *Handler) recommend(req *request.Request) (*RecommendResponse, error) {
	arch := req.Architecture()
	result := h.engine.Calculate(arch, req.Usage, req.Region, req.FreeTier)
	recs := advisor.New(h.engine, h.thresholds, h.logger).Generate(arch, result, req.Flags)

	converted, err := h.convert(result, req.Currency)
	if err != nil {
		return nil, err
	}
	resp := &RecommendResponse{Estimate: converted, Recommendations: recs}
	resp.Errors = diagnostics(result.Diagnostics)
	return resp, nil
}

func (h *Handler) project(ctx context.Context, req *request.Request) (*ProjectResponse, error) {
	steps, err := scenario.New(h.engine, h.workers, h.logger).
		ProjectParallel(ctx, req.Architecture(), req.Base(), req.Months, req.Growth)
	if err != nil {
		return nil, err
	}
	return &ProjectResponse{Projection: steps, Summary: scenario.Summarize(steps)}, nil
}

func (h *Handler) variants(req *request.Request) (*VariantsResponse, error) {
	vs, err := variants.New(h.engine, h.logger).Optimize(req.Pattern, req.Requirements, req.Preferences)
	if err != nil {
		return nil, err
	}
	for i := range vs {
		if vs[i].Costs, err = h.convert(vs[i].Costs, req.Currency); err != nil {
			return nil, err
		}
	}
	return &VariantsResponse{Variants: vs}, nil
}

// diff prices both sides in the head currency
func (h *Handler) diff(base, head *request.Request, threshold float64) (*DiffResponse, error) {
	baseResult := h.engine.Calculate(base.Architecture(), base.Usage, base.Region, base.FreeTier)
	headResult := h.engine.Calculate(head.Architecture(), head.Usage, head.Region, head.FreeTier)

	before, err := h.convert(baseResult, head.Currency)
	if err != nil {
		return nil, err
	}
	after, err := h.convert(headResult, head.Currency)
	if err != nil {
		return nil, err
	}

	res, err := diff.NewDiffer(threshold).Diff(before, after)
	if err != nil {
		return nil, err
	}
	res.ConfidenceBefore = confidence.ForResult(base.Architecture(), baseResult).Current()
	res.ConfidenceAfter = confidence.ForResult(head.Architecture(), headResult).Current()

	resp := &DiffResponse{Diff: res}
	resp.Errors = append(diagnostics(baseResult.Diagnostics), diagnostics(headResult.Diagnostics)...)
	return resp, nil
}

func diagnostics(diags []*cerrors.Error) []ErrorDetail {
	if len(diags) == 0 {
		return nil
	}
	out := make([]ErrorDetail, len(diags))
	for i, d := range diags {
		out[i] = ErrorDetail{Code: string(d.Type), Message: d.Message, Context: d.Context}
	}
	return out
}
