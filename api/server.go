// Package api - Thin, deterministic API layer
// The API is ONLY responsible for: input ingestion, engine orchestration, output serialization.
// The API NEVER performs cost logic.
package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"archcost/adapters/request"
	"archcost/core/catalog"
	"archcost/core/determinism"
	"archcost/core/types"
	cerrors "archcost/internal/errors"
)

// Server is the API server
type Server struct {
	handler *Handler
	mux     *http.ServeMux
	version string
}

// NewServer creates a new API server
func NewServer(version string, handler *Handler) *Server {
	s := &Server{
		handler: handler,
		mux:     http.NewServeMux(),
		version: version,
	}
	s.registerRoutes()
	return s
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	// Core endpoints
	s.mux.HandleFunc("POST /estimate", s.handleEstimate)
	s.mux.HandleFunc("POST /recommend", s.handleRecommend)
	s.mux.HandleFunc("POST /project", s.handleProject)
	s.mux.HandleFunc("POST /variants", s.handleVariants)
	s.mux.HandleFunc("POST /diff", s.handleDiff)
	s.mux.HandleFunc("GET /health", s.handleHealth)

	// Supporting endpoints
	s.mux.HandleFunc("GET /version", s.handleVersion)
	s.mux.HandleFunc("GET /catalog", s.handleCatalog)
	s.mux.HandleFunc("GET /catalog/{service}", s.handleService)
}

// responder is implemented by every response type through the embedded Response
type responder interface {
	base() *Response
}

func (r *Response) base() *Response { return r }

// serve decodes a request document, runs op and writes its response
func serve[T responder](s *Server, w http.ResponseWriter, r *http.Request, op func(*request.Request) (T, error)) {
	start := time.Now()
	requestID := uuid.NewString()

	req, err := s.handler.decode(w, r)
	if err != nil {
		s.writeError(w, requestID, err)
		return
	}

	resp, err := op(req)
	if err != nil {
		s.writeError(w, requestID, err)
		return
	}

	s.finish(resp.base(), requestID, req.SourceHash, start)
	s.writeJSON(w, resp, http.StatusOK)
}

// handleEstimate handles POST /estimate
func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	serve(s, w, r, s.handler.estimate)
}

// handleRecommend handles POST /recommend
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	serve(s, w, r, s.handler.recommend)
}

// handleProject handles POST /project
func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	serve(s, w, r, func(req *request.Request) (*ProjectResponse, error) {
		return s.handler.project(r.Context(), req)
	})
}

// handleVariants handles POST /variants
func (s *Server) handleVariants(w http.ResponseWriter, r *http.Request) {
	serve(s, w, r, s.handler.variants)
}

// DiffRequest is the body of POST /diff: two request documents
type DiffRequest struct {
	Base      request.Document `yaml:"base"`
	Head      request.Document `yaml:"head"`
	Threshold float64          `yaml:"threshold"`
}

// handleDiff handles POST /diff
func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := uuid.NewString()

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		s.writeError(w, requestID, cerrors.Wrap(cerrors.TypeInput, "failed to read body", err))
		return
	}

	var body DiffRequest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&body); err != nil {
		s.writeError(w, requestID, cerrors.Wrap(cerrors.TypeInput, "malformed diff request", err))
		return
	}

	base, err := request.Build(&body.Base, s.handler.defaults)
	if err != nil {
		s.writeError(w, requestID, err)
		return
	}
	head, err := request.Build(&body.Head, s.handler.defaults)
	if err != nil {
		s.writeError(w, requestID, err)
		return
	}

	resp, err := s.handler.diff(base, head, body.Threshold)
	if err != nil {
		s.writeError(w, requestID, err)
		return
	}

	s.finish(&resp.Response, requestID, determinism.ComputeHash(data).Short(), start)
	s.writeJSON(w, resp, http.StatusOK)
}

// finish fills the shared response fields
func (s *Server) finish(resp *Response, requestID, inputHash string, start time.Time) {
	cat := s.handler.engine.Catalog()

	resp.RequestID = requestID
	resp.Timestamp = time.Now().UTC()
	resp.Status = "success"
	if len(resp.Errors) > 0 {
		resp.Status = "partial"
		resp.Message = "some services could not be priced exactly"
	}
	resp.Metadata = &ResponseMetadata{
		InputHash:      inputHash,
		EngineVersion:  s.version,
		CatalogVersion: cat.Version(),
		EffectiveDate:  cat.EffectiveDate().Format(catalog.DateLayout),
		DurationMs:     time.Since(start).Milliseconds(),
	}

	s.handler.logger.Info("request served",
		zap.String("request_id", requestID),
		zap.String("status", resp.Status),
		zap.Int64("duration_ms", resp.Metadata.DurationMs))
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"status":  "healthy",
		"version": s.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	cat := s.handler.engine.Catalog()
	s.writeJSON(w, map[string]string{
		"version":         s.version,
		"engine":          "archcost",
		"catalog_version": cat.Version(),
		"effective_date":  cat.EffectiveDate().Format(catalog.DateLayout),
	}, http.StatusOK)
}

// handleCatalog handles GET /catalog
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	cat := s.handler.engine.Catalog()
	s.writeJSON(w, map[string]interface{}{
		"version":    cat.Version(),
		"services":   cat.Services(),
		"regions":    cat.Regions(),
		"currencies": cat.Currencies(),
	}, http.StatusOK)
}

// handleService handles GET /catalog/{service}
func (s *Server) handleService(w http.ResponseWriter, r *http.Request) {
	def, err := s.handler.engine.Catalog().Lookup(types.ServiceID(r.PathValue("service")))
	if err != nil {
		s.writeError(w, uuid.NewString(), err)
		return
	}
	s.writeJSON(w, def, http.StatusOK)
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.handler.logger.Warn("failed to write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, requestID string, err error) {
	detail := ErrorDetail{Code: "INTERNAL", Message: err.Error()}
	var ce *cerrors.Error
	if errors.As(err, &ce) {
		detail = ErrorDetail{Code: string(ce.Type), Message: err.Error(), Context: ce.Context}
	}
	status := statusFor(err)

	if status >= http.StatusInternalServerError {
		s.handler.logger.Error("request failed", zap.String("request_id", requestID), zap.Error(err))
	} else {
		s.handler.logger.Debug("request rejected", zap.String("request_id", requestID), zap.Error(err))
	}

	s.writeJSON(w, &Response{
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
		Status:    "error",
		Message:   detail.Message,
		Errors:    []ErrorDetail{detail},
	}, status)
}

// statusFor maps error types to HTTP status codes
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	case cerrors.IsType(err, cerrors.TypeNotFound), cerrors.IsType(err, cerrors.TypeUnknownService):
		return http.StatusNotFound
	case cerrors.IsType(err, cerrors.TypeCatalogIntegrity):
		return http.StatusInternalServerError
	}
	var ce *cerrors.Error
	if errors.As(err, &ce) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
