package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archcost/adapters/request"
	"archcost/core/advisor"
	"archcost/core/catalog"
	"archcost/core/cost"
	"archcost/core/types"
)

const webJSON = `{
  "name": "web-app",
  "usage": {"api_requests": 1000000, "data_transfer_gb": 20, "compute_hours": 730},
  "services": [
    {"id": "ec2", "purpose": "web", "config": {"instance_type": "t3.small", "count": 2}},
    {"id": "alb", "purpose": "lb"},
    {"id": "s3", "config": {"storage_gb": 50}}
  ]
}`

const webHCL = `
usage {
  api_requests = 1000000
}

service "lambda" {
  memory_mb = 512
}

service "apigateway" {
  api_type = "http"
}
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	engine := cost.NewEngine(cat)
	h := NewHandler(engine, request.Defaults{Region: "us-east-1", Currency: types.CurrencyUSD, FreeTier: true}, advisor.DefaultThresholds(), 2, nil)
	return NewServer("test", h)
}

func do(t *testing.T, s *Server, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestEstimateEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/estimate?currency=eur", "application/json", webJSON)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp EstimateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.NotEmpty(t, resp.RequestID)
	assert.Equal(t, types.CurrencyEUR, resp.Estimate.Currency)
	assert.Len(t, resp.Estimate.ServiceCosts, 3)
	assert.NotEmpty(t, resp.ConfidenceLevel)
	require.NotNil(t, resp.Metadata)
	assert.Equal(t, "test", resp.Metadata.EngineVersion)
	assert.Len(t, resp.Metadata.InputHash, 12)
}

func TestEstimateHCLBody(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/estimate?free_tier=false", "application/hcl", webHCL)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp EstimateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Estimate.FreeTierEnabled)
	assert.True(t, resp.Estimate.FreeTierSavings.IsZero())
}

func TestEstimatePartialOnUnknownService(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/estimate", "", `services: [{id: mainframe}, {id: s3}]`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp EstimateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "partial", resp.Status)
	require.NotEmpty(t, resp.Errors)
	assert.Equal(t, "UNKNOWN_SERVICE", resp.Errors[0].Code)
	assert.Less(t, resp.Confidence, 1.0)
}

func TestBadRequests(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/estimate", "application/json", `{"regoin": "us-east-1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INPUT_ERROR")

	rec = do(t, s, http.MethodPost, "/estimate?free_tier=maybe", "application/json", webJSON)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/estimate?currency=xyz", "application/json", webJSON)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodGet, "/estimate", "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = do(t, s, http.MethodPost, "/estimate", "application/json", strings.Repeat(" ", MaxBodyBytes+1))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRecommendProjectVariants(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/recommend", "application/json", webJSON)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := strings.TrimSuffix(webJSON, "}") + `, "growth": {"model": "linear", "rate": 0.1, "months": 6}}`
	rec = do(t, s, http.MethodPost, "/project", "application/json", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var project ProjectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &project))
	assert.Len(t, project.Projection, 6)
	assert.Equal(t, 6, project.Summary.Months)

	rec = do(t, s, http.MethodPost, "/variants", "application/json", webJSON)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var vs struct {
		Variants []struct {
			Kind string `json:"kind"`
		} `json:"variants"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &vs))
	require.NotEmpty(t, vs.Variants)
}

func TestDiffEndpoint(t *testing.T) {
	s := newTestServer(t)
	body := `{"base": ` + webJSON + `, "head": {"services": [{"id": "s3", "config": {"storage_gb": 50}}]}}`

	rec := do(t, s, http.MethodPost, "/diff", "application/json", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp DiffResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Diff)
	assert.Len(t, resp.Diff.Removed, 2)
	assert.True(t, resp.Diff.TotalDelta.IsNegative())

	rec = do(t, s, http.MethodPost, "/diff", "application/json", `{"before": {}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalogEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/catalog", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "us-east-1")

	rec = do(t, s, http.MethodGet, "/catalog/lambda", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/catalog/mainframe", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, s, http.MethodGet, "/version", "", "")
	assert.Contains(t, rec.Body.String(), `"engine":"archcost"`)
}
