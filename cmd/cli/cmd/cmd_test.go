package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const webRequest = `
name: web-app
usage:
  api_requests: 1000000
  data_transfer_gb: 20
  compute_hours: 730
services:
  - id: ec2
    purpose: web
    config: {instance_type: t3.small, count: 2}
  - id: alb
    purpose: lb
  - id: s3
    config: {storage_gb: 50}
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfgFile, format, currency, region, logLevel = "", "", "", "", ""
	envFiles, noFreeTier, verbose = nil, false, false
	growthModel, growthRate, months, sequential = "", 0, 0, false
	changeThreshold = 0.001

	dir := t.TempDir()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(dir, "config.json"), "--log-level", "error"}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeRequest(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "web.yaml")
	require.NoError(t, os.WriteFile(path, []byte(webRequest), 0644))
	return path
}

func TestEstimateJSON(t *testing.T) {
	out, err := run(t, "--format", "json", "--currency", "eur", "estimate", writeRequest(t))
	require.NoError(t, err)

	var report struct {
		Estimate struct {
			Currency     string `json:"currency"`
			ServiceCosts []struct {
				ServiceID string `json:"service"`
			} `json:"service_costs"`
		} `json:"estimate"`
		Confidence struct {
			Level string `json:"level"`
		} `json:"confidence"`
		Metadata struct {
			CatalogVersion string `json:"catalog_version"`
			InputHash      string `json:"input_hash"`
		} `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "EUR", report.Estimate.Currency)
	assert.Len(t, report.Estimate.ServiceCosts, 3)
	assert.NotEmpty(t, report.Confidence.Level)
	assert.NotEmpty(t, report.Metadata.CatalogVersion)
	assert.Len(t, report.Metadata.InputHash, 12)
}

func TestEstimateTable(t *testing.T) {
	out, err := run(t, "estimate", writeRequest(t))
	require.NoError(t, err)
	assert.Contains(t, out, "ec2")
	assert.Contains(t, out, "Pricing catalog")
}

func TestProjectAndVariants(t *testing.T) {
	path := writeRequest(t)

	out, err := run(t, "project", "--model", "linear", "--rate", "0.1", "--months", "6", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Total over 6 months")

	_, err = run(t, "variants", path)
	require.NoError(t, err)

	_, err = run(t, "recommend", "--fault-tolerant=false", path)
	require.NoError(t, err)
}

func TestCatalogCommand(t *testing.T) {
	_, err := run(t, "catalog", "s3")
	require.NoError(t, err)

	_, err = run(t, "catalog", "mainframe")
	assert.Error(t, err)
}

func TestBadInputs(t *testing.T) {
	_, err := run(t, "--format", "xml", "estimate", writeRequest(t))
	assert.Error(t, err)

	_, err = run(t, "estimate", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = run(t, "project", "--model", "sideways", writeRequest(t))
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "archcost version "+Version+"\n", out)
}

func TestDiffCommand(t *testing.T) {
	base := writeRequest(t)
	head := filepath.Join(t.TempDir(), "head.yaml")
	require.NoError(t, os.WriteFile(head, []byte(webRequest+`  - id: cloudfront
    purpose: cdn
`), 0644))

	out, err := run(t, "diff", base, head)
	require.NoError(t, err)
	assert.Contains(t, out, "cloudfront/cdn")
	assert.Contains(t, out, "added")
}
