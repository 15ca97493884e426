package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IshaanNene/partscout/internal/config"
	"github.com/IshaanNene/partscout/internal/fetcher"
)

const searchEndpoint = "https://www.newegg.com/p/pl"

const listingPage = `<html><body>
<span class="list-tool-pagination-text">Page <strong>1/12</strong></span>
<div class="item-cell">
  <a class="item-title">MSI GeForce RTX 4060 Ventus 2X 8GB</a>
  <ul><li class="price-current">$<strong>299</strong><sup>.99</sup></li></ul>
</div>
<div class="item-cell">
  <a class="item-title">Corsair RM850x 850W Power Supply</a>
  <ul><li class="price-current">$<strong>129</strong><sup>.99</sup></li></ul>
</div>
<div class="item-cell">
  <a class="item-title">Samsung 990 PRO 2TB NVMe SSD</a>
  <ul><li class="price-current">$<strong>169</strong><sup>.99</sup></li></ul>
</div>
</body></html>`

// writeRunConfig writes a config with no pacing, the http fetcher and no plot.
func writeRunConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "partscout.yaml")
	content := `
scrape:
  first_page_delay:
    min: 0s
    max: 0s
  page_delay:
    min: 0s
    max: 0s
fetcher:
  type: http
analysis:
  plot_path: ""
logging:
  level: error
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// useTransport routes the scrape session through rt for the test.
func useTransport(t *testing.T, rt http.RoundTripper) {
	t.Helper()
	orig := openFetcher
	openFetcher = func(cfg *config.Config, logger *slog.Logger) (fetcher.Fetcher, error) {
		return fetcher.NewHTTPFetcher(cfg, logger, fetcher.WithTransport(rt))
	}
	t.Cleanup(func() { openFetcher = orig })
}

func executeRun(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(&flags{})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestApplyCLIOverrides(t *testing.T) {
	f := &flags{}
	cmd := newRootCmd(f)
	require.NoError(t, cmd.ParseFlags([]string{
		"--pages", "2", "--headless", "--fetcher", "HTTP", "--plot", "",
		"--clusters", "4", "--seed", "7", "--no-escape", "-v",
	}))

	cfg := config.DefaultConfig()
	applyCLIOverrides(cmd, f, cfg)

	assert.Equal(t, 2, cfg.Scrape.MaxPages)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, "http", cfg.Fetcher.Type)
	assert.Equal(t, "", cfg.Analysis.PlotPath)
	assert.Equal(t, 4, cfg.Analysis.Clusters)
	assert.Equal(t, int64(7), cfg.Analysis.Seed)
	assert.False(t, cfg.Fetcher.EscapeTerm)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "https://www.newegg.com", cfg.Site.BaseURL)
	require.NoError(t, config.Validate(cfg))
}

func TestUnsetFlagsKeepConfig(t *testing.T) {
	f := &flags{}
	cmd := newRootCmd(f)
	require.NoError(t, cmd.ParseFlags(nil))

	cfg := config.DefaultConfig()
	applyCLIOverrides(cmd, f, cfg)
	assert.Equal(t, config.DefaultConfig(), cfg)
}

func TestSetupLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := setupLogger(&buf, config.LoggingConfig{Level: "warn", Format: "json"})

	logger.Info("hidden")
	logger.Warn("shown", "page", 2)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, 2.0, rec["page"])
}

func TestVersionCommand(t *testing.T) {
	cmd := newRootCmd(&flags{})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "PartScout "+config.Version)
}

func TestConfigCommand(t *testing.T) {
	t.Chdir(t.TempDir())
	cmd := newRootCmd(&flags{})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"config"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Max Pages:         5")
	assert.Contains(t, out.String(), "Clusters:          3")
}

func TestConfigCommandShowsFlagOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	out, err := executeRun(t, "config", "--pages", "2", "--clusters", "4", "--fetcher", "http", "--no-escape")
	require.NoError(t, err)

	assert.Contains(t, out, "Max Pages:         2")
	assert.Contains(t, out, "Clusters:          4")
	assert.Contains(t, out, "Type:              http")
	assert.Contains(t, out, "Escape Term:       false")
}

func TestRunScoutAnalysesCollectedProducts(t *testing.T) {
	cfgPath := writeRunConfig(t)
	mock := httpmock.NewMockTransport()
	mock.RegisterResponder(http.MethodGet, searchEndpoint,
		httpmock.NewStringResponder(http.StatusOK, listingPage))
	useTransport(t, mock)

	out, err := executeRun(t, "-c", cfgPath, "gpu")
	require.NoError(t, err)

	assert.Equal(t, 6, mock.GetTotalCallCount())
	assert.Contains(t, out, "Collected 15 products")
	assert.Contains(t, out, "Dataset Statistics for 'gpu'")
	assert.Contains(t, out, "Total products analyzed: 15")
	assert.NotContains(t, out, "❌ Error:")
}

func TestRunScoutDegradesToNoDataOnFetchFailure(t *testing.T) {
	cfgPath := writeRunConfig(t)
	mock := httpmock.NewMockTransport()
	mock.RegisterResponder(http.MethodGet, searchEndpoint, func(req *http.Request) (*http.Response, error) {
		if req.URL.Query().Get("page") == "2" {
			return nil, errors.New("connection reset by peer")
		}
		return httpmock.NewStringResponse(http.StatusOK, listingPage), nil
	})
	useTransport(t, mock)

	out, err := executeRun(t, "-c", cfgPath, "gpu")
	require.NoError(t, err)

	// page 1 products are printed, then discarded with the failed run
	assert.Equal(t, 3, strings.Count(out, "💻 "))
	assert.Contains(t, out, "❌ Error:")
	assert.Contains(t, out, "connection reset by peer")
	assert.Contains(t, out, "No product data collected.")
	assert.NotContains(t, out, "Dataset Statistics")
	assert.NotContains(t, out, "Collected")
}

func TestRunScoutDegradesToNoDataWhenSessionFails(t *testing.T) {
	cfgPath := writeRunConfig(t)
	orig := openFetcher
	openFetcher = func(*config.Config, *slog.Logger) (fetcher.Fetcher, error) {
		return nil, errors.New("launch browser: chromium not found")
	}
	t.Cleanup(func() { openFetcher = orig })

	out, err := executeRun(t, "-c", cfgPath, "gpu")
	require.NoError(t, err)
	assert.Contains(t, out, "❌ Error: launch browser: chromium not found")
	assert.Contains(t, out, "No product data collected.")
}

func TestRunScoutRejectsInvalidConfig(t *testing.T) {
	cfgPath := writeRunConfig(t)
	_, err := executeRun(t, "-c", cfgPath, "--pages", "0", "gpu")
	assert.Error(t, err)
}
