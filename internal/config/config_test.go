package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, Validate(cfg))

	assert.Equal(t, 5, cfg.Scrape.MaxPages)
	assert.Equal(t, 3, cfg.Analysis.Clusters)
	assert.Equal(t, int64(42), cfg.Analysis.Seed)
	assert.Equal(t, 500, cfg.Analysis.MaxFeatures)
	assert.Len(t, cfg.Fetcher.UserAgents, 3)
	assert.True(t, cfg.Fetcher.EscapeTerm)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad base url", func(c *Config) { c.Site.BaseURL = "ftp://example.com" }},
		{"zero pages", func(c *Config) { c.Scrape.MaxPages = 0 }},
		{"inverted delay", func(c *Config) { c.Scrape.PageDelay = DelayRange{Min: 2 * time.Second, Max: time.Second} }},
		{"negative delay", func(c *Config) { c.Scrape.FirstPageDelay.Min = -time.Second }},
		{"zero timeout", func(c *Config) { c.Scrape.RequestTimeout = 0 }},
		{"unknown fetcher", func(c *Config) { c.Fetcher.Type = "curl" }},
		{"no user agents", func(c *Config) { c.Fetcher.UserAgents = nil }},
		{"empty selector", func(c *Config) { c.Parser.Selectors.Cents = "" }},
		{"zero clusters", func(c *Config) { c.Analysis.Clusters = 0 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"bad metrics port", func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Port = 70000 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, Validate(cfg))
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "partscout.yaml")
	content := `
scrape:
  max_pages: 3
  page_delay:
    min: 1s
    max: 2s
fetcher:
  type: http
analysis:
  clusters: 4
  plot_path: ""
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Scrape.MaxPages)
	assert.Equal(t, time.Second, cfg.Scrape.PageDelay.Min)
	assert.Equal(t, 2*time.Second, cfg.Scrape.PageDelay.Max)
	assert.Equal(t, "http", cfg.Fetcher.Type)
	assert.Equal(t, 4, cfg.Analysis.Clusters)
	assert.Equal(t, "", cfg.Analysis.PlotPath)
	// untouched values keep their defaults
	assert.Equal(t, int64(42), cfg.Analysis.Seed)
	assert.Equal(t, "https://www.newegg.com", cfg.Site.BaseURL)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("PARTSCOUT_SCRAPE_MAX_PAGES", "2")
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Scrape.MaxPages)
}
