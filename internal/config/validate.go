package config

import (
	"fmt"
	"net/url"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if err := ValidateURL(cfg.Site.BaseURL); err != nil {
		return fmt.Errorf("site.base_url: %w", err)
	}

	if cfg.Scrape.MaxPages < 1 {
		return fmt.Errorf("scrape.max_pages must be >= 1, got %d", cfg.Scrape.MaxPages)
	}
	if err := validateDelay("scrape.first_page_delay", cfg.Scrape.FirstPageDelay); err != nil {
		return err
	}
	if err := validateDelay("scrape.page_delay", cfg.Scrape.PageDelay); err != nil {
		return err
	}
	if cfg.Scrape.RequestTimeout <= 0 {
		return fmt.Errorf("scrape.request_timeout must be > 0")
	}

	if cfg.Fetcher.Type != "http" && cfg.Fetcher.Type != "browser" {
		return fmt.Errorf("fetcher.type must be 'http' or 'browser', got %q", cfg.Fetcher.Type)
	}
	if len(cfg.Fetcher.UserAgents) == 0 {
		return fmt.Errorf("fetcher.user_agents must not be empty")
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}

	sel := cfg.Parser.Selectors
	for name, s := range map[string]string{
		"pagination": sel.Pagination,
		"item":       sel.Item,
		"title":      sel.Title,
		"price":      sel.Price,
		"dollars":    sel.Dollars,
		"cents":      sel.Cents,
	} {
		if s == "" {
			return fmt.Errorf("parser.selectors.%s must not be empty", name)
		}
	}

	if cfg.Analysis.Clusters < 1 {
		return fmt.Errorf("analysis.clusters must be >= 1, got %d", cfg.Analysis.Clusters)
	}
	if cfg.Analysis.MaxFeatures < 1 {
		return fmt.Errorf("analysis.max_features must be >= 1, got %d", cfg.Analysis.MaxFeatures)
	}
	if cfg.Analysis.NInit < 1 {
		return fmt.Errorf("analysis.n_init must be >= 1, got %d", cfg.Analysis.NInit)
	}
	if cfg.Analysis.MaxIter < 1 {
		return fmt.Errorf("analysis.max_iter must be >= 1, got %d", cfg.Analysis.MaxIter)
	}
	if cfg.Analysis.Tolerance < 0 {
		return fmt.Errorf("analysis.tolerance must be >= 0")
	}
	if cfg.Analysis.SampleSize < 0 {
		return fmt.Errorf("analysis.sample_size must be >= 0, got %d", cfg.Analysis.SampleSize)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Port < 1 || cfg.Metrics.Port > 65535 {
			return fmt.Errorf("metrics.port must be 1-65535, got %d", cfg.Metrics.Port)
		}
	}

	return nil
}

func validateDelay(name string, d DelayRange) error {
	if d.Min < 0 || d.Max < 0 {
		return fmt.Errorf("%s must not be negative", name)
	}
	if d.Min > d.Max {
		return fmt.Errorf("%s.min (%s) exceeds max (%s)", name, d.Min, d.Max)
	}
	return nil
}

// ValidateURL checks if a URL string is usable as a catalog base.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
