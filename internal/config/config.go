package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for partscout.
type Config struct {
	Site     SiteConfig     `mapstructure:"site"     yaml:"site"`
	Scrape   ScrapeConfig   `mapstructure:"scrape"   yaml:"scrape"`
	Fetcher  FetcherConfig  `mapstructure:"fetcher"  yaml:"fetcher"`
	Browser  BrowserConfig  `mapstructure:"browser"  yaml:"browser"`
	Parser   ParserConfig   `mapstructure:"parser"   yaml:"parser"`
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"  yaml:"metrics"`
}

// SiteConfig describes the catalog being searched.
type SiteConfig struct {
	BaseURL    string `mapstructure:"base_url"    yaml:"base_url"`
	SearchPath string `mapstructure:"search_path" yaml:"search_path"`
}

// ScrapeConfig controls the page loop.
type ScrapeConfig struct {
	MaxPages       int           `mapstructure:"max_pages"        yaml:"max_pages"`
	FirstPageDelay DelayRange    `mapstructure:"first_page_delay" yaml:"first_page_delay"`
	PageDelay      DelayRange    `mapstructure:"page_delay"       yaml:"page_delay"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"  yaml:"request_timeout"`
}

// DelayRange is a closed [Min, Max] interval for randomized pauses.
type DelayRange struct {
	Min time.Duration `mapstructure:"min" yaml:"min"`
	Max time.Duration `mapstructure:"max" yaml:"max"`
}

// FetcherConfig controls how pages are retrieved.
type FetcherConfig struct {
	Type        string   `mapstructure:"type"          yaml:"type"` // browser, http
	EscapeTerm  bool     `mapstructure:"escape_term"   yaml:"escape_term"`
	UserAgents  []string `mapstructure:"user_agents"   yaml:"user_agents"`
	MaxBodySize int64    `mapstructure:"max_body_size" yaml:"max_body_size"`
}

// BrowserConfig controls the Chromium session.
type BrowserConfig struct {
	Headless    bool          `mapstructure:"headless"     yaml:"headless"`
	Stealth     bool          `mapstructure:"stealth"      yaml:"stealth"`
	Bin         string        `mapstructure:"bin"          yaml:"bin"`
	UserDataDir string        `mapstructure:"user_data_dir" yaml:"user_data_dir"`
	StableWait  time.Duration `mapstructure:"stable_wait"  yaml:"stable_wait"`
}

// ParserConfig holds the CSS/XPath selectors used on listing pages.
type ParserConfig struct {
	Selectors Selectors `mapstructure:"selectors" yaml:"selectors"`
}

// Selectors locate the listing fragments.
type Selectors struct {
	Pagination string `mapstructure:"pagination" yaml:"pagination"` // xpath
	Item       string `mapstructure:"item"       yaml:"item"`
	Title      string `mapstructure:"title"      yaml:"title"`
	Price      string `mapstructure:"price"      yaml:"price"`
	Dollars    string `mapstructure:"dollars"    yaml:"dollars"`
	Cents      string `mapstructure:"cents"      yaml:"cents"`
}

// AnalysisConfig controls statistics, plotting and clustering.
type AnalysisConfig struct {
	Clusters    int     `mapstructure:"clusters"     yaml:"clusters"`
	Seed        int64   `mapstructure:"seed"         yaml:"seed"`
	MaxFeatures int     `mapstructure:"max_features" yaml:"max_features"`
	NInit       int     `mapstructure:"n_init"       yaml:"n_init"`
	MaxIter     int     `mapstructure:"max_iter"     yaml:"max_iter"`
	Tolerance   float64 `mapstructure:"tolerance"    yaml:"tolerance"`
	SampleSize  int     `mapstructure:"sample_size"  yaml:"sample_size"`
	PlotPath    string  `mapstructure:"plot_path"    yaml:"plot_path"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Port    int    `mapstructure:"port"    yaml:"port"`
	Path    string `mapstructure:"path"    yaml:"path"`
}

// DefaultConfig returns a Config tuned for newegg.com.
func DefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			BaseURL:    "https://www.newegg.com",
			SearchPath: "/p/pl",
		},
		Scrape: ScrapeConfig{
			MaxPages:       5,
			FirstPageDelay: DelayRange{Min: 5 * time.Second, Max: 8 * time.Second},
			PageDelay:      DelayRange{Min: 6 * time.Second, Max: 10 * time.Second},
			RequestTimeout: 60 * time.Second,
		},
		Fetcher: FetcherConfig{
			Type:       "browser",
			EscapeTerm: true,
			UserAgents: []string{
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0.0.0 Safari/537.36",
				"Mozilla/5.0 (Macintosh; Intel Mac OS X 13_0_1) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36",
				"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/113.0.5672.126 Safari/537.36",
			},
			MaxBodySize: 10 * 1024 * 1024, // 10MB
		},
		Browser: BrowserConfig{
			// newegg serves a bot wall to headless Chrome
			Headless:   false,
			Stealth:    true,
			StableWait: 500 * time.Millisecond,
		},
		Parser: ParserConfig{
			Selectors: Selectors{
				Pagination: "//span[contains(concat(' ', normalize-space(@class), ' '), ' list-tool-pagination-text ')]//strong",
				Item:       "div.item-cell",
				Title:      "a.item-title",
				Price:      "li.price-current",
				Dollars:    "strong",
				Cents:      "sup",
			},
		},
		Analysis: AnalysisConfig{
			Clusters:    3,
			Seed:        42,
			MaxFeatures: 500,
			NInit:       10,
			MaxIter:     300,
			Tolerance:   1e-4,
			SampleSize:  5,
			PlotPath:    "price_scatter.png",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
			Path:    "/metrics",
		},
	}
}
