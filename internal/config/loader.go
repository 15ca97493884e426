package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from file, environment, and defaults.
// Priority (highest to lowest): env vars > config file > defaults.
// CLI flags are applied on top by the caller.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	v.SetEnvPrefix("PARTSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("partscout")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".partscout"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values in viper so env overrides resolve.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("site.base_url", cfg.Site.BaseURL)
	v.SetDefault("site.search_path", cfg.Site.SearchPath)

	v.SetDefault("scrape.max_pages", cfg.Scrape.MaxPages)
	v.SetDefault("scrape.first_page_delay.min", cfg.Scrape.FirstPageDelay.Min)
	v.SetDefault("scrape.first_page_delay.max", cfg.Scrape.FirstPageDelay.Max)
	v.SetDefault("scrape.page_delay.min", cfg.Scrape.PageDelay.Min)
	v.SetDefault("scrape.page_delay.max", cfg.Scrape.PageDelay.Max)
	v.SetDefault("scrape.request_timeout", cfg.Scrape.RequestTimeout)

	v.SetDefault("fetcher.type", cfg.Fetcher.Type)
	v.SetDefault("fetcher.escape_term", cfg.Fetcher.EscapeTerm)
	v.SetDefault("fetcher.user_agents", cfg.Fetcher.UserAgents)
	v.SetDefault("fetcher.max_body_size", cfg.Fetcher.MaxBodySize)

	v.SetDefault("browser.headless", cfg.Browser.Headless)
	v.SetDefault("browser.stealth", cfg.Browser.Stealth)
	v.SetDefault("browser.bin", cfg.Browser.Bin)
	v.SetDefault("browser.user_data_dir", cfg.Browser.UserDataDir)
	v.SetDefault("browser.stable_wait", cfg.Browser.StableWait)

	v.SetDefault("parser.selectors.pagination", cfg.Parser.Selectors.Pagination)
	v.SetDefault("parser.selectors.item", cfg.Parser.Selectors.Item)
	v.SetDefault("parser.selectors.title", cfg.Parser.Selectors.Title)
	v.SetDefault("parser.selectors.price", cfg.Parser.Selectors.Price)
	v.SetDefault("parser.selectors.dollars", cfg.Parser.Selectors.Dollars)
	v.SetDefault("parser.selectors.cents", cfg.Parser.Selectors.Cents)

	v.SetDefault("analysis.clusters", cfg.Analysis.Clusters)
	v.SetDefault("analysis.seed", cfg.Analysis.Seed)
	v.SetDefault("analysis.max_features", cfg.Analysis.MaxFeatures)
	v.SetDefault("analysis.n_init", cfg.Analysis.NInit)
	v.SetDefault("analysis.max_iter", cfg.Analysis.MaxIter)
	v.SetDefault("analysis.tolerance", cfg.Analysis.Tolerance)
	v.SetDefault("analysis.sample_size", cfg.Analysis.SampleSize)
	v.SetDefault("analysis.plot_path", cfg.Analysis.PlotPath)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)

	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.port", cfg.Metrics.Port)
	v.SetDefault("metrics.path", cfg.Metrics.Path)
}
