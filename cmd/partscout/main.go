package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/tcnksm/go-input"

	"github.com/IshaanNene/partscout/internal/analysis"
	"github.com/IshaanNene/partscout/internal/config"
	"github.com/IshaanNene/partscout/internal/engine"
	"github.com/IshaanNene/partscout/internal/fetcher"
	"github.com/IshaanNene/partscout/internal/observability"
	"github.com/IshaanNene/partscout/internal/types"
)

// openFetcher opens the scrape session; tests swap in a mocked transport.
var openFetcher = fetcher.New

// flags holds the command-line overrides. They are persistent so that
// `partscout config` shows the values a run would use.
type flags struct {
	cfgFile     string
	verbose     bool
	pages       int
	headless    bool
	fetcherType string
	plotPath    string
	clusters    int
	seed        int64
	baseURL     string
	noEscape    bool
}

func main() {
	if err := newRootCmd(&flags{}).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(f *flags) *cobra.Command {
	root := &cobra.Command{
		Use:   "partscout [search term]",
		Short: "PartScout — Newegg listing scraper and price analyzer",
		Long: `PartScout searches Newegg for a term, collects product titles and prices
from up to five result pages, then prints price statistics, saves a scatter
plot and groups the titles into clusters.

If no search term is given you are prompted for one.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScout(cmd, f, args)
		},
	}

	root.PersistentFlags().StringVarP(&f.cfgFile, "config", "c", "", "config file path")
	root.PersistentFlags().BoolVarP(&f.verbose, "verbose", "v", false, "enable debug logging")

	root.PersistentFlags().IntVar(&f.pages, "pages", 0, "maximum result pages to scrape")
	root.PersistentFlags().BoolVar(&f.headless, "headless", false, "run the browser without a window")
	root.PersistentFlags().StringVar(&f.fetcherType, "fetcher", "", "fetcher type: browser, http")
	root.PersistentFlags().StringVar(&f.plotPath, "plot", "", "scatter plot output path")
	root.PersistentFlags().IntVar(&f.clusters, "clusters", 0, "number of title clusters")
	root.PersistentFlags().Int64Var(&f.seed, "seed", 0, "random seed for clustering and sampling")
	root.PersistentFlags().StringVar(&f.baseURL, "base-url", "", "catalog base URL")
	root.PersistentFlags().BoolVar(&f.noEscape, "no-escape", false, "insert the search term into the URL without escaping")

	root.AddCommand(versionCmd())
	root.AddCommand(configCmd(f))
	return root
}

// runScout executes a full search and analysis.
func runScout(cmd *cobra.Command, f *flags, args []string) error {
	cfg, err := config.Load(f.cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyCLIOverrides(cmd, f, cfg)

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := setupLogger(os.Stderr, cfg.Logging)
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Welcome to the NewEgg Product Analyzer!")
	term := strings.TrimSpace(strings.Join(args, " "))
	if term == "" {
		term, err = promptTerm()
		if err != nil {
			return fmt.Errorf("read search term: %w", err)
		}
	}

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics(logger)
		srv := metrics.StartServer(cfg.Metrics.Port, cfg.Metrics.Path)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collection := scrape(ctx, cfg, term, metrics, logger, out)

	res, err := analysis.New(cfg.Analysis, logger).Analyze(collection)
	if err != nil && !errors.Is(err, analysis.ErrNoData) {
		logger.Error("analysis failed", "error", err)
		fmt.Fprintln(out, "❌ Error:", err)
		return nil
	}
	analysis.Report(out, term, res)

	if metrics != nil {
		logger.Info("run metrics", "metrics", metrics.Snapshot())
	}
	return nil
}

// scrape runs the engine and degrades any run-level failure to an empty
// collection.
func scrape(ctx context.Context, cfg *config.Config, term string, metrics *observability.Metrics, logger *slog.Logger, out io.Writer) *types.Collection {
	f, err := openFetcher(cfg, logger)
	if err != nil {
		logger.Error("open session", "error", err)
		fmt.Fprintln(out, "❌ Error:", err)
		return types.NewCollection()
	}

	eng := engine.New(cfg, f, logger, engine.WithOutput(out), engine.WithMetrics(metrics))
	collection, err := eng.Run(ctx, term)
	if err != nil {
		logger.Error("scrape failed",
			"term", term,
			"error", err,
			"discarded", collection.Len(),
			"stats", eng.Stats().Snapshot(),
		)
		fmt.Fprintln(out, "❌ Error:", err)
		return types.NewCollection()
	}
	return collection
}

// promptTerm asks for a search term until a non-empty one is given.
func promptTerm() (string, error) {
	ui := input.DefaultUI()
	term, err := ui.Ask("Enter product to search for", &input.Options{
		Required:  true,
		Loop:      true,
		HideOrder: true,
		ValidateFunc: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return types.ErrNoTerm
			}
			return nil
		},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(term), nil
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "PartScout %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the configuration a run would use",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(f.cfgFile)
			if err != nil {
				return err
			}
			applyCLIOverrides(cmd, f, cfg)

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Site:\n")
			fmt.Fprintf(w, "  Base URL:          %s\n", cfg.Site.BaseURL)
			fmt.Fprintf(w, "  Search Path:       %s\n", cfg.Site.SearchPath)
			fmt.Fprintf(w, "\nScrape:\n")
			fmt.Fprintf(w, "  Max Pages:         %d\n", cfg.Scrape.MaxPages)
			fmt.Fprintf(w, "  First Page Delay:  %s-%s\n", cfg.Scrape.FirstPageDelay.Min, cfg.Scrape.FirstPageDelay.Max)
			fmt.Fprintf(w, "  Page Delay:        %s-%s\n", cfg.Scrape.PageDelay.Min, cfg.Scrape.PageDelay.Max)
			fmt.Fprintf(w, "  Request Timeout:   %s\n", cfg.Scrape.RequestTimeout)
			fmt.Fprintf(w, "\nFetcher:\n")
			fmt.Fprintf(w, "  Type:              %s\n", cfg.Fetcher.Type)
			fmt.Fprintf(w, "  Escape Term:       %v\n", cfg.Fetcher.EscapeTerm)
			fmt.Fprintf(w, "  User Agents:       %d configured\n", len(cfg.Fetcher.UserAgents))
			fmt.Fprintf(w, "  Headless:          %v\n", cfg.Browser.Headless)
			fmt.Fprintf(w, "  Stealth:           %v\n", cfg.Browser.Stealth)
			fmt.Fprintf(w, "\nAnalysis:\n")
			fmt.Fprintf(w, "  Clusters:          %d\n", cfg.Analysis.Clusters)
			fmt.Fprintf(w, "  Seed:              %d\n", cfg.Analysis.Seed)
			fmt.Fprintf(w, "  Max Features:      %d\n", cfg.Analysis.MaxFeatures)
			fmt.Fprintf(w, "  Sample Size:       %d\n", cfg.Analysis.SampleSize)
			fmt.Fprintf(w, "  Plot Path:         %q\n", cfg.Analysis.PlotPath)
			fmt.Fprintf(w, "\nMetrics:\n")
			fmt.Fprintf(w, "  Enabled:           %v\n", cfg.Metrics.Enabled)
			fmt.Fprintf(w, "  Port:              %d\n", cfg.Metrics.Port)
			return nil
		},
	}
}

// setupLogger creates a structured logger. Text output goes through tint.
func setupLogger(w io.Writer, cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}

// applyCLIOverrides applies flags the user actually set.
func applyCLIOverrides(cmd *cobra.Command, f *flags, cfg *config.Config) {
	changed := cmd.Flags().Changed

	if f.verbose {
		cfg.Logging.Level = "debug"
	}
	if changed("pages") {
		cfg.Scrape.MaxPages = f.pages
	}
	if changed("headless") {
		cfg.Browser.Headless = f.headless
	}
	if changed("fetcher") {
		cfg.Fetcher.Type = strings.ToLower(f.fetcherType)
	}
	if changed("plot") {
		cfg.Analysis.PlotPath = f.plotPath
	}
	if changed("clusters") {
		cfg.Analysis.Clusters = f.clusters
	}
	if changed("seed") {
		cfg.Analysis.Seed = f.seed
	}
	if changed("base-url") {
		cfg.Site.BaseURL = f.baseURL
	}
	if f.noEscape {
		cfg.Fetcher.EscapeTerm = false
	}
}
