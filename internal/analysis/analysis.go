package analysis

import (
	"errors"
	"log/slog"

	"github.com/IshaanNene/partscout/internal/config"
	"github.com/IshaanNene/partscout/internal/types"
)

// ErrNoData is returned when there is nothing to analyse.
var ErrNoData = errors.New("no product data collected")

// ClusterStats describes the prices and sampled titles of one title cluster.
type ClusterStats struct {
	Label   int
	Summary Summary
	Samples []string
}

// Result is the outcome of analysing one collection.
type Result struct {
	Overall  Summary
	Labels   []int
	Clusters []ClusterStats
	Terms    int

	// PlotPath is where the scatter plot was written, empty if skipped.
	PlotPath string
}

// Analyzer runs statistics, plotting and title clustering over a collection.
type Analyzer struct {
	cfg    config.AnalysisConfig
	logger *slog.Logger
}

// New creates an Analyzer.
func New(cfg config.AnalysisConfig, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		cfg:    cfg,
		logger: logger.With("component", "analysis"),
	}
}

// Analyze returns ErrNoData for an empty collection without plotting or
// clustering anything.
func (a *Analyzer) Analyze(c *types.Collection) (*Result, error) {
	if c.Empty() {
		return nil, ErrNoData
	}

	prices := c.Prices()
	titles := c.Titles()
	res := &Result{Overall: Describe(prices)}

	if a.cfg.PlotPath != "" {
		if err := Scatter(prices, a.cfg.PlotPath); err != nil {
			a.logger.Warn("scatter plot failed", "path", a.cfg.PlotPath, "error", err)
		} else {
			res.PlotPath = a.cfg.PlotPath
		}
	}

	vec := NewVectorizer(a.cfg.MaxFeatures)
	rows := vec.FitTransform(titles)
	res.Terms = len(vec.Terms())

	km := &KMeans{
		K:         a.cfg.Clusters,
		Seed:      a.cfg.Seed,
		NInit:     a.cfg.NInit,
		MaxIter:   a.cfg.MaxIter,
		Tolerance: a.cfg.Tolerance,
	}
	clustering, err := km.Fit(rows)
	if err != nil {
		return nil, err
	}
	res.Labels = clustering.Labels

	a.logger.Debug("titles clustered",
		"k", clustering.K,
		"terms", res.Terms,
		"inertia", clustering.Inertia,
		"iterations", clustering.Iters,
	)

	res.Clusters = Summarize(prices, titles, clustering.Labels, clustering.K, a.cfg.SampleSize, a.cfg.Seed)
	return res, nil
}

// Summarize groups prices and titles by label. Per-cluster counts always
// add up to len(labels).
func Summarize(prices []float64, titles []string, labels []int, k, sampleSize int, seed int64) []ClusterStats {
	groupPrices := make([][]float64, k)
	groupTitles := make([][]string, k)
	for i, label := range labels {
		groupPrices[label] = append(groupPrices[label], prices[i])
		groupTitles[label] = append(groupTitles[label], titles[i])
	}

	out := make([]ClusterStats, k)
	for c := 0; c < k; c++ {
		out[c] = ClusterStats{
			Label:   c,
			Summary: Describe(groupPrices[c]),
			Samples: Sample(groupTitles[c], sampleSize, seed),
		}
	}
	return out
}
