package observability

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles Prometheus collectors for a scrape run.
// All helpers are nil-safe so callers may run without metrics.
type Metrics struct {
	Registry        *prometheus.Registry
	PagesFetched    prometheus.Counter
	FetchErrors     prometheus.Counter
	FetchDuration   prometheus.Histogram
	ProductsParsed  prometheus.Counter
	ProductsSkipped *prometheus.CounterVec

	logger *slog.Logger
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics(logger *slog.Logger) *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		PagesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "partscout_pages_fetched_total",
			Help: "Listing pages loaded successfully.",
		}),
		FetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "partscout_fetch_errors_total",
			Help: "Listing page loads that failed.",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "partscout_fetch_duration_seconds",
			Help:    "Time spent loading and rendering a listing page.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40},
		}),
		ProductsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "partscout_products_parsed_total",
			Help: "Products accepted into the collection.",
		}),
		ProductsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "partscout_products_skipped_total",
			Help: "Product cells dropped, by reason.",
		}, []string{"reason"}),
		logger: logger.With("component", "metrics"),
	}

	m.Registry.MustRegister(m.PagesFetched, m.FetchErrors, m.FetchDuration, m.ProductsParsed, m.ProductsSkipped)
	return m
}

// ObserveFetch records one page load.
func (m *Metrics) ObserveFetch(d time.Duration, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.FetchErrors.Inc()
		return
	}
	m.PagesFetched.Inc()
	m.FetchDuration.Observe(d.Seconds())
}

// IncParsed counts an accepted product.
func (m *Metrics) IncParsed() {
	if m == nil {
		return
	}
	m.ProductsParsed.Inc()
}

// AddSkipped counts n dropped cells for reason.
func (m *Metrics) AddSkipped(reason string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ProductsSkipped.WithLabelValues(reason).Add(float64(n))
}

// Snapshot sums every counter family by metric name.
func (m *Metrics) Snapshot() map[string]float64 {
	out := make(map[string]float64)
	if m == nil {
		return out
	}
	families, err := m.Registry.Gather()
	if err != nil {
		m.logger.Warn("gather metrics", "error", err)
		return out
	}
	for _, mf := range families {
		var sum float64
		for _, metric := range mf.GetMetric() {
			switch {
			case metric.GetCounter() != nil:
				sum += metric.GetCounter().GetValue()
			case metric.GetHistogram() != nil:
				sum += float64(metric.GetHistogram().GetSampleCount())
			}
		}
		out[mf.GetName()] = sum
	}
	return out
}

// StartServer exposes /metrics and /health in the background.
func (m *Metrics) StartServer(port int, path string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	m.logger.Info("metrics server starting", "addr", srv.Addr, "path", path)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("metrics server error", "error", err)
		}
	}()

	return srv
}
