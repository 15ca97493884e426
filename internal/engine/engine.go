package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/IshaanNene/partscout/internal/config"
	"github.com/IshaanNene/partscout/internal/fetcher"
	"github.com/IshaanNene/partscout/internal/observability"
	"github.com/IshaanNene/partscout/internal/parser"
	"github.com/IshaanNene/partscout/internal/pipeline"
	"github.com/IshaanNene/partscout/internal/types"
)

// State represents the engine's current lifecycle state.
type State int32

const (
	StateIdle     State = 0
	StateRunning  State = 1
	StateFinished State = 2
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// ErrAlreadyRun is returned when Run is called on a used engine. The
// fetcher session is released at the end of a run, so engines are single use.
var ErrAlreadyRun = errors.New("engine already ran")

// Stats tracks scrape statistics for one run.
type Stats struct {
	PagesPlanned    int
	PagesScraped    atomic.Int64
	CellsSeen       atomic.Int64
	ProductsKept    atomic.Int64
	ProductsDropped atomic.Int64
	Redirects       atomic.Int64
	StartTime       time.Time
}

// Snapshot returns a copy of stats safe for reading.
func (s *Stats) Snapshot() map[string]any {
	return map[string]any{
		"pages_planned":    s.PagesPlanned,
		"pages_scraped":    s.PagesScraped.Load(),
		"cells_seen":       s.CellsSeen.Load(),
		"products_kept":    s.ProductsKept.Load(),
		"products_dropped": s.ProductsDropped.Load(),
		"redirects":        s.Redirects.Load(),
		"elapsed":          time.Since(s.StartTime).String(),
	}
}

// Engine drives one search: discovery load, page count, then each results
// page in order. Pages are visited sequentially through a single session.
type Engine struct {
	cfg      *config.Config
	logger   *slog.Logger
	fetcher  fetcher.Fetcher
	pacer    *fetcher.Pacer
	counter  parser.PageCounter
	parser   parser.Parser
	pipeline *pipeline.Pipeline
	metrics  *observability.Metrics
	out      io.Writer

	state atomic.Int32
	stats *Stats
}

// Option configures an Engine.
type Option func(*Engine)

// WithOutput redirects progress lines, stdout by default.
func WithOutput(w io.Writer) Option {
	return func(e *Engine) { e.out = w }
}

// WithMetrics records fetch and parse counters on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithPacer replaces the default clock-seeded pacer.
func WithPacer(p *fetcher.Pacer) Option {
	return func(e *Engine) { e.pacer = p }
}

// WithParser replaces the selector-driven listing parser.
func WithParser(p parser.Parser) Option {
	return func(e *Engine) { e.parser = p }
}

// WithPageCounter replaces the pagination resolver.
func WithPageCounter(c parser.PageCounter) Option {
	return func(e *Engine) { e.counter = c }
}

// WithPipeline replaces the default record pipeline.
func WithPipeline(p *pipeline.Pipeline) Option {
	return func(e *Engine) { e.pipeline = p }
}

// New creates an Engine that takes ownership of f; Run closes it.
func New(cfg *config.Config, f fetcher.Fetcher, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		cfg:     cfg,
		logger:  logger.With("component", "engine"),
		fetcher: f,
		out:     os.Stdout,
		stats:   &Stats{},
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.pacer == nil {
		e.pacer = fetcher.NewPacer(0)
	}
	if e.counter == nil {
		e.counter = parser.NewPaginationResolver(cfg.Parser.Selectors.Pagination, cfg.Scrape.MaxPages, logger)
	}
	if e.parser == nil {
		e.parser = parser.NewListingParser(cfg.Parser.Selectors, logger)
	}
	if e.pipeline == nil {
		e.pipeline = pipeline.Default(logger)
	}
	return e
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// Stats returns the run statistics.
func (e *Engine) Stats() *Stats {
	return e.stats
}

// Run scrapes up to the configured number of result pages for term.
// The returned collection holds every product accepted before an error,
// so it is never nil. The fetcher is closed on every path.
func (e *Engine) Run(ctx context.Context, term string) (*types.Collection, error) {
	collection := types.NewCollection()

	if !e.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return collection, ErrAlreadyRun
	}
	defer e.state.Store(int32(StateFinished))
	defer func() {
		if err := e.fetcher.Close(); err != nil {
			e.logger.Warn("close fetcher", "error", err)
		}
	}()

	if term == "" {
		return collection, types.ErrNoTerm
	}

	e.stats.StartTime = time.Now()
	e.logger.Info("scrape starting",
		"term", term,
		"fetcher", e.fetcher.Type(),
		"max_pages", e.cfg.Scrape.MaxPages,
	)

	first, err := e.load(ctx, term, 0, e.cfg.Scrape.FirstPageDelay)
	if err != nil {
		return collection, err
	}

	pages := e.counter.PageCount(first)
	e.stats.PagesPlanned = pages
	fmt.Fprintf(e.out, "📄 Scraping up to %d pages for '%s'\n", pages, term)

	for page := 1; page <= pages; page++ {
		fmt.Fprintf(e.out, "\n🔍 Scraping page %d\n", page)

		resp, err := e.load(ctx, term, page, e.cfg.Scrape.PageDelay)
		if err != nil {
			return collection, err
		}

		if err := e.collect(resp, collection); err != nil {
			return collection, err
		}
		e.stats.PagesScraped.Add(1)
	}

	if collection.Empty() {
		fmt.Fprintln(e.out, "No valid product price data collected.")
	} else {
		fmt.Fprintf(e.out, "\nCollected %d products\n", collection.Len())
	}

	e.logger.Info("scrape finished",
		"term", term,
		"pages", e.stats.PagesScraped.Load(),
		"products", collection.Len(),
		"dropped", e.stats.ProductsDropped.Load(),
		"elapsed", time.Since(e.stats.StartTime),
	)
	return collection, nil
}

// load navigates to a results page and then waits for rendering to settle.
func (e *Engine) load(ctx context.Context, term string, page int, delay config.DelayRange) (*types.Response, error) {
	rawURL := fetcher.SearchURL(e.cfg.Site.BaseURL, e.cfg.Site.SearchPath, term, page, e.cfg.Fetcher.EscapeTerm)
	req, err := types.NewRequest(rawURL)
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err}
	}
	req.Page = page
	req.Timeout = e.cfg.Scrape.RequestTimeout

	start := time.Now()
	resp, err := e.fetcher.Fetch(ctx, req)
	if err != nil {
		e.metrics.ObserveFetch(time.Since(start), err)
		return nil, err
	}
	e.metrics.ObserveFetch(resp.FetchDuration, nil)

	// search terms matching a category are sent to a landing page
	if resp.FinalURL != "" && resp.FinalURL != req.URLString() {
		e.stats.Redirects.Add(1)
		e.logger.Warn("page redirected", "page", page, "url", req.URLString(), "final_url", resp.FinalURL)
	}

	e.logger.Debug("page loaded",
		"page", page,
		"url", req.URLString(),
		"size", len(resp.Body),
		"duration", resp.FetchDuration,
	)

	if _, err := e.pacer.Wait(ctx, delay); err != nil {
		return nil, err
	}
	return resp, nil
}

// collect extracts, cleans, prints and appends the products on one page.
func (e *Engine) collect(resp *types.Response, collection *types.Collection) error {
	ex, err := e.parser.Extract(resp)
	if err != nil {
		return err
	}

	e.stats.CellsSeen.Add(int64(ex.Cells))
	e.stats.ProductsDropped.Add(int64(ex.SkippedTotal()))
	for reason, n := range ex.Skipped {
		e.metrics.AddSkipped(string(reason), n)
	}

	fmt.Fprintf(e.out, "🧾 Found %d products\n", ex.Cells)

	for i := range ex.Products {
		product, err := e.pipeline.Process(&ex.Products[i])
		if err != nil {
			e.logger.Warn("pipeline error", "error", err)
			e.stats.ProductsDropped.Add(1)
			e.metrics.AddSkipped("pipeline_error", 1)
			continue
		}
		if product == nil {
			e.stats.ProductsDropped.Add(1)
			e.metrics.AddSkipped("pipeline", 1)
			continue
		}

		collection.Add(*product)
		e.stats.ProductsKept.Add(1)
		e.metrics.IncParsed()
		fmt.Fprintf(e.out, "💻 %s — 💰 $%.2f\n", product.Title, product.Price)
	}
	return nil
}
