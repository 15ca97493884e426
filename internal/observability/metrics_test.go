package observability

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics(testLogger)

	m.ObserveFetch(2*time.Second, nil)
	m.ObserveFetch(3*time.Second, nil)
	m.ObserveFetch(0, errors.New("navigation failed"))
	m.IncParsed()
	m.IncParsed()
	m.AddSkipped("no_title", 2)
	m.AddSkipped("bad_price", 1)
	m.AddSkipped("no_cents", 0)

	snap := m.Snapshot()
	assert.Equal(t, 2.0, snap["partscout_pages_fetched_total"])
	assert.Equal(t, 1.0, snap["partscout_fetch_errors_total"])
	assert.Equal(t, 2.0, snap["partscout_fetch_duration_seconds"])
	assert.Equal(t, 2.0, snap["partscout_products_parsed_total"])
	assert.Equal(t, 3.0, snap["partscout_products_skipped_total"])
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveFetch(time.Second, nil)
		m.IncParsed()
		m.AddSkipped("no_title", 1)
	})
	assert.Empty(t, m.Snapshot())
}
