package fetcher

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IshaanNene/partscout/internal/config"
	"github.com/IshaanNene/partscout/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

// --- URL Tests ---

func TestSearchURL(t *testing.T) {
	base := "https://www.newegg.com"

	assert.Equal(t, "https://www.newegg.com/p/pl?d=gpu", SearchURL(base, "/p/pl", "gpu", 0, true))
	assert.Equal(t, "https://www.newegg.com/p/pl?d=gpu&page=3", SearchURL(base, "/p/pl", "gpu", 3, true))
	assert.Equal(t, "https://www.newegg.com/p/pl?d=rtx+4070+%26+ti", SearchURL(base+"/", "p/pl", "rtx 4070 & ti", 0, true))
	assert.Equal(t, "https://www.newegg.com/p/pl?d=rtx 4070&page=1", SearchURL(base, "/p/pl", "rtx 4070", 1, false))
}

// --- Pacer Tests ---

func TestPacerDelayWithinRange(t *testing.T) {
	p := NewPacer(42)
	r := config.DelayRange{Min: 6 * time.Second, Max: 10 * time.Second}

	for i := 0; i < 200; i++ {
		d := p.Delay(r)
		require.GreaterOrEqual(t, d, r.Min)
		require.LessOrEqual(t, d, r.Max)
	}
}

func TestPacerDegenerateRange(t *testing.T) {
	p := NewPacer(1)
	assert.Equal(t, time.Second, p.Delay(config.DelayRange{Min: time.Second, Max: time.Second}))
	assert.Equal(t, time.Duration(0), p.Delay(config.DelayRange{}))
}

func TestPacerWaitHonoursContext(t *testing.T) {
	p := NewPacer(7)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Wait(ctx, config.DelayRange{Min: time.Hour, Max: 2 * time.Hour})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPacerWaitZero(t *testing.T) {
	d, err := NewPacer(3).Wait(context.Background(), config.DelayRange{})
	require.NoError(t, err)
	assert.Zero(t, d)
}

// --- Identity Tests ---

func TestNewIdentityPicksFromPool(t *testing.T) {
	pool := config.DefaultConfig().Fetcher.UserAgents
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 20; i++ {
		id := NewIdentity(rng, pool)
		assert.Contains(t, pool, id.UserAgent)
		assert.NotZero(t, id.ViewportWidth)
		assert.NotEmpty(t, id.WindowSize)
	}
}

func TestNewIdentityEmptyPool(t *testing.T) {
	id := NewIdentity(rand.New(rand.NewSource(1)), nil)
	assert.Empty(t, id.UserAgent)
}

// --- Launcher Tests ---

func TestNewLauncherFlags(t *testing.T) {
	cfg := config.DefaultConfig().Browser
	id := Identity{UserAgent: "test-agent", WindowSize: "1280,720"}

	l := newLauncher(&cfg, id)
	assert.True(t, l.Has("no-sandbox"))
	assert.True(t, l.Has("disable-dev-shm-usage"))
	assert.True(t, l.Has("disable-setuid-sandbox"))
	assert.Equal(t, "test-agent", l.Get("user-agent"))
	assert.Equal(t, "1280,720", l.Get("window-size"))
	assert.False(t, l.Has("headless"), "default session is headful")

	cfg.Headless = true
	assert.True(t, newLauncher(&cfg, id).Has("headless"))
}

// --- HTTP Fetcher Tests ---

func newMockedFetcher(t *testing.T) (*HTTPFetcher, *httpmock.MockTransport) {
	t.Helper()
	mock := httpmock.NewMockTransport()
	f, err := NewHTTPFetcher(config.DefaultConfig(), testLogger,
		WithTransport(mock),
		WithIdentity(Identity{UserAgent: "partscout-test"}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f, mock
}

func TestHTTPFetcherFetch(t *testing.T) {
	f, mock := newMockedFetcher(t)

	mock.RegisterResponder(http.MethodGet, "https://www.newegg.com/p/pl?d=gpu",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "partscout-test", req.Header.Get("User-Agent"))
			return httpmock.NewStringResponse(200, "<html><body>ok</body></html>"), nil
		})

	req, err := types.NewRequest("https://www.newegg.com/p/pl?d=gpu")
	require.NoError(t, err)

	resp, err := f.Fetch(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, string(resp.Body), "ok")
	assert.Equal(t, 1, mock.GetTotalCallCount())
}

func TestHTTPFetcherStatusError(t *testing.T) {
	f, mock := newMockedFetcher(t)
	mock.RegisterResponder(http.MethodGet, "https://www.newegg.com/p/pl?d=gpu",
		httpmock.NewStringResponder(503, "busy"))

	req, _ := types.NewRequest("https://www.newegg.com/p/pl?d=gpu")
	_, err := f.Fetch(context.Background(), req)
	require.Error(t, err)

	var fe *types.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 503, fe.StatusCode)
}

func TestHTTPFetcherDecodesEncodings(t *testing.T) {
	const page = "<html><body><div class=\"item-cell\">x</div></body></html>"

	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	_, _ = gw.Write([]byte(page))
	require.NoError(t, gw.Close())

	var br bytes.Buffer
	bw := brotli.NewWriter(&br)
	_, _ = bw.Write([]byte(page))
	require.NoError(t, bw.Close())

	tests := []struct {
		encoding string
		body     []byte
	}{
		{"gzip", gz.Bytes()},
		{"br", br.Bytes()},
		{"", []byte(page)},
	}

	for _, tt := range tests {
		t.Run("encoding="+tt.encoding, func(t *testing.T) {
			f, mock := newMockedFetcher(t)
			mock.RegisterResponder(http.MethodGet, "https://example.com/p/pl?d=ssd",
				func(req *http.Request) (*http.Response, error) {
					resp := httpmock.NewBytesResponse(200, tt.body)
					if tt.encoding != "" {
						resp.Header.Set("Content-Encoding", tt.encoding)
					}
					return resp, nil
				})

			req, _ := types.NewRequest("https://example.com/p/pl?d=ssd")
			resp, err := f.Fetch(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, page, string(resp.Body))
		})
	}
}

func TestHTTPFetcherClosedSession(t *testing.T) {
	f, _ := newMockedFetcher(t)
	require.NoError(t, f.Close())
	require.NoError(t, f.Close(), "second close is a no-op")

	req, _ := types.NewRequest("https://example.com")
	_, err := f.Fetch(context.Background(), req)
	assert.ErrorIs(t, err, types.ErrSessionClosed)
}

func TestNewUnknownFetcher(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Fetcher.Type = "carrier-pigeon"
	_, err := New(cfg, testLogger)
	assert.Error(t, err)
}
