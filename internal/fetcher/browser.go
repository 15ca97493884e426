package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/IshaanNene/partscout/internal/config"
	"github.com/IshaanNene/partscout/internal/types"
)

// BrowserFetcher implements Fetcher with a Chromium session driven by Rod.
// One tab is opened at construction and reused for every navigation.
type BrowserFetcher struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	cfg      *config.Config
	identity Identity
	logger   *slog.Logger

	closeOnce sync.Once
	closeErr  error
	closed    bool
	mu        sync.Mutex
}

// NewBrowserFetcher launches Chromium and opens the session tab.
func NewBrowserFetcher(cfg *config.Config, logger *slog.Logger) (*BrowserFetcher, error) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	bf := &BrowserFetcher{
		cfg:      cfg,
		identity: NewIdentity(rng, cfg.Fetcher.UserAgents),
		logger:   logger.With("component", "browser_fetcher"),
	}

	bf.launcher = newLauncher(&cfg.Browser, bf.identity)
	controlURL, err := bf.launcher.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		bf.launcher.Kill()
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	bf.browser = browser

	page, err := bf.openPage()
	if err != nil {
		_ = bf.Close()
		return nil, fmt.Errorf("open page: %w", err)
	}
	bf.page = page

	bf.logger.Info("browser session ready",
		"headless", cfg.Browser.Headless,
		"stealth", cfg.Browser.Stealth,
		"user_agent", bf.identity.UserAgent,
		"viewport", bf.identity.WindowSize,
	)

	return bf, nil
}

// newLauncher builds the Chromium launcher with sandboxing disabled.
func newLauncher(cfg *config.BrowserConfig, id Identity) *launcher.Launcher {
	l := launcher.New().
		Headless(cfg.Headless).
		Set("no-sandbox").
		Set("disable-setuid-sandbox").
		Set("disable-dev-shm-usage").
		Set("disable-blink-features", "AutomationControlled")

	if id.UserAgent != "" {
		l = l.Set("user-agent", id.UserAgent)
	}
	if id.WindowSize != "" {
		l = l.Set("window-size", id.WindowSize)
	}
	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	}
	if cfg.UserDataDir != "" {
		l = l.UserDataDir(cfg.UserDataDir)
	}
	return l
}

// openPage creates the session tab and applies the identity to it.
func (bf *BrowserFetcher) openPage() (*rod.Page, error) {
	var (
		page *rod.Page
		err  error
	)
	if bf.cfg.Browser.Stealth {
		page, err = stealth.Page(bf.browser)
	} else {
		page, err = bf.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	}
	if err != nil {
		return nil, err
	}

	if bf.identity.UserAgent != "" {
		err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent: bf.identity.UserAgent,
		})
		if err != nil {
			bf.logger.Warn("failed to set user agent", "error", err)
		}
	}

	err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             bf.identity.ViewportWidth,
		Height:            bf.identity.ViewportHeight,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		bf.logger.Warn("failed to set viewport", "error", err)
	}

	return page, nil
}

// Fetch navigates the session tab to the request URL and returns the rendered HTML.
func (bf *BrowserFetcher) Fetch(ctx context.Context, req *types.Request) (*types.Response, error) {
	bf.mu.Lock()
	defer bf.mu.Unlock()

	if bf.closed {
		return nil, &types.FetchError{URL: req.URLString(), Err: types.ErrSessionClosed}
	}

	start := time.Now()

	timeout := bf.cfg.Scrape.RequestTimeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}
	page := bf.page.Context(ctx).Timeout(timeout)
	defer page.CancelTimeout()

	if err := page.Navigate(req.URLString()); err != nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: err}
	}
	if err := page.WaitLoad(); err != nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: fmt.Errorf("wait load: %w", err)}
	}

	// Listing cells are rendered client side; a stability timeout still leaves usable HTML.
	if err := page.WaitStable(bf.cfg.Browser.StableWait); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, &types.FetchError{URL: req.URLString(), Err: err}
		}
		bf.logger.Warn("page stability timeout, continuing", "url", req.URLString(), "error", err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: err}
	}

	finalURL := req.URLString()
	if info, err := page.Info(); err == nil && info != nil {
		finalURL = info.URL
	}

	duration := time.Since(start)
	bf.logger.Debug("browser fetch complete",
		"url", req.URLString(),
		"final_url", finalURL,
		"size", len(html),
		"duration", duration,
	)

	return types.NewBrowserResponse(req, []byte(html), finalURL, duration), nil
}

// Close shuts the browser down and waits for the process to exit.
func (bf *BrowserFetcher) Close() error {
	bf.closeOnce.Do(func() {
		bf.mu.Lock()
		bf.closed = true
		bf.mu.Unlock()

		if bf.browser != nil {
			bf.closeErr = bf.browser.Close()
		}
		// Cleanup removes the profile dir, so keep a user supplied one.
		if bf.launcher != nil && bf.cfg.Browser.UserDataDir == "" {
			bf.launcher.Cleanup()
		}
		bf.logger.Debug("browser session closed")
	})
	return bf.closeErr
}

// Type returns the fetcher type identifier.
func (bf *BrowserFetcher) Type() string {
	return "browser"
}
