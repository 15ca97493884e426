package fetcher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IshaanNene/partscout/internal/config"
	"github.com/IshaanNene/partscout/internal/types"
)

// Fetcher loads listing pages. A Fetcher is a single session: it is opened
// by its constructor and released by Close.
type Fetcher interface {
	// Fetch retrieves the rendered content at the given request's URL.
	Fetch(ctx context.Context, req *types.Request) (*types.Response, error)

	// Close releases any resources held by the fetcher. Safe to call twice.
	Close() error

	// Type returns the fetcher type identifier.
	Type() string
}

// New opens the fetcher selected by cfg.Fetcher.Type.
func New(cfg *config.Config, logger *slog.Logger) (Fetcher, error) {
	switch cfg.Fetcher.Type {
	case "browser":
		return NewBrowserFetcher(cfg, logger)
	case "http":
		return NewHTTPFetcher(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown fetcher type %q", cfg.Fetcher.Type)
	}
}
