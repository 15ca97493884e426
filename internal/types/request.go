package types

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Request describes one listing page to load.
type Request struct {
	// URL is the target URL to fetch.
	URL *url.URL

	// Headers are extra HTTP headers to send with the request.
	Headers http.Header

	// Page is the 1-based results page number, 0 for the discovery load.
	Page int

	// Timeout overrides the configured navigation timeout for this request.
	Timeout time.Duration
}

// NewRequest creates a new Request for rawURL.
func NewRequest(rawURL string) (*Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}

	return &Request{
		URL:     u,
		Headers: make(http.Header),
	}, nil
}

// URLString returns the string representation of the request URL.
func (r *Request) URLString() string {
	if r.URL == nil {
		return ""
	}
	return r.URL.String()
}
