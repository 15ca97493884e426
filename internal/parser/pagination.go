package parser

import (
	"bytes"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/IshaanNene/partscout/internal/types"
)

// pageOfRe matches "1/12", "1 / 12" and "Page 1 of 12".
var pageOfRe = regexp.MustCompile(`(?i)(\d+)\s*(?:/|of)\s*(\d+)`)

// PaginationResolver reads the "current/total" indicator of the first
// results page via XPath and clamps the total to a ceiling.
type PaginationResolver struct {
	xpath   string
	ceiling int
	logger  *slog.Logger
}

// NewPaginationResolver creates a resolver for the indicator at xpath.
func NewPaginationResolver(xpath string, ceiling int, logger *slog.Logger) *PaginationResolver {
	if ceiling < 1 {
		ceiling = 1
	}
	return &PaginationResolver{
		xpath:   xpath,
		ceiling: ceiling,
		logger:  logger.With("component", "pagination"),
	}
}

// PageCount implements PageCounter. A missing or unreadable indicator means
// a single page of results.
func (r *PaginationResolver) PageCount(resp *types.Response) int {
	total, ok := r.TotalPages(resp.Body)
	if !ok {
		r.logger.Debug("no pagination indicator, assuming one page")
		return 1
	}
	return min(total, r.ceiling)
}

// TotalPages returns the unclamped total from the indicator.
func (r *PaginationResolver) TotalPages(body []byte) (int, bool) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return 0, false
	}

	node, err := htmlquery.Query(doc, r.xpath)
	if err != nil {
		r.logger.Warn("invalid pagination xpath", "xpath", r.xpath, "error", err)
		return 0, false
	}
	if node == nil {
		return 0, false
	}

	return ParseTotalPages(htmlquery.InnerText(node))
}

// ParseTotalPages extracts the total from "current/total" text.
func ParseTotalPages(text string) (int, bool) {
	text = strings.TrimSpace(text)
	m := pageOfRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	total, err := strconv.Atoi(m[2])
	if err != nil || total < 1 {
		return 0, false
	}
	return total, true
}
