package parser

import (
	"github.com/IshaanNene/partscout/internal/types"
)

// Parser extracts products from a rendered listing page.
type Parser interface {
	// Extract returns the products found on the page along with skip
	// counts for cells that could not be turned into a product.
	Extract(resp *types.Response) (*Extraction, error)
}

// PageCounter decides how many result pages to visit.
type PageCounter interface {
	// PageCount returns the number of pages to scrape, always >= 1.
	PageCount(resp *types.Response) int
}

// SkipReason labels why a product cell was dropped.
type SkipReason string

const (
	SkipNoTitle   SkipReason = "no_title"
	SkipNoPrice   SkipReason = "no_price"
	SkipNoDollars SkipReason = "no_dollars"
	SkipNoCents   SkipReason = "no_cents"
	SkipBadPrice  SkipReason = "bad_price"
)

// Extraction is the outcome of parsing one listing page.
type Extraction struct {
	// Cells is the number of product containers found.
	Cells int

	// Products holds the complete records in DOM order.
	Products []types.Product

	// Skipped counts dropped cells by reason.
	Skipped map[SkipReason]int
}

// SkippedTotal returns the number of dropped cells.
func (e *Extraction) SkippedTotal() int {
	n := 0
	for _, c := range e.Skipped {
		n += c
	}
	return n
}
