package parser

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/partscout/internal/config"
	"github.com/IshaanNene/partscout/internal/types"
)

// ListingParser extracts products from search result cells using CSS selectors.
type ListingParser struct {
	sel    config.Selectors
	logger *slog.Logger
}

// NewListingParser creates a parser for the given selectors.
func NewListingParser(sel config.Selectors, logger *slog.Logger) *ListingParser {
	return &ListingParser{
		sel:    sel,
		logger: logger.With("component", "listing_parser"),
	}
}

// Extract implements Parser. A cell needs a title, a price block, and both
// dollar and cents fragments inside it; anything less is skipped. A blank
// page has no cells.
func (p *ListingParser) Extract(resp *types.Response) (*Extraction, error) {
	ex := &Extraction{Skipped: make(map[SkipReason]int)}

	doc, err := resp.Document()
	if errors.Is(err, types.ErrEmptyResponse) {
		p.logger.Debug("empty listing page", "url", resp.Request.URLString(), "page", resp.Request.Page)
		return ex, nil
	}
	if err != nil {
		return nil, &types.ParseError{
			URL:      resp.Request.URLString(),
			Selector: p.sel.Item,
			Err:      err,
		}
	}

	cells := doc.Find(p.sel.Item)
	ex.Cells = cells.Length()

	cells.Each(func(i int, cell *goquery.Selection) {
		product, reason, ok := p.extractCell(cell)
		if !ok {
			ex.Skipped[reason]++
			p.logger.Debug("cell skipped", "index", i, "reason", reason)
			return
		}
		product.Page = resp.Request.Page
		ex.Products = append(ex.Products, product)
	})

	return ex, nil
}

func (p *ListingParser) extractCell(cell *goquery.Selection) (types.Product, SkipReason, bool) {
	title := cell.Find(p.sel.Title).First()
	if title.Length() == 0 {
		return types.Product{}, SkipNoTitle, false
	}
	price := cell.Find(p.sel.Price).First()
	if price.Length() == 0 {
		return types.Product{}, SkipNoPrice, false
	}
	dollars := price.Find(p.sel.Dollars).First()
	if dollars.Length() == 0 {
		return types.Product{}, SkipNoDollars, false
	}
	cents := price.Find(p.sel.Cents).First()
	if cents.Length() == 0 {
		return types.Product{}, SkipNoCents, false
	}

	value, err := ParsePrice(dollars.Text(), cents.Text())
	if err != nil {
		return types.Product{}, SkipBadPrice, false
	}

	return types.Product{
		Title: strings.TrimSpace(title.Text()),
		Price: value,
	}, "", true
}
