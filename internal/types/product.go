package types

import (
	"fmt"
)

// Product is one listed item recovered from a results page.
type Product struct {
	// Title is the listing title as shown on the page.
	Title string `json:"title"`

	// Price is the current price in dollars.
	Price float64 `json:"price"`

	// Page is the results page the product was found on.
	Page int `json:"page,omitempty"`
}

// String formats the product the way the console progress shows it.
func (p Product) String() string {
	return fmt.Sprintf("%s — $%.2f", p.Title, p.Price)
}

// Collection is the ordered result of a scrape run.
// Insertion order is scrape order; duplicates are kept.
type Collection struct {
	products []Product
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{}
}

// Add appends a product.
func (c *Collection) Add(p Product) {
	c.products = append(c.products, p)
}

// Len returns the number of products.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.products)
}

// Empty reports whether nothing was collected.
func (c *Collection) Empty() bool {
	return c.Len() == 0
}

// Products returns a copy of the products in insertion order.
func (c *Collection) Products() []Product {
	if c == nil {
		return nil
	}
	return append([]Product(nil), c.products...)
}

// Titles returns the product titles in insertion order.
func (c *Collection) Titles() []string {
	if c == nil {
		return nil
	}
	titles := make([]string, len(c.products))
	for i, p := range c.products {
		titles[i] = p.Title
	}
	return titles
}

// Prices returns the product prices in insertion order.
func (c *Collection) Prices() []float64 {
	if c == nil {
		return nil
	}
	prices := make([]float64, len(c.products))
	for i, p := range c.products {
		prices[i] = p.Price
	}
	return prices
}
