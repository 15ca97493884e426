package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/IshaanNene/partscout/internal/types"
)

// ParsePrice joins the dollar and cents fragments of a listing price.
// Thousands separators, currency symbols and whitespace are dropped; the
// cents fragment may carry its own leading '.'. "1,299" + "99" is 1299.99.
func ParsePrice(dollars, cents string) (float64, error) {
	d := cleanAmount(dollars)
	c := strings.TrimPrefix(cleanAmount(cents), ".")

	s := d
	if c != "" {
		s = d + "." + c
	}
	if s == "" {
		return 0, fmt.Errorf("%w: empty", types.ErrBadPrice)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", types.ErrBadPrice, dollars+cents)
	}
	return v, nil
}

// cleanAmount removes ',' separators, currency symbols and spaces.
func cleanAmount(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ',' || unicode.IsSpace(r) || unicode.Is(unicode.Sc, r) {
			return -1
		}
		return r
	}, s)
}
