package fetcher

import (
	"net/url"
	"strconv"
	"strings"
)

// SearchURL builds the listing URL for term. page 0 is the unpaginated
// discovery load; page n >= 1 appends &page=n.
//
// With escape=false the term is interpolated verbatim, which breaks on
// spaces, '&' and '#'.
func SearchURL(baseURL, searchPath, term string, page int, escape bool) string {
	if escape {
		term = url.QueryEscape(term)
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(baseURL, "/"))
	if searchPath != "" && !strings.HasPrefix(searchPath, "/") {
		b.WriteByte('/')
	}
	b.WriteString(searchPath)
	b.WriteString("?d=")
	b.WriteString(term)
	if page > 0 {
		b.WriteString("&page=")
		b.WriteString(strconv.Itoa(page))
	}
	return b.String()
}
