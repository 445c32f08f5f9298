package util

import (
	"net/url"
	"strconv"
)

const MaxPageSize = 100

// Page is a 1-based page request.
type Page struct {
	Number int
	Limit  int
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// ParsePage reads the page and limit query values, falling back to page 1 and
// defaultLimit on missing or invalid input.
func ParsePage(page, limit string, defaultLimit int) Page {
	p := Page{Number: 1, Limit: defaultLimit}
	if n, err := strconv.Atoi(page); err == nil && n > 0 {
		p.Number = n
	}
	if n, err := strconv.Atoi(limit); err == nil && n > 0 {
		p.Limit = n
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	return p
}

// PageLinks returns the absolute next and previous URLs for a page of count
// items. A nil result means there is no such page.
func PageLinks(base *url.URL, p Page, count int64) (next, previous *string) {
	if int64(p.Number*p.Limit) < count {
		next = pageURL(base, p.Number+1)
	}
	if p.Number > 1 {
		previous = pageURL(base, p.Number-1)
	}
	return next, previous
}

func pageURL(base *url.URL, number int) *string {
	u := *base
	q := u.Query()
	if number == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(number))
	}
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}
