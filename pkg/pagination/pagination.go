package pagination

import (
	"fmt"
	"strconv"
)

// Page describes one window over an ordered result set. A page always exists:
// an empty result set yields a single empty page.
type Page struct {
	Number     int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// New builds a Page for the requested page number, clamping out-of-range
// requests: numbers below 1 resolve to the first page, numbers past the end
// resolve to the last page.
func New(totalItems int64, number, perPage int) Page {
	if perPage < 1 {
		perPage = 1
	}

	totalPages := int((totalItems + int64(perPage) - 1) / int64(perPage))
	if totalPages < 1 {
		totalPages = 1
	}

	if number < 1 {
		number = 1
	}
	if number > totalPages {
		number = totalPages
	}

	return Page{
		Number:     number,
		PerPage:    perPage,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}
}

// ParsePageNumber maps the raw "page" query parameter to a 1-based page
// number. Missing or unparsable input defaults to 1.
func ParsePageNumber(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// HasPrevious reports whether a page precedes this one.
func (p Page) HasPrevious() bool {
	return p.Number > 1
}

// HasNext reports whether a page follows this one.
func (p Page) HasNext() bool {
	return p.Number < p.TotalPages
}

// PreviousPageNumber returns the number of the preceding page.
func (p Page) PreviousPageNumber() int {
	return p.Number - 1
}

// NextPageNumber returns the number of the following page.
func (p Page) NextPageNumber() int {
	return p.Number + 1
}

// Offset returns the zero-based index of the first item on this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

// PreviousURL returns the query fragment for the previous page, or the empty
// string when there is none.
func PreviousURL(p Page) string {
	if !p.HasPrevious() {
		return ""
	}
	return fmt.Sprintf("?page=%d", p.PreviousPageNumber())
}

// NextURL returns the query fragment for the next page, or the empty string
// when there is none.
func NextURL(p Page) string {
	if !p.HasNext() {
		return ""
	}
	return fmt.Sprintf("?page=%d", p.NextPageNumber())
}
