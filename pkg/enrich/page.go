package enrich

import "errors"

// ErrInvalidItemsPerPage rejects a negative page size before any upstream
// item is pulled. Zero means "no limit".
var ErrInvalidItemsPerPage = errors.New("items per page must not be negative")

// PageState describes the pagination outcome of one page request. It is
// computed fresh per request and never persisted.
type PageState struct {
	// Page is the effective 1-based page number (after clamping).
	Page int

	// IsEmpty reports whether the materialized page contains no items.
	IsEmpty bool

	// HasPrevious is true for any page past the first.
	HasPrevious bool

	// HasNext is true iff at least one item exists beyond this page.
	HasNext bool

	// PageCount is the total number of pages, when known: either derived
	// from a caller-supplied item count or fixed once the last page is
	// reached. Zero means unknown.
	PageCount int

	// TotalSeen is the number of upstream items observed while serving
	// this request: skipped items, the materialized page, and the
	// look-ahead item. A lower bound on the listing size, not a total.
	TotalSeen int
}

// PageCountFor returns the number of pages needed for itemCount items at
// itemsPerPage per page. Never less than 1: an empty listing still has one
// (empty) page.
func PageCountFor(itemCount, itemsPerPage int) int {
	if itemsPerPage <= 0 {
		return 1
	}
	count := (itemCount + itemsPerPage - 1) / itemsPerPage
	if count < 1 {
		return 1
	}
	return count
}
