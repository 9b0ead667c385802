// Package paging computes page windows for catalog listings
package paging

import (
	perr "comicvault/internal/platform/errors"
)

// DefaultWindow is how many page links a window spans
const DefaultWindow = 8

// Window describes one page of a result set and the page links around it
type Window struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
	StartPage  int `json:"startPage"`
	EndPage    int `json:"endPage"`
}

// Compute builds the window for page over total items. A page past the last
// one (or below 1) is ErrorCodeOutOfRange; page 1 of an empty set is valid
func Compute(total, page, perPage, window int) (Window, error) {
	if perPage < 1 {
		return Window{}, perr.InvalidArgf("paging: perPage must be positive, got %d", perPage)
	}
	if window < 1 {
		window = DefaultWindow
	}
	if total < 0 {
		total = 0
	}
	totalPages := (total + perPage - 1) / perPage
	if page < 1 || (page > totalPages && !(page == 1 && total == 0)) {
		return Window{}, perr.OutOfRangef("paging: page %d out of range (%d pages)", page, totalPages)
	}

	start := max(1, page-window/3)
	end := min(totalPages, start+window-1)
	return Window{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
		StartPage:  start,
		EndPage:    end,
	}, nil
}

// Offset is the index of the first item on the page
func (w Window) Offset() int { return (w.Page - 1) * w.PerPage }

// Bounds clamps the page to a slice of length n, returning [lo, hi)
func (w Window) Bounds(n int) (lo, hi int) {
	lo = min(w.Offset(), n)
	hi = min(lo+w.PerPage, n)
	return lo, hi
}

// Slice returns the page's portion of items
func Slice[T any](items []T, w Window) []T {
	lo, hi := w.Bounds(len(items))
	return items[lo:hi]
}
