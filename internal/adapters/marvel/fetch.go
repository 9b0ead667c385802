package marvel

import (
	"context"
	"encoding/json"
	"time"
)

// Pager fetches one page of a resource
type Pager interface {
	FetchPage(ctx context.Context, resource string, limit, offset int, modifiedSince *time.Time) ([]json.RawMessage, error)
}

// Each walks resource page by page, calling fn with every page, and stops
// after the first page shorter than limit. An error from the pager or fn ends the walk
func Each(ctx context.Context, p Pager, resource string, limit int, modifiedSince *time.Time, fn func(offset int, page []json.RawMessage) error) error {
	limit = max(1, min(limit, MaxLimit))
	for offset := 0; ; offset += limit {
		page, err := p.FetchPage(ctx, resource, limit, offset, modifiedSince)
		if err != nil {
			return err
		}
		if len(page) > 0 {
			if err := fn(offset, page); err != nil {
				return err
			}
		}
		if len(page) < limit {
			return nil
		}
	}
}

// FetchAll collects every record of resource in memory
func FetchAll(ctx context.Context, p Pager, resource string, limit int, modifiedSince *time.Time) ([]json.RawMessage, error) {
	var out []json.RawMessage
	err := Each(ctx, p, resource, limit, modifiedSince, func(_ int, page []json.RawMessage) error {
		out = append(out, page...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
