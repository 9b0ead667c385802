package domain

import (
	"context"
	"encoding/json"
	"time"

	catdom "comicvault/internal/services/catalog/domain"
)

// ImporterPort is the public port other modules call
type ImporterPort interface {
	Import(ctx context.Context, t catdom.EntityType, opts ImportOptions) (Report, error)
	ImportAll(ctx context.Context, types []catdom.EntityType, opts ImportOptions) (map[catdom.EntityType]Report, error)
}

// Fetcher returns one upstream page of raw records
type Fetcher interface {
	FetchPage(ctx context.Context, resource string, limit, offset int, modifiedSince *time.Time) ([]json.RawMessage, error)
}

// Normalizer decodes and maps a raw page for t
type Normalizer interface {
	Page(t catdom.EntityType, raws []json.RawMessage) (Batch, error)
}

// StorageRepo writes normalized records. Each insert skips external ids
// already present and reports how many rows were new
type StorageRepo interface {
	InsertCharacters(ctx context.Context, cs []catdom.Character) (inserted, skipped int, err error)
	InsertComics(ctx context.Context, cs []catdom.Comic) (inserted, skipped int, err error)
	InsertCreators(ctx context.Context, cs []catdom.Creator) (inserted, skipped int, err error)
	InsertSeries(ctx context.Context, ss []catdom.Serie) (inserted, skipped int, err error)
}
