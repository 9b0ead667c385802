// Package store opens and guards the storage backends the catalog uses:
// postgres (source of truth), clickhouse (run ledger), redis (query cache)
// and elasticsearch (search projection)
package store

import (
	"context"
	"errors"
	"fmt"

	"comicvault/internal/platform/cache"
	"comicvault/internal/platform/logger"
	"comicvault/internal/platform/search"
)

// Store is the facade for optional backends; disabled backends stay nil
type Store struct {
	Log logger.Logger

	// PG is the relational seam, nil when disabled
	PG TxRunner

	// CH is the columnar seam, nil when disabled
	CH Clickhouse

	// Cache is the redis-backed query cache, nil when disabled
	Cache *cache.Redis

	// Search is the elasticsearch client, nil when disabled
	Search *search.Client
}

// Row exposes the minimal scan contract a single row needs
type Row interface {
	Scan(dest ...any) error
}

// Rows exposes iteration and scan over a result set
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
	Columns() []string
}

// CommandTag reports the outcome of a write
type CommandTag interface {
	String() string
	RowsAffected() int64
}

// RowQuerier is the read and write surface repos use for sql
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner runs fn inside a transaction; fn's error rolls back
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Clickhouse is the columnar seam; Insert takes rows as [][]any in column order
type Clickhouse interface {
	Exec(ctx context.Context, sql string, args ...any) error
	Insert(ctx context.Context, table string, data any) error
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	Close() error
}

// Pinger is any seam that can report readiness
type Pinger interface{ Ping(context.Context) error }

// Open constructs a Store with the enabled backends
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}
	s.Log = s.Log.With().Logger()

	fail := func(err error) (*Store, error) {
		_ = s.Close(ctx)
		return nil, err
	}

	if cfg.PG.Enabled {
		p, err := openPG(ctx, cfg, s)
		if err != nil {
			return fail(err)
		}
		s.PG = p
	}
	if cfg.CH.Enabled {
		c, err := openCH(ctx, cfg)
		if err != nil {
			return fail(err)
		}
		s.CH = c
	}
	if cfg.RDS.Enabled {
		r, err := openRedis(ctx, cfg, s)
		if err != nil {
			return fail(err)
		}
		s.Cache = r
	}
	if cfg.ES.Enabled {
		c, err := openES(cfg, s)
		if err != nil {
			return fail(err)
		}
		s.Search = c
	}
	return s, nil
}

// Pingers lists every enabled backend that can report readiness, keyed by name
func (s *Store) Pingers() map[string]Pinger {
	out := map[string]Pinger{}
	if s == nil {
		return out
	}
	if p, ok := s.PG.(Pinger); ok && s.PG != nil {
		out["pg"] = p
	}
	if p, ok := s.CH.(Pinger); ok && s.CH != nil {
		out["ch"] = p
	}
	if s.Cache != nil {
		out["redis"] = s.Cache
	}
	if s.Search != nil {
		out["elasticsearch"] = s.Search
	}
	return out
}

// Guard pings every enabled backend and joins the failures
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("nil store")
	}
	var errs []error
	for name, p := range s.Pingers() {
		if err := p.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Close releases every opened backend
func (s *Store) Close(_ context.Context) error {
	if s == nil {
		return nil
	}
	var errs []error
	if s.CH != nil {
		errs = append(errs, s.CH.Close())
	}
	if s.Cache != nil {
		errs = append(errs, s.Cache.Close())
	}
	if c, ok := s.PG.(interface{ Close() error }); ok && s.PG != nil {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
