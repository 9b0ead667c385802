// Package service pushes the postgres projection into the search index
package service

import (
	"context"
	"errors"
	"time"

	"comicvault/internal/modkit/repokit"
	perr "comicvault/internal/platform/errors"
	"comicvault/internal/platform/logger"
	"comicvault/internal/platform/metrics"
	"comicvault/internal/platform/search"
	catdom "comicvault/internal/services/catalog/domain"
	"comicvault/internal/services/guardrails"
	"comicvault/internal/services/searchsync/domain"
)

const defaultBatch = 50

// Indexer is the part of the search client sync needs
type Indexer interface {
	EnsureIndex(ctx context.Context, index string, mapping any) (bool, error)
	BulkUpsert(ctx context.Context, index string, docs []search.Doc) ([]search.ItemError, error)
}

// Locker serializes work per entity type
type Locker interface {
	With(ctx context.Context, name string, do func(context.Context) error) error
}

// Service implements domain.SyncPort
type Service struct {
	DB        repokit.Queryer
	Binder    repokit.Binder[domain.StorageRepo]
	Index     Indexer
	Locks     Locker
	BatchSize int

	now func() time.Time
}

// New constructs the synchronizer
func New(db repokit.Queryer, binder repokit.Binder[domain.StorageRepo], idx Indexer, locks Locker, batch int) *Service {
	if db == nil || idx == nil {
		panic("searchsync.Service requires a Queryer and an Indexer")
	}
	if locks == nil {
		locks = guardrails.NewLocks(nil, "", 0)
	}
	if batch <= 0 {
		batch = defaultBatch
	}
	return &Service{DB: db, Binder: binder, Index: idx, Locks: locks, BatchSize: batch, now: time.Now}
}

// EnsureIndex creates the index for t when it does not exist
func (s *Service) EnsureIndex(ctx context.Context, t catdom.EntityType) (bool, error) {
	if !t.IsSearchable() {
		return false, perr.InvalidArgf("searchsync: %q is not searchable", t)
	}
	created, err := s.Index.EnsureIndex(ctx, domain.Index(t), domain.Mapping(t))
	if err != nil {
		if perr.CodeOf(err) != perr.ErrorCodeIndexUnavailable {
			err = perr.IndexUnavailablef(err, "searchsync: ensure %s", t)
		}
		return false, err
	}
	return created, nil
}

// Sync ensures the index then upserts every projection row in id order.
// Rejected documents are logged and counted; a request level failure stops
// the sync with what was already indexed left in place
func (s *Service) Sync(ctx context.Context, t catdom.EntityType) (domain.Report, error) {
	rep := domain.Report{Entity: t}
	if !t.IsSearchable() {
		rep.Err = perr.InvalidArgf("searchsync: %q is not searchable", t)
		return rep, rep.Err
	}
	start := s.now()
	log := logger.C(ctx).With().Str("entity", t.String()).Logger()

	err := s.Locks.With(ctx, t.String(), func(ctx context.Context) error {
		created, err := s.EnsureIndex(ctx, t)
		if err != nil {
			return err
		}
		rep.Created = created

		index := domain.Index(t)
		var after int64
		for {
			rows, err := s.Binder.Bind(s.DB).Projection(ctx, t, after, s.BatchSize)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				return nil
			}
			docs := make([]search.Doc, 0, len(rows))
			for _, r := range rows {
				id, d := domain.Document(t, r)
				docs = append(docs, search.Doc{ID: id, Source: d})
			}
			failed, err := s.Index.BulkUpsert(ctx, index, docs)
			if err != nil {
				return err
			}
			for _, f := range failed {
				log.Warn().Str("doc", f.ID).Int("status", f.Status).Str("reason", f.Reason).Msg("searchsync: document rejected")
			}
			rep.Docs += len(rows)
			rep.Failed += len(failed)
			rep.Indexed += len(rows) - len(failed)
			metrics.SearchDocs.WithLabelValues(index, "indexed").Add(float64(len(rows) - len(failed)))
			metrics.SearchDocs.WithLabelValues(index, "failed").Add(float64(len(failed)))

			if len(rows) < s.BatchSize {
				return nil
			}
			after = rows[len(rows)-1].ID
		}
	})
	if errors.Is(err, guardrails.ErrLockHeld) {
		rep.Locked = true
		log.Warn().Msg("searchsync: lock held elsewhere, skipping")
		err = nil
	}

	rep.Duration = s.now().Sub(start)
	rep.Err = err
	metrics.ObserveStage("reindex:"+t.String(), start)

	ev := log.Info()
	if err != nil {
		ev = log.Error().Err(err)
	}
	ev.Bool("created", rep.Created).
		Int("docs", rep.Docs).
		Int("indexed", rep.Indexed).
		Int("failed", rep.Failed).
		Dur("took", rep.Duration).
		Msg("searchsync: sync finished")
	return rep, err
}

// SyncAll syncs each searchable type in order; types that are not
// searchable are ignored, and one failing type does not stop the others
func (s *Service) SyncAll(ctx context.Context, types []catdom.EntityType) ([]domain.Report, error) {
	if len(types) == 0 {
		types = catdom.Searchable
	}
	var (
		out  []domain.Report
		errs []error
	)
	for _, t := range types {
		if !t.IsSearchable() {
			continue
		}
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		rep, err := s.Sync(ctx, t)
		out = append(out, rep)
		if err != nil {
			errs = append(errs, perr.WithOp(err, "reindex "+t.String()))
		}
	}
	return out, errors.Join(errs...)
}
