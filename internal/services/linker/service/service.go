// Package service resolves the references the importer recorded into
// relational links
package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"comicvault/internal/core/normalize"
	"comicvault/internal/modkit/repokit"
	perr "comicvault/internal/platform/errors"
	"comicvault/internal/platform/logger"
	"comicvault/internal/platform/metrics"
	catdom "comicvault/internal/services/catalog/domain"
	"comicvault/internal/services/guardrails"
	"comicvault/internal/services/linker/domain"
)

const defaultBatch = 200

// Locker serializes work per entity type
type Locker interface {
	With(ctx context.Context, name string, do func(context.Context) error) error
}

// Service implements domain.LinkerPort
type Service struct {
	DB        repokit.TxRunner
	Binder    repokit.Binder[domain.StorageRepo]
	Locks     Locker
	BatchSize int

	now func() time.Time
}

// New constructs the linker
func New(db repokit.TxRunner, binder repokit.Binder[domain.StorageRepo], locks Locker, batch int) *Service {
	if db == nil {
		panic("linker.Service requires a non nil TxRunner")
	}
	if locks == nil {
		locks = guardrails.NewLocks(nil, "", 0)
	}
	if batch <= 0 {
		batch = defaultBatch
	}
	return &Service{DB: db, Binder: binder, Locks: locks, BatchSize: batch, now: time.Now}
}

// LinkComicSeries points every comic at its serie when the serie is present
func (s *Service) LinkComicSeries(ctx context.Context) (domain.Report, error) {
	return s.pass(ctx, domain.PassComicSeries, []catdom.EntityType{catdom.Comics}, func(ctx context.Context, rep *domain.Report) error {
		return repokit.WithTx(ctx, s.DB, func(q repokit.Queryer) error {
			linked, unresolved, err := s.Binder.Bind(q).LinkSeries(ctx)
			rep.Linked, rep.Unresolved = linked, unresolved
			return err
		})
	})
}

// LinkComicCharacters writes comic_characters rows, creating placeholders
func (s *Service) LinkComicCharacters(ctx context.Context) (domain.Report, error) {
	return s.pass(ctx, domain.PassComicCharacters, []catdom.EntityType{catdom.Comics, catdom.Characters}, func(ctx context.Context, rep *domain.Report) error {
		return s.linkCharacters(ctx, domain.RootComics, rep)
	})
}

// LinkSerieCharacters writes serie_characters rows, creating placeholders
func (s *Service) LinkSerieCharacters(ctx context.Context) (domain.Report, error) {
	return s.pass(ctx, domain.PassSerieCharacters, []catdom.EntityType{catdom.Series, catdom.Characters}, func(ctx context.Context, rep *domain.Report) error {
		return s.linkCharacters(ctx, domain.RootSeries, rep)
	})
}

// BackfillSlugs computes slugs for comics stored without one
func (s *Service) BackfillSlugs(ctx context.Context) (domain.Report, error) {
	return s.pass(ctx, domain.PassSlugs, []catdom.EntityType{catdom.Comics}, func(ctx context.Context, rep *domain.Report) error {
		var after int64
		for {
			var rows []domain.SlugRow
			err := repokit.WithTx(ctx, s.DB, func(q repokit.Queryer) error {
				r := s.Binder.Bind(q)
				var err error
				if rows, err = r.MissingSlugs(ctx, after, s.BatchSize); err != nil {
					return err
				}
				for _, row := range rows {
					if err := r.SetSlug(ctx, row.ID, normalize.Slug(row.Title)); err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				return err
			}
			rep.Roots += len(rows)
			rep.Linked += len(rows)
			if len(rows) < s.BatchSize {
				return nil
			}
			after = rows[len(rows)-1].ID
		}
	})
}

// Run executes every pass in order. Passes are independent, so a failure
// is recorded and the next pass still runs
func (s *Service) Run(ctx context.Context) ([]domain.Report, error) {
	passes := []func(context.Context) (domain.Report, error){
		s.LinkComicSeries,
		s.LinkComicCharacters,
		s.LinkSerieCharacters,
		s.BackfillSlugs,
	}
	var (
		out  []domain.Report
		errs []error
	)
	for _, p := range passes {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		rep, err := p(ctx)
		out = append(out, rep)
		if err != nil {
			errs = append(errs, perr.WithOp(err, "link "+string(rep.Pass)))
		}
	}
	return out, errors.Join(errs...)
}

// pass wraps body with the type locks, timing, metrics and logging. Locks
// are taken in the order given; every pass writing characters lists
// characters last
func (s *Service) pass(ctx context.Context, p domain.Pass, locks []catdom.EntityType, body func(context.Context, *domain.Report) error) (domain.Report, error) {
	rep := domain.Report{Pass: p}
	start := s.now()
	log := logger.C(ctx)

	err := s.withLocks(ctx, locks, func(ctx context.Context) error {
		return body(ctx, &rep)
	})
	if errors.Is(err, guardrails.ErrLockHeld) {
		rep.Locked = true
		log.Warn().Str("pass", string(p)).Strs("locks", lockNames(locks)).Msg("linker: lock held elsewhere, skipping pass")
		err = nil
	}

	rep.Duration = s.now().Sub(start)
	rep.Err = err
	metrics.ObserveStage("link:"+string(p), start)
	metrics.LinkRows.WithLabelValues(string(p), "linked").Add(float64(rep.Linked))
	metrics.LinkRows.WithLabelValues(string(p), "placeholder").Add(float64(rep.Placeholders))
	metrics.LinkRows.WithLabelValues(string(p), "skipped").Add(float64(rep.Skipped))

	ev := log.Info()
	if err != nil {
		ev = log.Error().Err(err)
	}
	ev.Str("pass", string(p)).
		Int("roots", rep.Roots).
		Int("linked", rep.Linked).
		Int("placeholders", rep.Placeholders).
		Int("skipped", rep.Skipped).
		Int("unresolved", rep.Unresolved).
		Dur("took", rep.Duration).
		Msg("linker: pass finished")
	return rep, err
}

func (s *Service) withLocks(ctx context.Context, locks []catdom.EntityType, do func(context.Context) error) error {
	if len(locks) == 0 {
		return do(ctx)
	}
	return s.Locks.With(ctx, locks[0].String(), func(ctx context.Context) error {
		return s.withLocks(ctx, locks[1:], do)
	})
}

func lockNames(locks []catdom.EntityType) []string {
	out := make([]string, len(locks))
	for i, l := range locks {
		out[i] = l.String()
	}
	return out
}

// linkCharacters walks roots of kind in keyset batches, one transaction per batch
func (s *Service) linkCharacters(ctx context.Context, kind domain.RootKind, rep *domain.Report) error {
	log := logger.C(ctx)
	var after int64
	for {
		var roots []domain.Root
		var linked, created, skipped int
		err := repokit.WithTx(ctx, s.DB, func(q repokit.Queryer) error {
			linked, created, skipped = 0, 0, 0
			r := s.Binder.Bind(q)
			var err error
			if roots, err = r.Roots(ctx, kind, after, s.BatchSize); err != nil {
				return err
			}
			for _, root := range roots {
				for _, ref := range root.Refs {
					ext, ok := parseRef(ref)
					if !ok {
						skipped++
						log.Warn().Str("root", string(kind)).Int64("root_id", root.ID).RawJSON("ref", safeJSON(ref)).Msg("linker: malformed character reference skipped")
						continue
					}
					charID, isNew, err := r.EnsureCharacter(ctx, ext)
					if err != nil {
						return err
					}
					if isNew {
						created++
					}
					ok, err = r.LinkCharacter(ctx, kind, root.ID, charID)
					if err != nil {
						return err
					}
					if ok {
						linked++
					}
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		rep.Roots += len(roots)
		rep.Linked += linked
		rep.Placeholders += created
		rep.Skipped += skipped
		if len(roots) < s.BatchSize {
			return nil
		}
		after = roots[len(roots)-1].ID
	}
}

// parseRef accepts a positive integer, as a JSON number or numeric string
func parseRef(raw json.RawMessage) (int64, bool) {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func safeJSON(raw json.RawMessage) []byte {
	if json.Valid(raw) {
		return raw
	}
	b, _ := json.Marshal(string(raw))
	return b
}
