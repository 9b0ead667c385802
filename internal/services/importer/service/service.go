// Package service provides the batch importer
package service

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"comicvault/internal/adapters/marvel"
	"comicvault/internal/modkit/repokit"
	perr "comicvault/internal/platform/errors"
	"comicvault/internal/platform/logger"
	"comicvault/internal/platform/metrics"
	catdom "comicvault/internal/services/catalog/domain"
	"comicvault/internal/services/guardrails"
	"comicvault/internal/services/importer/domain"

	"golang.org/x/sync/errgroup"
)

// Config holds importer tuning
type Config struct {
	PageSize    int           // records per upstream page; clamped to 1..100
	Delay       time.Duration // courtesy pause between pages
	PageTimeout time.Duration // budget for one fetch and for one write
	Concurrent  bool          // run per-type jobs in parallel in ImportAll

	// Page-level retry for retryable failures
	MaxRetries int           // attempts per page; <=0 -> 1
	RetryBase  time.Duration // <=0 -> 500ms
}

// Service implements domain.ImporterPort
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[domain.StorageRepo]
	Fetch  domain.Fetcher
	Norm   domain.Normalizer
	Cfg    Config

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// New constructs the importer
func New(db repokit.TxRunner, binder repokit.Binder[domain.StorageRepo], f domain.Fetcher, n domain.Normalizer, cfg Config) *Service {
	if db == nil {
		panic("importer.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("importer.Service requires a non nil Repo binder")
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = marvel.MaxLimit
	}
	cfg.PageSize = min(cfg.PageSize, marvel.MaxLimit)
	return &Service{
		DB: db, Binder: binder, Fetch: f, Norm: n, Cfg: cfg,
		now:   time.Now,
		sleep: guardrails.Sleep,
	}
}

// Import pulls every page of t, committing page by page. It stops at the
// first short page. A failing page ends the job; earlier pages stay committed
func (s *Service) Import(ctx context.Context, t catdom.EntityType, opts domain.ImportOptions) (rep domain.Report, err error) {
	if !t.Valid() {
		return domain.Report{Entity: t}, perr.InvalidArgf("importer: unknown entity type %q", t)
	}
	log := logger.C(ctx)
	rep = domain.Report{Entity: t, StartedAt: s.now()}
	defer func() {
		rep.Duration = s.now().Sub(rep.StartedAt)
		rep.Err = err
		metrics.ObserveStage("import:"+t.String(), rep.StartedAt)
		ev := log.Info()
		if err != nil {
			ev = log.Error().Err(err)
		}
		ev.Str("entity", t.String()).
			Int("pages", rep.Pages).
			Int("fetched", rep.Fetched).
			Int("inserted", rep.Inserted).
			Int("skipped", rep.Skipped).
			Int("dropped", rep.Dropped).
			Dur("took", rep.Duration).
			Msg("importer: job finished")
	}()

	pager := &pacedPager{s: s}
	err = marvel.Each(ctx, pager, t.String(), s.Cfg.PageSize, opts.ModifiedSince, func(offset int, page []json.RawMessage) error {
		batch, err := s.Norm.Page(t, page)
		if err != nil {
			return perr.WithOp(err, "importer.normalize")
		}
		var ins, skip int
		err = s.withRetry(ctx, func(ctx context.Context) error {
			pctx, cancel := guardrails.ForPage(ctx, s.timeouts())
			defer cancel()
			return s.DB.Tx(pctx, func(q repokit.Queryer) error {
				var e error
				ins, skip, e = write(pctx, s.Binder.Bind(q), t, batch)
				return e
			})
		})
		if err != nil {
			log.Error().Err(err).Str("entity", t.String()).Int("offset", offset).Msg("importer: page failed")
			return err
		}

		rep.Pages++
		rep.Fetched += len(page)
		rep.Inserted += ins
		rep.Skipped += skip
		rep.Dropped += batch.Dropped
		metrics.ImportPages.WithLabelValues(t.String()).Inc()
		metrics.ImportRecords.WithLabelValues(t.String(), "inserted").Add(float64(ins))
		metrics.ImportRecords.WithLabelValues(t.String(), "skipped").Add(float64(skip))
		metrics.ImportRecords.WithLabelValues(t.String(), "dropped").Add(float64(batch.Dropped))
		log.Debug().Str("entity", t.String()).Int("offset", offset).Int("inserted", ins).Int("skipped", skip).Msg("importer: page committed")
		return nil
	})
	return rep, err
}

// ImportAll runs Import for every type. A failing type does not stop the
// others; the joined error is returned once all jobs are done
func (s *Service) ImportAll(ctx context.Context, types []catdom.EntityType, opts domain.ImportOptions) (map[catdom.EntityType]domain.Report, error) {
	out := make(map[catdom.EntityType]domain.Report, len(types))
	var (
		mu   sync.Mutex
		errs []error
	)
	run := func(t catdom.EntityType) {
		rep, err := s.Import(ctx, t, opts)
		mu.Lock()
		defer mu.Unlock()
		out[t] = rep
		if err != nil {
			errs = append(errs, perr.WithOp(err, "import "+t.String()))
		}
	}

	if !s.Cfg.Concurrent {
		for _, t := range types {
			run(t)
		}
		return out, errors.Join(errs...)
	}

	var g errgroup.Group
	for _, t := range types {
		g.Go(func() error {
			run(t)
			return nil
		})
	}
	_ = g.Wait()
	return out, errors.Join(errs...)
}

func write(ctx context.Context, r domain.StorageRepo, t catdom.EntityType, b domain.Batch) (int, int, error) {
	switch t {
	case catdom.Characters:
		return r.InsertCharacters(ctx, b.Characters)
	case catdom.Comics:
		return r.InsertComics(ctx, b.Comics)
	case catdom.Creators:
		return r.InsertCreators(ctx, b.Creators)
	case catdom.Series:
		return r.InsertSeries(ctx, b.Series)
	}
	return 0, 0, perr.InvalidArgf("importer: unknown entity type %q", t)
}

func (s *Service) timeouts() guardrails.Timeouts {
	return guardrails.Timeouts{Page: s.Cfg.PageTimeout}
}

// withRetry runs fn up to MaxRetries times while the failure is retryable
func (s *Service) withRetry(ctx context.Context, fn func(context.Context) error) error {
	attempts := max(s.Cfg.MaxRetries, 1)
	base := s.Cfg.RetryBase
	if base <= 0 {
		base = 500 * time.Millisecond
	}

	var last error
	for i := range attempts {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		last = err
		if !perr.Retryable(err) || ctx.Err() != nil || i == attempts-1 {
			break
		}

		// exponential backoff with jitter, cap at 30s
		d := min(base<<i, 30*time.Second)
		j := d/2 + time.Duration(rand.Int63n(int64(d/2)+1))
		if se := s.sleep(ctx, j); se != nil {
			return last
		}
	}
	return last
}

// pacedPager applies the courtesy delay, the page budget and page retries
// around the upstream fetch
type pacedPager struct {
	s       *Service
	fetched bool
}

func (p *pacedPager) FetchPage(ctx context.Context, resource string, limit, offset int, since *time.Time) ([]json.RawMessage, error) {
	if p.fetched && p.s.Cfg.Delay > 0 {
		if err := p.s.sleep(ctx, p.s.Cfg.Delay); err != nil {
			return nil, err
		}
	}
	p.fetched = true

	var page []json.RawMessage
	err := p.s.withRetry(ctx, func(ctx context.Context) error {
		pctx, cancel := guardrails.ForPage(ctx, p.s.timeouts())
		defer cancel()
		var err error
		page, err = p.s.Fetch.FetchPage(pctx, resource, limit, offset, since)
		return err
	})
	if err != nil {
		logger.C(ctx).Error().Err(err).Str("entity", resource).Int("offset", offset).Msg("importer: fetch failed")
	}
	return page, err
}
