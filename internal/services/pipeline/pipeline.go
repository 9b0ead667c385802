// Package pipeline runs one full sync: import every type, wait for all of
// them, link relations, then rebuild the search projection. Each stage is
// written to the run ledger
package pipeline

import (
	"context"
	"errors"
	"time"

	"comicvault/internal/platform/logger"
	"comicvault/internal/platform/metrics"
	catdom "comicvault/internal/services/catalog/domain"
	impdom "comicvault/internal/services/importer/domain"
	linkdom "comicvault/internal/services/linker/domain"
	"comicvault/internal/services/runlog"
	syncdom "comicvault/internal/services/searchsync/domain"

	"github.com/google/uuid"
)

// Plan selects what one run does
type Plan struct {
	Types         []catdom.EntityType
	ModifiedSince *time.Time
	Link          bool
	Reindex       bool
}

// Summary is what one run did
type Summary struct {
	RunID    string
	Imports  map[catdom.EntityType]impdom.Report
	Links    []linkdom.Report
	Reindex  []syncdom.Report
	Duration time.Duration
}

// Service sequences the stages. Search may be nil when elasticsearch is not configured
type Service struct {
	Importer impdom.ImporterPort
	Linker   linkdom.LinkerPort
	Search   syncdom.SyncPort
	Ledger   runlog.Recorder

	now   func() time.Time
	newID func() string
}

// New constructs the pipeline; ledger may be nil
func New(imp impdom.ImporterPort, link linkdom.LinkerPort, search syncdom.SyncPort, ledger runlog.Recorder) *Service {
	if imp == nil || link == nil {
		panic("pipeline.Service requires an importer and a linker")
	}
	if ledger == nil {
		ledger = runlog.New(nil)
	}
	return &Service{Importer: imp, Linker: link, Search: search, Ledger: ledger, now: time.Now, newID: uuid.NewString}
}

// Run executes plan. Stage failures are joined into the returned error;
// later stages still run over whatever earlier stages committed
func (s *Service) Run(ctx context.Context, plan Plan) (Summary, error) {
	sum := Summary{RunID: s.newID()}
	ctx = logger.WithRun(ctx, sum.RunID)
	log := logger.C(ctx)
	start := s.now()
	defer metrics.ObserveStage("pipeline", start)

	types := plan.Types
	if len(types) == 0 {
		types = catdom.AllTypes
	}
	log.Info().Strs("types", typeNames(types)).Bool("link", plan.Link).Bool("reindex", plan.Reindex).Msg("pipeline: run started")

	var errs []error

	// every import finishes before linking starts
	imports, err := s.Importer.ImportAll(ctx, types, impdom.ImportOptions{ModifiedSince: plan.ModifiedSince})
	sum.Imports = imports
	if err != nil {
		errs = append(errs, err)
	}
	recs := make([]runlog.RunRecord, 0, len(types))
	for _, t := range types {
		if rep, ok := imports[t]; ok {
			recs = append(recs, importRecord(sum.RunID, rep, s.now()))
		}
	}
	s.record(ctx, recs)

	if plan.Link && ctx.Err() == nil {
		linkStart := s.now()
		reps, err := s.Linker.Run(ctx)
		sum.Links = reps
		if err != nil {
			errs = append(errs, err)
		}
		recs = recs[:0]
		for _, r := range reps {
			recs = append(recs, linkRecord(sum.RunID, r, linkStart))
		}
		s.record(ctx, recs)
	}

	if plan.Reindex && ctx.Err() == nil {
		if s.Search == nil {
			log.Warn().Msg("pipeline: search is not configured, skipping reindex")
		} else {
			reindexStart := s.now()
			reps, err := s.Search.SyncAll(ctx, catdom.Searchable)
			sum.Reindex = reps
			if err != nil {
				errs = append(errs, err)
			}
			recs = recs[:0]
			for _, r := range reps {
				recs = append(recs, reindexRecord(sum.RunID, r, reindexStart))
			}
			s.record(ctx, recs)
		}
	}

	if err := ctx.Err(); err != nil && !errors.Is(errors.Join(errs...), err) {
		errs = append(errs, err)
	}

	sum.Duration = s.now().Sub(start)
	out := errors.Join(errs...)
	ev := log.Info()
	if out != nil {
		ev = log.Error().Err(out)
	}
	ev.Dur("took", sum.Duration).Msg("pipeline: run finished")
	return sum, out
}

// record writes to the ledger; a ledger failure never fails the run
func (s *Service) record(ctx context.Context, recs []runlog.RunRecord) {
	if err := s.Ledger.Record(ctx, recs...); err != nil {
		logger.C(ctx).Warn().Err(err).Msg("pipeline: run ledger write failed")
	}
}

func status(err error, locked bool) (string, string) {
	switch {
	case err != nil:
		return runlog.StatusFailed, err.Error()
	case locked:
		return runlog.StatusSkipped, ""
	}
	return runlog.StatusOK, ""
}

func importRecord(runID string, r impdom.Report, now time.Time) runlog.RunRecord {
	st, msg := status(r.Err, false)
	finished := r.StartedAt.Add(r.Duration)
	if r.StartedAt.IsZero() {
		r.StartedAt, finished = now, now
	}
	return runlog.RunRecord{
		RunID: runID, Stage: "import", Entity: r.Entity.String(),
		StartedAt: r.StartedAt, FinishedAt: finished,
		Pages: r.Pages, Fetched: r.Fetched, Inserted: r.Inserted,
		Skipped: r.Skipped + r.Dropped, Errors: errCount(r.Err),
		Status: st, Error: msg,
	}
}

func linkRecord(runID string, r linkdom.Report, started time.Time) runlog.RunRecord {
	st, msg := status(r.Err, r.Locked)
	return runlog.RunRecord{
		RunID: runID, Stage: "link", Entity: string(r.Pass),
		StartedAt: started, FinishedAt: started.Add(r.Duration),
		Fetched: r.Roots, Inserted: r.Linked + r.Placeholders, Skipped: r.Skipped + r.Unresolved,
		Errors: errCount(r.Err), Status: st, Error: msg,
	}
}

func reindexRecord(runID string, r syncdom.Report, started time.Time) runlog.RunRecord {
	st, msg := status(r.Err, r.Locked)
	return runlog.RunRecord{
		RunID: runID, Stage: "reindex", Entity: r.Entity.String(),
		StartedAt: started, FinishedAt: started.Add(r.Duration),
		Fetched: r.Docs, Inserted: r.Indexed, Errors: r.Failed + errCount(r.Err),
		Status: st, Error: msg,
	}
}

func errCount(err error) int {
	if err != nil {
		return 1
	}
	return 0
}

func typeNames(ts []catdom.EntityType) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.String()
	}
	return out
}
