// Package runlog keeps the pipeline run ledger in clickhouse. Without
// clickhouse the records are only logged
package runlog

import (
	"context"
	"time"

	perr "comicvault/internal/platform/errors"
	"comicvault/internal/platform/logger"
	"comicvault/internal/platform/store"
)

// Table is the ledger table name
const Table = "pipeline_runs"

// Status values
const (
	StatusOK      = "ok"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

const ddl = `
CREATE TABLE IF NOT EXISTS pipeline_runs (
	run_id      String,
	stage       LowCardinality(String),
	entity      LowCardinality(String),
	started_at  DateTime64(3, 'UTC'),
	finished_at DateTime64(3, 'UTC'),
	pages       UInt32,
	fetched     UInt32,
	inserted    UInt32,
	skipped     UInt32,
	errors      UInt32,
	status      LowCardinality(String),
	error       String
) ENGINE = MergeTree
ORDER BY (started_at, run_id)
TTL toDateTime(started_at) + INTERVAL 180 DAY`

// RunRecord is one stage of one run
type RunRecord struct {
	RunID      string    `json:"runId"`
	Stage      string    `json:"stage"`
	Entity     string    `json:"entity"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Pages      int       `json:"pages"`
	Fetched    int       `json:"fetched"`
	Inserted   int       `json:"inserted"`
	Skipped    int       `json:"skipped"`
	Errors     int       `json:"errors"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
}

// Recorder is what the pipeline writes to
type Recorder interface {
	Record(ctx context.Context, recs ...RunRecord) error
}

// Ledger writes records to clickhouse when CH is set
type Ledger struct {
	CH store.Clickhouse
}

var _ Recorder = (*Ledger)(nil)

// New returns a ledger over ch; ch may be nil
func New(ch store.Clickhouse) *Ledger { return &Ledger{CH: ch} }

// EnsureTable creates the ledger table when missing
func (l *Ledger) EnsureTable(ctx context.Context) error {
	if l.CH == nil {
		return nil
	}
	if err := l.CH.Exec(ctx, ddl); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeDB, "runlog: create %s", Table)
	}
	return nil
}

// Record logs every record and appends them to the ledger in one batch
func (l *Ledger) Record(ctx context.Context, recs ...RunRecord) error {
	if len(recs) == 0 {
		return nil
	}
	log := logger.C(ctx)
	rows := make([][]any, 0, len(recs))
	for _, r := range recs {
		ev := log.Info()
		if r.Status == StatusFailed {
			ev = log.Warn().Str("error", r.Error)
		}
		ev.Str("run_id", r.RunID).
			Str("stage", r.Stage).
			Str("entity", r.Entity).
			Int("pages", r.Pages).
			Int("fetched", r.Fetched).
			Int("inserted", r.Inserted).
			Int("skipped", r.Skipped).
			Int("errors", r.Errors).
			Str("status", r.Status).
			Dur("took", r.FinishedAt.Sub(r.StartedAt)).
			Msg("runlog: stage recorded")
		rows = append(rows, r.row())
	}
	if l.CH == nil {
		return nil
	}
	if err := l.CH.Insert(ctx, Table, rows); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeDB, "runlog: insert %d records", len(rows))
	}
	return nil
}

// Recent returns the latest records, newest first
func (l *Ledger) Recent(ctx context.Context, limit int) ([]RunRecord, error) {
	if l.CH == nil {
		return nil, perr.Unavailablef("runlog: clickhouse is not configured")
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.CH.Query(ctx, `
		SELECT run_id, stage, entity, started_at, finished_at,
			pages, fetched, inserted, skipped, errors, status, error
		FROM pipeline_runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeDB, "runlog: query recent")
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var (
			r                                         RunRecord
			pages, fetched, inserted, skipped, errors uint32
		)
		if err := rows.Scan(&r.RunID, &r.Stage, &r.Entity, &r.StartedAt, &r.FinishedAt,
			&pages, &fetched, &inserted, &skipped, &errors, &r.Status, &r.Error); err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeDB, "runlog: scan recent")
		}
		r.Pages, r.Fetched, r.Inserted, r.Skipped, r.Errors = int(pages), int(fetched), int(inserted), int(skipped), int(errors)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (r RunRecord) row() []any {
	return []any{
		r.RunID, r.Stage, r.Entity, r.StartedAt.UTC(), r.FinishedAt.UTC(),
		u32(r.Pages), u32(r.Fetched), u32(r.Inserted), u32(r.Skipped), u32(r.Errors),
		r.Status, r.Error,
	}
}

func u32(n int) uint32 {
	if n < 0 {
		return 0
	}
	return uint32(n)
}
