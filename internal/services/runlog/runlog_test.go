package runlog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	perr "comicvault/internal/platform/errors"
	"comicvault/internal/platform/store"
)

type fakeCH struct {
	execs   []string
	table   string
	rows    [][]any
	failErr error
}

func (f *fakeCH) Exec(_ context.Context, sql string, _ ...any) error {
	f.execs = append(f.execs, sql)
	return f.failErr
}

func (f *fakeCH) Insert(_ context.Context, table string, data any) error {
	if f.failErr != nil {
		return f.failErr
	}
	f.table = table
	f.rows = append(f.rows, data.([][]any)...)
	return nil
}

func (f *fakeCH) Query(context.Context, string, ...any) (store.Rows, error) { return nil, f.failErr }
func (f *fakeCH) Close() error                                             { return nil }

func TestRecordWritesColumnOrder(t *testing.T) {
	ch := &fakeCH{}
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	err := New(ch).Record(context.Background(), RunRecord{
		RunID: "r1", Stage: "import", Entity: "comics",
		StartedAt: start, FinishedAt: start.Add(time.Minute),
		Pages: 3, Fetched: 237, Inserted: 200, Skipped: 37, Status: StatusOK,
	})
	if err != nil {
		t.Fatalf("Record err = %v", err)
	}
	if ch.table != Table || len(ch.rows) != 1 {
		t.Fatalf("table = %q rows = %d", ch.table, len(ch.rows))
	}
	row := ch.rows[0]
	if len(row) != 12 || row[0] != "r1" || row[6] != uint32(237) || row[10] != StatusOK {
		t.Fatalf("row = %v", row)
	}
}

func TestRecordWithoutClickhouseOnlyLogs(t *testing.T) {
	if err := New(nil).Record(context.Background(), RunRecord{RunID: "r"}); err != nil {
		t.Fatalf("Record err = %v", err)
	}
	if err := New(nil).EnsureTable(context.Background()); err != nil {
		t.Fatalf("EnsureTable err = %v", err)
	}
	if _, err := New(nil).Recent(context.Background(), 5); !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("Recent err = %v, want unavailable", err)
	}
}

func TestEnsureTableAndInsertFailure(t *testing.T) {
	ch := &fakeCH{}
	if err := New(ch).EnsureTable(context.Background()); err != nil {
		t.Fatalf("EnsureTable err = %v", err)
	}
	if len(ch.execs) != 1 || !strings.Contains(ch.execs[0], "CREATE TABLE IF NOT EXISTS pipeline_runs") {
		t.Fatalf("execs = %v", ch.execs)
	}

	ch.failErr = errors.New("code: 60, table does not exist")
	err := New(ch).Record(context.Background(), RunRecord{RunID: "r"})
	if !perr.IsCode(err, perr.ErrorCodeDB) {
		t.Fatalf("err = %v, want DB", err)
	}
}

func TestU32ClampsNegative(t *testing.T) {
	if u32(-4) != 0 || u32(7) != 7 {
		t.Fatalf("u32 clamp wrong")
	}
}
