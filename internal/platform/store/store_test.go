package store

import (
	"context"
	"errors"
	"testing"

	"comicvault/internal/platform/config"
	perr "comicvault/internal/platform/errors"
	kit "comicvault/internal/platform/testkit"
)

func TestConfigFromEnvEnablesConfiguredBackends(t *testing.T) {
	t.Setenv("SERVICE_PGSQL_DBURL", "postgres://u:p@localhost:5432/catalog")
	t.Setenv("SERVICE_PGSQL_MAX_CONNS", "4")
	t.Setenv("SERVICE_ELASTIC_URLS", "http://es1:9200, http://es2:9200")

	cfg := ConfigFromEnv(config.New(), "comicvault-sync")
	if !cfg.PG.Enabled || cfg.PG.MaxConns != 4 {
		t.Fatalf("PG = %+v", cfg.PG)
	}
	if cfg.CH.Enabled || cfg.RDS.Enabled {
		t.Fatalf("unexpected backends enabled: ch=%v redis=%v", cfg.CH.Enabled, cfg.RDS.Enabled)
	}
	if !cfg.ES.Enabled || len(cfg.ES.Addresses) != 2 || cfg.ES.Addresses[1] != "http://es2:9200" {
		t.Fatalf("ES = %+v", cfg.ES)
	}
	if cfg.CH.ClientName != "comicvault-sync" {
		t.Fatalf("CH.ClientName = %q", cfg.CH.ClientName)
	}
}

func TestOpenNothingEnabled(t *testing.T) {
	s, err := Open(context.Background(), Config{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.PG != nil || s.CH != nil || s.Cache != nil || s.Search != nil {
		t.Fatalf("expected empty store, got %+v", s)
	}
	if err := s.Guard(context.Background()); err != nil {
		t.Fatalf("Guard on empty store: %v", err)
	}
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestOpenSearchOnly(t *testing.T) {
	s, err := Open(context.Background(), Config{ES: ESConfig{Enabled: true, Addresses: []string{"http://127.0.0.1:9200"}}})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.Search == nil {
		t.Fatalf("Search not set")
	}
	if _, ok := s.Pingers()["elasticsearch"]; !ok {
		t.Fatalf("Pingers missing elasticsearch")
	}
}

func TestOpenPGBadURL(t *testing.T) {
	if _, err := Open(context.Background(), Config{PG: PGConfig{Enabled: true, URL: "://bad"}}); err == nil {
		t.Fatalf("expected error")
	}
}

type pingTx struct {
	fakeQ
	err error
}

func (p *pingTx) Ping(context.Context) error { return p.err }
func (p *pingTx) Tx(ctx context.Context, fn func(RowQuerier) error) error {
	return fn(p)
}

func TestGuardJoinsFailures(t *testing.T) {
	s := &Store{PG: &pingTx{err: errors.New("refused")}}
	err := s.Guard(context.Background())
	if err == nil {
		t.Fatalf("Guard = nil, want error")
	}
	kit.MustContain(t, err.Error(), "pg: refused")

	var nilStore *Store
	if nilStore.Guard(context.Background()) == nil {
		t.Fatalf("nil store Guard should fail")
	}
}

// fakeQ serves canned int64 rows
type fakeQ struct {
	ids      []int64
	affected int64
	queryErr error
}

type fakeRows struct {
	ids []int64
	i   int
}

func (r *fakeRows) Next() bool { r.i++; return r.i <= len(r.ids) }
func (r *fakeRows) Scan(dst ...any) error {
	*(dst[0].(*int64)) = r.ids[r.i-1]
	return nil
}
func (r *fakeRows) Err() error        { return nil }
func (r *fakeRows) Close()            {}
func (r *fakeRows) Columns() []string { return []string{"id"} }

type fakeTag int64

func (t fakeTag) String() string      { return "INSERT 0" }
func (t fakeTag) RowsAffected() int64 { return int64(t) }

func (q *fakeQ) Exec(context.Context, string, ...any) (CommandTag, error) {
	return fakeTag(q.affected), nil
}
func (q *fakeQ) Query(context.Context, string, ...any) (Rows, error) {
	if q.queryErr != nil {
		return nil, q.queryErr
	}
	return &fakeRows{ids: q.ids}, nil
}
func (q *fakeQ) QueryRow(ctx context.Context, sql string, args ...any) Row {
	rs, _ := q.Query(ctx, sql, args...)
	rs.Next()
	return rs
}

func TestHelpers(t *testing.T) {
	ctx := context.Background()
	q := &fakeQ{ids: []int64{3, 1, 3}, affected: 2}

	n, err := Exec(ctx, q, "INSERT ...")
	if err != nil || n != 2 {
		t.Fatalf("Exec = %d, %v", n, err)
	}
	set, err := Set(ctx, q, "SELECT external_id FROM comics")
	if err != nil || len(set) != 2 {
		t.Fatalf("Set = %v, %v", set, err)
	}
	first, err := Scalar[int64](ctx, q, "SELECT count(*)")
	if err != nil || first != 3 {
		t.Fatalf("Scalar = %d, %v", first, err)
	}

	scan := func(r Row) (int64, error) {
		var v int64
		return v, r.Scan(&v)
	}
	if _, err := One(ctx, &fakeQ{}, scan, "SELECT"); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("One on empty = %v, want not found", err)
	}
	boom := errors.New("boom")
	if _, err := Many(ctx, &fakeQ{queryErr: boom}, scan, "SELECT"); !errors.Is(err, boom) {
		t.Fatalf("Many err = %v", err)
	}
}
