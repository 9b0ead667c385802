package guardrails

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"comicvault/internal/platform/store"
)

func TestForPageNeverExtendsParent(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	ctx, c2 := ForPage(parent, Timeouts{Page: time.Hour})
	defer c2()
	if rem := Remaining(ctx); rem <= 0 || rem > 50*time.Millisecond {
		t.Fatalf("Remaining = %v, want <= 50ms", rem)
	}

	ctx, c3 := ForPage(context.Background(), Timeouts{Page: 20 * time.Millisecond})
	defer c3()
	if rem := Remaining(ctx); rem <= 0 || rem > 20*time.Millisecond {
		t.Fatalf("Remaining = %v, want <= 20ms", rem)
	}

	ctx, c4 := ForJob(context.Background(), Timeouts{})
	defer c4()
	if _, ok := ctx.Deadline(); ok {
		t.Fatalf("zero budget should not set a deadline")
	}
}

func TestSleepHonorsCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("Sleep err = %v, want canceled", err)
	}
	if err := Sleep(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("Sleep err = %v", err)
	}
}

func TestLocksSerializeInProcess(t *testing.T) {
	l := NewLocks(nil, "test", 0)
	var running, peak atomic.Int32
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.With(context.Background(), "comics", func(context.Context) error {
				n := running.Add(1)
				if n > peak.Load() {
					peak.Store(n)
				}
				time.Sleep(time.Millisecond)
				running.Add(-1)
				return nil
			})
		}()
	}
	wg.Wait()
	if peak.Load() != 1 {
		t.Fatalf("peak concurrency = %d, want 1", peak.Load())
	}
}

type leaseRows struct{ n int }

func (r *leaseRows) Next() bool             { r.n--; return r.n >= 0 }
func (r *leaseRows) Scan(dest ...any) error { return nil }
func (r *leaseRows) Err() error             { return nil }
func (r *leaseRows) Close()                 {}
func (r *leaseRows) Columns() []string      { return []string{"bool"} }

type leaseDB struct {
	store.TxRunner
	claim bool
	execs []string
}

func (d *leaseDB) Tx(ctx context.Context, fn func(q store.RowQuerier) error) error { return fn(d) }

func (d *leaseDB) Query(_ context.Context, sql string, _ ...any) (store.Rows, error) {
	if d.claim {
		return &leaseRows{n: 1}, nil
	}
	return &leaseRows{}, nil
}

func (d *leaseDB) Exec(_ context.Context, sql string, _ ...any) (store.CommandTag, error) {
	d.execs = append(d.execs, sql)
	return nil, nil
}

func TestLocksLease(t *testing.T) {
	db := &leaseDB{claim: true}
	l := NewLocks(db, "host-1", time.Minute)
	ran := false
	if err := l.With(context.Background(), "link:comics", func(context.Context) error { ran = true; return nil }); err != nil {
		t.Fatalf("With err = %v", err)
	}
	if !ran {
		t.Fatalf("work did not run")
	}
	if len(db.execs) != 1 || !strings.Contains(db.execs[0], "delete from sync_leases") {
		t.Fatalf("release not issued: %v", db.execs)
	}

	db = &leaseDB{claim: false}
	l = NewLocks(db, "host-2", time.Minute)
	ran = false
	err := l.With(context.Background(), "link:comics", func(context.Context) error { ran = true; return nil })
	if !errors.Is(err, ErrLockHeld) || ran {
		t.Fatalf("held lease: err = %v ran = %v", err, ran)
	}
	if len(db.execs) != 0 {
		t.Fatalf("release issued for unclaimed lease")
	}
}

func TestDefaultHolderCarriesPID(t *testing.T) {
	h := DefaultHolder()
	if !strings.HasSuffix(h, ":"+strconv.Itoa(os.Getpid())) {
		t.Fatalf("DefaultHolder() = %q, want host:pid", h)
	}
}
