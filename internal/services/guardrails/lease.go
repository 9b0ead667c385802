package guardrails

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	perr "comicvault/internal/platform/errors"
	"comicvault/internal/platform/logger"
	"comicvault/internal/platform/store"
)

// ErrLockHeld signals another process owns the lock; callers treat it as a clean skip
var ErrLockHeld = errors.New("guardrails: lock held by another process")

const defaultLeaseTTL = 30 * time.Minute

// Locks gives mutual exclusion per name: an in-process mutex serializes
// goroutines and a sync_leases row keeps a second process out. A nil DB
// means in-process only
type Locks struct {
	DB     store.TxRunner
	Holder string
	TTL    time.Duration

	mu    sync.Mutex
	local map[string]*sync.Mutex
}

// NewLocks builds Locks for holder; ttl bounds how long a crashed holder blocks others
func NewLocks(db store.TxRunner, holder string, ttl time.Duration) *Locks {
	if ttl <= 0 {
		ttl = defaultLeaseTTL
	}
	return &Locks{DB: db, Holder: holder, TTL: ttl, local: map[string]*sync.Mutex{}}
}

// DefaultHolder names this process in lease rows as host:pid
func DefaultHolder() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown"
	}
	return fmt.Sprintf("%s:%d", host, os.Getpid())
}

func (l *Locks) mutex(name string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.local == nil {
		l.local = map[string]*sync.Mutex{}
	}
	m, ok := l.local[name]
	if !ok {
		m = &sync.Mutex{}
		l.local[name] = m
	}
	return m
}

// With runs do while holding name. Goroutines in this process wait their
// turn; a lease held elsewhere returns ErrLockHeld without running do
func (l *Locks) With(ctx context.Context, name string, do func(context.Context) error) error {
	m := l.mutex(name)
	m.Lock()
	defer m.Unlock()

	if l.DB == nil {
		return do(ctx)
	}

	claimed, err := l.acquire(ctx, name)
	if err != nil {
		return err
	}
	if !claimed {
		return ErrLockHeld
	}
	defer func() {
		// release on a fresh context so a canceled job still frees the row
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if _, err := l.DB.Exec(rctx, `delete from sync_leases where name = $1 and holder = $2`, name, l.Holder); err != nil {
			logger.C(ctx).Warn().Err(err).Str("lock", name).Msg("guardrails: lease release failed")
		}
	}()
	return do(ctx)
}

func (l *Locks) acquire(ctx context.Context, name string) (bool, error) {
	var claimed bool
	err := l.DB.Tx(ctx, func(q store.RowQuerier) error {
		rows, err := q.Query(ctx, `
			insert into sync_leases (name, holder, acquired_at, expires_at)
			values ($1, $2, now(), now() + make_interval(secs => $3))
			on conflict (name) do update
				set holder = excluded.holder,
					acquired_at = excluded.acquired_at,
					expires_at = excluded.expires_at
				where sync_leases.expires_at < now() or sync_leases.holder = excluded.holder
			returning true
		`, name, l.Holder, l.TTL.Seconds())
		if err != nil {
			return err
		}
		defer rows.Close()
		if rows.Next() {
			claimed = true
		}
		return rows.Err()
	})
	if err != nil {
		return false, perr.FromPostgresf(err, "guardrails: acquire lease %s", name)
	}
	return claimed, nil
}
