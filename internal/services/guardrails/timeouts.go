// Package guardrails holds cross cutting safety helpers for the sync jobs:
// time budgets and per-type locks
package guardrails

import (
	"context"
	"time"
)

// Timeouts is an optional budget bundle for sync work.
// Zero values mean no extra timeout at that level
type Timeouts struct {
	// Job caps one whole per-type job
	Job time.Duration

	// Page caps one fetch-normalize-write page
	Page time.Duration
}

// ForJob returns a context limited by the job budget without extending any parent deadline
func ForJob(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Job)
}

// ForPage returns a sub context for one page bounded by Page and any remaining parent budget
func ForPage(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Page)
}

// Remaining returns the time until the deadline on ctx or zero when none is set or already expired
func Remaining(ctx context.Context) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			return d
		}
	}
	return 0
}

// withChildTimeout takes the tighter of d and the parent's remainder, never
// extending the parent deadline. d <= 0 yields a plain cancelable child
func withChildTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	if rem := Remaining(parent); rem > 0 && rem < d {
		return context.WithTimeout(parent, rem)
	}
	return context.WithTimeout(parent, d)
}

// Sleep waits d or until ctx is done
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
