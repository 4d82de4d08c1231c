package netutil

import (
	"context"
	"time"
)

// Backoff returns the wait before the next attempt: linear in attempt,
// stretched to the flood wait Telegram asked for, and capped at limit.
func Backoff(base time.Duration, attempt int, err error, limit time.Duration) time.Duration {
	wait := base * time.Duration(attempt)
	if ra := RetryAfter(err); ra > wait {
		wait = ra
	}
	if limit > 0 && wait > limit {
		wait = limit
	}
	if wait < 0 {
		return 0
	}
	return wait
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
