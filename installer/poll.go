package installer

import (
	"context"
	"errors"
	"time"
)

// errPollTimeout is returned by pollUntil when the deadline elapses before
// the condition holds. Callers translate it into a state-specific error.
var errPollTimeout = errors.New("poll timeout")

// pollUntil invokes fn immediately and then once per interval, until fn
// reports done, fn returns an error, the timeout elapses, or ctx is
// cancelled. The deadline is checked at every iteration rather than with a
// single blocking wait, so cancellation is observed promptly between polls.
//
// The returned duration is the wall-clock time spent polling.
func pollUntil(ctx context.Context, interval, timeout time.Duration, fn func(context.Context) (bool, error)) (time.Duration, error) {
	start := time.Now()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		done, err := fn(ctx)
		if err != nil {
			return time.Since(start), err
		}
		if done {
			return time.Since(start), nil
		}
		if time.Since(start) >= timeout {
			return time.Since(start), errPollTimeout
		}

		select {
		case <-ctx.Done():
			return time.Since(start), ctx.Err()
		case <-ticker.C:
		}
	}
}
