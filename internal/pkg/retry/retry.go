// Package retry runs an operation with capped exponential backoff.
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// MaxBackoff caps the wait between attempts.
const MaxBackoff = 16 * time.Second

// Backoff returns the wait after the given failed attempt: 1s, 2s, 4s, ... up to MaxBackoff.
var Backoff = func(attempt int) time.Duration {
	if attempt > 5 {
		return MaxBackoff
	}
	return min(time.Duration(1<<(attempt-1))*time.Second, MaxBackoff)
}

// Do calls fn until it succeeds, attempts are used up or ctx is cancelled.
// what names the operation in logs and errors.
func Do(ctx context.Context, what string, attempts int, fn func(ctx context.Context) error) error {
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if lastErr = fn(ctx); lastErr == nil {
			slog.Info(what+" succeeded", "attempts", attempt)
			return nil
		}
		if attempt == attempts {
			break
		}

		backoff := Backoff(attempt)
		slog.Warn(what+" failed, retrying",
			"attempt", attempt,
			"max_attempts", attempts,
			"backoff", backoff,
			"error", lastErr,
		)

		timer := time.NewTimer(backoff)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%s cancelled: %w", what, ctx.Err())
		}
	}

	return fmt.Errorf("%s after %d attempts: %w", what, attempts, lastErr)
}
