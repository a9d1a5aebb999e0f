// Package retry provides a bounded-attempt retry helper with linear backoff.
package retry

import (
	"context"
	"time"
)

// Config controls how Do retries a failing operation.
type Config struct {
	// Attempts is the total number of tries, including the first one.
	Attempts int
	// Delay is the backoff base. The wait after attempt n is Delay * n,
	// so with Delay=1s the waits are 1s, 2s, 3s, ...
	Delay time.Duration
	// Retryable decides whether an error is worth another attempt.
	// A nil Retryable retries every error.
	Retryable func(error) bool
	// OnRetry, if set, is called before each wait with the attempt number
	// (1-based) that just failed and its error. Callers use it for logging.
	OnRetry func(attempt int, err error)
}

// Do runs op until it succeeds, the attempt budget is exhausted, the error is
// classified as non-retryable, or ctx is done. It returns the last error seen.
func Do(ctx context.Context, cfg Config, op func(ctx context.Context) error) error {
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if cfg.Retryable != nil && !cfg.Retryable(lastErr) {
			return lastErr
		}
		if attempt == cfg.Attempts {
			break
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, lastErr)
		}
		if cfg.Delay > 0 {
			wait := time.Duration(attempt) * cfg.Delay
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	return lastErr
}
