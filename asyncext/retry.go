package asyncext

import (
	"context"
	"time"

	"github.com/fluxkit/fluxkit/asyncthunk"
)

// RetryConfig controls CreateRetryWithFallback's backoff and exhaustion
// behavior.
type RetryConfig[Result any] struct {
	MaxRetries  int
	ShouldRetry func(err error, attempt int) bool
	Fallback    *Result
}

// CreateRetryWithFallback retries work up to cfg.MaxRetries times with
// exponential backoff (2^attempt seconds, attempt starting at 0),
// consulting cfg.ShouldRetry before each retry. On exhaustion it returns
// cfg.Fallback if set, else the last error (spec.md §4.10's
// "Retry/fallback").
func CreateRetryWithFallback[Arg, Result any](
	typePrefix string,
	work func(ctx context.Context, arg Arg) (Result, error),
	cfg RetryConfig[Result],
	opts ...asyncthunk.Option[Arg],
) *asyncthunk.AsyncThunk[Arg, Result] {
	return asyncthunk.CreateAsyncThunk(typePrefix, func(ctx context.Context, arg Arg, api asyncthunk.ThunkAPI) (Result, error) {
		var zero Result
		var lastErr error

		for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
			result, err := work(ctx, arg)
			if err == nil {
				return result, nil
			}
			lastErr = err

			if attempt == cfg.MaxRetries {
				break
			}
			if cfg.ShouldRetry != nil && !cfg.ShouldRetry(err, attempt) {
				break
			}

			backoff := time.Duration(1<<uint(attempt)) * time.Second
			timer := time.NewTimer(backoff)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			}
		}

		if cfg.Fallback != nil {
			return *cfg.Fallback, nil
		}
		return zero, lastErr
	}, opts...)
}
