package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/ppiankov/gcpwatch/internal/errs"
)

// RetryFunc is called before each retry with the attempt that just failed
// (1-based), its error and the wait before the next attempt.
type RetryFunc func(attempt int, err error, wait time.Duration)

// Retry runs op until it succeeds, returns a non-transient error, the policy
// runs out of attempts, or ctx is done. It reports the number of attempts made.
//
// Only errors classified as TransientProviderError are retried.
func Retry[T any](ctx context.Context, p RetryPolicy, op func(context.Context) (T, error), onRetry RetryFunc) (T, int, error) {
	attempts := 0
	wrapped := func() (T, error) {
		attempts++
		v, err := op(ctx)
		if err != nil && !errs.IsRetryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}

	notify := func(err error, wait time.Duration) {
		if onRetry != nil {
			onRetry(attempts, err, wait)
		}
	}

	v, err := backoff.RetryNotifyWithData(wrapped, newBackOff(ctx, p), notify)
	// The loop gives up with ctx.Err() when the context ends mid-wait.
	if err != nil && ctx.Err() != nil && (errs.IsRetryable(err) || errors.Is(err, ctx.Err())) {
		return v, attempts, errs.Classify(ctx.Err(), "")
	}
	return v, attempts, err
}

func newBackOff(ctx context.Context, p RetryPolicy) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.BaseDelay
	if eb.InitialInterval <= 0 {
		eb.InitialInterval = time.Millisecond
	}
	eb.MaxInterval = p.MaxDelay
	if eb.MaxInterval < eb.InitialInterval {
		eb.MaxInterval = eb.InitialInterval
	}
	eb.Multiplier = 2
	eb.RandomizationFactor = 0.2
	// Attempts, not elapsed time, bound the loop; the caller's context
	// bounds wall time.
	eb.MaxElapsedTime = 0
	eb.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(p.attempts()-1)), ctx)
}
