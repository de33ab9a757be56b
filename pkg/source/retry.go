package source

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/matzehuels/peoplepack/pkg/errors"
	"github.com/matzehuels/peoplepack/pkg/roster"
)

// RetryableError marks a failure worth another attempt, such as a refused
// connection or a timed-out ping.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry calls fn up to attempts times, doubling delay after each failure.
// Only errors wrapped in [RetryableError] or coded SOURCE_UNAVAILABLE are
// retried; any other error is returned at once.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !isRetryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

func isRetryable(err error) bool {
	return stderrors.As(err, new(*RetryableError)) || errors.Is(err, errors.ErrCodeSourceUnavailable)
}

// Retrying wraps a source so that unavailable-store failures are retried.
type Retrying struct {
	Source   Source
	Attempts int
	Delay    time.Duration
}

// WithRetry returns src retried up to attempts times, starting at delay.
func WithRetry(src Source, attempts int, delay time.Duration) *Retrying {
	return &Retrying{Source: src, Attempts: attempts, Delay: delay}
}

// Snapshot loads from the wrapped source, retrying transient failures.
func (r *Retrying) Snapshot(ctx context.Context) (*roster.Snapshot, error) {
	var snap *roster.Snapshot
	err := Retry(ctx, r.Attempts, r.Delay, func() error {
		s, err := r.Source.Snapshot(ctx)
		snap = s
		return err
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Name returns the wrapped source's name so cache keys are unchanged.
func (r *Retrying) Name() string { return r.Source.Name() }

var _ Source = (*Retrying)(nil)
