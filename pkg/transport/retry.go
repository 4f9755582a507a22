package transport

import (
	"context"
	"errors"
	"time"
)

// Retry policy for registry fetches.
const (
	maxFetchAttempts = 3
	baseRetryDelay   = time.Second
)

// transientError marks a fetch failure worth another attempt: connection
// errors, timeouts, and 5xx answers. Everything else (404, other 4xx, bad
// URLs) is permanent and surfaces immediately.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// transient wraps a fetch error so retryFetch attempts it again.
func transient(err error) error { return &transientError{err: err} }

// retryFetch runs fetch until it succeeds, fails permanently, or exhausts
// maxFetchAttempts. The wait between attempts starts at delay and doubles;
// a cancelled context wins over a pending wait. On exhaustion the last
// transient error is returned, still carrying its sentinel for errors.Is.
func retryFetch(ctx context.Context, delay time.Duration, fetch func() error) error {
	for attempt := 1; ; attempt++ {
		err := fetch()
		if err == nil {
			return nil
		}
		if !errors.As(err, new(*transientError)) || attempt == maxFetchAttempts {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}
