package integrations

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// RetryPolicy controls how requests to a remote repository are retried.
// Only transient failures are retried: network errors, 429 and 5xx.
type RetryPolicy struct {
	Attempts int           // Total tries; values below 1 mean a single try
	Delay    time.Duration // Wait before the second try, doubled after each retry
	MaxDelay time.Duration // Cap on a single wait, including Retry-After; zero is uncapped
}

// DefaultRetryPolicy suits public repositories such as Maven Central.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, Delay: time.Second, MaxDelay: 30 * time.Second}

// WithAttempts returns a copy of p with the attempt count replaced when n > 0.
func (p RetryPolicy) WithAttempts(n int) RetryPolicy {
	if n > 0 {
		p.Attempts = n
	}
	return p
}

// Do calls fn until it succeeds, fails with a non-transient error, or the
// attempts run out. A server-supplied Retry-After replaces a shorter delay.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	attempts := max(p.Attempts, 1)
	delay := p.Delay
	var lastErr error

	for i := range attempts {
		err := fn()
		if err == nil {
			return nil
		}
		var te *transientError
		if !errors.As(err, &te) {
			return err
		}
		lastErr = err
		if i == attempts-1 {
			break
		}

		wait := max(delay, te.after)
		if p.MaxDelay > 0 {
			wait = min(wait, p.MaxDelay)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		delay *= 2
	}
	return lastErr
}

// transientError marks a failure worth retrying. after is the wait the
// server asked for, if any.
type transientError struct {
	err   error
	after time.Duration
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// IsRetryable reports whether err is a transient repository failure.
func IsRetryable(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

func transient(err error, after time.Duration) error {
	return &transientError{err: err, after: after}
}

// checkStatus maps an HTTP status to ErrNotFound, a retryable ErrNetwork,
// or a permanent ErrNetwork.
func checkStatus(code int, header http.Header) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests, code >= 500:
		return transient(fmt.Errorf("%w: status %d", ErrNetwork, code), retryAfter(header, time.Now()))
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}

// retryAfter parses a Retry-After header given in seconds or as an HTTP date.
func retryAfter(header http.Header, now time.Time) time.Duration {
	v := header.Get("Retry-After")
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return max(time.Duration(secs)*time.Second, 0)
	}
	if t, err := http.ParseTime(v); err == nil {
		return max(t.Sub(now), 0)
	}
	return 0
}
