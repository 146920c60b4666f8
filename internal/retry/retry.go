// Package retry provides bounded exponential backoff for the network
// calls the scraping layer makes. Transient failures (timeouts, 5xx,
// throttling) are retried; everything else returns immediately, since a
// 404 on a poster candidate is an answer, not an outage.
package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
)

// StatusError reports a non-2xx HTTP response from a source site.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

// Do executes fn with exponential backoff until it succeeds, maxAttempts
// is reached, or ctx is cancelled. The backoff doubles after each failed
// attempt starting from initialBackoff, and doubles again when the error
// indicates rate limiting. Non-retryable errors return immediately.
func Do(ctx context.Context, fn func() error, maxAttempts int, initialBackoff time.Duration) error {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var lastErr error
	backoff := initialBackoff
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) {
			return lastErr
		}
		if attempt == maxAttempts {
			break
		}

		sleep := backoff
		if IsRateLimited(lastErr) {
			sleep *= 2
		}
		select {
		case <-time.After(sleep):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
	}
	return lastErr
}

// IsRetryable reports whether the error is transient: a network timeout,
// a 5xx response, or rate limiting.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500 || statusErr.StatusCode == 429
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "i/o timeout")
}

// IsRateLimited reports whether the error indicates throttling (HTTP 429).
func IsRateLimited(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == 429
}

// IsTimeout reports whether the error is a hard request timeout. The
// metadata flow abandons its page lookup entirely on timeout instead of
// trying a refined query.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr) && urlErr.Timeout()
}
