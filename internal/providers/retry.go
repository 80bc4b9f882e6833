package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// backoffBase is the first retry delay; it doubles on each attempt.
var backoffBase = time.Second

type rateLimitError struct {
	message string
}

func (e *rateLimitError) Error() string {
	if e.message == "" {
		return "rate limited"
	}
	return "rate limited: " + e.message
}

type authError struct {
	message string
}

func (e *authError) Error() string {
	return "authentication error: " + e.message
}

type serverError struct {
	statusCode int
	body       string
}

func (e *serverError) Error() string {
	return fmt.Sprintf("server error (status %d): %s", e.statusCode, e.body)
}

// IsAuthError checks if an error is an authentication error.
func IsAuthError(err error) bool {
	var ae *authError
	return errors.As(err, &ae)
}

func isRetryable(err error) bool {
	var rl *rateLimitError
	var se *serverError
	return errors.As(err, &rl) || errors.As(err, &se)
}

// statusError converts a non-2xx API status into the typed errors the retry
// loop understands.
func statusError(status int, message string) error {
	switch {
	case status == http.StatusTooManyRequests:
		return &rateLimitError{message: message}
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &authError{message: message}
	case status >= 500:
		return &serverError{statusCode: status, body: message}
	default:
		return fmt.Errorf("API error (status %d): %s", status, message)
	}
}

func retryWithBackoff(ctx context.Context, maxRetries int, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		// Don't retry auth or client errors
		if !isRetryable(lastErr) {
			return lastErr
		}

		if attempt < maxRetries {
			backoff := backoffBase << uint(attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
	}
	return lastErr
}
