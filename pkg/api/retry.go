package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"slices"
	"time"

	"golang.org/x/oauth2"

	httputil "github.com/lepinkainen/twitterss/pkg/http"
)

// RetryPolicy defines the configuration for retry behavior
type RetryPolicy struct {
	MaxAttempts       int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
	RetryableErrors   []int // HTTP status codes that should trigger retries
}

// DefaultRetryPolicy returns the policy used for X API calls
func DefaultRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts:       3,
		InitialBackoff:    time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
		RetryableErrors:   slices.Clone(httputil.RetryableStatusCodes),
	}
}

// CalculateBackoff returns the exponential backoff after the given attempt, capped at MaxBackoff
func (rp *RetryPolicy) CalculateBackoff(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	backoff := float64(rp.InitialBackoff) * math.Pow(rp.BackoffMultiplier, float64(attempt-1))
	return min(time.Duration(backoff), rp.MaxBackoff)
}

// HTTPError represents an HTTP error with status code
type HTTPError struct {
	StatusCode int
	Message    string
	// RetryAfter is the server's requested wait, if it sent one
	RetryAfter time.Duration
}

// Error implements the error interface
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// statusCode extracts an HTTP status from API and token endpoint errors
func statusCode(err error) (int, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode, true
	}

	// Token refreshes fail with the token endpoint's response attached
	var oauthErr *oauth2.RetrieveError
	if errors.As(err, &oauthErr) && oauthErr.Response != nil {
		return oauthErr.Response.StatusCode, true
	}

	return 0, false
}

// IsRetryableError checks if an error should trigger a retry.
// A policy without RetryableErrors retries the shared transient codes.
func (rp *RetryPolicy) IsRetryableError(err error) bool {
	code, ok := statusCode(err)
	if !ok {
		return false
	}
	if rp.RetryableErrors == nil {
		return httputil.IsRetryableStatusCode(code)
	}
	return slices.Contains(rp.RetryableErrors, code)
}

// IsRateLimitError checks if an error is specifically due to rate limiting
func (rp *RetryPolicy) IsRateLimitError(err error) bool {
	code, ok := statusCode(err)
	return ok && code == http.StatusTooManyRequests
}

// rateLimitBackoff waits at least as long as the server asked, capped by MaxBackoff
func (rp *RetryPolicy) rateLimitBackoff(err error, attempt int) time.Duration {
	backoff := rp.CalculateBackoff(attempt) * 2

	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > backoff {
		backoff = httpErr.RetryAfter
	}
	if rp.MaxBackoff > 0 {
		backoff = min(backoff, rp.MaxBackoff)
	}
	return backoff
}

// delay picks the wait before the next attempt after err
func (rp *RetryPolicy) delay(err error, attempt int) time.Duration {
	if rp.IsRateLimitError(err) {
		return rp.rateLimitBackoff(err, attempt)
	}
	return rp.CalculateBackoff(attempt)
}

// RetryableOperation represents an operation that can be retried
type RetryableOperation func(ctx context.Context) error

// ExecuteWithRetry runs operation until it succeeds, fails with a final error,
// or the policy's attempts are spent. Backoff waits stop early when ctx is done.
func ExecuteWithRetry(ctx context.Context, operation RetryableOperation, policy *RetryPolicy, operationName string) error {
	var err error

	for attempt := 1; ; attempt++ {
		if err = operation(ctx); err == nil {
			if attempt > 1 {
				slog.Info("Operation succeeded after retry", "operation", operationName, "attempt", attempt)
			}
			return nil
		}

		if ctx.Err() != nil || !policy.IsRetryableError(err) {
			slog.Debug("Error is not retryable", "operation", operationName, "attempt", attempt, "error", err)
			return err
		}
		if attempt >= policy.MaxAttempts {
			return fmt.Errorf("operation %s failed after %d attempts: %w", operationName, attempt, err)
		}

		backoff := policy.delay(err, attempt)
		slog.Warn("Retrying operation",
			"operation", operationName,
			"attempt", attempt+1,
			"maxAttempts", policy.MaxAttempts,
			"backoff", backoff,
			"rateLimited", policy.IsRateLimitError(err),
			"error", err)

		if err := sleep(ctx, backoff); err != nil {
			return fmt.Errorf("operation %s cancelled: %w", operationName, err)
		}
	}
}

// sleep waits for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
