package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	httputil "github.com/lepinkainen/twitterss/pkg/http"
)

func TestRetryPolicy_CalculateBackoff(t *testing.T) {
	policy := DefaultRetryPolicy()

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 0},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt %d", tt.attempt), func(t *testing.T) {
			if got := policy.CalculateBackoff(tt.attempt); got != tt.want {
				t.Errorf("CalculateBackoff(%d) = %v, want %v", tt.attempt, got, tt.want)
			}
		})
	}
}

func TestRetryPolicy_Classification(t *testing.T) {
	policy := DefaultRetryPolicy()

	tests := []struct {
		name          string
		err           error
		wantRetryable bool
		wantRateLimit bool
	}{
		{"nil", nil, false, false},
		{"plain error", errors.New("boom"), false, false},
		{"server error", &HTTPError{StatusCode: http.StatusInternalServerError}, true, false},
		{"rate limited", &HTTPError{StatusCode: http.StatusTooManyRequests}, true, true},
		{"list not found", &HTTPError{StatusCode: http.StatusNotFound}, false, false},
		{"wrapped unavailable", fmt.Errorf("fetch list: %w", &HTTPError{StatusCode: http.StatusServiceUnavailable}), true, false},
		{"token refresh server error", &oauth2.RetrieveError{Response: &http.Response{StatusCode: http.StatusBadGateway}}, true, false},
		{"token refresh rate limited", &oauth2.RetrieveError{Response: &http.Response{StatusCode: http.StatusTooManyRequests}}, true, true},
		{"revoked refresh token", &oauth2.RetrieveError{Response: &http.Response{StatusCode: http.StatusBadRequest}, ErrorCode: "invalid_grant"}, false, false},
		{"token error without response", &oauth2.RetrieveError{}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policy.IsRetryableError(tt.err); got != tt.wantRetryable {
				t.Errorf("IsRetryableError() = %v, want %v", got, tt.wantRetryable)
			}
			if got := policy.IsRateLimitError(tt.err); got != tt.wantRateLimit {
				t.Errorf("IsRateLimitError() = %v, want %v", got, tt.wantRateLimit)
			}
		})
	}
}

func TestDefaultRetryPolicy(t *testing.T) {
	policy := DefaultRetryPolicy()

	if policy.MaxAttempts != 3 || policy.InitialBackoff != time.Second || policy.MaxBackoff != 30*time.Second {
		t.Errorf("DefaultRetryPolicy() = %+v", policy)
	}
	if !slices.Equal(policy.RetryableErrors, httputil.RetryableStatusCodes) {
		t.Errorf("RetryableErrors = %v, want %v", policy.RetryableErrors, httputil.RetryableStatusCodes)
	}

	policy.RetryableErrors[0] = http.StatusTeapot
	if httputil.RetryableStatusCodes[0] == http.StatusTeapot {
		t.Error("policy codes should be a copy of the shared list")
	}
}

func TestRetryPolicy_IsRetryableError_DefaultCodes(t *testing.T) {
	tests := []struct {
		name   string
		policy *RetryPolicy
		code   int
		want   bool
	}{
		{name: "unset list retries 503", policy: &RetryPolicy{}, code: http.StatusServiceUnavailable, want: true},
		{name: "unset list skips 404", policy: &RetryPolicy{}, code: http.StatusNotFound, want: false},
		{name: "empty list retries nothing", policy: &RetryPolicy{RetryableErrors: []int{}}, code: http.StatusServiceUnavailable, want: false},
		{name: "custom list", policy: &RetryPolicy{RetryableErrors: []int{http.StatusConflict}}, code: http.StatusConflict, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &HTTPError{StatusCode: tt.code}
			if got := tt.policy.IsRetryableError(err); got != tt.want {
				t.Errorf("IsRetryableError(%d) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestHTTPError_Error(t *testing.T) {
	err := &HTTPError{StatusCode: http.StatusUnauthorized, Message: "Unauthorized"}
	if got := err.Error(); got != "HTTP 401: Unauthorized" {
		t.Errorf("Error() = %q", got)
	}
}

func testPolicy(maxAttempts int) *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts:       maxAttempts,
		InitialBackoff:    5 * time.Millisecond,
		MaxBackoff:        20 * time.Millisecond,
		BackoffMultiplier: 2.0,
		RetryableErrors:   []int{http.StatusTooManyRequests, http.StatusInternalServerError},
	}
}

func TestExecuteWithRetry(t *testing.T) {
	serverErr := &HTTPError{StatusCode: http.StatusInternalServerError, Message: "Server Error"}

	tests := []struct {
		name         string
		failures     int
		failWith     error
		maxAttempts  int
		wantErr      bool
		wantAttempts int
	}{
		{"first attempt succeeds", 0, nil, 3, false, 1},
		{"not found is final", 10, &HTTPError{StatusCode: http.StatusNotFound}, 3, true, 1},
		{"succeeds after retries", 2, serverErr, 3, false, 3},
		{"exhausts attempts", 10, serverErr, 2, true, 2},
		{"rate limit is retried", 1, &HTTPError{StatusCode: http.StatusTooManyRequests, RetryAfter: time.Hour}, 3, false, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			operation := func(context.Context) error {
				attempts++
				if attempts <= tt.failures {
					return tt.failWith
				}
				return nil
			}

			err := ExecuteWithRetry(context.Background(), operation, testPolicy(tt.maxAttempts), "GET /2/lists/1/tweets")

			if (err != nil) != tt.wantErr {
				t.Errorf("ExecuteWithRetry() error = %v, wantErr %v", err, tt.wantErr)
			}
			if attempts != tt.wantAttempts {
				t.Errorf("attempts = %d, want %d", attempts, tt.wantAttempts)
			}
			if tt.wantErr && !errors.Is(err, tt.failWith) {
				t.Errorf("error = %v, want wrapped %v", err, tt.failWith)
			}
		})
	}
}

func TestExecuteWithRetry_ErrorNamesOperation(t *testing.T) {
	operation := func(context.Context) error {
		return &HTTPError{StatusCode: http.StatusInternalServerError}
	}

	err := ExecuteWithRetry(context.Background(), operation, testPolicy(2), "GET /2/users/me")
	if err == nil || !strings.Contains(err.Error(), "GET /2/users/me") {
		t.Errorf("error = %v, want it to name the operation", err)
	}
}

func TestExecuteWithRetry_CancelDuringBackoff(t *testing.T) {
	policy := testPolicy(3)
	policy.InitialBackoff = time.Hour
	policy.MaxBackoff = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	attempts := 0
	operation := func(context.Context) error {
		attempts++
		return &HTTPError{StatusCode: http.StatusInternalServerError}
	}

	start := time.Now()
	err := ExecuteWithRetry(ctx, operation, policy, "slow")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want context.DeadlineExceeded", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
	if time.Since(start) > time.Second {
		t.Error("backoff did not stop on context cancellation")
	}
}

func TestRetryPolicy_RateLimitBackoff(t *testing.T) {
	policy := &RetryPolicy{
		InitialBackoff:    time.Second,
		MaxBackoff:        time.Minute,
		BackoffMultiplier: 2.0,
	}

	tests := []struct {
		name string
		err  error
		want time.Duration
	}{
		{"doubled backoff without server hint", &HTTPError{StatusCode: 429}, 2 * time.Second},
		{"server hint wins when longer", &HTTPError{StatusCode: 429, RetryAfter: 15 * time.Second}, 15 * time.Second},
		{"server hint capped at max backoff", &HTTPError{StatusCode: 429, RetryAfter: time.Hour}, time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policy.rateLimitBackoff(tt.err, 1); got != tt.want {
				t.Errorf("rateLimitBackoff() = %v, want %v", got, tt.want)
			}
		})
	}
}
