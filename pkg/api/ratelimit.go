package api

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// maxQuotaPause bounds how long a reported quota reset can hold requests
const maxQuotaPause = 15 * time.Minute

// RateLimiter defines the interface for rate limiting implementations
type RateLimiter interface {
	// Wait blocks until it's safe to make another API call or ctx is done
	Wait(ctx context.Context) error
	// CanProceed returns true if a request can be made without waiting
	CanProceed() bool
}

// QuotaLimiter spreads requests over a per-window quota, the way X API
// limits are published, and holds all callers while the server reports
// the window spent
type QuotaLimiter struct {
	limiter *rate.Limiter
	now     func() time.Time

	mu       sync.Mutex
	resumeAt time.Time
}

// NewQuotaLimiter allows a burst of requests refilled evenly over window
func NewQuotaLimiter(requests int, window time.Duration) *QuotaLimiter {
	if requests <= 0 {
		requests = 1
	}
	return &QuotaLimiter{
		limiter: rate.NewLimiter(rate.Every(window/time.Duration(requests)), requests),
		now:     time.Now,
	}
}

// PauseUntil holds requests until t. Earlier times than a pending pause are ignored.
func (q *QuotaLimiter) PauseUntil(t time.Time) {
	if limit := q.now().Add(maxQuotaPause); t.After(limit) {
		t = limit
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if t.After(q.resumeAt) {
		q.resumeAt = t
	}
}

func (q *QuotaLimiter) paused() time.Duration {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.resumeAt.Sub(q.now())
}

// Wait blocks until any pause has passed and a token is available
func (q *QuotaLimiter) Wait(ctx context.Context) error {
	if err := sleep(ctx, q.paused()); err != nil {
		return err
	}
	return q.limiter.Wait(ctx)
}

// CanProceed returns true if not paused and a token is available
func (q *QuotaLimiter) CanProceed() bool {
	return q.paused() <= 0 && q.limiter.Tokens() >= 1
}

// NoOpRateLimiter implements the RateLimiter interface but performs no rate limiting
type NoOpRateLimiter struct{}

// NewNoOpRateLimiter creates a rate limiter that performs no limiting
func NewNoOpRateLimiter() *NoOpRateLimiter {
	return &NoOpRateLimiter{}
}

// Wait only reports cancellation
func (rl *NoOpRateLimiter) Wait(ctx context.Context) error {
	return ctx.Err()
}

// CanProceed always returns true
func (rl *NoOpRateLimiter) CanProceed() bool {
	return true
}
