package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	httputil "github.com/lepinkainen/twitterss/pkg/http"
)

// DefaultUserAgent identifies requests made by this program
const DefaultUserAgent = "twitterss/1.0"

// X API quota headers
const (
	headerRemaining = "X-Rate-Limit-Remaining"
	headerReset     = "X-Rate-Limit-Reset"
)

// ClientConfig configures a Client
type ClientConfig struct {
	HTTPClient *http.Client
	// BaseURL is prepended to request paths
	BaseURL   string
	Limiter   RateLimiter
	Retry     *RetryPolicy
	UserAgent string
	Headers   map[string]string
}

// Client is a JSON API client with rate limiting and retries
type Client struct {
	http      *http.Client
	baseURL   string
	limiter   RateLimiter
	retry     *RetryPolicy
	userAgent string
	headers   map[string]string
	now       func() time.Time
}

// NewClient creates a client, filling unset fields with defaults
func NewClient(cfg ClientConfig) *Client {
	c := &Client{
		http:      cfg.HTTPClient,
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		limiter:   cfg.Limiter,
		retry:     cfg.Retry,
		userAgent: cfg.UserAgent,
		headers:   cfg.Headers,
		now:       time.Now,
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 30 * time.Second}
	}
	if c.limiter == nil {
		c.limiter = NewNoOpRateLimiter()
	}
	if c.retry == nil {
		c.retry = DefaultRetryPolicy()
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	return c
}

// NewTwitterClient creates a client for the X API.
// httpClient is expected to attach authorization, e.g. an oauth2 client.
func NewTwitterClient(baseURL string, httpClient *http.Client, limiter RateLimiter) *Client {
	return NewClient(ClientConfig{
		HTTPClient: httpClient,
		BaseURL:    baseURL,
		Limiter:    limiter,
		Headers:    map[string]string{"Accept": "application/json"},
	})
}

// URL returns the absolute request URL for path and query
func (c *Client) URL(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// GetJSON fetches path and decodes the JSON body into target
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, target any) error {
	endpoint := c.URL(path, query)

	operation := func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		for k, v := range c.headers {
			req.Header.Set(k, v)
		}

		start := time.Now()
		res, err := c.http.Do(req)
		if err != nil {
			c.logCall(path, time.Since(start), 0, err)
			return fmt.Errorf("GET %s: %w", path, err)
		}
		defer func() { _ = res.Body.Close() }()

		c.observeQuota(res.Header)

		if err := httputil.EnsureStatusOK(res); err != nil {
			c.logCall(path, time.Since(start), res.StatusCode, err)
			return &HTTPError{
				StatusCode: res.StatusCode,
				Message:    err.Error(),
				RetryAfter: c.retryAfter(res.Header),
			}
		}

		if err := json.NewDecoder(res.Body).Decode(target); err != nil {
			c.logCall(path, time.Since(start), res.StatusCode, err)
			return fmt.Errorf("decode %s response: %w", path, err)
		}

		c.logCall(path, time.Since(start), res.StatusCode, nil)
		return nil
	}

	return ExecuteWithRetry(ctx, operation, c.retry, "GET "+path)
}

// observeQuota holds the limiter when the server reports the window spent
func (c *Client) observeQuota(h http.Header) {
	pauser, ok := c.limiter.(interface{ PauseUntil(time.Time) })
	if !ok || h.Get(headerRemaining) != "0" {
		return
	}
	if reset, ok := resetTime(h); ok && reset.After(c.now()) {
		slog.Warn("API quota exhausted, pausing requests", "until", reset)
		pauser.PauseUntil(reset)
	}
}

// resetTime parses the quota reset epoch
func resetTime(h http.Header) (time.Time, bool) {
	epoch, err := strconv.ParseInt(h.Get(headerReset), 10, 64)
	if err != nil || epoch <= 0 {
		return time.Time{}, false
	}
	return time.Unix(epoch, 0), true
}

// retryAfter reads Retry-After seconds or the quota reset epoch
func (c *Client) retryAfter(h http.Header) time.Duration {
	if secs, err := strconv.Atoi(h.Get("Retry-After")); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if reset, ok := resetTime(h); ok {
		if d := reset.Sub(c.now()); d > 0 {
			return d
		}
	}
	return 0
}

func (c *Client) logCall(path string, duration time.Duration, status int, err error) {
	if err != nil {
		slog.Warn("API call failed", "path", path, "status", status, "duration", duration, "error", err)
		return
	}
	slog.Debug("API call completed", "path", path, "status", status, "duration", duration)
}
