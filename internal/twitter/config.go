// Package twitter is a timeline source backed by the X API v2.
package twitter

import (
	"errors"
	"net/http"
	"time"

	"github.com/lepinkainen/twitterss/pkg/dbinterfaces"
)

// Defaults for the X API
const (
	DefaultAPIBaseURL        = "https://api.twitter.com"
	DefaultTokenURL          = "https://api.twitter.com/2/oauth2/token"
	DefaultRequestsPerWindow = 75
	DefaultWindow            = 15 * time.Minute
	DefaultListCacheTTL      = 24 * time.Hour
	// maxPageSize is the largest max_results the list endpoints accept
	maxPageSize = 100
)

// Config configures the X API source
type Config struct {
	// BearerToken is an app-only token; it requires Username since /users/me needs user context
	BearerToken string
	// AccessToken and RefreshToken are OAuth 2.0 user tokens; expired tokens are refreshed
	AccessToken  string
	RefreshToken string
	TokenExpiry  time.Time
	ClientID     string
	ClientSecret string
	TokenURL     string

	// Username selects the account to act as when not using user tokens
	Username string

	APIBaseURL        string
	RequestsPerWindow int
	Window            time.Duration

	// CachePath is a SQLite file for list id lookups; empty disables caching
	CachePath string
	// Cache overrides CachePath with an existing cache
	Cache        dbinterfaces.Cache
	ListCacheTTL time.Duration

	// HTTPClient is the transport used under the OAuth2 client
	HTTPClient *http.Client
}

func (c *Config) setDefaults() {
	if c.APIBaseURL == "" {
		c.APIBaseURL = DefaultAPIBaseURL
	}
	if c.TokenURL == "" {
		c.TokenURL = DefaultTokenURL
	}
	if c.RequestsPerWindow <= 0 {
		c.RequestsPerWindow = DefaultRequestsPerWindow
	}
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	if c.ListCacheTTL <= 0 {
		c.ListCacheTTL = DefaultListCacheTTL
	}
}

func (c *Config) hasUserToken() bool {
	return c.AccessToken != "" || c.RefreshToken != ""
}

// Validate checks that credentials are usable
func (c *Config) Validate() error {
	var errs []error

	if !c.hasUserToken() && c.BearerToken == "" {
		errs = append(errs, errors.New("twitter: bearer_token or access_token/refresh_token is required"))
	}
	if !c.hasUserToken() && c.BearerToken != "" && c.Username == "" {
		errs = append(errs, errors.New("twitter: username is required with an app-only bearer_token"))
	}
	if c.RefreshToken != "" && c.ClientID == "" {
		errs = append(errs, errors.New("twitter: client_id is required to refresh tokens"))
	}

	return errors.Join(errs...)
}
