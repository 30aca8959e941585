package twitter

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
)

// newHTTPClient returns an HTTP client that authorizes every request.
// User tokens are refreshed through the token endpoint when they expire.
func newHTTPClient(ctx context.Context, cfg *Config) *http.Client {
	if cfg.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, cfg.HTTPClient)
	}

	var ts oauth2.TokenSource
	if cfg.hasUserToken() {
		oauthConfig := &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL: cfg.TokenURL,
			},
		}
		ts = oauthConfig.TokenSource(ctx, &oauth2.Token{
			AccessToken:  cfg.AccessToken,
			RefreshToken: cfg.RefreshToken,
			Expiry:       cfg.TokenExpiry,
			TokenType:    "Bearer",
		})
	} else {
		ts = oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.BearerToken,
			TokenType:   "Bearer",
		})
	}

	client := oauth2.NewClient(ctx, ts)
	if cfg.HTTPClient != nil && cfg.HTTPClient.Timeout > 0 {
		client.Timeout = cfg.HTTPClient.Timeout
	}
	return client
}
