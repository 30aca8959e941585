// Package urlutils provides URL helper functions.
package urlutils

import (
	"net/url"
	"strings"
)

// IsValidURL checks if a URL is valid
func IsValidURL(urlStr string) bool {
	u, err := url.Parse(urlStr)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// IsHTTPURL checks that a URL is absolute and uses http or https
func IsHTTPURL(urlStr string) bool {
	if !IsValidURL(urlStr) {
		return false
	}
	u, _ := url.Parse(urlStr)
	return u.Scheme == "http" || u.Scheme == "https"
}

// JoinPath appends an object key to a base URL with exactly one slash between them.
// The key is used as-is; object keys are already URL-safe.
func JoinPath(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
