// Package dbinterfaces provides shared database interface definitions.
package dbinterfaces

import (
	"io"
	"time"
)

// Database defines the common interface for database operations
type Database interface {
	io.Closer // Close() error
}

// Cache is a string key/value store with per-entry expiry
type Cache interface {
	// Get returns the value and whether an unexpired entry exists
	Get(key string) (string, bool, error)
	Set(key, value string, ttl time.Duration) error
	// Delete removes an entry; deleting a missing key is not an error
	Delete(key string) error
}

// CleanupProvider defines the interface for caches that support cleanup operations
type CleanupProvider interface {
	CleanupExpired() error
}
