package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/lepinkainen/twitterss/pkg/dbinterfaces"
)

var (
	_ dbinterfaces.Cache           = (*Cache)(nil)
	_ dbinterfaces.CleanupProvider = (*Cache)(nil)
)

// tableNamePattern limits table names to plain identifiers, since they are formatted into SQL
var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Cache is a TTL key/value store in a single table. Expiry is kept as unix seconds.
type Cache struct {
	db      *Database
	table   string
	now     func() time.Time
	queries struct {
		get, set, del, cleanup string
	}
}

// NewCache creates a cache backed by table. Call InitializeCache before use.
func NewCache(db *Database, table string) (*Cache, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid cache table name %q", table)
	}

	c := &Cache{db: db, table: table, now: time.Now}
	c.queries.get = fmt.Sprintf(`SELECT value FROM %s WHERE key = ? AND expires_at > ?`, table)
	c.queries.set = fmt.Sprintf(`
		INSERT INTO %s (key, value, expires_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at`, table)
	c.queries.del = fmt.Sprintf(`DELETE FROM %s WHERE key = ?`, table)
	c.queries.cleanup = fmt.Sprintf(`DELETE FROM %s WHERE expires_at <= ?`, table)
	return c, nil
}

// InitializeCache creates the cache table if it doesn't exist
func (c *Cache) InitializeCache() error {
	return c.db.ExecuteSchema(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			expires_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_%[1]s_expires ON %[1]s(expires_at);
	`, c.table))
}

// Get retrieves a value that has not expired yet
func (c *Cache) Get(key string) (string, bool, error) {
	var value string
	err := c.db.DB().QueryRow(c.queries.get, key, c.now().Unix()).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s from %s: %w", key, c.table, err)
	}
	return value, true, nil
}

// Set stores value under key for ttl
func (c *Cache) Set(key, value string, ttl time.Duration) error {
	now := c.now()
	if _, err := c.db.DB().Exec(c.queries.set, key, value, now.Add(ttl).Unix(), now.Unix()); err != nil {
		return fmt.Errorf("set %s in %s: %w", key, c.table, err)
	}
	return nil
}

// Delete removes a value from the cache
func (c *Cache) Delete(key string) error {
	if _, err := c.db.DB().Exec(c.queries.del, key); err != nil {
		return fmt.Errorf("delete %s from %s: %w", key, c.table, err)
	}
	return nil
}

// CleanupExpired removes expired entries from the cache
func (c *Cache) CleanupExpired() error {
	result, err := c.db.DB().Exec(c.queries.cleanup, c.now().Unix())
	if err != nil {
		return fmt.Errorf("cleanup %s: %w", c.table, err)
	}

	if n, _ := result.RowsAffected(); n > 0 {
		slog.Debug("Cleaned up expired cache entries", "table", c.table, "count", n)
	}
	return nil
}
