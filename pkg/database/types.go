// Package database wraps a SQLite connection and a key/value cache table.
package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/lepinkainen/twitterss/pkg/dbinterfaces"
	"github.com/lepinkainen/twitterss/pkg/filesystem"
)

var _ dbinterfaces.Database = (*Database)(nil)

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

// pragmas are set on every pooled connection through the DSN
var pragmas = []string{
	"busy_timeout(5000)",
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
	"temp_store(MEMORY)",
}

var (
	// open holds connections by path so sources sharing a cache file share a pool
	open   = make(map[string]*Database)
	openMu sync.Mutex
)

// Database is a shared SQLite connection pool
type Database struct {
	db   *sql.DB
	mu   sync.RWMutex
	path string
}

// Config holds database configuration
type Config struct {
	Path string
}

func dsn(path string) string {
	q := url.Values{}
	for _, p := range pragmas {
		q.Add("_pragma", p)
	}
	return path + "?" + q.Encode()
}

// NewDatabase opens the SQLite file at config.Path, creating its directory,
// or returns the already open database for that path.
func NewDatabase(config Config) (*Database, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	openMu.Lock()
	defer openMu.Unlock()

	if db, ok := open[config.Path]; ok {
		return db, nil
	}

	memory := config.Path == MemoryPath
	if !memory {
		if err := filesystem.EnsureDirectoryExists(config.Path); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn(config.Path))
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", config.Path, err)
	}

	if memory {
		// Every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(time.Hour)
	}

	if err := db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("Failed to close database", "path", config.Path, "error", closeErr)
		}
		return nil, fmt.Errorf("open database %s: %w", config.Path, err)
	}

	database := &Database{db: db, path: config.Path}
	if !memory {
		open[config.Path] = database
	}

	slog.Debug("Opened database", "path", config.Path)
	return database, nil
}

// Close closes the connection pool and forgets it
func (db *Database) Close() error {
	openMu.Lock()
	if open[db.path] == db {
		delete(open, db.path)
	}
	openMu.Unlock()

	db.mu.Lock()
	defer db.mu.Unlock()

	if db.db == nil {
		return nil
	}
	err := db.db.Close()
	db.db = nil
	return err
}

// DB returns the underlying sql.DB instance
func (db *Database) DB() *sql.DB {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.db
}

// Path returns the database file path
func (db *Database) Path() string {
	return db.path
}

// ExecuteSchema executes a schema statement
func (db *Database) ExecuteSchema(schema string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.db == nil {
		return fmt.Errorf("database %s is closed", db.path)
	}
	_, err := db.db.Exec(schema)
	return err
}
