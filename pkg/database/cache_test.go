package database

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestCache(t *testing.T) (*Cache, *time.Time) {
	t.Helper()

	db, err := NewDatabase(Config{Path: filepath.Join(t.TempDir(), "cache.db")})
	if err != nil {
		t.Fatalf("NewDatabase() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	cache, err := NewCache(db, "test_cache")
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}
	cache.now = func() time.Time { return now }

	if err := cache.InitializeCache(); err != nil {
		t.Fatalf("InitializeCache() error = %v", err)
	}
	return cache, &now
}

func TestCache_SetGet(t *testing.T) {
	cache, _ := newTestCache(t)

	if _, ok, err := cache.Get("missing"); err != nil || ok {
		t.Errorf("Get(missing) = %v, %v", ok, err)
	}

	if err := cache.Set("list:news", "1234", time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, ok, err := cache.Get("list:news")
	if err != nil || !ok || got != "1234" {
		t.Errorf("Get() = %q, %v, %v", got, ok, err)
	}

	if err := cache.Set("list:news", "5678", time.Hour); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}
	if got, _, _ := cache.Get("list:news"); got != "5678" {
		t.Errorf("Get() after overwrite = %q", got)
	}
}

func TestCache_Expiry(t *testing.T) {
	cache, now := newTestCache(t)

	if err := cache.Set("short", "v", time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := cache.Set("long", "v", 24*time.Hour); err != nil {
		t.Fatal(err)
	}

	*now = now.Add(2 * time.Minute)

	if _, ok, _ := cache.Get("short"); ok {
		t.Error("expired entry still returned")
	}
	if _, ok, _ := cache.Get("long"); !ok {
		t.Error("live entry missing")
	}

	if err := cache.CleanupExpired(); err != nil {
		t.Fatalf("CleanupExpired() error = %v", err)
	}

	var count int
	if err := cache.db.DB().QueryRow(`SELECT COUNT(*) FROM test_cache`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("rows after cleanup = %d, want 1", count)
	}
}

func TestCache_Delete(t *testing.T) {
	cache, _ := newTestCache(t)

	_ = cache.Set("k", "v", time.Hour)
	if err := cache.Delete("k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok, _ := cache.Get("k"); ok {
		t.Error("deleted entry still returned")
	}
}

func TestNewDatabase_ReusesConnection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "shared.db")

	first, err := NewDatabase(Config{Path: path})
	if err != nil {
		t.Fatalf("NewDatabase() error = %v", err)
	}
	defer first.Close()

	second, err := NewDatabase(Config{Path: path})
	if err != nil {
		t.Fatalf("NewDatabase() second error = %v", err)
	}
	if first != second {
		t.Error("NewDatabase() should reuse the open connection for a path")
	}
	if first.Path() != path {
		t.Errorf("Path() = %q", first.Path())
	}

	var mode string
	if err := first.DB().QueryRow("PRAGMA journal_mode;").Scan(&mode); err != nil {
		t.Fatal(err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

func TestNewDatabase_Memory(t *testing.T) {
	first, err := NewDatabase(Config{Path: MemoryPath})
	if err != nil {
		t.Fatalf("NewDatabase() error = %v", err)
	}
	defer first.Close()

	second, err := NewDatabase(Config{Path: MemoryPath})
	if err != nil {
		t.Fatalf("NewDatabase() second error = %v", err)
	}
	defer second.Close()

	if first == second {
		t.Error("in-memory databases should not be shared")
	}

	cache, err := NewCache(first, "mem_cache")
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}
	if err := cache.InitializeCache(); err != nil {
		t.Fatalf("InitializeCache() error = %v", err)
	}
	if err := cache.Set("k", "v", time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got, ok, err := cache.Get("k"); err != nil || !ok || got != "v" {
		t.Errorf("Get() = %q, %v, %v", got, ok, err)
	}
}

func TestNewDatabase_Errors(t *testing.T) {
	if _, err := NewDatabase(Config{}); err == nil {
		t.Error("NewDatabase() with empty path should fail")
	}

	db, err := NewDatabase(Config{Path: filepath.Join(t.TempDir(), "closed.db")})
	if err != nil {
		t.Fatalf("NewDatabase() error = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := db.ExecuteSchema("CREATE TABLE t (x INTEGER)"); err == nil {
		t.Error("ExecuteSchema() on a closed database should fail")
	}
	if err := db.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestNewCache_RejectsUnsafeTableNames(t *testing.T) {
	db, err := NewDatabase(Config{Path: MemoryPath})
	if err != nil {
		t.Fatalf("NewDatabase() error = %v", err)
	}
	defer db.Close()

	for _, name := range []string{"", "1cache", "cache; DROP TABLE x", "twitter-cache", "a.b"} {
		if _, err := NewCache(db, name); err == nil {
			t.Errorf("NewCache(%q) should fail", name)
		}
	}
	if _, err := NewCache(db, "twitter_cache"); err != nil {
		t.Errorf("NewCache(twitter_cache) error = %v", err)
	}
}
