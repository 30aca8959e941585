package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/lepinkainen/twitterss/pkg/filesystem"
	"github.com/lepinkainen/twitterss/pkg/urlutils"
)

// LocalSink writes objects below a directory, for self-hosting behind a web server
type LocalSink struct {
	dir     string
	baseURL string
}

// NewLocalSink creates a sink rooted at dir. Without baseURL, public URLs are file URLs.
func NewLocalSink(dir, baseURL string) (*LocalSink, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve output directory: %w", err)
	}
	return &LocalSink{dir: abs, baseURL: baseURL}, nil
}

// Put writes the object atomically. Headers have no meaning on disk and are dropped.
func (s *LocalSink) Put(ctx context.Context, obj Object) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.path(obj.Key)
	if err != nil {
		return err
	}

	var perm os.FileMode = 0o600
	if obj.PublicRead {
		perm = 0o644
	}
	if err := filesystem.WriteFileAtomic(path, obj.Body, perm); err != nil {
		return fmt.Errorf("write %s: %w", obj.Key, err)
	}

	slog.Debug("Wrote object", "path", path, "bytes", len(obj.Body))
	return nil
}

// PublicURL returns the URL the object is served from
func (s *LocalSink) PublicURL(key string) string {
	if s.baseURL != "" {
		return urlutils.JoinPath(s.baseURL, key)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(filepath.Join(s.dir, filepath.FromSlash(key)))}
	// Join drops the slash that marks a folder key
	if (key == "" || strings.HasSuffix(key, "/")) && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

func (s *LocalSink) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if key == "" || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(s.dir, clean), nil
}
