package timeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lepinkainen/twitterss/internal/tweet"
)

// FileConfig configures the YAML fixture source.
// Dir holds account.yaml and one <list>.yaml per list.
type FileConfig struct {
	Dir string
}

// FileSource reads timelines from YAML files
type FileSource struct {
	dir string
}

func init() {
	Register("file", &SourceInfo{
		Name:        "File",
		Description: "Reads list timelines from YAML fixture files",
		Factory: func(config any) (Source, error) {
			switch cfg := config.(type) {
			case FileConfig:
				return NewFileSource(cfg.Dir)
			case *FileConfig:
				return NewFileSource(cfg.Dir)
			default:
				return nil, fmt.Errorf("invalid config type for file source: %T", config)
			}
		},
	})
}

// NewFileSource creates a file source rooted at dir
func NewFileSource(dir string) (*FileSource, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("fixture directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("fixture path %s is not a directory", dir)
	}
	return &FileSource{dir: dir}, nil
}

// Account reads account.yaml
func (s *FileSource) Account(_ context.Context) (tweet.User, error) {
	var user tweet.User
	if err := s.decode("account.yaml", &user); err != nil {
		return tweet.User{}, fmt.Errorf("read account: %w", err)
	}
	if user.ID == "" || user.Handle == "" {
		return tweet.User{}, errors.New("account.yaml must set id and handle")
	}
	return user, nil
}

// ListTimeline reads <listName>.yaml and returns at most max posts
func (s *FileSource) ListTimeline(ctx context.Context, _ tweet.User, listName string, max int) ([]tweet.RawPost, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if listName == "" || strings.ContainsAny(listName, `/\`) || listName == "." || listName == ".." {
		return nil, fmt.Errorf("invalid list name %q", listName)
	}

	var posts []tweet.RawPost
	if err := s.decode(listName+".yaml", &posts); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrListNotFound, listName)
		}
		return nil, fmt.Errorf("read list %q: %w", listName, err)
	}

	if max > 0 && len(posts) > max {
		posts = posts[:max]
	}
	return posts, nil
}

func (s *FileSource) decode(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, v)
}
