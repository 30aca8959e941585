package syndicate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lepinkainen/twitterss/internal/pipeline"
	"github.com/lepinkainen/twitterss/internal/storage"
	"github.com/lepinkainen/twitterss/internal/timeline"
	"github.com/lepinkainen/twitterss/internal/tweet"
	"github.com/lepinkainen/twitterss/pkg/feed"
)

// Upload headers for stored documents
const (
	DefaultCacheControl = "max-age=300"
	ContentEncoding     = "utf-8"
)

// Feed is one configured output document
type Feed struct {
	Title    string
	Lists    []string
	MaxItems int
	Filters  pipeline.FilterConfig
}

// Options are shared by every feed of a run
type Options struct {
	Folder       string
	Salt         string
	Format       feed.Format
	Language     string
	CacheControl string
	PublicRead   bool
	DryRun       bool
	// Now defaults to time.Now
	Now func() time.Time
}

// Result describes a generated feed
type Result struct {
	Title string
	Key   string
	URL   string
	Count int
	Bytes int
}

// Runner generates and stores feeds one after another
type Runner struct {
	source timeline.Source
	sink   storage.Sink
	opts   Options
}

// NewRunner creates a runner
func NewRunner(source timeline.Source, sink storage.Sink, opts Options) *Runner {
	if opts.Format == "" {
		opts.Format = feed.RSS
	}
	if opts.CacheControl == "" {
		opts.CacheControl = DefaultCacheControl
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Runner{source: source, sink: sink, opts: opts}
}

// Run generates every feed. A failing feed is skipped and nothing is stored for it;
// the failures are returned joined after all feeds were attempted.
func (r *Runner) Run(ctx context.Context, feeds []Feed) ([]Result, error) {
	owner, err := r.source.Account(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch account: %w", err)
	}
	slog.Debug("Resolved account", "id", owner.ID, "handle", owner.Handle)

	results := make([]Result, 0, len(feeds))
	var errs []error

	for _, f := range feeds {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		result, err := r.runFeed(ctx, owner, f)
		if err != nil {
			slog.Error("Feed generation failed", "feed", f.Title, "error", err)
			errs = append(errs, fmt.Errorf("feed %q: %w", f.Title, err))
			continue
		}
		results = append(results, result)
	}

	return results, errors.Join(errs...)
}

func (r *Runner) runFeed(ctx context.Context, owner tweet.User, f Feed) (Result, error) {
	key, url := r.Location(owner, f)

	doc, err := r.Build(ctx, owner, f)
	if err != nil {
		return Result{}, err
	}

	data, err := feed.Marshal(doc, r.opts.Format)
	if err != nil {
		return Result{}, fmt.Errorf("serialize: %w", err)
	}
	if err := feed.Validate(data, len(doc.Entries)); err != nil {
		return Result{}, fmt.Errorf("validate: %w", err)
	}

	result := Result{Title: f.Title, Key: key, URL: url, Count: len(doc.Entries), Bytes: len(data)}

	if r.opts.DryRun {
		slog.Info("Dry run, not saving feed", "feed", f.Title, "count", result.Count, "key", key, "url", url)
		return result, nil
	}

	err = r.sink.Put(ctx, storage.Object{
		Key:             key,
		Body:            data,
		ContentType:     r.opts.Format.ContentType(),
		CacheControl:    r.opts.CacheControl,
		ContentEncoding: ContentEncoding,
		PublicRead:      r.opts.PublicRead,
	})
	if err != nil {
		return Result{}, fmt.Errorf("store: %w", err)
	}

	slog.Info("Saved feed", "feed", f.Title, "count", result.Count, "url", url)
	return result, nil
}

// Build fetches the lists of a feed and assembles its document without storing it
func (r *Runner) Build(ctx context.Context, owner tweet.User, f Feed) (*feed.Document, error) {
	lists := make([]pipeline.List, 0, len(f.Lists))
	for _, name := range f.Lists {
		posts, err := r.source.ListTimeline(ctx, owner, name, f.MaxItems)
		if err != nil {
			return nil, fmt.Errorf("fetch list %q: %w", name, err)
		}
		slog.Debug("Fetched list", "feed", f.Title, "list", name, "posts", len(posts))
		lists = append(lists, pipeline.List{Name: name, Posts: posts})
	}

	posts := pipeline.Process(lists, f.Filters, f.MaxItems)

	doc := Assemble(Meta{
		Title:       f.Title,
		Link:        r.FolderURL(),
		Description: DefaultDescription(owner.Handle),
		Language:    r.opts.Language,
		Author:      owner.Handle,
	}, posts, r.opts.Now())

	if err := feed.ValidateDocument(doc); err != nil {
		return nil, fmt.Errorf("invalid feed: %w", err)
	}
	return doc, nil
}

// Location returns the object key and public URL of a feed
func (r *Runner) Location(owner tweet.User, f Feed) (key, url string) {
	filename := DeriveFilename(owner.ID, owner.Handle, f.Lists, r.opts.Salt, DefaultExtension)
	key = storage.ObjectKey(r.opts.Folder, filename)
	return key, r.sink.PublicURL(key)
}

// FolderURL is the public URL of the output folder, used as the feed link
func (r *Runner) FolderURL() string {
	folder := strings.Trim(r.opts.Folder, "/")
	if folder == "" {
		return r.sink.PublicURL("")
	}
	return r.sink.PublicURL(folder + "/")
}

// Account returns the account the runner's source acts as
func (r *Runner) Account(ctx context.Context) (tweet.User, error) {
	return r.source.Account(ctx)
}
