package twitter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lepinkainen/twitterss/internal/timeline"
	"github.com/lepinkainen/twitterss/internal/tweet"
	"github.com/lepinkainen/twitterss/pkg/api"
	"github.com/lepinkainen/twitterss/pkg/database"
	"github.com/lepinkainen/twitterss/pkg/dbinterfaces"
)

const cacheTable = "twitter_cache"

// errListGone marks a list id the API no longer serves
var errListGone = errors.New("list no longer exists")

// Field selections requested for every timeline page
var (
	tweetExpansions = strings.Join([]string{
		"author_id",
		"attachments.media_keys",
		"referenced_tweets.id",
		"referenced_tweets.id.author_id",
		"referenced_tweets.id.attachments.media_keys",
	}, ",")
	tweetFields = "created_at,author_id,note_tweet,referenced_tweets,attachments"
	mediaFields = "url,preview_image_url,type"
	userFields  = "name,username"
)

// Client reads list timelines from the X API v2
type Client struct {
	api      *api.Client
	username string
	cache    dbinterfaces.Cache
	cacheTTL time.Duration
	// db is set when the client opened its own cache database
	db dbinterfaces.Database
}

var (
	_ timeline.Source = (*Client)(nil)
	_ io.Closer       = (*Client)(nil)
)

func init() {
	timeline.Register("twitter", &timeline.SourceInfo{
		Name:        "X API",
		Description: "Reads list timelines from the X API v2",
		Factory: func(config any) (timeline.Source, error) {
			switch cfg := config.(type) {
			case Config:
				return New(context.Background(), &cfg)
			case *Config:
				return New(context.Background(), cfg)
			default:
				return nil, fmt.Errorf("invalid config type for twitter source: %T", config)
			}
		},
	})
}

// New creates an X API client. The context is kept by the token source for refreshes.
func New(ctx context.Context, cfg *Config) (*Client, error) {
	c := *cfg
	c.setDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}

	client := &Client{
		api:      api.NewTwitterClient(c.APIBaseURL, newHTTPClient(ctx, &c), api.NewQuotaLimiter(c.RequestsPerWindow, c.Window)),
		username: c.Username,
		cache:    c.Cache,
		cacheTTL: c.ListCacheTTL,
	}

	if client.cache == nil && c.CachePath != "" {
		db, err := database.NewDatabase(database.Config{Path: c.CachePath})
		if err != nil {
			return nil, fmt.Errorf("open cache: %w", err)
		}
		cache, err := database.NewCache(db, cacheTable)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		if err := cache.InitializeCache(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("initialize cache: %w", err)
		}
		client.cache = cache
		client.db = db
	}

	if cleaner, ok := client.cache.(dbinterfaces.CleanupProvider); ok {
		if err := cleaner.CleanupExpired(); err != nil {
			slog.Warn("Failed to clean up expired cache entries", "error", err)
		}
	}

	return client, nil
}

// Close releases the cache database the client opened, if any
func (c *Client) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Account returns the authenticated user, or the configured username
func (c *Client) Account(ctx context.Context) (tweet.User, error) {
	path := "/2/users/me"
	cacheKey := "account:me"
	if c.username != "" {
		path = "/2/users/by/username/" + url.PathEscape(c.username)
		cacheKey = "account:" + strings.ToLower(c.username)
	}

	var user tweet.User
	if c.cachedJSON(cacheKey, &user) {
		return user, nil
	}

	var resp userResponse
	if err := c.api.GetJSON(ctx, path, url.Values{"user.fields": {userFields}}, &resp); err != nil {
		return tweet.User{}, fmt.Errorf("fetch account: %w", err)
	}
	if resp.Data.ID == "" {
		if err := joinAPIErrors(resp.Errors); err != nil {
			return tweet.User{}, fmt.Errorf("fetch account: %w", err)
		}
		return tweet.User{}, fmt.Errorf("fetch account: empty response")
	}

	user = tweet.User{ID: resp.Data.ID, Handle: resp.Data.Username, Name: resp.Data.Name}
	c.storeJSON(cacheKey, user)

	slog.Debug("Resolved account", "id", user.ID, "handle", user.Handle)
	return user, nil
}

// ListTimeline returns up to max posts of the owner's list, newest first
func (c *Client) ListTimeline(ctx context.Context, owner tweet.User, listName string, max int) ([]tweet.RawPost, error) {
	listID, cached, err := c.resolveList(ctx, owner, listName, true)
	if err != nil {
		return nil, err
	}

	if max <= 0 {
		max = maxPageSize
	}

	ix, data, err := c.fetchTimeline(ctx, listID, listName, max)
	if cached && errors.Is(err, errListGone) {
		// The list was deleted or recreated since its id was cached
		slog.Info("Cached list id is stale, resolving again", "list", listName, "id", listID)
		c.forgetList(owner, listName)

		if listID, _, err = c.resolveList(ctx, owner, listName, false); err != nil {
			return nil, err
		}
		ix, data, err = c.fetchTimeline(ctx, listID, listName, max)
	}
	if err != nil {
		return nil, err
	}

	if missing := ix.missingQuotes(data); len(missing) > 0 {
		if err := c.hydrate(ctx, ix, missing); err != nil {
			// Unresolved quotes render as unavailable
			slog.Warn("Failed to fetch nested quoted posts", "list", listName, "count", len(missing), "error", err)
		}
	}

	posts := make([]tweet.RawPost, 0, len(data))
	for i := range data {
		posts = append(posts, ix.rawPost(&data[i], 0))
	}
	return posts, nil
}

// fetchTimeline pages through a list timeline until max posts are collected.
// A list id the API no longer serves is reported as errListGone.
func (c *Client) fetchTimeline(ctx context.Context, listID, listName string, max int) (*index, []apiTweet, error) {
	ix := newIndex()
	var data []apiTweet
	token := ""

	for len(data) < max {
		query := url.Values{
			"max_results":  {strconv.Itoa(min(max-len(data), maxPageSize))},
			"expansions":   {tweetExpansions},
			"tweet.fields": {tweetFields},
			"media.fields": {mediaFields},
			"user.fields":  {userFields},
		}
		if token != "" {
			query.Set("pagination_token", token)
		}

		var page tweetsResponse
		if err := c.api.GetJSON(ctx, "/2/lists/"+url.PathEscape(listID)+"/tweets", query, &page); err != nil {
			var httpErr *api.HTTPError
			if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
				return nil, nil, fmt.Errorf("fetch list %s timeline: %w: %w", listID, errListGone, err)
			}
			return nil, nil, fmt.Errorf("fetch list %s timeline: %w", listID, err)
		}
		if len(page.Data) == 0 && len(page.Errors) > 0 {
			return nil, nil, fmt.Errorf("fetch list %s timeline: %w: %w", listID, errListGone, joinAPIErrors(page.Errors))
		}

		data = append(data, page.Data...)
		ix.add(page.Includes)

		slog.Debug("Fetched timeline page", "list", listName, "count", len(page.Data), "total", len(data))

		token = page.Meta.NextToken
		if token == "" || len(page.Data) == 0 {
			break
		}
	}

	if len(data) > max {
		data = data[:max]
	}
	return ix, data, nil
}

// hydrate fetches posts by id into the index
func (c *Client) hydrate(ctx context.Context, ix *index, ids []string) error {
	for start := 0; start < len(ids); start += maxPageSize {
		end := min(start+maxPageSize, len(ids))
		query := url.Values{
			"ids":          {strings.Join(ids[start:end], ",")},
			"expansions":   {"author_id,attachments.media_keys"},
			"tweet.fields": {tweetFields},
			"media.fields": {mediaFields},
			"user.fields":  {userFields},
		}

		var resp tweetsResponse
		if err := c.api.GetJSON(ctx, "/2/tweets", query, &resp); err != nil {
			return err
		}

		// Deleted or protected posts come back as partial errors
		for _, e := range resp.Errors {
			slog.Debug("Quoted post unavailable", "id", e.ResourceID, "reason", e.Error())
		}

		ix.add(resp.Includes)
		for _, t := range resp.Data {
			ix.tweets[t.ID] = t
		}
	}
	return nil
}

// resolveList finds the id of a list owned by owner by name or slug
// The second result reports whether the id came from the cache.
func (c *Client) resolveList(ctx context.Context, owner tweet.User, listName string, useCache bool) (string, bool, error) {
	slug := Slug(listName)
	cacheKey := listCacheKey(owner, listName)

	if c.cache != nil && useCache {
		id, ok, err := c.cache.Get(cacheKey)
		if err != nil {
			slog.Warn("Failed to read list cache", "key", cacheKey, "error", err)
		} else if ok {
			return id, true, nil
		}
	}

	token := ""
	for {
		query := url.Values{"max_results": {strconv.Itoa(maxPageSize)}}
		if token != "" {
			query.Set("pagination_token", token)
		}

		var resp listsResponse
		if err := c.api.GetJSON(ctx, "/2/users/"+url.PathEscape(owner.ID)+"/owned_lists", query, &resp); err != nil {
			return "", false, fmt.Errorf("fetch owned lists: %w", err)
		}
		if len(resp.Data) == 0 && len(resp.Errors) > 0 {
			return "", false, fmt.Errorf("fetch owned lists: %w", joinAPIErrors(resp.Errors))
		}

		for _, l := range resp.Data {
			if Slug(l.Name) == slug {
				if c.cache != nil {
					if err := c.cache.Set(cacheKey, l.ID, c.cacheTTL); err != nil {
						slog.Warn("Failed to write list cache", "key", cacheKey, "error", err)
					}
				}
				slog.Debug("Resolved list", "name", listName, "id", l.ID)
				return l.ID, false, nil
			}
		}

		token = resp.Meta.NextToken
		if token == "" {
			break
		}
	}

	return "", false, fmt.Errorf("%w: %s", timeline.ErrListNotFound, listName)
}

// forgetList drops a cached list id
func (c *Client) forgetList(owner tweet.User, listName string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Delete(listCacheKey(owner, listName)); err != nil {
		slog.Warn("Failed to drop stale list id", "list", listName, "error", err)
	}
}

func listCacheKey(owner tweet.User, listName string) string {
	return fmt.Sprintf("list:%s:%s", owner.ID, Slug(listName))
}

// Slug normalizes a list name the way list URLs do: lowercase, runs of
// non-alphanumerics collapsed to a single hyphen.
func Slug(name string) string {
	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		isWord := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_'
		if isWord {
			b.WriteRune(r)
			hyphen = false
			continue
		}
		if !hyphen && b.Len() > 0 {
			b.WriteByte('-')
			hyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func (c *Client) cachedJSON(key string, v any) bool {
	if c.cache == nil {
		return false
	}
	value, ok, err := c.cache.Get(key)
	if err != nil {
		slog.Warn("Failed to read cache", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(value), v); err != nil {
		slog.Warn("Discarding corrupt cache entry", "key", key, "error", err)
		return false
	}
	return true
}

func (c *Client) storeJSON(key string, v any) {
	if c.cache == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.cache.Set(key, string(data), c.cacheTTL); err != nil {
		slog.Warn("Failed to write cache", "key", key, "error", err)
	}
}
