// Package config loads the twitterss configuration file.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"github.com/lepinkainen/twitterss/internal/pipeline"
	"github.com/lepinkainen/twitterss/internal/storage"
	"github.com/lepinkainen/twitterss/internal/syndicate"
	"github.com/lepinkainen/twitterss/internal/timeline"
	"github.com/lepinkainen/twitterss/internal/twitter"
	"github.com/lepinkainen/twitterss/pkg/feed"
	"github.com/lepinkainen/twitterss/pkg/filesystem"
	"github.com/lepinkainen/twitterss/pkg/urlutils"
)

// DefaultConfigFile is looked up in the working directory, then next to the executable
const DefaultConfigFile = "config.yaml"

// EnvPrefix prefixes environment overrides, e.g. TWITTERSS_TWITTER_BEARER_TOKEN
const EnvPrefix = "TWITTERSS"

// Source backends
const (
	SourceTwitter = "twitter"
	SourceFile    = "file"
)

// Storage backends
const (
	BackendS3    = "s3"
	BackendLocal = "local"
)

// Config holds the central application configuration
type Config struct {
	Twitter    TwitterConfig `mapstructure:"twitter"`
	Source     SourceConfig  `mapstructure:"source"`
	Storage    StorageConfig `mapstructure:"storage"`
	FeedFormat string        `mapstructure:"feed_format"`
	Language   string        `mapstructure:"language"`
	// CachePath is the SQLite cache for X API lookups; empty disables it
	CachePath string       `mapstructure:"cache_path"`
	Feeds     []FeedConfig `mapstructure:"feeds"`
}

// TwitterConfig holds X API credentials
type TwitterConfig struct {
	BearerToken       string        `mapstructure:"bearer_token"`
	AccessToken       string        `mapstructure:"access_token"`
	RefreshToken      string        `mapstructure:"refresh_token"`
	TokenExpiry       time.Time     `mapstructure:"token_expiry"`
	ClientID          string        `mapstructure:"client_id"`
	ClientSecret      string        `mapstructure:"client_secret"`
	Username          string        `mapstructure:"username"`
	APIBaseURL        string        `mapstructure:"api_base_url"`
	RequestsPerWindow int           `mapstructure:"requests_per_window"`
	Window            time.Duration `mapstructure:"window"`
}

// SourceConfig selects where timelines come from
type SourceConfig struct {
	Type       string `mapstructure:"type"`
	FixtureDir string `mapstructure:"fixture_dir"`
}

// StorageConfig describes where feeds are written
type StorageConfig struct {
	Backend      string `mapstructure:"backend"`
	Bucket       string `mapstructure:"bucket"`
	Folder       string `mapstructure:"folder"`
	Region       string `mapstructure:"region"`
	Endpoint     string `mapstructure:"endpoint"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
	FilenameSalt string `mapstructure:"filename_salt"`
	BaseURL      string `mapstructure:"base_url"`
	OutputDir    string `mapstructure:"output_dir"`
	CacheControl string `mapstructure:"cache_control"`
	PublicRead   bool   `mapstructure:"public_read"`
}

// FeedConfig is one generated feed
type FeedConfig struct {
	Title       string      `mapstructure:"title"`
	Lists       []string    `mapstructure:"lists"`
	Preferences Preferences `mapstructure:"preferences"`
}

// Preferences are the per-feed limits and filter flags
type Preferences struct {
	MaxItems               int  `mapstructure:"max_items"`
	ExcludeRetweets        bool `mapstructure:"exclude_retweets"`
	RequireRetweets        bool `mapstructure:"require_retweets"`
	ExcludeQuotes          bool `mapstructure:"exclude_quotes"`
	RequireQuotes          bool `mapstructure:"require_quotes"`
	ExcludeTweetsWithMedia bool `mapstructure:"exclude_tweets_with_media"`
	RequireTweetsWithMedia bool `mapstructure:"require_tweets_with_media"`
}

// DefaultMaxItems is the per-list fetch limit when a feed sets none
const DefaultMaxItems = 100

func setDefaults(v *viper.Viper) {
	v.SetDefault("twitter.bearer_token", "")
	v.SetDefault("twitter.access_token", "")
	v.SetDefault("twitter.refresh_token", "")
	v.SetDefault("twitter.client_id", "")
	v.SetDefault("twitter.client_secret", "")
	v.SetDefault("twitter.username", "")
	v.SetDefault("twitter.api_base_url", twitter.DefaultAPIBaseURL)
	v.SetDefault("twitter.requests_per_window", twitter.DefaultRequestsPerWindow)
	v.SetDefault("twitter.window", twitter.DefaultWindow)

	v.SetDefault("source.type", SourceTwitter)
	v.SetDefault("source.fixture_dir", "")

	v.SetDefault("storage.backend", BackendS3)
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.folder", "")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.use_path_style", false)
	v.SetDefault("storage.filename_salt", "")
	v.SetDefault("storage.base_url", "")
	v.SetDefault("storage.output_dir", "")
	v.SetDefault("storage.cache_control", syndicate.DefaultCacheControl)
	v.SetDefault("storage.public_read", true)

	v.SetDefault("feed_format", string(feed.RSS))
	v.SetDefault("language", syndicate.DefaultLanguage)
	v.SetDefault("cache_path", "")
}

// Load reads the configuration. An empty path searches for config.yaml in the
// working directory and then next to the executable; if neither exists only
// defaults and environment overrides apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		candidates := []string{DefaultConfigFile}
		if execPath, err := filesystem.GetDefaultPath(DefaultConfigFile); err == nil {
			candidates = append(candidates, execPath)
		}
		if found, err := filesystem.FindFile(candidates...); err == nil {
			path = found
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		strToBoolHook,
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if cfg.CachePath != "" && !filepath.IsAbs(cfg.CachePath) && v.ConfigFileUsed() != "" {
		cfg.CachePath = filepath.Join(filepath.Dir(v.ConfigFileUsed()), cfg.CachePath)
	}

	return &cfg, nil
}

// strToBoolHook accepts strtobool-style strings for boolean fields
func strToBoolHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Bool {
		return data, nil
	}
	return ParseBool(data.(string))
}

// ParseBool converts y, yes, t, true, on, 1 and n, no, f, false, off, 0
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "t", "true", "on", "1":
		return true, nil
	case "n", "no", "f", "false", "off", "0", "":
		return false, nil
	default:
		return false, fmt.Errorf("invalid truth value %q", s)
	}
}

// Validate reports every configuration problem at once
func (c *Config) Validate() error {
	var errs []error

	switch c.Source.Type {
	case SourceTwitter:
		tc := c.TwitterSource()
		if err := tc.Validate(); err != nil {
			errs = append(errs, err)
		}
	case SourceFile:
		if c.Source.FixtureDir == "" {
			errs = append(errs, errors.New("source.fixture_dir is required for the file source"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown source.type %q, available: %s",
			c.Source.Type, strings.Join(timeline.Names(), ", ")))
	}

	switch c.Storage.Backend {
	case BackendS3:
		if c.Storage.Bucket == "" {
			errs = append(errs, errors.New("storage.bucket is required for the s3 backend"))
		}
	case BackendLocal:
		if c.Storage.OutputDir == "" {
			errs = append(errs, errors.New("storage.output_dir is required for the local backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage.backend %q", c.Storage.Backend))
	}

	for key, value := range map[string]string{
		"storage.base_url":     c.Storage.BaseURL,
		"storage.endpoint":     c.Storage.Endpoint,
		"twitter.api_base_url": c.Twitter.APIBaseURL,
	} {
		if value != "" && !urlutils.IsHTTPURL(value) {
			errs = append(errs, fmt.Errorf("%s %q is not an http(s) URL", key, value))
		}
	}

	if _, err := feed.ParseFormat(c.FeedFormat); err != nil {
		errs = append(errs, fmt.Errorf("feed_format: %w", err))
	}

	if _, err := language.Parse(c.Language); err != nil {
		errs = append(errs, fmt.Errorf("language %q: %w", c.Language, err))
	}

	if len(c.Feeds) == 0 {
		errs = append(errs, errors.New("at least one feed is required"))
	}
	titles := make(map[string]bool)
	for i, f := range c.Feeds {
		switch {
		case f.Title == "":
			errs = append(errs, fmt.Errorf("feeds[%d]: title is required", i))
		case titles[f.Title]:
			errs = append(errs, fmt.Errorf("feeds[%d]: duplicate title %q", i, f.Title))
		}
		titles[f.Title] = true

		if len(f.Lists) == 0 {
			errs = append(errs, fmt.Errorf("feeds[%d]: at least one list is required", i))
		}
		if f.Preferences.MaxItems < 0 {
			errs = append(errs, fmt.Errorf("feeds[%d]: max_items must not be negative", i))
		}
	}

	return errors.Join(errs...)
}

// TwitterSource returns the X API source configuration
func (c *Config) TwitterSource() twitter.Config {
	return twitter.Config{
		BearerToken:       c.Twitter.BearerToken,
		AccessToken:       c.Twitter.AccessToken,
		RefreshToken:      c.Twitter.RefreshToken,
		TokenExpiry:       c.Twitter.TokenExpiry,
		ClientID:          c.Twitter.ClientID,
		ClientSecret:      c.Twitter.ClientSecret,
		Username:          c.Twitter.Username,
		APIBaseURL:        c.Twitter.APIBaseURL,
		RequestsPerWindow: c.Twitter.RequestsPerWindow,
		Window:            c.Twitter.Window,
		CachePath:         c.CachePath,
	}
}

// S3 returns the S3 sink configuration
func (c *Config) S3() storage.S3Config {
	return storage.S3Config{
		Bucket:       c.Storage.Bucket,
		Region:       c.Storage.Region,
		Endpoint:     c.Storage.Endpoint,
		UsePathStyle: c.Storage.UsePathStyle,
		BaseURL:      c.Storage.BaseURL,
	}
}

// Options returns the run options shared by every feed
func (c *Config) Options() (syndicate.Options, error) {
	format, err := feed.ParseFormat(c.FeedFormat)
	if err != nil {
		return syndicate.Options{}, err
	}
	return syndicate.Options{
		Folder:       c.Storage.Folder,
		Salt:         c.Storage.FilenameSalt,
		Format:       format,
		Language:     c.Language,
		CacheControl: c.Storage.CacheControl,
		PublicRead:   c.Storage.PublicRead,
	}, nil
}

// Feed returns the feed named title
func (c *Config) Feed(title string) (syndicate.Feed, error) {
	for _, f := range c.Feeds {
		if f.Title == title {
			return f.Feed(), nil
		}
	}
	return syndicate.Feed{}, fmt.Errorf("no feed titled %q", title)
}

// AllFeeds returns every configured feed in order
func (c *Config) AllFeeds() []syndicate.Feed {
	feeds := make([]syndicate.Feed, 0, len(c.Feeds))
	for _, f := range c.Feeds {
		feeds = append(feeds, f.Feed())
	}
	return feeds
}

// Feed converts the configuration into an immutable feed definition
func (f FeedConfig) Feed() syndicate.Feed {
	maxItems := f.Preferences.MaxItems
	if maxItems == 0 {
		maxItems = DefaultMaxItems
	}
	return syndicate.Feed{
		Title:    f.Title,
		Lists:    append([]string(nil), f.Lists...),
		MaxItems: maxItems,
		Filters:  f.Preferences.FilterConfig(),
	}
}

// FilterConfig returns the filter flags
func (p Preferences) FilterConfig() pipeline.FilterConfig {
	return pipeline.FilterConfig{
		ExcludeRetweets: p.ExcludeRetweets,
		RequireRetweets: p.RequireRetweets,
		ExcludeQuotes:   p.ExcludeQuotes,
		RequireQuotes:   p.RequireQuotes,
		ExcludeMedia:    p.ExcludeTweetsWithMedia,
		RequireMedia:    p.RequireTweetsWithMedia,
	}
}
