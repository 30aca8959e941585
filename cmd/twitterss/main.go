// Package main provides the CLI entry point for twitterss.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	kongyaml "github.com/alecthomas/kong-yaml"

	"github.com/lepinkainen/twitterss/configs"
	"github.com/lepinkainen/twitterss/internal/config"
	"github.com/lepinkainen/twitterss/internal/storage"
	"github.com/lepinkainen/twitterss/internal/syndicate"
	"github.com/lepinkainen/twitterss/internal/timeline"
	"github.com/lepinkainen/twitterss/pkg/preview"

	// Import sources to trigger init() self-registration
	_ "github.com/lepinkainen/twitterss/internal/twitter"
)

// CLI structure
var CLI struct {
	Config string `help:"Configuration file path (default: config.yaml in the working or executable directory)"`
	Debug  bool   `help:"Enable debug logging" default:"false"`

	Generate struct {
		Feed   string `help:"Only generate the feed with this title"`
		DryRun bool   `help:"Build and validate feeds without uploading them"`
	} `cmd:"generate" help:"Generate all configured feeds and upload them."`

	Preview struct {
		Feed  string `arg:"" help:"Feed title"`
		Index int    `help:"Output XML for specific item index (0-based) to stdout" default:"-1"`
	} `cmd:"preview" help:"Preview feed entries interactively."`

	Filename struct {
		Feed string `arg:"" help:"Feed title"`
	} `cmd:"filename" help:"Print the object key and public URL of a feed."`

	ExampleConfig struct{} `cmd:"example-config" help:"Print an annotated example configuration."`
}

func main() {
	// Parse CLI with Kong YAML configuration file loading
	kctx := kong.Parse(&CLI,
		kong.Name("twitterss"),
		kong.Description("Turns X list timelines into RSS/Atom feeds in object storage."),
		kong.Configuration(kongyaml.Loader, "config.yaml", "~/.twitterss/config.yaml"),
	)

	// Configure logging level based on debug flag
	if CLI.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	} else {
		slog.SetLogLoggerLevel(slog.LevelInfo)
	}

	if kctx.Command() == "example-config" {
		data, err := configs.Example()
		if err != nil {
			fatal("Failed to read example configuration", err)
		}
		_, _ = os.Stdout.Write(data)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		fatal("Failed to load configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		fatal("Invalid configuration", err)
	}

	runner, closeSource, err := newRunner(ctx, cfg, CLI.Generate.DryRun)
	if err != nil {
		fatal("Failed to initialize", err)
	}
	defer closeSource()

	switch kctx.Command() {
	case "generate":
		generate(ctx, cfg, runner, CLI.Generate.Feed)

	case "preview <feed>":
		previewFeed(ctx, cfg, runner, CLI.Preview.Feed, CLI.Preview.Index)

	case "filename <feed>":
		printLocation(ctx, cfg, runner, CLI.Filename.Feed)

	default:
		panic(kctx.Command())
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}

// newRunner wires the configured timeline source and storage sink.
// The returned func releases the source's resources.
func newRunner(ctx context.Context, cfg *config.Config, dryRun bool) (*syndicate.Runner, func(), error) {
	var (
		source timeline.Source
		err    error
	)
	switch cfg.Source.Type {
	case config.SourceFile:
		source, err = timeline.New("file", timeline.FileConfig{Dir: cfg.Source.FixtureDir})
	default:
		source, err = timeline.New("twitter", cfg.TwitterSource())
	}
	if err != nil {
		return nil, nil, fmt.Errorf("create %s source: %w", cfg.Source.Type, err)
	}
	closeSource := func() {
		if c, ok := source.(io.Closer); ok {
			if err := c.Close(); err != nil {
				slog.Warn("Failed to close source", "error", err)
			}
		}
	}

	var sink storage.Sink
	switch cfg.Storage.Backend {
	case config.BackendLocal:
		sink, err = storage.NewLocalSink(cfg.Storage.OutputDir, cfg.Storage.BaseURL)
	default:
		sink, err = storage.NewS3Sink(ctx, cfg.S3())
	}
	if err != nil {
		closeSource()
		return nil, nil, fmt.Errorf("create %s storage: %w", cfg.Storage.Backend, err)
	}

	opts, err := cfg.Options()
	if err != nil {
		closeSource()
		return nil, nil, err
	}
	opts.DryRun = dryRun

	return syndicate.NewRunner(source, sink, opts), closeSource, nil
}

// generate runs every feed, or only the named one
func generate(ctx context.Context, cfg *config.Config, runner *syndicate.Runner, title string) {
	feeds := cfg.AllFeeds()
	if title != "" {
		f, err := cfg.Feed(title)
		if err != nil {
			fatal("Unknown feed", err)
		}
		feeds = []syndicate.Feed{f}
	}

	slog.Debug("Generating feeds", "count", len(feeds))

	results, err := runner.Run(ctx, feeds)
	for _, r := range results {
		fmt.Printf("%s: %d entries, %d bytes -> %s\n", r.Title, r.Count, r.Bytes, r.URL)
	}
	if err != nil {
		fatal("Failed to generate feeds", err)
	}
}

// previewFeed builds a feed without storing it and shows it in the TUI
func previewFeed(ctx context.Context, cfg *config.Config, runner *syndicate.Runner, title string, index int) {
	f, err := cfg.Feed(title)
	if err != nil {
		fatal("Unknown feed", err)
	}

	owner, err := runner.Account(ctx)
	if err != nil {
		fatal("Failed to fetch account", err)
	}

	doc, err := runner.Build(ctx, owner, f)
	if err != nil {
		fatal("Failed to build feed", err)
	}

	opts, err := cfg.Options()
	if err != nil {
		fatal("Invalid configuration", err)
	}

	// If index is specified, output XML directly to stdout
	if index >= 0 {
		if index >= len(doc.Entries) {
			slog.Error("Index out of range", "index", index, "total", len(doc.Entries))
			os.Exit(1)
		}
		fmt.Println(preview.FormatXMLItem(doc, index, opts.Format))
		return
	}

	if err := preview.Run(doc, opts.Format); err != nil {
		fatal("Preview failed", err)
	}
}

// printLocation prints where a feed is stored
func printLocation(ctx context.Context, cfg *config.Config, runner *syndicate.Runner, title string) {
	f, err := cfg.Feed(title)
	if err != nil {
		fatal("Unknown feed", err)
	}

	owner, err := runner.Account(ctx)
	if err != nil {
		fatal("Failed to fetch account", err)
	}

	key, url := runner.Location(owner, f)
	fmt.Println(key)
	fmt.Println(url)
}
