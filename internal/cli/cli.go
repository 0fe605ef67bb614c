// Package cli implements the constel command-line interface.
//
// This package provides commands for viewing connection graphs interactively
// in the terminal, rendering them to files, serving the embedding HTTP API,
// and managing the pipeline cache. The CLI is built using cobra and supports
// verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - view: Explore a connection graph interactively (pan, zoom, hover)
//   - render: Generate SVG, PNG, DOT, or JSON artifacts
//   - serve: Run the embedding HTTP API
//   - cache: Manage the pipeline cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/constelviz/constel/pkg/buildinfo"
	"github.com/constelviz/constel/pkg/cache"
	"github.com/constelviz/constel/pkg/config"
	"github.com/constelviz/constel/pkg/httputil"
	"github.com/constelviz/constel/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "constel"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config
}

// New creates a new CLI instance with a default logger and loaded config.
func New(w io.Writer, level log.Level) *CLI {
	cfg, err := config.Load()
	c := &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
		Config: cfg,
	}
	if err != nil {
		c.Logger.Warn("ignoring config file", "err", err)
	}
	return c
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "constel",
		Short:        "Constel visualizes relationship graphs as constellations",
		Long:         `Constel renders the people, places, and concepts connected to a document as an interactive force-directed constellation, in the terminal or as image artifacts.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner honoring the configured cache backend
// and payload settings.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cch, nil, c.Logger,
		pipeline.WithClient(c.newPayloadClient(noCache))), nil
}

// newPayloadClient builds the HTTP client for payload URLs: bearer auth when
// the config carries a token, and a response cache on disk unless caching is
// off. A cache setup failure degrades to an uncached client.
func (c *CLI) newPayloadClient(noCache bool) *httputil.Client {
	var opts []httputil.ClientOption
	if token := c.Config.Payload.BearerToken; token != "" {
		opts = append(opts, httputil.WithBearerToken(token))
	}
	if !noCache && c.Config.Cache.Backend != config.BackendNone {
		dir := c.Config.Cache.Dir
		if dir == "" {
			dir, _ = cacheDir()
		}
		if dir != "" {
			if hc, err := httputil.NewCache(filepath.Join(dir, "http"), cache.TTLHTTP); err == nil {
				opts = append(opts, httputil.WithResponseCache(hc))
			} else {
				c.Logger.Warn("payload response cache disabled", "err", err)
			}
		}
	}
	return httputil.NewClient(opts...)
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache || c.Config.Cache.Backend == config.BackendNone {
		return cache.NewNullCache(), nil
	}
	if c.Config.Cache.Backend == config.BackendRedis {
		return cache.NewRedisCache(ctx,
			c.Config.Cache.RedisAddr,
			c.Config.Cache.RedisPassword,
			c.Config.Cache.RedisDB)
	}
	dir := c.Config.Cache.Dir
	if dir == "" {
		var err error
		dir, err = cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/constel/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// pipelineOptions builds pipeline options from the config file defaults.
// Flags override these per command.
func (c *CLI) pipelineOptions() pipeline.Options {
	return pipeline.Options{
		Width:  c.Config.Viewport.Width,
		Height: c.Config.Viewport.Height,
		Sim:    c.Config.Sim,
		Logger: c.Logger,
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}
