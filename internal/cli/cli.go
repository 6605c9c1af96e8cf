// Package cli implements the bullet command-line interface.
//
// # Commands
//
//   - render: Render a chart file to SVG, HTML, PNG, PDF, JSON or text
//   - layout: Print the computed axis layout of a chart file
//   - convert: Convert a chart file between JSON, TOML and Excel
//   - preview: Explore a chart interactively in the terminal
//   - serve: Run the HTTP API
//   - cache: Manage the layout and artifact cache
//   - completion: Generate shell completion scripts
//
// # Configuration
//
// Defaults come from bullet.toml (see [config.Load]), overridden by BULLET_*
// environment variables and finally by flags. --config selects a file
// explicitly.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging; otherwise
// the level comes from the log.level setting.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/bullet/pkg/buildinfo"
	"github.com/matzehuels/bullet/pkg/cache"
	"github.com/matzehuels/bullet/pkg/config"
	"github.com/matzehuels/bullet/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "bullet"

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
	Config *config.Config

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Bullet lays out and renders bullet charts",
		Long: `Bullet is a CLI tool for rendering bullet charts: a single axis carrying
stacked value bars, secondary bars, target markers and a scale, with
positive and negative values on either side of a zero line.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return c.loadConfig() },
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: search for bullet.toml)")

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the configuration and applies its log level unless
// --verbose was given.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	if c.verbose {
		c.SetLogLevel(LogDebug)
	} else {
		c.SetLogLevel(cfg.LogLevel())
	}
	if cfg.File != "" {
		c.Logger.Debug("loaded config", "file", cfg.File)
	}
	return nil
}

// config returns the loaded configuration, loading defaults when a
// command runs without the root pre-run (as in tests).
func (c *CLI) config() (*config.Config, error) {
	if c.Config == nil {
		if err := c.loadConfig(); err != nil {
			return nil, err
		}
	}
	return c.Config, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	// Entries written by other releases may hold layouts in an older shape.
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.Version+":")
	runner := pipeline.NewRunner(store, keyer, c.Logger)
	runner.TTL = cfg.Cache.TTL
	return runner, nil
}

// newCache opens the configured cache backend. A file cache that cannot be
// created degrades to no caching rather than failing the command.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	if noCache {
		return cache.NewNullCache(), nil
	}
	store, err := cache.Open(ctx, cfg.CacheOptions())
	if err != nil {
		if cfg.Cache.Backend == cache.BackendFile {
			c.Logger.Warn("cache disabled", "error", err)
			return cache.NewNullCache(), nil
		}
		return nil, fmt.Errorf("open %s cache: %w", cfg.Cache.Backend, err)
	}
	return store, nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// defaultOptions returns pipeline options seeded from the render section
// of the configuration.
func (c *CLI) defaultOptions() pipeline.Options {
	opts := pipeline.Options{Logger: c.Logger}
	if cfg := c.Config; cfg != nil {
		opts.VizType = cfg.Render.VizType
		opts.Theme = cfg.Render.Theme
		opts.Width = cfg.Render.Width
		opts.Height = cfg.Render.Height
		opts.Formats = append([]string(nil), cfg.Render.Formats...)
	}
	return opts
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(strings.ToLower(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}
