package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bullet/internal/api"
	"github.com/matzehuels/bullet/pkg/observability"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout and render API over HTTP",
		Long: `Serve the layout and render API over HTTP.

Routes:
  GET  /health
  POST /api/v1/layout
  POST /api/v1/render/{format}

The listen address, timeouts and cache backend come from the [server] and
[cache] config sections.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config: :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runServe wires the runner, observability hooks and server, then blocks
// until ctx is cancelled.
func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	hooks := observability.NewLogHooks(c.Logger)
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	serverCfg := cfg.Server
	if addr != "" {
		serverCfg.Addr = addr
	}

	c.Logger.Info("starting server", "addr", serverCfg.Addr, "cache", cfg.Cache.Backend)
	return api.NewServer(runner, c.Logger, serverCfg, c.defaultOptions()).ListenAndServe(ctx)
}
