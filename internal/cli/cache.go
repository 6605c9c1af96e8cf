package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bullet/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the layout and artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached layouts and artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			store, err := c.newCache(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer store.Close()

			clearer, ok := store.(cache.Clearer)
			if !ok {
				printInfo("Cache backend %q has nothing to clear", cfg.Cache.Backend)
				return nil
			}
			n, err := clearer.Clear(cmd.Context())
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess("Cleared %d cached entries", n)
			printDetail("Backend: %s", cacheLocation(cfg.Cache.Backend, cfg.Cache.Dir, cfg.Cache.Redis.Addr, cfg.Cache.Mongo.URI))
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache location",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			fmt.Println(cacheLocation(cfg.Cache.Backend, cfg.Cache.Dir, cfg.Cache.Redis.Addr, cfg.Cache.Mongo.URI))
			return nil
		},
	}
}

// cacheLocation describes where a backend keeps its entries.
func cacheLocation(backend, dir, redisAddr, mongoURI string) string {
	switch backend {
	case cache.BackendFile:
		return dir
	case cache.BackendRedis:
		return "redis://" + redisAddr
	case cache.BackendMongo:
		return mongoURI
	}
	return backend
}
