package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cratecat/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the catalog cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend := c.Config.Cache.Backend
			if backend == cache.BackendNone {
				printInfo("Caching is disabled")
				return nil
			}

			cc, err := cache.New(cmd.Context(), c.Config.CacheOptions())
			if err != nil {
				return fmt.Errorf("open %s cache: %w", backend, err)
			}
			defer cc.Close()

			clearer, ok := cc.(cache.Clearer)
			if !ok {
				return fmt.Errorf("%s cache cannot be cleared", backend)
			}
			if err := clearer.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear %s cache: %w", backend, err)
			}

			printSuccess("Cleared %s cache", backend)
			printDetail("%s", cacheLocation(c.Config.CacheOptions()))
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where catalogs are cached",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), cacheLocation(c.Config.CacheOptions()))
			return nil
		},
	}
}

// cacheLocation describes where a backend keeps its entries.
func cacheLocation(opts cache.Options) string {
	switch opts.Backend {
	case cache.BackendFile:
		return opts.Dir
	case cache.BackendRedis:
		return opts.RedisURL + " (" + opts.Namespace + "*)"
	case cache.BackendMemory:
		return "memory (process lifetime)"
	default:
		return "none"
	}
}
