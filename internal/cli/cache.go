package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cybergraph/pkg/cache"
	cgerrors "github.com/matzehuels/cybergraph/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the rendered artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached artifacts",
		Long: `Remove all cached artifacts from the file cache.

The memory cache is dropped when the serve process exits. Redis entries
expire on their own after the configured TTL; clearing them is left to
the Redis server.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch c.cfg.Cache.Backend {
			case cache.BackendNone:
				printInfo("Caching is disabled")
				return nil
			case cache.BackendMemory:
				printInfo("The memory cache lives inside the serve process; restart it to clear")
				return nil
			case cache.BackendRedis:
				return cgerrors.New(cgerrors.ErrCodeUnsupported, "cache clear supports the file backend only; redis entries expire after %s", c.cfg.TTL())
			}

			dir, err := c.cacheDir()
			if err != nil {
				return err
			}
			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			count, err := fc.Clear()
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			printSuccess("Cleared %d cached artifacts", count)
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch c.cfg.Cache.Backend {
			case cache.BackendRedis:
				fmt.Fprintf(stdout, "redis://%s/%d\n", c.cfg.Cache.RedisAddr, c.cfg.Cache.RedisDB)
				return nil
			case cache.BackendMemory:
				printInfo("In memory, up to %d artifacts", c.cfg.Cache.MemoryEntries)
				return nil
			case cache.BackendNone:
				printInfo("Caching is disabled")
				return nil
			}
			dir, err := c.cacheDir()
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, dir)
			return nil
		},
	}
}

// cacheDir returns the configured file cache directory, or the per-user
// default (~/.cache/cybergraph on Linux).
func (c *CLI) cacheDir() (string, error) {
	if c.cfg.Cache.Dir != "" {
		return c.cfg.Cache.Dir, nil
	}
	dir, err := cache.DefaultDir()
	if err != nil {
		return "", fmt.Errorf("get cache dir: %w", err)
	}
	return dir, nil
}
