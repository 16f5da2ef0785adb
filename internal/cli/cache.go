package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pommapper/pkg/cache"
	"github.com/matzehuels/pommapper/pkg/catalog"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the extraction cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheConfig returns the configured cache settings, or the file-backend
// defaults when no config file can be loaded.
func (c *CLI) cacheConfig() catalog.CacheConfig {
	cfg, err := c.loadConfig()
	if err != nil {
		c.Logger.Debug("using default cache settings", "err", err)
		def := catalog.Config{}
		def.SetDefaults()
		return def.Cache
	}
	return cfg.Cache
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all persisted extraction results and HTTP responses",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.cacheConfig()
			if cfg.Backend == catalog.BackendNone {
				printWarning("Caching is disabled in the config")
				return nil
			}
			n, err := clearStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			printSuccess("Cleared %d cached entries", n)
			printDetail("Backend: %s", describeStore(cfg))
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache is stored",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(describeStore(c.cacheConfig()))
			return nil
		},
	}
}

func clearStore(ctx context.Context, cfg catalog.CacheConfig) (int, error) {
	store, err := newStore(ctx, cfg)
	if err != nil {
		return 0, err
	}
	defer store.Close()

	if fc, ok := store.(*cache.FileCache); ok {
		return fc.Clear()
	}
	return cache.DeletePrefix(ctx, store, cache.PrefixEntry, cache.PrefixHTTP)
}

// describeStore names the storage location of a cache configuration.
func describeStore(cfg catalog.CacheConfig) string {
	switch cfg.Backend {
	case catalog.BackendNone:
		return "none (caching disabled)"
	case catalog.BackendRedis:
		return fmt.Sprintf("redis://%s/%d", cfg.RedisAddr, cfg.RedisDB)
	case catalog.BackendMongo:
		return fmt.Sprintf("mongo %s.%s", cfg.MongoDatabase, cfg.MongoCollection)
	default:
		if cfg.Dir != "" {
			return cfg.Dir
		}
		dir, err := cacheDir()
		if err != nil {
			return "unavailable: " + err.Error()
		}
		return dir
	}
}
