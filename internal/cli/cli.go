// Package cli implements the pommapper command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pommapper/pkg/buildinfo"
	"github.com/matzehuels/pommapper/pkg/cache"
	"github.com/matzehuels/pommapper/pkg/catalog"
	"github.com/matzehuels/pommapper/pkg/errors"
	"github.com/matzehuels/pommapper/pkg/index"
	"github.com/matzehuels/pommapper/pkg/observability"
	"github.com/matzehuels/pommapper/pkg/repository"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "pommapper"

	// configEnv names the environment variable holding the config path.
	configEnv = "POMMAPPER_CONFIG"

	// defaultConfigFile is used when neither --config nor configEnv is set.
	defaultConfigFile = "pommapper.toml"
)

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
	Logger     *log.Logger
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. Debug also routes observability
// events to the log.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		observability.NewLogHooks(c.Logger).Register()
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Pommapper indexes metadata from Maven POM files",
		Long:         `Pommapper extracts configured fields from the POM files of Maven artifacts and serves them, grouped by version line, over a small HTTP API.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "",
		"config file (default $"+configEnv+" or ./"+defaultConfigFile+")")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.queryCommand())
	root.AddCommand(c.lookupCommand())
	root.AddCommand(c.versionsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config
// =============================================================================

// resolveConfigPath applies the --config, environment, default precedence.
func (c *CLI) resolveConfigPath() string {
	if c.configPath != "" {
		return c.configPath
	}
	if p := os.Getenv(configEnv); p != "" {
		return p
	}
	return defaultConfigFile
}

func (c *CLI) loadConfig() (*catalog.Config, error) {
	path := c.resolveConfigPath()
	cfg, err := catalog.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded config", "path", path, "repositories", len(cfg.Repositories), "artifacts", len(cfg.Artifacts))
	return cfg, nil
}

// =============================================================================
// Factories
// =============================================================================

// newStore opens the persistent extraction store selected in cfg.
func newStore(ctx context.Context, cfg catalog.CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case catalog.BackendNone:
		return cache.NewNullCache(), nil
	case catalog.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		return rc, nil
	case catalog.BackendMongo:
		mc, err := cache.NewMongoCache(ctx, cache.MongoOptions{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
		})
		if err != nil {
			return nil, err
		}
		return mc, nil
	default:
		dir := cfg.Dir
		if dir == "" {
			d, err := cacheDir()
			if err != nil {
				return cache.NewNullCache(), nil
			}
			dir = d
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	}
}

// newRepositories builds the repository set. Remote repositories cache
// their metadata responses in store.
func newRepositories(cfg *catalog.Config, store cache.Cache) (*repository.Set, []*repository.Local, error) {
	var (
		repos   []repository.Repository
		watched []*repository.Local
	)
	for _, rc := range cfg.Repositories {
		if rc.URL != "" {
			r, err := repository.NewRemote(rc.Name, repository.RemoteOptions{
				URL:      rc.URL,
				Headers:  rc.Headers,
				Cache:    store,
				Attempts: rc.Attempts,
			})
			if err != nil {
				return nil, nil, err
			}
			repos = append(repos, r)
			continue
		}
		l, err := repository.NewLocal(rc.Name, rc.Path)
		if err != nil {
			return nil, nil, err
		}
		repos = append(repos, l)
		if rc.Watch {
			watched = append(watched, l)
		}
	}
	return repository.NewSet(repos...), watched, nil
}

// env bundles everything a command needs to answer queries.
type env struct {
	cfg     *catalog.Config
	store   cache.Cache
	repos   *repository.Set
	watched []*repository.Local
	indexer *index.Indexer
}

func (e *env) Close() {
	if e.indexer != nil {
		e.indexer.Close()
	}
	if e.store != nil {
		e.store.Close()
	}
}

// newEnv loads the config and wires store, repositories and indexer.
// queryTimeout overrides the configured wait when non-zero.
func (c *CLI) newEnv(ctx context.Context, queryTimeout time.Duration) (*env, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := newStore(ctx, cfg.Cache)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "open %s cache", cfg.Cache.Backend)
	}
	e := &env{cfg: cfg, store: store}

	e.repos, e.watched, err = newRepositories(cfg, store)
	if err != nil {
		e.Close()
		return nil, err
	}

	if queryTimeout == 0 {
		queryTimeout = cfg.Server.QueryTimeout.Duration
	}
	e.indexer, err = index.NewIndexer(index.IndexerConfig{
		Catalog:      catalog.New(cfg.Artifacts),
		Source:       e.repos,
		Store:        store,
		StoreTTL:     cfg.Cache.TTL.Duration,
		QueryTimeout: queryTimeout,
		MaxAge:       cfg.Index.MaxAge.Duration,
		Workers:      cfg.Index.Workers,
		Logger:       c.Logger,
	})
	if err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

// newNotifier connects the cross-instance notifier, or returns nil when
// notifications are not configured.
func (c *CLI) newNotifier(ctx context.Context, cfg catalog.NotifyConfig) (*repository.RedisNotifier, func(), error) {
	if cfg.RedisAddr == "" {
		return nil, func() {}, nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect notify redis %s", cfg.RedisAddr)
	}
	return repository.NewRedisNotifier(client, cfg.Channel, c.Logger), func() { client.Close() }, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/pommapper/).
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
