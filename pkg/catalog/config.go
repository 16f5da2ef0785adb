package catalog

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/pommapper/pkg/errors"
	"github.com/matzehuels/pommapper/pkg/pom"
)

// Cache backends understood by [CacheConfig.Backend].
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Defaults applied by [Config.SetDefaults].
const (
	DefaultAddr            = ":8080"
	DefaultBasePath        = "/api/pommapper"
	DefaultQueryTimeout    = 3 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultWorkers         = 8
	DefaultCacheTTL        = 7 * 24 * time.Hour
	DefaultNotifyChannel   = "pommapper:invalidate"
	DefaultMongoDatabase   = "pommapper"
	DefaultMongoCollection = "extractions"
)

// Duration is a time.Duration written as a string ("3s", "168h") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid duration %q", string(text))
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the complete pommapper configuration file.
type Config struct {
	Server       ServerConfig       `toml:"server"`
	Index        IndexConfig        `toml:"index"`
	Cache        CacheConfig        `toml:"cache"`
	Notify       NotifyConfig       `toml:"notify"`
	Repositories []RepositoryConfig `toml:"repositories"`
	Artifacts    []Artifact         `toml:"artifacts"`
}

// ServerConfig configures the HTTP query surface.
type ServerConfig struct {
	Addr            string   `toml:"addr"`
	BasePath        string   `toml:"base_path"`
	QueryTimeout    Duration `toml:"query_timeout"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

// IndexConfig configures cache materialisation.
type IndexConfig struct {
	Workers int      `toml:"workers"`
	Warm    *bool    `toml:"warm"`
	MaxAge  Duration `toml:"max_age"` // Resync artifacts older than this on query; zero disables
}

// WarmOnStart reports whether all artifacts are indexed at startup (default true).
func (c IndexConfig) WarmOnStart() bool {
	return c.Warm == nil || *c.Warm
}

// CacheConfig selects the persistent store for extraction results.
type CacheConfig struct {
	Backend         string   `toml:"backend"`
	Dir             string   `toml:"dir"`
	TTL             Duration `toml:"ttl"`
	RedisAddr       string   `toml:"redis_addr"`
	RedisPassword   string   `toml:"redis_password"`
	RedisDB         int      `toml:"redis_db"`
	MongoURI        string   `toml:"mongo_uri"`
	MongoDatabase   string   `toml:"mongo_database"`
	MongoCollection string   `toml:"mongo_collection"`
}

// NotifyConfig enables cross-instance invalidation over Redis pub/sub.
// Notifications are disabled when RedisAddr is empty.
type NotifyConfig struct {
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	Channel       string `toml:"channel"`
}

// RepositoryConfig declares one Maven repository. Exactly one of Path
// (local directory in Maven layout) or URL (remote HTTP repository) is set.
type RepositoryConfig struct {
	Name     string            `toml:"name"`
	Path     string            `toml:"path"`
	URL      string            `toml:"url"`
	Watch    bool              `toml:"watch"`
	Headers  map[string]string `toml:"headers"`  // Extra request headers for remote repositories
	Attempts int               `toml:"attempts"` // Tries per remote request; 0 keeps the default of 3
}

// LoadConfig reads, defaults and validates a TOML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	return ParseConfig(data)
}

// ParseConfig decodes TOML data, applies defaults and validates the result.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown config key %q", undecoded[0].String())
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills zero values with their documented defaults.
func (c *Config) SetDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.BasePath == "" {
		c.Server.BasePath = DefaultBasePath
	}
	if c.Server.QueryTimeout.Duration == 0 {
		c.Server.QueryTimeout.Duration = DefaultQueryTimeout
	}
	if c.Server.ShutdownTimeout.Duration == 0 {
		c.Server.ShutdownTimeout.Duration = DefaultShutdownTimeout
	}
	if c.Index.Workers <= 0 {
		c.Index.Workers = DefaultWorkers
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = BackendFile
	}
	if c.Cache.TTL.Duration == 0 {
		c.Cache.TTL.Duration = DefaultCacheTTL
	}
	if c.Cache.MongoDatabase == "" {
		c.Cache.MongoDatabase = DefaultMongoDatabase
	}
	if c.Cache.MongoCollection == "" {
		c.Cache.MongoCollection = DefaultMongoCollection
	}
	if c.Notify.Channel == "" {
		c.Notify.Channel = DefaultNotifyChannel
	}
}

// Validate checks repositories, artifacts and cache settings for consistency.
func (c *Config) Validate() error {
	repos := make(map[string]bool, len(c.Repositories))
	for _, r := range c.Repositories {
		if r.Name == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "repository name cannot be empty")
		}
		if repos[r.Name] {
			return errors.New(errors.ErrCodeInvalidConfig, "duplicate repository %q", r.Name)
		}
		repos[r.Name] = true
		if r.Attempts < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "repository %q: attempts cannot be negative", r.Name)
		}
		switch {
		case r.Path == "" && r.URL == "":
			return errors.New(errors.ErrCodeInvalidConfig, "repository %q needs a path or a url", r.Name)
		case r.Path != "" && r.URL != "":
			return errors.New(errors.ErrCodeInvalidConfig, "repository %q cannot have both path and url", r.Name)
		case r.URL != "":
			if err := errors.ValidateURL(r.URL); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidConfig, err, "repository %q", r.Name)
			}
			if r.Watch {
				return errors.New(errors.ErrCodeInvalidConfig, "repository %q: watch is only supported for local paths", r.Name)
			}
		}
	}

	ids := make(map[string]bool, len(c.Artifacts))
	paths := make(map[string]string, len(c.Artifacts)) // repository + path -> id
	for _, a := range c.Artifacts {
		if err := errors.ValidateArtifactID(a.ID); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "artifact")
		}
		if ids[a.ID] {
			return errors.New(errors.ErrCodeInvalidConfig, "duplicate artifact id %q", a.ID)
		}
		ids[a.ID] = true
		if !repos[a.Repository] {
			return errors.New(errors.ErrCodeInvalidConfig, "artifact %q references unknown repository %q", a.ID, a.Repository)
		}
		if err := errors.ValidateCoordinatePart("group_id", a.GroupID); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "artifact %q", a.ID)
		}
		if err := errors.ValidateCoordinatePart("artifact_id", a.ArtifactID); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "artifact %q", a.ID)
		}
		key := pathKey(a.Repository, a.Path())
		if other, dup := paths[key]; dup {
			return errors.New(errors.ErrCodeInvalidConfig, "artifacts %q and %q both map %s in repository %q", other, a.ID, a.Coordinate(), a.Repository)
		}
		paths[key] = a.ID
		if a.GroupDepth < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "artifact %q: group_depth cannot be negative", a.ID)
		}
		if _, err := pom.Compile(a.Fields); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "artifact %q", a.ID)
		}
	}

	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache backend redis needs redis_addr")
		}
	case BackendMongo:
		if c.Cache.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache backend mongo needs mongo_uri")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Index.MaxAge.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "index max_age cannot be negative")
	}
	return nil
}
