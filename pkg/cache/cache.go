// Package cache provides the persistent store behind the index.
//
// Extraction results (the fields read from one POM) are expensive to
// recompute for remote repositories, so the index writes them through a
// [Cache] and reads them back after a restart or from another instance.
//
// # Backends
//
//   - [FileCache]: JSON files under a local directory (default)
//   - [RedisCache]: shared across instances through Redis
//   - [MongoCache]: shared across instances through a MongoDB collection
//   - [NullCache]: disables persistence
//
// # Keys
//
// Keys are built by a [Keyer] so that every backend agrees on layout:
//
//	k := cache.NewDefaultKeyer()
//	key := k.EntryKey("releases", "org.betonquest:betonquest", "2.1.0", rulesHash)
//
// [ScopedKeyer] prefixes every key, which lets several deployments share one
// Redis or MongoDB without colliding.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values by key.
//
// Implementations must be safe for concurrent use. A miss is reported as
// (nil, false, nil); errors are reserved for backend failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// HTTPKey is the key for a cached HTTP response body.
	HTTPKey(namespace, key string) string

	// EntryKey is the key for the extracted fields of one artifact version.
	// rulesHash identifies the rule set, so changing a mapping does not serve
	// stale fields.
	EntryKey(repository, coordinate, version, rulesHash string) string

	// EntryPrefix is the common prefix of all EntryKey values for one artifact.
	EntryPrefix(repository, coordinate string) string
}

// Key prefixes used by [DefaultKeyer].
const (
	PrefixHTTP  = "http:"
	PrefixEntry = "entry:"
)

// DefaultKeyer produces human-readable keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default Keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return PrefixHTTP + namespace + ":" + key
}

// EntryKey returns "entry:<repository>:<coordinate>:<version>:<rulesHash>".
func (k DefaultKeyer) EntryKey(repository, coordinate, version, rulesHash string) string {
	return k.EntryPrefix(repository, coordinate) + version + ":" + rulesHash
}

// EntryPrefix returns "entry:<repository>:<coordinate>:".
func (DefaultKeyer) EntryPrefix(repository, coordinate string) string {
	return PrefixEntry + repository + ":" + coordinate + ":"
}

// Lister is implemented by backends that can enumerate keys. It is used by
// the CLI to report and clear cache contents.
type Lister interface {
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// DeletePrefix removes every key starting with one of prefixes and returns
// how many were removed. Backends that cannot list keys remove nothing.
func DeletePrefix(ctx context.Context, c Cache, prefixes ...string) (int, error) {
	lister, ok := c.(Lister)
	if !ok {
		return 0, nil
	}
	n := 0
	for _, prefix := range prefixes {
		keys, err := lister.Keys(ctx, prefix)
		if err != nil {
			return n, err
		}
		for _, key := range keys {
			if err := c.Delete(ctx, key); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}
