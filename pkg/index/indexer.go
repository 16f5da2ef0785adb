package index

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/pommapper/pkg/cache"
	"github.com/matzehuels/pommapper/pkg/catalog"
	"github.com/matzehuels/pommapper/pkg/errors"
	"github.com/matzehuels/pommapper/pkg/observability"
	"github.com/matzehuels/pommapper/pkg/repository"
)

// Defaults applied by [NewIndexer].
const (
	DefaultQueryTimeout = 3 * time.Second
	DefaultWorkers      = 8
)

// IndexerConfig configures an [Indexer].
type IndexerConfig struct {
	Catalog   *catalog.Catalog // Required
	Source    Source           // Required
	Extractor Extractor        // Defaults to a POMExtractor over Source
	Cache     *Cache           // Defaults to NewCache()

	// Store persists extraction results. Nil disables persistence.
	Store    cache.Cache
	Keyer    cache.Keyer   // Defaults to cache.NewDefaultKeyer()
	StoreTTL time.Duration // Zero keeps results until deleted

	// QueryTimeout bounds how long a query waits for a refresh.
	// Negative waits until the refresh finishes.
	QueryTimeout time.Duration

	// MaxAge re-lists an artifact's versions when its last sync is older.
	// Zero keeps a synced artifact fresh until it is invalidated.
	MaxAge time.Duration

	Workers int // Concurrent extractions per sync
	Logger  *log.Logger
}

// Indexer materialises the cache from a repository and answers queries.
// All methods are safe for concurrent use.
type Indexer struct {
	catalog   *catalog.Catalog
	source    Source
	extractor Extractor
	cache     *Cache
	store     cache.Cache
	keyer     cache.Keyer
	storeTTL  time.Duration
	timeout   time.Duration
	maxAge    time.Duration
	workers   int
	logger    *log.Logger

	rulesHash map[string]string
	flight    singleflight.Group

	mu    sync.Mutex
	state map[string]*syncState

	bgCtx    context.Context
	bgCancel context.CancelFunc
	bg       sync.WaitGroup
}

type syncState struct {
	gen      uint64 // bumped on invalidation
	syncGen  uint64 // gen observed by the last completed sync
	synced   bool
	syncedAt time.Time
}

// NewIndexer creates an Indexer. Call Close to stop background refreshes.
func NewIndexer(cfg IndexerConfig) (*Indexer, error) {
	if cfg.Catalog == nil || cfg.Source == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "indexer needs a catalog and a source")
	}
	if cfg.Extractor == nil {
		x, err := NewPOMExtractor(cfg.Source, cfg.Catalog)
		if err != nil {
			return nil, err
		}
		cfg.Extractor = x
	}
	if cfg.Cache == nil {
		cfg.Cache = NewCache()
	}
	if cfg.Keyer == nil {
		cfg.Keyer = cache.NewDefaultKeyer()
	}
	if cfg.QueryTimeout == 0 {
		cfg.QueryTimeout = DefaultQueryTimeout
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}

	ix := &Indexer{
		catalog:   cfg.Catalog,
		source:    cfg.Source,
		extractor: cfg.Extractor,
		cache:     cfg.Cache,
		store:     cfg.Store,
		keyer:     cfg.Keyer,
		storeTTL:  cfg.StoreTTL,
		timeout:   cfg.QueryTimeout,
		maxAge:    cfg.MaxAge,
		workers:   cfg.Workers,
		logger:    cfg.Logger.WithPrefix("index"),
		rulesHash: make(map[string]string, cfg.Catalog.Len()),
		state:     make(map[string]*syncState),
	}
	for _, a := range cfg.Catalog.All() {
		ix.rulesHash[a.ID] = cache.HashFields(a.Fields)
	}
	ix.bgCtx, ix.bgCancel = context.WithCancel(context.Background())
	return ix, nil
}

// Cache returns the underlying version cache.
func (ix *Indexer) Cache() *Cache { return ix.cache }

// Catalog returns the artifact catalog.
func (ix *Indexer) Catalog() *catalog.Catalog { return ix.catalog }

// Close cancels background refreshes and waits for them to return.
func (ix *Indexer) Close() error {
	ix.bgCancel()
	ix.bg.Wait()
	return nil
}

// =============================================================================
// Freshness
// =============================================================================

func (ix *Indexer) stateOf(id string) *syncState {
	s, ok := ix.state[id]
	if !ok {
		s = &syncState{}
		ix.state[id] = s
	}
	return s
}

// Fresh reports whether id needs no refresh.
func (ix *Indexer) Fresh(id string) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	s, ok := ix.state[id]
	if !ok || !s.synced || s.syncGen != s.gen {
		return false
	}
	return ix.maxAge <= 0 || time.Since(s.syncedAt) < ix.maxAge
}

func (ix *Indexer) generation(id string) uint64 {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.stateOf(id).gen
}

func (ix *Indexer) markSynced(id string, gen uint64) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	s := ix.stateOf(id)
	s.synced = true
	s.syncGen = gen
	s.syncedAt = time.Now()
}

func (ix *Indexer) markStale(id string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.stateOf(id).gen++
}

// =============================================================================
// Sync
// =============================================================================

// Sync lists the versions of id and records every version that is not yet
// cached. Concurrent calls for the same id share one run.
//
// Versions whose extraction fails are logged and skipped; an entry recorded
// earlier for such a version stays. Sync fails only when the artifact is
// unknown or its versions cannot be listed.
func (ix *Indexer) Sync(ctx context.Context, id string) error {
	a, ok := ix.catalog.Get(id)
	if !ok {
		return errors.New(errors.ErrCodeArtifactNotFound, "unknown artifact id %q", id)
	}
	_, err, _ := ix.flight.Do(id, func() (any, error) {
		return nil, ix.sync(ctx, a)
	})
	return err
}

func (ix *Indexer) sync(ctx context.Context, a *catalog.Artifact) error {
	start := time.Now()
	gen := ix.generation(a.ID)
	observability.Index().OnSyncStart(ctx, a.ID)

	versions, err := ix.source.Versions(ctx, a)
	if err != nil {
		ix.logger.Warn("list versions failed", "id", a.ID, "repository", a.Repository, "err", err)
		observability.Index().OnSyncComplete(ctx, a.ID, 0, 0, time.Since(start), err)
		return err
	}

	cached := make(map[string]bool)
	for _, e := range ix.cache.Versions(a.ID) {
		cached[e.MavenVersion] = true
	}

	var (
		mu        sync.Mutex
		extracted int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.workers)
	for _, v := range versions {
		if cached[v.Version] {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if ix.load(gctx, a, v, gen) {
				mu.Lock()
				extracted++
				mu.Unlock()
			}
			return nil
		})
	}
	err = g.Wait()
	if err == nil {
		ix.markSynced(a.ID, gen)
		ix.logger.Debug("synced", "id", a.ID, "versions", len(versions), "extracted", extracted, "took", time.Since(start))
	}
	observability.Index().OnSyncComplete(ctx, a.ID, len(versions), extracted, time.Since(start), err)
	return err
}

// load records one version, from the store when possible. It reports
// whether an entry was recorded. Results are dropped when id was
// invalidated after gen was read, so the next sync extracts again.
func (ix *Indexer) load(ctx context.Context, a *catalog.Artifact, v repository.Version, gen uint64) bool {
	key := ix.keyer.EntryKey(a.Repository, a.Coordinate(), v.Version, ix.rulesHash[a.ID])

	fields, ok := ix.loadStored(ctx, key)
	if !ok {
		start := time.Now()
		observability.Index().OnExtractStart(ctx, a.ID, v.Version)
		var err error
		fields, err = ix.extractor.Extract(ctx, a, v)
		observability.Index().OnExtractComplete(ctx, a.ID, v.Version, time.Since(start), err)
		if err != nil {
			ix.logger.Warn("extraction failed", "id", a.ID, "version", v.Version, "pom", v.POM, "err", err)
			return false
		}
		if ix.generation(a.ID) != gen {
			ix.logger.Debug("dropping superseded extraction", "id", a.ID, "version", v.Version)
			return false
		}
		ix.saveStored(ctx, key, fields)
		if ix.generation(a.ID) != gen {
			// An invalidation may have deleted the key before the write landed.
			ix.deleteStoredKey(ctx, key)
			return false
		}
	}

	recorded, err := ix.publish(gen, VersionEntry{
		Artifact:     a,
		Group:        GroupTag(v.Base, a.GroupDepth),
		MavenVersion: v.Version,
		Fields:       fields,
		Jar:          v.Jar,
	})
	if err != nil {
		ix.logger.Warn("record failed", "id", a.ID, "version", v.Version, "err", err)
		return false
	}
	if !recorded {
		ix.logger.Debug("dropping superseded extraction", "id", a.ID, "version", v.Version)
	}
	return recorded
}

// publish records e unless its artifact was invalidated since gen. The
// check and the write happen under ix.mu, which invalidation also takes
// before touching the cache, so an invalidated result is never visible.
func (ix *Indexer) publish(gen uint64, e VersionEntry) (bool, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.stateOf(e.Artifact.ID).gen != gen {
		return false, nil
	}
	return true, ix.cache.Record(e)
}

func (ix *Indexer) loadStored(ctx context.Context, key string) (map[string]string, bool) {
	if ix.store == nil {
		return nil, false
	}
	data, hit, err := ix.store.Get(ctx, key)
	if err != nil {
		ix.logger.Debug("store read failed", "key", key, "err", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, "entry")
		return nil, false
	}
	var fields map[string]string
	if err := json.Unmarshal(data, &fields); err != nil {
		ix.logger.Debug("store entry corrupt", "key", key, "err", err)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "entry")
	return fields, true
}

func (ix *Indexer) saveStored(ctx context.Context, key string, fields map[string]string) {
	if ix.store == nil {
		return
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return
	}
	if err := ix.store.Set(ctx, key, data, ix.storeTTL); err != nil {
		ix.logger.Debug("store write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "entry", len(data))
}

// Warm syncs every catalog artifact. Failures are logged.
func (ix *Indexer) Warm(ctx context.Context) {
	start := time.Now()
	for _, a := range ix.catalog.All() {
		if ctx.Err() != nil {
			return
		}
		_ = ix.Sync(ctx, a.ID)
	}
	ix.logger.Info("index warmed", "artifacts", ix.catalog.Len(), "took", time.Since(start).Round(time.Millisecond))
}

// =============================================================================
// Queries
// =============================================================================

// Ensure refreshes id if it is stale, waiting at most the query timeout.
// A refresh that outlives the wait keeps running in the background.
func (ix *Indexer) Ensure(ctx context.Context, id string) error {
	if ix.Fresh(id) || ix.bgCtx.Err() != nil {
		return nil
	}

	done := make(chan error, 1)
	ix.bg.Add(1)
	go func() {
		defer ix.bg.Done()
		done <- ix.Sync(ix.bgCtx, id)
	}()

	if ix.timeout < 0 {
		select {
		case err := <-done:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	timer := time.NewTimer(ix.timeout)
	defer timer.Stop()
	select {
	case err := <-done:
		return err
	case <-timer.C:
		ix.logger.Debug("refresh still running, answering from cache", "id", id, "waited", ix.timeout)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Query answers a by-id query. Unknown ids fail with
// ErrCodeArtifactNotFound; an empty result is an empty slice.
func (ix *Indexer) Query(ctx context.Context, id string, q Query) ([]Group, error) {
	if _, ok := ix.catalog.Get(id); !ok {
		return nil, errors.New(errors.ErrCodeArtifactNotFound, "unknown artifact id %q", id)
	}
	if err := ix.Ensure(ctx, id); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		ix.logger.Warn("refresh failed, answering from cache", "id", id, "err", err)
	}
	return Resolve(ix.cache.Versions(id), q.Filter(), q.Limit), nil
}

// Entries returns the raw cached entries of id after ensuring freshness.
func (ix *Indexer) Entries(ctx context.Context, id string) ([]VersionEntry, error) {
	if _, ok := ix.catalog.Get(id); !ok {
		return nil, errors.New(errors.ErrCodeArtifactNotFound, "unknown artifact id %q", id)
	}
	if err := ix.Ensure(ctx, id); err != nil && ctx.Err() == nil {
		ix.logger.Warn("refresh failed", "id", id, "err", err)
	}
	return ix.cache.Versions(id), nil
}

// =============================================================================
// Invalidation
// =============================================================================

// Invalidate drops every cached and persisted entry of id. The next query
// re-extracts.
func (ix *Indexer) Invalidate(ctx context.Context, id string) {
	a, ok := ix.catalog.Get(id)
	if !ok {
		return
	}
	ix.markStale(id)
	removed := ix.cache.Invalidate(id)
	ix.deleteStored(ctx, ix.keyer.EntryPrefix(a.Repository, a.Coordinate()))
	observability.Index().OnInvalidate(ctx, id, "")
	ix.logger.Debug("invalidated", "id", id, "removed", removed)
}

// InvalidateVersion drops one version of id.
func (ix *Indexer) InvalidateVersion(ctx context.Context, id, mavenVersion string) {
	a, ok := ix.catalog.Get(id)
	if !ok {
		return
	}
	ix.markStale(id)
	removed := ix.cache.InvalidateVersion(id, mavenVersion)
	ix.deleteStoredKey(ctx, ix.keyer.EntryKey(a.Repository, a.Coordinate(), mavenVersion, ix.rulesHash[id]))
	observability.Index().OnInvalidate(ctx, id, mavenVersion)
	ix.logger.Debug("invalidated version", "id", id, "version", mavenVersion, "removed", removed)
}

func (ix *Indexer) deleteStoredKey(ctx context.Context, key string) {
	if ix.store == nil {
		return
	}
	if err := ix.store.Delete(ctx, key); err != nil {
		ix.logger.Debug("store delete failed", "key", key, "err", err)
	}
}

func (ix *Indexer) deleteStored(ctx context.Context, prefix string) {
	lister, ok := ix.store.(cache.Lister)
	if !ok {
		return
	}
	keys, err := lister.Keys(ctx, prefix)
	if err != nil {
		ix.logger.Debug("store list failed", "prefix", prefix, "err", err)
		return
	}
	for _, key := range keys {
		if err := ix.store.Delete(ctx, key); err != nil {
			ix.logger.Debug("store delete failed", "key", key, "err", err)
		}
	}
}

// HandleEvent invalidates whatever a repository change touches. Changes
// inside a release version directory drop that version; anything else
// (snapshot directories, artifact metadata) drops the whole artifact.
// Paths outside every tracked artifact are ignored.
func (ix *Indexer) HandleEvent(ctx context.Context, ev repository.Event) {
	a, dir, ok := ix.catalog.FindByFile(ev.Repository, ev.Path)
	if !ok {
		return
	}
	if dir == "" || (repository.Version{Base: dir}).IsSnapshot() {
		ix.Invalidate(ctx, a.ID)
		return
	}
	ix.InvalidateVersion(ctx, a.ID, dir)
}

// Watch applies events until ctx is cancelled or events is closed.
func (ix *Indexer) Watch(ctx context.Context, events <-chan repository.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			ix.HandleEvent(ctx, ev)
		}
	}
}
