package index

import (
	"maps"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/matzehuels/pommapper/pkg/errors"
)

// Cache is the in-memory artifact version cache.
//
// A Cache must be created with [NewCache]. All methods are safe for
// concurrent use.
type Cache struct {
	mu      sync.RWMutex // guards buckets (the map, not the snapshots)
	buckets map[string]*bucket
}

type bucket struct {
	snap atomic.Pointer[snapshot]
}

// snapshot is an immutable view of one artifact's entries.
type snapshot struct {
	entries []VersionEntry // first-recorded order
	index   map[string]int // MavenVersion -> position in entries
}

var emptySnapshot = &snapshot{index: map[string]int{}}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{buckets: make(map[string]*bucket)}
}

func (c *Cache) bucket(id string) *bucket {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.buckets[id]
}

func (c *Cache) bucketOrCreate(id string) *bucket {
	if b := c.bucket(id); b != nil {
		return b
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.buckets[id]; ok {
		return b
	}
	b := &bucket{}
	b.snap.Store(emptySnapshot)
	c.buckets[id] = b
	return b
}

// HasEntry reports whether an entry was ever recorded for id. It stays
// true after the id is invalidated.
func (c *Cache) HasEntry(id string) bool {
	return c.bucket(id) != nil
}

// Versions returns the entries of id in first-recorded order. The slice is
// a copy; an id without entries yields an empty, non-nil slice.
func (c *Cache) Versions(id string) []VersionEntry {
	b := c.bucket(id)
	if b == nil {
		return []VersionEntry{}
	}
	s := b.snap.Load()
	out := make([]VersionEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of entries cached for id.
func (c *Cache) Len(id string) int {
	b := c.bucket(id)
	if b == nil {
		return 0
	}
	return len(b.snap.Load().entries)
}

// IDs returns every id that has a bucket, sorted.
func (c *Cache) IDs() []string {
	c.mu.RLock()
	ids := make([]string, 0, len(c.buckets))
	for id := range c.buckets {
		ids = append(ids, id)
	}
	c.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// Record inserts e, or replaces the entry with the same artifact id and
// Maven version in place. Fields is copied.
func (c *Cache) Record(e VersionEntry) error {
	if e.Artifact == nil || e.Artifact.ID == "" {
		return errors.New(errors.ErrCodeInvalidEntry, "entry has no artifact")
	}
	if e.MavenVersion == "" {
		return errors.New(errors.ErrCodeInvalidEntry, "entry for %q has no maven version", e.Artifact.ID)
	}
	if e.Group == "" {
		return errors.New(errors.ErrCodeInvalidEntry, "entry %s@%s has no group", e.Artifact.ID, e.MavenVersion)
	}
	e.Fields = maps.Clone(e.Fields)
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}

	c.bucketOrCreate(e.Artifact.ID).update(func(s *snapshot) *snapshot {
		return s.with(e)
	})
	return nil
}

// Invalidate drops every entry of id and reports whether any existed.
func (c *Cache) Invalidate(id string) bool {
	b := c.bucket(id)
	if b == nil {
		return false
	}
	removed := false
	b.update(func(s *snapshot) *snapshot {
		removed = len(s.entries) > 0
		return emptySnapshot
	})
	return removed
}

// InvalidateVersion drops the entry of id with the given Maven version and
// reports whether it existed.
func (c *Cache) InvalidateVersion(id, mavenVersion string) bool {
	b := c.bucket(id)
	if b == nil {
		return false
	}
	removed := false
	b.update(func(s *snapshot) *snapshot {
		next, ok := s.without(mavenVersion)
		removed = ok
		return next
	})
	return removed
}

// update publishes fn(current) with a compare-and-swap loop. fn may run
// more than once and must not have side effects beyond its result.
func (b *bucket) update(fn func(*snapshot) *snapshot) {
	for {
		old := b.snap.Load()
		if b.snap.CompareAndSwap(old, fn(old)) {
			return
		}
	}
}

func (s *snapshot) with(e VersionEntry) *snapshot {
	next := &snapshot{
		entries: make([]VersionEntry, len(s.entries), len(s.entries)+1),
		index:   maps.Clone(s.index),
	}
	copy(next.entries, s.entries)
	if i, ok := next.index[e.MavenVersion]; ok {
		next.entries[i] = e
		return next
	}
	next.index[e.MavenVersion] = len(next.entries)
	next.entries = append(next.entries, e)
	return next
}

func (s *snapshot) without(mavenVersion string) (*snapshot, bool) {
	pos, ok := s.index[mavenVersion]
	if !ok {
		return s, false
	}
	next := &snapshot{
		entries: make([]VersionEntry, 0, len(s.entries)-1),
		index:   make(map[string]int, len(s.index)-1),
	}
	for i, e := range s.entries {
		if i == pos {
			continue
		}
		next.index[e.MavenVersion] = len(next.entries)
		next.entries = append(next.entries, e)
	}
	return next, true
}
