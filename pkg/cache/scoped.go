package cache

// ScopedKeyer wraps a Keyer with a prefix for deployment isolation.
// Several pommapper instances serving different catalogs can share one
// Redis or MongoDB as long as each uses its own prefix.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// EntryKey generates a prefixed key for extraction results.
func (k *ScopedKeyer) EntryKey(repository, coordinate, version, rulesHash string) string {
	return k.prefix + k.inner.EntryKey(repository, coordinate, version, rulesHash)
}

// EntryPrefix generates the prefixed common prefix of an artifact's entries.
func (k *ScopedKeyer) EntryPrefix(repository, coordinate string) string {
	return k.prefix + k.inner.EntryPrefix(repository, coordinate)
}
