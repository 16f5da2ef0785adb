package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Errorf("Get(missing) = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "entry:a", []byte(`{"v":"1"}`), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "entry:a")
	if err != nil || !hit || string(data) != `{"v":"1"}` {
		t.Errorf("Get = %q, %v, %v", data, hit, err)
	}

	// Overwrite keeps a single file
	if err := c.Set(ctx, "entry:a", []byte("2"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, _, _ = c.Get(ctx, "entry:a")
	if string(data) != "2" {
		t.Errorf("Get after overwrite = %q", data)
	}

	if err := c.Delete(ctx, "entry:a"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "entry:a"); hit {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, "entry:a"); err != nil {
		t.Errorf("Delete(missing) error: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry file should be removed")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("Get(corrupt) = hit %v, err %v", hit, err)
	}
}

func TestFileCacheKeysAndClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"entry:r:g:a:2.0:h", "entry:r:g:a:1.0:h", "entry:r:g:b:1.0:h", "http:maven::x"} {
		if err := c.Set(ctx, k, []byte("v"), 0); err != nil {
			t.Fatal(err)
		}
	}

	keys, err := c.Keys(ctx, "entry:r:g:a:")
	if err != nil {
		t.Fatalf("Keys error: %v", err)
	}
	if len(keys) != 2 || keys[0] != "entry:r:g:a:1.0:h" || keys[1] != "entry:r:g:a:2.0:h" {
		t.Errorf("Keys = %v", keys)
	}

	all, _ := c.Keys(ctx, "")
	if len(all) != 4 {
		t.Errorf("Keys(\"\") = %v, want 4 keys", all)
	}

	n, err := c.Clear()
	if err != nil || n != 4 {
		t.Errorf("Clear = %d, %v; want 4", n, err)
	}
	if all, _ := c.Keys(ctx, ""); len(all) != 0 {
		t.Errorf("Keys after Clear = %v", all)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestHashFields(t *testing.T) {
	a := HashFields(map[string]string{"x": "/project/version", "y": "/project/parent/version"})
	b := HashFields(map[string]string{"y": "/project/parent/version", "x": "/project/version"})
	if a != b {
		t.Error("HashFields should not depend on map order")
	}
	if a == HashFields(map[string]string{"x": "/project/version"}) {
		t.Error("different rule sets should hash differently")
	}
	// Name/value boundaries are part of the hash
	if HashFields(map[string]string{"ab": "c"}) == HashFields(map[string]string{"a": "bc"}) {
		t.Error("HashFields should separate names from values")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	if got := k.HTTPKey("maven", "org/foo/foo/maven-metadata.xml"); got != "http:maven:org/foo/foo/maven-metadata.xml" {
		t.Errorf("HTTPKey = %s", got)
	}

	key := k.EntryKey("releases", "org.foo:foo", "1.0.0", "abc")
	if key != "entry:releases:org.foo:foo:1.0.0:abc" {
		t.Errorf("EntryKey = %s", key)
	}
	prefix := k.EntryPrefix("releases", "org.foo:foo")
	if key[:len(prefix)] != prefix {
		t.Errorf("EntryKey %q should start with EntryPrefix %q", key, prefix)
	}
	if k.EntryKey("releases", "org.foo:foo", "1.0.0", "def") == key {
		t.Error("different rule hashes should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "staging:")

	if got := scoped.HTTPKey("maven", "x"); got != "staging:http:maven:x" {
		t.Errorf("ScopedKeyer HTTPKey = %s", got)
	}
	if got := scoped.EntryKey("r", "g:a", "1", "h"); got != "staging:entry:r:g:a:1:h" {
		t.Errorf("ScopedKeyer EntryKey = %s", got)
	}
	if got := scoped.EntryPrefix("r", "g:a"); got != "staging:entry:r:g:a:" {
		t.Errorf("ScopedKeyer EntryPrefix = %s", got)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	if key := scoped.HTTPKey("test", "key"); key != "prefix:http:test:key" {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestGlobEscape(t *testing.T) {
	if got := globEscape(`a*b?c[d]e\`); got != `a\*b\?c\[d\]e\\` {
		t.Errorf("globEscape = %s", got)
	}
}

func TestDeletePrefix(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"entry:r:g:a:1.0:h", "entry:r:g:b:1.0:h", "http:maven::x", "other"} {
		if err := c.Set(ctx, k, []byte("v"), 0); err != nil {
			t.Fatal(err)
		}
	}

	n, err := DeletePrefix(ctx, c, PrefixEntry, PrefixHTTP)
	if err != nil || n != 3 {
		t.Fatalf("DeletePrefix = %d, %v; want 3", n, err)
	}
	if keys, _ := c.Keys(ctx, ""); len(keys) != 1 || keys[0] != "other" {
		t.Errorf("remaining keys = %v, want [other]", keys)
	}

	if n, err := DeletePrefix(ctx, NewNullCache(), PrefixEntry); n != 0 || err != nil {
		t.Errorf("DeletePrefix(null) = %d, %v", n, err)
	}
}
