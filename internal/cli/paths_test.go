package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/pommapper/pkg/cache"
	"github.com/matzehuels/pommapper/pkg/catalog"
)

func TestCacheDir(t *testing.T) {
	t.Run("xdg", func(t *testing.T) {
		xdg := t.TempDir()
		t.Setenv("XDG_CACHE_HOME", xdg)

		dir, err := cacheDir()
		if err != nil {
			t.Fatalf("cacheDir() error: %v", err)
		}
		if want := filepath.Join(xdg, appName); dir != want {
			t.Errorf("cacheDir() = %q, want %q", dir, want)
		}
	})

	t.Run("home", func(t *testing.T) {
		t.Setenv("XDG_CACHE_HOME", "")

		dir, err := cacheDir()
		if err != nil {
			t.Fatalf("cacheDir() error: %v", err)
		}
		home, _ := os.UserHomeDir()
		if want := filepath.Join(home, ".cache", appName); dir != want {
			t.Errorf("cacheDir() = %q, want %q", dir, want)
		}
	})
}

func TestNewStoreDefaultDir(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	s, err := newStore(context.Background(), catalog.CacheConfig{Backend: catalog.BackendFile})
	if err != nil {
		t.Fatalf("newStore() error: %v", err)
	}
	defer s.Close()

	fc, ok := s.(*cache.FileCache)
	if !ok {
		t.Fatalf("newStore() = %T, want *cache.FileCache", s)
	}
	if !strings.HasPrefix(fc.Dir(), xdg) {
		t.Errorf("Dir() = %q, want under %q", fc.Dir(), xdg)
	}
	if describeStore(catalog.CacheConfig{Backend: catalog.BackendFile}) != fc.Dir() {
		t.Errorf("describeStore() disagrees with store dir %q", fc.Dir())
	}
}
