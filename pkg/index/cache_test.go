package index

import (
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/matzehuels/pommapper/pkg/catalog"
	"github.com/matzehuels/pommapper/pkg/errors"
)

var fooArtifact = &catalog.Artifact{ID: "Foo", Repository: "releases", GroupID: "org.foo", ArtifactID: "foo"}

func entry(a *catalog.Artifact, group, maven string) VersionEntry {
	return VersionEntry{
		Artifact:     a,
		Group:        group,
		MavenVersion: maven,
		Fields:       map[string]string{"version": maven},
		Jar:          "org/foo/foo/" + maven + "/foo-" + maven + ".jar",
	}
}

func TestCacheRoundTrip(t *testing.T) {
	c := NewCache()
	if c.HasEntry("Foo") {
		t.Fatal("HasEntry on empty cache")
	}
	if got := c.Versions("Foo"); got == nil || len(got) != 0 {
		t.Fatalf("Versions(unknown) = %#v, want empty non-nil", got)
	}

	e := entry(fooArtifact, "1.0", "1.0.2")
	if err := c.Record(e); err != nil {
		t.Fatalf("Record error: %v", err)
	}
	if !c.HasEntry("Foo") {
		t.Error("HasEntry after Record = false")
	}
	got := c.Versions("Foo")
	if len(got) != 1 || !reflect.DeepEqual(got[0], e) {
		t.Errorf("Versions = %#v, want [%#v]", got, e)
	}
}

func TestCacheRecordReplaces(t *testing.T) {
	c := NewCache()
	_ = c.Record(entry(fooArtifact, "1.0", "1.0.2"))
	_ = c.Record(entry(fooArtifact, "1.0", "1.0.5"))

	updated := entry(fooArtifact, "1.0", "1.0.2")
	updated.Fields = map[string]string{"version": "patched"}
	if err := c.Record(updated); err != nil {
		t.Fatal(err)
	}

	got := c.Versions("Foo")
	if len(got) != 2 {
		t.Fatalf("Versions = %d entries, want 2", len(got))
	}
	if got[0].MavenVersion != "1.0.2" || got[0].Fields["version"] != "patched" {
		t.Errorf("replaced entry = %+v, want patched 1.0.2 in first position", got[0])
	}

	// Idempotent
	_ = c.Record(updated)
	if c.Len("Foo") != 2 {
		t.Errorf("Len after repeated Record = %d, want 2", c.Len("Foo"))
	}
}

func TestCacheRecordCopiesFields(t *testing.T) {
	c := NewCache()
	e := entry(fooArtifact, "1.0", "1.0.2")
	_ = c.Record(e)
	e.Fields["version"] = "mutated"

	if got := c.Versions("Foo")[0].Fields["version"]; got != "1.0.2" {
		t.Errorf("cached field changed through caller map: %q", got)
	}
}

func TestCacheRecordRejectsIncompleteEntries(t *testing.T) {
	c := NewCache()
	tests := map[string]VersionEntry{
		"no artifact": {Group: "1.0", MavenVersion: "1.0"},
		"empty id":    {Artifact: &catalog.Artifact{}, Group: "1.0", MavenVersion: "1.0"},
		"no version":  {Artifact: fooArtifact, Group: "1.0"},
		"no group":    {Artifact: fooArtifact, MavenVersion: "1.0"},
	}
	for name, e := range tests {
		if err := c.Record(e); !errors.Is(err, errors.ErrCodeInvalidEntry) {
			t.Errorf("%s: Record error = %v, want INVALID_ENTRY", name, err)
		}
	}
	if c.HasEntry("Foo") {
		t.Error("rejected entries must not create state")
	}
}

func TestCacheInvalidate(t *testing.T) {
	c := NewCache()
	_ = c.Record(entry(fooArtifact, "1.0", "1.0.2"))
	_ = c.Record(entry(fooArtifact, "1.0", "1.0.5"))
	_ = c.Record(entry(fooArtifact, "1.0", "1.0.7"))

	if !c.InvalidateVersion("Foo", "1.0.5") {
		t.Error("InvalidateVersion(existing) = false")
	}
	if c.InvalidateVersion("Foo", "1.0.5") {
		t.Error("InvalidateVersion(removed) = true")
	}
	got := c.Versions("Foo")
	if len(got) != 2 || got[0].MavenVersion != "1.0.2" || got[1].MavenVersion != "1.0.7" {
		t.Errorf("Versions after InvalidateVersion = %+v", got)
	}

	// Re-record after removal appends
	_ = c.Record(entry(fooArtifact, "1.0", "1.0.5"))
	if got := c.Versions("Foo"); got[2].MavenVersion != "1.0.5" {
		t.Errorf("re-recorded entry at %+v", got)
	}

	if !c.Invalidate("Foo") {
		t.Error("Invalidate = false")
	}
	if c.Invalidate("Foo") {
		t.Error("Invalidate on empty bucket = true")
	}
	if c.Len("Foo") != 0 {
		t.Errorf("Len after Invalidate = %d", c.Len("Foo"))
	}
	if !c.HasEntry("Foo") {
		t.Error("HasEntry should stay true after Invalidate")
	}
	if c.Invalidate("Unknown") || c.InvalidateVersion("Unknown", "1") {
		t.Error("invalidating unknown id reported removal")
	}
}

func TestCacheVersionsIsSnapshot(t *testing.T) {
	c := NewCache()
	_ = c.Record(entry(fooArtifact, "1.0", "1.0.2"))
	before := c.Versions("Foo")
	_ = c.Record(entry(fooArtifact, "1.0", "1.0.5"))

	if len(before) != 1 {
		t.Errorf("earlier snapshot changed: %d entries", len(before))
	}
	before[0].MavenVersion = "x"
	if c.Versions("Foo")[0].MavenVersion != "1.0.2" {
		t.Error("modifying a returned slice changed the cache")
	}
}

func TestCacheIDs(t *testing.T) {
	c := NewCache()
	bar := &catalog.Artifact{ID: "Bar"}
	_ = c.Record(entry(fooArtifact, "1.0", "1.0"))
	_ = c.Record(entry(bar, "1.0", "1.0"))
	if got := c.IDs(); !reflect.DeepEqual(got, []string{"Bar", "Foo"}) {
		t.Errorf("IDs = %v", got)
	}
}

func TestCacheConcurrentUpserts(t *testing.T) {
	const n = 200
	c := NewCache()
	other := &catalog.Artifact{ID: "Other"}

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := c.Record(entry(fooArtifact, "1.0", fmt.Sprintf("1.0.%d", i))); err != nil {
				t.Error(err)
			}
		}()
		go func() {
			defer wg.Done()
			_ = c.Record(entry(other, "1.0", fmt.Sprintf("1.0.%d", i)))
			_ = c.Versions("Foo")
		}()
	}
	wg.Wait()

	for _, id := range []string{"Foo", "Other"} {
		got := c.Versions(id)
		if len(got) != n {
			t.Fatalf("%s: %d entries after %d concurrent upserts", id, len(got), n)
		}
		seen := make(map[string]bool, n)
		for _, e := range got {
			seen[e.MavenVersion] = true
		}
		for i := range n {
			if v := fmt.Sprintf("1.0.%d", i); !seen[v] {
				t.Errorf("%s: lost upsert %s", id, v)
			}
		}
	}
}

func TestCacheConcurrentSameKey(t *testing.T) {
	c := NewCache()
	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Record(entry(fooArtifact, "1.0", "1.0.0"))
		}()
	}
	wg.Wait()
	if c.Len("Foo") != 1 {
		t.Errorf("Len = %d, want 1", c.Len("Foo"))
	}
}
