// Package catalog holds the configured artifacts and resolves repository
// paths to them.
//
// A [Catalog] is built once from a [Config] and is read-only afterwards, so
// it is safe for concurrent use without locking.
//
//	cfg, err := catalog.LoadConfig("pommapper.toml")
//	cat := catalog.New(cfg.Artifacts)
//
//	a, ok := cat.FindArtifact("releases", "org/betonquest/betonquest")
//	if ok {
//	    fmt.Println(a.ID)
//	}
package catalog

import (
	"sort"
	"strings"
)

// Catalog is the read-only mapping id -> Artifact and (repository, path) -> Artifact.
type Catalog struct {
	byID   map[string]*Artifact
	byPath map[string]*Artifact // key: repository + "\x00" + Path()
	ids    []string
}

// New builds a catalog. Artifacts are copied; later changes to the slice
// are not observed. Duplicate ids keep the first occurrence, and so do
// artifacts mapping the same coordinate in the same repository, since a
// repository path must resolve to exactly one id.
func New(artifacts []Artifact) *Catalog {
	c := &Catalog{
		byID:   make(map[string]*Artifact, len(artifacts)),
		byPath: make(map[string]*Artifact, len(artifacts)),
	}
	for _, a := range artifacts {
		if _, dup := c.byID[a.ID]; dup {
			continue
		}
		if _, dup := c.byPath[pathKey(a.Repository, a.Path())]; dup {
			continue
		}
		fields := make(map[string]string, len(a.Fields))
		for k, v := range a.Fields {
			fields[k] = v
		}
		a.Fields = fields
		c.byID[a.ID] = &a
		c.byPath[pathKey(a.Repository, a.Path())] = &a
		c.ids = append(c.ids, a.ID)
	}
	sort.Strings(c.ids)
	return c
}

// Get returns the artifact with the given id.
func (c *Catalog) Get(id string) (*Artifact, bool) {
	a, ok := c.byID[id]
	return a, ok
}

// All returns every artifact ordered by id.
func (c *Catalog) All() []*Artifact {
	out := make([]*Artifact, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.byID[id])
	}
	return out
}

// Len returns the number of configured artifacts.
func (c *Catalog) Len() int { return len(c.ids) }

// FindArtifact returns the artifact whose repository is repository and whose
// directory equals gav or is a parent directory of gav. Leading and trailing
// slashes are ignored, so "org/foo/bar/", "/org/foo/bar" and
// "org/foo/bar/1.0/bar-1.0.jar" all resolve to org.foo:bar.
//
// The longest matching directory wins.
func (c *Catalog) FindArtifact(repository, gav string) (*Artifact, bool) {
	a, _, ok := c.find(repository, gav)
	return a, ok
}

// FindByFile is like FindArtifact but also returns the first path segment
// below the artifact directory, which in Maven layout is the version
// directory. The version is empty when gav names the artifact directory itself
// or a file directly inside it (such as maven-metadata.xml).
func (c *Catalog) FindByFile(repository, relPath string) (*Artifact, string, bool) {
	a, rest, ok := c.find(repository, relPath)
	if !ok {
		return nil, "", false
	}
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		return a, rest[:i], true
	}
	return a, "", true
}

func (c *Catalog) find(repository, gav string) (*Artifact, string, bool) {
	segs := strings.Split(strings.Trim(gav, "/"), "/")
	for n := len(segs); n >= 2; n-- {
		if a, ok := c.byPath[pathKey(repository, strings.Join(segs[:n], "/"))]; ok {
			return a, strings.Join(segs[n:], "/"), true
		}
	}
	return nil, "", false
}

func pathKey(repository, path string) string {
	return repository + "\x00" + path
}
