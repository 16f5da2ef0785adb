// Package repository reads Maven repositories.
//
// A [Repository] lists the versions of an artifact directory and opens files
// by repository-relative path. Two implementations exist:
//
//   - [Local]: a directory on disk in Maven layout
//   - [Remote]: an HTTP Maven repository such as Maven Central
//
// A [Set] maps repository names to repositories and is what the index talks
// to. Change notifications ([Event]) come from [FSWatcher] for local
// repositories and are fanned out across instances by [RedisNotifier].
package repository

import (
	"context"
	"io"
	"sort"
	"strings"

	"github.com/matzehuels/pommapper/pkg/catalog"
	"github.com/matzehuels/pommapper/pkg/errors"
	"github.com/matzehuels/pommapper/pkg/integrations/maven"
	"github.com/matzehuels/pommapper/pkg/version"
)

// MetadataFile is the per-directory Maven metadata file name.
const MetadataFile = maven.MetadataFile

const snapshotSuffix = "-SNAPSHOT"

// Version is one deployed version of an artifact.
//
// For releases Base and Version are equal. For snapshots Base is the
// directory name ("2.0.0-SNAPSHOT") and Version the resolved timestamped
// version ("2.0.0-20240101.120000-3") when the repository records one.
type Version struct {
	Base    string // Version directory name
	Version string // Concrete Maven version of the files
	POM     string // Repository-relative path of the POM
	Jar     string // Repository-relative path of the jar
}

// IsSnapshot reports whether the version directory is a snapshot.
func (v Version) IsSnapshot() bool {
	return strings.HasSuffix(v.Base, snapshotSuffix)
}

// Repository is a named Maven repository.
//
// Implementations must be safe for concurrent use.
type Repository interface {
	// Name returns the configured repository name.
	Name() string

	// Versions lists the versions below an artifact directory
	// ("org/foo/foo"). A missing directory yields ErrCodeFileNotFound.
	Versions(ctx context.Context, artifactPath string) ([]Version, error)

	// Open opens a repository-relative file.
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// Set is a collection of repositories addressed by name.
type Set struct {
	repos map[string]Repository
}

// NewSet creates a Set. Later repositories replace earlier ones with the
// same name.
func NewSet(repos ...Repository) *Set {
	s := &Set{repos: make(map[string]Repository, len(repos))}
	for _, r := range repos {
		s.repos[r.Name()] = r
	}
	return s
}

// Get returns the repository with the given name.
func (s *Set) Get(name string) (Repository, bool) {
	r, ok := s.repos[name]
	return r, ok
}

// Names returns the repository names, sorted.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.repos))
	for name := range s.repos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Versions lists the versions of a catalog artifact.
func (s *Set) Versions(ctx context.Context, a *catalog.Artifact) ([]Version, error) {
	r, err := s.lookup(a.Repository)
	if err != nil {
		return nil, err
	}
	return r.Versions(ctx, a.Path())
}

// OpenPOM opens the POM of one artifact version.
func (s *Set) OpenPOM(ctx context.Context, a *catalog.Artifact, v Version) (io.ReadCloser, error) {
	r, err := s.lookup(a.Repository)
	if err != nil {
		return nil, err
	}
	return r.Open(ctx, v.POM)
}

func (s *Set) lookup(name string) (Repository, error) {
	r, ok := s.repos[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeRepositoryNotFound, "repository %q not configured", name)
	}
	return r, nil
}

// Event reports a change below a repository. Path is repository-relative
// and uses forward slashes.
type Event struct {
	Repository string `json:"repository"`
	Path       string `json:"path"`
}

// artifactFiles builds the Version for one directory.
func artifactFiles(artifactPath, artifactID, base, concrete string) Version {
	dir := artifactPath + "/" + base + "/"
	name := artifactID + "-" + concrete
	return Version{
		Base:    base,
		Version: concrete,
		POM:     dir + name + ".pom",
		Jar:     dir + name + ".jar",
	}
}

// artifactIDOf returns the last path segment of an artifact directory.
func artifactIDOf(artifactPath string) string {
	p := strings.Trim(artifactPath, "/")
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[i+1:]
	}
	return p
}

// sortVersions orders versions ascending under Maven ordering of Base.
func sortVersions(vs []Version) {
	sort.SliceStable(vs, func(i, j int) bool {
		return version.Compare(vs[i].Base, vs[j].Base) < 0
	})
}
