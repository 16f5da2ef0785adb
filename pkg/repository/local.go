package repository

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/pommapper/pkg/errors"
	"github.com/matzehuels/pommapper/pkg/integrations/maven"
)

// Local is a Maven repository in a directory on disk.
type Local struct {
	name string
	root string
}

// NewLocal creates a Local repository rooted at dir. The directory must exist.
func NewLocal(name, dir string) (*Local, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "repository %q", name)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "repository %q", name)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidPath, "repository %q: %s is not a directory", name, abs)
	}
	return &Local{name: name, root: abs}, nil
}

// Name returns the repository name.
func (l *Local) Name() string { return l.name }

// Root returns the absolute repository directory.
func (l *Local) Root() string { return l.root }

// Versions lists the versions of an artifact directory.
//
// Versions come from the directory's maven-metadata.xml, restricted to
// directories that exist, or from the subdirectories when the metadata file
// is missing or unreadable. Snapshot directories resolve their concrete
// version from their own metadata file. Versions without a POM are skipped.
func (l *Local) Versions(ctx context.Context, artifactPath string) ([]Version, error) {
	dir, err := l.resolve(artifactPath)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "artifact directory %s", artifactPath)
		}
		return nil, err
	}

	dirs := make(map[string]bool, len(entries))
	var listed []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			dirs[e.Name()] = true
			listed = append(listed, e.Name())
		}
	}

	bases := listed
	if meta, err := readMetadata(filepath.Join(dir, MetadataFile)); err == nil && len(meta.Versioning.Versions) > 0 {
		bases = nil
		for _, v := range meta.Versioning.Versions {
			if dirs[v] {
				bases = append(bases, v)
			}
		}
	}

	artifactPath = strings.Trim(artifactPath, "/")
	artifactID := artifactIDOf(artifactPath)
	out := make([]Version, 0, len(bases))
	for _, base := range bases {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, ok := l.version(artifactPath, artifactID, base)
		if ok {
			out = append(out, v)
		}
	}
	sortVersions(out)
	return out, nil
}

func (l *Local) version(artifactPath, artifactID, base string) (Version, bool) {
	concrete := base
	if strings.HasSuffix(base, snapshotSuffix) {
		meta, _ := readMetadata(filepath.Join(l.root, filepath.FromSlash(artifactPath), base, MetadataFile))
		concrete = meta.ResolveSnapshot(base, "pom")
	}

	v := artifactFiles(artifactPath, artifactID, base, concrete)
	if l.exists(v.POM) {
		return v, true
	}
	if concrete != base {
		// Locally installed snapshots keep the -SNAPSHOT file name.
		v = artifactFiles(artifactPath, artifactID, base, base)
		if l.exists(v.POM) {
			return v, true
		}
	}
	return Version{}, false
}

// Open opens a repository-relative file.
func (l *Local) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	full, err := l.resolve(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "%s", path)
		}
		return nil, err
	}
	return f, nil
}

// Rel converts an absolute file name below the root to a repository-relative
// slash path.
func (l *Local) Rel(name string) (string, bool) {
	rel, err := filepath.Rel(l.root, name)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (l *Local) resolve(path string) (string, error) {
	path = strings.Trim(path, "/")
	if err := errors.ValidatePath(path); err != nil {
		return "", err
	}
	return filepath.Join(l.root, filepath.FromSlash(path)), nil
}

func (l *Local) exists(rel string) bool {
	info, err := os.Stat(filepath.Join(l.root, filepath.FromSlash(rel)))
	return err == nil && info.Mode().IsRegular()
}

func readMetadata(path string) (*maven.Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return maven.ParseMetadata(f)
}
