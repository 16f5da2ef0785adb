package index

import (
	"strings"

	"github.com/matzehuels/pommapper/pkg/catalog"
	"github.com/matzehuels/pommapper/pkg/version"
)

const snapshotSuffix = "-SNAPSHOT"

// VersionEntry is the cached record for one artifact version.
//
// Entries are treated as immutable once recorded. Fields is shared between
// readers and must not be modified.
type VersionEntry struct {
	Artifact     *catalog.Artifact // Owning artifact (never nil in a recorded entry)
	Group        string            // Group tag, e.g. "2.0" or "2.0.0-SNAPSHOT"
	MavenVersion string            // Concrete Maven version, e.g. "2.0.0-20240101.120000-3"
	Fields       map[string]string // Extracted field name -> value
	Jar          string            // Repository-relative jar location
}

// ID returns the owning artifact's id.
func (e VersionEntry) ID() string {
	if e.Artifact == nil {
		return ""
	}
	return e.Artifact.ID
}

// IsSnapshot reports whether the entry belongs to a snapshot group.
// The group tag decides, not MavenVersion: timestamped snapshot versions
// do not end in -SNAPSHOT.
func (e VersionEntry) IsSnapshot() bool {
	return strings.HasSuffix(e.Group, snapshotSuffix)
}

// NewerThan reports whether the entry's Maven version is strictly greater
// than baseline.
func (e VersionEntry) NewerThan(baseline string) bool {
	return version.Newer(e.MavenVersion, baseline)
}

// GroupTag derives an entry's group tag from its version directory.
//
// With depth <= 0 the directory name is the tag. Otherwise only the first
// depth dot-separated components are kept and a snapshot suffix is
// re-appended:
//
//	GroupTag("1.0.5", 2)          // "1.0"
//	GroupTag("2.0.0-SNAPSHOT", 2) // "2.0-SNAPSHOT"
//	GroupTag("3", 2)              // "3"
func GroupTag(base string, depth int) string {
	if depth <= 0 {
		return base
	}
	core, snapshot := strings.CutSuffix(base, snapshotSuffix)
	parts := strings.Split(core, ".")
	if len(parts) <= depth {
		return base
	}
	tag := strings.Join(parts[:depth], ".")
	if snapshot {
		tag += snapshotSuffix
	}
	return tag
}
