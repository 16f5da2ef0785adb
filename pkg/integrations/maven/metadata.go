package maven

import (
	"encoding/xml"
	"io"
	"strings"
)

const snapshotSuffix = "-SNAPSHOT"

// Metadata is a parsed maven-metadata.xml.
//
// The same document shape is used at two levels: the artifact directory
// lists all deployed versions in Versioning.Versions, and a snapshot version
// directory records the timestamped build in Versioning.Snapshot and
// Versioning.SnapshotVersions.
type Metadata struct {
	GroupID    string     `xml:"groupId" json:"group_id,omitempty"`
	ArtifactID string     `xml:"artifactId" json:"artifact_id,omitempty"`
	Version    string     `xml:"version" json:"version,omitempty"`
	Versioning Versioning `xml:"versioning" json:"versioning"`
}

// Versioning is the <versioning> element of a metadata file.
type Versioning struct {
	Latest           string            `xml:"latest" json:"latest,omitempty"`
	Release          string            `xml:"release" json:"release,omitempty"`
	Versions         []string          `xml:"versions>version" json:"versions,omitempty"`
	Snapshot         *Snapshot         `xml:"snapshot" json:"snapshot,omitempty"`
	SnapshotVersions []SnapshotVersion `xml:"snapshotVersions>snapshotVersion" json:"snapshot_versions,omitempty"`
	LastUpdated      string            `xml:"lastUpdated" json:"last_updated,omitempty"`
}

// Snapshot identifies the latest build of a snapshot version.
type Snapshot struct {
	Timestamp   string `xml:"timestamp" json:"timestamp,omitempty"`
	BuildNumber string `xml:"buildNumber" json:"build_number,omitempty"`
	LocalCopy   bool   `xml:"localCopy" json:"local_copy,omitempty"`
}

// SnapshotVersion is one file of a snapshot build.
type SnapshotVersion struct {
	Classifier string `xml:"classifier" json:"classifier,omitempty"`
	Extension  string `xml:"extension" json:"extension"`
	Value      string `xml:"value" json:"value"`
	Updated    string `xml:"updated" json:"updated,omitempty"`
}

// ParseMetadata decodes a maven-metadata.xml document.
func ParseMetadata(r io.Reader) (*Metadata, error) {
	var m Metadata
	if err := xml.NewDecoder(r).Decode(&m); err != nil {
		return nil, err
	}
	for i, v := range m.Versioning.Versions {
		m.Versioning.Versions[i] = strings.TrimSpace(v)
	}
	return &m, nil
}

// ResolveSnapshot returns the concrete version of the unclassified file
// with the given extension in a snapshot directory named base.
//
// An explicit snapshotVersions entry wins. Otherwise the timestamp and build
// number replace the "-SNAPSHOT" suffix. Without either, or for a base that
// is not a snapshot, base is returned unchanged.
func (m *Metadata) ResolveSnapshot(base, extension string) string {
	if m == nil || !strings.HasSuffix(base, snapshotSuffix) {
		return base
	}
	for _, sv := range m.Versioning.SnapshotVersions {
		if sv.Extension == extension && sv.Classifier == "" && sv.Value != "" {
			return sv.Value
		}
	}
	s := m.Versioning.Snapshot
	if s == nil || s.LocalCopy || s.Timestamp == "" || s.BuildNumber == "" {
		return base
	}
	return strings.TrimSuffix(base, snapshotSuffix) + "-" + s.Timestamp + "-" + s.BuildNumber
}
