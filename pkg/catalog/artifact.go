package catalog

import "strings"

// Artifact is a tracked Maven coordinate as configured by the operator.
//
// Artifacts are immutable once the catalog is built; the index shares the
// same pointer across all version entries of an artifact.
type Artifact struct {
	ID         string            `toml:"id"`          // Operator-assigned id used in URLs (e.g., "BetonQuest")
	Repository string            `toml:"repository"`  // Repository name the coordinate resolves against
	GroupID    string            `toml:"group_id"`    // Maven groupId (e.g., "org.betonquest")
	ArtifactID string            `toml:"artifact_id"` // Maven artifactId (e.g., "betonquest")
	GroupDepth int               `toml:"group_depth"` // Leading version components kept in the group tag; 0 keeps the full directory version
	Fields     map[string]string `toml:"fields"`      // Field name -> POM path rule
}

// Coordinate returns the Maven coordinate string "groupId:artifactId".
func (a *Artifact) Coordinate() string {
	return a.GroupID + ":" + a.ArtifactID
}

// Path returns the repository-relative directory of the artifact,
// e.g. "org/betonquest/betonquest".
func (a *Artifact) Path() string {
	return strings.ReplaceAll(a.GroupID, ".", "/") + "/" + a.ArtifactID
}
