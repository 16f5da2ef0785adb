package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxVersionLength bounds caller-supplied version strings.
const maxVersionLength = 128

// artifactIDRegex matches operator-assigned artifact ids.
var artifactIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// coordinatePartRegex matches Maven groupId and artifactId values.
var coordinatePartRegex = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9._-]*$`)

// versionRegex matches the characters Maven versions are built from.
var versionRegex = regexp.MustCompile(`^[0-9A-Za-z._+-]+$`)

// ValidateArtifactID validates an internal artifact id as used in URLs.
//
// The rules are intentionally conservative:
//   - No empty ids
//   - Maximum length of 128 characters
//   - Letters, digits, dot, dash and underscore only
func ValidateArtifactID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "artifact id cannot be empty")
	}
	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "artifact id too long (max 128 characters)")
	}
	if !artifactIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid artifact id: %q", id)
	}
	return nil
}

// ValidateCoordinatePart validates a Maven groupId or artifactId.
func ValidateCoordinatePart(kind, value string) error {
	if value == "" {
		return New(ErrCodeInvalidCoordinate, "%s cannot be empty", kind)
	}
	if len(value) > 256 {
		return New(ErrCodeInvalidCoordinate, "%s too long (max 256 characters)", kind)
	}
	if strings.Contains(value, "..") {
		return New(ErrCodeInvalidCoordinate, "%s cannot contain path traversal sequences (..)", kind)
	}
	if !coordinatePartRegex.MatchString(value) {
		return New(ErrCodeInvalidCoordinate, "invalid %s: %q", kind, value)
	}
	return nil
}

// ValidatePath validates a repository-relative path for safety.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
//
// Leading slashes are tolerated; callers trim them before lookups.
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	for _, seg := range strings.Split(path, "/") {
		if seg == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// ValidateVersion validates a caller-supplied Maven version string such as
// the "since" baseline of a query. Empty strings, strings longer than 128
// characters and strings with characters outside [0-9A-Za-z._+-] are rejected.
func ValidateVersion(v string) error {
	if v == "" {
		return New(ErrCodeInvalidVersion, "version cannot be empty")
	}
	if len(v) > maxVersionLength {
		return New(ErrCodeInvalidVersion, "version too long (max %d characters)", maxVersionLength)
	}
	if !versionRegex.MatchString(v) {
		return New(ErrCodeInvalidVersion, "invalid version: %q", v)
	}
	return nil
}
