package repository

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/matzehuels/pommapper/pkg/cache"
	perrors "github.com/matzehuels/pommapper/pkg/errors"
	"github.com/matzehuels/pommapper/pkg/integrations"
	"github.com/matzehuels/pommapper/pkg/integrations/maven"
)

// DefaultMetadataTTL is how long remote metadata responses are cached.
const DefaultMetadataTTL = 5 * time.Minute

// RemoteOptions configures a [Remote] repository.
type RemoteOptions struct {
	URL     string            // Repository root; maven.CentralURL when empty
	Headers map[string]string // Sent with every request (e.g. Authorization)
	Cache   cache.Cache       // Metadata response cache; nil disables caching
	TTL     time.Duration     // Metadata cache TTL; DefaultMetadataTTL when zero

	Attempts   int           // Tries per request on transient failures; the integrations default when zero
	RetryDelay time.Duration // First backoff delay; the integrations default when zero
}

func (o RemoteOptions) retryPolicy() integrations.RetryPolicy {
	p := integrations.DefaultRetryPolicy.WithAttempts(o.Attempts)
	if o.RetryDelay > 0 {
		p.Delay = o.RetryDelay
	}
	return p
}

// Remote is a Maven repository served over HTTP.
type Remote struct {
	name   string
	client *maven.Client
}

// NewRemote creates a Remote repository.
func NewRemote(name string, opts RemoteOptions) (*Remote, error) {
	if opts.URL != "" {
		if err := perrors.ValidateURL(opts.URL); err != nil {
			return nil, err
		}
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultMetadataTTL
	}
	client := maven.NewClient(opts.URL, opts.Cache, opts.TTL, opts.Headers)
	client.WithRetry(opts.retryPolicy())
	return &Remote{name: name, client: client}, nil
}

// NewRemoteFromClient wraps an existing Maven client.
func NewRemoteFromClient(name string, client *maven.Client) *Remote {
	return &Remote{name: name, client: client}
}

// Name returns the repository name.
func (r *Remote) Name() string { return r.name }

// URL returns the repository root URL.
func (r *Remote) URL() string { return r.client.BaseURL() }

// Versions lists the versions recorded in the artifact's maven-metadata.xml.
// Snapshot versions are resolved through their per-version metadata; a
// snapshot whose metadata cannot be fetched falls back to its base version.
func (r *Remote) Versions(ctx context.Context, artifactPath string) ([]Version, error) {
	artifactPath = strings.Trim(artifactPath, "/")
	if err := perrors.ValidatePath(artifactPath); err != nil {
		return nil, err
	}

	meta, err := r.client.FetchMetadata(ctx, artifactPath, false)
	if err != nil {
		return nil, remoteError(err, artifactPath)
	}

	artifactID := artifactIDOf(artifactPath)
	seen := make(map[string]bool, len(meta.Versioning.Versions))
	out := make([]Version, 0, len(meta.Versioning.Versions))
	for _, base := range meta.Versioning.Versions {
		if base == "" || seen[base] {
			continue
		}
		seen[base] = true

		concrete := base
		if strings.HasSuffix(base, snapshotSuffix) {
			snap, err := r.client.FetchMetadata(ctx, artifactPath+"/"+base, false)
			if err != nil && ctx.Err() != nil {
				return nil, ctx.Err()
			}
			concrete = snap.ResolveSnapshot(base, "pom")
		}
		out = append(out, artifactFiles(artifactPath, artifactID, base, concrete))
	}
	sortVersions(out)
	return out, nil
}

// Open downloads a repository-relative file.
func (r *Remote) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	path = strings.Trim(path, "/")
	if err := perrors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := r.client.FetchFile(ctx, path)
	if err != nil {
		return nil, remoteError(err, path)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func remoteError(err error, path string) error {
	switch {
	case errors.Is(err, integrations.ErrNotFound):
		return perrors.Wrap(perrors.ErrCodeFileNotFound, err, "%s", path)
	case errors.Is(err, integrations.ErrNetwork):
		return perrors.Wrap(perrors.ErrCodeNetwork, err, "%s", path)
	default:
		return err
	}
}
