package maven

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/pommapper/pkg/cache"
	"github.com/matzehuels/pommapper/pkg/integrations"
)

// CentralURL is the base URL of Maven Central.
const CentralURL = "https://repo1.maven.org/maven2"

// MetadataFile is the per-directory metadata file name.
const MetadataFile = "maven-metadata.xml"

// Client reads metadata and files from an HTTP Maven repository.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a client for the repository at baseURL (CentralURL when
// empty). Metadata responses are cached in c for ttl; headers are sent with
// every request and may carry credentials.
func NewClient(baseURL string, c cache.Cache, ttl time.Duration, headers map[string]string) *Client {
	if baseURL == "" {
		baseURL = CentralURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	return &Client{
		Client:  integrations.NewClient(c, "maven:"+baseURL, ttl, headers),
		baseURL: baseURL,
	}
}

// BaseURL returns the repository root URL.
func (c *Client) BaseURL() string { return c.baseURL }

// FetchMetadata retrieves maven-metadata.xml from a repository directory
// such as "org/foo/foo" or "org/foo/foo/2.0.0-SNAPSHOT".
//
// If refresh is true, the cache is bypassed.
//
// Returns:
//   - [integrations.ErrNotFound] if the directory has no metadata
//   - [integrations.ErrNetwork] for HTTP failures (timeout, 5xx, etc.)
func (c *Client) FetchMetadata(ctx context.Context, dir string, refresh bool) (*Metadata, error) {
	dir = strings.Trim(dir, "/")
	if dir == "" {
		return nil, fmt.Errorf("maven: empty metadata directory")
	}

	var meta Metadata
	err := c.Cached(ctx, dir, refresh, &meta, func() error {
		return c.GetXML(ctx, c.URL(dir+"/"+MetadataFile), &meta)
	})
	if err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return nil, fmt.Errorf("%w: maven metadata %s", err, dir)
		}
		return nil, err
	}
	return &meta, nil
}

// FetchFile downloads a repository-relative file. Files are not cached;
// the caller owns caching of derived data.
func (c *Client) FetchFile(ctx context.Context, path string) ([]byte, error) {
	var data []byte
	err := c.Retry(ctx, func() error {
		var err error
		data, err = c.GetBytes(ctx, c.URL(path))
		return err
	})
	if err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return nil, fmt.Errorf("%w: maven file %s", err, path)
		}
		return nil, err
	}
	return data, nil
}

// URL returns the absolute URL of a repository-relative path.
func (c *Client) URL(path string) string {
	return integrations.JoinURL(c.baseURL, path)
}
