// Package integrations provides HTTP clients for remote Maven repositories.
//
// # Overview
//
// The [Client] type provides shared HTTP functionality used by repository
// clients:
//   - HTTP requests with retry on transient failures (5xx, 429, network)
//   - Response caching through [cache.Cache] with a configurable TTL
//   - Default headers (e.g. Authorization for private repositories)
//   - Outbound request events through [observability.HTTPHooks]
//
// Protocol-specific clients live in subpackages:
//
//   - [maven]: maven-metadata.xml and POM retrieval
//
// # Client Pattern
//
//	c := integrations.NewClient(store, "maven:central", time.Hour, nil)
//
//	var meta maven.Metadata
//	err := c.Cached(ctx, "org/foo/foo", false, &meta, func() error {
//	    return c.GetXML(ctx, url, &meta)
//	})
//
// [maven]: github.com/matzehuels/pommapper/pkg/integrations/maven
// [cache.Cache]: github.com/matzehuels/pommapper/pkg/cache.Cache
// [observability.HTTPHooks]: github.com/matzehuels/pommapper/pkg/observability.HTTPHooks
package integrations
