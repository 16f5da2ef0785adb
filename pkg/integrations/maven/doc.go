// Package maven provides an HTTP client for Maven repositories.
//
// # Overview
//
// This package reads the two kinds of files the index needs from a remote
// repository laid out in the standard Maven directory structure:
//
//   - maven-metadata.xml, which lists an artifact's versions and resolves
//     snapshot builds to timestamped file names
//   - POM files, which are handed to the extractor unparsed
//
// # Usage
//
//	client := maven.NewClient(maven.CentralURL, store, time.Hour, nil)
//
//	meta, err := client.FetchMetadata(ctx, "com/google/guava/guava", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(meta.Versioning.Versions)
//
// # Snapshots
//
// A snapshot directory ("2.0.0-SNAPSHOT") carries its own metadata file.
// [Metadata.ResolveSnapshot] maps the directory name to the concrete
// timestamped version ("2.0.0-20240101.120000-3") used in file names.
//
// # Caching
//
// Metadata responses are cached through [cache.Cache] with the TTL given to
// [NewClient]. Pass refresh=true to bypass the cache. File downloads are
// never cached here.
//
// [cache.Cache]: github.com/matzehuels/pommapper/pkg/cache.Cache
package maven
