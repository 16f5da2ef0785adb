// Package pkg provides the core libraries for Pommapper, a Maven POM
// metadata index.
//
// # Overview
//
// Pommapper reads the POM of every version of a configured set of Maven
// artifacts, extracts named fields from each one, and serves the results
// grouped by version line. The pkg directory is organized into these areas:
//
//  1. [catalog] - Configuration and the id/path -> artifact mapping
//  2. [repository] - Local and remote Maven repositories, watching and notifications
//  3. [pom] - POM parsing and path-rule field extraction
//  4. [version] - Maven version ordering
//  5. [index] - The concurrent version cache, indexer and query resolver
//  6. [server] - The HTTP query surface
//
// Supporting packages: [cache] (persistent stores), [integrations] (HTTP
// clients), [errors], [observability] and [buildinfo].
//
// # Architecture
//
// The typical data flow through Pommapper:
//
//	Maven repository (directory or HTTP)
//	         ↓
//	    [repository] package (list versions, open POMs)
//	         ↓
//	    [pom] package (extract fields)
//	         ↓
//	    [index] package (cache entries, resolve queries)
//	         ↓
//	    [server] package (JSON over HTTP)
//
// # Quick Start
//
//	cfg, _ := catalog.LoadConfig("pommapper.toml")
//	local, _ := repository.NewLocal("releases", "/srv/maven/releases")
//
//	ix, _ := index.NewIndexer(index.IndexerConfig{
//	    Catalog: catalog.New(cfg.Artifacts),
//	    Source:  repository.NewSet(local),
//	})
//	defer ix.Close()
//
//	groups, _ := ix.Query(ctx, "BetonQuest", index.DefaultQuery())
//
// Serve the same index over HTTP:
//
//	srv, _ := server.New(server.Config{Index: ix, BasePath: cfg.Server.BasePath})
//	srv.ListenAndServe(ctx, cfg.Server.Addr, cfg.Server.ShutdownTimeout.Duration)
//
// [catalog]: github.com/matzehuels/pommapper/pkg/catalog
// [repository]: github.com/matzehuels/pommapper/pkg/repository
// [pom]: github.com/matzehuels/pommapper/pkg/pom
// [version]: github.com/matzehuels/pommapper/pkg/version
// [index]: github.com/matzehuels/pommapper/pkg/index
// [server]: github.com/matzehuels/pommapper/pkg/server
// [cache]: github.com/matzehuels/pommapper/pkg/cache
// [integrations]: github.com/matzehuels/pommapper/pkg/integrations
// [errors]: github.com/matzehuels/pommapper/pkg/errors
// [observability]: github.com/matzehuels/pommapper/pkg/observability
// [buildinfo]: github.com/matzehuels/pommapper/pkg/buildinfo
package pkg
