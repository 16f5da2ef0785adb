// Package index keeps the per-artifact version cache and answers queries
// against it.
//
// # Data Model
//
// Every tracked artifact (a [catalog.Artifact], addressed by its id) owns a
// list of [VersionEntry] values, one per Maven version found in the
// repository. An entry carries the fields extracted from that version's POM,
// the jar location, and a group tag that buckets related versions together
// (by default the version directory, e.g. "2.0.0-SNAPSHOT").
//
// # Cache
//
// [Cache] is the in-memory store. Reads never lock: each artifact's entries
// live in an immutable snapshot behind an atomic pointer and writers publish
// a new snapshot with compare-and-swap. Upserts for different artifacts never
// contend, and concurrent upserts for the same artifact are retried rather
// than lost.
//
// # Queries
//
// [Resolve] turns a list of entries into the grouped response:
//
//  1. drop entries rejected by the filter
//  2. bucket by group tag
//  3. sort each bucket newest first
//  4. keep at most limit entries per bucket
//  5. sort buckets newest group first
//
// [Query] bundles the request parameters and builds the filter.
//
// # Indexer
//
// [Indexer] fills the cache. It lists versions through a [Source], extracts
// fields with an [Extractor] on a bounded worker pool, and optionally
// persists extraction results in a [cache.Cache] so restarts and other
// instances skip the work. Queries wait for a refresh at most
// [IndexerConfig.QueryTimeout]; the refresh keeps running in the background
// after that and the query is answered from what is already cached.
package index
