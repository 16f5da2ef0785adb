package index

import (
	"maps"
	"sort"

	"github.com/matzehuels/pommapper/pkg/version"
)

// DefaultSince is the recency baseline used when a query names none.
const DefaultSince = "0.0.1"

// Filter selects entries for a query.
type Filter func(VersionEntry) bool

// Kind keeps snapshot entries when snapshots is set and release entries
// when releases is set. With both unset nothing passes.
func Kind(snapshots, releases bool) Filter {
	return func(e VersionEntry) bool {
		if e.IsSnapshot() {
			return snapshots
		}
		return releases
	}
}

// NewerThan keeps entries whose Maven version is strictly greater than baseline.
func NewerThan(baseline string) Filter {
	base := version.Parse(baseline)
	return func(e VersionEntry) bool {
		return version.Parse(e.MavenVersion).Compare(base) > 0
	}
}

// All keeps entries accepted by every filter. All() accepts everything.
func All(filters ...Filter) Filter {
	return func(e VersionEntry) bool {
		for _, f := range filters {
			if !f(e) {
				return false
			}
		}
		return true
	}
}

// Query holds the parameters of a by-id query.
type Query struct {
	Snapshots bool   // Include snapshot groups
	Releases  bool   // Include release groups
	Limit     int    // Entries per group; <= 0 is unlimited
	Since     string // Only versions strictly newer than this
}

// DefaultQuery returns a query that includes everything newer than
// [DefaultSince] without a limit.
func DefaultQuery() Query {
	return Query{Snapshots: true, Releases: true, Limit: -1, Since: DefaultSince}
}

// Filter returns the combined kind and recency filter.
func (q Query) Filter() Filter {
	since := q.Since
	if since == "" {
		since = DefaultSince
	}
	return All(Kind(q.Snapshots, q.Releases), NewerThan(since))
}

// Group is one bucket of a query result.
type Group struct {
	Group    string    `json:"group"`
	Versions []Version `json:"versions"`
}

// Version is one entry of a query result.
type Version struct {
	Version string            `json:"version"`
	Jar     string            `json:"jar"`
	Entries map[string]string `json:"entries"`
}

type parsedEntry struct {
	entry VersionEntry
	ver   version.Version
}

// Resolve filters, groups, sorts and limits entries.
//
// Groups appear newest first by group tag; versions within a group newest
// first by Maven version. Ties keep input order, so equal input always
// yields equal output. A nil keep accepts everything. The result is never
// nil.
func Resolve(entries []VersionEntry, keep Filter, limit int) []Group {
	var order []string
	buckets := make(map[string][]parsedEntry)
	for _, e := range entries {
		if keep != nil && !keep(e) {
			continue
		}
		if _, ok := buckets[e.Group]; !ok {
			order = append(order, e.Group)
		}
		buckets[e.Group] = append(buckets[e.Group], parsedEntry{entry: e, ver: version.Parse(e.MavenVersion)})
	}

	type taggedGroup struct {
		tag   version.Version
		group Group
	}
	groups := make([]taggedGroup, 0, len(order))
	for _, tag := range order {
		list := buckets[tag]
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].ver.Compare(list[j].ver) > 0
		})
		if limit > 0 && len(list) > limit {
			list = list[:limit]
		}

		g := Group{Group: tag, Versions: make([]Version, 0, len(list))}
		for _, p := range list {
			g.Versions = append(g.Versions, render(p.entry))
		}
		groups = append(groups, taggedGroup{tag: version.Parse(tag), group: g})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].tag.Compare(groups[j].tag) > 0
	})

	out := make([]Group, len(groups))
	for i, g := range groups {
		out[i] = g.group
	}
	return out
}

func render(e VersionEntry) Version {
	fields := maps.Clone(e.Fields)
	if fields == nil {
		fields = map[string]string{}
	}
	return Version{Version: e.MavenVersion, Jar: e.Jar, Entries: fields}
}
