package server

import (
	"net/url"
	"strconv"

	"github.com/matzehuels/pommapper/pkg/errors"
	"github.com/matzehuels/pommapper/pkg/index"
)

// Query parameter names of the by-id route.
const (
	ParamSnapshots = "snapshots"
	ParamReleases  = "releases"
	ParamLimit     = "limit"
	ParamSince     = "since"
)

// ParseQuery reads by-id query parameters. Missing or malformed values
// take their defaults; ParseQuery never fails.
func ParseQuery(values url.Values) index.Query {
	q := index.DefaultQuery()
	q.Snapshots = parseBool(values.Get(ParamSnapshots), q.Snapshots)
	q.Releases = parseBool(values.Get(ParamReleases), q.Releases)
	if n, err := strconv.Atoi(values.Get(ParamLimit)); err == nil {
		q.Limit = n
	}
	if since := values.Get(ParamSince); errors.ValidateVersion(since) == nil {
		q.Since = since
	}
	return q
}

func parseBool(s string, def bool) bool {
	if v, err := strconv.ParseBool(s); err == nil {
		return v
	}
	return def
}
