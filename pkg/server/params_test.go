package server

import (
	"net/url"
	"strings"
	"testing"

	"github.com/matzehuels/pommapper/pkg/index"
)

func TestParseQuery(t *testing.T) {
	def := index.DefaultQuery()

	tests := []struct {
		name  string
		query string
		want  index.Query
	}{
		{"empty", "", def},
		{"all set", "snapshots=false&releases=0&limit=3&since=1.2.3", index.Query{Snapshots: false, Releases: false, Limit: 3, Since: "1.2.3"}},
		{"bool forms", "snapshots=F&releases=TRUE", index.Query{Snapshots: false, Releases: true, Limit: -1, Since: index.DefaultSince}},
		{"invalid bools", "snapshots=yes&releases=nope", def},
		{"invalid limit", "limit=1.5", def},
		{"zero limit", "limit=0", index.Query{Snapshots: true, Releases: true, Limit: 0, Since: index.DefaultSince}},
		{"negative limit", "limit=-7", index.Query{Snapshots: true, Releases: true, Limit: -7, Since: index.DefaultSince}},
		{"since qualifier", "since=2.0.0-SNAPSHOT", index.Query{Snapshots: true, Releases: true, Limit: -1, Since: "2.0.0-SNAPSHOT"}},
		{"since bad chars", "since=1.0%20OR%201", def},
		{"since too long", "since=" + strings.Repeat("1", 129), def},
		{"since empty", "since=", def},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatal(err)
			}
			if got := ParseQuery(values); got != tt.want {
				t.Errorf("ParseQuery(%q) = %+v, want %+v", tt.query, got, tt.want)
			}
		})
	}
}
