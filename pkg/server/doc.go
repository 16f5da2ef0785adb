// Package server exposes the index over HTTP.
//
// # Routes
//
// All routes are mounted below a base path (default "/api/pommapper"):
//
//	GET|HEAD {base}/id/{id}                  by-id query
//	GET|HEAD {base}/repo/{repository}/{path} by-coordinate redirect
//	GET      {base}/health                   liveness and build info
//
// # By-id Query
//
// The by-id route answers with a JSON array of groups (200), the plain text
// "No entries found." (204) when no entry survives the filters, or a JSON
// error (404) when the id is not in the catalog. Query parameters:
//
//	snapshots  include snapshot groups (default true)
//	releases   include release groups (default true)
//	limit      versions per group, <= 0 for all (default -1)
//	since      only versions newer than this (default "0.0.1")
//
// Malformed parameters fall back to their defaults instead of failing.
//
// # By-coordinate Redirect
//
// The by-coordinate route maps a repository path such as
// "org/betonquest/betonquest" to its catalog id and answers with a
// 307 redirect to the by-id route. The raw query string is carried over.
package server
