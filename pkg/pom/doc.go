// Package pom extracts named fields from Maven POM documents.
//
// Fields are described by path rules, a small XPath subset that covers the
// way POM mappings are usually written:
//
//	/project/properties/spigot.version
//	/project/parent/version/text()
//	project/dependencies/dependency[2]/version
//	//paper.version
//
// A rule is a sequence of element names separated by "/". Each step may carry
// a 1-based positional predicate ("dependency[2]") and "*" matches any
// element. A leading "//" searches the whole document for the first step. A
// trailing "/text()" selects only the element's own character data; without
// it the text of all descendants is used. Namespaces are ignored.
//
// Matched values have Maven property references expanded: "${name}" is
// replaced from /project/properties and the built-in project.version,
// project.groupId and project.artifactId properties (which fall back to the
// parent element). Unknown references are left untouched.
//
// # Usage
//
//	fields, err := pom.Extract(f, map[string]string{
//	    "spigot": "/project/properties/spigot.version",
//	})
//
// Rules that are used repeatedly should be compiled once with [Compile].
package pom
