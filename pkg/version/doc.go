// Package version orders Maven version strings.
//
// # Overview
//
// [Compare] implements the ordering Maven itself uses for artifact versions
// (ComparableVersion). It is total, deterministic and never fails: fragments
// that are not numbers are compared as qualifiers.
//
//	version.Compare("1.0.5", "1.0.2")         // 1
//	version.Compare("2.0-SNAPSHOT", "2.0")    // -1
//	version.Compare("1.0.0", "1")             // 0
//
// # Tokens
//
// A version is split on "." and "-" and on every transition between digits
// and letters. A "-" or a transition opens a nested list, so "1-rc-2" and
// "1.rc.2" are not the same version.
//
// Numbers compare numerically with arbitrary length. Qualifiers rank as
//
//	alpha < beta < milestone < rc = cr < snapshot < "" = ga = final = release < sp
//
// and unknown qualifiers rank after "sp", ordered lexicographically.
// The single letters a, b and m are aliases for alpha, beta and milestone
// when a digit follows them directly ("1.0a1" is "1.0-alpha-1").
//
// Trailing zeros and release qualifiers are dropped before comparing, which
// is why "1.0.0", "1.0" and "1-ga" are all equal.
//
// # Sorting
//
// [Parse] tokenises once and returns a [Version] whose [Version.Compare]
// method is cheap to call repeatedly, for use as a sort key.
package version
