package gob

import "strings"

// NormalizePath rewrites a user-supplied path into the rooted-relative
// form archive lookups expect. Slash runs collapse into a single
// separator and slashes at either end are dropped; the empty string and
// the bare "/" both normalize to ".", the archive root:
//
//	NormalizePath("/sprites//door.pcx") == "sprites/door.pcx"
//	NormalizePath("levels/e1m1/")       == "levels/e1m1"
//	NormalizePath("")                   == "."
//
// Dot and dot-dot segments pass through unchanged; lookups reject them
// via fs.ValidPath, so normalization never turns an escaping path into
// a safe one.
func NormalizePath(p string) string {
	segments := strings.FieldsFunc(p, func(r rune) bool { return r == '/' })
	if len(segments) == 0 {
		return "."
	}
	return strings.Join(segments, "/")
}
