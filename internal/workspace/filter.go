package workspace

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// testMarker marks solutions, projects and documents that hold tests.
const testMarker = "TEST"

// alwaysExcluded are build output directories that never hold sources.
var alwaysExcluded = []string{"**/bin/**", "**/obj/**"}

// Filter decides which solutions, projects and documents take part in an
// analysis. Paths are slash-separated and relative to the workspace root.
type Filter struct {
	Include   []string
	Exclude   []string
	Blacklist []string
	SkipTests bool
}

// IsTestName reports whether name marks a test artifact.
func IsTestName(name string) bool {
	return strings.Contains(strings.ToUpper(name), testMarker)
}

// Excluded reports whether rel matches an exclusion glob or lives under a
// bin/ or obj/ directory.
func (f Filter) Excluded(rel string) bool {
	for _, pattern := range alwaysExcluded {
		if matchGlob(pattern, rel) {
			return true
		}
	}
	for _, pattern := range f.Exclude {
		if matchGlob(pattern, rel) {
			return true
		}
	}
	return false
}

// Included reports whether rel passes the include globs. No include
// globs means everything is included.
func (f Filter) Included(rel string) bool {
	if len(f.Include) == 0 {
		return true
	}
	for _, pattern := range f.Include {
		if matchGlob(pattern, rel) {
			return true
		}
	}
	return false
}

// Blacklisted reports whether the document name contains a blacklist entry.
func (f Filter) Blacklisted(rel string) bool {
	name := path.Base(rel)
	for _, entry := range f.Blacklist {
		if entry != "" && strings.Contains(name, entry) {
			return true
		}
	}
	return false
}

// KeepSolution reports whether a solution file takes part.
func (f Filter) KeepSolution(rel string) bool {
	if f.Excluded(rel) {
		return false
	}
	return !f.SkipTests || !IsTestName(strings.TrimSuffix(path.Base(rel), path.Ext(rel)))
}

// KeepDocument reports whether a source document takes part.
func (f Filter) KeepDocument(rel string) bool {
	if f.Excluded(rel) || !f.Included(rel) || f.Blacklisted(rel) {
		return false
	}
	return !f.SkipTests || !IsTestName(path.Base(rel))
}

// matchGlob matches pattern against the whole path, and patterns without
// a slash also against the base name.
func matchGlob(pattern, rel string) bool {
	if ok, _ := doublestar.Match(pattern, rel); ok {
		return true
	}
	if !strings.Contains(pattern, "/") {
		ok, _ := doublestar.Match(pattern, path.Base(rel))
		return ok
	}
	return false
}
