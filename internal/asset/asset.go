package asset

import (
	"path"
	"regexp"
	"strings"
)

// Matcher recognizes image asset paths under an asset directory
type Matcher struct {
	dir     string
	ext     string
	pattern *regexp.Regexp
}

// NewMatcher creates a matcher for files ending in ext somewhere below dir.
// Matching is case-sensitive and unanchored, so "<dir>/" may appear anywhere in the path.
func NewMatcher(dir, ext string) *Matcher {
	dir = strings.TrimSuffix(dir, "/")
	return &Matcher{
		dir:     dir,
		ext:     ext,
		pattern: regexp.MustCompile(regexp.QuoteMeta(dir+"/") + ".*" + regexp.QuoteMeta(ext)),
	}
}

// Match returns true if p is an asset path
func (m *Matcher) Match(p string) bool {
	return m.pattern.MatchString(p)
}

// Filter returns the asset paths in paths, preserving order.
// Returns nil when nothing matches.
func (m *Matcher) Filter(paths []string) []string {
	var matched []string
	for _, p := range paths {
		if m.Match(p) {
			matched = append(matched, p)
		}
	}
	return matched
}

// Stem returns the file name of p without its asset extension
func (m *Matcher) Stem(p string) string {
	base := path.Base(p)
	if i := strings.Index(base, m.ext); i >= 0 {
		return base[:i]
	}
	return base
}

// RelPath returns p as a path relative to the repository root
func RelPath(p string) string {
	return "./" + p
}
