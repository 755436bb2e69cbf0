package extract

import (
	"path"
	"path/filepath"
	"strings"
)

// matchGlob reports whether the slash-separated relative path rel matches
// pattern. "**" matches any number of path segments, including none; other
// segments use path.Match syntax. A pattern without a slash also matches the
// base name, so "*.draft.md" applies at any depth.
func matchGlob(rel, pattern string) bool {
	rel = filepath.ToSlash(rel)
	pattern = strings.TrimPrefix(filepath.ToSlash(pattern), "./")
	if pattern == "" {
		return false
	}

	if !strings.Contains(pattern, "/") && pattern != "**" {
		ok, err := path.Match(pattern, path.Base(rel))
		return err == nil && ok
	}

	return matchSegments(strings.Split(rel, "/"), strings.Split(pattern, "/"))
}

// matchSegments matches path segments against pattern segments, backtracking
// over the most recent "**" only.
func matchSegments(parts, pats []string) bool {
	pi, si := 0, 0
	starPat, starPart := -1, 0

	for si < len(parts) {
		switch {
		case pi < len(pats) && pats[pi] == "**":
			starPat, starPart = pi, si
			pi++
		case pi < len(pats) && segmentMatch(pats[pi], parts[si]):
			pi++
			si++
		case starPat >= 0:
			starPart++
			pi, si = starPat+1, starPart
		default:
			return false
		}
	}

	for pi < len(pats) && pats[pi] == "**" {
		pi++
	}
	return pi == len(pats)
}

func segmentMatch(pattern, name string) bool {
	ok, err := path.Match(pattern, name)
	return err == nil && ok
}

func matchAny(rel string, patterns []string) bool {
	for _, p := range patterns {
		if matchGlob(rel, p) {
			return true
		}
	}
	return false
}
