// Package evidence locates claimed quoted snippets inside source text.
package evidence

import "strings"

// Span is a half-open [Start, End) byte range into a source text.
type Span struct {
	Start int
	End   int
}

// Locate finds the exact offsets of snippet within source.
//
// A non-negative hintedStart is tried first: if the snippet sits exactly at
// that offset it wins, otherwise the first occurrence (lowest start index)
// is returned. Locate never fuzzy-matches; if the snippet is not a verbatim
// substring of source the second return value is false and callers decide
// whether to keep their claimed offsets or drop the evidence.
func Locate(source, snippet string, hintedStart int) (Span, bool) {
	if snippet == "" {
		return Span{}, false
	}
	if hintedStart >= 0 && hintedStart+len(snippet) <= len(source) {
		if source[hintedStart:hintedStart+len(snippet)] == snippet {
			return Span{Start: hintedStart, End: hintedStart + len(snippet)}, true
		}
	}
	idx := strings.Index(source, snippet)
	if idx < 0 {
		return Span{}, false
	}
	return Span{Start: idx, End: idx + len(snippet)}, true
}
