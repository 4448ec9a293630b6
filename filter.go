package ligatag

import (
	"crosswarped.com/ligatag/internal"
	"crosswarped.com/ligatag/pkg/primitives"
)

// MaxCharsInTag is the longest result, in codepoints, that fits a tag.
const MaxCharsInTag = internal.DefaultMaxCodepoints

// FilterByLength returns the results whose codepoint count is at most maxCodepoints.
func FilterByLength(results ResultSet, maxCodepoints int) ResultSet {
	out := make(ResultSet, len(results))
	for r := range results {
		if fitsIn(r, maxCodepoints) {
			out.Add(r)
		}
	}
	return out
}

// fitsIn is CountCodepoints(s) <= max without scanning past the limit.
func fitsIn(s string, max int) bool {
	if len(s) <= max {
		return true
	}
	n := 0
	for i := 0; i < len(s); i += primitives.NextCodepointLen(s[i:]) {
		n++
		if n > max {
			return false
		}
	}
	return true
}
