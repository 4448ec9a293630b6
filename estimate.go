package ligatag

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf8"

	"crosswarped.com/ligatag/pkg/primitives"
)

// Estimator reconstructs how many codepoints a result had before glyph substitution.
type Estimator struct {
	rules  Rules
	seqLen []int
	starts *primitives.RuneSet
}

func NewEstimator(rules Rules) *Estimator {
	seqLen := make([]int, len(rules))
	for i, r := range rules {
		seqLen[i] = primitives.CountCodepoints(r.Sequence)
	}
	return &Estimator{
		rules:  rules,
		seqLen: seqLen,
		starts: primitives.GlyphStarts(rules),
	}
}

// Estimate scans result left to right. A glyph counts as the length of its rule's sequence (the
// first rule in table order whose glyph matches wins), anything else counts as one codepoint.
//
// A glyph that was already present in the original word is indistinguishable from a
// substituted one, so this is only suitable as a sort key.
func (e *Estimator) Estimate(result string) int {
	if e.starts.Count() == 0 {
		return primitives.CountCodepoints(result)
	}

	total := 0
	for i := 0; i < len(result); {
		if n, glyphLen := e.matchGlyph(result[i:]); glyphLen > 0 {
			total += n
			i += glyphLen
			continue
		}
		total++
		i += primitives.NextCodepointLen(result[i:])
	}
	return total
}

func (e *Estimator) matchGlyph(s string) (seqLen, glyphLen int) {
	first, _ := utf8.DecodeRuneInString(s)
	if !e.starts.Contains(first) {
		return 0, 0
	}
	for i, r := range e.rules {
		if r.Glyph != "" && strings.HasPrefix(s, r.Glyph) {
			return e.seqLen[i], len(r.Glyph)
		}
	}
	return 0, 0
}

// EstimateOriginalLength estimates the codepoint length of result before substitution.
func EstimateOriginalLength(result string, rules Rules) int {
	return NewEstimator(rules).Estimate(result)
}

// SortAlphabetical sorts results in ascending byte order.
func SortAlphabetical(results []string) {
	slices.Sort(results)
}

// SortByOriginalLength sorts results by estimated original length, longest first, so the
// results that compress the most text come first. Ties are ordered alphabetically.
func SortByOriginalLength(results []string, rules Rules) {
	e := NewEstimator(rules)
	keys := make(map[string]int, len(results))
	for _, r := range results {
		if _, ok := keys[r]; !ok {
			keys[r] = e.Estimate(r)
		}
	}
	slices.SortStableFunc(results, func(a, b string) int {
		if c := cmp.Compare(keys[b], keys[a]); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
}
