package primitives

import "strings"

// Occurrence is a location in a word where a rule's sequence appears. Start and End are byte
// offsets into the word, End exclusive.
type Occurrence struct {
	Rule  int
	Start int
	End   int
}

// Overlaps reports whether the two occurrences share at least one byte of the source word.
func (o Occurrence) Overlaps(other Occurrence) bool {
	return o.Start < other.End && other.Start < o.End
}

// RuleOccurrences lists every start offset of a single rule's sequence in a word, ascending.
type RuleOccurrences struct {
	Rule   int
	Glyph  string
	Length int // len(Sequence) in bytes
	Starts []int
}

// At returns the k-th occurrence of the rule.
func (ro RuleOccurrences) At(k int) Occurrence {
	start := ro.Starts[k]
	return Occurrence{Rule: ro.Rule, Start: start, End: start + ro.Length}
}

// IndexOccurrences finds, for every rule, all positions where its sequence occurs in word,
// including overlapping occurrences of the same sequence ("aa" occurs twice in "aaa").
//
// Matching is exact and case-sensitive. Rules that never occur are left out, so the returned
// slice only describes the search space that actually exists for word. Overlaps between
// different rules are not resolved here.
func IndexOccurrences(word string, rules Rules) []RuleOccurrences {
	var out []RuleOccurrences
	for i, r := range rules {
		if r.Sequence == "" {
			continue
		}

		var starts []int
		for from := 0; from < len(word); {
			idx := strings.Index(word[from:], r.Sequence)
			if idx < 0 {
				break
			}
			at := from + idx
			starts = append(starts, at)
			from = at + NextCodepointLen(word[at:])
		}

		if len(starts) == 0 {
			continue
		}
		out = append(out, RuleOccurrences{
			Rule:   i,
			Glyph:  r.Glyph,
			Length: len(r.Sequence),
			Starts: starts,
		})
	}
	return out
}
