package internal

import (
	"iter"
	"slices"

	"crosswarped.com/ligatag/pkg/primitives"
)

const skip = 0

// combinationState is the explicit backtracking stack for one word.
//
// choice[d] is the decision taken for occ[d]: skip, or k+1 to apply the rule at its k-th
// occurrence. next[d] is the next decision to try at depth d once everything below it has been
// explored.
type combinationState struct {
	word string
	occ  []primitives.RuleOccurrences

	choice []int
	next   []int

	applied []int // depths with a non-skip decision, scratch space for materialize
}

func (s *combinationState) chosen(d int) primitives.Occurrence {
	return s.occ[d].At(s.choice[d] - 1)
}

// legal reports whether applying occ[d] at occurrence k avoids every interval already
// committed at a shallower depth.
func (s *combinationState) legal(d, k int) bool {
	candidate := s.occ[d].At(k)
	for j := range d {
		if s.choice[j] == skip {
			continue
		}
		if s.chosen(j).Overlaps(candidate) {
			return false
		}
	}
	return true
}

// materialize applies the committed substitutions right to left, so offsets of the ones still to
// be applied stay valid regardless of glyph length.
func (s *combinationState) materialize() string {
	s.applied = s.applied[:0]
	for d := range s.occ {
		if s.choice[d] != skip {
			s.applied = append(s.applied, d)
		}
	}
	if len(s.applied) == 0 {
		return s.word
	}

	slices.SortFunc(s.applied, func(a, b int) int {
		return s.chosen(b).Start - s.chosen(a).Start
	})

	out := s.word
	for _, d := range s.applied {
		o := s.chosen(d)
		out = out[:o.Start] + s.occ[d].Glyph + out[o.End:]
	}
	return out
}

// Combinations yields the string produced by every legal choice vector over occ: each rule is
// either skipped or applied at exactly one of its occurrences, and no two applied occurrences
// overlap in word.
//
// The same string can be yielded more than once when different choices collapse to it. With no
// occurrences at all, word itself is the only combination.
//
// The search keeps its own stack, so its depth is bounded by len(occ) rather than by the
// goroutine stack.
func Combinations(word string, occ []primitives.RuleOccurrences) iter.Seq[string] {
	return func(yield func(string) bool) {
		n := len(occ)
		if n == 0 {
			yield(word)
			return
		}

		s := &combinationState{
			word:    word,
			occ:     occ,
			choice:  make([]int, n),
			next:    make([]int, n),
			applied: make([]int, 0, n),
		}

		d := 0
		for d >= 0 {
			if d == n {
				if !yield(s.materialize()) {
					return
				}
				d--
				continue
			}

			decided := false
			for opt := s.next[d]; opt <= len(occ[d].Starts); opt++ {
				if opt == skip || s.legal(d, opt-1) {
					s.choice[d] = opt
					s.next[d] = opt + 1
					decided = true
					break
				}
			}

			if !decided {
				// Every option at this depth has been explored; backtrack.
				s.next[d] = 0
				d--
				continue
			}

			d++
			if d < n {
				s.next[d] = 0
			}
		}
	}
}

// CollectCombinations adds every combination of word into results.
func CollectCombinations(word string, rules primitives.Rules, results primitives.ResultSet) {
	for c := range Combinations(word, primitives.IndexOccurrences(word, rules)) {
		results.Add(c)
	}
}
