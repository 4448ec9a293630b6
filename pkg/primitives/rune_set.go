package primitives

import (
	"fmt"
	"unicode/utf8"
)

// RuneSet efficiently represents a set of runes within a fixed [min, max] range.
type RuneSet struct {
	words []uint64
	min   rune
	max   rune
	count int
}

func NewRuneSet(min, max rune) *RuneSet {
	if max < min {
		return &RuneSet{min: min, max: max}
	}
	size := int(max-min) + 1
	return &RuneSet{
		words: make([]uint64, (size+63)/64),
		min:   min,
		max:   max,
	}
}

// GlyphStarts returns the set of runes that begin at least one glyph of the given rules.
//
// The length estimator consults it before trying every glyph at a position, which keeps the
// common case (an ordinary letter) to a single bit test.
func GlyphStarts(rules Rules) *RuneSet {
	var lo, hi rune = utf8.MaxRune, 0
	for _, r := range rules {
		if r.Glyph == "" {
			continue
		}
		first, _ := utf8.DecodeRuneInString(r.Glyph)
		lo = min(lo, first)
		hi = max(hi, first)
	}

	set := NewRuneSet(lo, hi)
	for _, r := range rules {
		if r.Glyph == "" {
			continue
		}
		first, _ := utf8.DecodeRuneInString(r.Glyph)
		_ = set.Add(first)
	}
	return set
}

// Add adds a rune to the set.
func (s *RuneSet) Add(r rune) error {
	if r < s.min || r > s.max {
		return fmt.Errorf("rune %q is out of range [%U, %U]", r, s.min, s.max)
	}

	idx := int(r - s.min)
	mask := uint64(1) << (idx % 64)
	if s.words[idx/64]&mask != 0 {
		return nil
	}

	s.words[idx/64] |= mask
	s.count++
	return nil
}

// Contains checks if a rune is in the set. Runes outside the range are never contained.
func (s *RuneSet) Contains(r rune) bool {
	if r < s.min || r > s.max {
		return false
	}
	idx := int(r - s.min)
	return s.words[idx/64]&(uint64(1)<<(idx%64)) != 0
}

// Count returns the number of runes in the set.
func (s *RuneSet) Count() int {
	return s.count
}

