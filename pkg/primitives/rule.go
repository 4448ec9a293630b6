package primitives

import (
	"errors"
	"fmt"
)

// ErrInvalidRule is returned when a rule cannot take part in a search, e.g. because its glyph or
// its sequence is empty.
var ErrInvalidRule = errors.New("invalid ligature rule")

// Rule maps a multi-character Sequence to the single display Glyph that replaces it.
type Rule struct {
	Glyph    string
	Sequence string
}

func (r Rule) String() string {
	return fmt.Sprintf("%s=%s", r.Sequence, r.Glyph)
}

// Rules is an ordered rule table. Order only affects enumeration order and glyph matching
// precedence in the length estimator, never the identity of results.
//
// Rules are treated as read-only; nothing in this module mutates a table it is handed.
type Rules []Rule

// Validate rejects tables containing a rule with an empty glyph or an empty sequence.
func (rs Rules) Validate() error {
	for i, r := range rs {
		if r.Sequence == "" {
			return fmt.Errorf("rule %d (glyph %q): %w: empty sequence", i, r.Glyph, ErrInvalidRule)
		}
		if r.Glyph == "" {
			return fmt.Errorf("rule %d (sequence %q): %w: empty glyph", i, r.Sequence, ErrInvalidRule)
		}
	}
	return nil
}
