package ligatag

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"crosswarped.com/ligatag/internal"
	"crosswarped.com/ligatag/pkg/primitives"
)

type (
	Rule      = primitives.Rule
	Rules     = primitives.Rules
	ResultSet = primitives.ResultSet
)

// CaseMode selects which letter-case variants of a word are searched.
type CaseMode int

const (
	// CaseExact searches the word exactly as given.
	CaseExact CaseMode = iota
	// CaseAll also searches the fully upper-cased and fully lower-cased forms of the word.
	CaseAll
)

func (m CaseMode) String() string {
	switch m {
	case CaseExact:
		return "exact"
	case CaseAll:
		return "all"
	default:
		return fmt.Sprintf("CaseMode(%d)", int(m))
	}
}

// aggregator runs the combination search over the case variants of a word.
//
// Casers carry state, so an aggregator must not be shared between goroutines.
type aggregator struct {
	mode  CaseMode
	upper cases.Caser
	lower cases.Caser
}

func newAggregator(mode CaseMode) *aggregator {
	return &aggregator{
		mode:  mode,
		upper: cases.Upper(language.Und),
		lower: cases.Lower(language.Und),
	}
}

func (a *aggregator) enumerate(word string, rules Rules) ResultSet {
	results := make(ResultSet)
	internal.CollectCombinations(word, rules, results)
	if a.mode != CaseAll {
		return results
	}

	for _, variant := range []string{a.upper.String(word), a.lower.String(word)} {
		if variant == word {
			continue
		}
		internal.CollectCombinations(variant, rules, results)
	}
	return results
}

// Enumerate returns every distinct string obtainable from word by replacing zero or more
// non-overlapping rule sequences with their glyphs, at most one occurrence per rule.
//
// With CaseAll the search also runs over the upper- and lower-cased word (full Unicode case
// mapping, so "ß" upper-cases to "SS") and the results are unioned.
//
// A word in which no sequence occurs yields just its case variants. Enumerate fails only when
// rules contains an empty glyph or sequence.
func Enumerate(word string, rules Rules, mode CaseMode) (ResultSet, error) {
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("Enumerate: %w", err)
	}
	return newAggregator(mode).enumerate(word, rules), nil
}

// MatchQuery keeps the results that contain the query in any form it can take: every
// combination Enumerate produces for query under mode is tried as a substring, so "chill"
// matches results written with either the plain letters or their ligatures. Result order is
// kept. An empty query matches everything.
func MatchQuery(results []string, query string, rules Rules, mode CaseMode) ([]string, error) {
	forms, err := Enumerate(query, rules, mode)
	if err != nil {
		return nil, fmt.Errorf("MatchQuery: %w", err)
	}
	needles := forms.Sorted()

	var out []string
	for _, r := range results {
		for _, n := range needles {
			if strings.Contains(r, n) {
				out = append(out, r)
				break
			}
		}
	}
	return out, nil
}
