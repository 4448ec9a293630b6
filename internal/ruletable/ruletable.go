// Package ruletable parses ligature rule tables and provides the default one.
//
// A table is plain text with one rule per line: the glyph, whitespace, then the sequence it
// replaces. Blank lines and lines starting with '#' are ignored.
package ruletable

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"crosswarped.com/ligatag/pkg/primitives"
)

//go:embed ligatures.txt
var defaultTable string

// Default returns a fresh copy of the built-in ligature table.
func Default() primitives.Rules {
	rules, err := Parse(strings.NewReader(defaultTable))
	if err != nil {
		panic(fmt.Sprintf("ruletable: built-in table is malformed: %v", err))
	}
	return rules
}

// Parse reads a rule table. The result is validated, so every rule has a non-empty glyph and
// sequence.
func Parse(r io.Reader) (primitives.Rules, error) {
	var rules primitives.Rules
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: want \"glyph sequence\", got %q", lineNo, line)
		}
		rules = append(rules, primitives.Rule{Glyph: fields[0], Sequence: fields[1]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner.Err: %w", err)
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return rules, nil
}

// LoadFile reads a rule table from path.
func LoadFile(path string) (primitives.Rules, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rules, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}

// Select returns the rules of table named in keys, keeping table order. This is how hosts apply
// the user's enabled-rule set. A key equal to a rule's glyph enables that rule alone; a key
// equal to a sequence enables every rule replacing it. Keys matching nothing are reported as an
// error. An empty selection returns the whole table.
func Select(table primitives.Rules, keys []string) (primitives.Rules, error) {
	if len(keys) == 0 {
		return table, nil
	}

	wanted := make(map[string]bool, len(keys))
	for _, k := range keys {
		wanted[k] = true
	}

	found := make(map[string]bool, len(keys))
	var out primitives.Rules
	for _, r := range table {
		byGlyph, bySequence := wanted[r.Glyph], wanted[r.Sequence]
		if !byGlyph && !bySequence {
			continue
		}
		out = append(out, r)
		if byGlyph {
			found[r.Glyph] = true
		}
		if bySequence {
			found[r.Sequence] = true
		}
	}
	for _, k := range keys {
		if !found[k] {
			return nil, fmt.Errorf("no rule with glyph or sequence %q", k)
		}
	}
	return out, nil
}
