package primitives

import (
	"unicode/utf16"
	"unicode/utf8"
)

// CountCodepoints returns the number of Unicode codepoints in s.
//
// Valid UTF-8 sequences count once each. Invalid bytes count as one codepoint each, except for
// surrogate halves encoded as three-byte sequences (CESU-8 / WTF-8 style): an encoded
// high+low pair counts as a single codepoint, and an unpaired half counts as one.
func CountCodepoints(s string) int {
	n := 0
	for i := 0; i < len(s); {
		i += NextCodepointLen(s[i:])
		n++
	}
	return n
}

// NextCodepointLen returns the number of bytes taken by the first codepoint of s, following the
// same rules as CountCodepoints. It returns 0 only for an empty string.
func NextCodepointLen(s string) int {
	if len(s) == 0 {
		return 0
	}
	if s[0] < utf8.RuneSelf {
		return 1
	}
	r, size := utf8.DecodeRuneInString(s)
	if r != utf8.RuneError || size > 1 {
		return size
	}

	hi, ok := encodedSurrogate(s)
	if !ok {
		return 1
	}
	if lo, ok := encodedSurrogate(s[3:]); ok && utf16.DecodeRune(hi, lo) != utf8.RuneError {
		return 6
	}
	return 3
}

// encodedSurrogate decodes a surrogate half written with the generalised three-byte UTF-8 form
// (0xED 0xA0..0xBF 0x80..0xBF), which utf8 rejects.
func encodedSurrogate(s string) (rune, bool) {
	if len(s) < 3 || s[0] != 0xED || s[1] < 0xA0 || s[1] > 0xBF || s[2]&0xC0 != 0x80 {
		return 0, false
	}
	return rune(s[0]&0x0F)<<12 | rune(s[1]&0x3F)<<6 | rune(s[2]&0x3F), true
}
