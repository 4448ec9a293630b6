package primitives

import "testing"

func TestCountCodepoints(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 0},
		{"ascii", "chill", 5},
		{"two byte", "Ȼill", 4},
		{"three byte", "chiⱠ", 4},
		{"four byte", "a😀b", 3},
		{"combining mark counts separately", "e\u0301", 2},
		{"invalid byte", "a\xffb", 3},
		{"truncated sequence", "a\xe2\x82", 3},
		{"encoded surrogate pair", "a\xed\xa0\xbd\xed\xb8\x80b", 3},
		{"unpaired high surrogate", "a\xed\xa0\xbd", 2},
		{"unpaired low surrogate", "\xed\xb8\x80z", 2},
		{"two high surrogates", "\xed\xa0\xbd\xed\xa0\xbd", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountCodepoints(tt.in); got != tt.want {
				t.Errorf("CountCodepoints(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestNextCodepointLen(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"Ȼ", 2},
		{"Ⱡx", 3},
		{"😀", 4},
		{"\xff", 1},
		{"\xed\xa0\xbd\xed\xb8\x80", 6},
		{"\xed\xa0\xbd", 3},
	}

	for _, tt := range tests {
		if got := NextCodepointLen(tt.in); got != tt.want {
			t.Errorf("NextCodepointLen(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
