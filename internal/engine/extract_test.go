package engine

import (
	"math/rand"
	"testing"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		lfTerminated bool
		want         string
	}{
		{name: "plain", raw: "abc", want: "abc"},
		{name: "empty", raw: "", want: ""},
		{name: "quoted", raw: `"abc"`, want: "abc"},
		{name: "quoted empty", raw: `""`, want: ""},
		{name: "escaped", raw: `"a""b"`, want: `a"b`},
		{name: "only escaped quote", raw: `""""`, want: `"`},
		{name: "cr stripped before lf", raw: "abc\r", lfTerminated: true, want: "abc"},
		{name: "cr kept without lf", raw: "abc\r", want: "abc\r"},
		{name: "quoted then cr", raw: "\"abc\"\r", lfTerminated: true, want: "abc"},
		{name: "single quote is literal", raw: `"`, want: `"`},
		{name: "delimiter inside quotes", raw: `"a,b"`, want: "a,b"},
		{name: "newline inside quotes", raw: "\"a\nb\"", want: "a\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := fieldExtractor{quote: '"'}
			got := string(e.extract([]byte(tt.raw), tt.lfTerminated, false))
			if got != tt.want {
				t.Errorf("extract(%q) = %q, want %q", tt.raw, got, tt.want)
			}
			// the hint only skips a check, never changes the value
			got = string(e.extract([]byte(tt.raw), tt.lfTerminated, true))
			if got != tt.want {
				t.Errorf("extract(%q, hint) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestEscape(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"", ""},
		{"a,b", `"a,b"`},
		{`q"q`, `"q""q"`},
		{"l1\nl2", "\"l1\nl2\""},
		{"cr\rcr", "\"cr\rcr\""},
	}
	for _, tt := range tests {
		if got := Escape(tt.in, ',', '"'); got != tt.want {
			t.Errorf("Escape(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// Escape then extract must restore the original value.
func TestEscapeExtractRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	alphabet := []rune{'a', 'é', ',', '"', '\n', '\r', ' '}

	e := fieldExtractor{quote: '"'}
	for trial := 0; trial < 200; trial++ {
		runes := make([]rune, rng.Intn(20))
		for i := range runes {
			runes[i] = alphabet[rng.Intn(len(alphabet))]
		}
		val := string(runes)
		got := string(e.extract([]byte(Escape(val, ',', '"')), false, false))
		if got != val {
			t.Fatalf("round trip %q -> %q", val, got)
		}
	}
}
