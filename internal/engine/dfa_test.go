package engine

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseDFA(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    [][]string
		wantErr error
	}{
		{
			name:  "simple records",
			input: "a,b,c\nd,e,f\n",
			want:  [][]string{{"a", "b", "c"}, {"d", "e", "f"}},
		},
		{
			name:  "no trailing newline",
			input: "a,b\nc,d",
			want:  [][]string{{"a", "b"}, {"c", "d"}},
		},
		{
			name:  "crlf terminators",
			input: "a,b\r\nc,d\r\n",
			want:  [][]string{{"a", "b"}, {"c", "d"}},
		},
		{
			name:  "lone cr terminators",
			input: "a,b\rc,d\r",
			want:  [][]string{{"a", "b"}, {"c", "d"}},
		},
		{
			name:  "quoted field with delimiter",
			input: "\"a,b\",c\n",
			want:  [][]string{{"a,b", "c"}},
		},
		{
			name:  "quoted field with newline",
			input: "\"line1\nline2\",x\n",
			want:  [][]string{{"line1\nline2", "x"}},
		},
		{
			name:  "escaped quotes",
			input: "\"say \"\"hi\"\"\",y\n",
			want:  [][]string{{`say "hi"`, "y"}},
		},
		{
			name:  "empty fields",
			input: ",,\n",
			want:  [][]string{{"", "", ""}},
		},
		{
			name:  "quoted empty field",
			input: "\"\",x\n",
			want:  [][]string{{"", "x"}},
		},
		{
			name:  "blank lines skipped",
			input: "a\n\n\nb\n",
			want:  [][]string{{"a"}, {"b"}},
		},
		{
			name:  "crlf blank lines skipped",
			input: "a\r\n\r\nb\r\n",
			want:  [][]string{{"a"}, {"b"}},
		},
		{
			name:  "trailing delimiter keeps empty field",
			input: "a,\n",
			want:  [][]string{{"a", ""}},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
		{
			name:    "unclosed quote",
			input:   "\"abc",
			wantErr: ErrUnclosedQuote,
		},
		{
			name:  "quoted field at eof",
			input: "\"abc\"",
			want:  [][]string{{"abc"}},
		},
		{
			name:  "utf8 content",
			input: "héllo,wörld\n",
			want:  [][]string{{"héllo", "wörld"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDFA([]byte(tt.input), ',', '"')
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseDFA() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDFA() unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseDFA() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseDFACustomDelimiter(t *testing.T) {
	got, err := ParseDFA([]byte("a;b;c\nd;e;f\n"), ';', '"')
	if err != nil {
		t.Fatalf("ParseDFA() error: %v", err)
	}
	want := [][]string{{"a", "b", "c"}, {"d", "e", "f"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseDFA() = %v, want %v", got, want)
	}
}

func TestParseDFALongFields(t *testing.T) {
	// exercise the word-at-a-time bulk copy with runs over 8 bytes
	long := "abcdefghijklmnopqrstuvwxyz0123456789"
	input := long + "," + long + "\n" + long + "\n"
	got, err := ParseDFA([]byte(input), ',', '"')
	if err != nil {
		t.Fatalf("ParseDFA() error: %v", err)
	}
	want := [][]string{{long, long}, {long}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseDFA() = %v, want %v", got, want)
	}
}

func FuzzParseDFA(f *testing.F) {
	f.Add([]byte("a,b\nc,d\n"))
	f.Add([]byte("\"a\"\"b\",c\r\n"))
	f.Add([]byte("\"unterminated"))
	f.Add([]byte(",,,\n"))
	f.Fuzz(func(t *testing.T, data []byte) {
		recs, err := ParseDFA(data, ',', '"')
		if err != nil {
			return
		}
		for _, rec := range recs {
			if len(rec) == 0 {
				t.Error("record with zero fields")
			}
		}
	})
}
