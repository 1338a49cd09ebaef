package csvwire

import (
	"errors"
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	res, err := Parse([]byte("name,age\nalice,30\nbob\n"), DefaultOptions())
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if !reflect.DeepEqual(res.Headers, []string{"name", "age"}) {
		t.Errorf("Headers = %v", res.Headers)
	}
	if res.RecordCount != 2 || res.FieldCount != 2 {
		t.Fatalf("counts = %d x %d, want 2 x 2", res.RecordCount, res.FieldCount)
	}

	row := res.Row(0)
	want := []Field{
		{Name: "name", Value: "alice", Present: true},
		{Name: "age", Value: "30", Present: true},
	}
	if !reflect.DeepEqual(row, want) {
		t.Errorf("Row(0) = %v, want %v", row, want)
	}

	// short record: padded value readable but marked absent
	row = res.Row(1)
	if row[0].Value != "bob" || !row[0].Present {
		t.Errorf("Row(1)[0] = %+v", row[0])
	}
	if row[1].Value != "" || row[1].Present {
		t.Errorf("Row(1)[1] = %+v, want absent empty", row[1])
	}

	if res.Row(2) != nil || res.Row(-1) != nil {
		t.Error("out of range Row() should be nil")
	}
}

func TestParseFlatLayout(t *testing.T) {
	res, err := Parse([]byte("name,age\nAlice,30\nBob,25\n"), DefaultOptions())
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if !reflect.DeepEqual(res.Headers, []string{"name", "age"}) {
		t.Errorf("Headers = %v", res.Headers)
	}
	if !reflect.DeepEqual(res.FieldData, []string{"Alice", "30", "Bob", "25"}) {
		t.Errorf("FieldData = %v", res.FieldData)
	}
	if !reflect.DeepEqual(res.ActualFieldCounts, []int{2, 2}) {
		t.Errorf("ActualFieldCounts = %v", res.ActualFieldCounts)
	}
	if res.RecordCount != 2 || res.FieldCount != 2 {
		t.Errorf("counts = %d x %d", res.RecordCount, res.FieldCount)
	}
}

func TestParsePositionalShape(t *testing.T) {
	opts := DefaultOptions()
	opts.Shape = ShapePositional
	res, err := Parse([]byte("a,b\n1,2\n"), opts)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	row := res.Row(0)
	if row[0].Name != "" || row[1].Name != "" {
		t.Errorf("positional rows must not carry names: %v", row)
	}
	if !reflect.DeepEqual(res.Record(0), []string{"1", "2"}) {
		t.Errorf("Record(0) = %v", res.Record(0))
	}
}

func TestParseReservedHeaderNames(t *testing.T) {
	// header names are data, nothing is special about prototype-ish keys
	res, err := Parse([]byte("__proto__,constructor\nx,y\n"), DefaultOptions())
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	row := res.Row(0)
	if row[0].Name != "__proto__" || row[0].Value != "x" {
		t.Errorf("Row(0)[0] = %+v", row[0])
	}
	if row[1].Name != "constructor" || row[1].Value != "y" {
		t.Errorf("Row(0)[1] = %+v", row[1])
	}
}

func TestParseExternalHeaders(t *testing.T) {
	opts := DefaultOptions()
	opts.Headers = []string{"x", "y"}
	res, err := Parse([]byte("1,2\n3,4\n"), opts)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if res.RecordCount != 2 {
		t.Fatalf("RecordCount = %d, want 2", res.RecordCount)
	}
	if res.Row(0)[0].Name != "x" {
		t.Errorf("Row(0)[0] = %+v", res.Row(0)[0])
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"unclosed quote", "a\n\"broken", ErrUnclosedQuote},
		{"invalid utf8", "a\n\xff\n", ErrInvalidEncoding},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input), DefaultOptions())
			if !errors.Is(err, tt.want) {
				t.Fatalf("Parse() error = %v, want %v", err, tt.want)
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("error %T does not unwrap to ParseError", err)
			}
		})
	}
}

func TestEngineStreamingMatchesOneShot(t *testing.T) {
	input := "a,b\n\"1,1\",2\n3,\"4\n5\"\n"

	oneShot, err := Parse([]byte(input), DefaultOptions())
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	for split := 1; split < len(input); split++ {
		eng, err := NewEngine(DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		var rows [][]string
		for _, chunk := range []string{input[:split], input[split:]} {
			batch, err := eng.ProcessChunk([]byte(chunk))
			if err != nil {
				t.Fatalf("split %d: %v", split, err)
			}
			for i := 0; i < batch.RecordCount; i++ {
				rows = append(rows, batch.Record(i))
			}
		}
		final, err := eng.Finish()
		if err != nil {
			t.Fatalf("split %d: %v", split, err)
		}
		for i := 0; i < final.RecordCount; i++ {
			rows = append(rows, final.Record(i))
		}

		var want [][]string
		for i := 0; i < oneShot.RecordCount; i++ {
			want = append(want, oneShot.Record(i))
		}
		if !reflect.DeepEqual(rows, want) {
			t.Fatalf("split %d: %v != %v", split, rows, want)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := Validate([]byte("a,b\n1,2\n"), DefaultOptions()); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
	if err := Validate([]byte("\"open"), DefaultOptions()); !errors.Is(err, ErrUnclosedQuote) {
		t.Errorf("Validate() = %v, want ErrUnclosedQuote", err)
	}
}

func TestRecords(t *testing.T) {
	got, err := Records([]byte("a,b\r\n\"x\",y\r"), DefaultOptions())
	if err != nil {
		t.Fatalf("Records() error: %v", err)
	}
	want := [][]string{{"a", "b"}, {"x", "y"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Records() = %v, want %v", got, want)
	}
}

func TestEscapePublic(t *testing.T) {
	opts := DefaultOptions()
	if got := Escape("a,b", opts); got != `"a,b"` {
		t.Errorf("Escape() = %q", got)
	}
	if got := Escape("plain", opts); got != "plain" {
		t.Errorf("Escape() = %q", got)
	}
}
