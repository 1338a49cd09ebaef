package csvwire

import "github.com/tabwire/csvwire/internal/engine"

// Result is one batch of parsed records. The embedded FlatResult exposes
// the raw record-major layout; Row and Record build per-record views on
// top of it.
type Result struct {
	*engine.FlatResult
	shape Shape
}

// Field is one value of a keyed row. Present distinguishes a field the
// record actually carried from padding on a short record.
type Field struct {
	Name    string
	Value   string
	Present bool
}

// Row returns record i as a field list. Under ShapeKeyed each field
// carries its header name; under ShapePositional names are empty. Header
// names are plain list entries, so names like "__proto__" are data like
// any other.
func (r *Result) Row(i int) []Field {
	if i < 0 || i >= r.RecordCount {
		return nil
	}
	row := make([]Field, r.FieldCount)
	actual := r.ActualFieldCounts[i]
	base := i * r.FieldCount
	for j := 0; j < r.FieldCount; j++ {
		f := Field{
			Value:   r.FieldData[base+j],
			Present: j < actual,
		}
		if r.shape == ShapeKeyed {
			f.Name = r.Headers[j]
		}
		row[j] = f
	}
	return row
}

// Record returns the plain values of record i, padded to the header
// width.
func (r *Result) Record(i int) []string {
	if i < 0 || i >= r.RecordCount {
		return nil
	}
	base := i * r.FieldCount
	out := make([]string, r.FieldCount)
	copy(out, r.FieldData[base:base+r.FieldCount])
	return out
}
