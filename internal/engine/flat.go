package engine

// FlatResult is one batch of parsed output in column-blind, record-major
// form: FieldData holds exactly FieldCount entries per record, padded
// where the input record was short. ActualFieldCounts preserves the real
// field count of each record so a padded value is distinguishable from a
// genuinely empty one.
//
// Headers is built once per stream and shared by every batch.
type FlatResult struct {
	Headers           []string
	FieldData         []string
	ActualFieldCounts []int
	RecordCount       int
	FieldCount        int
}

// Field returns the value at (record, field) and whether the input record
// actually carried that field.
func (r *FlatResult) Field(record, field int) (string, bool) {
	if record < 0 || record >= r.RecordCount || field < 0 || field >= r.FieldCount {
		return "", false
	}
	return r.FieldData[record*r.FieldCount+field], field < r.ActualFieldCounts[record]
}

// flatResultBuilder accumulates field bytes contiguously and materializes
// a batch with one string allocation: build converts the whole buffer at
// once and every field becomes a substring of it.
type flatResultBuilder struct {
	headers []string

	buf    []byte
	bounds []int32 // start,end pairs; absent fields are -1,-1
	counts []int
}

func (b *flatResultBuilder) setHeaders(h []string) {
	b.headers = h
}

func (b *flatResultBuilder) appendField(raw []byte) {
	start := int32(len(b.buf))
	b.buf = append(b.buf, raw...)
	b.bounds = append(b.bounds, start, int32(len(b.buf)))
}

// endRecord closes a record of n appended fields, padding or truncating
// the batch to the header width while recording the true count.
func (b *flatResultBuilder) endRecord(n int) {
	width := len(b.headers)
	if n > width {
		b.bounds = b.bounds[:len(b.bounds)-2*(n-width)]
	}
	for k := n; k < width; k++ {
		b.bounds = append(b.bounds, -1, -1)
	}
	b.counts = append(b.counts, n)
}

func (b *flatResultBuilder) build() *FlatResult {
	s := string(b.buf)
	fields := make([]string, 0, len(b.bounds)/2)
	for k := 0; k+1 < len(b.bounds); k += 2 {
		start, end := b.bounds[k], b.bounds[k+1]
		if start < 0 {
			fields = append(fields, "")
		} else {
			fields = append(fields, s[start:end])
		}
	}
	counts := make([]int, len(b.counts))
	copy(counts, b.counts)

	res := &FlatResult{
		Headers:           b.headers,
		FieldData:         fields,
		ActualFieldCounts: counts,
		RecordCount:       len(counts),
		FieldCount:        len(b.headers),
	}
	b.buf = b.buf[:0]
	b.bounds = b.bounds[:0]
	b.counts = b.counts[:0]
	return res
}

func (b *flatResultBuilder) reset(external []string) {
	b.buf = b.buf[:0]
	b.bounds = b.bounds[:0]
	b.counts = b.counts[:0]
	b.headers = external
}
