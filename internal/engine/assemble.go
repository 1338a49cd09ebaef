package engine

// recordAssembler routes extracted fields either into the header row or
// into the flat builder. It starts in header-capture mode unless external
// headers were supplied, and enforces the per-record field limit on every
// record, the header row included.
type recordAssembler struct {
	maxFieldCount int
	external      []string
	builder       *flatResultBuilder

	awaitingHeader bool
	headerAccum    []string
	fieldsInRecord int
}

func newRecordAssembler(maxFieldCount int, external []string, b *flatResultBuilder) *recordAssembler {
	a := &recordAssembler{
		maxFieldCount: maxFieldCount,
		external:      external,
		builder:       b,
	}
	a.reset()
	return a
}

func (a *recordAssembler) addField(raw []byte) error {
	if a.fieldsInRecord >= a.maxFieldCount {
		return ErrFieldCountExceeded
	}
	a.fieldsInRecord++
	if a.awaitingHeader {
		a.headerAccum = append(a.headerAccum, string(raw))
		return nil
	}
	a.builder.appendField(raw)
	return nil
}

func (a *recordAssembler) endRecord() {
	if a.awaitingHeader {
		a.builder.setHeaders(a.headerAccum)
		a.awaitingHeader = false
	} else {
		a.builder.endRecord(a.fieldsInRecord)
	}
	a.fieldsInRecord = 0
}

// midRecord reports whether fields have been added since the last record
// boundary.
func (a *recordAssembler) midRecord() bool {
	return a.fieldsInRecord > 0
}

func (a *recordAssembler) reset() {
	a.fieldsInRecord = 0
	a.headerAccum = nil
	a.awaitingHeader = a.external == nil
	a.builder.reset(a.external)
}
