package engine

import "bytes"

// dfaState enumerates the four parser states. stateAfterQuote is the
// position immediately after a closing quote; quote parity there is
// "outside", which keeps the table bit-for-bit equivalent to the XOR
// parity tracking the scanner uses on its fast path.
type dfaState uint8

const (
	stateFieldStart dfaState = iota
	stateInField
	stateInQuotedField
	stateAfterQuote

	numStates = 4
)

// dfaTable is the transition function for (state, byteClass) pairs plus a
// parallel table telling whether the input byte is emitted as field
// content. Both are plain arrays so a step is two indexed loads.
type dfaTable struct {
	next [numStates][numClasses]dfaState
	emit [numStates][numClasses]bool
}

func newDFATable() *dfaTable {
	t := &dfaTable{}

	t.set(stateFieldStart, classNormal, stateInField, true)
	t.set(stateFieldStart, classDelimiter, stateFieldStart, false)
	t.set(stateFieldStart, classQuote, stateInQuotedField, false)
	t.set(stateFieldStart, classLF, stateFieldStart, false)
	t.set(stateFieldStart, classCR, stateFieldStart, false)

	t.set(stateInField, classNormal, stateInField, true)
	t.set(stateInField, classDelimiter, stateFieldStart, false)
	t.set(stateInField, classQuote, stateInQuotedField, false)
	t.set(stateInField, classLF, stateFieldStart, false)
	t.set(stateInField, classCR, stateFieldStart, false)

	t.set(stateInQuotedField, classNormal, stateInQuotedField, true)
	t.set(stateInQuotedField, classDelimiter, stateInQuotedField, true)
	t.set(stateInQuotedField, classQuote, stateAfterQuote, false)
	t.set(stateInQuotedField, classLF, stateInQuotedField, true)
	t.set(stateInQuotedField, classCR, stateInQuotedField, true)

	t.set(stateAfterQuote, classNormal, stateInField, false)
	t.set(stateAfterQuote, classDelimiter, stateFieldStart, false)
	t.set(stateAfterQuote, classQuote, stateInQuotedField, true)
	t.set(stateAfterQuote, classLF, stateFieldStart, false)
	t.set(stateAfterQuote, classCR, stateFieldStart, false)

	return t
}

func (t *dfaTable) set(s dfaState, c byteClass, next dfaState, emit bool) {
	t.next[s][c] = next
	t.emit[s][c] = emit
}

// inQuote reports the quote parity of a state.
func inQuote(s dfaState) bool {
	return s == stateInQuotedField
}

// ParseDFA parses a complete buffer with the table-driven DFA and returns
// the records as string slices. It accepts LF, CRLF and lone CR record
// terminators, skips blank lines, and returns ErrUnclosedQuote if the
// input ends inside a quoted field.
//
// Unquoted fields and quoted fields without escapes are returned as
// zero-copy views into data; the caller must not mutate data while the
// result is in use.
//
// This path trades a little speed for byte-exact semantics and serves as
// the oracle the separator scanner is tested against.
func ParseDFA(data []byte, delimiter, quote byte) ([][]string, error) {
	cls := newClassifier(delimiter, quote)
	table := newDFATable()

	var records [][]string
	rec := *getFieldSlice()
	capHint := 8

	buf := *getByteBuffer()
	fieldStart, fieldEnd := -1, -1
	dirty := false

	endField := func() {
		var s string
		switch {
		case dirty:
			s = string(buf)
		case fieldStart >= 0:
			s = unsafeString(data[fieldStart:fieldEnd])
		}
		rec = append(rec, s)
		buf = buf[:0]
		fieldStart, fieldEnd = -1, -1
		dirty = false
	}

	endRecord := func() {
		out := make([]string, len(rec), max(len(rec), capHint))
		copy(out, rec)
		records = append(records, out)
		if len(records) == 1 {
			capHint = len(out)
		}
		rec = rec[:0]
	}

	state := stateFieldStart
	for i := 0; i < len(data); i++ {
		b := data[i]
		c := cls.class(b)

		// Bulk-skip runs of plain bytes: locate the next structural
		// byte a word at a time instead of stepping the table per byte.
		if c == classNormal && (state == stateInField || state == stateFieldStart) {
			end := len(data)
			if j := indexStructural(data[i:], delimiter, quote); j >= 0 {
				end = i + j
			}
			if dirty {
				buf = append(buf, data[i:end]...)
			} else if fieldStart < 0 {
				fieldStart, fieldEnd = i, end
			} else if fieldEnd == i {
				fieldEnd = end
			} else {
				buf = append(buf, data[fieldStart:fieldEnd]...)
				buf = append(buf, data[i:end]...)
				dirty = true
			}
			state = stateInField
			i = end - 1
			continue
		}
		if c == classNormal && state == stateInQuotedField {
			// Everything up to the next quote is content here, so the
			// run can include delimiters, CR and LF.
			end := len(data)
			if j := bytes.IndexByte(data[i:], quote); j >= 0 {
				end = i + j
			}
			run := data[i:end]
			if dirty {
				buf = append(buf, run...)
			} else if fieldStart < 0 {
				fieldStart, fieldEnd = i, end
			} else if fieldEnd == i {
				fieldEnd = end
			} else {
				buf = append(buf, data[fieldStart:fieldEnd]...)
				buf = append(buf, run...)
				dirty = true
			}
			i = end - 1
			continue
		}

		if table.emit[state][c] {
			if dirty {
				buf = append(buf, b)
			} else if fieldStart < 0 {
				fieldStart, fieldEnd = i, i+1
			} else if fieldEnd == i {
				fieldEnd = i + 1
			} else {
				buf = append(buf, data[fieldStart:fieldEnd]...)
				buf = append(buf, b)
				dirty = true
			}
		}

		prev := state
		state = table.next[state][c]

		if !inQuote(prev) {
			switch c {
			case classDelimiter:
				endField()
			case classLF, classCR:
				// CRLF is one terminator: the CR ends the record and the
				// following LF lands on an empty line, which is skipped
				// like any other blank line.
				if prev == stateFieldStart && len(rec) == 0 {
					break
				}
				endField()
				endRecord()
			}
		}
	}

	if state == stateInQuotedField {
		putFieldSlice(&rec)
		putByteBuffer(&buf)
		return nil, ErrUnclosedQuote
	}
	if fieldStart >= 0 || dirty || len(rec) > 0 || state == stateAfterQuote {
		endField()
		endRecord()
	}

	putFieldSlice(&rec)
	putByteBuffer(&buf)
	return records, nil
}
