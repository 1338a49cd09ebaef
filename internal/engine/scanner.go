package engine

import (
	"encoding/binary"
	"math/bits"
)

// Scanner locates field delimiters and record terminators in raw chunks
// and reports them as packed uint32 separators. It carries quote parity
// (and, for extended scans, per-field metadata) across calls so a stream
// can be scanned chunk by chunk with no rescanning.
//
// Two paths produce identical output for arbitrary input. The wide path
// examines 16-byte windows as two 64-bit SWAR lanes and is taken whenever
// a window contains no quote byte and the scanner is outside a quoted
// region. Any window that trips either condition falls back to a
// byte-at-a-time walk whose quote handling is plain XOR parity: every
// quote byte toggles, so an escaped pair nets to zero and a delimiter or
// LF counts only when parity is outside. The trailing sub-16-byte tail is
// always walked byte-wise.
type Scanner struct {
	delimiter byte
	quote     byte
	wide      bool
	inQuote   bool

	// In-progress field metadata for extended scans, carried across
	// calls. fieldStart is in the same coordinate space as emitted
	// offsets; Rebase keeps it aligned when the caller drains bytes.
	fieldStart   uint32
	fieldQuoted  bool
	fieldEscaped bool
}

// ScanResult is the output of one scan call. Ownership of the slices
// passes to the caller; the scanner never retains them.
type ScanResult struct {
	// Separators in ascending offset order, packed per packed.go.
	Separators []uint32

	// UnescapeFlags is a bitmap over the fields ended in this result:
	// bit (i & 31) of word i>>5 is set when the field ended by
	// Separators[i] contains an escaped quote pair and needs collapsing.
	// Only populated by ScanExtended.
	UnescapeFlags []uint32

	// EndInQuote is the quote parity after the last byte of the chunk.
	EndInQuote bool

	// EndCharOffset is the character offset one past the last character,
	// populated by ScanCharOffsets.
	EndCharOffset uint32
}

func NewScanner(delimiter, quote byte) *Scanner {
	return &Scanner{delimiter: delimiter, quote: quote, wide: true}
}

// SetWide toggles the 16-byte window path. The scalar path is complete on
// its own; disabling wide is for testing and perf comparison.
func (s *Scanner) SetWide(wide bool) {
	s.wide = wide
}

func (s *Scanner) InQuote() bool {
	return s.inQuote
}

// SetInQuote overrides the carried quote parity. Used when a caller
// re-synchronizes the scanner onto a known stream position.
func (s *Scanner) SetInQuote(v bool) {
	s.inQuote = v
}

// Rebase shifts the carried field-start coordinate down by delta after
// the caller has drained delta bytes from the front of its buffer.
func (s *Scanner) Rebase(delta uint32) {
	if s.fieldStart >= delta {
		s.fieldStart -= delta
	} else {
		s.fieldStart = 0
	}
}

// Reset clears all carried state.
func (s *Scanner) Reset() {
	s.inQuote = false
	s.fieldStart = 0
	s.fieldQuoted = false
	s.fieldEscaped = false
}

func checkOffsetRange(baseOffset uint32, n int, limit uint32) error {
	if n == 0 {
		return nil
	}
	if uint64(baseOffset)+uint64(n)-1 > uint64(limit) {
		return ErrOffsetOverflow
	}
	return nil
}

// Scan emits basic separators for chunk. Offsets are baseOffset plus the
// byte's index in chunk.
func (s *Scanner) Scan(chunk []byte, baseOffset uint32) (ScanResult, error) {
	if err := checkOffsetRange(baseOffset, len(chunk), maxOffsetBasic); err != nil {
		return ScanResult{}, err
	}
	seps := make([]uint32, 0, len(chunk)/8+4)

	i := 0
	if s.wide {
		dPat := broadcast(s.delimiter)
		qPat := broadcast(s.quote)
		lfPat := broadcast('\n')

		for ; i+16 <= len(chunk); i += 16 {
			w0 := binary.LittleEndian.Uint64(chunk[i:])
			w1 := binary.LittleEndian.Uint64(chunk[i+8:])
			q0 := matchMask(w0, qPat)
			q1 := matchMask(w1, qPat)

			if q0|q1 != 0 || s.inQuote {
				for j := i; j < i+16; j++ {
					seps = s.scanByte(chunk[j], baseOffset+uint32(j), seps)
				}
				continue
			}

			d0 := matchMask(w0, dPat)
			l0 := matchMask(w0, lfPat)
			seps = emitLane(d0, l0, baseOffset+uint32(i), seps)
			d1 := matchMask(w1, dPat)
			l1 := matchMask(w1, lfPat)
			seps = emitLane(d1, l1, baseOffset+uint32(i)+8, seps)
		}
	}
	for ; i < len(chunk); i++ {
		seps = s.scanByte(chunk[i], baseOffset+uint32(i), seps)
	}

	return ScanResult{Separators: seps, EndInQuote: s.inQuote}, nil
}

// emitLane appends one packed separator per set byte of the delimiter and
// LF masks, in ascending offset order. laneBase is the offset of byte 0.
func emitLane(dMask, lfMask uint64, laneBase uint32, seps []uint32) []uint32 {
	combined := dMask | lfMask
	for combined != 0 {
		t := bits.TrailingZeros64(combined)
		pos := laneBase + uint32(maskByteIndex(t))
		if dMask&(1<<uint(t)) != 0 {
			seps = append(seps, packSeparator(pos, sepDelimiter))
		} else {
			seps = append(seps, packSeparator(pos, sepLF))
		}
		combined &= combined - 1
	}
	return seps
}

// scanByte is one step of the scalar path. Its structure mirrors the DFA
// transition table: a quote byte always toggles parity, and structural
// bytes count only while parity is outside.
func (s *Scanner) scanByte(b byte, pos uint32, seps []uint32) []uint32 {
	switch {
	case b == s.quote:
		s.inQuote = !s.inQuote
	case s.inQuote:
	case b == s.delimiter:
		seps = append(seps, packSeparator(pos, sepDelimiter))
	case b == '\n':
		seps = append(seps, packSeparator(pos, sepLF))
	}
	return seps
}

// ScanExtended is Scan with per-field metadata: each separator carries a
// "field was quoted" flag and the result includes a bitmap of fields that
// contain escaped quote pairs. Offsets lose one bit of range to the flag.
func (s *Scanner) ScanExtended(chunk []byte, baseOffset uint32) (ScanResult, error) {
	if err := checkOffsetRange(baseOffset, len(chunk), maxOffsetExtended); err != nil {
		return ScanResult{}, err
	}

	seps := make([]uint32, 0, len(chunk)/8+4)
	var flags []uint32
	var curFlags uint32
	fieldIndex := 0

	endField := func(pos, sepTyp uint32) {
		seps = append(seps, packSeparatorExtended(pos, s.fieldQuoted, sepTyp))
		if s.fieldEscaped {
			curFlags |= 1 << uint(fieldIndex&31)
		}
		fieldIndex++
		if fieldIndex&31 == 0 {
			flags = append(flags, curFlags)
			curFlags = 0
		}
		s.fieldStart = pos + 1
		s.fieldQuoted = false
		s.fieldEscaped = false
	}

	step := func(b byte, pos uint32, next byte, hasNext bool) bool {
		switch {
		case b == s.quote:
			if s.inQuote && hasNext && next == s.quote {
				s.fieldEscaped = true
				return true // consume the pair, parity unchanged
			}
			if !s.inQuote && pos == s.fieldStart {
				s.fieldQuoted = true
			}
			s.inQuote = !s.inQuote
		case s.inQuote:
		case b == s.delimiter:
			endField(pos, sepDelimiter)
		case b == '\n':
			endField(pos, sepLF)
		}
		return false
	}

	i := 0
	if s.wide {
		dPat := broadcast(s.delimiter)
		qPat := broadcast(s.quote)
		lfPat := broadcast('\n')

		for i+16 <= len(chunk) {
			w0 := binary.LittleEndian.Uint64(chunk[i:])
			w1 := binary.LittleEndian.Uint64(chunk[i+8:])
			q0 := matchMask(w0, qPat)
			q1 := matchMask(w1, qPat)

			if q0|q1 != 0 || s.inQuote {
				end := i + 16
				for i < end {
					var next byte
					hasNext := i+1 < len(chunk)
					if hasNext {
						next = chunk[i+1]
					}
					if step(chunk[i], baseOffset+uint32(i), next, hasNext) {
						i += 2
					} else {
						i++
					}
				}
				continue
			}

			d0 := matchMask(w0, dPat)
			l0 := matchMask(w0, lfPat)
			combined := d0 | l0
			laneBase := baseOffset + uint32(i)
			for combined != 0 {
				t := bits.TrailingZeros64(combined)
				pos := laneBase + uint32(maskByteIndex(t))
				if d0&(1<<uint(t)) != 0 {
					endField(pos, sepDelimiter)
				} else {
					endField(pos, sepLF)
				}
				combined &= combined - 1
			}
			d1 := matchMask(w1, dPat)
			l1 := matchMask(w1, lfPat)
			combined = d1 | l1
			laneBase += 8
			for combined != 0 {
				t := bits.TrailingZeros64(combined)
				pos := laneBase + uint32(maskByteIndex(t))
				if d1&(1<<uint(t)) != 0 {
					endField(pos, sepDelimiter)
				} else {
					endField(pos, sepLF)
				}
				combined &= combined - 1
			}
			i += 16
		}
	}
	for i < len(chunk) {
		var next byte
		hasNext := i+1 < len(chunk)
		if hasNext {
			next = chunk[i+1]
		}
		if step(chunk[i], baseOffset+uint32(i), next, hasNext) {
			i += 2
		} else {
			i++
		}
	}

	if fieldIndex&31 != 0 {
		flags = append(flags, curFlags)
	}
	return ScanResult{Separators: seps, UnescapeFlags: flags, EndInQuote: s.inQuote}, nil
}

// ScanCharOffsets emits basic separators whose offsets count characters
// rather than bytes: every byte that is not a UTF-8 continuation byte
// starts a character. baseChar is the character offset of chunk[0];
// EndCharOffset in the result carries the count forward.
func (s *Scanner) ScanCharOffsets(chunk []byte, baseOffset, baseChar uint32) (ScanResult, error) {
	if err := checkOffsetRange(baseOffset, len(chunk), maxOffsetBasic); err != nil {
		return ScanResult{}, err
	}
	seps := make([]uint32, 0, len(chunk)/8+4)
	char := baseChar

	scalar := func(b byte) {
		isStart := b&0xC0 != 0x80
		switch {
		case b == s.quote:
			s.inQuote = !s.inQuote
		case s.inQuote:
		case b == s.delimiter:
			seps = append(seps, packSeparator(char, sepDelimiter))
		case b == '\n':
			seps = append(seps, packSeparator(char, sepLF))
		}
		if isStart {
			char++
		}
	}

	i := 0
	if s.wide {
		dPat := broadcast(s.delimiter)
		qPat := broadcast(s.quote)
		lfPat := broadcast('\n')
		contPat := broadcast(0x80)
		topBits := broadcast(0xC0)

		for ; i+16 <= len(chunk); i += 16 {
			w0 := binary.LittleEndian.Uint64(chunk[i:])
			w1 := binary.LittleEndian.Uint64(chunk[i+8:])
			q0 := matchMask(w0, qPat)
			q1 := matchMask(w1, qPat)

			if q0|q1 != 0 || s.inQuote {
				for j := i; j < i+16; j++ {
					scalar(chunk[j])
				}
				continue
			}

			for lane := 0; lane < 2; lane++ {
				w := w0
				if lane == 1 {
					w = w1
				}
				cont := matchMask(w&topBits, contPat)
				starts := ^cont & swarHiMask
				d := matchMask(w, dPat)
				l := matchMask(w, lfPat)
				combined := d | l
				for combined != 0 {
					t := bits.TrailingZeros64(combined)
					before := bits.OnesCount64(starts & (1<<uint(t) - 1))
					pos := char + uint32(before)
					if d&(1<<uint(t)) != 0 {
						seps = append(seps, packSeparator(pos, sepDelimiter))
					} else {
						seps = append(seps, packSeparator(pos, sepLF))
					}
					combined &= combined - 1
				}
				char += uint32(bits.OnesCount64(starts))
			}
		}
	}
	for ; i < len(chunk); i++ {
		scalar(chunk[i])
	}

	return ScanResult{Separators: seps, EndInQuote: s.inQuote, EndCharOffset: char}, nil
}
