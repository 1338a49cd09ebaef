package engine

import (
	"bytes"
	"strings"
)

// fieldExtractor turns raw field spans into logical values. The common
// cases never allocate: an unquoted span passes through untouched and a
// quoted span without escapes is returned minus its surrounding quotes.
// Only a field containing escaped quote pairs is rewritten, in a single
// pass into a scratch buffer owned by the extractor.
type fieldExtractor struct {
	quote   byte
	scratch []byte
}

// extract returns the logical bytes of raw. terminatedByLF strips one
// trailing CR first, which is how a CRLF pair acts as a single
// terminator. mayEscape is a hint that the span contains an escaped
// pair; when false the span is still checked, since a pair split across
// scan calls can evade the scanner's lookahead.
//
// The returned slice aliases either raw or the extractor's scratch
// buffer and is only valid until the next extract call.
func (e *fieldExtractor) extract(raw []byte, terminatedByLF bool, mayEscape bool) []byte {
	if terminatedByLF && len(raw) > 0 && raw[len(raw)-1] == '\r' {
		raw = raw[:len(raw)-1]
	}
	if len(raw) < 2 || raw[0] != e.quote || raw[len(raw)-1] != e.quote {
		return raw
	}
	inner := raw[1 : len(raw)-1]
	if !mayEscape && bytes.IndexByte(inner, e.quote) < 0 {
		return inner
	}
	return e.collapse(inner)
}

// collapse rewrites inner with every doubled quote reduced to one.
func (e *fieldExtractor) collapse(inner []byte) []byte {
	e.scratch = e.scratch[:0]
	for i := 0; i < len(inner); i++ {
		b := inner[i]
		e.scratch = append(e.scratch, b)
		if b == e.quote && i+1 < len(inner) && inner[i+1] == e.quote {
			i++
		}
	}
	return e.scratch
}

// Escape renders value as a single CSV field: quoted and with quotes
// doubled when it contains the delimiter, the quote, or a line break,
// returned unchanged otherwise. It is the inverse of field extraction.
func Escape(value string, delimiter, quote byte) string {
	if strings.IndexByte(value, delimiter) < 0 &&
		strings.IndexByte(value, quote) < 0 &&
		strings.IndexByte(value, '\n') < 0 &&
		strings.IndexByte(value, '\r') < 0 {
		return value
	}
	var b strings.Builder
	b.Grow(len(value) + 2)
	b.WriteByte(quote)
	for i := 0; i < len(value); i++ {
		if value[i] == quote {
			b.WriteByte(quote)
		}
		b.WriteByte(value[i])
	}
	b.WriteByte(quote)
	return b.String()
}
