package engine

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the engine. All of them are fatal for the
// stream they occur on: the controller must be Reset before reuse.
var (
	// ErrUnclosedQuote is returned by Flush when the input ends while
	// quote parity is still open.
	ErrUnclosedQuote = errors.New("unclosed quoted field")

	// ErrFieldCountExceeded is returned when a single record (header row
	// included) carries more fields than the configured limit.
	ErrFieldCountExceeded = errors.New("field count exceeds limit")

	// ErrInvalidEncoding is returned when the input is not valid UTF-8,
	// or when a truncated multi-byte sequence is still pending at Flush.
	ErrInvalidEncoding = errors.New("invalid UTF-8 in input")

	// ErrOffsetOverflow is returned when a chunk would produce separator
	// offsets that do not fit the packed representation.
	ErrOffsetOverflow = errors.New("separator offset exceeds packed range")
)

// ParseError decorates a sentinel error with the position it occurred at
// and, when configured, a human-readable source label.
type ParseError struct {
	Line   int    // 1-indexed physical line
	Byte   int64  // absolute byte offset in the logical stream
	Source string // optional label, e.g. a file name
	Err    error
}

func (e *ParseError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("line %d (byte %d): %v in %q", e.Line, e.Byte, e.Err, e.Source)
	}
	return fmt.Sprintf("line %d (byte %d): %v", e.Line, e.Byte, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
