// Package csvwire is a streaming CSV parsing engine. Input arrives in
// arbitrary byte chunks; each chunk yields a batch of the records it
// completed, with partial records carried across chunk boundaries
// untouched. Fields follow RFC 4180 quoting with doubled-quote escapes,
// terminators are LF or CRLF, and all input must be valid UTF-8.
package csvwire

import (
	"errors"

	"github.com/tabwire/csvwire/internal/engine"
)

// Sentinel errors surfaced by the package. Positioned variants unwrap to
// these, so errors.Is works against them.
var (
	ErrUnclosedQuote      = engine.ErrUnclosedQuote
	ErrFieldCountExceeded = engine.ErrFieldCountExceeded
	ErrInvalidEncoding    = engine.ErrInvalidEncoding
	ErrOffsetOverflow     = engine.ErrOffsetOverflow

	// ErrInputTooLarge is returned by the reader front-end when the
	// input exceeds ReaderOptions.MaxInputBytes.
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
)

// ParseError carries the stream position of a parse failure.
type ParseError = engine.ParseError

// Engine is a reusable incremental parser. It is not safe for concurrent
// use; run one Engine per stream (see ParseStreams for a fan-out helper).
type Engine struct {
	opts Options
	ctrl *engine.StreamController
}

// NewEngine validates opts and builds an engine.
func NewEngine(opts Options) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	cfg := engine.Config{
		Delimiter:     opts.Delimiter,
		Quote:         opts.Quote,
		MaxFieldCount: opts.MaxFieldCount,
		Headers:       opts.Headers,
		Extended:      !opts.DisableFieldFlags,
		Wide:          !opts.DisableWideScan,
		Source:        opts.Source,
	}
	return &Engine{opts: opts, ctrl: engine.NewStreamController(cfg)}, nil
}

// ProcessChunk feeds one chunk of the stream and returns the records it
// completed. The batch is empty, not nil, when the chunk ends mid-record.
func (e *Engine) ProcessChunk(chunk []byte) (*Result, error) {
	flat, err := e.ctrl.Process(chunk)
	if err != nil {
		return nil, err
	}
	return &Result{FlatResult: flat, shape: e.opts.Shape}, nil
}

// Finish signals end of input and returns the final batch. After Finish
// the engine is reset and ready for a new stream.
func (e *Engine) Finish() (*Result, error) {
	flat, err := e.ctrl.Flush()
	if err != nil {
		return nil, err
	}
	return &Result{FlatResult: flat, shape: e.opts.Shape}, nil
}

// Process parses data as a complete stream: one chunk, then Finish.
func (e *Engine) Process(data []byte) (*Result, error) {
	if err := e.ctrl.Feed(data); err != nil {
		return nil, err
	}
	return e.Finish()
}

// Reset discards stream state after an error or an abandoned stream.
func (e *Engine) Reset() {
	e.ctrl.Reset()
}

// Parse is the one-shot convenience: parse data with opts and return a
// single result.
func Parse(data []byte, opts Options) (*Result, error) {
	e, err := NewEngine(opts)
	if err != nil {
		return nil, err
	}
	return e.Process(data)
}

// Escape renders value as a single CSV field, quoting and doubling quotes
// when needed.
func Escape(value string, opts Options) string {
	return engine.Escape(value, opts.Delimiter, opts.Quote)
}
