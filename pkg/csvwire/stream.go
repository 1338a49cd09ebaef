package csvwire

import (
	"context"
	"io"

	"github.com/tabwire/csvwire/internal/source"
)

// ReaderOptions extends Options with the stream front-end knobs.
type ReaderOptions struct {
	Options

	// Charset is an IANA label for the input encoding; the stream is
	// transcoded to UTF-8 before parsing. Empty means the input is
	// already UTF-8.
	Charset string

	// ContentEncoding is "gzip", "deflate" or "deflate-raw" for
	// compressed input.
	ContentEncoding string

	// ChunkSize is the read granularity. Default 64 KiB.
	ChunkSize int

	// MaxInputBytes, when positive, aborts the parse with
	// ErrInputTooLarge once more decoded bytes than this have been read.
	MaxInputBytes int64
}

// DefaultReaderOptions returns ReaderOptions with the standard parse
// configuration.
func DefaultReaderOptions() ReaderOptions {
	return ReaderOptions{Options: DefaultOptions(), ChunkSize: 64 * 1024}
}

// Scanner pulls batches of records from an io.Reader. Usage follows the
// bufio idiom:
//
//	sc, err := csvwire.NewScanner(f, opts)
//	for sc.Scan() {
//	    batch := sc.Batch()
//	    ...
//	}
//	if err := sc.Err(); err != nil { ... }
type Scanner struct {
	eng   *Engine
	r     io.Reader
	buf   []byte
	limit int64
	read  int64

	batch *Result
	err   error
	done  bool
}

// NewScanner wraps r. The reader is normalized first: decompressed,
// transcoded to UTF-8 and BOM-stripped per opts.
func NewScanner(r io.Reader, opts ReaderOptions) (*Scanner, error) {
	eng, err := NewEngine(opts.Options)
	if err != nil {
		return nil, err
	}
	nr, err := source.NewReader(r, source.Options{
		Charset:         opts.Charset,
		ContentEncoding: opts.ContentEncoding,
	})
	if err != nil {
		return nil, err
	}
	size := opts.ChunkSize
	if size <= 0 {
		size = 64 * 1024
	}
	return &Scanner{
		eng:   eng,
		r:     nr,
		buf:   make([]byte, size),
		limit: opts.MaxInputBytes,
	}, nil
}

// Scan advances to the next non-empty batch. It returns false at end of
// input or on error; Err disambiguates.
func (s *Scanner) Scan() bool {
	if s.err != nil || s.done {
		return false
	}
	for {
		n, rerr := s.r.Read(s.buf)
		if n > 0 {
			s.read += int64(n)
			if s.limit > 0 && s.read > s.limit {
				s.err = ErrInputTooLarge
				return false
			}
			batch, perr := s.eng.ProcessChunk(s.buf[:n])
			if perr != nil {
				s.err = perr
				return false
			}
			if batch.RecordCount > 0 {
				s.batch = batch
				if rerr == io.EOF {
					// deliver this batch now, flush on the next Scan
					s.r = eofReader{}
				} else if rerr != nil {
					s.err = rerr
				}
				return true
			}
		}
		if rerr == io.EOF {
			batch, perr := s.eng.Finish()
			if perr != nil {
				s.err = perr
				return false
			}
			s.done = true
			if batch.RecordCount > 0 {
				s.batch = batch
				return true
			}
			return false
		}
		if rerr != nil {
			s.err = rerr
			return false
		}
	}
}

// Batch returns the records produced by the last successful Scan.
func (s *Scanner) Batch() *Result {
	return s.batch
}

// Err returns the first error encountered, nil at clean end of input.
func (s *Scanner) Err() error {
	return s.err
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }

// ParseReader consumes r to the end and returns all records as a single
// result. ctx is checked between chunks.
func ParseReader(ctx context.Context, r io.Reader, opts ReaderOptions) (*Result, error) {
	eng, err := NewEngine(opts.Options)
	if err != nil {
		return nil, err
	}
	nr, err := source.NewReader(r, source.Options{
		Charset:         opts.Charset,
		ContentEncoding: opts.ContentEncoding,
	})
	if err != nil {
		return nil, err
	}
	size := opts.ChunkSize
	if size <= 0 {
		size = 64 * 1024
	}
	buf := make([]byte, size)
	var read int64
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, rerr := nr.Read(buf)
		if n > 0 {
			read += int64(n)
			if opts.MaxInputBytes > 0 && read > opts.MaxInputBytes {
				return nil, ErrInputTooLarge
			}
			if err := eng.ctrl.Feed(buf[:n]); err != nil {
				return nil, err
			}
		}
		if rerr == io.EOF {
			return eng.Finish()
		}
		if rerr != nil {
			return nil, rerr
		}
	}
}
