package engine

import (
	"unicode/utf8"
)

// Config carries the per-stream parse configuration.
type Config struct {
	Delimiter     byte
	Quote         byte
	MaxFieldCount int

	// Headers, when non-nil, are used as-is and the first input record is
	// treated as data.
	Headers []string

	// Extended selects the metadata-carrying scan; Wide enables the
	// 16-byte window path. Both default on in DefaultConfig.
	Extended bool
	Wide     bool

	// Source is an optional label included in error messages.
	Source string
}

const defaultMaxFieldCount = 100000

func DefaultConfig() Config {
	return Config{
		Delimiter:     ',',
		Quote:         '"',
		MaxFieldCount: defaultMaxFieldCount,
		Extended:      true,
		Wide:          true,
	}
}

// StreamController drives the incremental parse. Bytes of the in-progress
// record are retained together with the separators already found in them;
// a Feed call scans only the newly arrived bytes, merges the separators,
// assembles every record up to the last terminator into the batch
// builder, and rebases the remainder. No byte is ever scanned twice.
//
// A multi-byte UTF-8 sequence split across chunks is held back from
// scanning until its remaining bytes arrive; a sequence still incomplete
// at Flush is an encoding error.
type StreamController struct {
	cfg       Config
	scanner   *Scanner
	extractor fieldExtractor
	builder   *flatResultBuilder
	assembler *recordAssembler

	pending     []byte
	pendingSeps []uint32
	pendingEsc  bitset

	stitch  []byte
	utf8Rem [utf8.UTFMax]byte
	utf8Len int

	pos Position
}

func NewStreamController(cfg Config) *StreamController {
	if cfg.Delimiter == 0 {
		cfg.Delimiter = ','
	}
	if cfg.Quote == 0 {
		cfg.Quote = '"'
	}
	if cfg.MaxFieldCount <= 0 {
		cfg.MaxFieldCount = defaultMaxFieldCount
	}
	c := &StreamController{
		cfg:       cfg,
		scanner:   NewScanner(cfg.Delimiter, cfg.Quote),
		extractor: fieldExtractor{quote: cfg.Quote},
		builder:   &flatResultBuilder{},
	}
	c.scanner.SetWide(cfg.Wide)
	c.assembler = newRecordAssembler(cfg.MaxFieldCount, cfg.Headers, c.builder)
	c.pos.reset()
	return c
}

// Process feeds one chunk and returns the batch of records completed by
// it. The batch may be empty when the chunk ends mid-record.
func (c *StreamController) Process(chunk []byte) (*FlatResult, error) {
	if err := c.Feed(chunk); err != nil {
		return nil, err
	}
	return c.builder.build(), nil
}

// Feed is Process without building a batch; completed records accumulate
// in the builder until Process or Flush. Useful when the whole input is
// wanted as a single result.
func (c *StreamController) Feed(chunk []byte) error {
	stitched := chunk
	if c.utf8Len > 0 {
		c.stitch = append(c.stitch[:0], c.utf8Rem[:c.utf8Len]...)
		c.stitch = append(c.stitch, chunk...)
		stitched = c.stitch
	}

	boundary, err := utf8SafeLen(stitched)
	if err != nil {
		return c.wrap(err, 0)
	}
	prefix, tail := stitched[:boundary], stitched[boundary:]
	if !utf8.Valid(prefix) {
		return c.wrap(ErrInvalidEncoding, int64(len(c.pending)+invalidUTF8At(prefix)))
	}
	c.utf8Len = copy(c.utf8Rem[:], tail)

	base := uint32(len(c.pending))
	var res ScanResult
	if c.cfg.Extended {
		res, err = c.scanner.ScanExtended(prefix, base)
	} else {
		res, err = c.scanner.Scan(prefix, base)
	}
	if err != nil {
		return c.wrap(err, int64(len(c.pending)))
	}

	c.pending = append(c.pending, prefix...)
	start := len(c.pendingSeps)
	c.pendingSeps = append(c.pendingSeps, res.Separators...)
	if c.cfg.Extended {
		for i := range res.Separators {
			if res.UnescapeFlags[i>>5]&(1<<uint(i&31)) != 0 {
				c.pendingEsc.set(start + i)
			}
		}
	}

	if err := c.consumeRecords(); err != nil {
		return err
	}

	// A record can only hold the limit's worth of fields; a pending tail
	// with that many completed fields and no terminator in sight is
	// already over it.
	if len(c.pendingSeps) >= c.cfg.MaxFieldCount {
		return c.wrap(ErrFieldCountExceeded, int64(len(c.pending)))
	}
	return nil
}

// Flush terminates the stream: the retained tail becomes the final
// record, the last batch is built, and all per-stream state is cleared so
// the controller can parse another stream.
func (c *StreamController) Flush() (*FlatResult, error) {
	if c.utf8Len > 0 {
		return nil, c.wrap(ErrInvalidEncoding, int64(len(c.pending)))
	}
	if c.scanner.InQuote() {
		return nil, c.wrap(ErrUnclosedQuote, int64(len(c.pending)))
	}

	fieldStart := uint32(0)
	for i, p := range c.pendingSeps {
		off := c.sepOff(p)
		if err := c.emitField(c.pending[fieldStart:off], false, i); err != nil {
			return nil, err
		}
		fieldStart = off + 1
	}
	trailing := c.pending[fieldStart:]
	if c.assembler.midRecord() || len(trailing) > 0 {
		if err := c.emitField(trailing, false, -1); err != nil {
			return nil, err
		}
		c.assembler.endRecord()
		c.pos.Record++
	}

	res := c.builder.build()
	c.Reset()
	return res, nil
}

// Reset discards all stream state while keeping the configuration, so a
// failed or finished controller can be reused.
func (c *StreamController) Reset() {
	c.scanner.Reset()
	c.pending = c.pending[:0]
	c.pendingSeps = c.pendingSeps[:0]
	c.pendingEsc.clear()
	c.utf8Len = 0
	c.pos.reset()
	c.assembler.reset()
}

// Position reports the controller's location at the start of the retained
// tail.
func (c *StreamController) Position() Position {
	return c.pos
}

func (c *StreamController) consumeRecords() error {
	lastLF := -1
	for i := len(c.pendingSeps) - 1; i >= 0; i-- {
		if sepType(c.pendingSeps[i]) == sepLF {
			lastLF = i
			break
		}
	}
	if lastLF < 0 {
		return nil
	}

	fieldStart := uint32(0)
	for i := 0; i <= lastLF; i++ {
		p := c.pendingSeps[i]
		off := c.sepOff(p)
		raw := c.pending[fieldStart:off]

		if sepType(p) == sepLF {
			blank := !c.assembler.midRecord() &&
				(len(raw) == 0 || (len(raw) == 1 && raw[0] == '\r'))
			if !blank {
				if err := c.emitField(raw, true, i); err != nil {
					return err
				}
				c.assembler.endRecord()
				c.pos.Record++
			}
			c.pos.Line++
		} else {
			if err := c.emitField(raw, false, i); err != nil {
				return err
			}
		}
		fieldStart = off + 1
	}

	// Drain consumed bytes and rebase the leftover separators onto the
	// retained tail.
	consumed := fieldStart
	c.pending = c.pending[:copy(c.pending, c.pending[consumed:])]
	rem := c.pendingSeps[lastLF+1:]
	for k, p := range rem {
		off := c.sepOff(p) - consumed
		if c.cfg.Extended {
			c.pendingSeps[k] = packSeparatorExtended(off, sepQuoted(p), sepType(p))
		} else {
			c.pendingSeps[k] = packSeparator(off, sepType(p))
		}
		c.pendingEsc.move(lastLF+1+k, k)
	}
	c.pendingSeps = c.pendingSeps[:len(rem)]
	c.pendingEsc.truncate(len(rem))
	c.scanner.Rebase(consumed)
	c.pos.Byte += int64(consumed)
	return nil
}

func (c *StreamController) emitField(raw []byte, terminatedByLF bool, sepIdx int) error {
	mayEscape := sepIdx >= 0 && c.cfg.Extended && c.pendingEsc.get(sepIdx)
	val := c.extractor.extract(raw, terminatedByLF, mayEscape)
	if err := c.assembler.addField(val); err != nil {
		return c.wrap(err, int64(len(c.pending)))
	}
	return nil
}

func (c *StreamController) sepOff(p uint32) uint32 {
	if c.cfg.Extended {
		return sepOffsetExtended(p)
	}
	return sepOffset(p)
}

func (c *StreamController) wrap(err error, rel int64) error {
	return &ParseError{
		Line:   c.pos.Line,
		Byte:   c.pos.Byte + rel,
		Source: c.cfg.Source,
		Err:    err,
	}
}

// utf8SafeLen returns the length of the longest prefix of b that does not
// end inside a multi-byte sequence. It walks back at most UTFMax bytes
// looking for the last leading byte; a trailer that cannot be part of any
// valid sequence is an encoding error.
func utf8SafeLen(b []byte) (int, error) {
	n := len(b)
	for back := 1; back <= utf8.UTFMax && back <= n; back++ {
		lead := b[n-back]
		if lead&0xC0 == 0x80 {
			continue // continuation byte, keep walking
		}
		need := 0
		switch {
		case lead&0x80 == 0x00:
			need = 1
		case lead&0xE0 == 0xC0:
			need = 2
		case lead&0xF0 == 0xE0:
			need = 3
		case lead&0xF8 == 0xF0:
			need = 4
		default:
			return 0, ErrInvalidEncoding
		}
		if need <= back {
			return n, nil // sequence complete
		}
		return n - back, nil
	}
	if n >= utf8.UTFMax {
		return 0, ErrInvalidEncoding
	}
	return 0, nil
}

// invalidUTF8At locates the first invalid byte; only called after
// utf8.Valid has already failed.
func invalidUTF8At(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return len(b)
}

// bitset tracks which pending separators end fields that need unescaping.
type bitset []uint32

func (s *bitset) set(i int) {
	for len(*s) <= i>>5 {
		*s = append(*s, 0)
	}
	(*s)[i>>5] |= 1 << uint(i&31)
}

func (s bitset) get(i int) bool {
	if i>>5 >= len(s) {
		return false
	}
	return s[i>>5]&(1<<uint(i&31)) != 0
}

func (s *bitset) move(from, to int) {
	if s.get(from) {
		s.set(to)
	} else if s.get(to) {
		(*s)[to>>5] &^= 1 << uint(to&31)
	}
}

func (s *bitset) truncate(n int) {
	words := (n + 31) >> 5
	if len(*s) > words {
		*s = (*s)[:words]
	}
	// clear bits at and above n in the last kept word
	if words > 0 && n&31 != 0 {
		(*s)[words-1] &= 1<<uint(n&31) - 1
	}
}

func (s *bitset) clear() {
	*s = (*s)[:0]
}
