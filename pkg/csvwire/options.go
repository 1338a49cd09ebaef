package csvwire

import "fmt"

// Shape selects how parsed records are viewed: keyed associates each
// value with its header name, positional is a plain ordered list.
type Shape int

const (
	ShapeKeyed Shape = iota
	ShapePositional
)

// Options configures a parse.
type Options struct {
	// Delimiter separates fields. Default ','.
	Delimiter byte

	// Quote opens and closes quoted fields. Default '"'.
	Quote byte

	// MaxFieldCount caps the fields a single record may carry, header
	// row included. Default 100000.
	MaxFieldCount int

	// Headers, when non-nil, supplies the column names and the first
	// input record is treated as data.
	Headers []string

	// Shape selects keyed or positional record views. Default keyed.
	Shape Shape

	// Source is an optional label, typically a file name, included in
	// error messages.
	Source string

	// DisableWideScan forces the byte-at-a-time scan path.
	DisableWideScan bool

	// DisableFieldFlags turns off the metadata-carrying scan that lets
	// quoted fields skip the escape check.
	DisableFieldFlags bool
}

// DefaultOptions returns the standard RFC 4180 configuration.
func DefaultOptions() Options {
	return Options{
		Delimiter:     ',',
		Quote:         '"',
		MaxFieldCount: 100000,
		Shape:         ShapeKeyed,
	}
}

// OptionsError describes an invalid option value.
type OptionsError struct {
	Field   string
	Message string
}

func (e *OptionsError) Error() string {
	return fmt.Sprintf("invalid option %s: %s", e.Field, e.Message)
}

// Validate checks the options for internal consistency.
func (o Options) Validate() error {
	if !validMark(o.Delimiter) {
		return &OptionsError{Field: "Delimiter", Message: "must be a printable single byte, not quote, CR or LF"}
	}
	if !validMark(o.Quote) {
		return &OptionsError{Field: "Quote", Message: "must be a printable single byte, not CR or LF"}
	}
	if o.Delimiter == o.Quote {
		return &OptionsError{Field: "Delimiter", Message: "must differ from Quote"}
	}
	if o.MaxFieldCount <= 0 {
		return &OptionsError{Field: "MaxFieldCount", Message: "must be positive"}
	}
	if o.Shape != ShapeKeyed && o.Shape != ShapePositional {
		return &OptionsError{Field: "Shape", Message: "unknown shape"}
	}
	return nil
}

func validMark(b byte) bool {
	switch b {
	case 0, '\r', '\n':
		return false
	}
	// multi-byte UTF-8 lead or continuation bytes would break scanning
	return b < 0x80
}
