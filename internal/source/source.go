// Package source normalizes raw input streams before parsing: content
// decoding (gzip, deflate), charset transcoding to UTF-8, and BOM
// stripping, applied in that order.
package source

import (
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/spkg/bom"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// Options selects the normalization steps. Zero value is a passthrough
// apart from BOM stripping, which is on unless KeepBOM is set.
type Options struct {
	// Charset is an IANA encoding label such as "shift_jis" or
	// "windows-1252". Empty, "utf-8" and "utf8" mean no transcoding.
	Charset string

	// ContentEncoding is "gzip", "deflate" (zlib-wrapped) or
	// "deflate-raw". Empty means identity.
	ContentEncoding string

	// KeepBOM leaves a leading byte order mark in place.
	KeepBOM bool
}

// NewReader wraps r with the configured normalization steps.
func NewReader(r io.Reader, opts Options) (io.Reader, error) {
	switch opts.ContentEncoding {
	case "":
	case "gzip":
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip input: %w", err)
		}
		r = zr
	case "deflate":
		zr, err := zlib.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("deflate input: %w", err)
		}
		r = zr
	case "deflate-raw":
		r = flate.NewReader(r)
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", opts.ContentEncoding)
	}

	if cs := strings.ToLower(opts.Charset); cs != "" && cs != "utf-8" && cs != "utf8" {
		enc, err := ianaindex.IANA.Encoding(opts.Charset)
		if err != nil || enc == nil {
			return nil, fmt.Errorf("unsupported charset %q", opts.Charset)
		}
		r = transform.NewReader(r, enc.NewDecoder())
	}

	if !opts.KeepBOM {
		r = bom.NewReader(r)
	}
	return r, nil
}
