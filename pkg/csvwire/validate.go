package csvwire

import (
	"strings"

	"github.com/tabwire/csvwire/internal/engine"
)

// Validate checks data against the table-driven parser without producing
// records. It returns nil when data parses cleanly; the error otherwise
// is one of the package sentinels.
//
// Unlike the streaming engine, validation also accepts lone CR record
// terminators.
func Validate(data []byte, opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	_, err := engine.ParseDFA(data, opts.Delimiter, opts.Quote)
	return err
}

// Records parses data with the table-driven parser and returns plain
// record slices without header handling. Handy for small inputs and
// tooling where batch layout does not matter.
func Records(data []byte, opts Options) ([][]string, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	recs, err := engine.ParseDFA(data, opts.Delimiter, opts.Quote)
	if err != nil {
		return nil, err
	}
	// ParseDFA returns views into data; copy so callers may retain them.
	out := make([][]string, len(recs))
	for i, rec := range recs {
		row := make([]string, len(rec))
		for j, f := range rec {
			row[j] = strings.Clone(f)
		}
		out[i] = row
	}
	return out, nil
}
