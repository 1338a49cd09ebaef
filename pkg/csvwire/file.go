package csvwire

import "github.com/tabwire/csvwire/internal/engine"

// ParseFile parses a file on disk. On unix the file is memory-mapped, so
// large inputs are parsed without a read copy; the returned result owns
// its data and outlives the mapping.
func ParseFile(path string, opts Options) (*Result, error) {
	if opts.Source == "" {
		opts.Source = path
	}
	data, cleanup, err := engine.MmapFile(path)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	return Parse(data, opts)
}
