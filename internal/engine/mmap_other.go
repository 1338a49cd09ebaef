//go:build !unix

package engine

import "os"

// MmapFile falls back to reading the whole file on platforms without
// mmap support.
func MmapFile(filename string) ([]byte, func(), error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, nil, err
	}
	return data, func() {}, nil
}
