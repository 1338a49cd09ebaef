package engine

import (
	"sync"
	"unsafe"
)

// Pools for the allocation-heavy hot paths. Oversized items are dropped
// rather than returned so a single pathological record cannot pin a huge
// backing array for the life of the process.
const (
	maxPooledFields = 1024
	maxPooledBytes  = 64 * 1024
)

var fieldSlicePool = sync.Pool{
	New: func() any {
		s := make([]string, 0, 16)
		return &s
	},
}

var byteBufferPool = sync.Pool{
	New: func() any {
		b := make([]byte, 0, 4096)
		return &b
	},
}

func getFieldSlice() *[]string {
	return fieldSlicePool.Get().(*[]string)
}

func putFieldSlice(s *[]string) {
	if cap(*s) > maxPooledFields {
		return
	}
	*s = (*s)[:0]
	fieldSlicePool.Put(s)
}

func getByteBuffer() *[]byte {
	return byteBufferPool.Get().(*[]byte)
}

func putByteBuffer(b *[]byte) {
	if cap(*b) > maxPooledBytes {
		return
	}
	*b = (*b)[:0]
	byteBufferPool.Put(b)
}

// unsafeString views a byte slice as a string without copying. Callers
// must guarantee the bytes are not mutated while the string is live.
func unsafeString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(b), len(b))
}
