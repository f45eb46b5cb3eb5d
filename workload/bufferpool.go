package workload

import (
	"sync"
)

// BufPool is a global sync.Pool for reusing payload buffers between jobs
var BufPool = sync.Pool{
	New: func() interface{} {
		// Sized for a 128x128 PNG; larger images allocate on demand
		return make([]byte, 64*1024)
	},
}

// GetBuffer gets a buffer of exactly size bytes from the pool
func GetBuffer(size int) []byte {
	buf := BufPool.Get().([]byte)
	if cap(buf) < size {
		BufPool.Put(buf)
		return make([]byte, size)
	}
	return buf[:size]
}

// PutBuffer returns a buffer to the pool
func PutBuffer(buf []byte) {
	BufPool.Put(buf[:0])
}
