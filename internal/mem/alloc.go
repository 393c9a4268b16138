// Package mem allocates bitmap buffers on cache-line boundaries.
//
// Partition locks cover bytes by index modulo the lock count, so a buffer
// that starts on a 64-byte boundary keeps each cache line of bits within a
// predictable set of partitions.
package mem

import (
	"unsafe"
)

// Alignment is the cache-line size buffers are aligned to.
const Alignment = 64

// AllocAligned returns a zeroed slice of size bytes whose first byte sits on
// an Alignment boundary. It returns nil for size <= 0.
// The capacity equals the length, so appends reallocate.
func AllocAligned(size int) []byte {
	if size <= 0 {
		return nil
	}

	buf := make([]byte, size+Alignment)
	addr := uintptr(unsafe.Pointer(&buf[0])) //nolint:gosec // alignment needs the address
	offset := int((Alignment - (addr & (Alignment - 1))) & (Alignment - 1))

	return buf[offset : offset+size : offset+size]
}
