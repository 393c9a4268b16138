package bitset

import (
	"math/bits"
	"sync/atomic"
)

// BitSet is a fixed-size bitset safe for concurrent use.
type BitSet struct {
	words []atomic.Uint64
	size  uint64
}

// New creates a zeroed BitSet addressing size bits.
func New(size uint64) *BitSet {
	return &BitSet{
		words: make([]atomic.Uint64, (size+63)/64),
		size:  size,
	}
}

// Len returns the number of addressable bits.
func (b *BitSet) Len() uint64 {
	return b.size
}

// Get reports whether bit i is set. Bits past Len read as false.
func (b *BitSet) Get(i uint64) bool {
	if i >= b.size {
		return false
	}
	return b.words[i>>6].Load()&(1<<(i&63)) != 0
}

// Set assigns val to bit i and returns the previous value.
// Bits past Len are ignored.
func (b *BitSet) Set(i uint64, val bool) bool {
	if i >= b.size {
		return false
	}
	mask := uint64(1) << (i & 63)
	w := &b.words[i>>6]

	var old uint64
	if val {
		old = w.Or(mask)
	} else {
		old = w.And(^mask)
	}
	return old&mask != 0
}

// Count returns the number of set bits.
func (b *BitSet) Count() int {
	n := 0
	for i := range b.words {
		n += bits.OnesCount64(b.words[i].Load())
	}
	return n
}

// ClearAll resets every bit.
func (b *BitSet) ClearAll() {
	for i := range b.words {
		b.words[i].Store(0)
	}
}
