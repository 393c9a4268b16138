package benchmark_test

import (
	"sync"

	"github.com/bits-and-blooms/bitset"
	kbitmap "github.com/kelindar/bitmap"

	atomicbits "github.com/hupe1980/genbitmap/internal/bitset"
)

// contender is a bit container under benchmark. All implementations are safe
// for concurrent single-bit access.
type contender interface {
	Get(idx uint64) bool
	Set(idx uint64, val bool) bool
}

var _ contender = (*atomicbits.BitSet)(nil)

// lockedBitSet guards a bits-and-blooms BitSet with a RWMutex.
type lockedBitSet struct {
	mu sync.RWMutex
	bs *bitset.BitSet
}

func newLockedBitSet(n uint64) *lockedBitSet {
	return &lockedBitSet{bs: bitset.New(uint(n))}
}

func (l *lockedBitSet) Get(idx uint64) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.bs.Test(uint(idx))
}

func (l *lockedBitSet) Set(idx uint64, val bool) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	prev := l.bs.Test(uint(idx))
	l.bs.SetTo(uint(idx), val)
	return prev
}

// lockedKelindar guards a kelindar bitmap with a mutex.
type lockedKelindar struct {
	mu sync.Mutex
	bm kbitmap.Bitmap
}

func newLockedKelindar(n uint64) *lockedKelindar {
	l := &lockedKelindar{}
	if n > 0 {
		l.bm.Grow(uint32(n - 1))
	}
	return l
}

func (l *lockedKelindar) Get(idx uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bm.Contains(uint32(idx))
}

func (l *lockedKelindar) Set(idx uint64, val bool) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	prev := l.bm.Contains(uint32(idx))
	if val {
		l.bm.Set(uint32(idx))
	} else {
		l.bm.Remove(uint32(idx))
	}
	return prev
}

// lockedBools is the naive one-byte-per-bit baseline.
type lockedBools struct {
	mu   sync.Mutex
	bits []bool
}

func (l *lockedBools) Get(idx uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bits[idx]
}

func (l *lockedBools) Set(idx uint64, val bool) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	prev := l.bits[idx]
	l.bits[idx] = val
	return prev
}
