package testutil

import (
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64n returns a pseudo-random number in [0,n).
func (r *RNG) Uint64n(n uint64) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return uint64(r.rand.Int63n(int64(n)))
}

// Bool returns a pseudo-random bool.
func (r *RNG) Bool() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(2) == 1
}

// Perm returns a pseudo-random permutation of [0,n).
func (r *RNG) Perm(n int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Perm(n)
}

// Indices returns count pseudo-random indices in [0,n). Duplicates are possible.
func (r *RNG) Indices(count int, n uint64) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]uint64, count)
	for i := range out {
		out[i] = uint64(r.rand.Int63n(int64(n)))
	}
	return out
}

// BitPattern returns n bools, each true with probability density.
func (r *RNG) BitPattern(n int, density float64) []bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]bool, n)
	for i := range out {
		out[i] = r.rand.Float64() < density
	}
	return out
}

// Bitmap is the subset of a bit container used by Fill and Verify.
type Bitmap interface {
	Get(idx uint64) bool
	Set(idx uint64, val bool) bool
}

// Fill sets every index whose pattern entry is true.
func Fill(bm Bitmap, pattern []bool) {
	for i, v := range pattern {
		if v {
			bm.Set(uint64(i), true)
		}
	}
}

// Mismatch returns the first index where bm disagrees with pattern, or -1.
func Mismatch(bm Bitmap, pattern []bool) int {
	for i, v := range pattern {
		if bm.Get(uint64(i)) != v {
			return i
		}
	}
	return -1
}
