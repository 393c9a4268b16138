// Package testutil provides testing utilities for genbitmap.
//
// This package is intended for use in tests and benchmarks only.
//
// # Random Bit Patterns
//
//	rng := testutil.NewRNG(seed)
//	idx := rng.Indices(1000, 1<<20)   // 1000 indices in [0, 1<<20)
//	set := rng.BitPattern(64, 0.5)    // []bool, each true with p=0.5
package testutil
