// Package bitset provides a fixed-size lock-free bitset built on atomic words.
//
// Bits are packed LSB-first into uint64 words and updated with atomic
// Or/And, so Set returns the previous value without any lock. It is the
// lock-free baseline the striped genbitmap.Bitmap is benchmarked against,
// and the reference model in the concurrency tests.
package bitset
