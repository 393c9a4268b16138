// Package conv provides checked integer conversions for sizes read from
// snapshot headers and blob stores.
//
// Header fields are untrusted uint64 values; converting them with a plain
// cast can wrap on 32-bit platforms or turn negative. Use direct casts where
// the range is already bounded.
package conv
