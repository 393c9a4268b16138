// Package snapshot persists genbitmap.Bitmap buffers.
//
// A snapshot is a 40-byte little-endian header followed by the payload:
//
//	┌────────┬─────────┬───────┬──────┬──────────┬─────────┬─────────────┬───────┬──────┐
//	│ magic  │ version │ codec │ rsvd │ bitCount │ rawSize │ payloadSize │ crc32c│ rsvd │
//	│ 4B     │ 2B      │ 1B    │ 1B   │ 8B       │ 8B      │ 8B          │ 4B    │ 4B   │
//	└────────┴─────────┴───────┴──────┴──────────┴─────────┴─────────────┴───────┴──────┘
//
// The checksum covers the raw bitmap bytes, so it is independent of the codec.
// With CodecNone the payload is the raw buffer byte for byte, which lets
// MapFile adopt it straight out of a private file mapping.
//
// Codecs:
//
//   - CodecNone: raw bytes
//   - CodecLZ4: LZ4 block compression, fast
//   - CodecZstd: Zstandard, better ratio
//   - CodecRoaring: positions of set bits as a roaring bitmap, for sparse data
//
// A codec that does not shrink the buffer enough is replaced by CodecNone at
// encode time; the header always names the codec actually used.
package snapshot
