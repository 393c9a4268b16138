// Package hash provides the CRC32-Castagnoli checksum shared by the snapshot
// frame and the S3 upload path.
//
// Snapshot frames store CRC32C of the raw bitmap bytes, and S3 PutObject
// requests carry the same polynomial in ChecksumCRC32C, so one table serves
// both. Go's hash/crc32 uses SSE4.2 or the ARM CRC extension when present.
//
// One-shot:
//
//	sum := hash.CRC32C(data)
//
// Streaming:
//
//	h := hash.NewCRC32C()
//	h.Write(chunk1)
//	h.Write(chunk2)
//	sum := h.Sum32()
package hash
