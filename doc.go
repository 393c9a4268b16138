// Package genbitmap provides a fixed-capacity bitmap with safe concurrent
// single-bit reads and writes and a raw, portable memory layout.
//
// A Bitmap owns ceil(n/8) bytes. Bit i lives in byte i/8 under mask
// 0x80>>(i%8), most significant bit first. This layout is what Bytes returns
// and what NewFromCopy and NewFromBlob accept, so a buffer written to disk or
// the network can be turned back into an identical Bitmap.
//
// # Quick Start
//
//	bm := genbitmap.New(1 << 20)
//	if !bm.Set(42, true) {
//	    // bit 42 was clear before this call
//	}
//	ok := bm.Get(42)
//
// # Construction
//
//   - New: zeroed buffer
//   - NewFromCopy: copies a caller-owned buffer
//   - NewFromBlob: adopts a Blob without copying; the Blob is consumed
//
// Blob sizes must equal ceil(n/8) exactly; anything else is rejected with
// *ErrBlobSizeMismatch.
//
// # Concurrency
//
// Get and Set lock the partition guarding the addressed byte. By default there
// is one partition, so all operations are serialized. WithConcurrencyHint
// spreads bytes over a power-of-two number of locks; a byte is never split
// across locks.
//
// # Index Contract
//
// Get and Set do not validate their index. GetChecked and SetChecked do, and
// return *ErrIndexOutOfRange.
//
// See the snapshot package for checksummed, compressed persistence of the raw
// buffer on local disk, S3 or MinIO.
package genbitmap
