// Package mmap provides memory-mapped file access for zero-copy loading.
//
// # Usage
//
//	m, err := mmap.OpenPrivate("bitmap.gbm")
//	if err != nil { ... }
//	defer m.Close()
//
//	// Writable view; writes stay in this process and never reach the file.
//	payload, _ := m.Region(headerSize, m.Size()-headerSize)
//	data := payload.Bytes()
//
// Open maps read-only and is used by the local blob store. OpenPrivate maps
// copy-on-write, which lets a Bitmap adopt file contents as its mutable buffer
// without a copy.
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) via golang.org/x/sys/unix, with madvise(2) hints
//   - Others: the file is read into heap memory; Advise is a no-op
//
// # Thread Safety
//
// Close is idempotent and protected by atomic operations. Callers must ensure
// no goroutine touches Bytes after Close returns.
package mmap
