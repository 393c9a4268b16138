package genbitmap

import "sync"

// Blob is a single-use ownership handle for a raw bitmap buffer.
//
// Handing a Blob to NewFromBlob transfers the bytes, and the duty to release
// them, to the new Bitmap without copying. After a successful transfer the
// handle is empty and cannot be used again. The caller must not keep or touch
// the slice it wrapped.
type Blob struct {
	mu       sync.Mutex
	data     []byte
	release  func() error
	consumed bool
}

// NewBlob wraps data for ownership transfer.
func NewBlob(data []byte) *Blob {
	return &Blob{data: data}
}

// NewBlobWithRelease wraps data whose lifetime is managed externally, such as
// a memory mapping. release runs once, when the owning Bitmap is closed or when
// the unconsumed Blob is discarded with Release.
func NewBlobWithRelease(data []byte, release func() error) *Blob {
	return &Blob{data: data, release: release}
}

// Len returns the wrapped length in bytes, or 0 once consumed.
func (b *Blob) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

// Consumed reports whether ownership has already been transferred.
func (b *Blob) Consumed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.consumed
}

// Release discards an unconsumed Blob, running its release func if any.
// It is a no-op on a consumed Blob.
func (b *Blob) Release() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.consumed {
		return nil
	}
	b.consumed = true
	b.data = nil

	release := b.release
	b.release = nil
	if release != nil {
		return release()
	}
	return nil
}

// take hands the buffer over if it fits bitCount. The handle is only emptied
// on success.
func (b *Blob) take(bitCount uint64) ([]byte, func() error, error) {
	if b == nil {
		return nil, nil, ErrBlobConsumed
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.consumed {
		return nil, nil, ErrBlobConsumed
	}
	if err := checkBlobSize(len(b.data), bitCount); err != nil {
		return nil, nil, err
	}

	data, release := b.data, b.release
	b.data, b.release, b.consumed = nil, nil, true
	return data, release, nil
}
