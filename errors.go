package genbitmap

import (
	"errors"
	"fmt"
)

var (
	// ErrBlobConsumed is returned when a Blob is nil or its ownership has
	// already been transferred.
	ErrBlobConsumed = errors.New("blob already consumed")

	// ErrClosed is returned by Close on an already closed Bitmap.
	ErrClosed = errors.New("bitmap closed")
)

// ErrIndexOutOfRange indicates a bit index at or beyond the bitmap size.
type ErrIndexOutOfRange struct {
	Index uint64
	Size  uint64
}

func (e *ErrIndexOutOfRange) Error() string {
	return fmt.Sprintf("bit index %d out of range [0, %d)", e.Index, e.Size)
}

// ErrBlobSizeMismatch indicates a blob whose length is not ceil(BitCount/8).
type ErrBlobSizeMismatch struct {
	BlobSize int
	Expected uint64
	BitCount uint64
}

func (e *ErrBlobSizeMismatch) Error() string {
	return fmt.Sprintf("blob size mismatch: %d bits need %d bytes, got %d", e.BitCount, e.Expected, e.BlobSize)
}

// IsIndexOutOfRange reports whether err is or wraps an *ErrIndexOutOfRange.
func IsIndexOutOfRange(err error) bool {
	var e *ErrIndexOutOfRange
	return errors.As(err, &e)
}

// IsBlobSizeMismatch reports whether err is or wraps an *ErrBlobSizeMismatch.
func IsBlobSizeMismatch(err error) bool {
	var e *ErrBlobSizeMismatch
	return errors.As(err, &e)
}
