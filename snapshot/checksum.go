package snapshot

import (
	"fmt"

	"github.com/hupe1980/genbitmap/internal/hash"
)

// ChecksumMismatchError reports a CRC32C mismatch over the raw bitmap bytes.
// It matches ErrCorrupt under errors.Is.
type ChecksumMismatchError struct {
	Expected uint32
	Actual   uint32
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("snapshot: checksum mismatch: expected %08x, got %08x", e.Expected, e.Actual)
}

func (e *ChecksumMismatchError) Unwrap() error {
	return ErrCorrupt
}

// checksum computes the CRC32C of data.
// It detects accidental corruption only; it is not tamper proof.
func checksum(data []byte) uint32 {
	return hash.CRC32C(data)
}

func verifyChecksum(data []byte, want uint32) error {
	if got := checksum(data); got != want {
		return &ChecksumMismatchError{Expected: want, Actual: got}
	}
	return nil
}
