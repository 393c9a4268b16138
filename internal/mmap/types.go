package mmap

import "errors"

// AccessPattern is an madvise hint for a mapped range.
type AccessPattern int

const (
	AccessDefault AccessPattern = iota
	// AccessSequential suits a full pass, such as checksumming a payload.
	AccessSequential
	// AccessRandom suits Get/Set traffic on an adopted bitmap buffer.
	AccessRandom
	// AccessWillNeed asks the kernel to prefetch.
	AccessWillNeed
)

var (
	ErrClosed      = errors.New("mmap: mapping is closed")
	ErrInvalidSize = errors.New("mmap: file too large to map")
	ErrOutOfBounds = errors.New("mmap: range outside mapping")
)
