package mmap

import "os"

// Region is a window into a Mapping, typically a snapshot payload behind its
// header. Closing a Region unmaps the whole parent.
type Region struct {
	m      *Mapping
	offset int
	data   []byte
}

// Region returns the window [offset, offset+size) of m.
func (m *Mapping) Region(offset, size int) (*Region, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	if offset < 0 || size < 0 || offset > m.size-size {
		return nil, ErrOutOfBounds
	}
	var data []byte
	if size > 0 {
		end := offset + size
		data = m.data[offset:end:end]
	}
	return &Region{m: m, offset: offset, data: data}, nil
}

// Bytes returns the window, or nil once the parent is unmapped. The slice's
// capacity ends at the window so appends reallocate instead of touching
// neighbouring bytes.
func (r *Region) Bytes() []byte {
	if r.m.closed.Load() {
		return nil
	}
	return r.data
}

// Advise applies pattern to the pages covering the window. madvise needs a
// page-aligned start, so the range begins at the page holding the first byte.
func (r *Region) Advise(pattern AccessPattern) error {
	if r.m.closed.Load() {
		return ErrClosed
	}
	if len(r.data) == 0 {
		return nil
	}
	start := pageStart(r.offset, os.Getpagesize())
	return osAdvise(r.m.data[start:r.offset+len(r.data)], pattern)
}

// pageStart rounds off down to a multiple of pageSize, a power of two.
func pageStart(off, pageSize int) int {
	return off &^ (pageSize - 1)
}

// Close unmaps the parent Mapping.
func (r *Region) Close() error {
	return r.m.Close()
}
