//go:build !unix

package mmap

import (
	"io"
	"os"
)

func osMap(f *os.File, size int, _ bool) ([]byte, func([]byte) error, error) {
	data := make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, nil, err
	}
	return data, func([]byte) error { return nil }, nil
}

func osAdvise([]byte, AccessPattern) error {
	return nil
}
