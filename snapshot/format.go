package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hupe1980/genbitmap/internal/conv"
)

const (
	// Magic identifies snapshot files (ASCII: "GBM1").
	Magic uint32 = 0x47424D31
	// Version is the current frame format version.
	Version uint16 = 1
	// HeaderSize is the size of the fixed frame header in bytes.
	HeaderSize = 40
)

var (
	ErrInvalidMagic       = errors.New("snapshot: invalid magic number")
	ErrUnsupportedVersion = errors.New("snapshot: unsupported version")
	ErrUnknownCodec       = errors.New("snapshot: unknown codec")
	ErrCorrupt            = errors.New("snapshot: corrupt data")
	ErrNotMappable        = errors.New("snapshot: compressed snapshots cannot be mapped")
	ErrTooLarge           = errors.New("snapshot: bitmap too large")
)

// Codec selects the payload encoding.
type Codec uint8

const (
	CodecNone Codec = iota
	CodecLZ4
	CodecZstd
	CodecRoaring
)

var codecNames = [...]string{
	CodecNone:    "none",
	CodecLZ4:     "lz4",
	CodecZstd:    "zstd",
	CodecRoaring: "roaring",
}

func (c Codec) String() string {
	if c.valid() {
		return codecNames[c]
	}
	return fmt.Sprintf("codec(%d)", uint8(c))
}

func (c Codec) valid() bool {
	return int(c) < len(codecNames)
}

// ParseCodec parses a codec name as printed by Codec.String.
func ParseCodec(s string) (Codec, error) {
	for i, name := range codecNames {
		if strings.EqualFold(s, name) {
			return Codec(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCodec, s)
}

// Header is the decoded frame header.
type Header struct {
	Version     uint16
	Codec       Codec
	BitCount    uint64
	RawSize     uint64
	PayloadSize uint64
	Checksum    uint32
}

// FrameSize returns the total encoded size of the snapshot.
func (h Header) FrameSize() uint64 {
	return HeaderSize + h.PayloadSize
}

func (h Header) marshal() [HeaderSize]byte {
	var b [HeaderSize]byte
	binary.LittleEndian.PutUint32(b[0:], Magic)
	binary.LittleEndian.PutUint16(b[4:], h.Version)
	b[6] = byte(h.Codec)
	binary.LittleEndian.PutUint64(b[8:], h.BitCount)
	binary.LittleEndian.PutUint64(b[16:], h.RawSize)
	binary.LittleEndian.PutUint64(b[24:], h.PayloadSize)
	binary.LittleEndian.PutUint32(b[32:], h.Checksum)
	return b
}

func parseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("%w: short header (%d bytes)", ErrCorrupt, len(b))
	}
	if binary.LittleEndian.Uint32(b[0:]) != Magic {
		return Header{}, ErrInvalidMagic
	}

	h := Header{
		Version:     binary.LittleEndian.Uint16(b[4:]),
		Codec:       Codec(b[6]),
		BitCount:    binary.LittleEndian.Uint64(b[8:]),
		RawSize:     binary.LittleEndian.Uint64(b[16:]),
		PayloadSize: binary.LittleEndian.Uint64(b[24:]),
		Checksum:    binary.LittleEndian.Uint32(b[32:]),
	}

	if h.Version != Version {
		return Header{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	if !h.Codec.valid() {
		return Header{}, fmt.Errorf("%w: %d", ErrUnknownCodec, b[6])
	}
	if h.RawSize != rawSize(h.BitCount) {
		return Header{}, fmt.Errorf("%w: raw size %d does not match %d bits", ErrCorrupt, h.RawSize, h.BitCount)
	}
	if h.Codec == CodecNone && h.PayloadSize != h.RawSize {
		return Header{}, fmt.Errorf("%w: payload size %d, want %d", ErrCorrupt, h.PayloadSize, h.RawSize)
	}
	if _, err := conv.Uint64ToInt(h.RawSize); err != nil {
		return Header{}, fmt.Errorf("%w: raw size: %v", ErrTooLarge, err)
	}
	if _, err := conv.Uint64ToInt(h.PayloadSize); err != nil {
		return Header{}, fmt.Errorf("%w: payload size: %v", ErrTooLarge, err)
	}
	if err := checkExpansion(h); err != nil {
		return Header{}, err
	}
	return h, nil
}

// ReadHeader reads and validates the frame header from r.
func ReadHeader(r io.Reader) (Header, error) {
	var b [HeaderSize]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Header{}, fmt.Errorf("%w: truncated header", ErrCorrupt)
		}
		return Header{}, err
	}
	return parseHeader(b[:])
}

// rawSize returns ceil(bitCount/8) without wrapping near MaxUint64.
func rawSize(bitCount uint64) uint64 {
	n := bitCount >> 3
	if bitCount&7 != 0 {
		n++
	}
	return n
}
