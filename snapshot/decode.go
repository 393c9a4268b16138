package snapshot

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/genbitmap"
)

// Decode reads one snapshot from r and returns a Bitmap that owns the decoded
// buffer. Nothing past the frame is consumed.
func Decode(r io.Reader, optFns ...Option) (*genbitmap.Bitmap, error) {
	o := applyOptions(optFns)

	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	if err := o.checkLimits(h); err != nil {
		return nil, err
	}

	payload, err := readPayload(r, h.PayloadSize)
	if err != nil {
		return nil, err
	}

	return build(h, payload, o)
}

// Unmarshal decodes a snapshot held in data. data must contain exactly one
// frame. With CodecNone the Bitmap adopts a sub-slice of data, so the caller
// must not reuse data afterwards.
func Unmarshal(data []byte, optFns ...Option) (*genbitmap.Bitmap, error) {
	o := applyOptions(optFns)

	h, err := parseHeader(data)
	if err != nil {
		return nil, err
	}
	if uint64(len(data)) != h.FrameSize() {
		return nil, fmt.Errorf("%w: frame is %d bytes, header says %d", ErrCorrupt, len(data), h.FrameSize())
	}
	if err := o.checkLimits(h); err != nil {
		return nil, err
	}

	return build(h, data[HeaderSize:], o)
}

func build(h Header, payload []byte, o *options) (*genbitmap.Bitmap, error) {
	raw, err := decodePayload(h, payload)
	if err != nil {
		return nil, err
	}
	if o.verify {
		if err := verifyChecksum(raw, h.Checksum); err != nil {
			return nil, err
		}
	}
	if len(raw) == 0 {
		raw = nil
	}
	return genbitmap.NewFromBlob(genbitmap.NewBlob(raw), h.BitCount, o.bitmapOptions...)
}

// readPayload reads exactly size bytes, growing the buffer as data arrives so
// a header claiming a huge payload cannot force a huge allocation up front.
func readPayload(r io.Reader, size uint64) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(int(min(size, payloadChunk)))

	n, err := io.CopyN(&buf, r, int64(size))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: truncated payload (%d of %d bytes)", ErrCorrupt, n, size)
		}
		return nil, err
	}
	return buf.Bytes(), nil
}

const payloadChunk = 1 << 20

func (o *options) checkLimits(h Header) error {
	if o.maxPayloadSize > 0 && h.PayloadSize > o.maxPayloadSize {
		return fmt.Errorf("%w: payload of %d bytes exceeds limit of %d", ErrTooLarge, h.PayloadSize, o.maxPayloadSize)
	}
	if o.maxRawSize > 0 && h.RawSize > o.maxRawSize {
		return fmt.Errorf("%w: bitmap of %d bytes exceeds limit of %d", ErrTooLarge, h.RawSize, o.maxRawSize)
	}
	return nil
}
