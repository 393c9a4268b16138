package snapshot

import (
	"bytes"
	"io"

	"github.com/hupe1980/genbitmap"
)

// frame is an encoded snapshot ready to be written.
type frame struct {
	header  Header
	payload []byte
}

func (f *frame) size() int64 {
	return int64(f.header.FrameSize())
}

func (f *frame) writeTo(w io.Writer) (int64, error) {
	hdr := f.header.marshal()
	n, err := w.Write(hdr[:])
	written := int64(n)
	if err != nil {
		return written, err
	}
	n, err = w.Write(f.payload)
	written += int64(n)
	return written, err
}

// newFrame encodes a point-in-time copy of bm.
func newFrame(bm *genbitmap.Bitmap, codec Codec) (*frame, error) {
	return encodeRaw(bm.Snapshot(), bm.Size(), codec)
}

func encodeRaw(raw []byte, bitCount uint64, codec Codec) (*frame, error) {
	used, payload, err := encodePayload(raw, codec)
	if err != nil {
		return nil, err
	}
	return &frame{
		header: Header{
			Version:     Version,
			Codec:       used,
			BitCount:    bitCount,
			RawSize:     uint64(len(raw)),
			PayloadSize: uint64(len(payload)),
			Checksum:    checksum(raw),
		},
		payload: payload,
	}, nil
}

// Encode writes a snapshot of bm to w and returns the number of bytes written.
// The bitmap is copied under all of its locks first, so concurrent writers see
// no pause beyond that copy.
func Encode(w io.Writer, bm *genbitmap.Bitmap, codec Codec) (int64, error) {
	f, err := newFrame(bm, codec)
	if err != nil {
		return 0, err
	}
	return f.writeTo(w)
}

// Marshal returns the encoded snapshot of bm.
func Marshal(bm *genbitmap.Bitmap, codec Codec) ([]byte, error) {
	f, err := newFrame(bm, codec)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Grow(int(f.size()))
	if _, err := f.writeTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
