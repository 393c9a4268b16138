package snapshot

import (
	"fmt"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// maxCompressedRatio is the largest payload/raw ratio worth keeping; above it
// the snapshot is stored uncompressed.
const maxCompressedRatio = 0.9

// maxRoaringBytes bounds roaring payloads to 2^32 addressable positions.
const maxRoaringBytes = 1 << 29

// Upper bounds on how far a payload byte can expand. An LZ4 block produces at
// most 255 bytes per input byte (plus a short tail from the first token); a
// zstd block regenerates at most 128 KiB from a 3-byte header and one RLE byte.
const (
	lz4MaxRatio  = 255
	lz4Slack     = 16
	zstdMaxRatio = (128 << 10) / 4
)

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// encodePayload compresses raw with codec. It returns the codec actually used,
// which is CodecNone when compression does not pay off.
func encodePayload(raw []byte, codec Codec) (Codec, []byte, error) {
	if codec == CodecNone || len(raw) == 0 {
		return CodecNone, raw, nil
	}

	var (
		payload []byte
		err     error
	)

	switch codec {
	case CodecLZ4:
		payload, err = compressLZ4(raw)
	case CodecZstd:
		payload = compressZstd(raw)
	case CodecRoaring:
		payload, err = compressRoaring(raw)
	default:
		return 0, nil, fmt.Errorf("%w: %d", ErrUnknownCodec, uint8(codec))
	}
	if err != nil {
		return 0, nil, err
	}

	if len(payload) == 0 || float64(len(payload)) > float64(len(raw))*maxCompressedRatio {
		return CodecNone, raw, nil
	}
	return codec, payload, nil
}

// checkExpansion rejects headers whose raw size the payload cannot produce,
// before any raw buffer is allocated.
func checkExpansion(h Header) error {
	var ok bool
	switch h.Codec {
	case CodecNone:
		ok = h.RawSize == h.PayloadSize
	case CodecLZ4:
		ok = expandsTo(h.PayloadSize, h.RawSize, lz4MaxRatio, lz4Slack)
	case CodecZstd:
		ok = expandsTo(h.PayloadSize, h.RawSize, zstdMaxRatio, 0)
	case CodecRoaring:
		if h.RawSize > maxRoaringBytes {
			return fmt.Errorf("%w: roaring holds at most 2^32 bits, header says %d bytes", ErrTooLarge, h.RawSize)
		}
		ok = true
	}
	if !ok {
		return fmt.Errorf("%w: %d %s payload bytes cannot expand to %d raw bytes", ErrCorrupt, h.PayloadSize, h.Codec, h.RawSize)
	}
	return nil
}

// expandsTo reports whether raw <= ratio*payload + slack, without overflow.
func expandsTo(payload, raw, ratio, slack uint64) bool {
	if raw <= slack {
		return true
	}
	return (raw-slack+ratio-1)/ratio <= payload
}

// decodePayload restores the raw bitmap bytes described by h.
// For CodecNone the payload itself is returned.
func decodePayload(h Header, payload []byte) ([]byte, error) {
	if uint64(len(payload)) != h.PayloadSize {
		return nil, fmt.Errorf("%w: payload is %d bytes, header says %d", ErrCorrupt, len(payload), h.PayloadSize)
	}

	switch h.Codec {
	case CodecNone:
		return payload, nil
	case CodecLZ4:
		return decompressLZ4(payload, int(h.RawSize))
	case CodecZstd:
		return decompressZstd(payload, int(h.RawSize))
	case CodecRoaring:
		return decompressRoaring(payload, int(h.RawSize))
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCodec, uint8(h.Codec))
	}
}

func compressLZ4(raw []byte) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(raw)))

	n, err := lz4.CompressBlock(raw, dst, nil)
	if err != nil {
		return nil, err
	}
	// n == 0 means incompressible.
	return dst[:n], nil
}

func decompressLZ4(payload []byte, size int) ([]byte, error) {
	raw := make([]byte, size)

	n, err := lz4.UncompressBlock(payload, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: lz4: %v", ErrCorrupt, err)
	}
	if n != size {
		return nil, fmt.Errorf("%w: lz4 produced %d bytes, want %d", ErrCorrupt, n, size)
	}
	return raw, nil
}

func compressZstd(raw []byte) []byte {
	enc := getZstdEncoder()
	defer putZstdEncoder(enc)

	return enc.EncodeAll(raw, nil)
}

func decompressZstd(payload []byte, size int) ([]byte, error) {
	var zh zstd.Header
	if err := zh.Decode(payload); err != nil {
		return nil, fmt.Errorf("%w: zstd header: %v", ErrCorrupt, err)
	}
	if zh.HasFCS && zh.FrameContentSize != uint64(size) {
		return nil, fmt.Errorf("%w: zstd frame holds %d bytes, want %d", ErrCorrupt, zh.FrameContentSize, size)
	}

	dec := getZstdDecoder()
	defer putZstdDecoder(dec)

	raw, err := dec.DecodeAll(payload, make([]byte, 0, size))
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %v", ErrCorrupt, err)
	}
	if len(raw) != size {
		return nil, fmt.Errorf("%w: zstd produced %d bytes, want %d", ErrCorrupt, len(raw), size)
	}
	return raw, nil
}

// compressRoaring stores the positions of all set bits, trailing bits included.
func compressRoaring(raw []byte) ([]byte, error) {
	if len(raw) > maxRoaringBytes {
		return nil, fmt.Errorf("%w: roaring holds at most 2^32 bits, have %d bytes", ErrTooLarge, len(raw))
	}

	rb := roaring.New()
	for i, b := range raw {
		if b == 0 {
			continue
		}
		base := uint64(i) << 3
		if b == 0xFF {
			rb.AddRange(base, base+8)
			continue
		}
		for j := uint64(0); j < 8; j++ {
			if b&(0x80>>j) != 0 {
				rb.Add(uint32(base + j))
			}
		}
	}
	rb.RunOptimize()

	return rb.ToBytes()
}

func decompressRoaring(payload []byte, size int) ([]byte, error) {
	rb := roaring.New()
	if err := rb.UnmarshalBinary(payload); err != nil {
		return nil, fmt.Errorf("%w: roaring: %v", ErrCorrupt, err)
	}

	raw := make([]byte, size)
	if rb.IsEmpty() {
		return raw, nil
	}
	if uint64(rb.Maximum()) >= uint64(size)<<3 {
		return nil, fmt.Errorf("%w: roaring position %d outside %d bytes", ErrCorrupt, rb.Maximum(), size)
	}

	it := rb.Iterator()
	for it.HasNext() {
		pos := it.Next()
		raw[pos>>3] |= 0x80 >> (pos & 7)
	}
	return raw, nil
}
