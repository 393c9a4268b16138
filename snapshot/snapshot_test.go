package snapshot

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/hupe1980/genbitmap"
	"github.com/hupe1980/genbitmap/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allCodecs = []Codec{CodecNone, CodecLZ4, CodecZstd, CodecRoaring}

// sparseBitmap sets every 997th bit plus the trailing bits of the last byte.
func sparseBitmap(t *testing.T, bits uint64) *genbitmap.Bitmap {
	t.Helper()

	raw := make([]byte, (bits+7)/8)
	for i := uint64(0); i < bits; i += 997 {
		raw[i>>3] |= 0x80 >> (i & 7)
	}
	if bits%8 != 0 {
		raw[len(raw)-1] |= 0xFF >> (bits % 8)
	}

	bm, err := genbitmap.NewFromCopy(raw, bits)
	require.NoError(t, err)
	return bm
}

func randomBitmap(t *testing.T, bits uint64, seed int64) *genbitmap.Bitmap {
	t.Helper()
	bm := genbitmap.New(bits)
	testutil.Fill(bm, testutil.NewRNG(seed).BitPattern(int(bits), 0.5))
	return bm
}

func TestRoundTrip_AllCodecs(t *testing.T) {
	src := sparseBitmap(t, 1_000_003)

	for _, codec := range allCodecs {
		t.Run(codec.String(), func(t *testing.T) {
			var buf bytes.Buffer
			n, err := Encode(&buf, src, codec)
			require.NoError(t, err)
			assert.Equal(t, int64(buf.Len()), n)

			h, err := ReadHeader(bytes.NewReader(buf.Bytes()))
			require.NoError(t, err)
			assert.Equal(t, codec, h.Codec, "sparse data compresses with every codec")
			assert.Equal(t, src.Size(), h.BitCount)
			assert.Equal(t, uint64(src.MemorySize()), h.RawSize)
			assert.Equal(t, uint64(n), h.FrameSize())

			bm, err := Decode(&buf)
			require.NoError(t, err)
			defer bm.Close()

			assert.Equal(t, src.Size(), bm.Size())
			assert.Equal(t, src.Bytes(), bm.Bytes(), "trailing bits survive")
		})
	}
}

func TestEncode_FallsBackWhenIncompressible(t *testing.T) {
	src := randomBitmap(t, 1<<16, 42)

	for _, codec := range allCodecs {
		t.Run(codec.String(), func(t *testing.T) {
			data, err := Marshal(src, codec)
			require.NoError(t, err)

			h, err := ReadHeader(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, CodecNone, h.Codec)
			assert.Equal(t, h.RawSize, h.PayloadSize)

			bm, err := Unmarshal(data)
			require.NoError(t, err)
			assert.Equal(t, src.Bytes(), bm.Bytes())
		})
	}
}

func TestRoundTrip_EmptyBitmap(t *testing.T) {
	for _, codec := range allCodecs {
		data, err := Marshal(genbitmap.New(0), codec)
		require.NoError(t, err)
		assert.Len(t, data, HeaderSize)

		bm, err := Unmarshal(data)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), bm.Size())
		assert.Equal(t, 0, bm.MemorySize())
	}
}

func TestDecode_Stream(t *testing.T) {
	a := sparseBitmap(t, 100)
	b := sparseBitmap(t, 5000)

	var buf bytes.Buffer
	_, err := Encode(&buf, a, CodecNone)
	require.NoError(t, err)
	_, err = Encode(&buf, b, CodecZstd)
	require.NoError(t, err)

	got, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, a.Bytes(), got.Bytes())

	got, err = Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, b.Bytes(), got.Bytes())

	assert.Zero(t, buf.Len())
}

func TestDecode_BitmapOptions(t *testing.T) {
	data, err := Marshal(sparseBitmap(t, 4096), CodecNone)
	require.NoError(t, err)

	bm, err := Unmarshal(data, WithBitmapOptions(genbitmap.WithConcurrencyHint(8)))
	require.NoError(t, err)
	assert.Equal(t, 8, bm.Partitions())
}

func TestDecode_Corruption(t *testing.T) {
	src := sparseBitmap(t, 8000)

	encode := func(codec Codec) []byte {
		data, err := Marshal(src, codec)
		require.NoError(t, err)
		return data
	}

	t.Run("Magic", func(t *testing.T) {
		data := encode(CodecNone)
		data[0] ^= 0xFF
		_, err := Unmarshal(data)
		assert.ErrorIs(t, err, ErrInvalidMagic)
	})

	t.Run("Version", func(t *testing.T) {
		data := encode(CodecNone)
		binary.LittleEndian.PutUint16(data[4:], 7)
		_, err := Unmarshal(data)
		assert.ErrorIs(t, err, ErrUnsupportedVersion)
	})

	t.Run("Codec", func(t *testing.T) {
		data := encode(CodecNone)
		data[6] = 42
		_, err := Unmarshal(data)
		assert.ErrorIs(t, err, ErrUnknownCodec)
	})

	t.Run("RawSize", func(t *testing.T) {
		data := encode(CodecNone)
		binary.LittleEndian.PutUint64(data[16:], 3)
		_, err := Unmarshal(data)
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("Checksum", func(t *testing.T) {
		data := encode(CodecNone)
		data[HeaderSize+10] ^= 0x01
		_, err := Unmarshal(data)

		var mismatch *ChecksumMismatchError
		require.True(t, errors.As(err, &mismatch))
		assert.NotEqual(t, mismatch.Expected, mismatch.Actual)
		assert.ErrorIs(t, err, ErrCorrupt)

		bm, err := Unmarshal(data, WithVerifyChecksum(false))
		require.NoError(t, err)
		assert.Equal(t, src.Size(), bm.Size())
	})

	t.Run("CompressedPayload", func(t *testing.T) {
		for _, codec := range []Codec{CodecLZ4, CodecZstd, CodecRoaring} {
			data := encode(codec)
			for i := HeaderSize; i < len(data); i++ {
				data[i] = 0xA5
			}
			_, err := Unmarshal(data)
			assert.ErrorIs(t, err, ErrCorrupt, codec.String())
		}
	})

	t.Run("Truncated", func(t *testing.T) {
		data := encode(CodecNone)

		_, err := Decode(bytes.NewReader(data[:len(data)-1]))
		assert.ErrorIs(t, err, ErrCorrupt)

		_, err = Decode(bytes.NewReader(data[:HeaderSize-1]))
		assert.ErrorIs(t, err, ErrCorrupt)

		_, err = Unmarshal(data[:len(data)-1])
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("MaxPayloadSize", func(t *testing.T) {
		data := encode(CodecNone)
		_, err := Decode(bytes.NewReader(data), WithMaxPayloadSize(10))
		assert.ErrorIs(t, err, ErrTooLarge)
	})

	t.Run("MaxRawSize", func(t *testing.T) {
		for _, codec := range allCodecs {
			data := encode(codec)
			_, err := Unmarshal(data, WithMaxRawSize(100))
			assert.ErrorIs(t, err, ErrTooLarge, codec.String())

			bm, err := Unmarshal(encode(codec), WithMaxRawSize(1000))
			require.NoError(t, err, codec.String())
			assert.Equal(t, src.Bytes(), bm.Bytes())
		}
	})

	// A tiny frame whose header claims an enormous bitmap must be rejected
	// before the decoded buffer is allocated.
	t.Run("RawSizeBeyondPayload", func(t *testing.T) {
		frame := func(h Header, payload []byte) []byte {
			h.Version = Version
			h.PayloadSize = uint64(len(payload))
			b := h.marshal()
			return append(b[:], payload...)
		}
		payload := []byte{0x28, 0xB5, 0x2F, 0xFD}

		for _, codec := range []Codec{CodecLZ4, CodecZstd} {
			for _, bits := range []uint64{1 << 62, 1 << 43, 8 << 20} {
				data := frame(Header{Codec: codec, BitCount: bits, RawSize: rawSize(bits)}, payload)

				require.NotPanics(t, func() {
					_, err := Unmarshal(data)
					assert.ErrorIs(t, err, ErrCorrupt, "%s bits=%d", codec, bits)

					_, err = Decode(bytes.NewReader(data))
					assert.ErrorIs(t, err, ErrCorrupt, "%s bits=%d", codec, bits)
				})
			}
		}

		data := frame(Header{Codec: CodecRoaring, BitCount: 1 << 62, RawSize: rawSize(1 << 62)}, payload)
		_, err := Unmarshal(data)
		assert.ErrorIs(t, err, ErrTooLarge)
	})

	t.Run("BitCountWraps", func(t *testing.T) {
		h := Header{Version: Version, Codec: CodecNone, BitCount: ^uint64(0)}
		b := h.marshal()
		_, err := Unmarshal(b[:])
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("PayloadSizeBeyondStream", func(t *testing.T) {
		const bits = 8 << 40
		h := Header{Version: Version, Codec: CodecNone, BitCount: bits, RawSize: bits / 8, PayloadSize: bits / 8}
		b := h.marshal()
		stream := append(b[:], make([]byte, 64)...)

		_, err := Decode(bytes.NewReader(stream))
		assert.ErrorIs(t, err, ErrCorrupt)
	})
}

func TestMarshal_HighlyCompressible(t *testing.T) {
	bm := genbitmap.New(1 << 24)
	bm.Set(1<<24-1, true)

	for _, codec := range []Codec{CodecLZ4, CodecZstd, CodecRoaring} {
		data, err := Marshal(bm, codec)
		require.NoError(t, err)

		h, err := ReadHeader(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, codec, h.Codec)

		got, err := Unmarshal(data)
		require.NoError(t, err, codec.String())
		assert.True(t, got.Get(1<<24-1))
		assert.Equal(t, bm.Bytes(), got.Bytes())
	}
}

func TestParseCodec(t *testing.T) {
	for _, c := range allCodecs {
		got, err := ParseCodec(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	got, err := ParseCodec("ZSTD")
	require.NoError(t, err)
	assert.Equal(t, CodecZstd, got)

	_, err = ParseCodec("gzip")
	assert.ErrorIs(t, err, ErrUnknownCodec)
	assert.Equal(t, "codec(9)", Codec(9).String())
}

func TestHeader_Layout(t *testing.T) {
	h := Header{Version: Version, Codec: CodecZstd, BitCount: 13, RawSize: 2, PayloadSize: 5, Checksum: 0xDEADBEEF}
	b := h.marshal()

	assert.Equal(t, []byte{0x31, 0x4D, 0x42, 0x47}, b[0:4])
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(b[4:]))
	assert.Equal(t, byte(CodecZstd), b[6])
	assert.Equal(t, uint64(13), binary.LittleEndian.Uint64(b[8:]))
	assert.Equal(t, uint32(0xDEADBEEF), binary.LittleEndian.Uint32(b[32:]))

	got, err := parseHeader(b[:])
	require.NoError(t, err)
	assert.Equal(t, h, got)
}
