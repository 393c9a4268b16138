package snapshot

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/hupe1980/genbitmap"
	"github.com/hupe1980/genbitmap/blobstore"
	"github.com/hupe1980/genbitmap/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoad(t *testing.T) {
	stores := map[string]blobstore.Store{
		"memory": blobstore.NewMemoryStore(),
		"local":  blobstore.NewLocalStore(t.TempDir()),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			src := sparseBitmap(t, 200_001)

			for _, codec := range allCodecs {
				key := "daily/" + codec.String() + ".gbm"
				require.NoError(t, Save(ctx, store, key, src, WithCodec(codec)))

				h, err := Inspect(ctx, store, key)
				require.NoError(t, err)
				assert.Equal(t, codec, h.Codec)
				assert.Equal(t, src.Size(), h.BitCount)

				bm, err := Load(ctx, store, key)
				require.NoError(t, err)
				assert.Equal(t, src.Bytes(), bm.Bytes())

				// The loaded bitmap owns its buffer.
				bm.Set(0, !bm.Get(0))
				assert.NotEqual(t, src.Get(0), bm.Get(0))
				require.NoError(t, bm.Close())
			}

			names, err := store.List(ctx, "daily/")
			require.NoError(t, err)
			assert.Len(t, names, len(allCodecs))
		})
	}
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(context.Background(), blobstore.NewMemoryStore(), "missing")
	assert.True(t, errors.Is(err, blobstore.ErrNotFound))
}

func TestLoad_Corrupt(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	require.NoError(t, store.Put(ctx, "short", []byte("tiny")))
	_, err := Load(ctx, store, "short")
	assert.ErrorIs(t, err, ErrCorrupt)

	data, err := Marshal(sparseBitmap(t, 1000), CodecNone)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "padded", append(data, 0)))
	_, err = Load(ctx, store, "padded")
	assert.ErrorIs(t, err, ErrCorrupt)

	_, err = Load(ctx, store, "padded", WithMaxPayloadSize(16))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestSaveLoad_LoggingAndMetrics(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	var logBuf bytes.Buffer
	logger := genbitmap.NewLogger(slog.NewTextHandler(&logBuf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	mc := &genbitmap.BasicMetricsCollector{}

	src := sparseBitmap(t, 10_000)
	require.NoError(t, Save(ctx, store, "m.gbm", src, WithCodec(CodecZstd), WithLogger(logger), WithMetricsCollector(mc)))

	bm, err := Load(ctx, store, "m.gbm", WithLogger(logger), WithMetricsCollector(mc))
	require.NoError(t, err)
	assert.Equal(t, src.Bytes(), bm.Bytes())

	_, err = Load(ctx, store, "nope", WithLogger(logger), WithMetricsCollector(mc))
	require.Error(t, err)

	stats := mc.GetStats()
	assert.Equal(t, int64(1), stats.SaveCount)
	assert.Equal(t, int64(2), stats.LoadCount)
	assert.Equal(t, int64(1), stats.LoadErrors)
	assert.Greater(t, stats.SaveBytes, int64(HeaderSize))
	assert.Equal(t, stats.SaveBytes, stats.LoadBytes)

	out := logBuf.String()
	assert.Contains(t, out, "snapshot saved")
	assert.Contains(t, out, "codec=zstd")
	assert.Contains(t, out, "snapshot loaded")
	assert.Contains(t, out, "snapshot load failed")
}

func TestSaveLoad_ResourceController(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:       1 << 20,
		MaxConcurrentTransfers: 1,
		IOLimitBytesPerSec:     1 << 20,
	})

	src := sparseBitmap(t, 100_000)
	require.NoError(t, Save(ctx, store, "rc.gbm", src, WithResourceController(rc)))

	bm, err := Load(ctx, store, "rc.gbm", WithResourceController(rc))
	require.NoError(t, err)
	assert.Equal(t, src.Bytes(), bm.Bytes())

	assert.Equal(t, int64(0), rc.MemoryUsage(), "reservations released")
	assert.True(t, rc.TryAcquireSlot(), "slot released")
	rc.ReleaseSlot()
}

func TestSave_SlotBusy(t *testing.T) {
	rc := resource.NewController(resource.Config{MaxConcurrentTransfers: 1})
	require.True(t, rc.TryAcquireSlot())
	defer rc.ReleaseSlot()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Save(ctx, blobstore.NewMemoryStore(), "x", genbitmap.New(8), WithResourceController(rc))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSave_MemoryLimit(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 16})

	err := Save(context.Background(), blobstore.NewMemoryStore(), "x", genbitmap.New(1024), WithResourceController(rc))
	assert.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
}

func TestLoad_MemoryLimitCoversDecodedBuffer(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	src := sparseBitmap(t, 1<<20)
	require.NoError(t, Save(ctx, store, "z.gbm", src, WithCodec(CodecZstd)))

	h, err := Inspect(ctx, store, "z.gbm")
	require.NoError(t, err)
	require.Equal(t, CodecZstd, h.Codec)
	require.Less(t, h.FrameSize(), uint64(64<<10), "frame alone fits the budget")

	rc := resource.NewController(resource.Config{MemoryLimitBytes: 64 << 10})
	_, err = Load(ctx, store, "z.gbm", WithResourceController(rc))
	assert.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
	assert.Equal(t, int64(0), rc.MemoryUsage())

	rc = resource.NewController(resource.Config{MemoryLimitBytes: 256 << 10})
	bm, err := Load(ctx, store, "z.gbm", WithResourceController(rc))
	require.NoError(t, err)
	assert.Equal(t, src.Bytes(), bm.Bytes())
	assert.Equal(t, int64(0), rc.MemoryUsage())
}

func TestLoad_MaxRawSize(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	require.NoError(t, Save(ctx, store, "r.gbm", sparseBitmap(t, 1<<16), WithCodec(CodecLZ4)))

	_, err := Load(ctx, store, "r.gbm", WithMaxRawSize(1<<10))
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = Load(ctx, store, "r.gbm", WithMaxRawSize(1<<13))
	assert.NoError(t, err)
}

type failingStore struct {
	*blobstore.MemoryStore
	w *failingWriter
}

type failingWriter struct {
	aborted bool
	closed  bool
}

func (w *failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }
func (w *failingWriter) Close() error              { w.closed = true; return nil }
func (w *failingWriter) Sync() error               { return nil }
func (w *failingWriter) Abort() error              { w.aborted = true; return nil }

func (s *failingStore) Create(context.Context, string) (blobstore.WritableBlob, error) {
	return s.w, nil
}

func TestSave_AbortsOnWriteError(t *testing.T) {
	store := &failingStore{MemoryStore: blobstore.NewMemoryStore(), w: &failingWriter{}}

	err := Save(context.Background(), store, "x", genbitmap.New(64))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.True(t, store.w.aborted)
	assert.False(t, store.w.closed)
}
