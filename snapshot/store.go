package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hupe1980/genbitmap"
	"github.com/hupe1980/genbitmap/blobstore"
	"github.com/hupe1980/genbitmap/resource"
)

const (
	opSave = "save"
	opLoad = "load"
)

// Save encodes bm and writes it to store under name.
//
// The write holds one transfer slot of the resource controller, reserves the
// encoded size against its memory limit and streams through its IO limiter.
// If the write fails the blob is aborted where the store supports it.
func Save(ctx context.Context, store blobstore.Store, name string, bm *genbitmap.Bitmap, optFns ...Option) error {
	o := applyOptions(optFns)
	start := time.Now()

	n, codec, err := save(ctx, store, name, bm, o)

	o.logger.LogSave(ctx, name, codec.String(), n, err)
	if o.metrics != nil {
		o.metrics.RecordSnapshot(opSave, n, time.Since(start), err)
	}
	return err
}

func save(ctx context.Context, store blobstore.Store, name string, bm *genbitmap.Bitmap, o *options) (int64, Codec, error) {
	if err := o.rc.AcquireSlot(ctx); err != nil {
		return 0, o.codec, err
	}
	defer o.rc.ReleaseSlot()

	reserved := int64(bm.MemorySize())
	if err := o.rc.AcquireMemory(ctx, reserved); err != nil {
		return 0, o.codec, err
	}
	defer o.rc.ReleaseMemory(reserved)

	f, err := newFrame(bm, o.codec)
	if err != nil {
		return 0, o.codec, err
	}

	w, err := store.Create(ctx, name)
	if err != nil {
		return 0, f.header.Codec, err
	}

	n, err := f.writeTo(resource.NewRateLimitedWriter(ctx, w, o.rc))
	if err != nil {
		abort(w)
		return n, f.header.Codec, fmt.Errorf("snapshot: write %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return n, f.header.Codec, fmt.Errorf("snapshot: commit %s: %w", name, err)
	}
	return n, f.header.Codec, nil
}

func abort(w blobstore.WritableBlob) {
	if a, ok := w.(blobstore.Aborter); ok {
		_ = a.Abort()
		return
	}
	_ = w.Close()
}

// Load reads the snapshot stored under name and returns a Bitmap that owns
// the decoded buffer.
func Load(ctx context.Context, store blobstore.Store, name string, optFns ...Option) (*genbitmap.Bitmap, error) {
	o := applyOptions(optFns)
	start := time.Now()

	bm, n, err := load(ctx, store, name, o)

	var bits uint64
	if bm != nil {
		bits = bm.Size()
	}
	o.logger.LogLoad(ctx, name, bits, err)
	if o.metrics != nil {
		o.metrics.RecordSnapshot(opLoad, n, time.Since(start), err)
	}
	return bm, err
}

func load(ctx context.Context, store blobstore.Store, name string, o *options) (*genbitmap.Bitmap, int64, error) {
	if err := o.rc.AcquireSlot(ctx); err != nil {
		return nil, 0, err
	}
	defer o.rc.ReleaseSlot()

	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = blob.Close() }()

	size := blob.Size()
	if size < HeaderSize {
		return nil, size, fmt.Errorf("%w: %s is %d bytes", ErrCorrupt, name, size)
	}

	h, err := readBlobHeader(ctx, blob)
	if err != nil {
		return nil, size, err
	}
	if err := o.checkLimits(h); err != nil {
		return nil, size, err
	}
	if uint64(size) != h.FrameSize() {
		return nil, size, fmt.Errorf("%w: %s is %d bytes, header says %d", ErrCorrupt, name, size, h.FrameSize())
	}

	// Compressed frames need the encoded bytes and the decoded buffer at once.
	reserve := size
	if h.Codec != CodecNone {
		reserve += int64(h.RawSize)
	}
	if err := o.rc.AcquireMemory(ctx, reserve); err != nil {
		return nil, size, err
	}
	defer o.rc.ReleaseMemory(reserve)

	rc, err := blob.ReadRange(ctx, 0, size)
	if err != nil {
		return nil, size, err
	}
	defer func() { _ = rc.Close() }()

	data := make([]byte, size)
	if _, err := io.ReadFull(resource.NewRateLimitedReader(ctx, rc, o.rc), data); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, size, fmt.Errorf("%w: %s: short read", ErrCorrupt, name)
		}
		return nil, size, err
	}
	if got, err := parseHeader(data); err != nil || got != h {
		return nil, size, fmt.Errorf("%w: %s changed while loading", ErrCorrupt, name)
	}

	bm, err := build(h, data[HeaderSize:], o)
	return bm, size, err
}

// Inspect reads only the header of the snapshot stored under name.
func Inspect(ctx context.Context, store blobstore.Store, name string) (Header, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return Header{}, err
	}
	defer func() { _ = blob.Close() }()

	return readBlobHeader(ctx, blob)
}

func readBlobHeader(ctx context.Context, blob blobstore.Blob) (Header, error) {
	var b [HeaderSize]byte
	n, err := blob.ReadAt(ctx, b[:], 0)
	if n < HeaderSize {
		if err == nil || errors.Is(err, io.EOF) {
			return Header{}, fmt.Errorf("%w: truncated header", ErrCorrupt)
		}
		return Header{}, err
	}
	return parseHeader(b[:])
}
