package snapshot

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hupe1980/genbitmap"
	"github.com/hupe1980/genbitmap/internal/mmap"
)

// WriteFile atomically writes a snapshot of bm to path.
func WriteFile(path string, bm *genbitmap.Bitmap, codec Codec) error {
	f, err := newFrame(bm, codec)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := f.writeTo(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ReadFile reads and decodes the snapshot at path.
func ReadFile(path string, optFns ...Option) (*genbitmap.Bitmap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data, optFns...)
}

// MapFile maps an uncompressed snapshot file and adopts its payload as the
// Bitmap's buffer without copying. The mapping is private: Set modifies pages
// copy-on-write and never reaches the file. Closing the Bitmap unmaps it.
//
// Compressed snapshots return ErrNotMappable; use ReadFile for those.
func MapFile(path string, optFns ...Option) (*genbitmap.Bitmap, error) {
	o := applyOptions(optFns)

	m, err := mmap.OpenPrivate(path)
	if err != nil {
		return nil, err
	}

	bm, err := adoptMapping(m, o)
	if err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("snapshot: map %s: %w", path, err)
	}
	return bm, nil
}

func adoptMapping(m *mmap.Mapping, o *options) (*genbitmap.Bitmap, error) {
	h, err := parseHeader(m.Bytes())
	if err != nil {
		return nil, err
	}
	if h.Codec != CodecNone {
		return nil, fmt.Errorf("%w: codec %s", ErrNotMappable, h.Codec)
	}
	if err := o.checkLimits(h); err != nil {
		return nil, err
	}
	if uint64(m.Size()) != h.FrameSize() {
		return nil, fmt.Errorf("%w: file is %d bytes, header says %d", ErrCorrupt, m.Size(), h.FrameSize())
	}

	region, err := m.Region(HeaderSize, int(h.PayloadSize))
	if err != nil {
		return nil, err
	}
	_ = region.Advise(mmap.AccessRandom)

	data := region.Bytes()
	if o.verify {
		if err := verifyChecksum(data, h.Checksum); err != nil {
			return nil, err
		}
	}

	return genbitmap.NewFromBlob(genbitmap.NewBlobWithRelease(data, region.Close), h.BitCount, o.bitmapOptions...)
}
