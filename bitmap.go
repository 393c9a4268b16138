package genbitmap

import (
	"fmt"
	"math"
	"sync"

	"github.com/hupe1980/genbitmap/internal/mem"
)

// cacheLineSize pads partition locks so neighbouring guards do not share a line.
const cacheLineSize = 64

type partitionLock struct {
	sync.Mutex
	_ [cacheLineSize - 8]byte
}

// Bitmap is a fixed-size bit vector safe for concurrent single-bit access.
//
// Bit i lives in byte i/8 at mask 0x80>>(i%8). The buffer is guarded by one or
// more partition locks; a byte is always covered by exactly one lock, so all
// operations touching the same byte are serialized.
//
// Memory layout (Bytes, MemorySize):
//
//	┌──────────────────┬──────────────────┬─────┬──────────────────────┐
//	│  byte 0          │  byte 1          │ ... │  byte ceil(n/8)-1    │
//	│  bits 0..7 (MSB) │  bits 8..15      │     │  trailing bits unused│
//	└──────────────────┴──────────────────┴─────┴──────────────────────┘
type Bitmap struct {
	data     []byte
	bitCount uint64

	locks    []partitionLock
	lockMask uint64

	release func() error
	closed  bool

	logger  *Logger
	metrics MetricsCollector
}

// New creates a zeroed Bitmap addressing bitCount bits. The buffer starts on a
// cache-line boundary. New panics if the buffer cannot be addressed by an int.
func New(bitCount uint64, optFns ...Option) *Bitmap {
	o := applyOptions(optFns)

	n := byteLen(bitCount)
	if n > math.MaxInt {
		panic(fmt.Sprintf("genbitmap: %d bits need %d bytes, more than an int can address", bitCount, n))
	}
	size := int(n)
	data := mem.AllocAligned(size)

	b := newBitmap(data, bitCount, nil, o)
	b.logger.LogCreate(constructNew, bitCount, size, len(b.locks))
	if b.metrics != nil {
		b.metrics.RecordConstruct(constructNew, size, nil)
	}
	return b
}

// NewFromCopy creates a Bitmap whose buffer is a cache-line aligned copy of src.
// The caller keeps ownership of src. len(src) must equal ceil(bitCount/8).
func NewFromCopy(src []byte, bitCount uint64, optFns ...Option) (*Bitmap, error) {
	o := applyOptions(optFns)

	if err := checkBlobSize(len(src), bitCount); err != nil {
		o.logger.LogConstructError(constructCopy, bitCount, err)
		if o.metrics != nil {
			o.metrics.RecordConstruct(constructCopy, len(src), err)
		}
		return nil, err
	}

	data := mem.AllocAligned(len(src))
	copy(data, src)

	b := newBitmap(data, bitCount, nil, o)
	b.logger.LogCreate(constructCopy, bitCount, len(data), len(b.locks))
	if b.metrics != nil {
		b.metrics.RecordConstruct(constructCopy, len(data), nil)
	}
	return b, nil
}

// NewFromBlob creates a Bitmap that takes ownership of blob's bytes without
// copying. The blob is consumed: its handle is emptied and any release func it
// carries runs when the Bitmap is closed. On error the blob is left untouched.
func NewFromBlob(blob *Blob, bitCount uint64, optFns ...Option) (*Bitmap, error) {
	o := applyOptions(optFns)

	data, release, err := blob.take(bitCount)
	if err != nil {
		size := 0
		if blob != nil {
			size = blob.Len()
		}
		o.logger.LogConstructError(constructBlob, bitCount, err)
		if o.metrics != nil {
			o.metrics.RecordConstruct(constructBlob, size, err)
		}
		return nil, err
	}

	b := newBitmap(data, bitCount, release, o)
	b.logger.LogCreate(constructBlob, bitCount, len(data), len(b.locks))
	if b.metrics != nil {
		b.metrics.RecordConstruct(constructBlob, len(data), nil)
	}
	return b, nil
}

func newBitmap(data []byte, bitCount uint64, release func() error, o *options) *Bitmap {
	n := partitionCount(o.concurrencyHint, len(data))
	return &Bitmap{
		data:     data,
		bitCount: bitCount,
		locks:    make([]partitionLock, n),
		lockMask: uint64(n - 1),
		release:  release,
		logger:   o.logger,
		metrics:  o.metrics,
	}
}

// Size returns the number of addressable bits.
func (b *Bitmap) Size() uint64 {
	return b.bitCount
}

// MemorySize returns the length of the backing buffer in bytes.
func (b *Bitmap) MemorySize() int {
	return len(b.data)
}

// Bytes returns the live backing buffer, for writing it to disk or the network.
//
// The slice aliases the Bitmap's memory. Callers must not mutate it, must
// synchronize externally with in-flight Set calls if they need a stable view
// (or use Snapshot), and must not use it after Close.
func (b *Bitmap) Bytes() []byte {
	return b.data
}

// Partitions returns the number of locks guarding the buffer.
func (b *Bitmap) Partitions() int {
	return len(b.locks)
}

// Get reports whether bit idx is set.
//
// idx must be smaller than Size. The index is not validated: an index past the
// buffer panics, an index within the trailing byte reads an unused bit.
// Use GetChecked for a validated read.
func (b *Bitmap) Get(idx uint64) bool {
	byteIdx := idx >> 3
	l := &b.locks[byteIdx&b.lockMask]

	l.Lock()
	v := b.data[byteIdx]&bitMasks[idx&7] != 0
	l.Unlock()

	if b.metrics != nil {
		b.metrics.RecordGet(v)
	}
	return v
}

// Set assigns val to bit idx and returns the bit's previous value.
//
// idx must be smaller than Size; see Get for the unchecked contract.
func (b *Bitmap) Set(idx uint64, val bool) bool {
	byteIdx := idx >> 3
	offset := idx & 7
	l := &b.locks[byteIdx&b.lockMask]

	l.Lock()
	prev := b.data[byteIdx]
	b.data[byteIdx] = transitions[prev][offset][boolToIndex(val)]
	l.Unlock()

	was := prev&bitMasks[offset] != 0
	if b.metrics != nil {
		b.metrics.RecordSet(was, val)
	}
	return was
}

// GetChecked is Get with index validation.
func (b *Bitmap) GetChecked(idx uint64) (bool, error) {
	if idx >= b.bitCount {
		return false, b.outOfRange(opGet, idx)
	}
	return b.Get(idx), nil
}

// SetChecked is Set with index validation. On error the bitmap is unchanged.
func (b *Bitmap) SetChecked(idx uint64, val bool) (bool, error) {
	if idx >= b.bitCount {
		return false, b.outOfRange(opSet, idx)
	}
	return b.Set(idx, val), nil
}

func (b *Bitmap) outOfRange(op string, idx uint64) error {
	if b.metrics != nil {
		b.metrics.RecordOutOfRange(op)
	}
	return &ErrIndexOutOfRange{Index: idx, Size: b.bitCount}
}

// Snapshot returns a copy of the buffer taken while every partition is locked,
// so it reflects a single point in time.
func (b *Bitmap) Snapshot() []byte {
	b.lockAll()
	defer b.unlockAll()

	if b.data == nil {
		return nil
	}
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

// Close releases the buffer. If the Bitmap adopted a Blob with a release func
// (for example a file mapping) that func runs exactly once here.
// Any use of the Bitmap after Close is a caller error.
func (b *Bitmap) Close() error {
	b.lockAll()
	defer b.unlockAll()

	if b.closed {
		return ErrClosed
	}
	b.closed = true

	var err error
	if b.release != nil {
		err = b.release()
		b.release = nil
	}
	b.data = nil

	b.logger.LogClose(b.bitCount, err)
	return err
}

func (b *Bitmap) lockAll() {
	for i := range b.locks {
		b.locks[i].Lock()
	}
}

func (b *Bitmap) unlockAll() {
	for i := len(b.locks) - 1; i >= 0; i-- {
		b.locks[i].Unlock()
	}
}

// byteLen returns ceil(bitCount/8) without wrapping near MaxUint64.
func byteLen(bitCount uint64) uint64 {
	n := bitCount >> 3
	if bitCount&7 != 0 {
		n++
	}
	return n
}

// partitionCount rounds hint up to a power of two, capped at the largest power
// of two not above byteCount so every lock guards at least one byte.
// hint <= 1 selects a single global lock.
func partitionCount(hint, byteCount int) int {
	if hint <= 1 || byteCount <= 1 {
		return 1
	}
	n := 1
	for n < hint && n<<1 <= byteCount {
		n <<= 1
	}
	return n
}

func checkBlobSize(blobSize int, bitCount uint64) error {
	if want := byteLen(bitCount); uint64(blobSize) != want {
		return &ErrBlobSizeMismatch{BlobSize: blobSize, Expected: want, BitCount: bitCount}
	}
	return nil
}
