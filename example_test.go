package genbitmap_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/genbitmap"
	"github.com/hupe1980/genbitmap/blobstore"
	"github.com/hupe1980/genbitmap/snapshot"
)

// Example demonstrates single-bit reads and writes.
func Example() {
	bm := genbitmap.New(16)
	defer bm.Close()

	bm.Set(0, true)
	bm.Set(9, true)

	fmt.Println(bm.Get(0), bm.Get(1), bm.Get(9))
	fmt.Printf("% x\n", bm.Bytes())
	// Output:
	// true false true
	// 80 40
}

// Example_setReturnsPrevious shows Set reporting the prior value.
func Example_setReturnsPrevious() {
	bm := genbitmap.New(8)
	defer bm.Close()

	fmt.Println(bm.Set(3, true))
	fmt.Println(bm.Set(3, true))
	fmt.Println(bm.Set(3, false))
	// Output:
	// false
	// true
	// true
}

// Example_checked demonstrates index validation.
func Example_checked() {
	bm := genbitmap.New(10)
	defer bm.Close()

	_, err := bm.SetChecked(10, true)
	fmt.Println(genbitmap.IsIndexOutOfRange(err))
	// Output: true
}

// Example_fromBlob hands a buffer to the bitmap without copying it.
func Example_fromBlob() {
	buf := []byte{0xA0}
	blob := genbitmap.NewBlob(buf)

	bm, err := genbitmap.NewFromBlob(blob, 8)
	if err != nil {
		log.Fatal(err)
	}
	defer bm.Close()

	fmt.Println(blob.Consumed(), bm.Get(0), bm.Get(2))
	// Output: true true true
}

// Example_striped spreads locking over several partitions.
func Example_striped() {
	bm := genbitmap.New(1<<20, genbitmap.WithConcurrencyHint(12))
	defer bm.Close()

	fmt.Println(bm.Partitions())
	// Output: 16
}

// Example_snapshot round-trips a bitmap through a blob store.
func Example_snapshot() {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	bm := genbitmap.New(1 << 16)
	bm.Set(42, true)

	if err := snapshot.Save(ctx, store, "bits.gbm", bm, snapshot.WithCodec(snapshot.CodecZstd)); err != nil {
		log.Fatal(err)
	}
	_ = bm.Close()

	loaded, err := snapshot.Load(ctx, store, "bits.gbm")
	if err != nil {
		log.Fatal(err)
	}
	defer loaded.Close()

	fmt.Println(loaded.Size(), loaded.Get(42), loaded.Get(43))
	// Output: 65536 true false
}
