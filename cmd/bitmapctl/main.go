// Command bitmapctl inspects and edits bitmap snapshots held in a blob store.
//
//	bitmapctl --store file:///var/lib/bitmaps create --bits 1048576 visited.gbm
//	bitmapctl --store s3://my-bucket/bitmaps set visited.gbm 42 1
//	bitmapctl --store minio://localhost:9000/bitmaps/daily inspect visited.gbm
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp(ctx).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "bitmapctl:", err)
		stop()
		os.Exit(1)
	}
}
