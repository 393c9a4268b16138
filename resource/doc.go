// Package resource limits the cost of moving bitmap snapshots around.
//
// A Controller bounds three things shared by concurrent snapshot transfers:
//
//   - Memory: bytes of in-flight transfer buffers (weighted semaphore)
//   - Concurrency: number of simultaneous transfers (weighted semaphore)
//   - IO: throughput in bytes per second (token bucket)
//
// # Architecture
//
//	┌─────────────────────────────────────────────────────────────┐
//	│                        Controller                           │
//	├─────────────────┬─────────────────┬─────────────────────────┤
//	│  Memory Limit   │  Transfer Slots │  IO Rate Limiter        │
//	│  (semaphore)    │  (semaphore)    │  (token bucket)         │
//	├─────────────────┼─────────────────┼─────────────────────────┤
//	│  AcquireMemory  │  AcquireSlot    │  AcquireIO              │
//	│  TryAcquire...  │  TryAcquireSlot │  RateLimitedWriter      │
//	│  ReleaseMemory  │  ReleaseSlot    │  RateLimitedReader      │
//	└─────────────────┴─────────────────┴─────────────────────────┘
//
// Example:
//
//	rc := resource.NewController(resource.Config{
//	    MaxConcurrentTransfers: 2,
//	    IOLimitBytesPerSec:     64 << 20,
//	})
//	err := snapshot.Save(ctx, store, "visited.gbm", bm, snapshot.WithResourceController(rc))
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
package resource
