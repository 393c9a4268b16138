package genbitmap

import (
	"sync/atomic"
	"time"
)

// Construction kinds reported to loggers and collectors.
const (
	constructNew  = "new"
	constructCopy = "copy"
	constructBlob = "blob"
)

const (
	opGet = "get"
	opSet = "set"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; see the
// metrics/prometheus package for a Prometheus implementation.
//
// RecordGet and RecordSet run on the hot path after the partition lock has been
// released. Implementations must be safe for concurrent use.
type MetricsCollector interface {
	// RecordConstruct is called after each constructor. kind is "new", "copy"
	// or "blob"; bytes is the buffer size; err is nil on success.
	RecordConstruct(kind string, bytes int, err error)

	// RecordGet is called after each Get with the value read.
	RecordGet(value bool)

	// RecordSet is called after each Set with the previous and new value.
	RecordSet(prev, value bool)

	// RecordOutOfRange is called when a checked operation rejects an index.
	// op is "get" or "set".
	RecordOutOfRange(op string)

	// RecordSnapshot is called after a snapshot save or load.
	// op is "save" or "load"; bytes is the encoded size.
	RecordSnapshot(op string, bytes int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordConstruct(string, int, error)                 {}
func (NoopMetricsCollector) RecordGet(bool)                                     {}
func (NoopMetricsCollector) RecordSet(bool, bool)                               {}
func (NoopMetricsCollector) RecordOutOfRange(string)                            {}
func (NoopMetricsCollector) RecordSnapshot(string, int64, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ConstructCount  atomic.Int64
	ConstructErrors atomic.Int64
	ConstructBytes  atomic.Int64

	GetCount atomic.Int64
	GetHits  atomic.Int64

	SetCount    atomic.Int64
	Transitions atomic.Int64

	OutOfRangeCount atomic.Int64

	SaveCount     atomic.Int64
	SaveErrors    atomic.Int64
	SaveBytes     atomic.Int64
	LoadCount     atomic.Int64
	LoadErrors    atomic.Int64
	LoadBytes     atomic.Int64
	SnapshotNanos atomic.Int64
}

// RecordConstruct implements MetricsCollector.
func (b *BasicMetricsCollector) RecordConstruct(_ string, bytes int, err error) {
	b.ConstructCount.Add(1)
	if err != nil {
		b.ConstructErrors.Add(1)
		return
	}
	b.ConstructBytes.Add(int64(bytes))
}

// RecordGet implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGet(value bool) {
	b.GetCount.Add(1)
	if value {
		b.GetHits.Add(1)
	}
}

// RecordSet implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSet(prev, value bool) {
	b.SetCount.Add(1)
	if prev != value {
		b.Transitions.Add(1)
	}
}

// RecordOutOfRange implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOutOfRange(string) {
	b.OutOfRangeCount.Add(1)
}

// RecordSnapshot implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSnapshot(op string, bytes int64, duration time.Duration, err error) {
	b.SnapshotNanos.Add(duration.Nanoseconds())
	switch op {
	case "save":
		b.SaveCount.Add(1)
		if err != nil {
			b.SaveErrors.Add(1)
		} else {
			b.SaveBytes.Add(bytes)
		}
	case "load":
		b.LoadCount.Add(1)
		if err != nil {
			b.LoadErrors.Add(1)
		} else {
			b.LoadBytes.Add(bytes)
		}
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ConstructCount:   b.ConstructCount.Load(),
		ConstructErrors:  b.ConstructErrors.Load(),
		ConstructBytes:   b.ConstructBytes.Load(),
		GetCount:         b.GetCount.Load(),
		GetHits:          b.GetHits.Load(),
		SetCount:         b.SetCount.Load(),
		Transitions:      b.Transitions.Load(),
		OutOfRangeCount:  b.OutOfRangeCount.Load(),
		SaveCount:        b.SaveCount.Load(),
		SaveErrors:       b.SaveErrors.Load(),
		SaveBytes:        b.SaveBytes.Load(),
		LoadCount:        b.LoadCount.Load(),
		LoadErrors:       b.LoadErrors.Load(),
		LoadBytes:        b.LoadBytes.Load(),
		SnapshotAvgNanos: b.getAvgSnapshotNanos(),
	}
}

func (b *BasicMetricsCollector) getAvgSnapshotNanos() int64 {
	count := b.SaveCount.Load() + b.LoadCount.Load()
	if count == 0 {
		return 0
	}
	return b.SnapshotNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ConstructCount   int64
	ConstructErrors  int64
	ConstructBytes   int64
	GetCount         int64
	GetHits          int64
	SetCount         int64
	Transitions      int64
	OutOfRangeCount  int64
	SaveCount        int64
	SaveErrors       int64
	SaveBytes        int64
	LoadCount        int64
	LoadErrors       int64
	LoadBytes        int64
	SnapshotAvgNanos int64
}
