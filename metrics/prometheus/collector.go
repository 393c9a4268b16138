// Package prometheus exports genbitmap metrics to a Prometheus registry.
//
//	reg := prometheus.NewRegistry()
//	mc, err := genprom.NewCollector(reg)
//	bm := genbitmap.New(1<<20, genbitmap.WithMetricsCollector(mc))
package prometheus

import (
	"time"

	"github.com/hupe1980/genbitmap"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	statusOK    = "ok"
	statusError = "error"
)

// Collector implements genbitmap.MetricsCollector on Prometheus metrics.
// Hot-path counters are resolved once at construction so Get and Set never
// look up label values.
type Collector struct {
	constructs     *prometheus.CounterVec
	constructBytes prometheus.Counter

	getHit  prometheus.Counter
	getMiss prometheus.Counter

	setChanged   prometheus.Counter
	setUnchanged prometheus.Counter

	outOfRange *prometheus.CounterVec

	snapshots        *prometheus.CounterVec
	snapshotBytes    *prometheus.CounterVec
	snapshotDuration *prometheus.HistogramVec
}

var _ genbitmap.MetricsCollector = (*Collector)(nil)

// NewCollector creates the metrics under namespace "genbitmap" and registers
// them with reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	return NewCollectorWithNamespace(reg, "genbitmap")
}

// NewCollectorWithNamespace is NewCollector with a custom metric namespace.
func NewCollectorWithNamespace(reg prometheus.Registerer, namespace string) (*Collector, error) {
	constructs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "constructions_total",
		Help:      "Bitmap constructions by kind and status",
	}, []string{"kind", "status"})
	constructBytes := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "constructed_bytes_total",
		Help:      "Bytes of bitmap buffers created or adopted",
	})
	gets := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gets_total",
		Help:      "Bit reads by value read",
	}, []string{"value"})
	sets := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sets_total",
		Help:      "Bit writes by whether the bit flipped",
	}, []string{"changed"})
	outOfRange := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "out_of_range_total",
		Help:      "Checked operations rejected for an invalid index",
	}, []string{"op"})
	snapshots := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshots_total",
		Help:      "Snapshot saves and loads by status",
	}, []string{"op", "status"})
	snapshotBytes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshot_bytes_total",
		Help:      "Encoded bytes moved by successful snapshot operations",
	}, []string{"op"})
	snapshotDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "snapshot_duration_seconds",
		Help:      "Latency of snapshot operations",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op", "status"})

	for _, c := range []prometheus.Collector{
		constructs, constructBytes, gets, sets, outOfRange,
		snapshots, snapshotBytes, snapshotDuration,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return &Collector{
		constructs:       constructs,
		constructBytes:   constructBytes,
		getHit:           gets.WithLabelValues("true"),
		getMiss:          gets.WithLabelValues("false"),
		setChanged:       sets.WithLabelValues("true"),
		setUnchanged:     sets.WithLabelValues("false"),
		outOfRange:       outOfRange,
		snapshots:        snapshots,
		snapshotBytes:    snapshotBytes,
		snapshotDuration: snapshotDuration,
	}, nil
}

// RecordConstruct implements genbitmap.MetricsCollector.
func (c *Collector) RecordConstruct(kind string, bytes int, err error) {
	if err != nil {
		c.constructs.WithLabelValues(kind, statusError).Inc()
		return
	}
	c.constructs.WithLabelValues(kind, statusOK).Inc()
	c.constructBytes.Add(float64(bytes))
}

// RecordGet implements genbitmap.MetricsCollector.
func (c *Collector) RecordGet(value bool) {
	if value {
		c.getHit.Inc()
	} else {
		c.getMiss.Inc()
	}
}

// RecordSet implements genbitmap.MetricsCollector.
func (c *Collector) RecordSet(prev, value bool) {
	if prev != value {
		c.setChanged.Inc()
	} else {
		c.setUnchanged.Inc()
	}
}

// RecordOutOfRange implements genbitmap.MetricsCollector.
func (c *Collector) RecordOutOfRange(op string) {
	c.outOfRange.WithLabelValues(op).Inc()
}

// RecordSnapshot implements genbitmap.MetricsCollector.
func (c *Collector) RecordSnapshot(op string, bytes int64, duration time.Duration, err error) {
	status := statusOK
	if err != nil {
		status = statusError
	}
	c.snapshots.WithLabelValues(op, status).Inc()
	c.snapshotDuration.WithLabelValues(op, status).Observe(duration.Seconds())
	if err == nil {
		c.snapshotBytes.WithLabelValues(op).Add(float64(bytes))
	}
}
