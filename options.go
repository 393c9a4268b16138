package genbitmap

type options struct {
	concurrencyHint int
	logger          *Logger
	metrics         MetricsCollector
}

// Option configures Bitmap construction.
type Option func(*options)

// WithConcurrencyHint requests lock partitioning for roughly n concurrent callers.
//
// The hint is rounded up to a power of two and capped at the largest power of
// two not exceeding the buffer's byte count. Partitions are whole bytes: bit i
// is guarded by lock (i/8) & (partitions-1), so two bits of the same byte never
// sit behind different locks.
//
// Values <= 1 keep the single global lock (the default), which serializes every
// Get and Set across the bitmap.
func WithConcurrencyHint(n int) Option {
	return func(o *options) {
		o.concurrencyHint = n
	}
}

// WithLogger configures structured logging of lifecycle events.
// Get and Set never log. If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil (or NoopMetricsCollector) to disable collection.
//
// The collector is called on every Get and Set, so implementations must be
// cheap and safe for concurrent use.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if _, ok := mc.(NoopMetricsCollector); ok {
			mc = nil
		}
		o.metrics = mc
	}
}

func applyOptions(optFns []Option) *options {
	o := &options{
		logger: NoopLogger(),
	}
	for _, fn := range optFns {
		fn(o)
	}
	return o
}
