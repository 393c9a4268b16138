package snapshot

import (
	"github.com/hupe1980/genbitmap"
	"github.com/hupe1980/genbitmap/resource"
)

type options struct {
	codec          Codec
	verify         bool
	maxPayloadSize uint64
	maxRawSize     uint64
	bitmapOptions  []genbitmap.Option
	rc             *resource.Controller
	logger         *genbitmap.Logger
	metrics        genbitmap.MetricsCollector
}

// Option configures snapshot encoding and decoding.
type Option func(*options)

// WithCodec selects the payload codec used by Save. Default: CodecNone.
func WithCodec(c Codec) Option {
	return func(o *options) {
		o.codec = c
	}
}

// WithVerifyChecksum toggles CRC verification on load. Default: true.
func WithVerifyChecksum(verify bool) Option {
	return func(o *options) {
		o.verify = verify
	}
}

// WithMaxPayloadSize rejects frames whose payload exceeds n bytes before any
// buffer is allocated. Zero means no limit.
func WithMaxPayloadSize(n uint64) Option {
	return func(o *options) {
		o.maxPayloadSize = n
	}
}

// WithMaxRawSize rejects frames whose decoded bitmap exceeds n bytes before
// the payload is decompressed. Zero means no limit.
func WithMaxRawSize(n uint64) Option {
	return func(o *options) {
		o.maxRawSize = n
	}
}

// WithBitmapOptions passes options to the Bitmap built from a snapshot.
func WithBitmapOptions(opts ...genbitmap.Option) Option {
	return func(o *options) {
		o.bitmapOptions = append(o.bitmapOptions, opts...)
	}
}

// WithResourceController throttles Save and Load through rc.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithLogger sets the logger for Save and Load events.
func WithLogger(l *genbitmap.Logger) Option {
	return func(o *options) {
		if l == nil {
			l = genbitmap.NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector sets the collector notified after Save and Load.
func WithMetricsCollector(mc genbitmap.MetricsCollector) Option {
	return func(o *options) {
		o.metrics = mc
	}
}

func applyOptions(optFns []Option) *options {
	o := &options{
		codec:  CodecNone,
		verify: true,
		logger: genbitmap.NoopLogger(),
	}
	for _, fn := range optFns {
		fn(o)
	}
	return o
}
