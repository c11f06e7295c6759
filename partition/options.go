package partition

import (
	"log/slog"

	"github.com/spagbol-team/spagbol/codec"
	"github.com/spagbol-team/spagbol/internal/fs"
)

// DefaultPartitionSize is the number of entries per partition when no size
// is configured.
const DefaultPartitionSize = 1000

type options struct {
	partitionSize int
	dimension     int
	codec         codec.Codec
	logger        *slog.Logger
	metrics       MetricsCollector
	fs            fs.FileSystem
}

func defaultOptions() options {
	return options{
		partitionSize: DefaultPartitionSize,
		codec:         codec.Default,
		logger:        slog.New(slog.DiscardHandler),
		metrics:       NoopMetricsCollector{},
		fs:            fs.Default,
	}
}

// Option configures a Store.
type Option func(*options)

// WithPartitionSize bounds the number of entries per partition.
// Open fails with ErrInvalidPartitionSize for n <= 0.
func WithPartitionSize(n int) Option {
	return func(o *options) {
		o.partitionSize = n
	}
}

// WithDimension fixes the vector length accepted by AddData and expected in
// partition files. Without it the dimension is taken from the first vector
// the store sees.
func WithDimension(d int) Option {
	return func(o *options) {
		o.dimension = d
	}
}

// WithCodec sets the codec for partition files.
//
// The index file is always JSON. A directory must be reopened with the codec
// it was written with. If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithLogger sets the logger. Page swaps, flushes and rollovers are logged
// at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetricsCollector sets the metrics collector.
func WithMetricsCollector(m MetricsCollector) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithFileSystem replaces the filesystem the store reads and writes through.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		if fsys != nil {
			o.fs = fsys
		}
	}
}
