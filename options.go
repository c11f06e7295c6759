package spagbol

import (
	"github.com/spagbol-team/spagbol/codec"
	"github.com/spagbol-team/spagbol/partition"
	"github.com/spagbol-team/spagbol/reduction"
)

type options struct {
	partitionSize int
	batchSize     int
	codec         codec.Codec
	method        Method
	logger        *Logger
	metrics       partition.MetricsCollector
}

func defaultOptions() options {
	return options{
		partitionSize: partition.DefaultPartitionSize,
		batchSize:     reduction.DefaultBatchSize,
		codec:         codec.Default,
		method:        MethodIncremental,
		logger:        NoopLogger(),
		metrics:       partition.NoopMetricsCollector{},
	}
}

// Option configures Open.
type Option func(*options)

// WithPartitionSize bounds the number of entries per partition file in every
// column store.
func WithPartitionSize(n int) Option {
	return func(o *options) {
		o.partitionSize = n
	}
}

// WithBatchSize sets the number of vectors per reduction step and per
// similarity scoring batch.
func WithBatchSize(n int) Option {
	return func(o *options) {
		o.batchSize = n
	}
}

// WithCodec configures the codec used for partition files.
//
// A data directory must always be opened with the codec it was written with.
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithMethod selects how Project reduces a column.
//
// MethodIncremental (the default) streams the column twice through an
// incremental PCA and never holds more than one partition and one batch in
// memory. MethodPCA gathers the whole column into a single matrix first and
// is only suitable for columns that fit in memory.
func WithMethod(m Method) Option {
	return func(o *options) {
		o.method = m
	}
}

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector sets a collector shared by all column stores.
func WithMetricsCollector(m partition.MetricsCollector) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}
