package reduction

import "log/slog"

// DefaultBatchSize is the number of vectors fed to the model per step.
const DefaultBatchSize = 100

type options struct {
	batchSize int
	logger    *slog.Logger
}

// Option configures a Streaming reducer.
type Option func(*options)

// WithBatchSize sets the batch size used by both passes. A non-positive size
// makes every pass fail with partition.ErrInvalidBatchSize.
func WithBatchSize(n int) Option {
	return func(o *options) {
		o.batchSize = n
	}
}

// WithLogger sets the logger. Pass completion is logged at info level.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
