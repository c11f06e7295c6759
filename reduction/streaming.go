package reduction

import (
	"fmt"
	"log/slog"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/spagbol-team/spagbol/partition"
)

// Streaming drives a Model through a fit pass and a transform pass over a
// Source. A reducer fits once: after Fit has started, a new reducer is needed
// to fit again.
//
// Streaming is not safe for concurrent use, and the Source must not be
// modified between the two passes.
type Streaming struct {
	model Model
	opts  options
	state State
	rows  int // rows seen by the fit pass
}

// NewStreaming returns an unfit reducer around m.
func NewStreaming(m Model, optFns ...Option) *Streaming {
	o := options{
		batchSize: DefaultBatchSize,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, fn := range optFns {
		fn(&o)
	}
	return &Streaming{model: m, opts: o}
}

// State returns the reducer's lifecycle state.
func (r *Streaming) State() State { return r.state }

// Model returns the wrapped model.
func (r *Streaming) Model() Model { return r.model }

// Samples returns the number of rows consumed by the fit pass.
func (r *Streaming) Samples() int { return r.rows }

// Fit runs the fit pass: every batch of src, in traversal order, is passed
// to the model's PartialFit. The reducer is Fitting from the first batch and
// Fit once the traversal completes.
func (r *Streaming) Fit(src Source) error {
	if r.state != Unfit {
		return ErrAlreadyFit
	}
	start := time.Now()

	batches := 0
	c := src.BatchIterator(r.opts.batchSize)
	for c.Next() {
		x, err := Matrix(c.Batch())
		if err != nil {
			return err
		}
		r.state = Fitting
		if err := r.model.PartialFit(x); err != nil {
			return fmt.Errorf("partial fit batch %d: %w", batches, err)
		}
		batches++
		r.rows += len(c.Batch())
	}
	if err := c.Err(); err != nil {
		return err
	}
	if batches == 0 {
		return ErrNoData
	}

	r.state = Fit
	r.opts.logger.Info("fit pass complete",
		slog.Int("batches", batches),
		slog.Int("rows", r.rows),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// Transform runs the transform pass and returns one output row per entry,
// in traversal order.
func (r *Streaming) Transform(src Source) (*mat.Dense, error) {
	if r.state != Fit {
		return nil, ErrUnfitModel
	}
	start := time.Now()

	var data []float64
	rows, cols := 0, 0
	c := src.BatchIterator(r.opts.batchSize)
	for c.Next() {
		out, err := r.transform(c.Batch())
		if err != nil {
			return nil, err
		}
		n, k := out.Dims()
		if cols == 0 {
			cols = k
		}
		if k != cols {
			return nil, fmt.Errorf("%w: model returned %d columns, want %d", ErrDimensionMismatch, k, cols)
		}
		for i := 0; i < n; i++ {
			data = append(data, out.RawRowView(i)...)
		}
		rows += n
	}
	if err := c.Err(); err != nil {
		return nil, err
	}

	r.opts.logger.Info("transform pass complete",
		slog.Int("rows", rows),
		slog.Duration("duration", time.Since(start)))
	if rows == 0 {
		return &mat.Dense{}, nil
	}
	return mat.NewDense(rows, cols, data), nil
}

// FitTransform runs both passes and returns the transform pass output.
func (r *Streaming) FitTransform(src Source) (*mat.Dense, error) {
	if err := r.Fit(src); err != nil {
		return nil, err
	}
	return r.Transform(src)
}

// TransformBatch maps vectors through the fitted model.
func (r *Streaming) TransformBatch(vectors []partition.Vector) (*mat.Dense, error) {
	if r.state != Fit {
		return nil, ErrUnfitModel
	}
	return r.transform(vectors)
}

func (r *Streaming) transform(batch []partition.Vector) (*mat.Dense, error) {
	x, err := Matrix(batch)
	if err != nil {
		return nil, err
	}
	out, err := r.model.Transform(x)
	if err != nil {
		return nil, err
	}
	if n, _ := out.Dims(); n != len(batch) {
		return nil, fmt.Errorf("%w: model returned %d rows for %d", ErrDimensionMismatch, n, len(batch))
	}
	return out, nil
}
