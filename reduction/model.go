package reduction

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/spagbol-team/spagbol/partition"
)

// Model is a reduction model that can be fit one batch at a time.
type Model interface {
	// PartialFit updates the model with one batch (rows are samples).
	PartialFit(x *mat.Dense) error

	// Transform maps x to the reduced space. The result has one row per row
	// of x.
	Transform(x *mat.Dense) (*mat.Dense, error)
}

// Source is a store that can be traversed in batches.
type Source interface {
	BatchIterator(size int) *partition.BatchCursor
}

// State is the lifecycle of a Streaming reducer.
type State int

const (
	Unfit State = iota
	Fitting
	Fit
)

func (s State) String() string {
	switch s {
	case Unfit:
		return "unfit"
	case Fitting:
		return "fitting"
	case Fit:
		return "fit"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Matrix converts a batch of vectors into a row-major float64 matrix.
func Matrix(batch []partition.Vector) (*mat.Dense, error) {
	if len(batch) == 0 || len(batch[0]) == 0 {
		return nil, fmt.Errorf("%w: empty batch", ErrDimensionMismatch)
	}
	cols := len(batch[0])
	data := make([]float64, 0, len(batch)*cols)
	for i, v := range batch {
		if len(v) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrDimensionMismatch, i, len(v), cols)
		}
		for _, f := range v {
			data = append(data, float64(f))
		}
	}
	return mat.NewDense(len(batch), cols, data), nil
}
