// Package similarity scores pairs of embedding vectors. Higher scores mean
// more similar for every Measure.
package similarity

import (
	"errors"
	"fmt"

	"github.com/viterin/vek/vek32"

	"github.com/spagbol-team/spagbol/partition"
)

var (
	// ErrZeroNorm is returned by Cosine when either vector has zero length.
	ErrZeroNorm = errors.New("similarity: zero-norm vector")

	// ErrDimensionMismatch is returned when two vectors differ in length.
	ErrDimensionMismatch = errors.New("similarity: dimension mismatch")

	// ErrUnknownMeasure is returned by ByName for an unknown measure.
	ErrUnknownMeasure = errors.New("similarity: unknown measure")
)

// Measure scores the similarity of two vectors.
type Measure interface {
	Compute(a, b partition.Vector) (float32, error)
	Name() string
}

// Cosine is cosine similarity, in [-1, 1].
type Cosine struct{}

// Compute returns a·b / (|a| |b|).
func (Cosine) Compute(a, b partition.Vector) (float32, error) {
	if err := checkShape(a, b); err != nil {
		return 0, err
	}
	na, nb := vek32.Norm(a), vek32.Norm(b)
	if na == 0 || nb == 0 {
		return 0, ErrZeroNorm
	}
	return vek32.Dot(a, b) / (na * nb), nil
}

// Name returns "cosine".
func (Cosine) Name() string { return "cosine" }

// Manhattan is the negated L1 distance, so identical vectors score 0 and
// every other pair scores below it.
type Manhattan struct{}

// Compute returns -Σ|a_i - b_i|.
func (Manhattan) Compute(a, b partition.Vector) (float32, error) {
	if err := checkShape(a, b); err != nil {
		return 0, err
	}
	return -vek32.ManhattanDistance(a, b), nil
}

// Name returns "manhattan".
func (Manhattan) Name() string { return "manhattan" }

// ComputeBatch scores q against every vector in batch.
func ComputeBatch(m Measure, q partition.Vector, batch []partition.Vector) ([]float32, error) {
	scores := make([]float32, len(batch))
	for i, v := range batch {
		s, err := m.Compute(q, v)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		scores[i] = s
	}
	return scores, nil
}

// ByName returns the measure with the given name.
func ByName(name string) (Measure, error) {
	switch name {
	case "cosine":
		return Cosine{}, nil
	case "manhattan":
		return Manhattan{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMeasure, name)
	}
}

func checkShape(a, b partition.Vector) error {
	if len(a) != len(b) {
		return fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	return nil
}
