package partition

import (
	"errors"
	"fmt"
)

var (
	// ErrCorrupt is returned when a partition file or the index cannot be
	// decoded or contradicts itself. There is no repair path.
	ErrCorrupt = errors.New("partition: corrupt data")

	// ErrInvalidPartitionSize is returned when the partition size is not positive.
	ErrInvalidPartitionSize = errors.New("partition: partition size must be positive")

	// ErrInvalidBatchSize is returned by batch cursors when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("partition: batch size must be positive")

	// ErrInvalidDimension is returned when a configured dimension is negative.
	ErrInvalidDimension = errors.New("partition: dimension must not be negative")

	// ErrEmptyID is returned when an entry has no id.
	ErrEmptyID = errors.New("partition: empty entry id")

	// ErrEmptyVector is returned when an entry has a zero-length vector.
	ErrEmptyVector = errors.New("partition: empty vector")
)

// DuplicateIDError indicates an id inserted twice into the same partition
// or twice within one AddData call.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("partition: duplicate id %q", e.ID)
}

// DimensionMismatchError indicates a vector whose length differs from the
// store's dimension.
type DimensionMismatchError struct {
	ID       string
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("partition: dimension mismatch for %q: expected %d, got %d", e.ID, e.Expected, e.Actual)
}
