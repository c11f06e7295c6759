package spagbol

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an id is not recorded in a column.
	ErrNotFound = errors.New("spagbol: id not found")

	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("spagbol: k must be positive")

	// ErrEmptyRow is returned by Ingest for a row without any vector.
	ErrEmptyRow = errors.New("spagbol: row has no vectors")
)

// ErrUnknownColumn indicates a column name outside Columns.
type ErrUnknownColumn struct {
	Column Column
}

func (e *ErrUnknownColumn) Error() string {
	return fmt.Sprintf("spagbol: unknown column %q", string(e.Column))
}

// ErrUnknownMethod indicates an unsupported reduction method.
type ErrUnknownMethod struct {
	Method Method
}

func (e *ErrUnknownMethod) Error() string {
	return fmt.Sprintf("spagbol: unknown reduction method %q", string(e.Method))
}

// ErrMisaligned indicates a projection whose row count differs from the
// column's entry count, so rows cannot be zipped back onto ids.
type ErrMisaligned struct {
	Column Column
	Rows   int
	IDs    int
}

func (e *ErrMisaligned) Error() string {
	return fmt.Sprintf("spagbol: %s projection has %d rows for %d ids", e.Column, e.Rows, e.IDs)
}
