package partition

import "slices"

// Vector is a fixed-shape embedding payload.
type Vector []float32

// Clone returns a copy of v.
func (v Vector) Clone() Vector { return slices.Clone(v) }

// Entry is one embedded item.
type Entry struct {
	ID     string
	Vector Vector
}
