package batch

import (
	"errors"
	"fmt"
)

// Sentinel errors for the batch package.
var (
	// ErrCapacityOverflow is returned when a draw sequence does not fit in the
	// remaining vertex or index capacity of a GeometryBuffer.
	ErrCapacityOverflow = errors.New("batch: geometry capacity exceeded")

	// ErrInvalidSequence is returned for a draw sequence whose positions and
	// texture coordinates differ in length or whose indices point past its
	// own vertices.
	ErrInvalidSequence = errors.New("batch: invalid draw sequence")

	// ErrStagingBounds is returned when a staging or copy range falls outside
	// its region of the StagingLayout.
	ErrStagingBounds = errors.New("batch: staging range out of bounds")
)

// CapacityError describes a rejected append.
type CapacityError struct {
	Vertices          int
	Indices           int
	RemainingVertices int
	RemainingIndices  int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("batch: sequence needs %d vertices and %d indices, %d and %d remain",
		e.Vertices, e.Indices, e.RemainingVertices, e.RemainingIndices)
}

// Unwrap allows errors.Is(err, ErrCapacityOverflow).
func (e *CapacityError) Unwrap() error { return ErrCapacityOverflow }
