package batch

import (
	"fmt"
	"iter"
	"slices"
)

// AtlasID identifies the glyph atlas texture a sequence samples from.
// The text engine hands them out; the GPU backend maps each one to a
// texture and bind group.
type AtlasID uint32

// DrawSequence is a run of glyph quads that share one atlas texture.
// Indices are local to the sequence: index 0 is the sequence's first vertex.
//
// A DrawSequence is read-only to this package.
type DrawSequence struct {
	Atlas   AtlasID
	XY      [][2]float32
	UV      [][2]float32
	Indices []uint32
}

// NumVertices returns the number of vertices in the sequence.
func (s DrawSequence) NumVertices() int { return len(s.XY) }

// NumIndices returns the number of indices in the sequence.
func (s DrawSequence) NumIndices() int { return len(s.Indices) }

// Validate reports ErrInvalidSequence when XY and UV differ in length or an
// index is out of range for the sequence's own vertices.
func (s DrawSequence) Validate() error {
	if len(s.XY) != len(s.UV) {
		return fmt.Errorf("%w: %d positions, %d uvs", ErrInvalidSequence, len(s.XY), len(s.UV))
	}
	n := uint32(len(s.XY))
	for i, idx := range s.Indices {
		if idx >= n {
			return fmt.Errorf("%w: index %d is %d, sequence has %d vertices", ErrInvalidSequence, i, idx, n)
		}
	}
	return nil
}

// List is the ordered set of sequences drawn in one frame.
type List []DrawSequence

// Collect materializes seq so that it can be traversed by both the
// flattener and the dispatcher. A nil seq yields an empty list.
func Collect(seq iter.Seq[DrawSequence]) List {
	if seq == nil {
		return nil
	}
	return List(slices.Collect(seq))
}

// Totals returns the number of vertices and indices in the list.
func (l List) Totals() (vertices, indices int) {
	for _, s := range l {
		vertices += s.NumVertices()
		indices += s.NumIndices()
	}
	return vertices, indices
}
