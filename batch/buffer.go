package batch

import (
	"errors"
	"fmt"
)

// GeometryBuffer is the host-side vertex and index storage for one frame.
//
// Storage is allocated once at the capacity given by its Limits and reused
// across frames; Reset only rewinds the counts. The counts never exceed the
// limits: an append that does not fit is rejected before anything is
// written.
type GeometryBuffer struct {
	limits   Limits
	vertices []Vertex
	indices  []uint32

	numVertices int
	numIndices  int
}

// NewGeometryBuffer allocates a buffer with the given capacity. Zero or
// negative limits fall back to DefaultLimits.
func NewGeometryBuffer(limits Limits) *GeometryBuffer {
	if !limits.valid() {
		limits = DefaultLimits()
	}
	return &GeometryBuffer{
		limits:   limits,
		vertices: make([]Vertex, limits.MaxVertices),
		indices:  make([]uint32, limits.MaxIndices),
	}
}

// Limits returns the buffer capacity.
func (b *GeometryBuffer) Limits() Limits { return b.limits }

// Reset empties the buffer without releasing storage.
func (b *GeometryBuffer) Reset() {
	b.numVertices = 0
	b.numIndices = 0
}

// VertexCount returns the number of vertices appended since the last Reset.
func (b *GeometryBuffer) VertexCount() int { return b.numVertices }

// IndexCount returns the number of indices appended since the last Reset.
func (b *GeometryBuffer) IndexCount() int { return b.numIndices }

// RemainingVertices returns how many more vertices fit.
func (b *GeometryBuffer) RemainingVertices() int { return b.limits.MaxVertices - b.numVertices }

// RemainingIndices returns how many more indices fit.
func (b *GeometryBuffer) RemainingIndices() int { return b.limits.MaxIndices - b.numIndices }

// Vertices returns the appended vertices. The slice aliases the buffer and
// is only valid until the next Reset.
func (b *GeometryBuffer) Vertices() []Vertex { return b.vertices[:b.numVertices] }

// Indices returns the appended indices. The slice aliases the buffer and
// is only valid until the next Reset.
func (b *GeometryBuffer) Indices() []uint32 { return b.indices[:b.numIndices] }

// Append copies s into the buffer with z = 0 and every vertex colored tint.
// Indices are copied unchanged. If s is invalid or does not fit, Append
// returns an error and leaves the buffer untouched.
func (b *GeometryBuffer) Append(s DrawSequence, tint Color) error {
	if err := s.Validate(); err != nil {
		return err
	}
	nv, ni := s.NumVertices(), s.NumIndices()
	if nv > b.RemainingVertices() || ni > b.RemainingIndices() {
		return &CapacityError{
			Vertices:          nv,
			Indices:           ni,
			RemainingVertices: b.RemainingVertices(),
			RemainingIndices:  b.RemainingIndices(),
		}
	}

	color := tint.Array()
	dst := b.vertices[b.numVertices : b.numVertices+nv]
	for i := range dst {
		xy, uv := s.XY[i], s.UV[i]
		dst[i] = Vertex{
			Pos:   [3]float32{xy[0], xy[1], 0},
			Color: color,
			UV:    uv,
		}
	}
	copy(b.indices[b.numIndices:b.numIndices+ni], s.Indices)

	b.numVertices += nv
	b.numIndices += ni
	return nil
}

// Flatten appends every sequence of list to buf in order.
//
// A sequence that is invalid or does not fit is skipped and later sequences
// are still tried. The returned list holds exactly the sequences that were
// appended, in order, and is the list that must be handed to Dispatch so
// that draw offsets match the buffer contents. The error joins one entry per
// skipped sequence; use errors.Is with ErrCapacityOverflow or
// ErrInvalidSequence to classify it.
func Flatten(buf *GeometryBuffer, list List, tint Color) (List, error) {
	accepted := make(List, 0, len(list))
	var errs []error
	for i, s := range list {
		if err := buf.Append(s, tint); err != nil {
			errs = append(errs, fmt.Errorf("sequence %d: %w", i, err))
			continue
		}
		accepted = append(accepted, s)
	}
	return accepted, errors.Join(errs...)
}
