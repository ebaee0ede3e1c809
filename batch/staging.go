package batch

import (
	"fmt"

	"honnef.co/go/safeish"
)

// Region is a byte range inside a buffer.
type Region struct {
	Offset uint64
	Size   uint64
}

// End returns the first byte past the region.
func (r Region) End() uint64 { return r.Offset + r.Size }

// sub returns the first n bytes of r, or ErrStagingBounds if r is smaller.
func (r Region) sub(n uint64, name string) (Region, error) {
	if n > r.Size {
		return Region{}, fmt.Errorf("%w: %s needs %d bytes, region holds %d", ErrStagingBounds, name, n, r.Size)
	}
	return Region{Offset: r.Offset, Size: n}, nil
}

// Copy is one buffer-to-buffer transfer.
type Copy struct {
	SrcOffset uint64
	DstOffset uint64
	Size      uint64
}

// StagingLayout describes the transfer buffer: vertices at offset 0,
// indices right after the full vertex capacity. Every byte range used for
// staging and uploading is derived from it.
type StagingLayout struct {
	Vertices Region
	Indices  Region
}

// NewStagingLayout returns the layout for buffers of the given capacity.
// With DefaultLimits the index region starts at 36*4000 = 144000.
func NewStagingLayout(limits Limits) StagingLayout {
	if !limits.valid() {
		limits = DefaultLimits()
	}
	vb := limits.VertexBytes()
	return StagingLayout{
		Vertices: Region{Offset: 0, Size: vb},
		Indices:  Region{Offset: vb, Size: limits.IndexBytes()},
	}
}

// Size returns the total size of the transfer buffer.
func (l StagingLayout) Size() uint64 { return l.Indices.End() }

// VertexRange returns the staged bytes of n vertices.
func (l StagingLayout) VertexRange(n int) (Region, error) {
	if n < 0 {
		return Region{}, fmt.Errorf("%w: negative vertex count %d", ErrStagingBounds, n)
	}
	return l.Vertices.sub(uint64(n)*VertexSize, "vertices")
}

// IndexRange returns the staged bytes of n indices.
func (l StagingLayout) IndexRange(n int) (Region, error) {
	if n < 0 {
		return Region{}, fmt.Errorf("%w: negative index count %d", ErrStagingBounds, n)
	}
	return l.Indices.sub(uint64(n)*IndexSize, "indices")
}

// Copies returns the vertex and index transfers for the given counts. Both
// land at offset 0 of their device buffer.
func (l StagingLayout) Copies(vertices, indices int) (vc, ic Copy, err error) {
	vr, err := l.VertexRange(vertices)
	if err != nil {
		return Copy{}, Copy{}, err
	}
	ir, err := l.IndexRange(indices)
	if err != nil {
		return Copy{}, Copy{}, err
	}
	return Copy{SrcOffset: vr.Offset, Size: vr.Size}, Copy{SrcOffset: ir.Offset, Size: ir.Size}, nil
}

// Stage writes the contents of buf into dst: vertex_count vertices at the
// vertex region, index_count indices at the index region. dst is the mapped
// transfer buffer and must be at least l.Size() bytes. Bytes past the
// counts are left as they were.
func (l StagingLayout) Stage(dst []byte, buf *GeometryBuffer) error {
	if uint64(len(dst)) < l.Size() {
		return fmt.Errorf("%w: destination is %d bytes, layout needs %d", ErrStagingBounds, len(dst), l.Size())
	}
	vr, err := l.VertexRange(buf.VertexCount())
	if err != nil {
		return err
	}
	ir, err := l.IndexRange(buf.IndexCount())
	if err != nil {
		return err
	}
	copy(dst[vr.Offset:vr.End()], safeish.SliceCast[[]byte](buf.Vertices()))
	copy(dst[ir.Offset:ir.End()], safeish.SliceCast[[]byte](buf.Indices()))
	return nil
}
