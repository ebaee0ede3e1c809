package batch

import "unsafe"

// Capacity of a GeometryBuffer built with DefaultLimits.
const (
	MaxVertexCount = 4000
	MaxIndexCount  = 6000
)

// VertexSize is the size of Vertex in bytes, as laid out in GPU buffers.
const VertexSize = 36

// IndexSize is the size of one index in bytes. Indices are always 32-bit.
const IndexSize = 4

// Vertex is one glyph quad corner as seen by the vertex shader.
//
//	location 0: Pos   vec3<f32>  offset 0
//	location 1: Color vec4<f32>  offset 12
//	location 2: UV    vec2<f32>  offset 28
type Vertex struct {
	Pos   [3]float32
	Color [4]float32
	UV    [2]float32
}

// Field offsets inside Vertex, for vertex attribute descriptions.
const (
	VertexPosOffset   = 0
	VertexColorOffset = 12
	VertexUVOffset    = 28
)

var _ [VertexSize]byte = [unsafe.Sizeof(Vertex{})]byte{}

// Color is a straight-alpha RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// Common colors.
var (
	White  = Color{R: 1, G: 1, B: 1, A: 1}
	Yellow = Color{R: 1, G: 1, B: 0, A: 1}
)

// Array returns the color as a vertex attribute value.
func (c Color) Array() [4]float32 {
	return [4]float32{c.R, c.G, c.B, c.A}
}

// Limits bounds the contents of a GeometryBuffer and therefore the size of
// the staging and device buffers.
type Limits struct {
	MaxVertices int
	MaxIndices  int
}

// DefaultLimits returns the 4000 vertex / 6000 index capacity.
func DefaultLimits() Limits {
	return Limits{MaxVertices: MaxVertexCount, MaxIndices: MaxIndexCount}
}

// VertexBytes returns the size of a buffer holding MaxVertices vertices.
func (l Limits) VertexBytes() uint64 {
	return uint64(l.MaxVertices) * VertexSize
}

// IndexBytes returns the size of a buffer holding MaxIndices indices.
func (l Limits) IndexBytes() uint64 {
	return uint64(l.MaxIndices) * IndexSize
}

func (l Limits) valid() bool {
	return l.MaxVertices > 0 && l.MaxIndices > 0
}
