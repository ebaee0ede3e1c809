package batch

import (
	"github.com/go-gl/mathgl/mgl32"
	"honnef.co/go/safeish"
)

// UniformSize is the size of Uniforms in bytes.
const UniformSize = 128

// Uniforms is the vertex-stage uniform block: two column-major matrices,
// matching
//
//	struct Uniforms { proj: mat4x4<f32>, model: mat4x4<f32> }
type Uniforms struct {
	Projection mgl32.Mat4
	Model      mgl32.Mat4
}

// Bytes returns the uniform block as uploaded to the GPU. The slice aliases u.
func (u *Uniforms) Bytes() []byte {
	return safeish.AsBytes(u)
}

// IdentityUniforms returns uniforms with both matrices set to identity.
func IdentityUniforms() Uniforms {
	return Uniforms{Projection: mgl32.Ident4(), Model: mgl32.Ident4()}
}
