// Package shaders holds the glyph shader programs.
//
// Programs are written in WGSL and embedded in the binary. Backends that
// consume WGSL get the source as is; backends that want SPIR-V get it
// compiled with naga. The vertex shader entry point is vs_main and the
// fragment entry point is fs_main.
//
// Bindings:
//
//	group 0 binding 0: uniform { proj: mat4x4<f32>, model: mat4x4<f32> } (vertex)
//	group 1 binding 0: texture_2d<f32> atlas (fragment)
//	group 1 binding 1: sampler (fragment)
package shaders

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/naga"
)

//go:embed text.vert.wgsl
var textVertexSource string

//go:embed text.frag.wgsl
var textFragmentSource string

//go:embed text_sdf.frag.wgsl
var textSDFFragmentSource string

// Entry points shared by all programs of a stage.
const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"
)

// Program identifies one shader program.
type Program int

// Shader programs.
const (
	TextVertex Program = iota
	TextFragment
	TextSDFFragment
)

// String returns the program's label.
func (p Program) String() string {
	switch p {
	case TextVertex:
		return "text.vert"
	case TextFragment:
		return "text.frag"
	case TextSDFFragment:
		return "text_sdf.frag"
	default:
		return fmt.Sprintf("Program(%d)", int(p))
	}
}

// EntryPoint returns the entry point name of the program.
func (p Program) EntryPoint() string {
	if p == TextVertex {
		return VertexEntryPoint
	}
	return FragmentEntryPoint
}

// Format is a shader binary format.
type Format int

// Shader formats.
const (
	FormatWGSL Format = iota
	FormatSPIRV
)

// String returns "wgsl" or "spirv".
func (f Format) String() string {
	if f == FormatSPIRV {
		return "spirv"
	}
	return "wgsl"
}

// ErrNoShaderFormat is returned when a backend accepts none of the
// formats this package can produce.
var ErrNoShaderFormat = errors.New("shaders: no supported shader format")

// SelectFormat returns the first of supported that this package can
// produce. Backends list their formats in order of preference.
func SelectFormat(supported ...Format) (Format, error) {
	for _, f := range supported {
		if f == FormatWGSL || f == FormatSPIRV {
			return f, nil
		}
	}
	return 0, ErrNoShaderFormat
}

// FormatsFor returns the shader formats a graphics backend accepts, most
// preferred first. backend is the name a window reports for its backend,
// such as "Vulkan" or "Metal". Vulkan takes SPIR-V natively; every other
// backend translates WGSL itself.
func FormatsFor(backend string) []Format {
	if strings.Contains(strings.ToLower(backend), "vulkan") {
		return []Format{FormatSPIRV, FormatWGSL}
	}
	return []Format{FormatWGSL}
}

// Source is a shader program in one format. Exactly one field is set.
type Source struct {
	WGSL  string
	SPIRV []uint32
}

// WGSL returns the WGSL source of p.
func WGSL(p Program) (string, error) {
	switch p {
	case TextVertex:
		return textVertexSource, nil
	case TextFragment:
		return textFragmentSource, nil
	case TextSDFFragment:
		return textSDFFragmentSource, nil
	default:
		return "", fmt.Errorf("shaders: unknown program %v", p)
	}
}

// Load returns p in the requested format.
func Load(p Program, f Format) (Source, error) {
	src, err := WGSL(p)
	if err != nil {
		return Source{}, err
	}
	if f == FormatWGSL {
		return Source{WGSL: src}, nil
	}
	spirv, err := CompileSPIRV(src)
	if err != nil {
		return Source{}, fmt.Errorf("shaders: %v: %w", p, err)
	}
	return Source{SPIRV: spirv}, nil
}

// CompileSPIRV compiles WGSL source to SPIR-V words.
func CompileSPIRV(wgsl string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}

	// SPIR-V is little-endian 32-bit words.
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return code, nil
}

// FragmentFor returns the fragment program for coverage or SDF atlases.
func FragmentFor(sdf bool) Program {
	if sdf {
		return TextSDFFragment
	}
	return TextFragment
}
