package gpu

import (
	"fmt"

	"github.com/gogpu/gputext/batch"
	"github.com/gogpu/gputext/shaders"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// glyphPipeline holds the shader modules, layouts, pipeline and sampler.
type glyphPipeline struct {
	vertexModule   hal.ShaderModule
	fragmentModule hal.ShaderModule

	uniformLayout  hal.BindGroupLayout
	atlasLayout    hal.BindGroupLayout
	pipelineLayout hal.PipelineLayout
	pipeline       hal.RenderPipeline
	sampler        hal.Sampler
}

// glyphBlend is straight-alpha "over" for color; alpha accumulates as
// src.a * src.a + dst.a * dst.a.
func glyphBlend() gputypes.BlendState {
	return gputypes.BlendState{
		Color: gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorSrcAlpha,
			DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
			Operation: gputypes.BlendOperationAdd,
		},
		Alpha: gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorSrcAlpha,
			DstFactor: gputypes.BlendFactorDstAlpha,
			Operation: gputypes.BlendOperationAdd,
		},
	}
}

// glyphVertexLayout describes batch.Vertex.
func glyphVertexLayout() gputypes.VertexBufferLayout {
	return gputypes.VertexBufferLayout{
		ArrayStride: batch.VertexSize,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x3, Offset: batch.VertexPosOffset, ShaderLocation: 0},
			{Format: gputypes.VertexFormatFloat32x4, Offset: batch.VertexColorOffset, ShaderLocation: 1},
			{Format: gputypes.VertexFormatFloat32x2, Offset: batch.VertexUVOffset, ShaderLocation: 2},
		},
	}
}

func (p *glyphPipeline) create(device hal.Device, cfg Config) error {
	var err error
	p.vertexModule, err = createShaderModule(device, shaders.TextVertex, cfg.ShaderFormat)
	if err != nil {
		return err
	}
	p.fragmentModule, err = createShaderModule(device, shaders.FragmentFor(cfg.SDF), cfg.ShaderFormat)
	if err != nil {
		return err
	}

	p.uniformLayout, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "glyph_uniform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex,
				Buffer: &gputypes.BufferBindingLayout{
					Type:           gputypes.BufferBindingTypeUniform,
					MinBindingSize: batch.UniformSize,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create uniform bind group layout: %w", err)
	}

	p.atlasLayout, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "glyph_atlas_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler: &gputypes.SamplerBindingLayout{
					Type: gputypes.SamplerBindingTypeFiltering,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create atlas bind group layout: %w", err)
	}

	p.pipelineLayout, err = device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "glyph_pipeline_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.uniformLayout, p.atlasLayout},
	})
	if err != nil {
		return fmt.Errorf("create glyph pipeline layout: %w", err)
	}

	p.sampler, err = device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "glyph_atlas_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		return fmt.Errorf("create glyph sampler: %w", err)
	}

	blend := glyphBlend()
	p.pipeline, err = device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "glyph_pipeline",
		Layout: p.pipelineLayout,
		Vertex: hal.VertexState{
			Module:     p.vertexModule,
			EntryPoint: shaders.VertexEntryPoint,
			Buffers:    []gputypes.VertexBufferLayout{glyphVertexLayout()},
		},
		Fragment: &hal.FragmentState{
			Module:     p.fragmentModule,
			EntryPoint: shaders.FragmentEntryPoint,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    cfg.TargetFormat,
					Blend:     &blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create glyph pipeline: %w", err)
	}
	return nil
}

func createShaderModule(device hal.Device, program shaders.Program, format shaders.Format) (hal.ShaderModule, error) {
	src, err := shaders.Load(program, format)
	if err != nil {
		return nil, fmt.Errorf("load %v shader: %w", program, err)
	}
	module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label: program.String(),
		Source: hal.ShaderSource{
			WGSL:  src.WGSL,
			SPIRV: src.SPIRV,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create %v shader module: %w", program, err)
	}
	return module, nil
}

// destroy releases the pipeline objects in reverse creation order.
func (p *glyphPipeline) destroy(device hal.Device) {
	if p.pipeline != nil {
		device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.sampler != nil {
		device.DestroySampler(p.sampler)
		p.sampler = nil
	}
	if p.pipelineLayout != nil {
		device.DestroyPipelineLayout(p.pipelineLayout)
		p.pipelineLayout = nil
	}
	if p.atlasLayout != nil {
		device.DestroyBindGroupLayout(p.atlasLayout)
		p.atlasLayout = nil
	}
	if p.uniformLayout != nil {
		device.DestroyBindGroupLayout(p.uniformLayout)
		p.uniformLayout = nil
	}
	if p.fragmentModule != nil {
		device.DestroyShaderModule(p.fragmentModule)
		p.fragmentModule = nil
	}
	if p.vertexModule != nil {
		device.DestroyShaderModule(p.vertexModule)
		p.vertexModule = nil
	}
}
