package batch

// Stager gives write access to the transfer buffer.
//
// MapStaging returns memory of at least StagingLayout.Size bytes.
// UnmapStaging publishes the given regions to the GPU; the memory must not
// be touched afterwards until the next MapStaging.
type Stager interface {
	MapStaging() ([]byte, error)
	UnmapStaging(written ...Region) error
}

// CommandStream records the GPU work of one frame.
type CommandStream interface {
	// BeginCopyPass starts a transfer pass.
	BeginCopyPass() (CopyPass, error)
}

// Frame is the command stream of one frame.
type Frame interface {
	CommandStream

	// BeginRenderPass starts a pass that clears the presentable target to
	// clear. ok is false when there is no target this frame; the frame
	// must still be submitted.
	BeginRenderPass(clear Color) (pass RenderPass, ok bool, err error)

	// Submit ends recording and hands the work to the GPU.
	Submit() error

	// Discard abandons the recorded work. It is a no-op after Submit.
	Discard()
}

// Backend is the GPU side of the renderer.
type Backend interface {
	Stager

	// BeginFrame acquires the command stream for a new frame.
	BeginFrame() (Frame, error)
}

// CopyPass records buffer-to-buffer transfers from the staging buffer.
type CopyPass interface {
	CopyVertices(c Copy) error
	CopyIndices(c Copy) error
	End() error
}

// RenderPass records draw state and draw calls.
type RenderPass interface {
	// BindPipeline binds the glyph pipeline.
	BindPipeline() error
	// BindVertexBuffer binds the device vertex buffer at slot, offset 0.
	BindVertexBuffer(slot uint32) error
	// BindIndexBuffer binds the device index buffer with 32-bit indices.
	BindIndexBuffer() error
	// PushVertexUniforms makes u visible to the vertex stage at slot.
	PushVertexUniforms(slot uint32, u *Uniforms) error
	// BindAtlas binds the atlas texture and its sampler to the fragment
	// stage at slot.
	BindAtlas(slot uint32, atlas AtlasID) error
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) error
	End() error
}

// StageBuffer maps the transfer buffer, writes buf into it following l and
// unmaps it. Only the used parts of the two regions are published.
func StageBuffer(st Stager, l StagingLayout, buf *GeometryBuffer) error {
	mem, err := st.MapStaging()
	if err != nil {
		return err
	}
	if err := l.Stage(mem, buf); err != nil {
		_ = st.UnmapStaging()
		return err
	}
	vr, _ := l.VertexRange(buf.VertexCount())
	ir, _ := l.IndexRange(buf.IndexCount())
	return st.UnmapStaging(vr, ir)
}

// Upload records, in one copy pass, the transfer of the staged vertices and
// indices to offset 0 of the device vertex and index buffers. Empty regions
// are not copied.
func Upload(cmd CommandStream, l StagingLayout, buf *GeometryBuffer) error {
	vc, ic, err := l.Copies(buf.VertexCount(), buf.IndexCount())
	if err != nil {
		return err
	}
	pass, err := cmd.BeginCopyPass()
	if err != nil {
		return err
	}
	if vc.Size > 0 {
		if err := pass.CopyVertices(vc); err != nil {
			_ = pass.End()
			return err
		}
	}
	if ic.Size > 0 {
		if err := pass.CopyIndices(ic); err != nil {
			_ = pass.End()
			return err
		}
	}
	return pass.End()
}
