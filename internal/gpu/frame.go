package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputext/batch"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// frame records one frame into a single command encoder.
type frame struct {
	ctx     *Context
	encoder hal.CommandEncoder
	pass    *renderPass
	done    bool
}

// BeginFrame creates the command encoder of a new frame.
func (c *Context) BeginFrame() (batch.Frame, error) {
	if c.destroyed {
		return nil, ErrDestroyed
	}
	if c.frame != nil {
		return nil, ErrFrameInProgress
	}
	encoder, err := c.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "glyph_frame_encoder",
	})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("glyph_frame"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}
	c.frame = &frame{ctx: c, encoder: encoder}
	return c.frame, nil
}

// BeginCopyPass returns a pass that records staging-to-device copies.
func (f *frame) BeginCopyPass() (batch.CopyPass, error) {
	if f.done {
		return nil, errFrameDone
	}
	return copyPass{f}, nil
}

// BeginRenderPass starts the glyph pass into the current target.
func (f *frame) BeginRenderPass(clear batch.Color) (batch.RenderPass, bool, error) {
	if f.done {
		return nil, false, errFrameDone
	}
	view := f.ctx.target
	if view == nil {
		f.ctx.log().Debug("gpu: no target, skipping render pass")
		return nil, false, nil
	}
	rp := f.encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "glyph_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:    view,
			LoadOp:  gputypes.LoadOpClear,
			StoreOp: gputypes.StoreOpStore,
			ClearValue: gputypes.Color{
				R: float64(clear.R),
				G: float64(clear.G),
				B: float64(clear.B),
				A: float64(clear.A),
			},
		}},
	})
	f.pass = &renderPass{ctx: f.ctx, rp: rp}
	return f.pass, true, nil
}

// Submit ends encoding and submits the frame with a fence that the next
// MapStaging waits on. A failed Submit leaves nothing to discard.
func (f *frame) Submit() error {
	if f.done {
		return errFrameDone
	}
	f.finish()
	c := f.ctx

	c.target = nil

	cmdBuf, err := f.encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	fence, err := c.device.CreateFence()
	if err != nil {
		c.device.FreeCommandBuffer(cmdBuf)
		return fmt.Errorf("create fence: %w", err)
	}
	if err := c.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		c.device.DestroyFence(fence)
		c.device.FreeCommandBuffer(cmdBuf)
		return fmt.Errorf("submit: %w", err)
	}
	// The command buffer is freed once the fence has signaled.
	c.pending = fence
	c.pendingCmd = cmdBuf
	return nil
}

// Discard abandons the frame's commands.
func (f *frame) Discard() {
	if f.done {
		return
	}
	f.finish()
	f.encoder.DiscardEncoding()
	f.ctx.target = nil
}

func (f *frame) finish() {
	f.done = true
	if f.pass != nil && !f.pass.ended {
		f.pass.rp.End()
		f.pass.ended = true
	}
	f.ctx.frame = nil
}

var errFrameDone = errors.New("gpu: frame already submitted or discarded")

// copyPass records copies on the frame's encoder. The hal encoder records
// transfers outside of passes, so End has nothing to close.
type copyPass struct {
	f *frame
}

func (p copyPass) CopyVertices(c batch.Copy) error {
	return p.copy(p.f.ctx.vertexBuf, p.f.ctx.cfg.Limits.VertexBytes(), c)
}

func (p copyPass) CopyIndices(c batch.Copy) error {
	return p.copy(p.f.ctx.indexBuf, p.f.ctx.cfg.Limits.IndexBytes(), c)
}

func (p copyPass) copy(dst hal.Buffer, dstSize uint64, c batch.Copy) error {
	if p.f.done {
		return errFrameDone
	}
	if c.DstOffset+c.Size > dstSize || c.SrcOffset+c.Size > p.f.ctx.layout.Size() {
		return fmt.Errorf("%w: copy %d+%d -> %d", batch.ErrStagingBounds, c.SrcOffset, c.Size, c.DstOffset)
	}
	p.f.encoder.CopyBufferToBuffer(p.f.ctx.stagingBuf, dst, []hal.BufferCopy{
		{SrcOffset: c.SrcOffset, DstOffset: c.DstOffset, Size: c.Size},
	})
	return nil
}

func (p copyPass) End() error { return nil }

// renderPass adapts a hal render pass encoder to batch.RenderPass.
type renderPass struct {
	ctx   *Context
	rp    hal.RenderPassEncoder
	ended bool
}

func (p *renderPass) BindPipeline() error {
	p.rp.SetPipeline(p.ctx.pipe.pipeline)
	return nil
}

func (p *renderPass) BindVertexBuffer(slot uint32) error {
	p.rp.SetVertexBuffer(slot, p.ctx.vertexBuf, 0)
	return nil
}

func (p *renderPass) BindIndexBuffer() error {
	p.rp.SetIndexBuffer(p.ctx.indexBuf, gputypes.IndexFormatUint32, 0)
	return nil
}

// PushVertexUniforms writes u to the uniform buffer and binds it. The
// write lands before the frame's command buffer executes.
func (p *renderPass) PushVertexUniforms(slot uint32, u *batch.Uniforms) error {
	if slot != 0 {
		return fmt.Errorf("gpu: uniform slot %d not supported", slot)
	}
	p.ctx.queue.WriteBuffer(p.ctx.uniformBuf, 0, u.Bytes())
	p.rp.SetBindGroup(uniformGroup, p.ctx.uniforms, nil)
	return nil
}

func (p *renderPass) BindAtlas(slot uint32, atlas batch.AtlasID) error {
	if slot != 0 {
		return fmt.Errorf("gpu: sampler slot %d not supported", slot)
	}
	a, ok := p.ctx.atlases[atlas]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownAtlas, atlas)
	}
	p.rp.SetBindGroup(atlasGroup, a.group, nil)
	return nil
}

func (p *renderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) error {
	p.rp.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
	return nil
}

func (p *renderPass) End() error {
	if !p.ended {
		p.rp.End()
		p.ended = true
	}
	return nil
}
