package batch

import "fmt"

// DrawCall is one indexed draw of a DrawSequence.
type DrawCall struct {
	Atlas      AtlasID
	IndexCount uint32
	FirstIndex uint32
	BaseVertex int32
}

// Plan computes the draw calls for a list that was flattened, in order,
// into an empty GeometryBuffer. FirstIndex and BaseVertex are the running
// sums of the index and vertex counts of the preceding sequences, so each
// sequence's local indices resolve to its own vertices.
func Plan(list List) []DrawCall {
	calls := make([]DrawCall, 0, len(list))
	var firstIndex, baseVertex int
	for _, s := range list {
		calls = append(calls, DrawCall{
			Atlas:      s.Atlas,
			IndexCount: uint32(s.NumIndices()),
			FirstIndex: uint32(firstIndex),
			BaseVertex: int32(baseVertex),
		})
		firstIndex += s.NumIndices()
		baseVertex += s.NumVertices()
	}
	return calls
}

// Dispatch records the draws of list into pass.
//
// The pipeline, the vertex buffer (slot 0), the 32-bit index buffer and the
// uniforms are bound once. Each sequence then binds its atlas at fragment
// slot 0 and issues one indexed draw. list must be the list returned by
// Flatten for the buffer that was uploaded this frame. Dispatch does not end
// the pass.
func Dispatch(pass RenderPass, list List, u *Uniforms) error {
	if err := pass.BindPipeline(); err != nil {
		return fmt.Errorf("bind pipeline: %w", err)
	}
	if err := pass.BindVertexBuffer(0); err != nil {
		return fmt.Errorf("bind vertex buffer: %w", err)
	}
	if err := pass.BindIndexBuffer(); err != nil {
		return fmt.Errorf("bind index buffer: %w", err)
	}
	if err := pass.PushVertexUniforms(0, u); err != nil {
		return fmt.Errorf("push uniforms: %w", err)
	}
	for i, c := range Plan(list) {
		if err := pass.BindAtlas(0, c.Atlas); err != nil {
			return fmt.Errorf("draw %d: bind atlas %d: %w", i, c.Atlas, err)
		}
		if err := pass.DrawIndexed(c.IndexCount, 1, c.FirstIndex, c.BaseVertex, 0); err != nil {
			return fmt.Errorf("draw %d: %w", i, err)
		}
	}
	return nil
}
