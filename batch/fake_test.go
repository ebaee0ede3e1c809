package batch

import (
	"errors"
	"fmt"
)

// recorder is a CommandStream, CopyPass, RenderPass and Stager that logs
// every call as a string.
type recorder struct {
	calls   []string
	staging []byte
	draws   []recordedDraw
	bound   AtlasID
	failOn  string
}

type recordedDraw struct {
	IndexCount uint32
	FirstIndex uint32
	BaseVertex int32
	Atlas      AtlasID
}

var errInjected = errors.New("injected failure")

func newRecorder(l StagingLayout) *recorder {
	return &recorder{staging: make([]byte, l.Size())}
}

func (r *recorder) log(format string, args ...any) error {
	call := fmt.Sprintf(format, args...)
	r.calls = append(r.calls, call)
	if r.failOn != "" && r.failOn == call {
		return errInjected
	}
	return nil
}

func (r *recorder) MapStaging() ([]byte, error) {
	return r.staging, r.log("map")
}

func (r *recorder) UnmapStaging(written ...Region) error {
	return r.log("unmap %v", written)
}

func (r *recorder) BeginCopyPass() (CopyPass, error) {
	if err := r.log("begin copy"); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *recorder) CopyVertices(c Copy) error {
	return r.log("copy vertices %d->%d size %d", c.SrcOffset, c.DstOffset, c.Size)
}

func (r *recorder) CopyIndices(c Copy) error {
	return r.log("copy indices %d->%d size %d", c.SrcOffset, c.DstOffset, c.Size)
}

func (r *recorder) End() error { return r.log("end") }

func (r *recorder) BindPipeline() error { return r.log("pipeline") }

func (r *recorder) BindVertexBuffer(slot uint32) error { return r.log("vertex buffer %d", slot) }

func (r *recorder) BindIndexBuffer() error { return r.log("index buffer u32") }

func (r *recorder) PushVertexUniforms(slot uint32, _ *Uniforms) error {
	return r.log("uniforms %d", slot)
}

func (r *recorder) BindAtlas(slot uint32, atlas AtlasID) error {
	r.bound = atlas
	return r.log("atlas %d at %d", atlas, slot)
}

func (r *recorder) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) error {
	r.draws = append(r.draws, recordedDraw{
		IndexCount: indexCount,
		FirstIndex: firstIndex,
		BaseVertex: baseVertex,
		Atlas:      r.bound,
	})
	return r.log("draw %d %d %d %d %d", indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

// quad returns a sequence of n quads on atlas with local indices.
func quads(atlas AtlasID, n int) DrawSequence {
	s := DrawSequence{Atlas: atlas}
	for q := range n {
		x := float32(q * 10)
		s.XY = append(s.XY, [2]float32{x, 0}, [2]float32{x + 8, 0}, [2]float32{x + 8, 8}, [2]float32{x, 8})
		s.UV = append(s.UV, [2]float32{0, 0}, [2]float32{1, 0}, [2]float32{1, 1}, [2]float32{0, 1})
		base := uint32(q * 4)
		s.Indices = append(s.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return s
}

// sequence returns a sequence with nv vertices and ni indices cycling
// through the local vertex range.
func sequence(atlas AtlasID, nv, ni int) DrawSequence {
	s := DrawSequence{
		Atlas:   atlas,
		XY:      make([][2]float32, nv),
		UV:      make([][2]float32, nv),
		Indices: make([]uint32, ni),
	}
	for i := range nv {
		s.XY[i] = [2]float32{float32(i), float32(-i)}
		s.UV[i] = [2]float32{float32(i) / float32(nv), 0.5}
	}
	for i := range ni {
		s.Indices[i] = uint32(i % nv)
	}
	return s
}
