package gputext

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/gogpu/gputext/batch"
)

var errInjected = errors.New("injected failure")

// fakeBackend records every backend call together with the renderer state
// it was made in.
type fakeBackend struct {
	r        *Renderer
	limits   batch.Limits
	staging  []byte
	calls    []string
	noTarget bool
	failOn   string
	logger   *slog.Logger

	submitted int
	discarded int
}

func newFakeBackend() *fakeBackend {
	l := batch.DefaultLimits()
	return &fakeBackend{
		limits:  l,
		staging: make([]byte, batch.NewStagingLayout(l).Size()),
	}
}

func (b *fakeBackend) log(format string, args ...any) error {
	call := fmt.Sprintf(format, args...)
	if b.r != nil {
		call = b.r.State().String() + " " + call
	}
	b.calls = append(b.calls, call)
	if b.failOn != "" && b.failOn == call {
		return errInjected
	}
	return nil
}

func (b *fakeBackend) Limits() batch.Limits       { return b.limits }
func (b *fakeBackend) SetLogger(l *slog.Logger)   { b.logger = l }
func (b *fakeBackend) MapStaging() ([]byte, error) { return b.staging, b.log("map") }

func (b *fakeBackend) UnmapStaging(written ...batch.Region) error {
	return b.log("unmap %v", written)
}

func (b *fakeBackend) BeginFrame() (batch.Frame, error) {
	if err := b.log("begin frame"); err != nil {
		return nil, err
	}
	return &fakeFrame{b: b}, nil
}

type fakeFrame struct {
	b    *fakeBackend
	done bool
}

func (f *fakeFrame) BeginCopyPass() (batch.CopyPass, error) {
	return fakePass{f.b}, f.b.log("begin copy")
}

func (f *fakeFrame) BeginRenderPass(c batch.Color) (batch.RenderPass, bool, error) {
	if f.b.noTarget {
		return nil, false, f.b.log("no target")
	}
	return fakePass{f.b}, true, f.b.log("begin render %v", c)
}

func (f *fakeFrame) Submit() error {
	if err := f.b.log("submit"); err != nil {
		return err
	}
	f.done = true
	f.b.submitted++
	return nil
}

func (f *fakeFrame) Discard() {
	if f.done {
		return
	}
	f.done = true
	f.b.discarded++
	_ = f.b.log("discard")
}

type fakePass struct{ b *fakeBackend }

func (p fakePass) CopyVertices(c batch.Copy) error {
	return p.b.log("copy vertices %d->%d size %d", c.SrcOffset, c.DstOffset, c.Size)
}

func (p fakePass) CopyIndices(c batch.Copy) error {
	return p.b.log("copy indices %d->%d size %d", c.SrcOffset, c.DstOffset, c.Size)
}

func (p fakePass) End() error          { return p.b.log("end") }
func (p fakePass) BindPipeline() error { return p.b.log("pipeline") }

func (p fakePass) BindVertexBuffer(slot uint32) error { return p.b.log("vertex buffer %d", slot) }
func (p fakePass) BindIndexBuffer() error             { return p.b.log("index buffer") }

func (p fakePass) PushVertexUniforms(slot uint32, _ *batch.Uniforms) error {
	return p.b.log("uniforms %d", slot)
}

func (p fakePass) BindAtlas(slot uint32, atlas batch.AtlasID) error {
	return p.b.log("atlas %d at %d", atlas, slot)
}

func (p fakePass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) error {
	return p.b.log("draw %d %d %d %d %d", indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

func newTestRenderer(t *testing.T, opts ...RendererOption) (*Renderer, *fakeBackend) {
	t.Helper()
	b := newFakeBackend()
	r, err := NewRenderer(b, opts...)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	b.r = r
	return r, b
}

// seq returns a sequence of nv vertices and ni indices on atlas.
func seq(atlas batch.AtlasID, nv, ni int) batch.DrawSequence {
	s := batch.DrawSequence{
		Atlas:   atlas,
		XY:      make([][2]float32, nv),
		UV:      make([][2]float32, nv),
		Indices: make([]uint32, ni),
	}
	for i := range ni {
		s.Indices[i] = uint32(i % nv)
	}
	return s
}

func TestNewRenderer_NilBackend(t *testing.T) {
	if _, err := NewRenderer(nil); !errors.Is(err, ErrInitialization) {
		t.Fatalf("err = %v, want ErrInitialization", err)
	}
}

func TestNewRenderer_BackendLimits(t *testing.T) {
	b := newFakeBackend()
	b.limits = batch.Limits{MaxVertices: 8, MaxIndices: 12}
	r, err := NewRenderer(b, WithLimits(batch.DefaultLimits()))
	if err != nil {
		t.Fatal(err)
	}
	if got := r.layout.Indices.Offset; got != 8*batch.VertexSize {
		t.Errorf("index region offset = %d, want %d", got, 8*batch.VertexSize)
	}
}

// TestFrame_TwoSequences is the end-to-end scenario: two sequences on two
// atlases, flattened, staged, uploaded and drawn in one frame.
func TestFrame_TwoSequences(t *testing.T) {
	r, b := newTestRenderer(t, WithClearColor(batch.Color{R: 0.3, G: 0.4, B: 0.5, A: 1}))
	u := batch.IdentityUniforms()

	stats, err := r.Frame(slices.Values(batch.List{seq(1, 4, 6), seq(2, 6, 9)}), &u)
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	want := FrameStats{Sequences: 2, Vertices: 10, Indices: 15, Draws: 2, Presented: true}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}

	wantCalls := []string{
		"STAGE map",
		"STAGE unmap [{0 360} {144000 60}]",
		"STAGE begin frame",
		"UPLOAD begin copy",
		"UPLOAD copy vertices 0->0 size 360",
		"UPLOAD copy indices 144000->0 size 60",
		"UPLOAD end",
		"DRAW begin render {0.3 0.4 0.5 1}",
		"DRAW pipeline",
		"DRAW vertex buffer 0",
		"DRAW index buffer",
		"DRAW uniforms 0",
		"DRAW atlas 1 at 0",
		"DRAW draw 6 1 0 0 0",
		"DRAW atlas 2 at 0",
		"DRAW draw 9 1 6 4 0",
		"DRAW end",
		"PRESENT submit",
	}
	if !slices.Equal(b.calls, wantCalls) {
		t.Errorf("calls:\n got %q\nwant %q", b.calls, wantCalls)
	}
	if r.State() != StateIdle {
		t.Errorf("state after frame = %v, want IDLE", r.State())
	}
	if r.buf.VertexCount() != 0 || r.buf.IndexCount() != 0 {
		t.Error("geometry buffer not reset after frame")
	}
	if r.Frames() != 1 {
		t.Errorf("Frames = %d", r.Frames())
	}
}

func TestFrame_Empty(t *testing.T) {
	r, b := newTestRenderer(t)
	u := batch.IdentityUniforms()

	stats, err := r.Frame(nil, &u)
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if stats.Draws != 0 || stats.Vertices != 0 || stats.Indices != 0 {
		t.Errorf("stats = %+v", stats)
	}
	for _, want := range []string{"STAGE map", "UPLOAD begin copy", "PRESENT submit"} {
		if !slices.Contains(b.calls, want) {
			t.Errorf("missing call %q in %q", want, b.calls)
		}
	}
	for _, c := range b.calls {
		if strings.Contains(c, " copy ") || strings.Contains(c, " draw ") {
			t.Errorf("unexpected call %q", c)
		}
	}
}

func TestFrame_NoTarget(t *testing.T) {
	r, b := newTestRenderer(t)
	b.noTarget = true
	u := batch.IdentityUniforms()

	stats, err := r.Frame(slices.Values(batch.List{seq(0, 4, 6)}), &u)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Presented || stats.Draws != 0 {
		t.Errorf("stats = %+v, want nothing drawn", stats)
	}
	if b.submitted != 1 {
		t.Errorf("submitted = %d, want 1", b.submitted)
	}
	if !slices.Contains(b.calls, "UPLOAD copy vertices 0->0 size 144") {
		t.Errorf("frame without target did not upload: %q", b.calls)
	}
}

func TestFrame_CapacitySkip(t *testing.T) {
	b := newFakeBackend()
	b.limits = batch.Limits{MaxVertices: 8, MaxIndices: 12}
	b.staging = make([]byte, batch.NewStagingLayout(b.limits).Size())
	r, err := NewRenderer(b)
	if err != nil {
		t.Fatal(err)
	}
	u := batch.IdentityUniforms()

	stats, err := r.Frame(slices.Values(batch.List{seq(0, 4, 6), seq(1, 6, 9), seq(2, 4, 6)}), &u)
	if err != nil {
		t.Fatalf("overflow must not fail the frame: %v", err)
	}
	if stats.Sequences != 2 || stats.Skipped != 1 || stats.Draws != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.Vertices != 8 || stats.Indices != 12 {
		t.Errorf("counts = %d/%d, want 8/12", stats.Vertices, stats.Indices)
	}
}

func TestFrame_RuntimeFailure(t *testing.T) {
	tests := []struct {
		name      string
		failOn    string
		discarded int
	}{
		{"map", "STAGE map", 0},
		{"begin frame", "STAGE begin frame", 0},
		{"copy", "UPLOAD copy vertices 0->0 size 144", 1},
		{"draw", "DRAW draw 6 1 0 0 0", 1},
		{"submit", "PRESENT submit", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, b := newTestRenderer(t)
			b.failOn = tt.failOn
			u := batch.IdentityUniforms()

			_, err := r.Frame(slices.Values(batch.List{seq(0, 4, 6)}), &u)
			if !errors.Is(err, ErrRuntimeCall) || !errors.Is(err, errInjected) {
				t.Fatalf("err = %v, want ErrRuntimeCall wrapping the failure", err)
			}
			if b.discarded != tt.discarded {
				t.Errorf("discarded = %d, want %d", b.discarded, tt.discarded)
			}
			if r.State() != StateIdle {
				t.Errorf("state = %v, want IDLE", r.State())
			}
			if r.buf.VertexCount() != 0 {
				t.Error("geometry buffer not reset")
			}

			// The next frame starts clean.
			b.failOn = ""
			if _, err := r.Frame(slices.Values(batch.List{seq(0, 4, 6)}), &u); err != nil {
				t.Fatalf("next frame: %v", err)
			}
		})
	}
}

func TestFrame_Tint(t *testing.T) {
	r, b := newTestRenderer(t, WithTint(batch.Yellow))
	u := batch.IdentityUniforms()
	if _, err := r.Frame(slices.Values(batch.List{seq(0, 4, 6)}), &u); err != nil {
		t.Fatal(err)
	}
	// color of the first staged vertex
	var got batch.Color
	off := batch.VertexColorOffset
	got.R = float32frombytes(b.staging[off:])
	got.G = float32frombytes(b.staging[off+4:])
	got.B = float32frombytes(b.staging[off+8:])
	got.A = float32frombytes(b.staging[off+12:])
	if got != batch.Yellow {
		t.Errorf("staged color = %+v, want %+v", got, batch.Yellow)
	}
}

func TestFrameState_String(t *testing.T) {
	tests := []struct {
		s    FrameState
		want string
	}{
		{StateIdle, "IDLE"},
		{StateBuild, "BUILD"},
		{StateStage, "STAGE"},
		{StateUpload, "UPLOAD"},
		{StateDraw, "DRAW"},
		{StatePresent, "PRESENT"},
		{FrameState(42), "FrameState(42)"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", int(tt.s), got, tt.want)
		}
	}
}

func float32frombytes(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}
