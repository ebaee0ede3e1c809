package gputext

import (
	"errors"
	"fmt"
	"iter"

	"github.com/gogpu/gputext/batch"
)

// FrameState is the stage a Renderer is in.
type FrameState int

// Frame states, in the order every frame passes through them.
const (
	StateIdle FrameState = iota
	StateBuild
	StateStage
	StateUpload
	StateDraw
	StatePresent
)

func (s FrameState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateBuild:
		return "BUILD"
	case StateStage:
		return "STAGE"
	case StateUpload:
		return "UPLOAD"
	case StateDraw:
		return "DRAW"
	case StatePresent:
		return "PRESENT"
	default:
		return fmt.Sprintf("FrameState(%d)", int(s))
	}
}

// FrameStats describes a completed frame.
type FrameStats struct {
	Sequences int // draw sequences accepted into the geometry buffer
	Skipped   int // draw sequences skipped for capacity or validity
	Vertices  int
	Indices   int
	Draws     int
	Presented bool // false when there was no target to draw into
}

// Renderer drives one frame at a time through BUILD, STAGE, UPLOAD, DRAW
// and PRESENT on a batch.Backend. It owns the geometry buffer.
//
// Renderer is not safe for concurrent use.
type Renderer struct {
	backend batch.Backend
	layout  batch.StagingLayout
	buf     *batch.GeometryBuffer
	tint    batch.Color
	clear   batch.Color

	state  FrameState
	frames uint64
}

// NewRenderer creates a Renderer on backend. When backend reports its
// buffer capacity through a Limits() batch.Limits method, that capacity
// replaces WithLimits.
func NewRenderer(backend batch.Backend, opts ...RendererOption) (*Renderer, error) {
	if backend == nil {
		return nil, fmt.Errorf("%w: nil backend", ErrInitialization)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if lb, ok := backend.(interface{ Limits() batch.Limits }); ok {
		o.limits = lb.Limits()
	}
	if o.limits.MaxVertices <= 0 || o.limits.MaxIndices <= 0 {
		return nil, fmt.Errorf("%w: invalid limits %+v", ErrInitialization, o.limits)
	}

	r := &Renderer{
		backend: backend,
		layout:  batch.NewStagingLayout(o.limits),
		buf:     batch.NewGeometryBuffer(o.limits),
		tint:    o.tint,
		clear:   o.clear,
	}
	registerBackend(backend)
	Logger().Info("gputext: renderer ready",
		"max_vertices", o.limits.MaxVertices,
		"max_indices", o.limits.MaxIndices,
		"staging_bytes", r.layout.Size())
	return r, nil
}

// State returns the current frame state. It is StateIdle between frames.
func (r *Renderer) State() FrameState { return r.state }

// Frames returns the number of frames submitted.
func (r *Renderer) Frames() uint64 { return r.frames }

// Tint returns the vertex color.
func (r *Renderer) Tint() batch.Color { return r.tint }

// SetTint changes the vertex color from the next frame on.
func (r *Renderer) SetTint(c batch.Color) { r.tint = c }

// SetClearColor changes the clear color from the next frame on.
func (r *Renderer) SetClearColor(c batch.Color) { r.clear = c }

// Frame renders the draw sequences of seqs with uniforms u.
//
// Sequences that do not fit are skipped and logged; they are not an error.
// Any backend failure wraps ErrRuntimeCall: the frame's command stream is
// discarded and the Renderer is back in StateIdle, ready for the next
// frame. A frame without a target is staged, uploaded and submitted but
// draws nothing.
func (r *Renderer) Frame(seqs iter.Seq[batch.DrawSequence], u *batch.Uniforms) (FrameStats, error) {
	var stats FrameStats
	defer func() {
		r.buf.Reset()
		r.state = StateIdle
	}()
	log := Logger()

	// BUILD
	r.state = StateBuild
	r.buf.Reset()
	var all batch.List
	if seqs != nil {
		all = batch.Collect(seqs)
	}
	list, err := batch.Flatten(r.buf, all, r.tint)
	if err != nil {
		reason := "invalid"
		if errors.Is(err, ErrCapacityOverflow) {
			reason = "capacity"
		}
		log.Warn("gputext: draw sequences skipped",
			"reason", reason,
			"skipped", len(all)-len(list),
			"err", err)
	}
	stats.Sequences = len(list)
	stats.Skipped = len(all) - len(list)
	stats.Vertices = r.buf.VertexCount()
	stats.Indices = r.buf.IndexCount()

	// STAGE
	r.state = StateStage
	if err := batch.StageBuffer(r.backend, r.layout, r.buf); err != nil {
		return stats, r.abandon(nil, "stage", err)
	}

	frame, err := r.backend.BeginFrame()
	if err != nil {
		return stats, r.abandon(nil, "begin frame", err)
	}

	// UPLOAD
	r.state = StateUpload
	if err := batch.Upload(frame, r.layout, r.buf); err != nil {
		return stats, r.abandon(frame, "upload", err)
	}

	// DRAW
	r.state = StateDraw
	pass, ok, err := frame.BeginRenderPass(r.clear)
	if err != nil {
		return stats, r.abandon(frame, "begin render pass", err)
	}
	if ok {
		if err := batch.Dispatch(pass, list, u); err != nil {
			_ = pass.End()
			return stats, r.abandon(frame, "dispatch", err)
		}
		if err := pass.End(); err != nil {
			return stats, r.abandon(frame, "end render pass", err)
		}
		stats.Draws = len(list)
		stats.Presented = true
	} else {
		log.Debug("gputext: no target this frame")
	}

	// PRESENT
	r.state = StatePresent
	if err := frame.Submit(); err != nil {
		return stats, r.abandon(frame, "submit", err)
	}
	r.frames++

	log.Debug("gputext: frame",
		"n", r.frames,
		"sequences", stats.Sequences,
		"vertices", stats.Vertices,
		"indices", stats.Indices,
		"draws", stats.Draws)
	return stats, nil
}

// abandon discards frame, if any, and wraps err with ErrRuntimeCall.
func (r *Renderer) abandon(frame batch.Frame, op string, err error) error {
	if frame != nil {
		frame.Discard()
	}
	err = fmt.Errorf("%w: %s: %w", ErrRuntimeCall, op, err)
	Logger().Warn("gputext: frame abandoned", "state", r.state.String(), "err", err)
	return err
}
