// Package gputext renders shaped text as textured quads on the GPU.
//
// # Overview
//
// Text is laid out by package text into draw sequences: runs of quads that
// share one glyph atlas page. Each frame a Renderer walks five states:
//
//	IDLE -> BUILD -> STAGE -> UPLOAD -> DRAW -> PRESENT -> IDLE
//
//   - BUILD flattens the sequences into one geometry buffer (package batch),
//     skipping any sequence that would overflow it.
//   - STAGE writes the vertices and indices into the staging buffer.
//   - UPLOAD records the copies from the staging buffer into the device
//     vertex and index buffers.
//   - DRAW records one indexed draw per sequence, with the sequence's atlas
//     bound and its first index and base vertex offset by the sequences
//     before it.
//   - PRESENT submits the frame.
//
// Upload and draw are recorded into the same command stream in that order.
//
// # Quick Start
//
//	ctx, err := gpu.Open(app.GPUContextProvider(), gpu.Config{})
//	if err != nil {
//		return err
//	}
//	r, err := gputext.NewRenderer(ctx, gputext.WithTint(batch.Yellow))
//	if err != nil {
//		return err
//	}
//
//	engine := text.NewEngine()
//	t := engine.CreateText(font, "hello")
//
//	// per frame
//	ctx.SyncAtlases(pages...)
//	ctx.SetTarget(view)
//	stats, err := r.Frame(t.DrawSequences(), &uniforms)
//
// # Errors
//
// ErrInitialization is fatal. ErrRuntimeCall abandons the current frame
// only. Sequences that do not fit are reported with ErrCapacityOverflow in
// the log and left out of the frame.
//
// # Logging
//
// Nothing is logged until SetLogger is called.
package gputext
