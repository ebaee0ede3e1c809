// Package batch collects glyph draw sequences into a fixed-capacity
// vertex/index buffer and turns them into GPU work.
//
// A frame moves through four steps, each implemented here independently of
// any concrete GPU API:
//
//  1. [Flatten] appends every [DrawSequence] into a [GeometryBuffer],
//     applying one tint color and keeping indices local to their sequence.
//  2. [StagingLayout.Stage] writes the buffer into a transfer region: the
//     vertices at offset 0 and the indices at a fixed sub-offset.
//  3. [Upload] records two buffer-to-buffer copies into a [CommandStream].
//  4. [Dispatch] binds state once and issues one indexed draw per sequence,
//     using the running index and vertex counts as firstIndex and baseVertex.
//
// The GPU side is reached only through the [CommandStream], [CopyPass] and
// [RenderPass] interfaces, so the bookkeeping can be tested with a recording
// fake.
package batch
