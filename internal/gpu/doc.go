// Package gpu is the wgpu/hal backend of the glyph renderer.
//
// A Context owns every GPU object the renderer needs for its lifetime:
//
//   - the glyph render pipeline (vertex + fragment shader, two bind group
//     layouts, alpha blending, triangle list, no culling)
//   - the device vertex and index buffers, sized for batch.Limits
//   - the staging (transfer) buffer laid out by batch.StagingLayout
//   - the uniform buffer and its bind group (group 0)
//   - one texture, view and bind group (group 1) per glyph atlas page
//   - a linear, clamp-to-edge sampler
//
// Context implements batch.Backend. Each frame is recorded into one command
// encoder: the copy of the staging regions into the device buffers first,
// then the render pass into the surface view set with SetTarget. Submission
// signals a fence that the next MapStaging waits on before the staging
// memory is overwritten.
//
// Objects are destroyed in reverse creation order by Destroy.
package gpu
