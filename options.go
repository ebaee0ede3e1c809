package gputext

import "github.com/gogpu/gputext/batch"

// RendererOption configures a Renderer during creation.
//
// Example:
//
//	r, err := gputext.NewRenderer(ctx,
//	    gputext.WithTint(batch.Yellow),
//	    gputext.WithClearColor(batch.Color{R: 0.3, G: 0.4, B: 0.5, A: 1}))
type RendererOption func(*rendererOptions)

type rendererOptions struct {
	limits batch.Limits
	tint   batch.Color
	clear  batch.Color
}

func defaultOptions() rendererOptions {
	return rendererOptions{
		limits: batch.DefaultLimits(),
		tint:   batch.White,
		clear:  batch.Color{R: 0, G: 0, B: 0, A: 1},
	}
}

// WithLimits sets the geometry buffer capacity. It must match the capacity
// of the backend's buffers; a backend that reports its own limits wins.
func WithLimits(l batch.Limits) RendererOption {
	return func(o *rendererOptions) {
		o.limits = l
	}
}

// WithTint sets the color written into every vertex.
func WithTint(c batch.Color) RendererOption {
	return func(o *rendererOptions) {
		o.tint = c
	}
}

// WithClearColor sets the color the render pass clears the target to.
func WithClearColor(c batch.Color) RendererOption {
	return func(o *rendererOptions) {
		o.clear = c
	}
}
