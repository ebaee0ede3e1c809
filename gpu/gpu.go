// Package gpu opens the glyph renderer backend on a device shared by a
// host application such as gogpu.
//
// Usage:
//
//	ctx, err := gpu.Open(app.GPUContextProvider(), gpu.Config{})
//	if err != nil {
//		return err
//	}
//	defer ctx.Destroy()
//	r, err := gputext.NewRenderer(ctx)
package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	gpuimpl "github.com/gogpu/gputext/internal/gpu"
)

// Config is the backend configuration. The zero value selects the default
// limits, the provider's surface format and WGSL shaders.
type Config = gpuimpl.Config

// Context is the backend. It implements batch.Backend.
type Context = gpuimpl.Context

// AtlasSource is a host-side glyph atlas page.
type AtlasSource = gpuimpl.AtlasSource

// ErrNoHAL is returned when the provider does not expose HAL objects.
var ErrNoHAL = errors.New("gpu: provider does not expose HAL types")

// Open creates a Context on the device of provider. The provider must
// implement HalDevice() any and HalQueue() any returning hal.Device and
// hal.Queue. If cfg.TargetFormat is unset and the provider reports a
// surface format, the pipeline targets that format.
func Open(provider any, cfg Config) (*Context, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok || hp == nil {
		return nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHAL)
	}

	if cfg.TargetFormat == gputypes.TextureFormatUndefined {
		if fp, ok := provider.(interface{ SurfaceFormat() gputypes.TextureFormat }); ok {
			cfg.TargetFormat = fp.SurfaceFormat()
		}
	}
	return gpuimpl.NewContext(device, queue, cfg)
}
