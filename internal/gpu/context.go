package gpu

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gogpu/gputext/batch"
	"github.com/gogpu/gputext/shaders"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Errors returned by Context.
var (
	// ErrNilDevice is returned when NewContext is given no device or queue.
	ErrNilDevice = errors.New("gpu: nil device or queue")

	// ErrDestroyed is returned by any operation on a destroyed Context.
	ErrDestroyed = errors.New("gpu: context destroyed")

	// ErrUnknownAtlas is returned when a draw binds an atlas that was never
	// uploaded with SyncAtlases.
	ErrUnknownAtlas = errors.New("gpu: unknown atlas")

	// ErrFenceTimeout is returned when the previous frame did not finish
	// within Config.FenceTimeout.
	ErrFenceTimeout = errors.New("gpu: timed out waiting for previous frame")

	// ErrFrameInProgress is returned by BeginFrame while another frame has
	// not been submitted or discarded.
	ErrFrameInProgress = errors.New("gpu: frame already in progress")
)

// DefaultFenceTimeout bounds the wait for the previous frame.
const DefaultFenceTimeout = 5 * time.Second

// Bind group indices used by the glyph shaders.
const (
	uniformGroup = 0
	atlasGroup   = 1
)

// Config describes the resources a Context creates.
type Config struct {
	// Limits sizes the vertex, index and staging buffers.
	Limits batch.Limits

	// TargetFormat is the format of the views passed to SetTarget.
	TargetFormat gputypes.TextureFormat

	// ShaderFormat selects WGSL or SPIR-V shader modules.
	ShaderFormat shaders.Format

	// SDF selects the signed-distance-field fragment shader.
	SDF bool

	// FenceTimeout bounds the wait for the previous frame. Zero means
	// DefaultFenceTimeout.
	FenceTimeout time.Duration

	// Logger receives the Context's records. Nil discards them.
	Logger *slog.Logger
}

func (c *Config) setDefaults() {
	if c.Limits.MaxVertices <= 0 || c.Limits.MaxIndices <= 0 {
		c.Limits = batch.DefaultLimits()
	}
	if c.TargetFormat == gputypes.TextureFormatUndefined {
		c.TargetFormat = gputypes.TextureFormatBGRA8Unorm
	}
	if c.FenceTimeout <= 0 {
		c.FenceTimeout = DefaultFenceTimeout
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
}

// Context owns the GPU objects of the glyph renderer. It is not safe for
// concurrent use.
type Context struct {
	device hal.Device
	queue  hal.Queue
	cfg    Config
	layout batch.StagingLayout

	pipe glyphPipeline

	vertexBuf  hal.Buffer
	indexBuf   hal.Buffer
	stagingBuf hal.Buffer
	uniformBuf hal.Buffer
	uniforms   hal.BindGroup

	// staging is the host copy of stagingBuf handed out by MapStaging.
	staging []byte

	atlases map[batch.AtlasID]*atlasTexture

	// pending is the fence of the last submitted frame, nil once waited on.
	pending    hal.Fence
	pendingCmd hal.CommandBuffer
	frame      *frame
	target     hal.TextureView

	destroyed bool
}

// NewContext creates the pipeline and buffers on device. Any failure
// destroys what was already created and is returned wrapped.
func NewContext(device hal.Device, queue hal.Queue, cfg Config) (*Context, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	cfg.setDefaults()

	c := &Context{
		device:  device,
		queue:   queue,
		cfg:     cfg,
		layout:  batch.NewStagingLayout(cfg.Limits),
		atlases: make(map[batch.AtlasID]*atlasTexture),
	}
	if err := c.pipe.create(device, cfg); err != nil {
		c.Destroy()
		return nil, err
	}
	if err := c.createBuffers(); err != nil {
		c.Destroy()
		return nil, err
	}

	c.log().Info("gpu: glyph renderer ready",
		"vertices", cfg.Limits.MaxVertices,
		"indices", cfg.Limits.MaxIndices,
		"staging_bytes", c.layout.Size(),
		"sdf", cfg.SDF,
		"shader_format", cfg.ShaderFormat.String(),
	)
	return c, nil
}

func (c *Context) createBuffers() error {
	var err error
	c.vertexBuf, err = c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "glyph_vertices",
		Size:  c.cfg.Limits.VertexBytes(),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create vertex buffer: %w", err)
	}
	c.indexBuf, err = c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "glyph_indices",
		Size:  c.cfg.Limits.IndexBytes(),
		Usage: gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create index buffer: %w", err)
	}
	c.stagingBuf, err = c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "glyph_staging",
		Size:  c.layout.Size(),
		Usage: gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create staging buffer: %w", err)
	}
	c.staging = make([]byte, c.layout.Size())

	c.uniformBuf, err = c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "glyph_uniforms",
		Size:  batch.UniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create uniform buffer: %w", err)
	}
	c.uniforms, err = c.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "glyph_uniforms_bind",
		Layout: c.pipe.uniformLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: c.uniformBuf.NativeHandle(),
				Offset: 0,
				Size:   batch.UniformSize,
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("create uniform bind group: %w", err)
	}
	return nil
}

// SetLogger replaces the Context's logger. Nil discards records.
func (c *Context) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	c.cfg.Logger = l
}

func (c *Context) log() *slog.Logger { return c.cfg.Logger }

// Limits returns the buffer capacity.
func (c *Context) Limits() batch.Limits { return c.cfg.Limits }

// StagingLayout returns the layout of the staging buffer.
func (c *Context) StagingLayout() batch.StagingLayout { return c.layout }

// SDF reports whether the SDF fragment shader is in use.
func (c *Context) SDF() bool { return c.cfg.SDF }

// SetTarget sets the view the next render pass draws into. A nil view
// makes the next frame skip its render pass. The caller keeps ownership of
// the view.
func (c *Context) SetTarget(view hal.TextureView) {
	c.target = view
}

// MapStaging waits for the previous frame to finish and returns the host
// copy of the staging buffer.
func (c *Context) MapStaging() ([]byte, error) {
	if c.destroyed {
		return nil, ErrDestroyed
	}
	if err := c.waitPending(); err != nil {
		return nil, err
	}
	return c.staging, nil
}

// UnmapStaging writes the given regions of the host copy to the staging
// buffer. The writes are ordered before the next submission.
func (c *Context) UnmapStaging(written ...batch.Region) error {
	if c.destroyed {
		return ErrDestroyed
	}
	for _, r := range written {
		if r.Size == 0 {
			continue
		}
		if r.End() > uint64(len(c.staging)) {
			return fmt.Errorf("%w: region %d+%d", batch.ErrStagingBounds, r.Offset, r.Size)
		}
		c.queue.WriteBuffer(c.stagingBuf, r.Offset, c.staging[r.Offset:r.End()])
	}
	return nil
}

// waitPending blocks until the last submitted frame completes. The fence
// and its command buffer are released only once the wait succeeds; after a
// timeout or error the frame stays pending and the next call waits again.
func (c *Context) waitPending() error {
	if c.pending == nil {
		return nil
	}
	ok, err := c.device.Wait(c.pending, 1, c.cfg.FenceTimeout)
	if err != nil {
		return fmt.Errorf("wait for previous frame: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w after %v", ErrFenceTimeout, c.cfg.FenceTimeout)
	}
	c.device.DestroyFence(c.pending)
	if c.pendingCmd != nil {
		c.device.FreeCommandBuffer(c.pendingCmd)
	}
	c.pending, c.pendingCmd = nil, nil
	return nil
}

// Wait blocks until all submitted work is complete.
func (c *Context) Wait() error {
	if c.destroyed {
		return ErrDestroyed
	}
	return c.waitPending()
}

// Destroy waits for outstanding work and releases every GPU object in
// reverse creation order. It is safe to call more than once. When the last
// frame does not finish, nothing is released: the objects it uses are left
// to the device.
func (c *Context) Destroy() {
	if c.destroyed {
		return
	}
	c.destroyed = true

	if c.frame != nil {
		c.frame.Discard()
	}
	if err := c.waitPending(); err != nil {
		c.log().Warn("gpu: destroy without idle GPU, leaving objects to the device", "err", err)
		c.staging = nil
		c.target = nil
		return
	}

	for id, a := range c.atlases {
		a.destroy(c.device)
		delete(c.atlases, id)
	}
	if c.uniforms != nil {
		c.device.DestroyBindGroup(c.uniforms)
		c.uniforms = nil
	}
	for _, b := range []*hal.Buffer{&c.uniformBuf, &c.stagingBuf, &c.indexBuf, &c.vertexBuf} {
		if *b != nil {
			c.device.DestroyBuffer(*b)
			*b = nil
		}
	}
	c.staging = nil
	c.pipe.destroy(c.device)
	c.target = nil
}
