package gpu

import (
	"fmt"
	"image"

	"github.com/gogpu/gputext/batch"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// AtlasSource is a glyph atlas page kept on the host. text.AtlasPage
// implements it. Sources that also have a Utilization() float64 method get
// it logged on upload.
type AtlasSource interface {
	ID() batch.AtlasID
	Image() *image.Alpha
	Dirty() bool
	MarkClean()
}

// atlasTexture is the GPU copy of one atlas page with the bind group that
// exposes it to the fragment shader.
type atlasTexture struct {
	texture hal.Texture
	view    hal.TextureView
	group   hal.BindGroup
	size    uint32
	rgba    []byte
}

func (a *atlasTexture) destroy(device hal.Device) {
	if a.group != nil {
		device.DestroyBindGroup(a.group)
		a.group = nil
	}
	if a.view != nil {
		device.DestroyTextureView(a.view)
		a.view = nil
	}
	if a.texture != nil {
		device.DestroyTexture(a.texture)
		a.texture = nil
	}
}

// SyncAtlases uploads every dirty page, creating textures for pages seen
// for the first time, and marks them clean. Pages must be square.
func (c *Context) SyncAtlases(pages ...AtlasSource) error {
	if c.destroyed {
		return ErrDestroyed
	}
	for _, p := range pages {
		a, ok := c.atlases[p.ID()]
		if ok && !p.Dirty() {
			continue
		}
		img := p.Image()
		size := uint32(img.Rect.Dx())
		if uint32(img.Rect.Dy()) != size || size == 0 {
			return fmt.Errorf("gpu: atlas %d is %v, want a non-empty square", p.ID(), img.Rect.Size())
		}
		if !ok || a.size != size {
			if a != nil {
				a.destroy(c.device)
			}
			var err error
			a, err = c.createAtlas(p.ID(), size)
			if err != nil {
				return err
			}
			c.atlases[p.ID()] = a
		}
		c.uploadAtlas(a, img)
		p.MarkClean()
		if u, ok := p.(interface{ Utilization() float64 }); ok {
			c.log().Debug("gpu: atlas uploaded", "atlas", p.ID(), "utilization", u.Utilization())
		}
	}
	return nil
}

func (c *Context) createAtlas(id batch.AtlasID, size uint32) (*atlasTexture, error) {
	a := &atlasTexture{size: size}
	var err error
	a.texture, err = c.device.CreateTexture(&hal.TextureDescriptor{
		Label:         fmt.Sprintf("glyph_atlas_%d", id),
		Size:          hal.Extent3D{Width: size, Height: size, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create atlas texture %d: %w", id, err)
	}
	a.view, err = c.device.CreateTextureView(a.texture, &hal.TextureViewDescriptor{
		Label:         fmt.Sprintf("glyph_atlas_view_%d", id),
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		a.destroy(c.device)
		return nil, fmt.Errorf("create atlas texture view %d: %w", id, err)
	}
	a.group, err = c.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  fmt.Sprintf("glyph_atlas_bind_%d", id),
		Layout: c.pipe.atlasLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.TextureViewBinding{TextureView: a.view.NativeHandle()}},
			{Binding: 1, Resource: gputypes.SamplerBinding{Sampler: c.pipe.sampler.NativeHandle()}},
		},
	})
	if err != nil {
		a.destroy(c.device)
		return nil, fmt.Errorf("create atlas bind group %d: %w", id, err)
	}
	c.log().Debug("gpu: atlas texture created", "atlas", id, "size", size)
	return a, nil
}

// uploadAtlas writes img as white texels carrying the page's alpha.
func (c *Context) uploadAtlas(a *atlasTexture, img *image.Alpha) {
	n := int(a.size)
	if len(a.rgba) != n*n*4 {
		a.rgba = make([]byte, n*n*4)
	}
	for y := range n {
		row := img.Pix[y*img.Stride : y*img.Stride+n]
		dst := a.rgba[y*n*4 : (y+1)*n*4]
		for x, v := range row {
			dst[x*4+0] = 0xff
			dst[x*4+1] = 0xff
			dst[x*4+2] = 0xff
			dst[x*4+3] = v
		}
	}
	c.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  a.texture,
			MipLevel: 0,
		},
		a.rgba,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  a.size * 4,
			RowsPerImage: a.size,
		},
		&hal.Extent3D{Width: a.size, Height: a.size, DepthOrArrayLayers: 1},
	)
}

// AtlasCount returns the number of atlas textures on the GPU.
func (c *Context) AtlasCount() int { return len(c.atlases) }
