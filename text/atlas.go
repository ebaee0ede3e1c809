package text

import (
	"image"

	"github.com/gogpu/gputext/batch"
	"golang.org/x/image/draw"
)

// DefaultAtlasSize is the width and height of an atlas page in pixels.
const DefaultAtlasSize = 1024

// atlasPadding separates glyphs inside a page so that linear filtering
// never samples a neighbor.
const atlasPadding = 1

// AtlasPage is one glyph atlas texture. The GPU side keeps a texture per
// page and re-uploads it whenever Dirty reports true.
type AtlasPage struct {
	id    batch.AtlasID
	img   *image.Alpha
	alloc *shelfAllocator
	dirty bool
}

func newAtlasPage(id batch.AtlasID, size int) *AtlasPage {
	return &AtlasPage{
		id:    id,
		img:   image.NewAlpha(image.Rect(0, 0, size, size)),
		alloc: newShelfAllocator(size, size, atlasPadding),
	}
}

// ID returns the identifier used in draw sequences that sample this page.
func (p *AtlasPage) ID() batch.AtlasID { return p.id }

// Image returns the page pixels, one coverage or distance byte per texel.
func (p *AtlasPage) Image() *image.Alpha { return p.img }

// Size returns the page width and height.
func (p *AtlasPage) Size() int { return p.img.Rect.Dx() }

// Dirty reports whether glyphs were added since the last MarkClean.
func (p *AtlasPage) Dirty() bool { return p.dirty }

// MarkClean records that the page has been uploaded.
func (p *AtlasPage) MarkClean() { p.dirty = false }

// Utilization returns the fraction of the page covered by glyphs.
func (p *AtlasPage) Utilization() float64 { return p.alloc.utilization() }

// place copies mask into the page and returns where it landed.
func (p *AtlasPage) place(mask *image.Alpha) (image.Rectangle, bool) {
	w, h := mask.Rect.Dx(), mask.Rect.Dy()
	x, y, ok := p.alloc.allocate(w, h)
	if !ok {
		return image.Rectangle{}, false
	}
	r := image.Rect(x, y, x+w, y+h)
	draw.Draw(p.img, r, mask, mask.Rect.Min, draw.Src)
	p.dirty = true
	return r, true
}

func (p *AtlasPage) reset() {
	clear(p.img.Pix)
	p.alloc.reset()
	p.dirty = true
}
