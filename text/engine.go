package text

import (
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font/sfnt"

	"github.com/gogpu/gputext/batch"
	"github.com/gogpu/gputext/internal/cache"
)

// DefaultLineCacheSize is the number of shaped lines an Engine keeps.
const DefaultLineCacheSize = 256

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithAtlasSize sets the width and height of atlas pages. Values below 64
// are ignored.
func WithAtlasSize(size int) EngineOption {
	return func(e *Engine) {
		if size >= 64 {
			e.pageSize = size
		}
	}
}

// WithLineCacheSize sets how many shaped lines are kept for reuse.
func WithLineCacheSize(n int) EngineOption {
	return func(e *Engine) {
		e.lineCacheSize = n
	}
}

// Engine owns the glyph atlases shared by every Text it creates.
// It is not safe for concurrent use.
type Engine struct {
	pageSize int
	pages    []*AtlasPage
	glyphs   map[glyphKey]glyphEntry
	shaper   shaping.HarfbuzzShaper

	lineCacheSize int
	lines         *cache.LRU[lineKey, shapedLine]

	// gen changes whenever cached glyph placements become invalid.
	gen uint64
}

type lineKey struct {
	font *Font
	line string
}

type shapedLine struct {
	glyphs []shapedGlyph
	width  float64
}

type glyphKey struct {
	font *Font
	gid  sfnt.GlyphIndex
	sdf  bool
}

// glyphEntry locates a rasterized glyph. Left and Top are the offset of
// the bitmap from the pen position, y pointing down.
type glyphEntry struct {
	page  int
	rect  image.Rectangle
	left  int
	top   int
	empty bool
}

// NewEngine creates an engine with no atlas pages.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		pageSize:      DefaultAtlasSize,
		glyphs:        make(map[glyphKey]glyphEntry),
		lineCacheSize: DefaultLineCacheSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.lines = cache.NewLRU[lineKey, shapedLine](e.lineCacheSize)
	return e
}

// CreateText binds s to f. The text is laid out lazily.
func (e *Engine) CreateText(f *Font, s string) *Text {
	return &Text{engine: e, font: f, str: s}
}

// Pages returns the atlas pages in creation order. Page i has ID i.
func (e *Engine) Pages() []*AtlasPage { return e.pages }

// Page returns the page with the given ID, or nil.
func (e *Engine) Page(id batch.AtlasID) *AtlasPage {
	if int(id) >= len(e.pages) {
		return nil
	}
	return e.pages[id]
}

// PageSize returns the width and height of atlas pages.
func (e *Engine) PageSize() int { return e.pageSize }

// Clear drops every cached glyph and empties the pages. Page IDs stay
// valid. Texts lay themselves out again on their next use.
func (e *Engine) Clear() {
	clear(e.glyphs)
	for _, p := range e.pages {
		p.reset()
	}
	e.gen++
}

// LineCacheStats returns the hit and miss counts of the shaped-line cache.
func (e *Engine) LineCacheStats() (hits, misses uint64) {
	st := e.lines.Stats()
	return st.Hits, st.Misses
}

// GlyphCount returns the number of cached glyphs, including empty ones.
func (e *Engine) GlyphCount() int { return len(e.glyphs) }

// glyph returns the atlas entry of gid, rasterizing it on first use.
func (e *Engine) glyph(f *Font, gid sfnt.GlyphIndex) (glyphEntry, error) {
	key := glyphKey{font: f, gid: gid, sdf: f.sdf}
	if g, ok := e.glyphs[key]; ok {
		return g, nil
	}

	pad := atlasPadding
	if f.sdf {
		pad = SDFSpread
	}
	bmp, err := f.rasterize(gid, pad)
	if err != nil {
		return glyphEntry{}, fmt.Errorf("rasterize glyph %d: %w", gid, err)
	}
	if bmp.empty() {
		g := glyphEntry{empty: true}
		e.glyphs[key] = g
		return g, nil
	}

	mask := bmp.Mask
	if f.sdf {
		mask = distanceField(mask, SDFSpread)
	}
	page, rect, err := e.place(mask)
	if err != nil {
		return glyphEntry{}, fmt.Errorf("glyph %d: %w", gid, err)
	}
	g := glyphEntry{page: page, rect: rect, left: bmp.Left, top: bmp.Top}
	e.glyphs[key] = g
	return g, nil
}

// place puts mask on the first page with room, adding a page if needed.
func (e *Engine) place(mask *image.Alpha) (int, image.Rectangle, error) {
	for i, p := range e.pages {
		if r, ok := p.place(mask); ok {
			return i, r, nil
		}
	}
	p := newAtlasPage(batch.AtlasID(len(e.pages)), e.pageSize)
	r, ok := p.place(mask)
	if !ok {
		return 0, image.Rectangle{}, fmt.Errorf("%w: %dx%d in %dx%d",
			ErrAtlasFull, mask.Rect.Dx(), mask.Rect.Dy(), e.pageSize, e.pageSize)
	}
	e.pages = append(e.pages, p)
	return len(e.pages) - 1, r, nil
}

// layout shapes s and produces one draw sequence per atlas page, in order
// of first use, along with the text's pixel size.
func (e *Engine) layout(f *Font, s string) (batch.List, int, int, error) {
	lines := strings.Split(s, "\n")
	shaped := make([][]shapedGlyph, len(lines))
	widths := make([]float64, len(lines))
	var maxWidth float64
	for i, line := range lines {
		sl := e.lines.GetOrCreate(lineKey{f, line}, func() shapedLine {
			g, w := e.shapeLine(f, line)
			return shapedLine{glyphs: g, width: w}
		})
		shaped[i], widths[i] = sl.glyphs, sl.width
		maxWidth = max(maxWidth, widths[i])
	}
	width := int(math.Ceil(maxWidth))
	height := int(math.Ceil(f.lineHeight * float64(len(lines))))

	var list batch.List
	seqOfPage := make(map[int]int)
	inv := 1 / float32(e.pageSize)
	for i, glyphs := range shaped {
		var dx float64
		switch f.align {
		case AlignCenter:
			dx = (maxWidth - widths[i]) / 2
		case AlignRight:
			dx = maxWidth - widths[i]
		}
		baseline := f.ascent + float64(i)*f.lineHeight

		for _, sg := range glyphs {
			g, err := e.glyph(f, sg.gid)
			if err != nil {
				return nil, 0, 0, fmt.Errorf("%w: %w", ErrLayout, err)
			}
			if g.empty {
				continue
			}

			k, ok := seqOfPage[g.page]
			if !ok {
				k = len(list)
				seqOfPage[g.page] = k
				list = append(list, batch.DrawSequence{Atlas: e.pages[g.page].id})
			}
			seq := &list[k]

			x0 := float32(math.Round(dx + sg.x + float64(g.left)))
			y0 := float32(math.Round(baseline + sg.y + float64(g.top)))
			x1 := x0 + float32(g.rect.Dx())
			y1 := y0 + float32(g.rect.Dy())
			u0, v0 := float32(g.rect.Min.X)*inv, float32(g.rect.Min.Y)*inv
			u1, v1 := float32(g.rect.Max.X)*inv, float32(g.rect.Max.Y)*inv

			base := uint32(len(seq.XY))
			seq.XY = append(seq.XY, [2]float32{x0, -y0}, [2]float32{x1, -y0}, [2]float32{x1, -y1}, [2]float32{x0, -y1})
			seq.UV = append(seq.UV, [2]float32{u0, v0}, [2]float32{u1, v0}, [2]float32{u1, v1}, [2]float32{u0, v1})
			seq.Indices = append(seq.Indices, base, base+1, base+2, base, base+2, base+3)
		}
	}
	return list, width, height, nil
}
