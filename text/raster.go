package text

import (
	"errors"
	"image"
	"math"

	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// glyphBitmap is a rasterized glyph. Left and Top are the offset of the
// bitmap's top-left corner from the pen position on the baseline, in pixels
// with y pointing down.
type glyphBitmap struct {
	Mask *image.Alpha
	Left int
	Top  int
}

// empty reports whether the glyph has no visible pixels (a space).
func (g glyphBitmap) empty() bool {
	return g.Mask == nil
}

// rasterize renders glyph gid as a coverage mask with pad transparent
// pixels on every side.
func (f *Font) rasterize(gid sfnt.GlyphIndex, pad int) (glyphBitmap, error) {
	segments, err := f.outlines.LoadGlyph(&f.buf, gid, f.ppem, nil)
	if err != nil {
		if errors.Is(err, sfnt.ErrNotFound) || errors.Is(err, sfnt.ErrColoredGlyph) {
			return glyphBitmap{}, nil
		}
		return glyphBitmap{}, err
	}
	if len(segments) == 0 {
		return glyphBitmap{}, nil
	}

	bounds := segmentBounds(segments)
	minX := int(math.Floor(fixedToFloat(bounds.Min.X))) - pad
	minY := int(math.Floor(fixedToFloat(bounds.Min.Y))) - pad
	maxX := int(math.Ceil(fixedToFloat(bounds.Max.X))) + pad
	maxY := int(math.Ceil(fixedToFloat(bounds.Max.Y))) + pad
	w, h := maxX-minX, maxY-minY
	if w <= 0 || h <= 0 {
		return glyphBitmap{}, nil
	}

	ox, oy := float32(-minX), float32(-minY)
	pt := func(p fixed.Point26_6) (float32, float32) {
		return float32(p.X)/64 + ox, float32(p.Y)/64 + oy
	}

	r := vector.NewRasterizer(w, h)
	for _, seg := range segments {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			r.MoveTo(pt(seg.Args[0]))
		case sfnt.SegmentOpLineTo:
			r.LineTo(pt(seg.Args[0]))
		case sfnt.SegmentOpQuadTo:
			bx, by := pt(seg.Args[0])
			cx, cy := pt(seg.Args[1])
			r.QuadTo(bx, by, cx, cy)
		case sfnt.SegmentOpCubeTo:
			bx, by := pt(seg.Args[0])
			cx, cy := pt(seg.Args[1])
			dx, dy := pt(seg.Args[2])
			r.CubeTo(bx, by, cx, cy, dx, dy)
		}
	}
	r.ClosePath()

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	r.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	return glyphBitmap{Mask: mask, Left: minX, Top: minY}, nil
}

// segmentBounds returns the control-point bounding box of an outline. It
// contains the outline because quadratic and cubic curves stay inside the
// hull of their control points.
func segmentBounds(segments sfnt.Segments) fixed.Rectangle26_6 {
	first := true
	var b fixed.Rectangle26_6
	for _, seg := range segments {
		n := 1
		switch seg.Op {
		case sfnt.SegmentOpQuadTo:
			n = 2
		case sfnt.SegmentOpCubeTo:
			n = 3
		}
		for _, p := range seg.Args[:n] {
			if first {
				b = fixed.Rectangle26_6{Min: p, Max: p}
				first = false
				continue
			}
			b.Min.X = min(b.Min.X, p.X)
			b.Min.Y = min(b.Min.Y, p.Y)
			b.Max.X = max(b.Max.X, p.X)
			b.Max.Y = max(b.Max.Y, p.Y)
		}
	}
	return b
}
