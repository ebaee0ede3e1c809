package text

import (
	"image"
	"math"
)

// SDFSpread is the distance in pixels covered by an SDF glyph's ramp on
// each side of the outline. SDF glyphs are padded by this amount.
const SDFSpread = 8

// distanceField converts a coverage mask into a signed distance field of
// the same size. A value of 128 lies on the outline, larger values are
// inside and the ramp reaches 0 and 255 at spread pixels from the edge.
func distanceField(mask *image.Alpha, spread int) *image.Alpha {
	b := mask.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewAlpha(image.Rect(0, 0, w, h))

	inside := func(x, y int) bool {
		return mask.Pix[y*mask.Stride+x] >= 0x80
	}

	limit := float64(spread)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			in := inside(x, y)
			best := limit + 0.5
			for dy := -spread; dy <= spread; dy++ {
				ny := y + dy
				if ny < 0 || ny >= h {
					continue
				}
				for dx := -spread; dx <= spread; dx++ {
					nx := x + dx
					if nx < 0 || nx >= w || inside(nx, ny) == in {
						continue
					}
					if d := math.Hypot(float64(dx), float64(dy)); d < best {
						best = d
					}
				}
			}
			// Distance to the edge is half a pixel less than to the
			// nearest opposite pixel center.
			d := best - 0.5
			if !in {
				d = -d
			}
			v := 0.5 + d/(2*limit)
			out.Pix[y*out.Stride+x] = uint8(math.Round(clamp01(v) * 255))
		}
	}
	return out
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}
