package text

import (
	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/text/unicode/bidi"
)

// shapedGlyph is a glyph positioned on a line. X is the pen position plus
// the shaper's offset; Y is the offset from the baseline, y pointing down.
type shapedGlyph struct {
	gid sfnt.GlyphIndex
	x   float64
	y   float64
}

// directionalRun is a rune range [start, end) of one bidi direction.
type directionalRun struct {
	start, end int
	rtl        bool
}

// bidiRuns splits a line into directional runs in visual order. A line the
// bidi algorithm rejects is treated as one left-to-right run.
func bidiRuns(line string, n int) []directionalRun {
	whole := []directionalRun{{start: 0, end: n}}

	p := bidi.Paragraph{}
	if _, err := p.SetString(line, bidi.DefaultDirection(bidi.Neutral)); err != nil {
		return whole
	}
	ordering, err := p.Order()
	if err != nil || ordering.NumRuns() == 0 {
		return whole
	}

	// run.Pos() returns rune indices, end inclusive.
	runs := make([]directionalRun, 0, ordering.NumRuns())
	for i := range ordering.NumRuns() {
		run := ordering.Run(i)
		start, end := run.Pos()
		if start > end || end >= n {
			return whole
		}
		runs = append(runs, directionalRun{
			start: start,
			end:   end + 1,
			rtl:   run.Direction() == bidi.RightToLeft,
		})
	}
	return runs
}

// shapeLine shapes one line of text with HarfBuzz and returns its glyphs
// left to right together with the line's advance width.
func (e *Engine) shapeLine(f *Font, line string) ([]shapedGlyph, float64) {
	if line == "" {
		return nil, 0
	}
	runes := []rune(line)

	var glyphs []shapedGlyph
	var pen float64
	for _, run := range bidiRuns(line, len(runes)) {
		dir := di.DirectionLTR
		if run.rtl {
			dir = di.DirectionRTL
		}
		input := shaping.Input{
			Text:      runes,
			RunStart:  run.start,
			RunEnd:    run.end,
			Direction: dir,
			Face:      f.face,
			Size:      f.ppem,
			Script:    detectScript(runes[run.start:run.end]),
			Language:  language.NewLanguage("en"),
		}
		output := e.shaper.Shape(input)
		for _, g := range output.Glyphs {
			glyphs = append(glyphs, shapedGlyph{
				gid: sfnt.GlyphIndex(g.GlyphID), //nolint:gosec // TrueType glyph IDs are 16-bit
				x:   pen + fixedToFloat(g.XOffset),
				y:   -fixedToFloat(g.YOffset),
			})
			pen += fixedToFloat(g.Advance)
		}
	}
	return glyphs, pen
}

// detectScript returns the script of the first non-space rune.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}
