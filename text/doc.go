// Package text lays out strings into glyph quads for the GPU.
//
// A [Font] is parsed once from a TrueType/OpenType file. An [Engine] owns
// the glyph atlases: glyphs are rasterized on first use (as coverage masks,
// or as signed distance fields when the font has SDF enabled) and packed
// into 1024x1024 pages with a shelf allocator. A [Text] is a string bound to
// a font and an engine; it is shaped with HarfBuzz, split into bidi runs and
// aligned line by line.
//
// The layout result is exposed as a sequence of [batch.DrawSequence], one
// per atlas page in order of first use. Positions are in pixels with y
// pointing up: the first line's top edge is at y = 0 and the text extends
// into negative y. Indices are local to each sequence.
//
// Example:
//
//	f, err := text.OpenFont("Inter-VariableFont.ttf", 50)
//	if err != nil {
//	    return err
//	}
//	engine := text.NewEngine()
//	t := engine.CreateText(f, "hello\nworld")
//	w, h, err := t.Size()
//	for seq := range t.DrawSequences() {
//	    // seq.Atlas names engine.Page(...)
//	}
package text
