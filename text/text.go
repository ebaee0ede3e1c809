package text

import (
	"iter"

	"github.com/gogpu/gputext/batch"
)

// Text is a string laid out with one font. It is re-laid out lazily after
// SetString, after a font setting changes or after the engine is cleared.
type Text struct {
	engine *Engine
	font   *Font
	str    string

	valid     bool
	fontGen   uint64
	engineGen uint64

	seqs   batch.List
	width  int
	height int
	err    error
}

// SetString replaces the text content.
func (t *Text) SetString(s string) {
	if s == t.str {
		return
	}
	t.str = s
	t.valid = false
}

// String returns the text content.
func (t *Text) String() string { return t.str }

// Font returns the font the text is laid out with.
func (t *Text) Font() *Font { return t.font }

// Size returns the laid-out size in pixels: the widest line and the total
// line height. The error wraps ErrLayout.
func (t *Text) Size() (w, h int, err error) {
	t.update()
	if t.err != nil {
		return 0, 0, t.err
	}
	return t.width, t.height, nil
}

// DrawSequences yields one draw sequence per atlas page used by the text,
// in order of first use. The sequence may be traversed any number of times
// and yields nothing when layout failed; call Size to see the error.
//
// The yielded sequences share storage with the Text and must not be
// modified.
func (t *Text) DrawSequences() iter.Seq[batch.DrawSequence] {
	t.update()
	seqs := t.seqs
	return func(yield func(batch.DrawSequence) bool) {
		for _, s := range seqs {
			if !yield(s) {
				return
			}
		}
	}
}

// Err returns the error of the last layout, if any.
func (t *Text) Err() error {
	t.update()
	return t.err
}

func (t *Text) update() {
	if t.valid && t.fontGen == t.font.gen && t.engineGen == t.engine.gen {
		return
	}
	t.seqs, t.width, t.height, t.err = t.engine.layout(t.font, t.str)
	t.valid = true
	t.fontGen = t.font.gen
	t.engineGen = t.engine.gen
}
