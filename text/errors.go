package text

import "errors"

// Sentinel errors for text package.
var (
	// ErrEmptyFontData is returned when font data is empty.
	ErrEmptyFontData = errors.New("text: empty font data")

	// ErrInvalidSize is returned for a font size that is not positive.
	ErrInvalidSize = errors.New("text: font size must be positive")

	// ErrLayout is returned when a string cannot be laid out.
	ErrLayout = errors.New("text: layout failed")

	// ErrAtlasFull is returned when a glyph is larger than an atlas page.
	ErrAtlasFull = errors.New("text: glyph does not fit in an atlas page")
)

// FontLoadError is returned when a font file cannot be read or parsed.
type FontLoadError struct {
	Path string
	Err  error
}

func (e *FontLoadError) Error() string {
	if e.Path == "" {
		return "text: load font: " + e.Err.Error()
	}
	return "text: load font " + e.Path + ": " + e.Err.Error()
}

func (e *FontLoadError) Unwrap() error { return e.Err }
