package text

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/go-text/typesetting/font"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// WrapAlignment positions the lines of a multi-line text relative to the
// widest line.
type WrapAlignment int

// Wrap alignments.
const (
	AlignLeft WrapAlignment = iota
	AlignCenter
	AlignRight
)

// String returns "left", "center" or "right".
func (a WrapAlignment) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "left"
	}
}

// UnmarshalText parses "left", "center" or "right", case-insensitively.
func (a *WrapAlignment) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "left", "":
		*a = AlignLeft
	case "center", "centre":
		*a = AlignCenter
	case "right":
		*a = AlignRight
	default:
		return fmt.Errorf("text: unknown wrap alignment %q", b)
	}
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (a WrapAlignment) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// FontOption configures a Font.
type FontOption func(*Font)

// WithSDF renders the font's glyphs as signed distance fields.
func WithSDF(enabled bool) FontOption {
	return func(f *Font) { f.sdf = enabled }
}

// WithWrapAlignment sets the alignment of multi-line text.
func WithWrapAlignment(a WrapAlignment) FontOption {
	return func(f *Font) { f.align = a }
}

// Font is a parsed font at one pixel size.
//
// Outlines and metrics come from golang.org/x/image/font/sfnt; shaping uses
// the same data parsed by go-text/typesetting. A Font is not safe for
// concurrent use.
type Font struct {
	path string
	name string
	size float64
	ppem fixed.Int26_6

	outlines *opentype.Font
	face     *font.Face
	buf      sfnt.Buffer

	ascent     float64
	descent    float64
	lineHeight float64

	sdf   bool
	align WrapAlignment

	// gen changes whenever a setting that affects layout changes.
	gen uint64
}

// OpenFont loads the font file at path at the given pixel size.
// Any failure is reported as a *FontLoadError.
func OpenFont(path string, size float64, opts ...FontOption) (*Font, error) {
	// #nosec G304 -- font path comes from configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FontLoadError{Path: path, Err: err}
	}
	f, err := NewFont(data, size, opts...)
	if err != nil {
		var fle *FontLoadError
		if errors.As(err, &fle) {
			fle.Path = path
			return nil, fle
		}
		return nil, &FontLoadError{Path: path, Err: err}
	}
	f.path = path
	return f, nil
}

// NewFont parses TrueType or OpenType data at the given pixel size. The
// data must not be modified afterwards.
func NewFont(data []byte, size float64, opts ...FontOption) (*Font, error) {
	if len(data) == 0 {
		return nil, &FontLoadError{Err: ErrEmptyFontData}
	}
	if !(size > 0) || math.IsInf(size, 0) {
		return nil, &FontLoadError{Err: fmt.Errorf("%w: %v", ErrInvalidSize, size)}
	}

	outlines, err := opentype.Parse(data)
	if err != nil {
		return nil, &FontLoadError{Err: fmt.Errorf("parse outlines: %w", err)}
	}
	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, &FontLoadError{Err: fmt.Errorf("parse for shaping: %w", err)}
	}

	f := &Font{
		size:     size,
		ppem:     floatToFixed(size),
		outlines: outlines,
		face:     face,
		align:    AlignLeft,
	}
	for _, opt := range opts {
		opt(f)
	}

	if name, err := outlines.Name(&f.buf, sfnt.NameIDFamily); err == nil {
		f.name = name
	}
	m, err := outlines.Metrics(&f.buf, f.ppem, xfont.HintingNone)
	if err != nil {
		return nil, &FontLoadError{Err: fmt.Errorf("metrics: %w", err)}
	}
	f.ascent = fixedToFloat(m.Ascent)
	f.descent = fixedToFloat(m.Descent)
	f.lineHeight = fixedToFloat(m.Height)
	if f.lineHeight < f.ascent+f.descent {
		f.lineHeight = f.ascent + f.descent
	}
	return f, nil
}

// Name returns the font family name, or "" if the font has none.
func (f *Font) Name() string { return f.name }

// Path returns the file the font was loaded from, or "" for NewFont.
func (f *Font) Path() string { return f.path }

// Size returns the pixel size.
func (f *Font) Size() float64 { return f.size }

// Ascent returns the distance from the baseline to the top of a line.
func (f *Font) Ascent() float64 { return f.ascent }

// Descent returns the distance from the baseline to the bottom of a line.
func (f *Font) Descent() float64 { return f.descent }

// LineHeight returns the distance between consecutive baselines.
func (f *Font) LineHeight() float64 { return f.lineHeight }

// SDF reports whether glyphs are rendered as signed distance fields.
func (f *Font) SDF() bool { return f.sdf }

// SetSDF switches between coverage and signed-distance-field glyphs. Texts
// using the font are laid out again on their next use.
func (f *Font) SetSDF(enabled bool) {
	if f.sdf != enabled {
		f.sdf = enabled
		f.gen++
	}
}

// WrapAlignment returns the alignment of multi-line text.
func (f *Font) WrapAlignment() WrapAlignment { return f.align }

// SetWrapAlignment changes the alignment of multi-line text.
func (f *Font) SetWrapAlignment(a WrapAlignment) {
	if f.align != a {
		f.align = a
		f.gen++
	}
}

// floatToFixed converts a float64 to fixed.Int26_6.
func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}

// fixedToFloat converts a fixed.Int26_6 value to float64.
func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64.0
}
