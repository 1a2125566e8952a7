// Package typography computes vertical rhythm and modular font scale values
// for the site theme. Every value is derived from a fixed base, so the
// functions are pure and safe to call from any view.
package typography

import (
	"math"
	"strconv"
)

// Theme describes the typographic base the site is laid out on.
type Theme struct {
	BaseFontSize   float64 // root font size in px
	BaseLineHeight float64 // unitless, multiple of BaseFontSize
	ScaleRatio     float64 // modular scale ratio
	MinLinePadding float64 // px kept above and below text when snapping line heights
}

// Wordpress2016 is the theme the site uses.
var Wordpress2016 = Theme{
	BaseFontSize:   16,
	BaseLineHeight: 1.75,
	ScaleRatio:     2.5,
	MinLinePadding: 2,
}

// FontScale is a font size with the line height that keeps it on the rhythm.
type FontScale struct {
	FontSize   string
	LineHeight string
}

func (t Theme) lineHeightPx() float64 {
	return t.BaseFontSize * t.BaseLineHeight
}

// Rhythm returns the height of the given number of baseline lines as a rem length.
func (t Theme) Rhythm(lines float64) string {
	return rem(lines * t.lineHeightPx() / t.BaseFontSize)
}

// Scale returns the font size n steps up (or down, for negative n) the modular
// scale, with a line height rounded up to the nearest half rhythm line.
func (t Theme) Scale(n float64) FontScale {
	sizePx := t.BaseFontSize * math.Pow(t.ScaleRatio, n)
	lh := t.lineHeightPx()
	lines := math.Ceil(2*sizePx/lh) / 2
	if lines*lh-sizePx < 2*t.MinLinePadding {
		lines += 0.5
	}
	return FontScale{
		FontSize:   rem(sizePx / t.BaseFontSize),
		LineHeight: t.Rhythm(lines),
	}
}

// Rhythm is Wordpress2016.Rhythm.
func Rhythm(lines float64) string {
	return Wordpress2016.Rhythm(lines)
}

// Scale is Wordpress2016.Scale.
func Scale(n float64) FontScale {
	return Wordpress2016.Scale(n)
}

func rem(v float64) string {
	v = math.Round(v*1e4) / 1e4
	return strconv.FormatFloat(v, 'f', -1, 64) + "rem"
}
