// Package render draws the report charts with gonum/plot and writes them as
// PNG files.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/vg"
)

// ErrNoData indicates a chart with nothing to draw.
var ErrNoData = errors.New("nothing to draw")

var sans = font.Font{Typeface: "Liberation", Variant: "Sans"}

func face(size float64) font.Font {
	return font.From(sans, vg.Points(size))
}

func inches(v float64) vg.Length {
	return vg.Length(v) * vg.Inch
}

// applyFonts sets every text element of p to the sans face.
func applyFonts(p *plot.Plot, size, titleSize float64) {
	p.Title.TextStyle.Font = face(titleSize)
	p.X.Label.TextStyle.Font = face(size)
	p.Y.Label.TextStyle.Font = face(size)
	p.X.Tick.Label.Font = face(size)
	p.Y.Tick.Label.Font = face(size)
	p.Legend.TextStyle.Font = face(size)
}

// ParseHexColor parses "#rrggbb" or "#rgb".
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// luminance returns the relative luminance of c in [0, 1].
func luminance(c color.Color) float64 {
	r, g, b, _ := c.RGBA()
	return (0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b)) / 0xffff
}

// textColorOn picks black or white text for a fill color.
func textColorOn(fill color.Color) color.Color {
	if luminance(fill) > 0.408 {
		return color.Black
	}
	return color.White
}
