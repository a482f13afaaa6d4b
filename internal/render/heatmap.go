package render

import (
	"fmt"
	"image/color"
	"math"
	"strconv"

	"continuum-report/internal/config"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	colorBarArea = 1.1 // inches kept right of the heatmap for the colour bar
	colorBarGap  = 0.2
)

// corrGrid adapts a correlation matrix to plotter.GridXYZ. Grid rows count
// from the bottom, so row 0 of the matrix lands on the top row.
type corrGrid struct {
	m mat.Symmetric
}

func (g corrGrid) Dims() (c, r int) {
	n := g.m.SymmetricDim()
	return n, n
}

func (g corrGrid) Z(c, r int) float64 {
	return g.m.At(g.m.SymmetricDim()-1-r, c)
}

func (g corrGrid) X(c int) float64 { return float64(c) }
func (g corrGrid) Y(r int) float64 { return float64(r) }
func (g corrGrid) Min() float64    { return -1 }
func (g corrGrid) Max() float64    { return 1 }

// Heatmap draws m as an annotated heatmap on a diverging blue-red scale fixed
// to [-1, 1], with a colour bar on the right, and saves it to path. labels
// name the rows and columns of m in order. NaN cells are left blank.
func Heatmap(labels []string, m mat.Symmetric, path, title string, style config.HeatmapStyle) error {
	n := m.SymmetricDim()
	if n == 0 {
		return fmt.Errorf("heatmap %q: %w", title, ErrNoData)
	}
	if len(labels) != n {
		return fmt.Errorf("heatmap %q: %d labels for a %dx%d matrix", title, len(labels), n, n)
	}

	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(-1)
	cmap.SetMax(1)
	pal := cmap.Palette(style.Colors)

	grid := corrGrid{m: m}
	hm := plotter.NewHeatMap(grid, pal)

	p := plot.New()
	applyFonts(p, style.FontSize, style.TitleSize)
	p.Title.Text = title
	p.Add(hm)

	notes, err := annotations(grid, pal.Colors(), style.FontSize)
	if err != nil {
		return fmt.Errorf("heatmap %q: %w", title, err)
	}
	if notes != nil {
		p.Add(notes)
	}

	rows := make([]string, n)
	for i, l := range labels {
		rows[n-1-i] = l
	}
	p.NominalX(labels...)
	p.NominalY(rows...)
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.X.Padding = 0
	p.Y.Padding = 0

	bar := plot.New()
	applyFonts(bar, style.FontSize, style.TitleSize)
	bar.HideX()
	bar.Y.Padding = 0
	bar.Add(&plotter.ColorBar{ColorMap: cmap, Vertical: true, Colors: style.Colors})

	return savePNG(path, canvasSpec{
		WidthIn:  style.WidthIn,
		HeightIn: style.HeightIn,
		DPI:      style.DPI,
		Padding:  style.Padding,
	}, func(dc draw.Canvas) {
		main := draw.Crop(dc, 0, -inches(colorBarArea), 0, 0)
		p.Draw(main)

		// The colour bar spans the same height as the cells.
		data := p.DataCanvas(main)
		bar.Draw(draw.Canvas{
			Canvas: dc.Canvas,
			Rectangle: vg.Rectangle{
				Min: vg.Point{X: main.Max.X + inches(colorBarGap), Y: data.Min.Y},
				Max: vg.Point{X: dc.Max.X, Y: data.Max.Y},
			},
		})
	})
}

// annotations writes each coefficient in its cell with two significant
// digits, dark on light cells and light on dark ones.
func annotations(g corrGrid, pal []color.Color, size float64) (*plotter.Labels, error) {
	var xyl plotter.XYLabels
	var fills []color.Color

	cols, rows := g.Dims()
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			v := g.Z(c, r)
			if math.IsNaN(v) {
				continue
			}
			xyl.XYs = append(xyl.XYs, plotter.XY{X: g.X(c), Y: g.Y(r)})
			xyl.Labels = append(xyl.Labels, FormatCoefficient(v))
			fills = append(fills, cellColor(pal, v))
		}
	}
	if len(xyl.Labels) == 0 {
		return nil, nil
	}

	notes, err := plotter.NewLabels(xyl)
	if err != nil {
		return nil, err
	}
	for i := range notes.TextStyle {
		notes.TextStyle[i].Font = face(size)
		notes.TextStyle[i].XAlign = draw.XCenter
		notes.TextStyle[i].YAlign = draw.YCenter
		notes.TextStyle[i].Color = textColorOn(fills[i])
	}
	return notes, nil
}

// FormatCoefficient renders v with two significant digits ("1", "0.46",
// "-0.05").
func FormatCoefficient(v float64) string {
	return strconv.FormatFloat(v, 'g', 2, 64)
}

// cellColor is the palette entry the heatmap fills a cell of value v with.
func cellColor(pal []color.Color, v float64) color.Color {
	v = math.Max(-1, math.Min(1, v))
	i := int((v+1)*float64(len(pal)-1)/2 + 0.5)
	return pal[i]
}
