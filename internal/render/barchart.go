package render

import (
	"fmt"
	"math"

	"continuum-report/internal/config"
	"continuum-report/internal/model"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// BarChart draws a grouped bar chart of stats, one total bar and one perc bar
// per category, in the order given, and saves it to path.
func BarChart(stats []model.CategoryStat, path, title string, style config.BarStyle) error {
	p, err := newBarPlot(stats, title, style)
	if err != nil {
		return err
	}
	return savePNG(path, canvasSpec{
		WidthIn:  style.WidthIn,
		HeightIn: style.HeightIn,
		DPI:      style.DPI,
		Padding:  style.Padding,
	}, p.Draw)
}

func newBarPlot(stats []model.CategoryStat, title string, style config.BarStyle) (*plot.Plot, error) {
	if len(stats) == 0 {
		return nil, fmt.Errorf("bar chart %q: %w", title, ErrNoData)
	}
	if len(style.Colors) < 2 {
		return nil, fmt.Errorf("bar chart %q: two colors are required", title)
	}
	totalColor, err := ParseHexColor(style.Colors[0])
	if err != nil {
		return nil, err
	}
	percColor, err := ParseHexColor(style.Colors[1])
	if err != nil {
		return nil, err
	}

	labels := make([]string, len(stats))
	totals := make(plotter.Values, len(stats))
	percs := make(plotter.Values, len(stats))
	for i, st := range stats {
		labels[i] = st.Category
		totals[i] = st.Total
		percs[i] = st.Perc
	}

	p := plot.New()
	applyFonts(p, style.FontSize, style.TitleSize)
	p.Title.Text = title
	p.Y.Label.Text = style.YLabel

	w := vg.Points(style.BarWidth)
	totalBars, err := plotter.NewBarChart(totals, w)
	if err != nil {
		return nil, fmt.Errorf("bar chart %q: %w", title, err)
	}
	totalBars.Color = totalColor
	totalBars.LineStyle.Width = 0
	totalBars.Offset = -w / 2

	percBars, err := plotter.NewBarChart(percs, w)
	if err != nil {
		return nil, fmt.Errorf("bar chart %q: %w", title, err)
	}
	percBars.Color = percColor
	percBars.LineStyle.Width = 0
	percBars.Offset = w / 2

	p.Add(totalBars, percBars)
	p.Legend.Add("total", totalBars)
	p.Legend.Add("perc", percBars)
	p.Legend.Top = true
	p.Legend.Left = true

	// Category names run vertically under each group. No spine or tick
	// marks except the value axis line.
	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.X.Tick.Length = 0
	p.X.LineStyle.Width = 0
	p.Y.Tick.Length = 0
	p.Y.Padding = vg.Points(5)
	p.Y.Min = math.Min(0, p.Y.Min)
	return p, nil
}
