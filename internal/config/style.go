package config

import "fmt"

// Style groups the per-chart styles. Each render call gets its own copy so
// one chart never changes how the next one is drawn.
type Style struct {
	Bar     BarStyle     `yaml:"bar" json:"bar"`
	Heatmap HeatmapStyle `yaml:"heatmap" json:"heatmap"`
}

// BarStyle configures the total/percentage bar chart.
type BarStyle struct {
	WidthIn   float64  `yaml:"width_in" json:"width_in"`
	HeightIn  float64  `yaml:"height_in" json:"height_in"`
	DPI       int      `yaml:"dpi" json:"dpi"`
	FontSize  float64  `yaml:"font_size" json:"font_size"`
	TitleSize float64  `yaml:"title_size" json:"title_size"`
	YLabel    string   `yaml:"y_label" json:"y_label"`
	BarWidth  float64  `yaml:"bar_width" json:"bar_width"` // points
	Colors    []string `yaml:"colors" json:"colors"`       // total, perc
	Padding   int      `yaml:"padding" json:"padding"`     // pixels kept around the cropped content
}

// HeatmapStyle configures the correlation heatmap.
type HeatmapStyle struct {
	WidthIn   float64 `yaml:"width_in" json:"width_in"`
	HeightIn  float64 `yaml:"height_in" json:"height_in"`
	DPI       int     `yaml:"dpi" json:"dpi"`
	FontSize  float64 `yaml:"font_size" json:"font_size"`
	TitleSize float64 `yaml:"title_size" json:"title_size"`
	Colors    int     `yaml:"colors" json:"colors"` // palette resolution
	Padding   int     `yaml:"padding" json:"padding"`
}

// DefaultStyle is the look of the review figures: white background,
// 12pt text, 300 DPI output.
func DefaultStyle() Style {
	return Style{
		Bar: BarStyle{
			WidthIn:   15,
			HeightIn:  10,
			DPI:       300,
			FontSize:  12,
			TitleSize: 12,
			YLabel:    "Total/Percentage",
			BarWidth:  10,
			Colors:    []string{"#1f77b4", "#ff7f0e"},
			Padding:   30,
		},
		Heatmap: HeatmapStyle{
			WidthIn:   16,
			HeightIn:  8,
			DPI:       300,
			FontSize:  12,
			TitleSize: 16,
			Colors:    255,
			Padding:   30,
		},
	}
}

// Validate rejects sizes the renderer cannot draw.
func (s Style) Validate() error {
	if s.Bar.WidthIn <= 0 || s.Bar.HeightIn <= 0 || s.Bar.DPI <= 0 {
		return fmt.Errorf("bar style: width, height and dpi must be positive")
	}
	if len(s.Bar.Colors) < 2 {
		return fmt.Errorf("bar style: two colors are required")
	}
	if s.Heatmap.WidthIn <= 0 || s.Heatmap.HeightIn <= 0 || s.Heatmap.DPI <= 0 {
		return fmt.Errorf("heatmap style: width, height and dpi must be positive")
	}
	if s.Heatmap.Colors < 2 {
		return fmt.Errorf("heatmap style: at least two palette colors are required")
	}
	return nil
}
