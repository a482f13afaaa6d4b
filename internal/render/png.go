package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// canvasSpec is the raster a chart is painted on.
type canvasSpec struct {
	WidthIn  float64
	HeightIn float64
	DPI      int
	Padding  int // pixels kept around the content after cropping
}

// savePNG paints onto a white canvas, trims the surrounding whitespace and
// writes the result to path, replacing any existing file.
func savePNG(path string, spec canvasSpec, paint func(dc draw.Canvas)) error {
	c := vgimg.NewWith(
		vgimg.UseWH(inches(spec.WidthIn), inches(spec.HeightIn)),
		vgimg.UseDPI(spec.DPI),
		vgimg.UseBackgroundColor(color.White),
	)
	paint(draw.New(c))

	img := tightCrop(c.Image(), spec.Padding)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}

// tightCrop returns the smallest sub-image holding every non-white pixel,
// grown by pad pixels on each side. A blank image is returned whole.
func tightCrop(img image.Image, pad int) image.Image {
	b := img.Bounds()
	content := image.Rectangle{Min: b.Max, Max: b.Min}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if isWhite(img, x, y) {
				continue
			}
			if x < content.Min.X {
				content.Min.X = x
			}
			if y < content.Min.Y {
				content.Min.Y = y
			}
			if x+1 > content.Max.X {
				content.Max.X = x + 1
			}
			if y+1 > content.Max.Y {
				content.Max.Y = y + 1
			}
		}
	}
	if content.Empty() {
		return img
	}

	content = image.Rect(
		content.Min.X-pad, content.Min.Y-pad,
		content.Max.X+pad, content.Max.Y+pad,
	).Intersect(b)

	sub, ok := img.(interface {
		SubImage(r image.Rectangle) image.Image
	})
	if !ok {
		return img
	}
	return sub.SubImage(content)
}

func isWhite(img image.Image, x, y int) bool {
	if rgba, ok := img.(*image.RGBA); ok {
		i := rgba.PixOffset(x, y)
		p := rgba.Pix[i : i+4 : i+4]
		return p[0] == 0xff && p[1] == 0xff && p[2] == 0xff
	}
	r, g, b, _ := img.At(x, y).RGBA()
	return r == 0xffff && g == 0xffff && b == 0xffff
}
