// Package render draws the study's PNG charts: survival curves, count bars,
// stacked distributions, the gene frequency chart, the expression heatmap
// and the placeholder shown when a comparison has too few samples.
package render

import (
	"bytes"
	"image"
	"image/png"
	"io"
	"math"
	"os"

	"github.com/carbocation/pfx"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
)

// PAM50Colors are the fixed subtype colours used by every PAM50 chart.
var PAM50Colors = map[string]string{
	"LumA":  "#1f77b4",
	"LumB":  "#ff7f0e",
	"Her2":  "#2ca02c",
	"Basal": "#d62728",
}

// GeneColors colour the segments of the gene frequency chart in panel order.
var GeneColors = []string{"#e41a1c", "#377eb8", "#4daf4a", "#984ea3"}

// SeriesColors colour survival curves in group order.
var SeriesColors = []string{"#1f77b4", "#d62728", "#2ca02c", "#ff7f0e", "#9467bd", "#8c564b"}

const fallbackColor = "#999999"

func colorAt(palette []string, i int) string {
	if len(palette) == 0 {
		return fallbackColor
	}
	return palette[i%len(palette)]
}

func hex(c string) drawing.Color {
	return drawing.ColorFromHex(c)
}

// SavePNG creates path and hands it to draw.
func SavePNG(path string, draw func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return pfx.Err(err)
	}

	if err := draw(f); err != nil {
		f.Close()
		return err
	}

	return pfx.Err(f.Close())
}

// renderChart rasterizes a go-chart chart so it can be composed with gg.
func renderChart(c interface {
	Render(chart.RendererProvider, io.Writer) error
}) (image.Image, error) {
	var buf bytes.Buffer
	if err := c.Render(chart.PNG, &buf); err != nil {
		return nil, pfx.Err(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, pfx.Err(err)
	}
	return img, nil
}

// toPixel maps v from [min, max] onto the span of n pixels.
func toPixel(v, min, max float64, n int) int {
	if max <= min {
		return 0
	}
	return int(math.Ceil((v - min) / (max - min) * float64(n)))
}

// niceStep picks a 1, 2 or 5 times power of ten step that splits span into
// about n intervals.
func niceStep(span float64, n int) float64 {
	if span <= 0 || n <= 0 {
		return 1
	}
	raw := span / float64(n)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	switch frac := raw / mag; {
	case frac <= 1:
		return mag
	case frac <= 2:
		return 2 * mag
	case frac <= 5:
		return 5 * mag
	}
	return 10 * mag
}

// fontFace sizes the font go-chart embeds so gg drawings match the charts.
func fontFace(points float64) (font.Face, error) {
	f, err := chart.GetDefaultFont()
	if err != nil {
		return nil, pfx.Err(err)
	}
	return truetype.NewFace(f, &truetype.Options{Size: points, DPI: 72}), nil
}

func encode(dc *gg.Context, w io.Writer) error {
	return pfx.Err(dc.EncodePNG(w))
}
