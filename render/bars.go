package render

import (
	"fmt"
	"io"
	"math"

	"github.com/carbocation/pfx"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Bar is one column of a BarPlot. Margin draws a symmetric error bar and
// Annotation is printed above it, one string per line.
type Bar struct {
	Label      string
	Value      float64
	Margin     float64
	Annotation []string
	Color      string
}

type BarPlot struct {
	Title  string
	YLabel string
	Bars   []Bar
	Color  string
	Note   string

	// Headroom scales the tallest bar to leave space for annotations.
	Headroom float64

	Width  int
	Height int
}

const (
	barWidth   = 70
	barSpacing = 40
)

// scaledBars mirrors how go-chart shrinks bars that do not fit the canvas.
func scaledBars(n int, cb chart.Box) (width, spacing int) {
	width, spacing = barWidth, barSpacing
	if n == 0 {
		return
	}
	if n*(width+spacing) > cb.Width() {
		if less := cb.Width() - n*width; less > 0 {
			spacing = int(math.Ceil(float64(less) / float64(n)))
		} else {
			spacing = 0
		}
	}
	if n*(width+spacing) > cb.Width() {
		if less := cb.Width() - n*spacing; less > 0 {
			width = int(math.Ceil(float64(less) / float64(n)))
		} else {
			width = 0
		}
	}
	return
}

func countFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.0f", f)
	}
	return ""
}

// Bars draws a bar chart with optional error bars and text above each bar.
func Bars(w io.Writer, p BarPlot) error {
	if len(p.Bars) == 0 {
		return fmt.Errorf("render: no bars to draw")
	}
	width, height := p.Width, p.Height
	if width == 0 {
		width = 1000
	}
	if height == 0 {
		height = 600
	}
	headroom := p.Headroom
	if headroom == 0 {
		headroom = 1.15
	}
	color := p.Color
	if color == "" {
		color = SeriesColors[0]
	}

	top := 0.0
	values := make([]chart.Value, 0, len(p.Bars))
	for _, b := range p.Bars {
		top = math.Max(top, b.Value+b.Margin)
		fill := b.Color
		if fill == "" {
			fill = color
		}
		values = append(values, chart.Value{
			Label: b.Label,
			Value: b.Value,
			Style: chart.Style{
				FillColor:   hex(fill),
				StrokeColor: drawing.ColorBlack,
				StrokeWidth: 1,
			},
		})
	}
	yMax := top * headroom
	if yMax == 0 {
		yMax = 10
	}

	bc := chart.BarChart{
		Title:  p.Title,
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 60, Left: 20, Right: 20, Bottom: 20},
		},
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		XAxis:      chart.Style{FontSize: 9},
		YAxis: chart.YAxis{
			Name:           p.YLabel,
			Range:          &chart.ContinuousRange{Min: 0, Max: yMax},
			ValueFormatter: countFormatter,
		},
		Bars: values,
	}

	bc.Elements = []chart.Renderable{func(r chart.Renderer, cb chart.Box, defaults chart.Style) {
		bw, bs := scaledBars(len(p.Bars), cb)
		text := chart.Style{Font: defaults.Font, FontSize: 9, FontColor: drawing.ColorBlack}

		for i, b := range p.Bars {
			center := cb.Left + i*(bw+bs) + bs>>1 + bw/2
			yTop := cb.Bottom - toPixel(b.Value+b.Margin, 0, yMax, cb.Height())

			if b.Margin > 0 {
				yLow := cb.Bottom - toPixel(math.Max(b.Value-b.Margin, 0), 0, yMax, cb.Height())
				r.SetStrokeColor(drawing.ColorBlack)
				r.SetStrokeWidth(1)
				r.MoveTo(center, yLow)
				r.LineTo(center, yTop)
				r.MoveTo(center-6, yLow)
				r.LineTo(center+6, yLow)
				r.MoveTo(center-6, yTop)
				r.LineTo(center+6, yTop)
				r.Stroke()
				r.ResetStyle()
			}

			y := yTop - 6 - 14*(len(b.Annotation)-1)
			for _, line := range b.Annotation {
				box := chart.Draw.MeasureText(r, line, text)
				chart.Draw.Text(r, line, center-box.Width()/2, y, text)
				y += 14
			}
		}

		if p.Note != "" {
			chart.Draw.Text(r, p.Note, cb.Left+10, cb.Top+15, text)
		}
	}}

	return pfx.Err(bc.Render(chart.PNG, w))
}
