package render

import (
	"fmt"
	"io"
	"math"

	"github.com/carbocation/mamanalysis/survival"
	"github.com/carbocation/mamanalysis/tabulate"
	"github.com/carbocation/pfx"
	"github.com/fogleman/gg"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// SurvivalPlot describes one Kaplan-Meier figure. Curves are drawn in
// order; PValue is NaN when no test was run.
type SurvivalPlot struct {
	Title  string
	XLabel string
	YLabel string
	Curves []survival.Curve
	PValue float64
	PLabel string

	// AtRisk adds the number-at-risk table under the x axis.
	AtRisk bool

	Width  int
	Height int
}

func (p SurvivalPlot) size() (int, int) {
	w, h := p.Width, p.Height
	if w == 0 {
		w = 1000
	}
	if h == 0 {
		h = 700
	}
	return w, h
}

// stepPoints traces the right-continuous step function through the values
// chosen by pick.
func stepPoints(c survival.Curve, pick func(survival.Step) float64) (xs, ys []float64) {
	xs, ys = []float64{0}, []float64{1}
	prev := 1.0
	for _, st := range c.Steps {
		v := pick(st)
		if st.Events > 0 {
			xs = append(xs, st.Time, st.Time)
			ys = append(ys, prev, v)
			prev = v
		}
	}
	if last := c.MaxTime(); last > xs[len(xs)-1] {
		xs = append(xs, last)
		ys = append(ys, prev)
	}
	return xs, ys
}

func timeTicks(maxTime float64) []chart.Tick {
	step := niceStep(maxTime, 6)
	end := math.Ceil(maxTime/step) * step
	if end == 0 {
		end = step
	}
	var ticks []chart.Tick
	for t := 0.0; t <= end+step/2; t += step {
		ticks = append(ticks, chart.Tick{Value: t, Label: fmt.Sprintf("%g", t)})
	}
	return ticks
}

// Survival draws overlaid Kaplan-Meier curves with shaded 95% bands,
// censoring marks, a legend with group sizes and the test p-value.
func Survival(w io.Writer, p SurvivalPlot) error {
	if len(p.Curves) == 0 {
		return fmt.Errorf("render: no survival curves to draw")
	}
	width, height := p.size()

	xLabel, yLabel := p.XLabel, p.YLabel
	if xLabel == "" {
		xLabel = "Tempo (Meses)"
	}
	if yLabel == "" {
		yLabel = "Probabilidade de Sobrevida"
	}

	maxTime := 0.0
	for _, c := range p.Curves {
		maxTime = math.Max(maxTime, c.MaxTime())
	}
	xTicks := timeTicks(maxTime)
	xMax := xTicks[len(xTicks)-1].Value
	const yMax = 1.05

	var yTicks []chart.Tick
	for i := 0; i <= 5; i++ {
		v := float64(i) / 5
		yTicks = append(yTicks, chart.Tick{Value: v, Label: fmt.Sprintf("%.1f", v)})
	}

	series := make([]chart.Series, 0, len(p.Curves))
	for i, c := range p.Curves {
		xs, ys := stepPoints(c, func(st survival.Step) float64 { return st.Survival })
		series = append(series, chart.ContinuousSeries{
			Name: fmt.Sprintf("%s (n=%d)", c.Label, c.N),
			Style: chart.Style{
				StrokeColor: hex(colorAt(SeriesColors, i)),
				StrokeWidth: 2,
			},
			XValues: xs,
			YValues: ys,
		})
	}

	var canvas chart.Box
	graph := chart.Chart{
		Title:  p.Title,
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:  xLabel,
			Range: &chart.ContinuousRange{Min: 0, Max: xMax},
			Ticks: xTicks,
		},
		YAxis: chart.YAxis{
			Name:  yLabel,
			Range: &chart.ContinuousRange{Min: 0, Max: yMax},
			Ticks: yTicks,
		},
		Series: series,
	}

	bands := func(r chart.Renderer, cb chart.Box, defaults chart.Style) {
		canvas = cb
		px := func(x, y float64) (int, int) {
			return cb.Left + toPixel(x, 0, xMax, cb.Width()), cb.Bottom - toPixel(y, 0, yMax, cb.Height())
		}

		for i, c := range p.Curves {
			col := hex(colorAt(SeriesColors, i))

			uxs, uys := stepPoints(c, func(st survival.Step) float64 { return st.Upper })
			lxs, lys := stepPoints(c, func(st survival.Step) float64 { return st.Lower })
			r.SetFillColor(col.WithAlpha(40))
			r.SetStrokeColor(col.WithAlpha(0))
			x0, y0 := px(uxs[0], uys[0])
			r.MoveTo(x0, y0)
			for j := 1; j < len(uxs); j++ {
				r.LineTo(px(uxs[j], uys[j]))
			}
			for j := len(lxs) - 1; j >= 0; j-- {
				r.LineTo(px(lxs[j], lys[j]))
			}
			r.Close()
			r.Fill()
			r.ResetStyle()

			r.SetStrokeColor(col)
			r.SetStrokeWidth(1.5)
			for _, st := range c.Steps {
				if st.Censored == 0 {
					continue
				}
				x, y := px(st.Time, c.At(st.Time))
				r.MoveTo(x, y-5)
				r.LineTo(x, y+5)
				r.Stroke()
			}
			r.ResetStyle()
		}

		if math.IsNaN(p.PValue) {
			return
		}
		label := tabulate.FormatP(p.PValue)
		if p.PLabel != "" {
			label = p.PLabel + ": " + label
		}
		chart.Draw.Text(r, label, cb.Left+15, cb.Bottom-15, chart.Style{
			Font:      defaults.Font,
			FontSize:  12,
			FontColor: drawing.ColorBlack,
		})
	}
	graph.Elements = []chart.Renderable{bands, chart.Legend(&graph)}

	if !p.AtRisk {
		return pfx.Err(graph.Render(chart.PNG, w))
	}

	img, err := renderChart(graph)
	if err != nil {
		return err
	}

	const lineHeight = 16
	strip := lineHeight * (2*len(p.Curves) + 2)
	dc := gg.NewContext(img.Bounds().Dx(), img.Bounds().Dy()+strip)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.DrawImage(img, 0, 0)

	face, err := fontFace(11)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)

	y := float64(img.Bounds().Dy() + lineHeight)
	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored("Número em risco", float64(canvas.Left), y, 0, 0.5)
	for i, c := range p.Curves {
		y += lineHeight
		dc.SetHexColor(colorAt(SeriesColors, i))
		dc.DrawStringAnchored(c.Label, float64(canvas.Left), y, 0, 0.5)
		y += lineHeight
		dc.SetRGB(0, 0, 0)
		for _, tick := range xTicks {
			x := float64(canvas.Left + toPixel(tick.Value, 0, xMax, canvas.Width()))
			dc.DrawStringAnchored(fmt.Sprint(c.AtRiskAt(tick.Value)), x, y, 0.5, 0.5)
		}
	}

	return encode(dc, w)
}
