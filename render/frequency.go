package render

import (
	"fmt"
	"io"
	"math"

	"github.com/fogleman/gg"
)

// FrequencyPlot stacks, for each group, the share of samples expressing
// each gene. Unlike StackedPercent the bars are not normalized: a bar's
// height is the sum of its genes' frequencies. Percent and Counts are
// indexed [group][gene].
type FrequencyPlot struct {
	Title   string
	YLabel  string
	Groups  []string
	Genes   []string
	Percent [][]float64
	Counts  [][]int

	// MinLabel hides segment labels at or below this percentage.
	MinLabel float64

	Width  int
	Height int
}

// Frequency draws a FrequencyPlot.
func Frequency(w io.Writer, p FrequencyPlot) error {
	if len(p.Groups) == 0 || len(p.Genes) == 0 {
		return fmt.Errorf("render: frequency chart needs groups and genes")
	}
	width, height := p.Width, p.Height
	if width == 0 {
		width = 1000
	}
	if height == 0 {
		height = 650
	}
	yLabel := p.YLabel
	if yLabel == "" {
		yLabel = "Frequência de Expressão (%)"
	}
	minLabel := p.MinLabel
	if minLabel == 0 {
		minLabel = 3
	}

	const (
		left   = 80.0
		right  = 170.0
		top    = 60.0
		bottom = 70.0
	)
	plotW := float64(width) - left - right
	plotH := float64(height) - top - bottom

	tallest := 0.0
	for gi := range p.Groups {
		sum := 0.0
		for _, v := range row(p.Percent, gi) {
			sum += v
		}
		tallest = math.Max(tallest, sum)
	}
	step := niceStep(tallest*1.1, 6)
	yMax := math.Ceil(tallest*1.1/step) * step
	if yMax == 0 {
		yMax, step = 100, 20
	}
	yOf := func(v float64) float64 { return top + plotH - v/yMax*plotH }

	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	small, err := fontFace(10)
	if err != nil {
		return err
	}
	large, err := fontFace(16)
	if err != nil {
		return err
	}

	// Grid and y axis.
	dc.SetFontFace(small)
	dc.SetLineWidth(1)
	for v := 0.0; v <= yMax+step/2; v += step {
		y := yOf(v)
		dc.SetRGBA(0, 0, 0, 0.15)
		dc.SetDash(4, 4)
		dc.DrawLine(left, y, left+plotW, y)
		dc.Stroke()
		dc.SetDash()
		dc.SetRGB(0, 0, 0)
		dc.DrawStringAnchored(fmt.Sprintf("%g", v), left-8, y, 1, 0.5)
	}
	dc.SetRGB(0, 0, 0)
	dc.DrawLine(left, top, left, top+plotH)
	dc.DrawLine(left, top+plotH, left+plotW, top+plotH)
	dc.Stroke()

	dc.Push()
	dc.RotateAbout(gg.Radians(-90), 20, top+plotH/2)
	dc.DrawStringAnchored(yLabel, 20, top+plotH/2, 0.5, 0.5)
	dc.Pop()

	// Bars.
	slot := plotW / float64(len(p.Groups))
	barW := slot * 0.6
	for gi, group := range p.Groups {
		x := left + slot*float64(gi) + (slot-barW)/2
		base := 0.0
		percents, counts := row(p.Percent, gi), intRow(p.Counts, gi)
		for ji := range p.Genes {
			v := 0.0
			if ji < len(percents) {
				v = percents[ji]
			}
			if v <= 0 {
				continue
			}
			y0, y1 := yOf(base), yOf(base+v)
			dc.SetHexColor(colorAt(GeneColors, ji))
			dc.DrawRectangle(x, y1, barW, y0-y1)
			dc.FillPreserve()
			dc.SetRGB(0, 0, 0)
			dc.SetLineWidth(0.8)
			dc.Stroke()

			if v > minLabel {
				n := 0
				if ji < len(counts) {
					n = counts[ji]
				}
				mid := (y0 + y1) / 2
				dc.SetRGB(1, 1, 1)
				dc.DrawStringAnchored(fmt.Sprint(n), x+barW/2, mid-6, 0.5, 0.5)
				dc.DrawStringAnchored(fmt.Sprintf("(%.1f%%)", v), x+barW/2, mid+6, 0.5, 0.5)
			}
			base += v
		}

		dc.SetRGB(0, 0, 0)
		dc.DrawStringAnchored(group, x+barW/2, top+plotH+16, 0.5, 0.5)
	}

	// Legend.
	lx, ly := left+plotW+20, top
	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored("Gene", lx, ly, 0, 0.5)
	for ji, gene := range p.Genes {
		ly += 22
		dc.SetHexColor(colorAt(GeneColors, ji))
		dc.DrawRectangle(lx, ly-7, 14, 14)
		dc.Fill()
		dc.SetRGB(0, 0, 0)
		dc.DrawStringAnchored(gene, lx+20, ly, 0, 0.5)
	}

	dc.SetFontFace(large)
	dc.DrawStringAnchored(p.Title, float64(width)/2, top/2, 0.5, 0.5)

	return encode(dc, w)
}

func row(m [][]float64, i int) []float64 {
	if i < len(m) {
		return m[i]
	}
	return nil
}

func intRow(m [][]int, i int) []int {
	if i < len(m) {
		return m[i]
	}
	return nil
}
