package render

import (
	"fmt"
	"io"
	"math"

	"github.com/carbocation/mamanalysis/tabulate"
	"github.com/carbocation/pfx"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// StackedPlot is a 100% stacked bar per group. Counts is indexed
// [group][segment].
type StackedPlot struct {
	Title    string
	Groups   []string
	Segments []string
	Counts   [][]int
	Colors   map[string]string
	PValue   float64
	PLabel   string

	Width  int
	Height int
}

// StackedPercent draws each group's distribution over the segments, with a
// legend and the association p-value beside the bars. Groups without any
// counts are skipped.
func StackedPercent(w io.Writer, p StackedPlot) error {
	width, height := p.Width, p.Height
	if width == 0 {
		width = 900
	}
	if height == 0 {
		height = 600
	}

	var bars []chart.StackedBar
	for gi, group := range p.Groups {
		if gi >= len(p.Counts) {
			break
		}
		total := 0
		for _, n := range p.Counts[gi] {
			total += n
		}
		if total == 0 {
			continue
		}

		bar := chart.StackedBar{Name: fmt.Sprintf("%s (n=%d)", group, total), Width: 160}
		for si, seg := range p.Segments {
			n := 0
			if si < len(p.Counts[gi]) {
				n = p.Counts[gi][si]
			}
			pct := 100 * float64(n) / float64(total)
			label := ""
			if pct >= 5 {
				label = fmt.Sprintf("%.1f%%", pct)
			}
			bar.Values = append(bar.Values, chart.Value{
				Label: label,
				Value: float64(n),
				Style: chart.Style{
					FillColor:   hex(segmentColor(p.Colors, seg, si)),
					StrokeColor: drawing.ColorWhite,
					StrokeWidth: 1,
					FontColor:   drawing.ColorWhite,
					FontSize:    10,
				},
			})
		}
		bars = append(bars, bar)
	}
	if len(bars) == 0 {
		return fmt.Errorf("render: no group has any counts")
	}

	sbc := chart.StackedBarChart{
		Title:  p.Title,
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 60, Left: 40, Right: 20, Bottom: 20},
		},
		BarSpacing: 60,
		Bars:       bars,
	}

	sbc.Elements = []chart.Renderable{func(r chart.Renderer, cb chart.Box, defaults chart.Style) {
		text := chart.Style{Font: defaults.Font, FontSize: 10, FontColor: drawing.ColorBlack}
		x := cb.Right + 70
		y := cb.Top + 10
		for si, seg := range p.Segments {
			chart.Draw.Box(r, chart.Box{Top: y, Left: x, Right: x + 14, Bottom: y + 14}, chart.Style{
				FillColor:   hex(segmentColor(p.Colors, seg, si)),
				StrokeColor: drawing.ColorBlack,
				StrokeWidth: 0.5,
			})
			chart.Draw.Text(r, seg, x+20, y+12, text)
			y += 22
		}

		if math.IsNaN(p.PValue) {
			return
		}
		label := tabulate.FormatP(p.PValue)
		if p.PLabel != "" {
			chart.Draw.Text(r, p.PLabel+":", x, y+30, text)
			y += 16
		}
		chart.Draw.Text(r, label, x, y+30, text)
	}}

	return pfx.Err(sbc.Render(chart.PNG, w))
}

func segmentColor(colors map[string]string, seg string, i int) string {
	if c, ok := colors[seg]; ok {
		return c
	}
	return colorAt(GeneColors, i)
}
