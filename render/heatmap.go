package render

import (
	"fmt"
	"io"
	"math"

	"github.com/carbocation/runningvariance"
	"github.com/fogleman/gg"
)

// HeatmapPlot shows Values, indexed [row][column], as per-row z-scores.
// NaN cells are drawn grey.
type HeatmapPlot struct {
	Title   string
	Rows    []string
	Columns []string
	Values  [][]float64

	CellWidth  int
	CellHeight int
}

// ZScores standardizes each row to mean 0 and unit standard deviation. A
// row without spread is all zeros. NaN entries are ignored and kept.
func ZScores(values [][]float64) [][]float64 {
	out := make([][]float64, len(values))
	for i, row := range values {
		rs := runningvariance.NewRunningStat()
		for _, v := range row {
			if !math.IsNaN(v) {
				rs.Push(v)
			}
		}
		mean, sd := rs.Mean(), rs.StandardDeviation()

		out[i] = make([]float64, len(row))
		for j, v := range row {
			switch {
			case math.IsNaN(v):
				out[i][j] = math.NaN()
			case sd == 0 || math.IsNaN(sd):
				out[i][j] = 0
			default:
				out[i][j] = (v - mean) / sd
			}
		}
	}
	return out
}

// divergingColor maps z in [-2, 2] from blue through white to red.
func divergingColor(z float64) (r, g, b float64) {
	t := math.Max(-1, math.Min(1, z/2))
	if t < 0 {
		return 1 + t*0.8, 1 + t*0.6, 1
	}
	return 1, 1 - t*0.7, 1 - t*0.8
}

// Heatmap draws the z-scored matrix with row and column labels.
func Heatmap(w io.Writer, p HeatmapPlot) error {
	if len(p.Rows) == 0 || len(p.Columns) == 0 {
		return fmt.Errorf("render: heatmap needs rows and columns")
	}
	cw, ch := float64(p.CellWidth), float64(p.CellHeight)
	if cw == 0 {
		cw = 110
	}
	if ch == 0 {
		ch = 50
	}

	const (
		left   = 120.0
		top    = 80.0
		margin = 30.0
	)
	width := int(left + cw*float64(len(p.Columns)) + margin)
	height := int(top + ch*float64(len(p.Rows)) + margin)

	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	label, err := fontFace(11)
	if err != nil {
		return err
	}
	title, err := fontFace(15)
	if err != nil {
		return err
	}

	z := ZScores(p.Values)
	dc.SetFontFace(label)
	for i, name := range p.Rows {
		y := top + ch*float64(i)
		dc.SetRGB(0, 0, 0)
		dc.DrawStringAnchored(name, left-10, y+ch/2, 1, 0.5)

		for j := range p.Columns {
			x := left + cw*float64(j)
			v := math.NaN()
			if i < len(z) && j < len(z[i]) {
				v = z[i][j]
			}

			if math.IsNaN(v) {
				dc.SetRGB(0.8, 0.8, 0.8)
			} else {
				dc.SetRGB(divergingColor(v))
			}
			dc.DrawRectangle(x, y, cw, ch)
			dc.FillPreserve()
			dc.SetRGB(1, 1, 1)
			dc.SetLineWidth(1)
			dc.Stroke()

			if !math.IsNaN(v) {
				dc.SetRGB(0, 0, 0)
				dc.DrawStringAnchored(fmt.Sprintf("%.2f", v), x+cw/2, y+ch/2, 0.5, 0.5)
			}
		}
	}

	dc.SetRGB(0, 0, 0)
	for j, name := range p.Columns {
		dc.DrawStringAnchored(name, left+cw*float64(j)+cw/2, top-12, 0.5, 0.5)
	}

	dc.SetFontFace(title)
	dc.DrawStringAnchored(p.Title, float64(width)/2, top/3, 0.5, 0.5)

	return encode(dc, w)
}
