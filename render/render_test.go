package render

import (
	"bytes"
	"image/png"
	"io"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/carbocation/mamanalysis/survival"
	"github.com/google/go-cmp/cmp"
	chart "github.com/wcharczuk/go-chart/v2"
)

func curve(t *testing.T, label string, obs []survival.Observation) survival.Curve {
	t.Helper()
	c, err := survival.KaplanMeier(obs)
	if err != nil {
		t.Fatal(err)
	}
	c.Label = label
	return c
}

func testCurves(t *testing.T) []survival.Curve {
	return []survival.Curve{
		curve(t, "Alta Expressão", []survival.Observation{
			{Time: 6, Event: true}, {Time: 7, Event: false}, {Time: 10, Event: true},
			{Time: 15, Event: true}, {Time: 19, Event: false}, {Time: 25, Event: true},
		}),
		curve(t, "Baixa Expressão", []survival.Observation{
			{Time: 1, Event: true}, {Time: 1, Event: true}, {Time: 2, Event: true},
			{Time: 2, Event: true}, {Time: 3, Event: false}, {Time: 4, Event: true},
		}),
	}
}

func decodeSize(t *testing.T, b []byte) (int, int) {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestStepPoints(t *testing.T) {
	c := curve(t, "x", []survival.Observation{
		{Time: 1, Event: true}, {Time: 2, Event: false}, {Time: 3, Event: true}, {Time: 4, Event: false},
	})
	xs, ys := stepPoints(c, func(st survival.Step) float64 { return st.Survival })

	wantX := []float64{0, 1, 1, 3, 3, 4}
	wantY := []float64{1, 1, 0.75, 0.75, 0.375, 0.375}
	if diff := cmp.Diff(wantX, xs); diff != "" {
		t.Fatalf("x mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantY, ys); diff != "" {
		t.Fatalf("y mismatch (-want +got):\n%s", diff)
	}
}

func TestNiceStep(t *testing.T) {
	for _, tc := range []struct {
		span float64
		n    int
		want float64
	}{
		{span: 100, n: 5, want: 20},
		{span: 240, n: 6, want: 50},
		{span: 7, n: 6, want: 2},
		{span: 0, n: 6, want: 1},
	} {
		if got := niceStep(tc.span, tc.n); got != tc.want {
			t.Fatalf("niceStep(%v, %d) = %v, want %v", tc.span, tc.n, got, tc.want)
		}
	}
}

func TestTimeTicksCoverMaximum(t *testing.T) {
	ticks := timeTicks(233.4)
	if ticks[0].Value != 0 {
		t.Fatalf("first tick %v, want 0", ticks[0].Value)
	}
	if last := ticks[len(ticks)-1].Value; last < 233.4 {
		t.Fatalf("last tick %v does not reach the maximum", last)
	}
}

func TestScaledBars(t *testing.T) {
	w, s := scaledBars(4, chart.Box{Left: 0, Right: 1000})
	if w != barWidth || s != barSpacing {
		t.Fatalf("roomy canvas changed bars: width %d spacing %d", w, s)
	}

	w, s = scaledBars(20, chart.Box{Left: 0, Right: 1000})
	if 20*(w+s) > 1000+20 {
		t.Fatalf("crowded bars overflow: width %d spacing %d", w, s)
	}
}

func TestSurvivalWithAtRisk(t *testing.T) {
	var buf bytes.Buffer
	err := Survival(&buf, SurvivalPlot{
		Title:  "Sobrevida por Expressão",
		Curves: testCurves(t),
		PValue: 0.0246,
		PLabel: "Log-rank",
		AtRisk: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	w, h := decodeSize(t, buf.Bytes())
	if w != 1000 || h != 700+16*6 {
		t.Fatalf("got %dx%d image", w, h)
	}
}

func TestSurvivalWithoutPValue(t *testing.T) {
	var buf bytes.Buffer
	if err := Survival(&buf, SurvivalPlot{Curves: testCurves(t)[:1], PValue: math.NaN()}); err != nil {
		t.Fatal(err)
	}
	decodeSize(t, buf.Bytes())
}

func TestSurvivalNeedsCurves(t *testing.T) {
	if err := Survival(&bytes.Buffer{}, SurvivalPlot{}); err == nil {
		t.Fatal("expected an error for an empty plot")
	}
}

func TestBarsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.png")
	err := SavePNG(path, func(w io.Writer) error {
		return Bars(w, BarPlot{
			Title:  "Distribuição dos Subtipos PAM50",
			YLabel: "Contagem Absoluta de Amostras",
			Bars: []Bar{
				{Label: "LumA", Value: 433, Margin: 20, Annotation: []string{"45.4%"}, Color: PAM50Colors["LumA"]},
				{Label: "LumB", Value: 194, Annotation: []string{"20.4%"}, Color: PAM50Colors["LumB"]},
				{Label: "Her2", Value: 67, Annotation: []string{"7.0%"}, Color: PAM50Colors["Her2"]},
				{Label: "Basal", Value: 141, Annotation: []string{"n=141", "(14.8%)"}},
			},
			Note: "Barra de erro: IC 95% de Wilson",
		})
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestStackedPercentSkipsEmptyGroups(t *testing.T) {
	var buf bytes.Buffer
	err := StackedPercent(&buf, StackedPlot{
		Title:    "PAM50 por grupo",
		Groups:   []string{"Alta Expressão", "Vazio", "Baixa Expressão"},
		Segments: []string{"LumA", "LumB", "Her2", "Basal"},
		Counts:   [][]int{{40, 20, 5, 10}, {0, 0, 0, 0}, {30, 10, 10, 30}},
		Colors:   PAM50Colors,
		PValue:   0.0004,
		PLabel:   "Qui-quadrado",
	})
	if err != nil {
		t.Fatal(err)
	}
	decodeSize(t, buf.Bytes())

	err = StackedPercent(&bytes.Buffer{}, StackedPlot{
		Groups:   []string{"Vazio"},
		Segments: []string{"LumA"},
		Counts:   [][]int{{0}},
	})
	if err == nil {
		t.Fatal("expected an error when no group has counts")
	}
}

func TestFrequency(t *testing.T) {
	var buf bytes.Buffer
	err := Frequency(&buf, FrequencyPlot{
		Title:   "Frequência de expressão por subtipo",
		Groups:  []string{"LumA", "LumB", "Her2", "Basal"},
		Genes:   []string{"CLC", "EPX", "IL5RA", "PRG2"},
		Percent: [][]float64{{50, 2, 30, 10}, {40, 5, 20, 0}, {60, 10, 10, 5}, {30, 1, 25, 15}},
		Counts:  [][]int{{10, 1, 6, 2}, {8, 1, 4, 0}, {6, 1, 1, 1}, {9, 1, 7, 4}},
		Width:   800,
		Height:  500,
	})
	if err != nil {
		t.Fatal(err)
	}
	if w, h := decodeSize(t, buf.Bytes()); w != 800 || h != 500 {
		t.Fatalf("got %dx%d image", w, h)
	}
}

func TestZScores(t *testing.T) {
	z := ZScores([][]float64{
		{1, 2, 3},
		{5, 5, 5},
		{math.NaN(), 4, 8},
	})

	if z[0][1] != 0 || !(z[0][0] < 0) || !(z[0][2] > 0) {
		t.Fatalf("row 0 not centred: %v", z[0])
	}
	if math.Abs(z[0][0]+z[0][2]) > 1e-12 {
		t.Fatalf("row 0 not symmetric: %v", z[0])
	}
	for _, v := range z[1] {
		if v != 0 {
			t.Fatalf("constant row should be zero, got %v", z[1])
		}
	}
	if !math.IsNaN(z[2][0]) {
		t.Fatalf("missing cell should stay NaN, got %v", z[2][0])
	}
}

func TestHeatmapAndNotice(t *testing.T) {
	var buf bytes.Buffer
	err := Heatmap(&buf, HeatmapPlot{
		Title:   "Expressão média por subtipo (z-score)",
		Rows:    []string{"CLC", "EPX"},
		Columns: []string{"LumA", "LumB", "Her2"},
		Values:  [][]float64{{1, 2, 3}, {0.5, math.NaN(), 0.1}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if w, h := decodeSize(t, buf.Bytes()); w != 120+3*110+30 || h != 80+2*50+30 {
		t.Fatalf("got %dx%d heatmap", w, h)
	}

	buf.Reset()
	if err := Notice(&buf, "CLC", InsufficientData); err != nil {
		t.Fatal(err)
	}
	decodeSize(t, buf.Bytes())
}

func TestTerminalHistogram(t *testing.T) {
	var buf bytes.Buffer
	if err := TerminalHistogram(&buf, "score", []float64{1, 2, 2, 3, 10}, 2); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "score: n=5 median=2.0000\n") {
		t.Fatalf("unexpected header: %q", buf.String())
	}
}
