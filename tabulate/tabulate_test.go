package tabulate

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestValueCounts(t *testing.T) {
	got := ValueCounts([]string{"LumA", "Basal", "LumA", "Her2", "Basal", "LumA", "LumB", "Normal"})
	expected := []Count{
		{"LumA", 3, 37.5},
		{"Basal", 2, 25},
		{"Her2", 1, 12.5},
		{"LumB", 1, 12.5},
		{"Normal", 1, 12.5},
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Fatalf("Mismatch (-want +got):\n%s", diff)
	}
}

func TestOrdered(t *testing.T) {
	got := Ordered([]string{"LumA", "Basal", "LumA", "Normal"}, []string{"LumA", "LumB", "Her2", "Basal"})
	if got[0].N != 2 || got[1].N != 0 || got[3].N != 1 {
		t.Fatalf("Unexpected counts: %+v", got)
	}
	if math.Abs(got[0].Percent-200.0/3) > 1e-9 {
		t.Fatalf("Normal must not count toward the total: %+v", got[0])
	}
}

func tableOf(cells [][]int) Crosstab {
	c := Crosstab{Cells: cells}
	for i := range cells {
		c.RowKeys = append(c.RowKeys, string(rune('a'+i)))
	}
	for j := range cells[0] {
		c.ColKeys = append(c.ColKeys, string(rune('A'+j)))
	}
	return c
}

func TestChiSquareYates(t *testing.T) {
	res, err := ChiSquare(tableOf([][]int{{10, 20}, {20, 10}}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Yates || res.DF != 1 {
		t.Fatalf("Expected a corrected 1 df test, got %+v", res)
	}
	if math.Abs(res.Statistic-5.4) > 1e-12 {
		t.Fatalf("Statistic %v, expected 5.4", res.Statistic)
	}
	if math.Abs(res.P-0.02014) > 1e-4 {
		t.Fatalf("P %v, expected 0.0201", res.P)
	}
}

func TestChiSquareTwoDF(t *testing.T) {
	res, err := ChiSquare(tableOf([][]int{{10, 20, 30}, {20, 20, 20}}))
	if err != nil {
		t.Fatal(err)
	}
	if res.Yates || res.DF != 2 {
		t.Fatalf("Expected an uncorrected 2 df test, got %+v", res)
	}
	expected := 16.0 / 3
	if math.Abs(res.Statistic-expected) > 1e-12 {
		t.Fatalf("Statistic %v, expected %v", res.Statistic, expected)
	}
	// With 2 df the survival function is exp(-x/2).
	if math.Abs(res.P-math.Exp(-expected/2)) > 1e-9 {
		t.Fatalf("P %v, expected %v", res.P, math.Exp(-expected/2))
	}
}

func TestChiSquareDropsEmptyRows(t *testing.T) {
	res, err := ChiSquare(tableOf([][]int{{10, 20}, {0, 0}, {20, 10}}))
	if err != nil {
		t.Fatal(err)
	}
	if res.DF != 1 || math.Abs(res.Statistic-5.4) > 1e-12 {
		t.Fatalf("Empty row was not dropped: %+v", res)
	}

	if _, err := ChiSquare(tableOf([][]int{{10, 20}, {0, 0}})); err != ErrDegenerateTable {
		t.Fatalf("Expected ErrDegenerateTable, got %v", err)
	}
}

func TestNewCrosstab(t *testing.T) {
	c, err := NewCrosstab(
		[]string{"CLC", "Nenhum", "CLC", "CLC"},
		[]string{"Morto", "Vivo", "Vivo", "Vivo"},
		nil, []string{"Vivo", "Morto"},
	)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"CLC", "Nenhum"}, c.RowKeys); diff != "" {
		t.Fatalf("Row keys mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][]int{{2, 1}, {1, 0}}, c.Cells); diff != "" {
		t.Fatalf("Cells mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][]float64{{200.0 / 3, 100}, {100.0 / 3, 0}}, c.ColumnPercent()); diff != "" {
		t.Fatalf("Column percent mismatch (-want +got):\n%s", diff)
	}
}

func TestFisherExact(t *testing.T) {
	p, err := FisherExact(tableOf([][]int{{3, 1}, {1, 3}}))
	if err != nil {
		t.Fatal(err)
	}
	// Two-sided p for this table is 34/70.
	if math.Abs(p-34.0/70) > 1e-6 {
		t.Fatalf("P %v, expected %v", p, 34.0/70)
	}

	if _, err := FisherExact(tableOf([][]int{{1, 2, 3}, {4, 5, 6}})); err == nil {
		t.Fatalf("Expected an error for a 2x3 table")
	}
}

func TestWilson(t *testing.T) {
	margin := WilsonMargin(50, 100, 0.95)
	if math.Abs(margin-0.09617) > 1e-4 {
		t.Fatalf("Margin %v, expected 0.0962", margin)
	}
	lower, upper := WilsonInterval(0, 20, 0.95)
	if math.Abs(lower) > 1e-12 || upper <= 0 {
		t.Fatalf("Unexpected interval for zero successes: %v %v", lower, upper)
	}
	if WilsonMargin(0, 0, 0.95) != 0 {
		t.Fatalf("Expected zero margin with no trials")
	}
}

func TestFormatP(t *testing.T) {
	for _, v := range []struct {
		p        float64
		expected string
	}{
		{0.0004, "p < 0.001"},
		{0.0246, "p = 0.025"},
		{math.NaN(), "p = n/a"},
	} {
		if got := FormatP(v.p); got != v.expected {
			t.Fatalf("%v: got %q, expected %q", v.p, got, v.expected)
		}
	}
}
