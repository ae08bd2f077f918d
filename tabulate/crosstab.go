package tabulate

import (
	"errors"
	"fmt"
	"math"
	"sort"

	fet "github.com/glycerine/golang-fisher-exact"
	"github.com/tokenme/probab/dst"
	"gonum.org/v1/gonum/stat/distuv"
)

// Crosstab is a contingency table of two categorical variables.
type Crosstab struct {
	RowKeys []string
	ColKeys []string
	Cells   [][]int
}

// NewCrosstab cross-tabulates paired values. Keys are sorted unless an
// explicit order is given; pairs with a key outside the given order are
// skipped.
func NewCrosstab(rows, cols []string, rowOrder, colOrder []string) (Crosstab, error) {
	if len(rows) != len(cols) {
		return Crosstab{}, fmt.Errorf("tabulate: %d row values for %d column values", len(rows), len(cols))
	}

	c := Crosstab{RowKeys: keysOf(rows, rowOrder), ColKeys: keysOf(cols, colOrder)}
	rpos, cpos := positions(c.RowKeys), positions(c.ColKeys)
	c.Cells = make([][]int, len(c.RowKeys))
	for i := range c.Cells {
		c.Cells[i] = make([]int, len(c.ColKeys))
	}

	for i := range rows {
		r, rok := rpos[rows[i]]
		k, cok := cpos[cols[i]]
		if rok && cok {
			c.Cells[r][k]++
		}
	}
	return c, nil
}

func keysOf(values, order []string) []string {
	if len(order) > 0 {
		return append([]string(nil), order...)
	}
	seen := make(map[string]struct{})
	var out []string
	for _, v := range values {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func positions(keys []string) map[string]int {
	out := make(map[string]int, len(keys))
	for i, k := range keys {
		out[k] = i
	}
	return out
}

func (c Crosstab) RowTotals() []int {
	out := make([]int, len(c.RowKeys))
	for i, row := range c.Cells {
		for _, v := range row {
			out[i] += v
		}
	}
	return out
}

func (c Crosstab) ColTotals() []int {
	out := make([]int, len(c.ColKeys))
	for _, row := range c.Cells {
		for j, v := range row {
			out[j] += v
		}
	}
	return out
}

func (c Crosstab) Total() int {
	n := 0
	for _, v := range c.RowTotals() {
		n += v
	}
	return n
}

// ColumnPercent expresses each cell as a percentage of its column.
func (c Crosstab) ColumnPercent() [][]float64 {
	totals := c.ColTotals()
	out := make([][]float64, len(c.Cells))
	for i, row := range c.Cells {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			if totals[j] > 0 {
				out[i][j] = 100 * float64(v) / float64(totals[j])
			}
		}
	}
	return out
}

// RowPercent expresses each cell as a percentage of its row.
func (c Crosstab) RowPercent() [][]float64 {
	totals := c.RowTotals()
	out := make([][]float64, len(c.Cells))
	for i, row := range c.Cells {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			if totals[i] > 0 {
				out[i][j] = 100 * float64(v) / float64(totals[i])
			}
		}
	}
	return out
}

// Compact drops rows and columns whose totals are zero.
func (c Crosstab) Compact() Crosstab {
	rt, ct := c.RowTotals(), c.ColTotals()
	out := Crosstab{}
	var keepCols []int
	for j, n := range ct {
		if n > 0 {
			keepCols = append(keepCols, j)
			out.ColKeys = append(out.ColKeys, c.ColKeys[j])
		}
	}
	for i, n := range rt {
		if n == 0 {
			continue
		}
		out.RowKeys = append(out.RowKeys, c.RowKeys[i])
		row := make([]int, len(keepCols))
		for k, j := range keepCols {
			row[k] = c.Cells[i][j]
		}
		out.Cells = append(out.Cells, row)
	}
	return out
}

var ErrDegenerateTable = errors.New("tabulate: the table needs at least two non-empty rows and columns")

// ChiSquareResult is a test of independence.
type ChiSquareResult struct {
	Statistic float64
	DF        int
	P         float64
	// Yates is set when the continuity correction was applied.
	Yates bool
}

// ChiSquare tests independence of rows and columns. Empty rows and columns
// are dropped first. With one degree of freedom the Yates continuity
// correction is applied.
func ChiSquare(c Crosstab) (ChiSquareResult, error) {
	c = c.Compact()
	if len(c.RowKeys) < 2 || len(c.ColKeys) < 2 {
		return ChiSquareResult{}, ErrDegenerateTable
	}

	rt, ct, n := c.RowTotals(), c.ColTotals(), float64(c.Total())
	res := ChiSquareResult{DF: (len(rt) - 1) * (len(ct) - 1)}
	res.Yates = res.DF == 1

	for i, row := range c.Cells {
		for j, v := range row {
			expected := float64(rt[i]) * float64(ct[j]) / n
			d := math.Abs(float64(v) - expected)
			if res.Yates {
				d = math.Max(0, d-0.5)
			}
			res.Statistic += d * d / expected
		}
	}

	res.P = chiSquareSurvival(res.Statistic, res.DF)
	return res, nil
}

func chiSquareSurvival(x float64, df int) (p float64) {
	if df == 1 {
		p = math.NaN()
		defer func() { recover() }()
		p = 1.0 - dst.ChiSquareCDF(1)(x)
		return p
	}
	return distuv.ChiSquared{K: float64(df)}.Survival(x)
}

// FisherExact returns the two-sided p-value of a 2x2 table.
func FisherExact(c Crosstab) (float64, error) {
	if len(c.Cells) != 2 || len(c.Cells[0]) != 2 {
		return math.NaN(), fmt.Errorf("tabulate: Fisher's exact test needs a 2x2 table, got %dx%d", len(c.RowKeys), len(c.ColKeys))
	}
	_, _, _, twop := fet.FisherExactTest(c.Cells[0][0], c.Cells[0][1], c.Cells[1][0], c.Cells[1][1])
	return twop, nil
}
