// Package table holds the labeled, string-celled tables that every pipeline
// reads its expression, clinical and survival data into. Cells are kept as
// the raw text from the source file and converted on access, so missing
// values survive joins and transposes untouched.
package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/guregu/null.v3"
)

// Table is a row-indexed table. The index column holds the sample (or gene)
// identifier and is not part of Columns.
type Table struct {
	IndexName string
	Columns   []string
	Index     []string
	Rows      [][]string

	colPos map[string]int
	rowPos map[string]int
}

// New builds a Table from an index and rows. Every row must be as wide as
// columns. When an identifier repeats, lookups by id resolve to its first
// row.
func New(indexName string, columns, index []string, rows [][]string) (*Table, error) {
	if len(index) != len(rows) {
		return nil, fmt.Errorf("table: %d index entries for %d rows", len(index), len(rows))
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("table: row %q has %d cells, expected %d", index[i], len(row), len(columns))
		}
	}

	t := &Table{
		IndexName: indexName,
		Columns:   columns,
		Index:     index,
		Rows:      rows,
	}
	t.reindex()

	return t, nil
}

func (t *Table) reindex() {
	t.colPos = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		if _, exists := t.colPos[c]; !exists {
			t.colPos[c] = i
		}
	}
	t.rowPos = make(map[string]int, len(t.Index))
	for i, id := range t.Index {
		if _, exists := t.rowPos[id]; !exists {
			t.rowPos[id] = i
		}
	}
}

// Len is the number of rows.
func (t *Table) Len() int { return len(t.Index) }

// Has reports whether every named column is present.
func (t *Table) Has(cols ...string) bool {
	for _, c := range cols {
		if _, ok := t.colPos[c]; !ok {
			return false
		}
	}
	return true
}

// Missing returns the named columns that are absent, in the order given.
func (t *Table) Missing(cols ...string) []string {
	var out []string
	for _, c := range cols {
		if !t.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// Row returns the position of the first row with the given id.
func (t *Table) Row(id string) (int, bool) {
	i, ok := t.rowPos[id]
	return i, ok
}

// String returns the raw cell text, trimmed. Unknown columns yield "".
func (t *Table) String(row int, col string) string {
	j, ok := t.colPos[col]
	if !ok {
		return ""
	}
	return strings.TrimSpace(t.Rows[row][j])
}

// Column returns the raw values of one column in row order.
func (t *Table) Column(col string) []string {
	out := make([]string, t.Len())
	for i := range t.Rows {
		out[i] = t.String(i, col)
	}
	return out
}

// IsMissing reports whether a raw cell is one of the spellings used for a
// missing value by the Xena, cBioPortal and pandas exports.
func IsMissing(cell string) bool {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "", "na", "nan", "null", "none", "n/a", "[not available]", "[not applicable]":
		return true
	}
	return false
}

// Float parses a numeric cell. Missing, malformed and infinite cells are
// invalid.
func (t *Table) Float(row int, col string) null.Float {
	cell := t.String(row, col)
	if IsMissing(cell) {
		return null.Float{}
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return null.Float{}
	}
	return null.FloatFrom(f)
}

// Bool parses an event indicator. Numbers are true when non-zero; the
// common spellings of vital status are understood as well.
func (t *Table) Bool(row int, col string) null.Bool {
	cell := t.String(row, col)
	if IsMissing(cell) {
		return null.Bool{}
	}
	switch strings.ToLower(cell) {
	case "true", "yes", "dead", "deceased", "1:deceased":
		return null.BoolFrom(true)
	case "false", "no", "alive", "living", "0:living":
		return null.BoolFrom(false)
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return null.Bool{}
	}
	return null.BoolFrom(f != 0)
}

// Drop returns a copy without the named columns. Absent names are ignored.
func (t *Table) Drop(cols ...string) *Table {
	drop := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		drop[c] = struct{}{}
	}

	var keep []string
	for _, c := range t.Columns {
		if _, skip := drop[c]; !skip {
			keep = append(keep, c)
		}
	}

	out, _ := t.Select(keep...)
	return out
}

// Select returns a copy with only the named columns, in the order given.
func (t *Table) Select(cols ...string) (*Table, error) {
	pos := make([]int, len(cols))
	for i, c := range cols {
		j, ok := t.colPos[c]
		if !ok {
			return nil, fmt.Errorf("table: no column %q", c)
		}
		pos[i] = j
	}

	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		r := make([]string, len(pos))
		for k, j := range pos {
			r[k] = row[j]
		}
		rows[i] = r
	}

	return New(t.IndexName, append([]string(nil), cols...), append([]string(nil), t.Index...), rows)
}

// Filter returns a copy holding only the rows for which keep is true.
func (t *Table) Filter(keep func(row int) bool) *Table {
	var index []string
	var rows [][]string
	for i := range t.Rows {
		if keep(i) {
			index = append(index, t.Index[i])
			rows = append(rows, t.Rows[i])
		}
	}

	out, _ := New(t.IndexName, t.Columns, index, rows)
	return out
}

// Transpose swaps rows and columns: a gene x sample matrix becomes a
// sample x gene table indexed by sample.
func (t *Table) Transpose(indexName string) *Table {
	rows := make([][]string, len(t.Columns))
	for j := range t.Columns {
		r := make([]string, len(t.Index))
		for i := range t.Rows {
			r[i] = t.Rows[i][j]
		}
		rows[j] = r
	}

	out, _ := New(indexName, append([]string(nil), t.Index...), append([]string(nil), t.Columns...), rows)
	return out
}

// Join is an inner join on the index. Rows of t keep their order; rows with
// no partner in other are dropped, and the number dropped from each side is
// returned. Columns of other whose name is taken are suffixed with "_right",
// then "_right2" and so on until the name is unique.
func (t *Table) Join(other *Table) (*Table, JoinStats) {
	stats := JoinStats{Left: t.Len(), Right: other.Len()}

	columns := append([]string(nil), t.Columns...)
	taken := make(map[string]struct{}, len(t.Columns)+len(other.Columns))
	for _, c := range t.Columns {
		taken[c] = struct{}{}
	}
	for _, c := range other.Columns {
		if _, ok := taken[c]; ok {
			base := c + "_right"
			c = base
			for n := 2; ; n++ {
				if _, ok := taken[c]; !ok {
					break
				}
				c = fmt.Sprintf("%s%d", base, n)
			}
		}
		taken[c] = struct{}{}
		columns = append(columns, c)
	}

	matchedRight := make(map[int]struct{})
	var index []string
	var rows [][]string
	for i, id := range t.Index {
		j, ok := other.Row(id)
		if !ok {
			stats.DroppedLeft++
			continue
		}
		matchedRight[j] = struct{}{}

		row := make([]string, 0, len(columns))
		row = append(row, t.Rows[i]...)
		row = append(row, other.Rows[j]...)
		index = append(index, id)
		rows = append(rows, row)
	}
	stats.DroppedRight = other.Len() - len(matchedRight)
	stats.Kept = len(index)

	out, _ := New(t.IndexName, columns, index, rows)
	return out, stats
}

// JoinStats summarizes an inner join.
type JoinStats struct {
	Left, Right  int
	Kept         int
	DroppedLeft  int
	DroppedRight int
}

func (s JoinStats) String() string {
	return fmt.Sprintf("kept %d rows (left %d, right %d; dropped %d left-only and %d right-only ids)",
		s.Kept, s.Left, s.Right, s.DroppedLeft, s.DroppedRight)
}
