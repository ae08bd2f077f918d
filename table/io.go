package table

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/carbocation/mamanalysis"
	"github.com/carbocation/pfx"
)

// FromRecords builds a Table from parsed records. The first record is the
// header and the first column is the index. Short rows are padded with
// empty (missing) cells.
func FromRecords(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("table: no header row")
	}

	header := records[0]
	if len(header) == 0 {
		return nil, fmt.Errorf("table: empty header row")
	}
	indexName := strings.TrimSpace(header[0])
	columns := make([]string, len(header)-1)
	for i, h := range header[1:] {
		columns[i] = strings.TrimSpace(h)
	}

	index := make([]string, 0, len(records)-1)
	rows := make([][]string, 0, len(records)-1)
	for line, rec := range records[1:] {
		if len(rec) == 0 || (len(rec) == 1 && strings.TrimSpace(rec[0]) == "") {
			continue
		}
		if len(rec) > len(header) {
			return nil, fmt.Errorf("table: line %d has %d fields, header has %d", line+2, len(rec), len(header))
		}
		row := make([]string, len(columns))
		copy(row, rec[1:])
		index = append(index, strings.TrimSpace(rec[0]))
		rows = append(rows, row)
	}

	return New(indexName, columns, index, rows)
}

// Read parses delimited text. A zero delim is sniffed from the content.
func Read(r io.Reader, delim rune) (*Table, error) {
	records, err := readRecords(r, delim)
	if err != nil {
		return nil, err
	}
	return FromRecords(records)
}

// readRecords parses ragged delimited text, as written by reports that
// stack several blocks in one file.
func readRecords(r io.Reader, delim rune) ([][]string, error) {
	if delim == 0 {
		var err error
		delim, r, err = mamanalysis.SniffDelimiter(r)
		if err != nil {
			return nil, pfx.Err(err)
		}
	}

	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, pfx.Err(err)
	}
	return records, nil
}

// ReadRecords returns the raw rows of a local or gs:// delimited file
// without interpreting a header.
func ReadRecords(ctx context.Context, path string) ([][]string, error) {
	in, err := mamanalysis.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	records, err := readRecords(in, 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// ReadFile opens a local or gs:// path, decompressing as needed, and
// parses it with a sniffed delimiter.
func ReadFile(ctx context.Context, path string) (*Table, error) {
	in, err := mamanalysis.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	t, err := Read(in, 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// WriteCSV writes the table with its index as the first column.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	header := append([]string{t.IndexName}, t.Columns...)
	if err := cw.Write(header); err != nil {
		return pfx.Err(err)
	}
	for i, row := range t.Rows {
		if err := cw.Write(append([]string{t.Index[i]}, row...)); err != nil {
			return pfx.Err(err)
		}
	}

	cw.Flush()
	return pfx.Err(cw.Error())
}
