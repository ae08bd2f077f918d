// Package workbook writes the study's XLSX reports and reads tables back
// from XLSX, legacy XLS and delimited files.
package workbook

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/carbocation/pfx"
	"github.com/xuri/excelize/v2"
)

// Workbook accumulates named sheets of stacked report blocks.
type Workbook struct {
	f      *excelize.File
	sheets []*Sheet
	bold   int
}

func New() (*Workbook, error) {
	f := excelize.NewFile()
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, pfx.Err(err)
	}
	return &Workbook{f: f, bold: bold}, nil
}

// Sheet returns the named sheet, creating it after the existing ones.
func (w *Workbook) Sheet(name string) (*Sheet, error) {
	for _, s := range w.sheets {
		if s.Name == name {
			return s, nil
		}
	}

	if len(w.sheets) == 0 {
		// A new file starts with one default sheet; reuse it.
		if err := w.f.SetSheetName(w.f.GetSheetName(0), name); err != nil {
			return nil, pfx.Err(err)
		}
	} else if _, err := w.f.NewSheet(name); err != nil {
		return nil, pfx.Err(err)
	}

	s := &Sheet{wb: w, Name: name, row: 1, widths: make(map[int]int)}
	w.sheets = append(w.sheets, s)
	return s, nil
}

// SheetNames lists the sheets in creation order.
func (w *Workbook) SheetNames() []string {
	out := make([]string, len(w.sheets))
	for i, s := range w.sheets {
		out[i] = s.Name
	}
	return out
}

// SaveAs sizes each column to its widest cell and writes the file.
func (w *Workbook) SaveAs(path string) error {
	for _, s := range w.sheets {
		for col, width := range s.widths {
			name, err := excelize.ColumnNumberToName(col)
			if err != nil {
				return pfx.Err(err)
			}
			if err := w.f.SetColWidth(s.Name, name, name, float64(width+2)); err != nil {
				return pfx.Err(err)
			}
		}
	}
	if len(w.sheets) > 0 {
		w.f.SetActiveSheet(0)
	}

	if err := w.f.SaveAs(path); err != nil {
		return pfx.Err(fmt.Errorf("%s: %w", path, err))
	}
	return nil
}

func (w *Workbook) Close() error {
	return w.f.Close()
}

// Sheet writes blocks top to bottom; each write starts at the next free row.
type Sheet struct {
	wb     *Workbook
	Name   string
	row    int
	widths map[int]int
}

// Row is the 1-based row the next block starts on.
func (s *Sheet) Row() int { return s.row }

// Skip leaves n blank rows.
func (s *Sheet) Skip(n int) { s.row += n }

// Heading writes a single bold line.
func (s *Sheet) Heading(text string) error {
	cell, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		return pfx.Err(err)
	}
	if err := s.wb.f.SetCellValue(s.Name, cell, text); err != nil {
		return pfx.Err(err)
	}
	if err := s.wb.f.SetCellStyle(s.Name, cell, cell, s.wb.bold); err != nil {
		return pfx.Err(err)
	}
	s.row++
	return nil
}

// Line writes a plain line of text without affecting column widths, for
// notes that run across the sheet.
func (s *Sheet) Line(text string) error {
	cell, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		return pfx.Err(err)
	}
	s.row++
	return pfx.Err(s.wb.f.SetCellValue(s.Name, cell, text))
}

// Table writes a bold header row followed by the data rows.
func (s *Sheet) Table(header []string, rows [][]interface{}) error {
	if len(header) > 0 {
		values := make([]interface{}, len(header))
		for i, h := range header {
			values[i] = h
		}
		if err := s.writeRow(values); err != nil {
			return err
		}
		first, _ := excelize.CoordinatesToCellName(1, s.row-1)
		last, _ := excelize.CoordinatesToCellName(len(header), s.row-1)
		if err := s.wb.f.SetCellStyle(s.Name, first, last, s.wb.bold); err != nil {
			return pfx.Err(err)
		}
	}

	for _, r := range rows {
		if err := s.writeRow(r); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sheet) writeRow(values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		return pfx.Err(err)
	}
	if err := s.wb.f.SetSheetRow(s.Name, cell, &values); err != nil {
		return pfx.Err(err)
	}
	for i, v := range values {
		if n := utf8.RuneCountInString(display(v)); n > s.widths[i+1] {
			s.widths[i+1] = n
		}
	}
	s.row++
	return nil
}

func display(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'g', 10, 64)
	case int:
		return strconv.Itoa(x)
	}
	return fmt.Sprint(v)
}
