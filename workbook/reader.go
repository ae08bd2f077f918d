package workbook

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/carbocation/mamanalysis/table"
	"github.com/carbocation/pfx"
	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// Records returns the rows of one sheet of an XLSX or XLS file. When the
// preferred sheet does not exist (or is empty) the first sheet is used. The
// name of the sheet actually read is returned.
func Records(path, preferred string) ([][]string, string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xls":
		return xlsRecords(path, preferred)
	default:
		return xlsxRecords(path, preferred)
	}
}

func xlsxRecords(path, preferred string) ([][]string, string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, "", pfx.Err(err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, "", fmt.Errorf("%s has no sheets", path)
	}

	sheet := sheets[0]
	found := false
	for _, s := range sheets {
		if s == preferred {
			sheet, found = s, true
		}
	}
	if preferred != "" && !found {
		log.Printf("Sheet %q not found in %s; reading the first sheet (%q)\n", preferred, path, sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, sheet, pfx.Err(err)
	}
	return rows, sheet, nil
}

func xlsRecords(path, preferred string) ([][]string, string, error) {
	spreadsheet, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, "", pfx.Err(err)
	}

	if spreadsheet.NumSheets() == 0 {
		return nil, "", fmt.Errorf("%s has no sheets", path)
	}
	sheet := spreadsheet.GetSheet(0)
	for sheetID := 0; sheetID < spreadsheet.NumSheets(); sheetID++ {
		if s := spreadsheet.GetSheet(sheetID); s != nil && s.Name == preferred {
			sheet = s
		}
	}
	if sheet == nil {
		return nil, "", fmt.Errorf("%s: first sheet was nil", path)
	}
	if preferred != "" && sheet.Name != preferred {
		log.Printf("Sheet %q not found in %s; reading the first sheet (%q)\n", preferred, path, sheet.Name)
	}

	var records [][]string
	for rowID := 0; rowID <= int(sheet.MaxRow); rowID++ {
		row := sheet.Row(rowID)
		if row == nil {
			continue
		}
		var rec []string
		for colID := 0; colID <= row.LastCol(); colID++ {
			rec = append(rec, row.Col(colID))
		}
		records = append(records, rec)
	}
	return records, sheet.Name, nil
}

// ReadTable reads one sheet as a table indexed by its first column.
func ReadTable(path, preferred string) (*table.Table, error) {
	records, sheet, err := Records(path, preferred)
	if err != nil {
		return nil, err
	}
	t, err := table.FromRecords(records)
	if err != nil {
		return nil, fmt.Errorf("%s [%s]: %w", path, sheet, err)
	}
	return t, nil
}

// IsSpreadsheet reports whether the path names an Excel file.
func IsSpreadsheet(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xls":
		return true
	}
	return false
}

// Load reads a table from a spreadsheet (preferring the named sheet) or
// from a delimited, possibly compressed, local or gs:// file.
func Load(ctx context.Context, path, preferredSheet string) (*table.Table, error) {
	if IsSpreadsheet(path) {
		return ReadTable(path, preferredSheet)
	}
	return table.ReadFile(ctx, path)
}

// FindBlock locates a report block by the text of its first header cell and
// returns the rows beneath it up to the next blank row.
func FindBlock(records [][]string, heading string) ([][]string, bool) {
	for i, rec := range records {
		if len(rec) == 0 || strings.TrimSpace(rec[0]) != heading {
			continue
		}
		var out [][]string
		for _, r := range records[i+1:] {
			if len(r) == 0 || strings.TrimSpace(r[0]) == "" {
				break
			}
			out = append(out, r)
		}
		return out, true
	}
	return nil, false
}

// LoadRecords returns the raw rows of a spreadsheet sheet or of a
// delimited file.
func LoadRecords(ctx context.Context, path, preferredSheet string) ([][]string, error) {
	if IsSpreadsheet(path) {
		records, _, err := Records(path, preferredSheet)
		return records, err
	}
	return table.ReadRecords(ctx, path)
}
