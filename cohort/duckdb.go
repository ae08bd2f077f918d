package cohort

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/carbocation/mamanalysis/table"
	"github.com/carbocation/pfx"
	"github.com/jmoiron/sqlx"
	_ "github.com/marcboeker/go-duckdb"
)

// DefaultSurvivalTable is the table name used by the TCGA survival exports
// loaded into DuckDB.
const DefaultSurvivalTable = "tcga_survival_data"

// LoadDuckDB reads a whole table from a DuckDB database file. The column
// named idColumn becomes the index; when idColumn is empty the first column
// is used.
func LoadDuckDB(ctx context.Context, path, tableName, idColumn string) (*table.Table, error) {
	db, err := sqlx.Open("duckdb", path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer db.Close()

	return queryTable(ctx, db, fmt.Sprintf("SELECT * FROM %s", quoteIdentifier(tableName)), idColumn)
}

func queryTable(ctx context.Context, db *sqlx.DB, query, idColumn string) (*table.Table, error) {
	rows, err := db.QueryxContext(ctx, query)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, pfx.Err(err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("query returned no columns")
	}

	idPos := 0
	if idColumn != "" {
		idPos = -1
		for i, c := range columns {
			if c == idColumn {
				idPos = i
			}
		}
		if idPos < 0 {
			return nil, fmt.Errorf("no column %q among %v", idColumn, columns)
		}
	}

	header := []string{columns[idPos]}
	for i, c := range columns {
		if i != idPos {
			header = append(header, c)
		}
	}
	records := [][]string{header}

	for rows.Next() {
		vals, err := rows.SliceScan()
		if err != nil {
			return nil, pfx.Err(err)
		}
		rec := []string{formatCell(vals[idPos])}
		for i, v := range vals {
			if i != idPos {
				rec = append(rec, formatCell(v))
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, pfx.Err(err)
	}

	return table.FromRecords(records)
}

// formatCell renders a scanned value as the text a CSV export would carry.
// NULL becomes the empty (missing) cell.
func formatCell(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case bool:
		if x {
			return "1"
		}
		return "0"
	case time.Time:
		return x.Format("2006-01-02")
	}
	return fmt.Sprint(v)
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
