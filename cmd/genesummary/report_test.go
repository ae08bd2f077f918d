package main

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/carbocation/mamanalysis/cohort"
	"github.com/carbocation/mamanalysis/genepanel"
	"github.com/carbocation/mamanalysis/table"
	"github.com/carbocation/mamanalysis/workbook"
	"github.com/google/go-cmp/cmp"
)

func testReport(t *testing.T) *report {
	t.Helper()

	subtypes := []string{"LumA", "LumB", "Basal", "Her2", "NA"}
	var index []string
	var rows [][]string
	for i := 0; i < 30; i++ {
		index = append(index, fmt.Sprintf("TCGA-AA-%04d-01", i))
		rows = append(rows, []string{
			fmt.Sprintf("%d", 0+(i%3)),
			fmt.Sprintf("%d", i%2),
			subtypes[i%len(subtypes)],
			fmt.Sprintf("%d", 100+30*i),
			fmt.Sprintf("%d", (i/2)%2),
		})
	}
	tab, err := table.New("sample", []string{"CCR3", "IL5RA", "PAM50Call_RNAseq", "OS_Time_nature2012", "OS_event_nature2012"}, index, rows)
	if err != nil {
		t.Fatal(err)
	}

	return &report{
		table:   tab,
		layout:  cohort.Layouts["NATURE2012"],
		panel:   genepanel.Panel{Name: "test", Genes: []string{"CCR3", "IL5RA", "SIGLEC8"}},
		input:   "/data/in.csv",
		output:  "out.xlsx",
		started: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestPrepare(t *testing.T) {
	r := testReport(t)
	if err := r.prepare(); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"CCR3", "IL5RA"}, r.present); diff != "" {
		t.Fatalf("present (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"SIGLEC8"}, r.absent); diff != "" {
		t.Fatalf("absent (-want +got):\n%s", diff)
	}
	if len(r.combos) != r.table.Len() {
		t.Fatalf("got %d combinations for %d samples", len(r.combos), r.table.Len())
	}
}

func TestPrepareNoGenes(t *testing.T) {
	r := testReport(t)
	r.panel = genepanel.Panel{Name: "none", Genes: []string{"XYZ"}}
	if err := r.prepare(); err == nil {
		t.Fatal("expected an error when no gene is present")
	}
}

func TestContinuousRows(t *testing.T) {
	r := testReport(t)
	if err := r.prepare(); err != nil {
		t.Fatal(err)
	}

	// Every combination except Nenhum gets one row per gene it names.
	want := map[string][]string{
		"CCR3":       {"CCR3"},
		"IL5RA":      {"IL5RA"},
		"CCR3_IL5RA": {"CCR3", "IL5RA"},
	}
	got := make(map[string][]string)
	for _, row := range r.continuousRows() {
		got[row.Group] = append(got[row.Group], row.Gene)
		if row.Group == "Nenhum" {
			t.Fatalf("the no-expression group should be skipped")
		}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("rows (-want +got):\n%s", diff)
	}
}

func TestWrite(t *testing.T) {
	r := testReport(t)
	if err := r.prepare(); err != nil {
		t.Fatal(err)
	}
	r.fisher = true

	path := filepath.Join(t.TempDir(), "out.xlsx")
	if err := r.write(path); err != nil {
		t.Fatal(err)
	}

	records, sheet, err := workbook.Records(path, "Analise_Estatistica")
	if err != nil {
		t.Fatal(err)
	}
	if sheet != "Analise_Estatistica" {
		t.Fatalf("read sheet %q", sheet)
	}
	if records[0][0] != "Total de Pacientes" || records[1][0] != "30" {
		t.Fatalf("unexpected header block %v", records[:2])
	}
	if _, ok := workbook.FindBlock(records, "PAM50 Subtipo"); !ok {
		t.Fatalf("PAM50 block missing")
	}

	raw, err := workbook.ReadTable(path, "Dados_PAM50")
	if err != nil {
		t.Fatal(err)
	}
	// The NA subtype rows are dropped.
	if raw.Len() != 24 {
		t.Fatalf("Dados_PAM50 has %d rows, want 24", raw.Len())
	}
	if !raw.Has("PAM50Call_RNAseq", "CCR3", "IL5RA") {
		t.Fatalf("Dados_PAM50 columns %v", raw.Columns)
	}
}
