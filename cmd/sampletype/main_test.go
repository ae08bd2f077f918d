package main

import (
	"path/filepath"
	"testing"

	"github.com/carbocation/mamanalysis/sampletype"
	"github.com/carbocation/mamanalysis/workbook"
)

var barcodes = []string{
	"TCGA-A1-A0SB-01A",
	"TCGA-A1-A0SD-01A",
	"TCGA-A1-A0SE-01A",
	"TCGA-A1-A0SF-11A",
	"TCGA-A1-A0SG-06A",
	"garbage",
}

func TestPlot(t *testing.T) {
	summary := sampletype.Summarize(barcodes)
	p := plot(summary, len(barcodes))

	if len(p.Bars) != 4 {
		t.Fatalf("got %d bars, want 4", len(p.Bars))
	}
	first := p.Bars[0]
	if first.Label != "01 - Tumor Sólido Primário" {
		t.Fatalf("label %q", first.Label)
	}
	if first.Value != 3 {
		t.Fatalf("value %v, want 3", first.Value)
	}
	if first.Annotation[0] != "n=3" || first.Annotation[1] != "(50.00%)" {
		t.Fatalf("annotation %v", first.Annotation)
	}
	// The margin is in samples, so it is bounded by the count itself.
	if first.Margin <= 0 || first.Margin > first.Value {
		t.Fatalf("margin %v out of range", first.Margin)
	}
	if p.Headroom != 1.35 || p.Color != barColor {
		t.Fatalf("unexpected style %v %v", p.Headroom, p.Color)
	}
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resumo.xlsx")
	if err := writeWorkbook(path, sampletype.Summarize(barcodes)); err != nil {
		t.Fatal(err)
	}

	records, sheet, err := workbook.Records(path, "Resumo Estatístico")
	if err != nil {
		t.Fatal(err)
	}
	if sheet != "Resumo Estatístico" {
		t.Fatalf("sheet %q", sheet)
	}
	if len(records) != 5 {
		t.Fatalf("got %d rows, want a header and 4 codes", len(records))
	}
	if records[1][0] != "01" || records[1][2] != "3" || records[1][3] != "50" {
		t.Fatalf("first row %v", records[1])
	}
}
