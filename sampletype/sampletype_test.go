package sampletype

import (
	"math"
	"testing"
)

func TestParse(t *testing.T) {
	for _, v := range []struct {
		barcode  string
		expected Code
	}{
		{"TCGA-A1-A0SB-01A-11R-A144-07", PrimaryTumor},
		{"TCGA-E2-A15K-06", Metastatic},
		{"TCGA-BH-A0B3-11B", NormalTissue},
		{"TCGA-A1-A0SB", Unknown},
		{"sample", Unknown},
		{"", Unknown},
	} {
		if got := Parse(v.barcode); got != v.expected {
			t.Fatalf("%q: got %q, expected %q", v.barcode, got, v.expected)
		}
	}
}

func TestShort(t *testing.T) {
	for c, expected := range map[Code]string{
		PrimaryTumor: "Tumor Sólido Primário",
		Metastatic:   "Metástase",
		NormalTissue: "Tecido Sólido Normal",
		"50":         "Linhagens Celulares",
		Unknown:      UnknownDetail,
	} {
		if got := c.Short(); got != expected {
			t.Fatalf("%s: got %q, expected %q", c, got, expected)
		}
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]string{
		"TCGA-A1-A0SB-11A",
		"TCGA-A1-A0SC-01A",
		"TCGA-A1-A0SD-01A",
		"TCGA-A1-A0SE-01B",
		"bogus",
	})

	if len(s) != 3 {
		t.Fatalf("Expected 3 codes, got %+v", s)
	}
	if s[0].Code != PrimaryTumor || s[0].Count != 3 || math.Abs(s[0].Percent-60) > 1e-9 {
		t.Fatalf("Unexpected first row %+v", s[0])
	}
	if s[2].Code != Unknown || s[2].Description != UnknownDetail {
		t.Fatalf("Expected unknown last, got %+v", s[2])
	}
}
