package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	records := [][]string{
		{"Total de Pacientes"},
		{"1215"},
		{},
		{"PAM50 Subtipo", "Absoluto", "Porcentagem"},
		{"LumA", "433", "35.64"},
		{"LumB", "194", "15.97"},
		{"Basal", "141", "11.6"},
		{"Normal", "118", "9.71"},
		{"Her2", "67", "5.51"},
		{},
		{},
		{"Status Sobrevida (Evento)", "Absoluto", "Porcentagem"},
		{"Vivo", "1000", "82.3"},
	}

	got, err := parse(records)
	if err != nil {
		t.Fatal(err)
	}
	want := counts{
		Subtypes:   map[string]int{"LumA": 433, "LumB": 194, "Basal": 141, "Normal": 118, "Her2": 67},
		Classified: 953,
		Dataset:    1215,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("counts (-want +got):\n%s", diff)
	}
}

func TestParseMissingBlock(t *testing.T) {
	if _, err := parse([][]string{{"Total de Pacientes"}, {"10"}}); err == nil {
		t.Fatal("expected an error without a PAM50 block")
	}
	if _, err := parse([][]string{{"PAM50 Subtipo"}, {"LumA", "1"}}); err == nil {
		t.Fatal("expected an error without a total")
	}
}

func TestPlotFallback(t *testing.T) {
	p := plot(fallback)

	var labels, annotations []string
	for _, b := range p.Bars {
		labels = append(labels, b.Label)
		annotations = append(annotations, b.Annotation[0])
	}
	if diff := cmp.Diff([]string{"LumA", "LumB", "Her2", "Basal"}, labels); diff != "" {
		t.Fatalf("labels (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"45.4%", "20.4%", "7.0%", "14.8%"}, annotations); diff != "" {
		t.Fatalf("annotations (-want +got):\n%s", diff)
	}
	if p.Bars[0].Color != "#1f77b4" || p.Bars[3].Color != "#d62728" {
		t.Fatalf("unexpected colours %q %q", p.Bars[0].Color, p.Bars[3].Color)
	}
}
