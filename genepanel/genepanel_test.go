package genepanel

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuiltinPanels(t *testing.T) {
	for name, genes := range map[string][]string{
		"eosinophil":  {"CLC", "EPX", "IL5RA", "PRG2"},
		"maintenance": {"IL5", "IL33", "IL25", "TSLP"},
		"recruitment": {"CCL11", "CCL24", "CCL26"},
	} {
		p, err := Lookup(name)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(genes, p.Genes); diff != "" {
			t.Fatalf("%s mismatch (-want +got):\n%s", name, diff)
		}
	}

	if _, err := Lookup("nope"); err == nil {
		t.Fatalf("Expected an error for an unknown panel")
	}
}

func TestWithoutLeavesOriginalIntact(t *testing.T) {
	p, _ := Lookup("eosinophil")

	without, err := p.Without("CLC")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"EPX", "IL5RA", "PRG2"}, without.Genes); diff != "" {
		t.Fatalf("Without mismatch (-want +got):\n%s", diff)
	}
	if !p.Contains("CLC") || len(p.Genes) != 4 {
		t.Fatalf("Original panel was modified: %v", p.Genes)
	}
	if _, err := p.Without("TSLP"); err == nil {
		t.Fatalf("Expected an error removing a gene outside the panel")
	}

	single := Panel{Name: "one", Genes: []string{"IL5"}}
	if _, err := single.Without("IL5"); err == nil {
		t.Fatalf("Expected an error emptying a panel")
	}
}

func TestParse(t *testing.T) {
	p, err := Lookup(" ccl24, CCL11,ccl24 ,")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"CCL24", "CCL11"}, p.Genes); diff != "" {
		t.Fatalf("Parse mismatch (-want +got):\n%s", diff)
	}
	if p.Name != "CCL24_CCL11" {
		t.Fatalf("Unexpected name %q", p.Name)
	}
}

func TestReadStudy(t *testing.T) {
	doc := `
panels:
  - name: th2
    genes: [IL4, IL5, IL13]
layout:
  name: MYCOHORT
  time: days_to_death
  event: vital_status
`
	s, err := ReadStudy(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Panels) != 1 || s.Panels[0].Name != "th2" {
		t.Fatalf("Unexpected panels: %+v", s.Panels)
	}
	if s.Layout == nil || s.Layout.Time != "days_to_death" {
		t.Fatalf("Unexpected layout: %+v", s.Layout)
	}

	s.Register()
	defer delete(Panels, "th2")
	if p, err := Lookup("th2"); err != nil || len(p.Genes) != 3 {
		t.Fatalf("Registered panel not found: %+v %v", p, err)
	}
}

func TestReadStudyRejectsIncompletePanel(t *testing.T) {
	if _, err := ReadStudy(strings.NewReader("panels:\n  - name: empty\n")); err == nil {
		t.Fatalf("Expected an error for a panel without genes")
	}
	if _, err := ReadStudy(strings.NewReader("colour: blue\n")); err == nil {
		t.Fatalf("Expected an error for an unknown field")
	}
}
