package main

import (
	"testing"

	"github.com/carbocation/mamanalysis/table"
	"github.com/google/go-cmp/cmp"
)

func TestFrequencies(t *testing.T) {
	tab, err := table.New("sample", []string{"PAM50Call_RNAseq", "IL5", "IL33"},
		[]string{"a", "b", "c", "d", "e", "f"},
		[][]string{
			{"LumA", "1", "0"},
			{"LumA", "0", "2"},
			{"LumA", "3", "4"},
			{"Basal", "0", "NA"},
			{"Normal", "5", "5"},
			{"", "5", "5"},
		})
	if err != nil {
		t.Fatal(err)
	}

	f, err := frequencies(tab, []string{"IL5", "IL33"})
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"LumA", "Basal"}, f.Groups); diff != "" {
		t.Fatalf("groups (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][]int{{2, 2}, {0, 0}}, f.Counts); diff != "" {
		t.Fatalf("counts (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{3, 1}, f.totals); diff != "" {
		t.Fatalf("totals (-want +got):\n%s", diff)
	}
	if got := f.Percent[0][0]; got < 66.6 || got > 66.7 {
		t.Fatalf("LumA IL5 percent %v", got)
	}
}

func TestFrequenciesMissingGene(t *testing.T) {
	tab, err := table.New("sample", []string{"PAM50Call_RNAseq", "IL5"}, []string{"a"}, [][]string{{"LumA", "1"}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := frequencies(tab, []string{"IL5", "TSLP"}); err == nil {
		t.Fatal("expected an error for the missing gene")
	}
}
