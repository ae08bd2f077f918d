package classify

import (
	"fmt"
	"strings"
	"testing"

	"github.com/carbocation/mamanalysis/table"
	"github.com/google/go-cmp/cmp"
)

func scoresOf(values ...float64) []Score {
	out := make([]Score, len(values))
	for i, v := range values {
		out[i] = Score{SampleID: fmt.Sprintf("S%d", i+1), Value: v}
	}
	return out
}

func labelsOf(s Split) []Label {
	out := make([]Label, len(s.Assignments))
	for i, a := range s.Assignments {
		out[i] = a.Label
	}
	return out
}

func TestMedianSplitOddCount(t *testing.T) {
	s, err := MedianSplit(scoresOf(10, 20, 30, 40, 50), TieLow)
	if err != nil {
		t.Fatal(err)
	}
	if s.Median != 30 {
		t.Fatalf("Expected median 30, got %v", s.Median)
	}
	if diff := cmp.Diff([]Label{Low, Low, Low, High, High}, labelsOf(s)); diff != "" {
		t.Fatalf("Labels mismatch (-want +got):\n%s", diff)
	}
}

func TestMedianSplitEvenCountIsBalanced(t *testing.T) {
	s, err := MedianSplit(scoresOf(8, 1, 7, 2, 6, 3, 5, 4), TieLow)
	if err != nil {
		t.Fatal(err)
	}
	if s.Median != 4.5 {
		t.Fatalf("Expected median 4.5, got %v", s.Median)
	}
	if high, low := s.Counts(); high != 4 || low != 4 {
		t.Fatalf("Expected 4/4, got %d/%d", high, low)
	}
}

func TestTiePolicies(t *testing.T) {
	scores := scoresOf(1, 2, 2, 2, 3)
	for _, v := range []struct {
		policy   TiePolicy
		expected []Label
		atMedian int
	}{
		{TieLow, []Label{Low, Low, Low, Low, High}, 0},
		{TieHigh, []Label{Low, High, High, High, High}, 0},
		{TieExclude, []Label{Low, High}, 3},
	} {
		s, err := MedianSplit(scores, v.policy)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(v.expected, labelsOf(s)); diff != "" {
			t.Fatalf("%s: labels mismatch (-want +got):\n%s", v.policy, diff)
		}
		if len(s.AtMedian) != v.atMedian {
			t.Fatalf("%s: expected %d at the median, got %v", v.policy, v.atMedian, s.AtMedian)
		}
	}
}

func TestMedianSplitEmpty(t *testing.T) {
	if _, err := MedianSplit(nil, TieLow); err != ErrNoEligibleSamples {
		t.Fatalf("Expected ErrNoEligibleSamples, got %v", err)
	}
}

func TestParseTiePolicy(t *testing.T) {
	for in, expected := range map[string]TiePolicy{"": TieLow, "LOW": TieLow, "high": TieHigh, " exclude ": TieExclude} {
		got, err := ParseTiePolicy(in)
		if err != nil || got != expected {
			t.Fatalf("%q: got %v (%v), expected %v", in, got, err, expected)
		}
	}
	if _, err := ParseTiePolicy("middle"); err == nil {
		t.Fatalf("Expected an error for an unknown policy")
	}
}

const cohortCSV = "sample,CLC,EPX,IL5RA,PRG2\n" +
	"S1,1,1,1,1\n" +
	"S2,0,2,2,2\n" +
	"S3,3,NA,3,3\n" +
	"S4,4,4,4,4\n" +
	"S5,5,5,0,5\n"

func mustRead(t *testing.T, s string) *table.Table {
	t.Helper()
	tab, err := table.Read(strings.NewReader(s), 0)
	if err != nil {
		t.Fatal(err)
	}
	return tab
}

func TestAggregateScoresExcludesMissing(t *testing.T) {
	tab := mustRead(t, cohortCSV)

	scores, ineligible, absent := AggregateScores(tab, []string{"CLC", "EPX", "IL5RA", "PRG2"})
	if len(absent) != 0 {
		t.Fatalf("Unexpected absent genes %v", absent)
	}
	if diff := cmp.Diff([]string{"S3"}, ineligible); diff != "" {
		t.Fatalf("Ineligible mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(scoresOf(4, 6), scores[:2]); diff != "" {
		t.Fatalf("Scores mismatch (-want +got):\n%s", diff)
	}

	split, err := ByMedian(tab, []string{"CLC", "EPX", "IL5RA", "PRG2"}, TieLow)
	if err != nil {
		t.Fatal(err)
	}
	// Scores 4, 6, 16, 15: the median of the eligible samples is 10.5.
	if split.Median != 10.5 {
		t.Fatalf("Expected median 10.5, got %v", split.Median)
	}
	if _, ok := split.Label("S3"); ok {
		t.Fatalf("S3 has a missing gene and must not be labeled")
	}
}

func TestAbsentGeneColumn(t *testing.T) {
	tab := mustRead(t, cohortCSV)
	split, err := ByMedian(tab, []string{"CLC", "TSLP"}, TieLow)
	if err == nil {
		t.Fatalf("Expected an error when a gene column is absent")
	}
	if diff := cmp.Diff([]string{"TSLP"}, split.AbsentGenes); diff != "" {
		t.Fatalf("Absent mismatch (-want +got):\n%s", diff)
	}
}

func TestExcludingAGeneChangesScores(t *testing.T) {
	tab := mustRead(t, cohortCSV)
	with, _, _ := AggregateScores(tab, []string{"CLC", "EPX", "IL5RA", "PRG2"})
	without, _, _ := AggregateScores(tab, []string{"EPX", "IL5RA", "PRG2"})

	for i := range with {
		row, _ := tab.Row(with[i].SampleID)
		clc := tab.Float(row, "CLC").Float64
		if changed := with[i].Value != without[i].Value; changed != (clc != 0) {
			t.Fatalf("%s: CLC %v but score changed=%v", with[i].SampleID, clc, changed)
		}
	}
}

func TestDeterministic(t *testing.T) {
	tab := mustRead(t, cohortCSV)
	genes := []string{"CLC", "EPX", "IL5RA", "PRG2"}
	first, _ := ByMedian(tab, genes, TieLow)
	for i := 0; i < 5; i++ {
		again, _ := ByMedian(tab, genes, TieLow)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("Run %d differs (-first +again):\n%s", i, diff)
		}
	}
}

func TestCombinations(t *testing.T) {
	tab := mustRead(t, cohortCSV)
	combos := Combinations(tab, []string{"PRG2", "EPX", "CLC", "IL5RA", "TSLP"})

	for i, expected := range []Combination{
		{"S1", 4, "CLC_EPX_IL5RA_PRG2"},
		{"S2", 3, "EPX_IL5RA_PRG2"},
		{"S3", 3, "CLC_IL5RA_PRG2"},
		{"S4", 4, "CLC_EPX_IL5RA_PRG2"},
		{"S5", 3, "CLC_EPX_PRG2"},
	} {
		if combos[i] != expected {
			t.Fatalf("Row %d: got %+v, expected %+v", i, combos[i], expected)
		}
	}

	none := Combinations(mustRead(t, "sample,CLC\nS1,0\n"), []string{"CLC"})
	if none[0].Name != NoneExpressed {
		t.Fatalf("Expected %q, got %q", NoneExpressed, none[0].Name)
	}
}

func TestGroupings(t *testing.T) {
	tab := mustRead(t, cohortCSV)

	all := AllExpressedVsRest(tab, []string{"PRG2", "EPX", "CLC", "IL5RA"})
	if diff := cmp.Diff([]string{"CLC_EPX_IL5RA_PRG2", Rest}, all.Order); diff != "" {
		t.Fatalf("Order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{2, 3}, all.Counts()); diff != "" {
		t.Fatalf("Counts mismatch (-want +got):\n%s", diff)
	}

	epx := ExpressedVsNot(tab, "EPX")
	if _, ok := epx.Labels["S3"]; ok {
		t.Fatalf("S3 has no EPX value and must be left out")
	}
	if diff := cmp.Diff([]string{"S1", "S2", "S4", "S5"}, epx.Members(tab.Index, "Expressa EPX")); diff != "" {
		t.Fatalf("Members mismatch (-want +got):\n%s", diff)
	}

	s, _ := MedianSplit(scoresOf(1, 2, 3), TieLow)
	g := FromSplit("CLC", s)
	if diff := cmp.Diff([]int{1, 2}, g.Counts()); diff != "" {
		t.Fatalf("Split counts mismatch (-want +got):\n%s", diff)
	}
}
