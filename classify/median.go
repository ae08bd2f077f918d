// Package classify turns per-sample expression into group labels: a median
// split of the summed panel score, and binary "expressed or not" groupings.
package classify

import (
	"errors"
	"fmt"
	"strings"

	"github.com/carbocation/mamanalysis/table"
	"github.com/montanaflynn/stats"
)

var ErrNoEligibleSamples = errors.New("classify: no sample has a value for every panel gene")

type Label string

const (
	Low  Label = "low"
	High Label = "high"
)

// Display is the label as printed on the study's charts.
func (l Label) Display() string {
	switch l {
	case High:
		return "Alta Expressão"
	case Low:
		return "Baixa Expressão"
	}
	return string(l)
}

// TiePolicy decides the label of a sample whose score equals the median.
type TiePolicy int

const (
	// TieLow puts the median itself in the low group.
	TieLow TiePolicy = iota
	// TieHigh puts the median in the high group.
	TieHigh
	// TieExclude leaves samples at the median unlabeled.
	TieExclude
)

func (p TiePolicy) String() string {
	switch p {
	case TieHigh:
		return "high"
	case TieExclude:
		return "exclude"
	}
	return "low"
}

func ParseTiePolicy(s string) (TiePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "low":
		return TieLow, nil
	case "high":
		return TieHigh, nil
	case "exclude":
		return TieExclude, nil
	}
	return TieLow, fmt.Errorf("unknown tie policy %q (valid: low, high, exclude)", s)
}

// Score is the sum of a sample's panel gene values.
type Score struct {
	SampleID string
	Value    float64
}

// AggregateScores sums the panel genes for every sample. Samples with a
// missing value for any gene, and every sample when a gene column is
// absent, are left out and listed in ineligible.
func AggregateScores(t *table.Table, genes []string) (scores []Score, ineligible []string, absent []string) {
	absent = t.Missing(genes...)
	if len(absent) > 0 {
		return nil, append([]string(nil), t.Index...), absent
	}

Rows:
	for i, id := range t.Index {
		sum := 0.0
		for _, g := range genes {
			v := t.Float(i, g)
			if !v.Valid {
				ineligible = append(ineligible, id)
				continue Rows
			}
			sum += v.Float64
		}
		scores = append(scores, Score{SampleID: id, Value: sum})
	}

	return scores, ineligible, nil
}

// Assignment is one sample's score and label.
type Assignment struct {
	SampleID string
	Score    float64
	Label    Label
}

// Split is the outcome of a median split.
type Split struct {
	Median      float64
	Policy      TiePolicy
	Assignments []Assignment

	// AtMedian lists samples left unlabeled under TieExclude.
	AtMedian []string
	// Ineligible lists samples that had no score.
	Ineligible []string
	// AbsentGenes lists panel genes that were not columns of the table.
	AbsentGenes []string
}

// MedianSplit labels each score against the median of all scores. The
// median of an even count is the mean of the two central values.
func MedianSplit(scores []Score, policy TiePolicy) (Split, error) {
	if len(scores) == 0 {
		return Split{Policy: policy}, ErrNoEligibleSamples
	}

	values := make(stats.Float64Data, len(scores))
	for i, s := range scores {
		values[i] = s.Value
	}
	median, err := stats.Median(values)
	if err != nil {
		return Split{Policy: policy}, err
	}

	split := Split{Median: median, Policy: policy}
	for _, s := range scores {
		label := Low
		switch {
		case s.Value > median:
			label = High
		case s.Value == median && policy == TieHigh:
			label = High
		case s.Value == median && policy == TieExclude:
			split.AtMedian = append(split.AtMedian, s.SampleID)
			continue
		}
		split.Assignments = append(split.Assignments, Assignment{SampleID: s.SampleID, Score: s.Value, Label: label})
	}

	return split, nil
}

// ByMedian scores the panel genes and splits at the median.
func ByMedian(t *table.Table, genes []string, policy TiePolicy) (Split, error) {
	scores, ineligible, absent := AggregateScores(t, genes)
	split, err := MedianSplit(scores, policy)
	split.Ineligible = ineligible
	split.AbsentGenes = absent
	if err != nil && len(absent) > 0 {
		return split, fmt.Errorf("%w: missing columns %s", err, strings.Join(absent, ", "))
	}
	return split, err
}

// Label returns the label of one sample.
func (s Split) Label(sampleID string) (Label, bool) {
	for _, a := range s.Assignments {
		if a.SampleID == sampleID {
			return a.Label, true
		}
	}
	return "", false
}

// Groups returns the sample ids of each label, in input order.
func (s Split) Groups() map[Label][]string {
	out := map[Label][]string{}
	for _, a := range s.Assignments {
		out[a.Label] = append(out[a.Label], a.SampleID)
	}
	return out
}

// Counts returns the size of the high and low groups.
func (s Split) Counts() (high, low int) {
	for _, a := range s.Assignments {
		if a.Label == High {
			high++
		} else {
			low++
		}
	}
	return high, low
}

// Scores returns the labeled scores in input order.
func (s Split) Scores() []float64 {
	out := make([]float64, len(s.Assignments))
	for i, a := range s.Assignments {
		out[i] = a.Score
	}
	return out
}
