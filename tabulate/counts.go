// Package tabulate builds the frequency tables and contingency tests that
// the study reports next to its charts.
package tabulate

import (
	"fmt"
	"math"
	"sort"
)

// Count is one category of a frequency table.
type Count struct {
	Key     string
	N       int
	Percent float64
}

// ValueCounts counts each distinct value, most frequent first and ties in
// key order. Percentages are of len(values).
func ValueCounts(values []string) []Count {
	counts := make(map[string]int)
	for _, v := range values {
		counts[v]++
	}

	out := make([]Count, 0, len(counts))
	for k, n := range counts {
		out = append(out, Count{Key: k, N: n, Percent: 100 * float64(n) / float64(len(values))})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].N != out[j].N {
			return out[i].N > out[j].N
		}
		return out[i].Key < out[j].Key
	})

	return out
}

// Ordered returns counts for the given keys in that order, including keys
// that never occur. Percentages are of the total over those keys only.
func Ordered(values []string, keys []string) []Count {
	want := make(map[string]int, len(keys))
	for i, k := range keys {
		want[k] = i
	}
	out := make([]Count, len(keys))
	for i, k := range keys {
		out[i].Key = k
	}

	total := 0
	for _, v := range values {
		if i, ok := want[v]; ok {
			out[i].N++
			total++
		}
	}
	for i := range out {
		if total > 0 {
			out[i].Percent = 100 * float64(out[i].N) / float64(total)
		}
	}
	return out
}

// Round rounds to the given number of decimals, as the report tables do.
func Round(x float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(x*p) / p
}

// FormatP renders a p-value for a chart annotation.
func FormatP(p float64) string {
	if math.IsNaN(p) {
		return "p = n/a"
	}
	if p < 0.001 {
		return "p < 0.001"
	}
	return fmt.Sprintf("p = %.3f", p)
}
