package survival

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// LogRankResult compares two or more survival curves.
type LogRankResult struct {
	ChiSquare float64
	DF        int
	P         float64
	Observed  []float64
	Expected  []float64
}

// LogRank tests whether the groups share one survival function. With k
// groups the statistic is chi-square with k-1 degrees of freedom.
func LogRank(groups ...[]Observation) (LogRankResult, error) {
	k := len(groups)
	if k < 2 {
		return LogRankResult{}, fmt.Errorf("survival: log-rank needs at least 2 groups, got %d", k)
	}
	for i, g := range groups {
		if err := validate(g); err != nil {
			return LogRankResult{}, fmt.Errorf("group %d: %w", i+1, err)
		}
	}

	type entry struct {
		time  float64
		group int
		event bool
	}
	var all []entry
	for g, obs := range groups {
		for _, o := range obs {
			all = append(all, entry{o.Time, g, o.Event})
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].time < all[j].time })

	atRisk := make([]float64, k)
	for g, obs := range groups {
		atRisk[g] = float64(len(obs))
	}

	res := LogRankResult{
		DF:       k - 1,
		Observed: make([]float64, k),
		Expected: make([]float64, k),
	}
	v := mat.NewDense(k, k, nil)

	for i := 0; i < len(all); {
		t := all[i].time
		deaths := make([]float64, k)
		leaving := make([]float64, k)
		for ; i < len(all) && all[i].time == t; i++ {
			leaving[all[i].group]++
			if all[i].event {
				deaths[all[i].group]++
			}
		}

		n, d := 0.0, 0.0
		for g := range groups {
			n += atRisk[g]
			d += deaths[g]
		}
		if d > 0 {
			for g := range groups {
				res.Observed[g] += deaths[g]
				res.Expected[g] += atRisk[g] * d / n
			}
			if n > 1 {
				scale := d * (n - d) / (n - 1)
				for a := 0; a < k; a++ {
					for b := 0; b < k; b++ {
						delta := 0.0
						if a == b {
							delta = 1
						}
						v.Set(a, b, v.At(a, b)+scale*atRisk[a]/n*(delta-atRisk[b]/n))
					}
				}
			}
		}

		for g := range groups {
			atRisk[g] -= leaving[g]
		}
	}

	// The k deviations sum to zero, so the last group is redundant.
	diff := mat.NewVecDense(k-1, nil)
	for g := 0; g < k-1; g++ {
		diff.SetVec(g, res.Observed[g]-res.Expected[g])
	}
	sub := mat.DenseCopyOf(v.Slice(0, k-1, 0, k-1))

	// Without any event there is no evidence of a difference.
	if mat.Equal(sub, mat.NewDense(k-1, k-1, nil)) {
		res.ChiSquare, res.P = 0, 1
		return res, nil
	}

	var x mat.VecDense
	if err := x.SolveVec(sub, diff); err != nil {
		return res, fmt.Errorf("survival: log-rank variance is singular: %w", err)
	}
	res.ChiSquare = mat.Dot(diff, &x)
	res.P = distuv.ChiSquared{K: float64(res.DF)}.Survival(res.ChiSquare)

	return res, nil
}
