package survival

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

var ErrNoConvergence = errors.New("survival: Cox model did not converge")

// CoxResult is a fitted single covariate proportional hazards model.
type CoxResult struct {
	N           int
	Events      int
	Coef        float64
	SE          float64
	HazardRatio float64
	Lower95     float64
	Upper95     float64
	Z           float64
	P           float64
	Iterations  int
}

// CoxPH fits h(t|x) = h0(t) exp(beta x) by Newton-Raphson on the partial
// likelihood, using Efron's approximation for tied event times.
func CoxPH(obs []Observation, x []float64) (CoxResult, error) {
	if err := validate(obs); err != nil {
		return CoxResult{}, err
	}
	if len(x) != len(obs) {
		return CoxResult{}, fmt.Errorf("survival: %d covariate values for %d observations", len(x), len(obs))
	}

	order := make([]int, len(obs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return obs[order[a]].Time > obs[order[b]].Time })

	// Centering leaves beta unchanged and keeps exp() in range.
	mean := 0.0
	for _, v := range x {
		mean += v
	}
	mean /= float64(len(x))
	xc := make([]float64, len(x))
	for i, v := range x {
		xc[i] = v - mean
	}

	res := CoxResult{}
	res.N, res.Events = Counts(obs)
	if res.Events == 0 {
		return res, fmt.Errorf("survival: Cox model needs at least one event")
	}

	beta := 0.0
	ll, score, info := efron(obs, xc, order, beta)
	converged := false
	for iter := 1; iter <= 50 && !converged; iter++ {
		res.Iterations = iter
		if info <= 0 || math.IsNaN(info) {
			return res, fmt.Errorf("survival: covariate carries no information")
		}

		step := score / info
		next := beta + step
		nextLL, nextScore, nextInfo := efron(obs, xc, order, next)
		// Halve steps that lower the likelihood.
		for halvings := 0; nextLL < ll && halvings < 20; halvings++ {
			step /= 2
			next = beta + step
			nextLL, nextScore, nextInfo = efron(obs, xc, order, next)
		}

		beta, ll, score, info = next, nextLL, nextScore, nextInfo
		if math.Abs(beta) > 50 {
			return res, ErrNoConvergence
		}
		converged = math.Abs(step) < 1e-9
	}
	if !converged {
		return res, ErrNoConvergence
	}
	if info <= 0 {
		return res, fmt.Errorf("survival: covariate carries no information")
	}

	z := distuv.UnitNormal.Quantile(0.975)
	res.Coef = beta
	res.SE = 1 / math.Sqrt(info)
	res.HazardRatio = math.Exp(beta)
	res.Lower95 = math.Exp(beta - z*res.SE)
	res.Upper95 = math.Exp(beta + z*res.SE)
	res.Z = beta / res.SE
	res.P = 2 * distuv.UnitNormal.Survival(math.Abs(res.Z))

	return res, nil
}

// efron returns the log partial likelihood with its first derivative and the
// observed information at beta. order lists subjects by descending time.
func efron(obs []Observation, x []float64, order []int, beta float64) (ll, score, info float64) {
	var s0, s1, s2 float64
	for i := 0; i < len(order); {
		t := obs[order[i]].Time

		var d0, d1, d2, sumX float64
		deaths := 0
		for ; i < len(order) && obs[order[i]].Time == t; i++ {
			j := order[i]
			w := math.Exp(beta * x[j])
			s0 += w
			s1 += w * x[j]
			s2 += w * x[j] * x[j]
			if obs[j].Event {
				deaths++
				d0 += w
				d1 += w * x[j]
				d2 += w * x[j] * x[j]
				sumX += x[j]
			}
		}
		if deaths == 0 {
			continue
		}

		ll += beta * sumX
		score += sumX
		for l := 0; l < deaths; l++ {
			frac := float64(l) / float64(deaths)
			p0 := s0 - frac*d0
			p1 := s1 - frac*d1
			p2 := s2 - frac*d2
			ll -= math.Log(p0)
			score -= p1 / p0
			info += p2/p0 - (p1/p0)*(p1/p0)
		}
	}
	return ll, score, info
}
