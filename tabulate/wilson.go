package tabulate

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// WilsonInterval is the Wilson score interval for k successes in n trials
// at the given confidence level.
func WilsonInterval(k, n int, confidence float64) (lower, upper float64) {
	if n == 0 {
		return 0, 0
	}
	z := distuv.UnitNormal.Quantile(1 - (1-confidence)/2)
	nf := float64(n)
	p := float64(k) / nf

	center := p + z*z/(2*nf)
	spread := z * math.Sqrt(p*(1-p)/nf+z*z/(4*nf*nf))
	denom := 1 + z*z/nf

	return (center - spread) / denom, (center + spread) / denom
}

// WilsonMargin is the distance from the observed proportion down to the
// lower Wilson bound, used as a symmetric error bar.
func WilsonMargin(k, n int, confidence float64) float64 {
	if n == 0 {
		return 0
	}
	lower, _ := WilsonInterval(k, n, confidence)
	return float64(k)/float64(n) - lower
}
