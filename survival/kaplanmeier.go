package survival

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Step is the estimate just after one distinct follow-up time.
type Step struct {
	Time     float64 `csv:"time"`
	AtRisk   int     `csv:"at_risk"`
	Events   int     `csv:"events"`
	Censored int     `csv:"censored"`
	Survival float64 `csv:"survival"`
	Lower    float64 `csv:"ci_lower_95"`
	Upper    float64 `csv:"ci_upper_95"`
}

// Curve is a Kaplan-Meier estimate. Survival is 1 before the first step.
type Curve struct {
	Label  string
	N      int
	Events int
	Steps  []Step
}

// KaplanMeier computes the product-limit estimate with a 95% confidence
// band on the log(-log) scale using Greenwood's variance.
func KaplanMeier(obs []Observation) (Curve, error) {
	if err := validate(obs); err != nil {
		return Curve{}, err
	}

	z := distuv.UnitNormal.Quantile(0.975)

	c := Curve{N: len(obs)}
	atRisk := len(obs)
	s := 1.0
	greenwood := 0.0
	for _, t := range tabulate(obs) {
		if t.events > 0 {
			s *= 1 - float64(t.events)/float64(atRisk)
			if atRisk > t.events {
				greenwood += float64(t.events) / (float64(atRisk) * float64(atRisk-t.events))
			} else {
				greenwood = math.Inf(1)
			}
		}

		lower, upper := logLogBand(s, greenwood, z)
		c.Steps = append(c.Steps, Step{
			Time:     t.time,
			AtRisk:   atRisk,
			Events:   t.events,
			Censored: t.censored,
			Survival: s,
			Lower:    lower,
			Upper:    upper,
		})
		c.Events += t.events
		atRisk -= t.events + t.censored
	}

	return c, nil
}

func logLogBand(s, greenwood, z float64) (lower, upper float64) {
	if s <= 0 || s >= 1 || math.IsInf(greenwood, 1) {
		return s, s
	}
	logS := math.Log(s)
	se := math.Sqrt(greenwood / (logS * logS))
	center := math.Log(-logS)

	lower = math.Exp(-math.Exp(center + z*se))
	upper = math.Exp(-math.Exp(center - z*se))
	return lower, upper
}

// At returns the estimated survival at time t.
func (c Curve) At(t float64) float64 {
	s := 1.0
	for _, st := range c.Steps {
		if st.Time > t {
			break
		}
		s = st.Survival
	}
	return s
}

// AtRiskAt is the number of subjects still under observation at time t.
func (c Curve) AtRiskAt(t float64) int {
	for _, st := range c.Steps {
		if st.Time >= t {
			return st.AtRisk
		}
	}
	return 0
}

// Median is the first time at which survival drops to 0.5 or below. It is
// undefined when the curve never gets there.
func (c Curve) Median() (float64, bool) {
	for _, st := range c.Steps {
		if st.Survival <= 0.5 {
			return st.Time, true
		}
	}
	return 0, false
}

// MaxTime is the last follow-up time on the curve.
func (c Curve) MaxTime() float64 {
	if len(c.Steps) == 0 {
		return 0
	}
	return c.Steps[len(c.Steps)-1].Time
}
