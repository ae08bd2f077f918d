// Package survival estimates and compares survival curves: the Kaplan-Meier
// product-limit estimator, the k-group log-rank test and a single covariate
// Cox proportional hazards model.
package survival

import (
	"errors"
	"fmt"
	"sort"
)

// DaysPerMonth converts follow-up recorded in days to months.
const DaysPerMonth = 30.44

func ToMonths(days float64) float64 {
	return days / DaysPerMonth
}

var ErrNoObservations = errors.New("survival: no observations")

// Observation is one subject's follow-up. Event is true for a death, false
// for a censored subject.
type Observation struct {
	Time  float64
	Event bool
}

// tally is the event table at one distinct time.
type tally struct {
	time     float64
	events   int
	censored int
}

func validate(obs []Observation) error {
	if len(obs) == 0 {
		return ErrNoObservations
	}
	for i, o := range obs {
		if o.Time < 0 || o.Time != o.Time {
			return fmt.Errorf("survival: observation %d has invalid time %v", i, o.Time)
		}
	}
	return nil
}

// tabulate groups observations by distinct time, ascending.
func tabulate(obs []Observation) []tally {
	sorted := append([]Observation(nil), obs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })

	var out []tally
	for _, o := range sorted {
		if len(out) == 0 || out[len(out)-1].time != o.Time {
			out = append(out, tally{time: o.Time})
		}
		if o.Event {
			out[len(out)-1].events++
		} else {
			out[len(out)-1].censored++
		}
	}
	return out
}

// Counts returns the number of subjects and the number of events.
func Counts(obs []Observation) (n, events int) {
	for _, o := range obs {
		if o.Event {
			events++
		}
	}
	return len(obs), events
}
