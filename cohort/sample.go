package cohort

import (
	"github.com/carbocation/mamanalysis/sampletype"
	"github.com/carbocation/mamanalysis/survival"
	"github.com/carbocation/mamanalysis/table"
	"gopkg.in/guregu/null.v3"
)

// PAM50 subtypes in the order the study plots them. Normal-like samples are
// counted but left off the charts.
var PAM50Order = []string{"LumA", "LumB", "Her2", "Basal"}

const PAM50NormalLike = "Normal"

// Sample is one row of the merged cohort table.
type Sample struct {
	ID      string
	Type    sampletype.Code
	Subtype string

	// Time is in months.
	Time  null.Float
	Event null.Bool
}

// HasSurvival reports whether both survival fields are present.
func (s Sample) HasSurvival() bool {
	return s.Time.Valid && s.Event.Valid && s.Time.Float64 >= 0
}

// Samples reads every row of t through the layout. Missing columns leave the
// corresponding fields invalid rather than failing.
func Samples(t *table.Table, layout Layout) []Sample {
	out := make([]Sample, t.Len())
	for i, id := range t.Index {
		s := Sample{
			ID:   id,
			Type: sampletype.Parse(id),
		}
		if layout.SubtypeColumn != "" {
			if v := t.String(i, layout.SubtypeColumn); !table.IsMissing(v) {
				s.Subtype = v
			}
		}
		if tm := t.Float(i, layout.TimeColumn); tm.Valid {
			if layout.TimeInMonths {
				s.Time = tm
			} else {
				s.Time = null.FloatFrom(survival.ToMonths(tm.Float64))
			}
		}
		s.Event = t.Bool(i, layout.EventColumn)
		out[i] = s
	}
	return out
}

// Observations collects the survival records of the named samples, skipping
// ids without survival data. The returned slice of ids lines up with the
// observations.
func Observations(samples []Sample, ids []string) ([]survival.Observation, []string) {
	byID := make(map[string]Sample, len(samples))
	for _, s := range samples {
		if _, dup := byID[s.ID]; !dup {
			byID[s.ID] = s
		}
	}

	var obs []survival.Observation
	var kept []string
	for _, id := range ids {
		s, ok := byID[id]
		if !ok || !s.HasSurvival() {
			continue
		}
		obs = append(obs, survival.Observation{Time: s.Time.Float64, Event: s.Event.Bool})
		kept = append(kept, id)
	}
	return obs, kept
}

// Subtypes maps sample id to PAM50 call for samples that have one.
func Subtypes(samples []Sample) map[string]string {
	out := make(map[string]string)
	for _, s := range samples {
		if s.Subtype != "" {
			out[s.ID] = s.Subtype
		}
	}
	return out
}
