package survival

import (
	"io"

	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"
)

type stepRow struct {
	Group    string  `csv:"group"`
	Time     float64 `csv:"time_months"`
	AtRisk   int     `csv:"at_risk"`
	Events   int     `csv:"events"`
	Censored int     `csv:"censored"`
	Survival float64 `csv:"survival"`
	Lower    float64 `csv:"ci_lower_95"`
	Upper    float64 `csv:"ci_upper_95"`
}

// WriteSteps writes every step of every curve as one CSV table.
func WriteSteps(w io.Writer, curves ...Curve) error {
	var rows []*stepRow
	for _, c := range curves {
		for _, st := range c.Steps {
			rows = append(rows, &stepRow{
				Group:    c.Label,
				Time:     st.Time,
				AtRisk:   st.AtRisk,
				Events:   st.Events,
				Censored: st.Censored,
				Survival: st.Survival,
				Lower:    st.Lower,
				Upper:    st.Upper,
			})
		}
	}

	return pfx.Err(gocsv.Marshal(&rows, w))
}

// ReadSteps parses a table written by WriteSteps back into curves, keyed by
// group in order of first appearance.
func ReadSteps(r io.Reader) ([]Curve, error) {
	var rows []*stepRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, pfx.Err(err)
	}

	var out []Curve
	pos := make(map[string]int)
	for _, row := range rows {
		i, ok := pos[row.Group]
		if !ok {
			i = len(out)
			pos[row.Group] = i
			out = append(out, Curve{Label: row.Group, N: row.AtRisk})
		}
		out[i].Events += row.Events
		out[i].Steps = append(out[i].Steps, Step{
			Time:     row.Time,
			AtRisk:   row.AtRisk,
			Events:   row.Events,
			Censored: row.Censored,
			Survival: row.Survival,
			Lower:    row.Lower,
			Upper:    row.Upper,
		})
	}
	return out, nil
}
