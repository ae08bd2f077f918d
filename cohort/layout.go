package cohort

import (
	"fmt"
	"sort"
	"strings"

	"github.com/carbocation/mamanalysis/genepanel"
)

// Layout names the columns that carry survival and subtype information in a
// particular cohort export.
type Layout struct {
	Name          string
	TimeColumn    string
	EventColumn   string
	SubtypeColumn string

	// PatientColumn is duplicated between the clinical and survival exports
	// and is dropped from the survival table before joining.
	PatientColumn string

	// TimeInMonths is set when TimeColumn is already in months rather than
	// days.
	TimeInMonths bool
}

var Layouts = map[string]Layout{
	"NATURE2012": {
		Name:          "NATURE2012",
		TimeColumn:    "OS_Time_nature2012",
		EventColumn:   "OS_event_nature2012",
		SubtypeColumn: "PAM50Call_RNAseq",
		PatientColumn: "_PATIENT",
	},
	"XENA_CURATED": {
		Name:          "XENA_CURATED",
		TimeColumn:    "OS.time",
		EventColumn:   "OS",
		SubtypeColumn: "PAM50Call_RNAseq",
		PatientColumn: "_PATIENT",
	},
}

func LayoutNames() string {
	names := make([]string, 0, len(Layouts))
	for m := range Layouts {
		names = append(names, m)
	}
	sort.Strings(names)

	return strings.Join(names, ", ")
}

func New(layout string) (Layout, error) {
	l, exists := Layouts[layout]
	if !exists {
		return Layout{}, fmt.Errorf("Layout %s is not found. Valid layout names include: %s", layout, LayoutNames())
	}

	return l, nil
}

// FromStudy converts the layout block of a study file.
func FromStudy(c genepanel.StudyColumns) Layout {
	name := c.Name
	if name == "" {
		name = "STUDY"
	}
	return Layout{
		Name:          name,
		TimeColumn:    c.Time,
		EventColumn:   c.Event,
		SubtypeColumn: c.Subtype,
		PatientColumn: c.Patient,
		TimeInMonths:  c.Months,
	}
}

// Detect returns the first built-in layout whose survival columns are all
// present, preferring NATURE2012.
func Detect(t interface{ Has(...string) bool }) (Layout, bool) {
	for _, name := range []string{"NATURE2012", "XENA_CURATED"} {
		l := Layouts[name]
		if t.Has(l.TimeColumn, l.EventColumn) {
			return l, true
		}
	}
	return Layout{}, false
}

// Resolve chooses the layout for t: the study file's layout when it has
// one, else the named built-in, else whichever built-in t matches.
func Resolve(name string, study genepanel.Study, t interface{ Has(...string) bool }) (Layout, error) {
	if study.Layout != nil {
		return FromStudy(*study.Layout), nil
	}
	if name != "" {
		return New(name)
	}
	if l, ok := Detect(t); ok {
		return l, nil
	}
	return Layout{}, fmt.Errorf("no built-in layout matches the survival columns; pass -layout (%s) or a study file", LayoutNames())
}

// JoinOnly names no survival columns. Merging with it only drops the
// patient column duplicated between the clinical and phenotype exports.
var JoinOnly = Layout{Name: "JOIN_ONLY", PatientColumn: "_PATIENT"}

// ResolveForMerge is Resolve for the loader, which joins any three tables
// on their index: when no layout is named and none is detected it returns
// JoinOnly instead of failing.
func ResolveForMerge(name string, study genepanel.Study, t interface{ Has(...string) bool }) (Layout, error) {
	if name == "" && study.Layout == nil {
		if l, ok := Detect(t); ok {
			return l, nil
		}
		return JoinOnly, nil
	}
	return Resolve(name, study, t)
}
