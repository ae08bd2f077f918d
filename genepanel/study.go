package genepanel

import (
	"fmt"
	"io"
	"os"

	"github.com/carbocation/pfx"
	"gopkg.in/yaml.v3"
)

// Study is the optional YAML configuration shared by the pipelines. It adds
// panels to the built-in set and can describe a custom column layout.
//
//	panels:
//	  - name: th2
//	    genes: [IL4, IL5, IL13]
//	layout:
//	  name: MYCOHORT
//	  time: days_to_death
//	  event: vital_status
//	  subtype: pam50
type Study struct {
	Panels []Panel       `yaml:"panels"`
	Layout *StudyColumns `yaml:"layout"`
}

// StudyColumns names the survival and subtype columns of a cohort whose
// export does not match a built-in layout.
type StudyColumns struct {
	Name    string `yaml:"name"`
	Time    string `yaml:"time"`
	Event   string `yaml:"event"`
	Subtype string `yaml:"subtype"`
	Patient string `yaml:"patient"`
	Months  bool   `yaml:"months"`
}

func ReadStudy(r io.Reader) (Study, error) {
	var s Study
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && err != io.EOF {
		return s, pfx.Err(err)
	}

	for i, p := range s.Panels {
		if p.Name == "" || len(p.Genes) == 0 {
			return s, fmt.Errorf("panel %d needs a name and at least one gene", i+1)
		}
	}
	if s.Layout != nil && (s.Layout.Time == "" || s.Layout.Event == "") {
		return s, fmt.Errorf("layout %q needs time and event columns", s.Layout.Name)
	}

	return s, nil
}

func ReadStudyFile(path string) (Study, error) {
	f, err := os.Open(path)
	if err != nil {
		return Study{}, pfx.Err(err)
	}
	defer f.Close()

	s, err := ReadStudy(f)
	if err != nil {
		return s, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Register adds the study's panels to Panels, replacing built-ins that share
// a name.
func (s Study) Register() {
	for _, p := range s.Panels {
		Panels[p.Name] = p.clone()
	}
}
