package genepanel

import (
	"fmt"
	"sort"
	"strings"
)

// Panel is an ordered set of gene symbols whose expression values are
// summed into one per-sample score.
type Panel struct {
	Name  string   `yaml:"name"`
	Genes []string `yaml:"genes"`
}

var Panels = map[string]Panel{
	"eosinophil": {
		Name:  "eosinophil",
		Genes: []string{"CLC", "EPX", "IL5RA", "PRG2"},
	},
	"maintenance": {
		Name:  "maintenance",
		Genes: []string{"IL5", "IL33", "IL25", "TSLP"},
	},
	"recruitment": {
		Name:  "recruitment",
		Genes: []string{"CCL11", "CCL24", "CCL26"},
	},
}

func PanelNames() string {
	names := make([]string, 0, len(Panels))
	for m := range Panels {
		names = append(names, m)
	}
	sort.Strings(names)

	return strings.Join(names, ", ")
}

// Lookup resolves a built-in panel name, or parses a comma separated list of
// gene symbols into an ad hoc panel.
func Lookup(nameOrGenes string) (Panel, error) {
	if p, exists := Panels[nameOrGenes]; exists {
		return p.clone(), nil
	}
	if strings.Contains(nameOrGenes, ",") {
		return Parse(nameOrGenes)
	}
	return Panel{}, fmt.Errorf("Panel %s is not found. Valid panel names include: %s", nameOrGenes, PanelNames())
}

// Parse builds a panel from "A,B,C". Symbols are trimmed and upper-cased;
// repeats are dropped.
func Parse(list string) (Panel, error) {
	p := Panel{}
	seen := make(map[string]struct{})
	for _, g := range strings.Split(list, ",") {
		g = strings.ToUpper(strings.TrimSpace(g))
		if g == "" {
			continue
		}
		if _, dup := seen[g]; dup {
			continue
		}
		seen[g] = struct{}{}
		p.Genes = append(p.Genes, g)
	}
	if len(p.Genes) == 0 {
		return p, fmt.Errorf("no genes in %q", list)
	}
	p.Name = strings.Join(p.Genes, "_")

	return p, nil
}

func (p Panel) clone() Panel {
	return Panel{Name: p.Name, Genes: append([]string(nil), p.Genes...)}
}

// Contains reports whether gene is part of the panel.
func (p Panel) Contains(gene string) bool {
	for _, g := range p.Genes {
		if g == gene {
			return true
		}
	}
	return false
}

// Without returns the panel minus one gene, for measuring that gene's
// marginal contribution to the score. The original panel is not modified.
func (p Panel) Without(gene string) (Panel, error) {
	if !p.Contains(gene) {
		return Panel{}, fmt.Errorf("gene %s is not part of panel %s (%s)", gene, p.Name, strings.Join(p.Genes, ", "))
	}
	if len(p.Genes) == 1 {
		return Panel{}, fmt.Errorf("removing %s would leave panel %s empty", gene, p.Name)
	}

	out := Panel{Name: p.Name + " sem " + gene}
	for _, g := range p.Genes {
		if g != gene {
			out.Genes = append(out.Genes, g)
		}
	}
	return out, nil
}

// Label is the human readable gene list, as printed on chart titles.
func (p Panel) Label() string {
	return strings.Join(p.Genes, ", ")
}

// ColumnChecker is satisfied by anything that can report absent columns.
type ColumnChecker interface {
	Missing(cols ...string) []string
}

// Missing lists the panel genes that are not columns of t.
func (p Panel) Missing(t ColumnChecker) []string {
	return t.Missing(p.Genes...)
}
