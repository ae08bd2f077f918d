package classify

import (
	"sort"
	"strings"

	"github.com/carbocation/mamanalysis/table"
	"gopkg.in/guregu/null.v3"
)

// NoneExpressed names the combination of samples that express none of the
// panel genes.
const NoneExpressed = "Nenhum"

// Rest names the comparison group of samples outside the group of interest.
const Rest = "Demais"

// Expressed is true for a present value above zero.
func Expressed(v null.Float) bool {
	return v.Valid && v.Float64 > 0
}

// Combination records which panel genes a sample expresses.
type Combination struct {
	SampleID string
	Count    int
	// Name joins the expressed genes in sorted order with "_", or is
	// NoneExpressed.
	Name string
}

// Combinations classifies every sample by its set of expressed genes. Genes
// that are not columns of t are ignored.
func Combinations(t *table.Table, genes []string) []Combination {
	var present []string
	for _, g := range genes {
		if t.Has(g) {
			present = append(present, g)
		}
	}

	out := make([]Combination, t.Len())
	for i, id := range t.Index {
		var expressed []string
		for _, g := range present {
			if Expressed(t.Float(i, g)) {
				expressed = append(expressed, g)
			}
		}
		sort.Strings(expressed)

		name := NoneExpressed
		if len(expressed) > 0 {
			name = strings.Join(expressed, "_")
		}
		out[i] = Combination{SampleID: id, Count: len(expressed), Name: name}
	}
	return out
}

// Grouping assigns samples to named comparison groups. Order lists the
// group of interest first.
type Grouping struct {
	Title  string
	Order  []string
	Labels map[string]string
}

// Members returns the sample ids of one group in table order.
func (g Grouping) Members(ids []string, group string) []string {
	var out []string
	for _, id := range ids {
		if g.Labels[id] == group {
			out = append(out, id)
		}
	}
	return out
}

// Counts returns the size of each group in Order.
func (g Grouping) Counts() []int {
	pos := make(map[string]int, len(g.Order))
	for i, name := range g.Order {
		pos[name] = i
	}
	out := make([]int, len(g.Order))
	for _, label := range g.Labels {
		if i, ok := pos[label]; ok {
			out[i]++
		}
	}
	return out
}

// AllExpressedVsRest separates samples that express every panel gene from
// the rest. Samples missing any value fall in the rest.
func AllExpressedVsRest(t *table.Table, genes []string) Grouping {
	sorted := append([]string(nil), genes...)
	sort.Strings(sorted)
	all := strings.Join(sorted, "_")

	g := Grouping{
		Title:  "Expressão de " + strings.Join(genes, ", "),
		Order:  []string{all, Rest},
		Labels: make(map[string]string, t.Len()),
	}
	for i, id := range t.Index {
		label := all
		for _, gene := range genes {
			if !t.Has(gene) || !Expressed(t.Float(i, gene)) {
				label = Rest
				break
			}
		}
		g.Labels[id] = label
	}
	return g
}

// ExpressedVsNot separates samples that express one gene from those that
// do not. Samples without a value for the gene are left out.
func ExpressedVsNot(t *table.Table, gene string) Grouping {
	yes, no := "Expressa "+gene, "Não Expressa "+gene
	g := Grouping{
		Title:  "Expressão de " + gene,
		Order:  []string{yes, no},
		Labels: make(map[string]string, t.Len()),
	}
	if !t.Has(gene) {
		return g
	}
	for i, id := range t.Index {
		v := t.Float(i, gene)
		if !v.Valid {
			continue
		}
		if Expressed(v) {
			g.Labels[id] = yes
		} else {
			g.Labels[id] = no
		}
	}
	return g
}

// FromSplit converts a median split into a Grouping with the high group
// first.
func FromSplit(title string, s Split) Grouping {
	g := Grouping{
		Title:  title,
		Order:  []string{High.Display(), Low.Display()},
		Labels: make(map[string]string, len(s.Assignments)),
	}
	for _, a := range s.Assignments {
		g.Labels[a.SampleID] = a.Label.Display()
	}
	return g
}
