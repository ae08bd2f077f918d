package main

import (
	"fmt"
	"io"
	"log"
	"math"
	"path/filepath"
	"strings"

	"github.com/carbocation/mamanalysis/classify"
	"github.com/carbocation/mamanalysis/cohort"
	"github.com/carbocation/mamanalysis/render"
	"github.com/carbocation/mamanalysis/survival"
	"github.com/carbocation/mamanalysis/table"
	"github.com/carbocation/mamanalysis/tabulate"
)

// minGroupSize is the smallest group for which a curve is drawn.
const minGroupSize = 2

type plotter struct {
	table   *table.Table
	samples []cohort.Sample
	outDir  string
	atRisk  bool
}

func fileSafe(name string) string {
	return strings.NewReplacer(" ", "_", ",", "", "/", "_").Replace(name)
}

func (p *plotter) path(prefix string, g classify.Grouping) string {
	return filepath.Join(p.outDir, prefix+fileSafe(strings.TrimPrefix(g.Title, "Expressão de "))+".png")
}

// survivalPlot draws one curve per group of g, or a notice when a group has
// fewer than minGroupSize samples with survival data.
func (p *plotter) survivalPlot(g classify.Grouping) error {
	path := p.path("KM_", g)
	title := "Curva de Sobrevida de Kaplan-Meier: " + g.Title

	var groups [][]survival.Observation
	var curves []survival.Curve
	for _, name := range g.Order {
		obs, _ := cohort.Observations(p.samples, g.Members(p.table.Index, name))
		if len(obs) < minGroupSize {
			log.Printf("Group %q has %d samples with survival data; skipping the curves\n", name, len(obs))
			return render.SavePNG(path, func(w io.Writer) error {
				return render.Notice(w, title, render.InsufficientData)
			})
		}
		c, err := survival.KaplanMeier(obs)
		if err != nil {
			return err
		}
		c.Label = name
		groups = append(groups, obs)
		curves = append(curves, c)
	}

	lr, err := survival.LogRank(groups...)
	if err != nil {
		return err
	}
	log.Printf("Log-rank p = %.4g\n", lr.P)

	err = render.SavePNG(path, func(w io.Writer) error {
		return render.Survival(w, render.SurvivalPlot{
			Title:  title,
			XLabel: "Tempo (Meses)",
			YLabel: "Probabilidade de Sobrevida",
			Curves: curves,
			PValue: lr.P,
			PLabel: "Teste Log-rank",
			AtRisk: p.atRisk,
		})
	})
	if err != nil {
		return err
	}
	log.Println("Saved", path)
	return nil
}

// subtypeCrosstab counts the PAM50 calls of each group of g. Normal-like
// and unclassified samples are left out.
func subtypeCrosstab(g classify.Grouping, samples []cohort.Sample) (tabulate.Crosstab, error) {
	var rows, cols []string
	for _, s := range samples {
		group, ok := g.Labels[s.ID]
		if !ok || s.Subtype == "" || s.Subtype == cohort.PAM50NormalLike {
			continue
		}
		rows = append(rows, group)
		cols = append(cols, s.Subtype)
	}
	return tabulate.NewCrosstab(rows, cols, g.Order, cohort.PAM50Order)
}

// subtypePlot draws the PAM50 distribution of every group of g with the
// chi-square p-value of the association.
func (p *plotter) subtypePlot(g classify.Grouping) error {
	ct, err := subtypeCrosstab(g, p.samples)
	if err != nil {
		return err
	}

	for i, n := range ct.RowTotals() {
		if n == 0 {
			log.Printf("Group %q has no classified PAM50 samples; skipping the subtype chart\n", ct.RowKeys[i])
			return nil
		}
	}
	present := 0
	for _, n := range ct.ColTotals() {
		if n > 0 {
			present++
		}
	}
	if present < 2 {
		log.Println("Fewer than two PAM50 subtypes present; skipping the subtype chart")
		return nil
	}

	pval := math.NaN()
	if res, err := tabulate.ChiSquare(ct); err == nil {
		pval = res.P
		log.Printf("Chi-square %.3f (df %d), p = %.4g\n", res.Statistic, res.DF, res.P)
	} else {
		log.Println("Chi-square:", err)
	}

	path := p.path("PAM50_", g)
	err = render.SavePNG(path, func(w io.Writer) error {
		return render.StackedPercent(w, render.StackedPlot{
			Title:    "Distribuição de Subtipos PAM50: " + g.Title,
			Groups:   ct.RowKeys,
			Segments: ct.ColKeys,
			Counts:   ct.Cells,
			Colors:   render.PAM50Colors,
			PValue:   pval,
			PLabel:   "Teste Chi-Square",
		})
	})
	if err != nil {
		return err
	}
	log.Println("Saved", path)
	return nil
}

// meanExpression averages each gene over the samples of each PAM50
// subtype. Cells without any value are NaN.
func meanExpression(t *table.Table, samples []cohort.Sample, genes []string) [][]float64 {
	col := make(map[string]int, len(cohort.PAM50Order))
	for i, s := range cohort.PAM50Order {
		col[s] = i
	}

	out := make([][]float64, len(genes))
	for gi, gene := range genes {
		sums := make([]float64, len(cohort.PAM50Order))
		ns := make([]int, len(cohort.PAM50Order))
		for i, s := range samples {
			j, ok := col[s.Subtype]
			if !ok {
				continue
			}
			if v := t.Float(i, gene); v.Valid {
				sums[j] += v.Float64
				ns[j]++
			}
		}

		out[gi] = make([]float64, len(sums))
		for j := range sums {
			if ns[j] == 0 {
				out[gi][j] = math.NaN()
				continue
			}
			out[gi][j] = sums[j] / float64(ns[j])
		}
	}
	return out
}

func (p *plotter) heatmap(genes []string) error {
	values := meanExpression(p.table, p.samples, genes)

	path := filepath.Join(p.outDir, "Heatmap_Expressao_PAM50.png")
	err := render.SavePNG(path, func(w io.Writer) error {
		return render.Heatmap(w, render.HeatmapPlot{
			Title:   fmt.Sprintf("Expressão Média por Subtipo PAM50 (z-score, %d genes)", len(genes)),
			Rows:    genes,
			Columns: cohort.PAM50Order,
			Values:  values,
		})
	})
	if err != nil {
		return err
	}
	log.Println("Saved", path)
	return nil
}
