// mediansurvival splits a cohort at the median of a gene panel's summed
// expression and compares overall survival of the high and low groups with
// Kaplan-Meier curves and a log-rank test. With -without it repeats the
// analysis with one gene left out of the panel.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/carbocation/mamanalysis/compileinfoprint"

	"github.com/carbocation/mamanalysis/classify"
	"github.com/carbocation/mamanalysis/cohort"
	"github.com/carbocation/mamanalysis/genepanel"
	"github.com/carbocation/mamanalysis/picker"
	"github.com/carbocation/mamanalysis/render"
	"github.com/carbocation/mamanalysis/survival"
	"github.com/carbocation/mamanalysis/table"
	"github.com/carbocation/mamanalysis/workbook"
	"github.com/carbocation/pfx"
)

// minGroupSize is the smallest group for which a curve is drawn.
const minGroupSize = 2

type config struct {
	input      string
	sheet      string
	panel      string
	without    string
	tie        string
	layout     string
	study      string
	units      string
	outDir     string
	atRisk     bool
	writeSteps bool
}

func main() {
	var cfg config

	flag.StringVar(&cfg.input, "input", "", "Merged cohort table (.csv/.tsv, optionally compressed, or .xlsx/.xls). Asked for interactively if empty.")
	flag.StringVar(&cfg.sheet, "sheet", "Dados_Sobrevida", "Sheet to read when -input is a workbook")
	flag.StringVar(&cfg.panel, "panel", "eosinophil", fmt.Sprintf("Gene panel name (%s) or a comma-separated gene list", genepanel.PanelNames()))
	flag.StringVar(&cfg.without, "without", "", "Optional gene to drop from the panel for a second, comparison run")
	flag.StringVar(&cfg.tie, "tie", "low", "Label of samples whose score equals the median: low, high or exclude")
	flag.StringVar(&cfg.layout, "layout", "", fmt.Sprintf("Column layout. One of: %s. Detected if empty.", cohort.LayoutNames()))
	flag.StringVar(&cfg.study, "study", "", "Optional YAML study file with extra panels or a custom layout")
	flag.StringVar(&cfg.units, "units", "months", "Time axis units: months or days")
	flag.StringVar(&cfg.outDir, "out", ".", "Directory for the charts and tables")
	flag.BoolVar(&cfg.atRisk, "at-risk", true, "Draw the number-at-risk table under each plot?")
	flag.BoolVar(&cfg.writeSteps, "steps", true, "Also write each curve's Kaplan-Meier steps as CSV?")
	flag.Parse()

	if cfg.units != "months" && cfg.units != "days" {
		fmt.Fprintln(os.Stderr, "Please set -units to months or days")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := run(context.Background(), cfg); err != nil {
		if errors.Is(err, picker.ErrCancelled) {
			log.Println("Seleção cancelada. Encerrando.")
			return
		}
		log.Fatalln(err)
	}
}

func run(ctx context.Context, cfg config) error {
	policy, err := classify.ParseTiePolicy(cfg.tie)
	if err != nil {
		return err
	}

	var study genepanel.Study
	if cfg.study != "" {
		if study, err = genepanel.ReadStudyFile(cfg.study); err != nil {
			return err
		}
		study.Register()
	}

	panel, err := genepanel.Lookup(cfg.panel)
	if err != nil {
		return err
	}
	panels := []genepanel.Panel{panel}
	if cfg.without != "" {
		reduced, err := panel.Without(cfg.without)
		if err != nil {
			return err
		}
		panels = append(panels, reduced)
	}

	input, err := picker.PathOr(cfg.input, "Selecione o arquivo combinado (CSV ou Excel)", ".csv", ".tsv", ".txt", ".gz", ".xlsx", ".xls")
	if err != nil {
		return err
	}
	t, err := workbook.Load(ctx, input, cfg.sheet)
	if err != nil {
		return err
	}
	log.Printf("Loaded %d samples x %d columns from %s\n", t.Len(), len(t.Columns), input)

	layout, err := cohort.Resolve(cfg.layout, study, t)
	if err != nil {
		return err
	}
	log.Println("Using layout", layout.Name)
	samples := cohort.Samples(t, layout)

	if err := os.MkdirAll(cfg.outDir, 0755); err != nil {
		return pfx.Err(err)
	}

	for _, p := range panels {
		if err := analyze(t, samples, p, policy, cfg); err != nil {
			return fmt.Errorf("%s: %w", p.Name, err)
		}
	}
	return nil
}

func analyze(t *table.Table, samples []cohort.Sample, p genepanel.Panel, policy classify.TiePolicy, cfg config) error {
	log.Printf("Panel %s: %s\n", p.Name, p.Label())

	split, err := classify.ByMedian(t, p.Genes, policy)
	if err != nil {
		return err
	}
	if len(split.Ineligible) > 0 {
		log.Printf("%d samples lack a value for at least one gene and were left out\n", len(split.Ineligible))
	}
	if len(split.AtMedian) > 0 {
		log.Printf("%d samples at the median were left out (tie policy %s)\n", len(split.AtMedian), split.Policy)
	}
	high, low := split.Counts()
	log.Printf("Median score %.4f: %d high, %d low\n", split.Median, high, low)

	if err := render.TerminalHistogram(log.Writer(), "Score "+p.Label(), split.Scores(), split.Median); err != nil {
		return err
	}

	title := fmt.Sprintf("Sobrevida Global por Expressão de %s", p.Label())
	grouping := classify.FromSplit(title, split)
	base := filepath.Join(cfg.outDir, "KM_"+fileSafe(p.Name))

	var groups [][]survival.Observation
	var curves []survival.Curve
	for _, g := range grouping.Order {
		obs, _ := cohort.Observations(samples, grouping.Members(t.Index, g))
		if len(obs) < minGroupSize {
			log.Printf("Group %s has %d samples with survival data; not enough for a curve\n", g, len(obs))
			return render.SavePNG(base+".png", func(w io.Writer) error {
				return render.Notice(w, title, render.InsufficientData)
			})
		}
		if cfg.units == "days" {
			for i := range obs {
				obs[i].Time *= survival.DaysPerMonth
			}
		}

		c, err := survival.KaplanMeier(obs)
		if err != nil {
			return err
		}
		c.Label = g
		if m, ok := c.Median(); ok {
			log.Printf("%s: n=%d events=%d median survival %.1f %s\n", g, c.N, c.Events, m, cfg.units)
		} else {
			log.Printf("%s: n=%d events=%d median survival not reached\n", g, c.N, c.Events)
		}

		groups = append(groups, obs)
		curves = append(curves, c)
	}

	lr, err := survival.LogRank(groups...)
	if err != nil {
		return err
	}
	log.Printf("Log-rank chi-square %.4f (df %d), p = %.4g\n", lr.ChiSquare, lr.DF, lr.P)

	logHazardRatio(groups)

	xLabel := "Tempo (Meses)"
	if cfg.units == "days" {
		xLabel = "Tempo (Dias)"
	}
	err = render.SavePNG(base+".png", func(w io.Writer) error {
		return render.Survival(w, render.SurvivalPlot{
			Title:  title,
			XLabel: xLabel,
			YLabel: "Probabilidade de Sobrevida Global (S(t))",
			Curves: curves,
			PValue: lr.P,
			PLabel: "Teste Log-rank",
			AtRisk: cfg.atRisk,
		})
	})
	if err != nil {
		return err
	}
	log.Println("Saved", base+".png")

	if !cfg.writeSteps {
		return nil
	}
	f, err := os.Create(base + ".csv")
	if err != nil {
		return pfx.Err(err)
	}
	if err := survival.WriteSteps(f, curves...); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return pfx.Err(err)
	}
	log.Println("Saved", base+".csv")

	return nil
}

// logHazardRatio reports the hazard of the first group relative to the
// second when there is enough data to fit the model.
func logHazardRatio(groups [][]survival.Observation) {
	if len(groups) != 2 {
		return
	}
	var obs []survival.Observation
	var x []float64
	for i, g := range groups {
		for _, o := range g {
			obs = append(obs, o)
			x = append(x, float64(1-i))
		}
	}
	n, events := survival.Counts(obs)
	if n <= 10 || events <= 1 {
		return
	}

	cox, err := survival.CoxPH(obs, x)
	if err != nil {
		log.Println("Cox model:", err)
		return
	}
	log.Printf("Cox HR (alta vs baixa) %.3f (IC 95%% %.3f-%.3f), p = %.4g\n", cox.HazardRatio, cox.Lower95, cox.Upper95, cox.P)
}

func fileSafe(name string) string {
	return strings.NewReplacer(" ", "_", ",", "", "/", "_").Replace(name)
}
