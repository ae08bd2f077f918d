// expressionplots compares groups defined by whether samples express the
// genes of a panel (value > 0). For every comparison it draws Kaplan-Meier
// curves of overall survival in months and the PAM50 distribution of each
// group, and it draws a heatmap of mean expression per gene and subtype.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/carbocation/mamanalysis/compileinfoprint"

	"github.com/carbocation/mamanalysis/classify"
	"github.com/carbocation/mamanalysis/cohort"
	"github.com/carbocation/mamanalysis/genepanel"
	"github.com/carbocation/mamanalysis/picker"
	"github.com/carbocation/mamanalysis/workbook"
	"github.com/carbocation/pfx"
)

func main() {
	var input, sheet, panelName, layoutName, studyPath, outDir string
	var atRisk, heatmap bool

	flag.StringVar(&input, "input", "", "Merged cohort table (.csv/.tsv, optionally compressed, or .xlsx/.xls). Asked for interactively if empty.")
	flag.StringVar(&sheet, "sheet", "", "Sheet to read when -input is a workbook (first sheet if empty)")
	flag.StringVar(&panelName, "panel", "eosinophil", fmt.Sprintf("Gene panel name (%s) or a comma-separated gene list", genepanel.PanelNames()))
	flag.StringVar(&layoutName, "layout", "", fmt.Sprintf("Column layout. One of: %s. Detected if empty.", cohort.LayoutNames()))
	flag.StringVar(&studyPath, "study", "", "Optional YAML study file with extra panels or a custom layout")
	flag.StringVar(&outDir, "out", "", "Directory for the charts. Defaults to a graficos_analise folder next to -input.")
	flag.BoolVar(&atRisk, "at-risk", false, "Draw the number-at-risk table under each survival plot?")
	flag.BoolVar(&heatmap, "heatmap", true, "Also draw the gene x subtype mean expression heatmap?")
	flag.Parse()

	err := run(context.Background(), input, sheet, panelName, layoutName, studyPath, outDir, atRisk, heatmap)
	if err != nil {
		if errors.Is(err, picker.ErrCancelled) {
			log.Println("Seleção de arquivo cancelada. Encerrando.")
			return
		}
		log.Fatalln(err)
	}
}

func run(ctx context.Context, input, sheet, panelName, layoutName, studyPath, outDir string, atRisk, heatmap bool) error {
	var study genepanel.Study
	var err error
	if studyPath != "" {
		if study, err = genepanel.ReadStudyFile(studyPath); err != nil {
			return err
		}
		study.Register()
	}

	panel, err := genepanel.Lookup(panelName)
	if err != nil {
		return err
	}

	input, err = picker.PathOr(input, "Selecione o arquivo CSV de dados brutos (ex: ..._combined_raw_data.csv)", ".csv", ".tsv", ".txt", ".gz", ".xlsx", ".xls")
	if err != nil {
		return err
	}
	t, err := workbook.Load(ctx, input, sheet)
	if err != nil {
		return err
	}
	log.Printf("Loaded %d samples and %d columns from %s\n", t.Len(), len(t.Columns), input)

	layout, err := cohort.Resolve(layoutName, study, t)
	if err != nil {
		return err
	}
	log.Println("Using layout", layout.Name)

	if missing := panel.Missing(t); len(missing) > 0 {
		log.Printf("Warning: genes not found: %v\n", missing)
	}
	var genes []string
	for _, g := range panel.Genes {
		if t.Has(g) {
			genes = append(genes, g)
		}
	}
	if len(genes) == 0 {
		return fmt.Errorf("none of the panel genes (%s) is a column of the input", panel.Label())
	}

	if outDir == "" {
		outDir = filepath.Join(filepath.Dir(input), "graficos_analise")
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return pfx.Err(err)
	}

	p := &plotter{
		table:   t,
		samples: cohort.Samples(t, layout),
		outDir:  outDir,
		atRisk:  atRisk,
	}

	groupings := []classify.Grouping{classify.AllExpressedVsRest(t, genes)}
	for _, g := range genes {
		groupings = append(groupings, classify.ExpressedVsNot(t, g))
	}

	for _, g := range groupings {
		log.Println("Comparison:", g.Title)
		if err := p.survivalPlot(g); err != nil {
			return fmt.Errorf("%s: %w", g.Title, err)
		}
		if err := p.subtypePlot(g); err != nil {
			return fmt.Errorf("%s: %w", g.Title, err)
		}
	}

	if heatmap {
		if err := p.heatmap(genes); err != nil {
			return err
		}
	}

	log.Println("Charts saved in", outDir)
	return nil
}
