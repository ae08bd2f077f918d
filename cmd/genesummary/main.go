// genesummary writes the descriptive workbook of a gene panel: the raw
// PAM50 and survival columns, frequency tables, cross-tabulations of
// expression combinations against subtype and vital status, and a Cox
// model of each gene's expression level within each combination.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/carbocation/mamanalysis/compileinfoprint"

	"github.com/carbocation/mamanalysis/cohort"
	"github.com/carbocation/mamanalysis/genepanel"
	"github.com/carbocation/mamanalysis/picker"
	"github.com/carbocation/mamanalysis/workbook"
)

func main() {
	var input, sheet, panelName, layoutName, studyPath, outDir string
	var fisher bool

	flag.StringVar(&input, "input", "", "Merged cohort table, e.g. <db>_combined_raw_data.csv. Asked for interactively if empty.")
	flag.StringVar(&sheet, "sheet", "", "Sheet to read when -input is a workbook (first sheet if empty)")
	flag.StringVar(&panelName, "panel", "eosinophil", fmt.Sprintf("Gene panel name (%s) or a comma-separated gene list", genepanel.PanelNames()))
	flag.StringVar(&layoutName, "layout", "", fmt.Sprintf("Column layout. One of: %s. Detected if empty.", cohort.LayoutNames()))
	flag.StringVar(&studyPath, "study", "", "Optional YAML study file with extra panels or a custom layout")
	flag.StringVar(&outDir, "out", "", "Directory for the workbook. Defaults to the folder of -input.")
	flag.BoolVar(&fisher, "fisher", false, "Also report Fisher's exact test when the survival table is 2x2?")
	flag.Parse()

	if err := run(context.Background(), input, sheet, panelName, layoutName, studyPath, outDir, fisher); err != nil {
		if errors.Is(err, picker.ErrCancelled) {
			log.Println("Seleção de arquivo cancelada. Encerrando.")
			return
		}
		log.Fatalln(err)
	}
}

func run(ctx context.Context, input, sheet, panelName, layoutName, studyPath, outDir string, fisher bool) error {
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

	if outDir == "" {
		outDir = filepath.Dir(input)
	}
	outPath := filepath.Join(outDir, fmt.Sprintf("Analise_Genes_%s.xlsx", time.Now().Format("20060102_1504")))

	r := &report{
		table:   t,
		layout:  layout,
		panel:   panel,
		input:   input,
		output:  outPath,
		fisher:  fisher,
		started: time.Now(),
	}
	if err := r.prepare(); err != nil {
		return err
	}
	log.Printf("Analyzing genes: %s\n", strings.Join(r.present, ", "))

	if err := r.write(outPath); err != nil {
		return err
	}
	log.Println("Saved", outPath)
	return nil
}
