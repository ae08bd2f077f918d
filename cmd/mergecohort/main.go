// mergecohort joins an RNA-seq expression matrix with the clinical and
// survival exports of the same cohort and writes one sample-per-row CSV.
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

	"github.com/carbocation/mamanalysis/cohort"
	"github.com/carbocation/mamanalysis/genepanel"
	"github.com/carbocation/mamanalysis/picker"
	"github.com/carbocation/mamanalysis/table"
	"github.com/carbocation/pfx"
)

func main() {
	var expressionPath, clinicalPath, survivalPath string
	var duckPath, duckTable string
	var dbName, layoutName, studyPath, outRoot string

	flag.StringVar(&expressionPath, "expression", "", "RNA-seq matrix with genes as rows and samples as columns (.tsv, .gz, .xz, gs://...). Asked for interactively if empty.")
	flag.StringVar(&clinicalPath, "clinical", "", "Clinical table with one row per sample. Asked for interactively if empty.")
	flag.StringVar(&survivalPath, "survival", "", "Phenotype/survival table with one row per sample. Asked for interactively if empty (unless -duckdb is set).")
	flag.StringVar(&duckPath, "duckdb", "", "Optional DuckDB database to read the survival table from instead of -survival")
	flag.StringVar(&duckTable, "duckdb-table", cohort.DefaultSurvivalTable, "Table to read when -duckdb is set")
	flag.StringVar(&dbName, "db", "", "Name of the cohort (e.g., TCGA-BRCA). Output goes to <db>/<db>_combined_raw_data.csv. Asked for interactively if empty.")
	flag.StringVar(&layoutName, "layout", "", fmt.Sprintf("Column layout of the survival export. One of: %s. Detected if empty.", cohort.LayoutNames()))
	flag.StringVar(&studyPath, "study", "", "Optional YAML study file describing a custom column layout")
	flag.StringVar(&outRoot, "out", ".", "Directory under which the <db> folder is created")
	flag.Parse()

	if err := run(context.Background(), expressionPath, clinicalPath, survivalPath, duckPath, duckTable, dbName, layoutName, studyPath, outRoot); err != nil {
		if errors.Is(err, picker.ErrCancelled) {
			log.Println("Seleção cancelada. Encerrando.")
			return
		}
		log.Fatalln(err)
	}
}

func run(ctx context.Context, expressionPath, clinicalPath, survivalPath, duckPath, duckTable, dbName, layoutName, studyPath, outRoot string) error {
	var err error

	if expressionPath, err = picker.PathOr(expressionPath, "Selecione o arquivo de RNAseq (.gz)"); err != nil {
		return err
	}
	if clinicalPath, err = picker.PathOr(clinicalPath, "Selecione o arquivo Clinical (.txt, .tsv, etc.)"); err != nil {
		return err
	}
	if duckPath == "" {
		if survivalPath, err = picker.PathOr(survivalPath, "Selecione o arquivo Phenotypes/Survival (.txt, .tsv, etc.)"); err != nil {
			return err
		}
	}
	if dbName == "" {
		if dbName, err = picker.Prompt("Digite o nome do banco de dados", "TCGA-BRCA"); err != nil {
			return err
		}
	}

	var study genepanel.Study
	if studyPath != "" {
		if study, err = genepanel.ReadStudyFile(studyPath); err != nil {
			return err
		}
	}

	log.Println("Loading", expressionPath)
	expression, err := table.ReadFile(ctx, expressionPath)
	if err != nil {
		return err
	}
	log.Printf("Loaded expression matrix: %d genes x %d samples\n", expression.Len(), len(expression.Columns))

	log.Println("Loading", clinicalPath)
	clinical, err := table.ReadFile(ctx, clinicalPath)
	if err != nil {
		return err
	}

	var survivalTable *table.Table
	if duckPath != "" {
		log.Printf("Loading table %s from %s\n", duckTable, duckPath)
		survivalTable, err = cohort.LoadDuckDB(ctx, duckPath, duckTable, "")
	} else {
		log.Println("Loading", survivalPath)
		survivalTable, err = table.ReadFile(ctx, survivalPath)
	}
	if err != nil {
		return err
	}

	layout, err := cohort.ResolveForMerge(layoutName, study, survivalTable)
	if err != nil {
		return err
	}
	if layout.Name == cohort.JoinOnly.Name {
		log.Println("No known survival columns found; joining the tables on their index only")
	} else {
		log.Println("Using layout", layout.Name)
	}

	merged, stats := cohort.Merge(expression, clinical, survivalTable, layout)
	log.Printf("Merged table: %d samples x %d columns (%d genes)\n", merged.Len(), len(merged.Columns), stats.Genes)

	outDir := filepath.Join(outRoot, dbName)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return pfx.Err(err)
	}
	outPath := filepath.Join(outDir, dbName+"_combined_raw_data.csv")

	f, err := os.Create(outPath)
	if err != nil {
		return pfx.Err(err)
	}
	if err := merged.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return pfx.Err(err)
	}

	log.Println("Saved", outPath)
	return nil
}
