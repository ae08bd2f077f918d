// pam50bar draws the number of samples of each clinical PAM50 subtype, as
// reported in the Analise_Estatistica sheet written by genesummary. The
// percentages are of every classified sample, Normal-like included, while
// the Normal-like bar itself is left out. When no report is given, or it
// cannot be read, the counts of the published TCGA-BRCA cohort are used.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	_ "github.com/carbocation/mamanalysis/compileinfoprint"

	"github.com/carbocation/mamanalysis/cohort"
	"github.com/carbocation/mamanalysis/picker"
	"github.com/carbocation/mamanalysis/render"
	"github.com/carbocation/mamanalysis/workbook"
)

// counts is the PAM50 breakdown of one report.
type counts struct {
	Subtypes   map[string]int
	Classified int
	Dataset    int
}

// fallback holds the TCGA-BRCA counts (118 Normal-like samples included
// in Classified).
var fallback = counts{
	Subtypes:   map[string]int{"LumA": 433, "LumB": 194, "Her2": 67, "Basal": 141},
	Classified: 953,
	Dataset:    1215,
}

func main() {
	var input, sheet, out string

	flag.StringVar(&input, "input", "", "Analise_Estatistica report (.xlsx, or the sheet exported as .csv). Asked for interactively if empty; built-in counts are used if none is chosen.")
	flag.StringVar(&sheet, "sheet", "Analise_Estatistica", "Sheet to read when -input is a workbook")
	flag.StringVar(&out, "out", "PAM50_Subtipos.png", "Path of the PNG chart")
	flag.Parse()

	if err := run(context.Background(), input, sheet, out); err != nil {
		log.Fatalln(err)
	}
}

func run(ctx context.Context, input, sheet, out string) error {
	input, err := picker.PathOr(input, "Selecione o arquivo da Análise Estatística (Analise_Estatistica)", ".xlsx", ".xls", ".csv")
	if errors.Is(err, picker.ErrCancelled) {
		log.Println("Nenhum arquivo selecionado. Usando dados internos.")
		input = ""
	} else if err != nil {
		return err
	}

	c := fallback
	if input != "" {
		if loaded, err := load(ctx, input, sheet); err != nil {
			log.Printf("Could not read PAM50 counts from %s: %v. Using the built-in counts.\n", input, err)
		} else {
			log.Println("Loaded PAM50 counts from", input)
			c = loaded
		}
	}

	plotted := 0
	for _, s := range cohort.PAM50Order {
		plotted += c.Subtypes[s]
	}
	log.Printf("Total de pacientes: %d\n", c.Dataset)
	log.Printf("Amostras com classificação PAM50 (5 subtipos): %d\n", c.Classified)
	log.Printf("Amostras plotadas (4 subtipos clínicos): %d; subtipo Normal excluído\n", plotted)

	if err := render.SavePNG(out, func(w io.Writer) error {
		return render.Bars(w, plot(c))
	}); err != nil {
		return err
	}
	log.Println("Saved", out)
	return nil
}

func load(ctx context.Context, path, sheet string) (counts, error) {
	records, err := workbook.LoadRecords(ctx, path, sheet)
	if err != nil {
		return counts{}, err
	}
	return parse(records)
}

// parse reads the total from the row under "Total de Pacientes" and the
// subtype counts from the "PAM50 Subtipo" block.
func parse(records [][]string) (counts, error) {
	c := counts{Subtypes: make(map[string]int)}

	total, ok := workbook.FindBlock(records, "Total de Pacientes")
	if !ok || len(total) == 0 {
		return c, fmt.Errorf("total number of patients not found")
	}
	n, err := strconv.Atoi(strings.TrimSpace(total[0][0]))
	if err != nil {
		return c, fmt.Errorf("total number of patients: %w", err)
	}
	c.Dataset = n

	block, ok := workbook.FindBlock(records, "PAM50 Subtipo")
	if !ok {
		return c, fmt.Errorf("heading %q not found", "PAM50 Subtipo")
	}
	for _, rec := range block {
		if len(rec) < 2 {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			return c, fmt.Errorf("count of %s: %w", rec[0], err)
		}
		subtype := strings.TrimSpace(rec[0])
		c.Subtypes[subtype] = int(v)
		c.Classified += int(v)
	}
	if c.Classified == 0 {
		return c, fmt.Errorf("no PAM50 counts found")
	}
	return c, nil
}

func plot(c counts) render.BarPlot {
	bars := make([]render.Bar, 0, len(cohort.PAM50Order))
	for _, s := range cohort.PAM50Order {
		n := c.Subtypes[s]
		pct := 0.0
		if c.Classified > 0 {
			pct = 100 * float64(n) / float64(c.Classified)
		}
		bars = append(bars, render.Bar{
			Label:      s,
			Value:      float64(n),
			Annotation: []string{fmt.Sprintf("%.1f%%", pct)},
			Color:      render.PAM50Colors[s],
		})
	}

	return render.BarPlot{
		Title:    "Subtipos PAM50",
		YLabel:   "Contagem Absoluta de Amostras",
		Bars:     bars,
		Headroom: 1.15,
	}
}
