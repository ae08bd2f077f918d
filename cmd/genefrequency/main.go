// genefrequency reads the Dados_PAM50 sheet written by genesummary and
// draws, for each clinical PAM50 subtype, the share of samples expressing
// each gene of a panel (value > 0) as stacked, unnormalized bars.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"path/filepath"

	_ "github.com/carbocation/mamanalysis/compileinfoprint"

	"github.com/carbocation/mamanalysis/classify"
	"github.com/carbocation/mamanalysis/cohort"
	"github.com/carbocation/mamanalysis/genepanel"
	"github.com/carbocation/mamanalysis/picker"
	"github.com/carbocation/mamanalysis/render"
	"github.com/carbocation/mamanalysis/table"
	"github.com/carbocation/mamanalysis/workbook"
)

func main() {
	var input, sheet, panelName, studyPath, out string

	flag.StringVar(&input, "input", "", "Workbook written by genesummary (Analise_Genes_*.xlsx). Asked for interactively if empty.")
	flag.StringVar(&sheet, "sheet", "Dados_PAM50", "Sheet with the subtype in its second column followed by the genes")
	flag.StringVar(&panelName, "panel", "maintenance", fmt.Sprintf("Gene panel name (%s) or a comma-separated gene list", genepanel.PanelNames()))
	flag.StringVar(&studyPath, "study", "", "Optional YAML study file with extra panels")
	flag.StringVar(&out, "out", "", "Path of the PNG chart. Defaults to Frequencia_Genes_<panel>.png next to -input.")
	flag.Parse()

	if err := run(context.Background(), input, sheet, panelName, studyPath, out); err != nil {
		if errors.Is(err, picker.ErrCancelled) {
			log.Println("Nenhum arquivo selecionado. Encerrando a análise.")
			return
		}
		log.Fatalln(err)
	}
}

func run(ctx context.Context, input, sheet, panelName, studyPath, out string) error {
	if studyPath != "" {
		study, err := genepanel.ReadStudyFile(studyPath)
		if err != nil {
			return err
		}
		study.Register()
	}
	panel, err := genepanel.Lookup(panelName)
	if err != nil {
		return err
	}

	input, err = picker.PathOr(input, "Selecione o arquivo Excel de Dados de Pacientes", ".xlsx", ".xls")
	if err != nil {
		return err
	}
	t, err := workbook.Load(ctx, input, sheet)
	if err != nil {
		return err
	}

	freq, err := frequencies(t, panel.Genes)
	if err != nil {
		return fmt.Errorf("%s [%s]: %w", input, sheet, err)
	}
	for i, s := range freq.Groups {
		log.Printf("%s (n=%d): %v\n", s, freq.totals[i], freq.Counts[i])
	}

	if out == "" {
		out = filepath.Join(filepath.Dir(input), "Frequencia_Genes_"+panel.Name+".png")
	}
	freq.Title = fmt.Sprintf("Frequência de Expressão Individual dos Genes (%s) por Subtipo PAM50 (Excluído: Normal)", panel.Label())
	if err := render.SavePNG(out, func(w io.Writer) error {
		return render.Frequency(w, freq.FrequencyPlot)
	}); err != nil {
		return err
	}
	log.Println("Saved", out)
	return nil
}

type frequencyTable struct {
	render.FrequencyPlot
	totals []int
}

// frequencies counts, per clinical PAM50 subtype, the samples expressing
// each gene. The subtype is the first column after the sample id.
// Normal-like and unclassified samples are left out, as are subtypes with
// no samples.
func frequencies(t *table.Table, genes []string) (frequencyTable, error) {
	if len(t.Columns) == 0 {
		return frequencyTable{}, fmt.Errorf("no subtype column")
	}
	if missing := t.Missing(genes...); len(missing) > 0 {
		return frequencyTable{}, fmt.Errorf("missing gene columns %v (present: %v)", missing, t.Columns)
	}
	subtypeColumn := t.Columns[0]

	pos := make(map[string]int, len(cohort.PAM50Order))
	for i, s := range cohort.PAM50Order {
		pos[s] = i
	}
	totals := make([]int, len(cohort.PAM50Order))
	expressed := make([][]int, len(cohort.PAM50Order))
	for i := range expressed {
		expressed[i] = make([]int, len(genes))
	}

	for row := 0; row < t.Len(); row++ {
		s, ok := pos[t.String(row, subtypeColumn)]
		if !ok {
			continue
		}
		totals[s]++
		for gi, g := range genes {
			if classify.Expressed(t.Float(row, g)) {
				expressed[s][gi]++
			}
		}
	}

	var f frequencyTable
	f.Genes = genes
	for i, s := range cohort.PAM50Order {
		if totals[i] == 0 {
			continue
		}
		pct := make([]float64, len(genes))
		for gi, n := range expressed[i] {
			pct[gi] = 100 * float64(n) / float64(totals[i])
		}
		f.Groups = append(f.Groups, s)
		f.Counts = append(f.Counts, expressed[i])
		f.Percent = append(f.Percent, pct)
		f.totals = append(f.totals, totals[i])
	}
	if len(f.Groups) == 0 {
		return f, fmt.Errorf("no sample of the clinical PAM50 subtypes found")
	}
	return f, nil
}
