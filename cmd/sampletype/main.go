// sampletype counts the TCGA sample types (primary tumour, metastasis,
// normal tissue, ...) among the barcodes of a table and writes the
// breakdown as a workbook and a bar chart with 95% Wilson error bars.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/carbocation/mamanalysis/compileinfoprint"

	"github.com/carbocation/mamanalysis/picker"
	"github.com/carbocation/mamanalysis/render"
	"github.com/carbocation/mamanalysis/sampletype"
	"github.com/carbocation/mamanalysis/tabulate"
	"github.com/carbocation/mamanalysis/workbook"
)

const (
	barColor     = "#059669"
	errorBarNote = "Barra de Erro: Margem de Erro do Intervalo de Confiança de 95% para a Proporção (Wilson Score)."
)

func main() {
	var input, sheet, column, outDir string

	flag.StringVar(&input, "input", "", "Table whose first column (or -column) holds TCGA barcodes (.csv/.tsv/.xlsx/...). Asked for interactively if empty.")
	flag.StringVar(&sheet, "sheet", "", "Sheet to read when -input is a workbook (first sheet if empty)")
	flag.StringVar(&column, "column", "", "Column with the barcodes. The table's index column if empty.")
	flag.StringVar(&outDir, "out", "", "Directory for the workbook and chart. Defaults to the folder of -input.")
	flag.Parse()

	if err := run(context.Background(), input, sheet, column, outDir); err != nil {
		if errors.Is(err, picker.ErrCancelled) {
			log.Println("Seleção de arquivo cancelada. Encerrando.")
			return
		}
		log.Fatalln(err)
	}
}

func run(ctx context.Context, input, sheet, column, outDir string) error {
	input, err := picker.PathOr(input, "Selecione o arquivo com os códigos de barras TCGA", ".csv", ".tsv", ".txt", ".gz", ".xlsx", ".xls")
	if err != nil {
		return err
	}
	t, err := workbook.Load(ctx, input, sheet)
	if err != nil {
		return err
	}

	barcodes := t.Index
	if column != "" {
		if !t.Has(column) {
			return fmt.Errorf("column %s not found in %s", column, input)
		}
		barcodes = t.Column(column)
	}
	if len(barcodes) == 0 {
		return fmt.Errorf("no barcodes found in %s", input)
	}

	summary := sampletype.Summarize(barcodes)
	for _, s := range summary {
		log.Printf("%s\t%d\t%.2f%%\t%s\n", s.Code, s.Count, s.Percent, s.Description)
	}

	if outDir == "" {
		outDir = filepath.Dir(input)
	}
	xlsxPath := filepath.Join(outDir, fmt.Sprintf("TCGA_Resumo_Estatisticas_%s.xlsx", time.Now().Format("060102_150405")))
	if err := writeWorkbook(xlsxPath, summary); err != nil {
		return err
	}
	log.Println("Saved", xlsxPath)

	pngPath := strings.TrimSuffix(xlsxPath, ".xlsx") + "_Grafico.png"
	err = render.SavePNG(pngPath, func(w io.Writer) error {
		return render.Bars(w, plot(summary, len(barcodes)))
	})
	if err != nil {
		return err
	}
	log.Println("Saved", pngPath)

	return nil
}

func writeWorkbook(path string, summary []sampletype.Summary) error {
	wb, err := workbook.New()
	if err != nil {
		return err
	}
	defer wb.Close()

	s, err := wb.Sheet("Resumo Estatístico")
	if err != nil {
		return err
	}

	rows := make([][]interface{}, len(summary))
	for i, smp := range summary {
		rows[i] = []interface{}{string(smp.Code), smp.Description, smp.Count, tabulate.Round(smp.Percent, 2)}
	}
	if err := s.Table([]string{"Código do Tipo", "Descrição da Amostra", "Contagem Absoluta", "Porcentagem (%)"}, rows); err != nil {
		return err
	}

	return wb.SaveAs(path)
}

// plot turns the summary into bars labelled "code - short description",
// each with its Wilson margin expressed in samples.
func plot(summary []sampletype.Summary, total int) render.BarPlot {
	bars := make([]render.Bar, len(summary))
	for i, s := range summary {
		bars[i] = render.Bar{
			Label:      fmt.Sprintf("%s - %s", s.Code, s.Code.Short()),
			Value:      float64(s.Count),
			Margin:     tabulate.WilsonMargin(s.Count, total, 0.95) * float64(total),
			Annotation: []string{fmt.Sprintf("n=%d", s.Count), fmt.Sprintf("(%.2f%%)", s.Percent)},
		}
	}

	return render.BarPlot{
		Title:    "Distribuição dos Tipos de Amostra (TCGA)",
		YLabel:   "Contagem Absoluta de Amostras",
		Bars:     bars,
		Color:    barColor,
		Note:     errorBarNote,
		Headroom: 1.35,
	}
}
