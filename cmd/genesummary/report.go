package main

import (
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/carbocation/mamanalysis/classify"
	"github.com/carbocation/mamanalysis/cohort"
	"github.com/carbocation/mamanalysis/compileinfo"
	"github.com/carbocation/mamanalysis/genepanel"
	"github.com/carbocation/mamanalysis/survival"
	"github.com/carbocation/mamanalysis/table"
	"github.com/carbocation/mamanalysis/tabulate"
	"github.com/carbocation/mamanalysis/workbook"
)

const (
	alive = "Vivo"
	dead  = "Morto"
)

type report struct {
	table   *table.Table
	layout  cohort.Layout
	panel   genepanel.Panel
	input   string
	output  string
	fisher  bool
	started time.Time

	present []string
	absent  []string
	samples []cohort.Sample
	combos  []classify.Combination
}

// prepare finds the panel genes present in the table and classifies every
// sample by the genes it expresses.
func (r *report) prepare() error {
	for _, g := range r.panel.Genes {
		if r.table.Has(g) {
			r.present = append(r.present, g)
		} else {
			r.absent = append(r.absent, g)
		}
	}
	if len(r.absent) > 0 {
		log.Printf("Warning: genes not found: %s\n", strings.Join(r.absent, ", "))
	}
	if len(r.present) == 0 {
		return fmt.Errorf("none of the panel genes (%s) is a column of the input", r.panel.Label())
	}

	for _, col := range []string{r.layout.SubtypeColumn, r.layout.TimeColumn, r.layout.EventColumn} {
		if col != "" && !r.table.Has(col) {
			log.Printf("Warning: column %s not found; the analyses that need it are skipped\n", col)
		}
	}

	r.samples = cohort.Samples(r.table, r.layout)
	r.combos = classify.Combinations(r.table, r.present)
	return nil
}

func (r *report) hasSubtype() bool {
	return r.layout.SubtypeColumn != "" && r.table.Has(r.layout.SubtypeColumn)
}

func (r *report) hasSurvival() bool {
	return r.table.Has(r.layout.TimeColumn, r.layout.EventColumn)
}

func (r *report) write(path string) error {
	wb, err := workbook.New()
	if err != nil {
		return err
	}
	defer wb.Close()

	if r.hasSubtype() {
		log.Println("Writing sheet Dados_PAM50")
		if err := r.rawSheet(wb, "Dados_PAM50", []string{r.layout.SubtypeColumn}); err != nil {
			return err
		}
	}
	if r.hasSurvival() {
		log.Println("Writing sheet Dados_Sobrevida")
		if err := r.rawSheet(wb, "Dados_Sobrevida", []string{r.layout.TimeColumn, r.layout.EventColumn}); err != nil {
			return err
		}
	}

	log.Println("Writing sheet Analise_Estatistica")
	if err := r.statisticsSheet(wb); err != nil {
		return err
	}

	log.Println("Writing sheet Correlacao_Continua")
	if err := r.continuousSheet(wb); err != nil {
		return err
	}

	log.Println("Writing sheet Log")
	if err := r.logSheet(wb); err != nil {
		return err
	}

	return wb.SaveAs(path)
}

// rawSheet copies the given columns plus the panel genes for every sample
// that has all of them.
func (r *report) rawSheet(wb *workbook.Workbook, name string, cols []string) error {
	s, err := wb.Sheet(name)
	if err != nil {
		return err
	}
	cols = append(append([]string(nil), cols...), r.present...)

	var rows [][]interface{}
	for i, id := range r.table.Index {
		row := []interface{}{id}
		for _, c := range cols {
			cell := r.table.String(i, c)
			if table.IsMissing(cell) {
				row = nil
				break
			}
			if f := r.table.Float(i, c); f.Valid {
				row = append(row, f.Float64)
			} else {
				row = append(row, cell)
			}
		}
		if row != nil {
			rows = append(rows, row)
		}
	}

	return s.Table(append([]string{r.table.IndexName}, cols...), rows)
}

func countRows(counts []tabulate.Count) [][]interface{} {
	rows := make([][]interface{}, len(counts))
	for i, c := range counts {
		rows[i] = []interface{}{c.Key, c.N, tabulate.Round(c.Percent, 2)}
	}
	return rows
}

func (r *report) vitalStatus() []string {
	out := make([]string, len(r.samples))
	for i, s := range r.samples {
		if !s.Event.Valid {
			continue
		}
		if s.Event.Bool {
			out[i] = dead
		} else {
			out[i] = alive
		}
	}
	return out
}

func (r *report) comboNames() []string {
	out := make([]string, len(r.combos))
	for i, c := range r.combos {
		out[i] = c.Name
	}
	return out
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// pairs keeps the (row, column) pairs whose column value is set.
func pairs(rows, cols []string) ([]string, []string) {
	var rs, cs []string
	for i := range rows {
		if cols[i] != "" {
			rs = append(rs, rows[i])
			cs = append(cs, cols[i])
		}
	}
	return rs, cs
}

func crosstabRows(c tabulate.Crosstab, cells func(i, j int) interface{}) [][]interface{} {
	rows := make([][]interface{}, len(c.RowKeys))
	for i, key := range c.RowKeys {
		row := []interface{}{key}
		for j := range c.ColKeys {
			row = append(row, cells(i, j))
		}
		rows[i] = row
	}
	return rows
}

func (r *report) statisticsSheet(wb *workbook.Workbook) error {
	s, err := wb.Sheet("Analise_Estatistica")
	if err != nil {
		return err
	}

	total := r.table.Len()
	if err := s.Table([]string{"Total de Pacientes"}, [][]interface{}{{total}}); err != nil {
		return err
	}
	s.Skip(1)

	subtypes := make([]string, len(r.samples))
	for i, smp := range r.samples {
		subtypes[i] = smp.Subtype
	}
	status := r.vitalStatus()
	groups := r.comboNames()

	if r.hasSubtype() {
		counts := tabulate.ValueCounts(nonEmpty(subtypes))
		if err := s.Table([]string{"PAM50 Subtipo", "Absoluto", "Porcentagem"}, countRows(counts)); err != nil {
			return err
		}
		s.Skip(2)
	}

	if r.table.Has(r.layout.EventColumn) {
		counts := tabulate.ValueCounts(nonEmpty(status))
		if err := s.Table([]string{"Status Sobrevida (Evento)", "Absoluto", "Porcentagem"}, countRows(counts)); err != nil {
			return err
		}
		s.Skip(2)
	}

	counts := tabulate.ValueCounts(groups)
	if err := s.Table([]string{"Grupo de Expressão (Geral)", "Absoluto", "Porcentagem"}, countRows(counts)); err != nil {
		return err
	}
	s.Skip(2)

	if r.hasSubtype() {
		rows, cols := pairs(groups, subtypes)
		ct, err := tabulate.NewCrosstab(rows, cols, nil, nil)
		if err != nil {
			return err
		}
		header := append([]string{"grupo_expressao"}, ct.ColKeys...)

		if err := s.Line("Específico PAM50: Contagem Absoluta por Grupo de Expressão"); err != nil {
			return err
		}
		if err := s.Table(header, crosstabRows(ct, func(i, j int) interface{} { return ct.Cells[i][j] })); err != nil {
			return err
		}
		s.Skip(1)

		pct := ct.ColumnPercent()
		if err := s.Line("Específico PAM50: Porcentagem por Subtipo (%)"); err != nil {
			return err
		}
		if err := s.Table(header, crosstabRows(ct, func(i, j int) interface{} { return tabulate.Round(pct[i][j], 1) })); err != nil {
			return err
		}
		s.Skip(2)
	}

	if r.table.Has(r.layout.EventColumn) {
		rows, cols := pairs(groups, status)
		ct, err := tabulate.NewCrosstab(rows, cols, nil, nil)
		if err != nil {
			return err
		}

		pText := "Teste Chi-Square falhou (provavelmente poucos dados)."
		if res, err := tabulate.ChiSquare(ct); err == nil {
			pText = fmt.Sprintf("P-Valor Chi-Square (Associação entre Grupo e Status): %.4e", res.P)
		}

		if err := s.Line("Específico Sobrevida: Contagem Absoluta por Grupo de Expressão"); err != nil {
			return err
		}
		header := append([]string{"grupo_expressao"}, ct.ColKeys...)
		if err := s.Table(header, crosstabRows(ct, func(i, j int) interface{} { return ct.Cells[i][j] })); err != nil {
			return err
		}
		s.Skip(1)
		if err := s.Line(pText); err != nil {
			return err
		}

		if r.fisher {
			if p, err := tabulate.FisherExact(ct.Compact()); err == nil {
				if err := s.Line(fmt.Sprintf("P-Valor Exato de Fisher (bicaudal): %.4e", p)); err != nil {
					return err
				}
			}
		}
		s.Skip(2)
	}

	return nil
}

// coxRow is one line of the Correlacao_Continua sheet.
type coxRow struct {
	Group string
	Gene  string
	P     interface{}
	HR    interface{}
	CI    string
}

// continuousRows fits, within every combination that expresses at least
// one gene, a Cox model of survival on each expressed gene's level.
func (r *report) continuousRows() []coxRow {
	if !r.hasSurvival() {
		return nil
	}

	members := make(map[string][]int)
	var names []string
	for i, c := range r.combos {
		if c.Count == 0 {
			continue
		}
		if _, ok := members[c.Name]; !ok {
			names = append(names, c.Name)
		}
		members[c.Name] = append(members[c.Name], i)
	}
	sort.Strings(names)

	var out []coxRow
	for _, name := range names {
		for _, gene := range strings.Split(name, "_") {
			var obs []survival.Observation
			var x []float64
			for _, i := range members[name] {
				smp := r.samples[i]
				v := r.table.Float(i, gene)
				if !smp.HasSurvival() || !v.Valid {
					continue
				}
				obs = append(obs, survival.Observation{Time: smp.Time.Float64, Event: smp.Event.Bool})
				x = append(x, v.Float64)
			}

			row := coxRow{Group: name, Gene: gene, CI: "Dados insuficientes"}
			if n, events := survival.Counts(obs); n > 10 && events > 1 {
				if res, err := survival.CoxPH(obs, x); err != nil {
					row.CI = err.Error()
				} else {
					row.P = res.P
					row.HR = res.HazardRatio
					row.CI = fmt.Sprintf("[%.2f-%.2f]", res.Lower95, res.Upper95)
				}
			}
			out = append(out, row)
		}
	}
	return out
}

func (r *report) continuousSheet(wb *workbook.Workbook) error {
	s, err := wb.Sheet("Correlacao_Continua")
	if err != nil {
		return err
	}

	results := r.continuousRows()
	if len(results) == 0 {
		return s.Line("Nenhuma análise contínua foi executada.")
	}

	rows := make([][]interface{}, len(results))
	for i, res := range results {
		rows[i] = []interface{}{res.Group, res.Gene, "Nível Expressão vs Sobrevida", "Cox PH P-Value", res.P, res.HR, res.CI}
	}
	return s.Table([]string{"Grupo Expressão", "Gene Analisado", "Teste", "Estatística", "Valor", "Hazard Ratio (HR)", "HR (IC 95%)"}, rows)
}

func (r *report) logSheet(wb *workbook.Workbook) error {
	s, err := wb.Sheet("Log")
	if err != nil {
		return err
	}

	absent := "Nenhum"
	if len(r.absent) > 0 {
		absent = strings.Join(r.absent, ", ")
	}

	rows := [][]interface{}{
		{"Data da Análise", r.started.Format(time.RFC3339)},
		{"Arquivo de Entrada", filepath.Base(r.input)},
		{"Pasta de Entrada", filepath.Dir(r.input)},
		{"Arquivo de Saída", r.output},
		{"Layout de Colunas", r.layout.Name},
		{"Genes de Interesse", r.panel.Label()},
		{"Genes Encontrados", strings.Join(r.present, ", ")},
		{"Genes Ausentes", absent},
		{"", ""},
		{"Metodologia de Análise", ""},
		{"Definição de 'Gene Expresso'", "Valor de expressão > 0 (usado nas abas 'Analise_Estatistica')"},
		{"Grupos de Expressão", "Baseado na combinação de quais genes tinham expressão > 0 para cada amostra."},
		{"Aba 'Analise_Estatistica'", "Contagens (absolutas e %) e Teste Chi-Square para associação entre 'grupos de expressão' e 'status de sobrevida'."},
		{"Aba 'Correlacao_Continua'", "Análise do NÍVEL de expressão (valor numérico) DENTRO de cada 'grupo de expressão'."},
		{"... vs Sobrevida", "Modelo de Riscos Proporcionais de Cox (aproximação de Efron para empates)."},
		{"... (Interpretação HR)", "Hazard Ratio (HR) > 1 sugere maior risco (pior sobrevida) com o aumento da expressão; HR < 1 sugere menor risco (melhor sobrevida)."},
		{"", ""},
	}
	for _, kv := range compileinfo.Get().Rows() {
		rows = append(rows, []interface{}{kv[0], kv[1]})
	}

	return s.Table([]string{"Item", "Descrição"}, rows)
}
