// Package sampletype decodes the sample-type field of TCGA aliquot barcodes
// (TCGA-XX-YYYY-ZZ...), whose fourth field starts with a two digit code
// telling primary tumour, metastasis and normal tissue apart.
package sampletype

import (
	"sort"
	"strings"
)

// Code is the two digit sample-type code, or Unknown.
type Code string

const (
	Unknown       Code = "UNKNOWN"
	PrimaryTumor  Code = "01"
	Metastatic    Code = "06"
	NormalTissue  Code = "11"
	UnknownDetail      = "Outros/Desconhecido"
)

// Descriptions maps each code to its English name with the Portuguese term
// used on the study's charts in parentheses.
var Descriptions = map[Code]string{
	"01": "Primary Solid Tumor (Tumor Sólido Primário - Geralmente Ressecção Cirúrgica)",
	"02": "Recurrent Solid Tumor (Tumor Recorrente)",
	"03": "Primary Blood Derived Cancer (Câncer Sanguíneo Primário)",
	"04": "Recurrent Blood Derived Cancer - Bone Marrow (Câncer Recorrente Medular)",
	"05": "Additional - New Primary (Adicional - Novo Primário)",
	"06": "Metastatic (Metástase - Frequentemente Biópsia)",
	"07": "Additional Metastatic (Metástase Adicional)",
	"08": "Human Tumor Original Cells (Células Originais de Tumor Humano)",
	"09": "Primary Blood Derived Cancer - Bone Marrow (Câncer Primário Medular)",
	"10": "Blood Derived Normal (Normal Derivado de Sangue)",
	"11": "Solid Tissue Normal (Tecido Sólido Normal - Adjacente à Ressecção)",
	"12": "Buccal Cell Normal (Célula Bucal Normal)",
	"13": "EBV Immortalized Normal (Normal Imortalizado por EBV)",
	"14": "Bone Marrow Normal (Medula Óssea Normal)",
	"20": "Control Analyte (Analito de Controle)",
	"40": "Recurrent Blood Derived Cancer - Peripheral Blood (Câncer Recorrente Sanguíneo)",
	"50": "Cell Lines (Linhagens Celulares)",
	"60": "Primary Xenograft Tissue (Tecido Xenográfico Primário)",
	"61": "Cell Line Derived Xenograft Tissue (Tecido Xenográfico Derivado de Linhagem)",
}

// Parse extracts the sample-type code from a barcode. Barcodes with fewer
// than four dash separated fields yield Unknown.
func Parse(barcode string) Code {
	parts := strings.Split(strings.TrimSpace(barcode), "-")
	if len(parts) < 4 || len(parts[3]) == 0 {
		return Unknown
	}
	field := parts[3]
	if len(field) > 2 {
		field = field[:2]
	}
	return Code(field)
}

// Description is the full label for the code, or UnknownDetail.
func (c Code) Description() string {
	if d, ok := Descriptions[c]; ok {
		return d
	}
	return UnknownDetail
}

// Short is the Portuguese term alone, e.g. "Tumor Sólido Primário".
func (c Code) Short() string {
	d := c.Description()
	open := strings.Index(d, "(")
	if open < 0 {
		return d
	}
	inner := strings.TrimRight(d[open+1:], ")")
	if dash := strings.Index(inner, "-"); dash >= 0 {
		inner = inner[:dash]
	}
	return strings.TrimSpace(inner)
}

// IsTumor reports whether the code denotes tumour material.
func (c Code) IsTumor() bool {
	switch c {
	case "01", "02", "03", "05", "06", "07", "08", "09", "40":
		return true
	}
	return false
}

// Summary is one line of the sample-type breakdown.
type Summary struct {
	Code        Code
	Description string
	Count       int
	Percent     float64
}

// Summarize counts barcodes by code, ordered by code as text.
func Summarize(barcodes []string) []Summary {
	counts := make(map[Code]int)
	for _, b := range barcodes {
		counts[Parse(b)]++
	}

	out := make([]Summary, 0, len(counts))
	for c, n := range counts {
		out = append(out, Summary{
			Code:        c,
			Description: c.Description(),
			Count:       n,
			Percent:     100 * float64(n) / float64(len(barcodes)),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })

	return out
}
