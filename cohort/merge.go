package cohort

import (
	"context"
	"log"

	"github.com/carbocation/mamanalysis/table"
)

// MergeStats records how many samples survived each join.
type MergeStats struct {
	Genes             int
	ExpressionSamples int
	ClinicalRows      int
	SurvivalRows      int
	ClinicalJoin      table.JoinStats
	ExpressionJoin    table.JoinStats
	DroppedPatient    bool
}

// Merge joins the clinical table with the survival table and then with the
// transposed expression matrix (genes as rows, samples as columns). Samples
// absent from any input are dropped without error; an empty result is
// logged as a warning and returned as is.
func Merge(expression, clinical, survivalTable *table.Table, layout Layout) (*table.Table, MergeStats) {
	stats := MergeStats{
		Genes:             expression.Len(),
		ExpressionSamples: len(expression.Columns),
		ClinicalRows:      clinical.Len(),
		SurvivalRows:      survivalTable.Len(),
	}

	bySample := expression.Transpose(clinical.IndexName)

	if layout.PatientColumn != "" && survivalTable.Has(layout.PatientColumn) {
		survivalTable = survivalTable.Drop(layout.PatientColumn)
		stats.DroppedPatient = true
		log.Printf("Removed duplicate %s column from the survival table\n", layout.PatientColumn)
	}

	full, cs := clinical.Join(survivalTable)
	stats.ClinicalJoin = cs
	log.Printf("Clinical + survival: %s\n", cs)

	merged, es := full.Join(bySample)
	stats.ExpressionJoin = es
	log.Printf("Clinical + expression: %s\n", es)

	if merged.Len() == 0 {
		log.Println("WARNING: the merged table is empty. The sample identifiers in the first column do not match across the inputs.")
	}

	return merged, stats
}

// MergeFiles reads the three inputs (local or gs://, optionally compressed)
// and merges them.
func MergeFiles(ctx context.Context, expressionPath, clinicalPath, survivalPath string, layout Layout) (*table.Table, MergeStats, error) {
	expression, err := table.ReadFile(ctx, expressionPath)
	if err != nil {
		return nil, MergeStats{}, err
	}
	log.Printf("Loaded expression matrix: %d genes x %d samples\n", expression.Len(), len(expression.Columns))

	clinical, err := table.ReadFile(ctx, clinicalPath)
	if err != nil {
		return nil, MergeStats{}, err
	}
	log.Printf("Loaded clinical table: %d samples\n", clinical.Len())

	survivalTable, err := table.ReadFile(ctx, survivalPath)
	if err != nil {
		return nil, MergeStats{}, err
	}
	log.Printf("Loaded survival table: %d samples\n", survivalTable.Len())

	merged, stats := Merge(expression, clinical, survivalTable, layout)
	return merged, stats, nil
}
