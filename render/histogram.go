package render

import (
	"fmt"
	"io"

	"github.com/aybabtme/uniplot/histogram"
)

// TerminalHistogram prints a text histogram of values, headed by the
// median that splits them.
func TerminalHistogram(w io.Writer, title string, values []float64, median float64) error {
	if _, err := fmt.Fprintf(w, "%s: n=%d median=%.4f\n", title, len(values), median); err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}
	hist := histogram.Hist(20, values)
	return histogram.Fprint(w, hist, histogram.Linear(40))
}
