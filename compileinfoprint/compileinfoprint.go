// compileinfoprint is imported by each pipeline binary for the side effect of
// printing its build provenance to os.Stderr before any output is written.
package compileinfoprint

import "github.com/carbocation/mamanalysis/compileinfo"

func init() {
	compileinfo.PrintToStdErr()
}
