package compileinfo

import (
	"fmt"
	"os"
	"runtime/debug"
)

// CompileInfo identifies the build that produced a set of outputs, so a
// chart or workbook can be traced back to the code that made it.
type CompileInfo struct {
	Package    string
	GoVersion  string
	Commit     string
	CommitTime string
	Modified   bool
}

func (c CompileInfo) String() string {
	mod := ""
	if c.Modified {
		mod = " Files in the repo were modified after that commit."
	}

	return fmt.Sprintf("This %s analysis was built with %s at commit %v at time %v.%s", c.Package, c.GoVersion, c.Commit, c.CommitTime, mod)
}

// Rows renders the build as key/value pairs for a report's log sheet.
func (c CompileInfo) Rows() [][2]string {
	modified := "não"
	if c.Modified {
		modified = "sim"
	}
	return [][2]string{
		{"Programa", c.Package},
		{"Go", c.GoVersion},
		{"Commit", c.Commit},
		{"Data do commit", c.CommitTime},
		{"Alterações locais", modified},
	}
}

func Get() CompileInfo {
	out := CompileInfo{}

	z, ok := debug.ReadBuildInfo()
	if !ok {
		return out
	}

	out.GoVersion = z.GoVersion
	out.Package = z.Path
	for _, s := range z.Settings {
		switch s.Key {
		case "vcs.revision":
			out.Commit = s.Value
		case "vcs.time":
			out.CommitTime = s.Value
		case "vcs.modified":
			out.Modified = s.Value == "true"
		}
	}

	return out
}

func PrintToStdErr() {
	fmt.Fprintf(os.Stderr, "%s\n", Get())
}
