// Package styles colors plain command line messages written outside the
// interactive prompt.
package styles

import (
	"io"

	"github.com/muesli/termenv"
)

// Error renders s in red when w is a color capable terminal.
func Error(w io.Writer, s string) string {
	out := termenv.NewOutput(w)
	return out.String(s).Foreground(out.Color("9")).String()
}

// Warning renders s in bold yellow when w is a color capable terminal.
func Warning(w io.Writer, s string) string {
	out := termenv.NewOutput(w)
	return out.String(s).Foreground(out.Color("11")).Bold().String()
}
