package diag

import (
	"fmt"
	"io"

	"github.com/kr/pretty"
	"github.com/mattn/go-isatty"
)

// Printer writes diagnostics and verbose (-V) dumps to an output stream.
// Coloring is only enabled when the stream is a real terminal, so a
// build log redirected to a file stays plain.
type Printer struct {
	w      io.Writer
	color  bool
	Header bool // set true by NewPrinter; nothing reads it (-V0 banner suppression is cliopts.Options.SuppressBanner)
}

// NewPrinter builds a Printer for w, auto-detecting color support via an
// *os.File file descriptor check when available.
func NewPrinter(w io.Writer, fd uintptr, isFile bool) *Printer {
	return &Printer{w: w, color: isFile && isatty.IsTerminal(fd), Header: true}
}

func (p *Printer) paint(code, s string) string {
	if !p.color {
		return s
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}

// PrintDiagnostic writes one diagnostic line, colorized red for errors and
// yellow for warnings.
func (p *Printer) PrintDiagnostic(d Diagnostic) {
	code := "31"
	if d.Kind.warning() {
		code = "33"
	}
	fmt.Fprintln(p.w, p.paint(code, d.String()))
}

// DumpVerbose pretty-prints an arbitrary IR/cell value for the -V
// per-procedure verbose trace using kr/pretty, which renders nested
// pointer structures (cells, instructions) far more readably than %+v.
func (p *Printer) DumpVerbose(label string, v interface{}) {
	fmt.Fprintf(p.w, "--- %s ---\n", label)
	fmt.Fprintln(p.w, pretty.Sprint(v))
}
