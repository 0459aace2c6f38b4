package main

import (
	"fmt"
	"time"

	"atalan/internal/analyze"
	"atalan/internal/cell"
	"atalan/internal/compctx"
)

// Unit is everything one parsed source module hands the pipeline: the
// root (entry) procedure, every procedure cell analyze.Run should walk,
// the module-level variables the emitter should lay out, and any sibling
// .asm files the source named with an include directive.
type Unit struct {
	Root        *cell.Cell
	Program     *analyze.Program
	Variables   []*cell.Cell
	AsmIncludes []string
}

// Frontend is the parser's contract with the rest of the pipeline (spec
// §6: "the parser is external" — lexing, parsing and the expression
// front end that produces tagged cells are out of this module's scope).
// cmd/atalan depends only on this interface, so a real Atalan front end
// can be substituted for defaultFrontend without touching the driver.
type Frontend interface {
	Parse(ctx *compctx.Context, sourcePath string) (*Unit, error)
}

// defaultFrontend is the Frontend wired into the stock driver. No parser
// ships in this module (spec §6), so it always fails with a diagnostic
// explaining that a Frontend must be linked in — this keeps cmd/atalan a
// complete, buildable binary that exercises the rest of the pipeline
// (and the Frontend contract itself) without inventing a parser.
var defaultFrontend Frontend = unimplementedFrontend{}

type unimplementedFrontend struct{}

func (unimplementedFrontend) Parse(ctx *compctx.Context, sourcePath string) (*Unit, error) {
	return nil, fmt.Errorf("no front end linked into this build; cmd/atalan only implements C5 onward")
}

// buildTime is the timestamp printBanner renders with go-strftime. It is
// a plain call to time.Now rather than a link-time-injected build stamp:
// unlike cmd/sentra (which bakes VERSION/BuildDate/GitCommit in via
// -ldflags for a long-lived distributable binary), atalan's banner only
// needs to show when this particular invocation ran.
func buildTime() time.Time {
	return time.Now()
}
