// Package compctx bundles the process-wide state spec §9 calls out as
// "global mutable state... bundle these as a compiler-context value
// threaded through every pass rather than truly global": the cell pool
// (which already owns the current-scope stack), the generation cursor,
// the diagnostic sink, the CPU/platform descriptor, and the rule
// databases every pass consults.
package compctx

import (
	"atalan/internal/cell"
	"atalan/internal/diag"
	"atalan/internal/ir"
	"atalan/internal/platform"
	"atalan/internal/rules"
)

// Context is passed by pointer to every compiler pass (parser front end
// excluded, spec §6: "the parser is external"). It owns no goroutines or
// locks — spec §5 establishes the pipeline as single-threaded and
// synchronous, so a plain struct is sufficient.
type Context struct {
	Pool     *cell.Pool
	Gen      *ir.Cursor
	Sink     *diag.Sink
	Platform *platform.Descriptor
	Rules    *rules.DB

	// OptimizeLevel is -O's value (spec §6); 0 disables optimizer passes.
	OptimizeLevel int
	// Verbose and Release mirror -V and -R.
	Verbose bool
	Release bool
}

// New creates a Context with a fresh pool, cursor, sink and rule
// database, ready for a platform descriptor to be attached once -P (or
// its default) is resolved.
func New() *Context {
	return &Context{
		Pool:  cell.NewPool(),
		Gen:   ir.NewCursor(),
		Sink:  diag.NewSink(),
		Rules: rules.NewDB(),
	}
}

// Failed reports whether the compilation accumulated any fatal
// diagnostic so far (spec §7: "any pass that depends on a previous pass
// succeeding checks the error counter and short-circuits").
func (c *Context) Failed() bool { return c.Sink.Failed() }
