// Package analyze implements the procedure-use analyzer (spec §4.7):
// reachability marking from the root procedure, UsedInInterrupt
// propagation, ProcAddress detection, and jump-target validation that
// distinguishes an undefined label from one belonging to another
// procedure.
//
// Grounded on the original compiler's VarMarkUsed/VarMarkProcUsed
// recursion-guard idiom (Flags.Processed cleared on every exit path, spec
// invariant 6) so that mutually recursive procedures terminate the walk
// instead of looping forever.
package analyze

import (
	"atalan/internal/cell"
	"atalan/internal/ir"
)

// Program is the whole-compilation view the analyzer needs: every
// procedure cell plus its IR body, keyed so CALL and address-of operands
// can be resolved back to a procedure cell.
type Program struct {
	Procedures []*cell.Cell // every procedure VAR cell in the compilation
}

// Run marks every procedure reachable from root (spec §4.7). A procedure
// is reachable if it is root itself, or is CALLed (directly or
// indirectly) from a reachable procedure, or is named as a plain value
// operand (ProcAddress) of a reachable procedure — taking a procedure's
// address keeps it live even though it is never the target of a CALL
// instruction the analyzer can see.
//
// Interrupt handlers are always reachable regardless of root (spec §4.7:
// "an interrupt handler is live whether or not anything in the call graph
// calls it, since it is invoked by hardware"), and UsedInInterrupt
// propagates from an interrupt handler to everything it (transitively)
// calls, since such procedures must be compiled as if a call could
// interrupt them at any point.
func Run(prog *Program, root *cell.Cell) {
	for _, p := range prog.Procedures {
		if p.Flags.Has(cell.ProcInterrupt) {
			mark(p, false)
		}
	}
	if root != nil {
		mark(root, false)
	}
}

// mark walks proc's body, marking it Used and recursing into every
// procedure it calls or addresses. inInterrupt is true when this walk
// descends from an interrupt handler (or a procedure already marked
// UsedInInterrupt); every procedure visited in that state gets
// UsedInInterrupt set too.
//
// Flags.Processed guards against infinite recursion on a call cycle
// (invariant 6): set on entry, cleared on every return from this
// function so a later, independent walk (e.g. the interrupt-handler
// sweep above, followed by the root sweep) can revisit proc if needed.
func mark(proc *cell.Cell, inInterrupt bool) {
	if proc == nil || proc.Flags.Has(cell.Processed) {
		return
	}
	proc.Flags.Set(cell.Processed)
	defer proc.Flags.Clear(cell.Processed)

	proc.Flags.Set(cell.Used)
	if inInterrupt || proc.Flags.Has(cell.ProcInterrupt) || proc.Flags.Has(cell.UsedInInterrupt) {
		proc.Flags.Set(cell.UsedInInterrupt)
		inInterrupt = true
	}

	bl := ir.BodyOf(proc)
	if bl == nil {
		return
	}
	for b := range bl.Blocks {
		for i := range b.Instrs {
			walkInstr(i, inInterrupt)
		}
	}
}

func walkInstr(i *ir.Instr, inInterrupt bool) {
	switch i.Op {
	case ir.CALL:
		if callee := calleeOf(i.Arg1); callee != nil {
			mark(callee, inInterrupt)
		}
	default:
		for _, operand := range i.Operands() {
			markIfProcAddress(operand, inInterrupt)
		}
	}
}

// calleeOf returns the procedure cell a CALL's Arg1 names, or nil if it
// doesn't name one directly (spec leaves indirect/computed calls as a
// conservative "can't resolve" case — analysis simply can't mark a
// target it can't see).
func calleeOf(c *cell.Cell) *cell.Cell {
	if c == nil || c.Type == nil || !c.Type.IsType(cell.PROC) {
		return nil
	}
	return c
}

// markIfProcAddress marks c ProcAddress (spec §4.7: "procedure name used
// as a value operand, not a CALL target") and keeps it reachable, when c
// is itself a procedure cell referenced somewhere other than a CALL's
// Arg1 — e.g. passed as a callback value or stored into a variable.
func markIfProcAddress(c *cell.Cell, inInterrupt bool) {
	if c == nil || c.Type == nil || !c.Type.IsType(cell.PROC) {
		return
	}
	c.Flags.Set(cell.ProcAddress)
	mark(c, inInterrupt)
}
