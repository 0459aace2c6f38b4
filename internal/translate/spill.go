// Package translate implements the rule-driven translator (spec §4.5):
// rewriting a procedure's instruction stream with the rule database's
// translation namespace, plus the register-argument spill protocol run
// beforehand at every procedure and call-site boundary.
//
// Grounded on the original source's calling-convention handling in
// emit.c/variables.c: a register-bound parameter's Adr() names the
// physical register cell it is passed through (Adr is already "where
// this variable's value lives" for memory locals — a register is simply
// another kind of location), while body code addresses that register
// cell directly until spilling introduces a dedicated local in its place.
package translate

import (
	"atalan/internal/cell"
	"atalan/internal/ir"
)

// SpillRegisterArgs applies the register-argument spill protocol to one
// procedure: for every register-bound parameter, decouple the body's
// direct register references from the parameter's boundary behavior by
// routing the body through a fresh local (spec §4.5). Must run before
// rule-based translation rewrites the body's instructions, since the
// temporaries it introduces are themselves ordinary LET instructions
// subject to the usual translation rules.
func SpillRegisterArgs(pool *cell.Pool, proc *cell.Cell, bl *ir.BlockList) {
	for _, p := range paramsOf(proc) {
		spillOne(pool, bl, p)
	}
	for blk := range bl.Blocks {
		for i := range blk.Instrs {
			if i.Op == ir.CALL {
				callSiteSpill(pool, blk, i)
			}
		}
	}
}

// paramsOf returns proc's formal parameters: proc is the procedure's VAR
// cell, proc.Type the PROC-variant TYPE cell whose Subscope chain holds
// them (spec §4.1's procedure-parameter twist, cell.FindInChain).
func paramsOf(proc *cell.Cell) []*cell.Cell {
	if proc == nil || proc.Type == nil || !proc.Type.IsType(cell.PROC) {
		return nil
	}
	var params []*cell.Cell
	for m := range cell.Members(proc.Type) {
		params = append(params, m)
	}
	return params
}

// spillOne handles one register-bound parameter p. If p carries neither
// ARG_IN nor ARG_OUT it is left untouched (register submode alone, with
// no parameter direction, names an ordinary scratch register rather than
// a calling-convention boundary).
func spillOne(pool *cell.Pool, bl *ir.BlockList, p *cell.Cell) {
	if !p.Submode.Has(cell.REG) {
		return
	}
	in := p.Submode.Has(cell.ARG_IN)
	out := p.Submode.Has(cell.ARG_OUT)
	if !in && !out {
		return
	}
	reg := p.Adr()
	if reg == nil {
		return
	}

	tmp := pool.Alloc(cell.VAR)
	tmp.Type = p.Type
	replaceAllUses(bl, reg, tmp)

	if in {
		if first := bl.First; first != nil {
			ld := ir.New(ir.LET, tmp, reg, nil)
			if first.First != nil {
				ld.At = first.First.At
			}
			first.Prepend(ld)
		}
	}
	if out {
		insertAtEveryExit(bl, func(at *ir.Instr) *ir.Instr {
			st := ir.New(ir.LET, reg, tmp, nil)
			st.At = at.At
			return st
		})
	}
}

// replaceAllUses rewrites every occurrence of old as an instruction
// operand (Result, Arg1 or Arg2) across bl to new.
func replaceAllUses(bl *ir.BlockList, old, repl *cell.Cell) {
	for blk := range bl.Blocks {
		for i := range blk.Instrs {
			if i.Result == old {
				i.Result = repl
			}
			if i.Arg1 == old {
				i.Arg1 = repl
			}
			if i.Arg2 == old {
				i.Arg2 = repl
			}
		}
	}
}

// insertAtEveryExit inserts build(endproc)'s result immediately before
// every ENDPROC instruction in bl — the procedure's exit paths, before
// the basic-block builder (§4.6) has run to give them a more structured
// identity.
func insertAtEveryExit(bl *ir.BlockList, build func(at *ir.Instr) *ir.Instr) {
	for blk := range bl.Blocks {
		for i := range blk.Instrs {
			if i.Op != ir.ENDPROC {
				continue
			}
			blk.InsertBefore(i, build(i))
		}
	}
}

// callSiteSpill implements the call-site leg of the spill protocol (spec
// §4.5): compute each input argument into a fresh temporary first, move
// register-passed arguments into their registers right before the CALL,
// and preserve register-passed outputs into fresh temporaries right
// after it. call.Arg1 is the callee, call.Arg2 the (possibly TUPLE-
// chained) argument list.
func callSiteSpill(pool *cell.Pool, blk *ir.Block, call *ir.Instr) {
	callee := call.Arg1
	if callee == nil || callee.Type == nil || !callee.Type.IsType(cell.PROC) {
		return
	}
	params := paramsOf(callee)
	args := flattenArgs(call.Arg2)

	tmps := make([]*cell.Cell, len(args))
	for i, a := range args {
		tmp := pool.Alloc(cell.VAR)
		tmp.Type = a.Type
		ld := ir.New(ir.LET, tmp, a, nil)
		ld.At = call.At
		blk.InsertBefore(call, ld)
		tmps[i] = tmp
	}

	for i, param := range params {
		if i >= len(tmps) {
			break
		}
		if !param.Submode.Has(cell.REG) || !param.Submode.Has(cell.ARG_IN) {
			continue
		}
		reg := param.Adr()
		if reg == nil {
			continue
		}
		mv := ir.New(ir.LET, reg, tmps[i], nil)
		mv.At = call.At
		blk.InsertBefore(call, mv)
	}

	for _, param := range params {
		if !param.Submode.Has(cell.REG) || !param.Submode.Has(cell.ARG_OUT) {
			continue
		}
		reg := param.Adr()
		if reg == nil {
			continue
		}
		tmp := pool.Alloc(cell.VAR)
		tmp.Type = param.Type
		cp := ir.New(ir.LET, tmp, reg, nil)
		cp.At = call.At
		blk.InsertAfter(call, cp)
	}
}

// flattenArgs expands a (possibly nested) TUPLE argument list into its
// leaves in left-to-right order; nil yields no arguments and a single
// non-TUPLE cell yields one.
func flattenArgs(c *cell.Cell) []*cell.Cell {
	if c == nil {
		return nil
	}
	if c.Kind == cell.TUPLE {
		return append(flattenArgs(c.First()), flattenArgs(c.Second())...)
	}
	return []*cell.Cell{c}
}
