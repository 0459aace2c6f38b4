package optimize

import (
	"atalan/internal/cell"
	"atalan/internal/ir"
)

// maxInlineInstrs bounds which callees Inline will substitute in place:
// "small callees" per spec §4.8's inliner note. Grounded on the
// original's MAX_INLINE_PROC_SIZE constant in opt_var_use.c, which caps
// the body length rather than attempting a cost model.
const maxInlineInstrs = 12

// Inline replaces CALL instructions targeting a small, non-recursive
// callee with a copy of that callee's body, substituting parameter cells
// for the actual argument cells (spec §4.8: "must precede C6 because it
// edits the linear instruction list" — bl here is still the flat,
// pre-basic-block-split stream translate.Run produced, not yet split by
// package blockbuild). CALL to a callee above the size threshold, an
// interrupt handler, or the caller itself (direct recursion) is left
// untouched.
func Inline(pool *cell.Pool, bl *ir.BlockList, calleeBody func(*cell.Cell) *ir.BlockList, params func(*cell.Cell) []*cell.Cell) {
	for b := range bl.Blocks {
		for i := range b.Instrs {
			if i.Op != ir.CALL {
				continue
			}
			callee := i.Arg1
			if !eligible(callee, calleeBody) {
				continue
			}
			body := calleeBody(callee)
			if body == bl {
				continue
			}
			if instrCount(body) > maxInlineInstrs {
				continue
			}
			inlineOne(pool, b, i, callee, body, params(callee), flattenTuple(i.Arg2))
		}
	}
}

func eligible(callee *cell.Cell, calleeBody func(*cell.Cell) *ir.BlockList) bool {
	if callee == nil || callee.Type == nil || !callee.Type.IsType(cell.PROC) {
		return false
	}
	if callee.Flags.Has(cell.ProcInterrupt) {
		return false
	}
	return calleeBody(callee) != nil
}

func instrCount(bl *ir.BlockList) int {
	n := 0
	for b := range bl.Blocks {
		for range b.Instrs {
			n++
		}
	}
	return n
}

// inlineOne splices a substituted copy of callee's body in place of call,
// mapping each formal parameter cell to its corresponding argument cell
// and every other body-local cell to a fresh copy (so repeated inlining
// of the same callee never aliases locals across call sites).
func inlineOne(pool *cell.Pool, b *ir.Block, call *ir.Instr, callee *cell.Cell, body *ir.BlockList, params, args []*cell.Cell) {
	subst := map[*cell.Cell]*cell.Cell{}
	for i, p := range params {
		if i < len(args) {
			subst[p] = args[i]
		}
	}

	at := call
	for bb := range body.Blocks {
		for i := range bb.Instrs {
			if i.Op == ir.PROC || i.Op == ir.ENDPROC || i.Op == ir.PROLOGUE || i.Op == ir.EPILOGUE {
				continue
			}
			ni := ir.New(i.Op, mapCell(pool, subst, i.Result), mapCell(pool, subst, i.Arg1), mapCell(pool, subst, i.Arg2))
			ni.At = call.At
			b.InsertAfter(at, ni)
			at = ni
		}
	}
	b.Remove(call)
}

// mapCell returns c unchanged when it isn't a body-local the inliner
// needs to rename (constants, globals, already-substituted parameters);
// otherwise it returns a fresh per-call-site copy so repeated inlining
// doesn't let two call sites share one local.
func mapCell(pool *cell.Pool, subst map[*cell.Cell]*cell.Cell, c *cell.Cell) *cell.Cell {
	if c == nil {
		return nil
	}
	if mapped, ok := subst[c]; ok {
		return mapped
	}
	if c.Kind != cell.VAR || c.Scope == nil {
		return c
	}
	dup := pool.Copy(c)
	subst[c] = dup
	return dup
}

func flattenTuple(c *cell.Cell) []*cell.Cell {
	if c == nil {
		return nil
	}
	if c.Kind == cell.TUPLE {
		return append(flattenTuple(c.First()), flattenTuple(c.Second())...)
	}
	return []*cell.Cell{c}
}
