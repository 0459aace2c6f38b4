// Package optimize implements the optimizer passes of spec §4.8: constant
// folding over already-emitted instructions, jump threading, dead-code
// elimination, and a procedure inliner that must run before the basic
// block builder re-splits a procedure's body.
//
// Grounded on the original compiler's multi-pass OptimizeVariables/
// OptimizeJumps/opt_var_use.c pipeline: each pass is a small, independent
// sweep over the instruction list rather than one monolithic rewrite, and
// passes are expected to be re-run (spec §4.8: "until a fixed point" isn't
// required, but nothing stops a caller from iterating) since folding can
// expose dead code and dead-code removal can expose more foldable
// constants.
package optimize

import (
	"atalan/internal/cell"
	"atalan/internal/ir"
)

// FoldConstants replaces every instruction whose operands are constants
// InstrEvalConst understands with a LET of the folded result, using the
// same rule the expression-assembly front end applies inline (spec §4.8:
// "constant folding integration"). Opcodes InstrEvalConst doesn't
// recognize (LET itself, control flow, LINE, ...) are left untouched.
func FoldConstants(pool *cell.Pool, bl *ir.BlockList) {
	for b := range bl.Blocks {
		for i := range b.Instrs {
			folded := ir.InstrEvalConst(pool, i.Op, i.Arg1, i.Arg2)
			if folded == nil {
				continue
			}
			i.Op = ir.LET
			i.Arg1 = folded
			i.Arg2 = nil
		}
	}
}

// ThreadJumps forwards every jump whose target block contains nothing but
// an unconditional GOTO directly to that GOTO's own target, repeating
// until no block changes (spec §4.8: "forward predecessors through
// unconditional-jump-only blocks"). It also drops blocks left with no
// predecessor as a result, except the entry block.
func ThreadJumps(bl *ir.BlockList) {
	for {
		changed := false
		for b := range bl.Blocks {
			for side := 0; side < 2; side++ {
				if retarget(b, side) {
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}
	dropUnreachable(bl)
}

// retarget rewrites b.Succ[side] to skip over a chain of GOTO-only
// blocks; when that edge is b's own jump, the jump instruction's target
// label is rewritten with it. Returns true if it changed anything.
func retarget(b *ir.Block, side int) bool {
	target := b.Succ[side]
	if target == nil || target == b {
		return false
	}
	final := target
	seen := map[*ir.Block]bool{final: true}
	for isGotoOnly(final) {
		next := final.Succ[0]
		if next == nil || seen[next] {
			break
		}
		final = next
		seen[final] = true
	}
	if final == target {
		return false
	}
	if last := b.Last; side == 0 && last != nil && (last.Op.IsUnconditionalJump() || last.Op.IsConditionalJump()) {
		if final.Label == nil {
			return false
		}
		last.Result = final.Label
	}
	b.Succ[side] = final
	return true
}

// isGotoOnly reports whether b's only instruction is an unconditional
// jump (so any predecessor can skip straight to b's own target).
func isGotoOnly(b *ir.Block) bool {
	return b.First != nil && b.First == b.Last && b.First.Op.IsUnconditionalJump()
}

// dropUnreachable removes every block with no predecessor other than the
// list's own entry block, which is always kept (it is the procedure's
// single entry point, spec §4.6).
func dropUnreachable(bl *ir.BlockList) {
	reachable := map[*ir.Block]bool{}
	if bl.First != nil {
		reachable[bl.First] = true
	}
	for b := range bl.Blocks {
		for _, s := range b.Succ {
			if s != nil {
				reachable[s] = true
			}
		}
	}
	for b := range bl.Blocks {
		if b != bl.First && !reachable[b] {
			bl.Remove(b)
		}
	}
}

// EliminateDeadStores removes writes to a variable with zero remaining
// reads and no externally visible side effect (spec §4.8: not IN, OUT, a
// register, or otherwise address-taken). Read/Write counts are the
// cell's own liveness counters; this pass only removes the write
// instruction, it never rebalances the counters of operands it deletes —
// callers that need exact counts after repeated passes recompute them
// with CountUses first.
func EliminateDeadStores(bl *ir.BlockList) {
	for b := range bl.Blocks {
		for i := range b.Instrs {
			if i.Op != ir.LET && i.Op != ir.LET_ADR {
				continue
			}
			if isDeadWrite(i.Result) {
				b.Remove(i)
			}
		}
	}
}

func isDeadWrite(v *cell.Cell) bool {
	if v == nil || v.Kind != cell.VAR {
		return false
	}
	if v.Read > 0 {
		return false
	}
	if v.Submode.Has(cell.IN) || v.Submode.Has(cell.OUT) || v.Submode.Has(cell.ARG_OUT) || v.Submode.Has(cell.REG) {
		return false
	}
	if v.Flags.Has(cell.Used) {
		return false
	}
	return true
}

// CountUses recomputes every operand cell's Read/Write liveness counters
// from scratch by walking bl once: a cell's Result slot counts as a
// write, its Arg1/Arg2 slots as reads. Call this after a pass that
// deletes instructions and before EliminateDeadStores relies on fresh
// counts.
func CountUses(bl *ir.BlockList) {
	seen := map[*cell.Cell]bool{}
	reset := func(c *cell.Cell) {
		if c != nil && !seen[c] {
			c.Read, c.Write = 0, 0
			seen[c] = true
		}
	}
	for b := range bl.Blocks {
		for i := range b.Instrs {
			reset(i.Result)
			reset(i.Arg1)
			reset(i.Arg2)
		}
	}
	for b := range bl.Blocks {
		for i := range b.Instrs {
			if i.Result != nil {
				i.Result.Write++
			}
			if i.Arg1 != nil {
				i.Arg1.Read++
			}
			if i.Arg2 != nil {
				i.Arg2.Read++
			}
		}
	}
}
