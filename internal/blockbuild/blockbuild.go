// Package blockbuild implements the basic-block builder (spec §4.6):
// splitting a procedure's linear instruction list at labels and jumps,
// computing each block's successors, and validating jump targets.
package blockbuild

import (
	"atalan/internal/diag"
	"atalan/internal/ir"
)

// Build splits linear's instruction stream into basic blocks: a new
// block starts at every LABEL instruction, at every input block that
// already carries a Label (so linear may be an earlier Build's output),
// and immediately after every terminator (a jump, CALL, or ENDPROC). The
// returned BlockList replaces linear; linear itself is left empty.
//
// sink receives an UndefinedReference diagnostic for every jump whose
// target label is not defined anywhere in this procedure, and a more
// specific one when the label is defined but belongs to a different
// procedure (inter-procedural jumps are forbidden, spec §4.6) — detected
// by otherProcLabels, the set of label names defined in the program's
// OTHER procedures (supplied by the caller, which knows the whole
// program's procedure list).
func Build(sink *diag.Sink, linear *ir.BlockList, otherProcLabels map[string]bool) *ir.BlockList {
	out := ir.NewBlockList()
	labels := map[string]*ir.Block{}

	cur := ir.NewBlock()
	out.Append(cur)

	for oldBlock := range linear.Blocks {
		if oldBlock.Label != nil {
			if !cur.Empty() {
				cur = ir.NewBlock()
				out.Append(cur)
			}
			cur.Label = oldBlock.Label
			labels[oldBlock.Label.Name] = cur
		}
		for i := range oldBlock.Instrs {
			oldBlock.Remove(i)
			if i.Op == ir.LABEL {
				if !cur.Empty() {
					cur = ir.NewBlock()
					out.Append(cur)
				}
				cur.Label = i.Result
				if i.Result != nil {
					labels[i.Result.Name] = cur
				}
				continue
			}
			cur.Append(i)
			if i.Op.IsTerminator() {
				cur = ir.NewBlock()
				out.Append(cur)
			}
		}
	}
	if cur.Empty() && cur != out.First {
		out.Remove(cur)
	}

	resolve(sink, out, labels, otherProcLabels)
	return out
}

// resolve computes each block's successors and reports unresolved jump
// targets.
func resolve(sink *diag.Sink, bl *ir.BlockList, labels map[string]*ir.Block, otherProcLabels map[string]bool) {
	blocks := make([]*ir.Block, 0)
	for b := range bl.Blocks {
		blocks = append(blocks, b)
	}
	for idx, b := range blocks {
		last := b.Last
		if last == nil {
			if idx+1 < len(blocks) {
				b.Succ[0] = blocks[idx+1]
			}
			continue
		}
		switch {
		case last.Op.IsUnconditionalJump():
			b.Succ[0] = target(sink, last, labels, otherProcLabels)

		case last.Op.IsConditionalJump():
			b.Succ[0] = target(sink, last, labels, otherProcLabels)
			if idx+1 < len(blocks) {
				b.Succ[1] = blocks[idx+1]
			}

		case last.Op == ir.ENDPROC:
			// no successor: end of procedure

		default:
			if idx+1 < len(blocks) {
				b.Succ[0] = blocks[idx+1]
			}
		}
	}
}

func target(sink *diag.Sink, jump *ir.Instr, labels map[string]*ir.Block, otherProcLabels map[string]bool) *ir.Block {
	name := labelName(jump)
	if name == "" {
		return nil
	}
	if b, ok := labels[name]; ok {
		return b
	}
	if otherProcLabels[name] {
		sink.Report(diag.UndefinedReference, jump.At, name,
			"label %q is defined in a different procedure; inter-procedural jumps are forbidden", name)
		return nil
	}
	sink.Report(diag.UndefinedReference, jump.At, name, "undefined label %q", name)
	return nil
}

// labelName extracts the target label's name from a jump instruction.
// GOTO and the IFxx family carry their target as Result (spec §4.3
// doesn't name the slot explicitly; this mirrors LABEL's own use of
// Result to carry the label cell, keeping the convention uniform across
// every instruction that names a label).
func labelName(jump *ir.Instr) string {
	if jump.Result == nil {
		return ""
	}
	return jump.Result.Name
}
