package rules

import (
	"atalan/internal/cell"
	"atalan/internal/ir"
)

// OrigRef names one of the matched instruction's own operand slots, for a
// translation substitution that needs to reuse an operand the pattern
// didn't bind to a macro-argument slot (e.g. a substitution that keeps
// the original Result cell but rewrites Arg1/Arg2).
type OrigRef uint8

const (
	OrigNone OrigRef = iota
	OrigResult
	OrigArg1
	OrigArg2
)

// TemplateOperand is one operand of a translation-rule substitution
// instruction: a literal cell baked into the rule (e.g. a specific
// register), a reference to a macro-argument binding captured by the
// match, or a reference to one of the matched instruction's own operands.
type TemplateOperand struct {
	Literal *cell.Cell
	Slot    int // 1..26 when this operand is an ARG reference; 0 otherwise
	Orig    OrigRef
}

// LiteralOperand returns a template operand that is always c, regardless
// of match bindings.
func LiteralOperand(c *cell.Cell) TemplateOperand { return TemplateOperand{Literal: c} }

// ArgOperand returns a template operand resolved from macro-argument slot
// n (1..26) at instantiation time.
func ArgOperand(n int) TemplateOperand { return TemplateOperand{Slot: n} }

// ResultOperand, Arg1Operand and Arg2Operand return template operands
// that pass through the matched instruction's own Result/Arg1/Arg2.
func ResultOperand() TemplateOperand { return TemplateOperand{Orig: OrigResult} }
func Arg1Operand() TemplateOperand   { return TemplateOperand{Orig: OrigArg1} }
func Arg2Operand() TemplateOperand   { return TemplateOperand{Orig: OrigArg2} }

// Resolve computes the concrete cell a template operand stands for,
// given the instruction that matched and the bindings captured while
// matching it.
func (o TemplateOperand) Resolve(instr *ir.Instr, b *Bindings) *cell.Cell {
	switch {
	case o.Literal != nil:
		return o.Literal
	case o.Slot != 0:
		return b.Get(o.Slot)
	case o.Orig == OrigResult:
		return instr.Result
	case o.Orig == OrigArg1:
		return instr.Arg1
	case o.Orig == OrigArg2:
		return instr.Arg2
	default:
		return nil
	}
}

// TemplateInstr is one instruction of a translation rule's substitution
// block (spec §4.4: "substitution is another IR block").
type TemplateInstr struct {
	Op                 ir.Opcode
	Result, Arg1, Arg2 TemplateOperand
}

// Instantiate builds a concrete *ir.Instr from t by resolving its
// template operands against the instruction that matched and its
// bindings.
func (t TemplateInstr) Instantiate(instr *ir.Instr, b *Bindings) *ir.Instr {
	return ir.New(t.Op, t.Result.Resolve(instr, b), t.Arg1.Resolve(instr, b), t.Arg2.Resolve(instr, b))
}

// Rule pairs an instruction pattern with a substitution (spec §4.4). Only
// one of To/EmitLines is populated, matching whichever of the two rule
// namespaces the rule belongs to:
//
//   - Translation rules carry To, a template instruction sequence spliced
//     into the instruction stream in place of the match.
//   - Emission rules carry EmitLines, one format string per output line
//     (grounded on the original EmitInstr's "for each `to` instruction,
//     EmitInstr2(i, to->arg1->str)" — the substitution there is purely a
//     list of format strings, not real instructions, since emission never
//     feeds back into the IR).
type Rule struct {
	Op         ir.Opcode
	Result     *Pattern
	Arg1, Arg2 *Pattern

	To        []TemplateInstr
	EmitLines []string
}

// NewTranslateRule builds a translation-namespace rule.
func NewTranslateRule(op ir.Opcode, result, arg1, arg2 *Pattern, to []TemplateInstr) *Rule {
	return &Rule{Op: op, Result: result, Arg1: arg1, Arg2: arg2, To: to}
}

// NewEmitRule builds an emission-namespace rule.
func NewEmitRule(op ir.Opcode, result, arg1, arg2 *Pattern, lines []string) *Rule {
	return &Rule{Op: op, Result: result, Arg1: arg1, Arg2: arg2, EmitLines: lines}
}

// Matches tests instr against r, returning the populated ARG bindings on
// success. A fresh Bindings is used per attempt so a failed rule never
// pollutes the next one tried in the same opcode's rule list.
func (r *Rule) Matches(instr *ir.Instr) (*Bindings, bool) {
	if instr.Op != r.Op {
		return nil, false
	}
	b := &Bindings{}
	if !MatchOperand(r.Result, instr.Result, b) {
		return nil, false
	}
	if !MatchOperand(r.Arg1, instr.Arg1, b) {
		return nil, false
	}
	if !MatchOperand(r.Arg2, instr.Arg2, b) {
		return nil, false
	}
	return b, true
}
