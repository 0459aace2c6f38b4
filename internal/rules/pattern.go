// Package rules implements the rule database and pattern matcher (spec
// §4.4): the operand-pattern language, the per-opcode rule tables, and the
// %0/%1/%2/%A-%Z/%'/%t format-string interpolation the emitter uses.
// Grounded on the original compiler's EMIT_RULES
// table and RuleMatch/EmitInstr2 (original_source/src/emit.c).
package rules

import "atalan/internal/cell"

// PatternKind discriminates the operand-pattern language of spec §4.4.
type PatternKind uint8

const (
	PAny      PatternKind = iota // ANY — matches anything
	PRegister                    // REGISTER — a specific CPU register cell
	PVariable                    // VARIABLE : T — a variable whose type is compatible with T
	PValue                       // VALUE v — the literal integer v
	PConst                       // CONST — any constant
	PDeref                       // DEREF p — a pointer dereference of p
	PByte                        // BYTE(arr, index)
	PElement                     // ELEMENT(arr, index)
	PTuple                       // TUPLE(p1, p2)
	PRange                       // RANGE(lo, hi)
	PArg                         // ARG n — binds macro-argument slot n (1..26)
)

// Pattern is one node of an operand pattern. Structural patterns (Deref,
// Byte, Element, Tuple, Range) hold their sub-patterns in Sub; leaf
// patterns use the remaining fields per Kind.
type Pattern struct {
	Kind PatternKind

	RegisterCell *cell.Cell // PRegister: the specific register this pattern matches
	Type         *cell.Cell // PVariable: required type (compatibility, not identity)
	Value        int64      // PValue: the literal to match
	Slot         int        // PArg: macro-argument slot, 1..26

	Sub []*Pattern // PDeref: len 1; PByte/PElement/PTuple/PRange: len 2
}

// Any returns a pattern that matches any operand, including a nil one.
func Any() *Pattern { return &Pattern{Kind: PAny} }

// Register returns a pattern that matches only reg itself.
func Register(reg *cell.Cell) *Pattern { return &Pattern{Kind: PRegister, RegisterCell: reg} }

// Variable returns a pattern matching any VAR cell whose type is
// compatible with t.
func Variable(t *cell.Cell) *Pattern { return &Pattern{Kind: PVariable, Type: t} }

// Value returns a pattern matching only the literal integer v.
func Value(v int64) *Pattern { return &Pattern{Kind: PValue, Value: v} }

// Const returns a pattern matching any constant cell (CONST_INT or
// CONST_TEXT).
func Const() *Pattern { return &Pattern{Kind: PConst} }

// Deref returns a pattern matching a DEREF cell whose pointee matches p.
func Deref(p *Pattern) *Pattern { return &Pattern{Kind: PDeref, Sub: []*Pattern{p}} }

// Byte returns a pattern matching a BYTE cell whose container and index
// recursively match arr and index.
func Byte(arr, index *Pattern) *Pattern { return &Pattern{Kind: PByte, Sub: []*Pattern{arr, index}} }

// Element returns a pattern matching an ELEMENT cell whose container and
// index recursively match arr and index (a multi-index access becomes a
// nested Element whose index sub-pattern is a Tuple).
func Element(arr, index *Pattern) *Pattern {
	return &Pattern{Kind: PElement, Sub: []*Pattern{arr, index}}
}

// Tuple returns a structural pattern matching a TUPLE cell.
func Tuple(p1, p2 *Pattern) *Pattern { return &Pattern{Kind: PTuple, Sub: []*Pattern{p1, p2}} }

// Range returns a structural pattern matching a RANGE cell.
func Range(lo, hi *Pattern) *Pattern { return &Pattern{Kind: PRange, Sub: []*Pattern{lo, hi}} }

// Arg returns a pattern that matches anything and binds the matched cell
// to macro-argument slot n (1..26, corresponding to %A..%Z).
func Arg(n int) *Pattern {
	if n < 1 || n > 26 {
		panic("rules: argument slot out of range 1..26")
	}
	return &Pattern{Kind: PArg, Slot: n}
}
