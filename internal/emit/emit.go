// Package emit implements the emitter (C10, spec §4.10): rendering a
// compiled program to target assembly text using the emission rule
// namespace.
//
// Grounded on the original compiler's emit.c (EmitVar, EmitInstr,
// EmitProc, EmitOpen/Close, EmitLabels, EmitProcedures, EmitAsmIncludes):
// the emission order — variable labels, then procedures, then .asm
// includes, then CODE_END, then storage-allocation directives — mirrors
// EmitOpen/EmitClose's fixed sequence, and NameOf's scope-prefixing
// mirrors EmitVar's own name formatting.
package emit

import (
	"fmt"
	"strconv"
	"strings"

	"atalan/internal/cell"
	"atalan/internal/diag"
	"atalan/internal/ir"
	"atalan/internal/rules"
	"atalan/internal/typesys"
)

// Program is the whole-compilation view the emitter needs.
type Program struct {
	Procedures  []*cell.Cell // emitted in the order given; Used/reachable filtering already done
	Variables   []*cell.Cell // every named variable with a known address or value
	AsmIncludes []string     // sibling .asm file paths to \include
}

// Emitter renders a Program to assembly text using db's emission rules.
type Emitter struct {
	DB   *rules.DB
	Sink *diag.Sink
}

// Emit renders prog in full, returning the assembled text (spec §4.10's
// fixed order: variable labels, procedures, asm includes, CODE_END,
// storage-allocation directives).
func (e *Emitter) Emit(prog *Program) string {
	var out strings.Builder
	e.emitVariableLabels(&out, prog.Variables)
	e.emitProcedures(&out, prog.Procedures)
	e.emitAsmIncludes(&out, prog.AsmIncludes)
	out.WriteString("\tCODE_END\n")
	e.emitStorage(&out, prog.Variables)
	return out.String()
}

func (e *Emitter) emitVariableLabels(out *strings.Builder, vars []*cell.Cell) {
	for _, v := range vars {
		if v.Val() == nil && v.Adr() == nil {
			continue
		}
		fmt.Fprintf(out, "%s:\n", NameOf(v))
	}
}

func (e *Emitter) emitProcedures(out *strings.Builder, procs []*cell.Cell) {
	for _, p := range procs {
		bl := ir.BodyOf(p)
		if bl == nil {
			continue
		}
		fmt.Fprintf(out, "%s:\n", NameOf(p))
		for b := range bl.Blocks {
			if b.Label != nil {
				fmt.Fprintf(out, "%s:\n", NameOf(b.Label))
			}
			for i := range b.Instrs {
				e.emitInstr(out, i)
			}
		}
	}
}

func (e *Emitter) emitInstr(out *strings.Builder, i *ir.Instr) {
	rule, bind := e.DB.MatchEmit(i)
	if rule == nil {
		e.Sink.Fatal(i.At, "no emission rule matches opcode %s", i.Op)
		return
	}
	for _, line := range rule.EmitLines {
		out.WriteString(rules.Interpolate(line, i, bind, Render))
		out.WriteByte('\n')
	}
}

func (e *Emitter) emitAsmIncludes(out *strings.Builder, paths []string) {
	for _, p := range paths {
		fmt.Fprintf(out, "\t\\include \"%s\"\n", p)
	}
}

// emitStorage emits ALLOC directives for every variable whose address was
// chosen by the allocator rather than given a literal value (spec §4.10:
// "honoring ALIGN when the type carries an alignment hint via its adr
// slot"). dim-1/dim-2 are an array type's element count and element size.
func (e *Emitter) emitStorage(out *strings.Builder, vars []*cell.Cell) {
	for _, v := range vars {
		if v.Val() != nil || v.Adr() == nil {
			continue
		}
		if align := alignHintOf(v.Type); align > 0 {
			fmt.Fprintf(out, "\tALIGN %d\n", align)
		}
		dim1, dim2 := storageDims(v.Type)
		fmt.Fprintf(out, "%s:\tALLOC %d, %d\n", NameOf(v), dim1, dim2)
	}
}

// storageDims returns an array type's (element count, element size) —
// ALLOC's dim-1/dim-2 — using EffectiveStep for the per-element size
// (open question 4: a zero Step falls through to TypeSize(Element)), or
// (1, TypeSize(t)) for a scalar.
func storageDims(t *cell.Cell) (int64, int64) {
	if t == nil || !t.IsType(cell.ARRAY) {
		return 1, int64(typesys.TypeSize(t))
	}
	step := typesys.EffectiveStep(t)
	total := int64(typesys.TypeSize(t))
	if step == 0 {
		return 0, 0
	}
	return total / step, step
}

// alignHintOf returns the alignment (in bytes) t's AlignHint requests, by
// reporting the size of the type it names (spec §4.10: "honoring ALIGN
// when the type carries an alignment hint via its adr slot").
func alignHintOf(t *cell.Cell) int64 {
	if t == nil || t.TypeInfo == nil || t.TypeInfo.AlignHint == nil {
		return 0
	}
	return int64(typesys.TypeSize(t.TypeInfo.AlignHint))
}

// NameOf renders a cell's emitted name, scope-prefixed when it lives
// inside a named procedure or struct (original EmitVar: a local's label
// includes its owning scope so two procedures' same-named locals never
// collide in the generated assembly text).
func NameOf(c *cell.Cell) string {
	if c == nil {
		return ""
	}
	if c.Scope != nil && c.Scope.Name != "" && c.Scope.Kind != cell.NULL {
		return c.Scope.Name + "_" + c.Name
	}
	return c.Name
}

// Render is the rules.CellRenderer the emitter supplies to
// rules.Interpolate: it alone knows how to format a constant, a quoted
// string, or a named reference for the target assembler's syntax.
func Render(c *cell.Cell, quoted bool) string {
	if c == nil {
		return ""
	}
	switch c.Kind {
	case cell.CONST_INT:
		return strconv.FormatInt(c.IntValue, 10)
	case cell.CONST_TEXT:
		if quoted {
			return strconv.Quote(c.TextValue)
		}
		return c.TextValue
	default:
		return NameOf(c)
	}
}
