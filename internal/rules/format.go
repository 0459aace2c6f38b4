package rules

import (
	"strconv"
	"strings"

	"atalan/internal/cell"
	"atalan/internal/ir"
)

// CellRenderer renders a single operand cell to its emitted textual form
// (variable/label name, constant value, quoted string literal...). It is
// supplied by package emit, which alone knows scope-prefixing and address
// formatting (original EmitVar); rules only knows which cell goes where in
// the format string. render(nil, quoted) must return "" — an absent
// operand renders as nothing, matching the original's "if (var != NULL)"
// guard.
type CellRenderer func(c *cell.Cell, quoted bool) string

// Interpolate expands an EMIT format string against instr's own operands
// (%0/%1/%2) and the macro-argument bindings captured during pattern
// matching (%A..%Z), per spec §4.4:
//
//   - %0, %1, %2   — instr's Result, Arg1, Arg2
//   - %A..%Z       — macro-argument slots 1..26 from b
//   - %'X          — X rendered in quoted textual form
//   - %t           — a literal tab
//   - for the LINE opcode, %1 is the source line number and %2 the line
//     text, rendered directly rather than through render
//
// Grounded on the original EmitInstr2's character-by-character format scan.
func Interpolate(format string, instr *ir.Instr, b *Bindings, render CellRenderer) string {
	var out strings.Builder
	runes := []rune(format)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if c != '%' || i+1 >= len(runes) {
			out.WriteRune(c)
			continue
		}
		i++
		quoted := false
		if runes[i] == '\'' {
			quoted = true
			i++
			if i >= len(runes) {
				break
			}
		}
		r := runes[i]
		switch {
		case r >= 'A' && r <= 'Z':
			out.WriteString(render(b.Get(int(r-'A')+1), quoted))
		case r == '0':
			out.WriteString(render(instr.Result, quoted))
		case r == '1':
			if instr.Op == ir.LINE {
				out.WriteString(strconv.FormatInt(lineNumber(instr), 10))
			} else {
				out.WriteString(render(instr.Arg1, quoted))
			}
		case r == '2':
			if instr.Op == ir.LINE {
				out.WriteString(lineText(instr))
			} else {
				out.WriteString(render(instr.Arg2, quoted))
			}
		case r == 't':
			out.WriteRune('\t')
		default:
			out.WriteRune(r)
		}
	}
	return out.String()
}

func lineNumber(instr *ir.Instr) int64 {
	if instr.Arg1 == nil {
		return 0
	}
	return instr.Arg1.IntValue
}

func lineText(instr *ir.Instr) string {
	if instr.Arg2 == nil {
		return ""
	}
	return instr.Arg2.TextValue
}
