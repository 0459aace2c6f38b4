package rules

import (
	"atalan/internal/cell"
	"atalan/internal/typesys"
)

// MatchOperand tests whether c satisfies pattern p, recording any ARG
// bindings into b. A nil pattern matches only a nil cell (an absent
// operand, e.g. a unary instruction's Arg2).
func MatchOperand(p *Pattern, c *cell.Cell, b *Bindings) bool {
	if p == nil {
		return c == nil
	}
	switch p.Kind {
	case PAny:
		return true

	case PRegister:
		return c != nil && c.Submode.Has(cell.REG) && c == p.RegisterCell

	case PVariable:
		return c != nil && c.Kind == cell.VAR && typeCompatible(c.Type, p.Type)

	case PValue:
		return c != nil && c.Kind == cell.CONST_INT && c.IntValue == p.Value

	case PConst:
		return c != nil && (c.Kind == cell.CONST_INT || c.Kind == cell.CONST_TEXT)

	case PDeref:
		return c != nil && c.Kind == cell.DEREF && MatchOperand(p.Sub[0], c.Pointee(), b)

	case PByte:
		return c != nil && c.Kind == cell.BYTE &&
			MatchOperand(p.Sub[0], c.ByteOf(), b) && MatchOperand(p.Sub[1], c.ByteIndex(), b)

	case PElement:
		return c != nil && c.Kind == cell.ELEMENT &&
			MatchOperand(p.Sub[0], c.Container(), b) && MatchOperand(p.Sub[1], c.IndexOf(), b)

	case PTuple:
		return c != nil && c.Kind == cell.TUPLE &&
			MatchOperand(p.Sub[0], c.First(), b) && MatchOperand(p.Sub[1], c.Second(), b)

	case PRange:
		return c != nil && c.Kind == cell.RANGE &&
			MatchOperand(p.Sub[0], c.Lo(), b) && MatchOperand(p.Sub[1], c.Hi(), b)

	case PArg:
		return b.Bind(p.Slot, c)

	default:
		return false
	}
}

// typeCompatible reports whether a value of type have may be used where
// type want is expected: same meta-type variant, and for INT, have's
// representable range contained in want's (widening-safe, not identity —
// a VARIABLE:Byte pattern must also match a variable of a narrower
// derived subrange type).
func typeCompatible(have, want *cell.Cell) bool {
	if want == nil {
		return true
	}
	if have == nil || have.Kind != cell.TYPE || have.TypeInfo == nil {
		return false
	}
	if want.Kind != cell.TYPE || want.TypeInfo == nil {
		return false
	}
	if have.TypeInfo.Variant != want.TypeInfo.Variant {
		return false
	}
	if have.TypeInfo.Variant != cell.INT {
		return true
	}
	hMin, ok1 := typesys.CellMin(have)
	hMax, ok2 := typesys.CellMax(have)
	wMin, ok3 := typesys.CellMin(want)
	wMax, ok4 := typesys.CellMax(want)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return false
	}
	return hMin >= wMin && hMax <= wMax
}
