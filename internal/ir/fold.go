package ir

import (
	"math"

	"atalan/internal/cell"
)

// InstrEvalConst folds a binary or unary operator over constant operands
// at expression-assembly time (spec §4.3, §4.8): if the operands are
// constants the opcode understands, it computes and returns the folded
// result cell; otherwise it returns nil and the caller emits a real
// instruction instead. This is how constant sub-expressions collapse
// without ever reaching the IR (spec §8 property 4: folding twice is a
// no-op, scenario S1).
//
// Returning nil rather than a cell.NULL-kind cell keeps package cell's
// pool invariants simple: a NULL-kind cell means "freed, on the free
// list", which a folded-but-failed result is not.
func InstrEvalConst(pool *cell.Pool, op Opcode, a, b *cell.Cell) *cell.Cell {
	if op.isFoldableUnary() {
		return foldUnary(pool, op, a)
	}
	if op.isFoldableBinary() {
		if s, ok := foldTextConcat(pool, op, a, b); ok {
			return s
		}
		return foldBinary(pool, op, a, b)
	}
	return nil
}

func asInt(c *cell.Cell) (int64, bool) {
	if c == nil || c.Kind != cell.CONST_INT {
		return 0, false
	}
	return c.IntValue, true
}

func foldBinary(pool *cell.Pool, op Opcode, a, b *cell.Cell) *cell.Cell {
	av, aok := asInt(a)
	bv, bok := asInt(b)
	if !aok || !bok {
		return nil
	}
	var r int64
	switch op {
	case ADD:
		r = av + bv
	case SUB:
		r = av - bv
	case MUL:
		r = av * bv
	case DIV:
		if bv == 0 {
			return nil // division by zero is not folded; left for diagnosis downstream
		}
		r = av / bv
	case MOD:
		if bv == 0 {
			return nil
		}
		r = av % bv
	case AND:
		r = av & bv
	case OR:
		r = av | bv
	case XOR:
		r = av ^ bv
	default:
		return nil
	}
	out := pool.Alloc(cell.CONST_INT)
	out.IntValue = r
	return out
}

func foldUnary(pool *cell.Pool, op Opcode, a *cell.Cell) *cell.Cell {
	av, ok := asInt(a)
	if !ok {
		return nil
	}
	var r int64
	switch op {
	case NOT:
		r = ^av
	case HI:
		r = (av >> 8) & 0xFF
	case LO:
		r = av & 0xFF
	case SQRT:
		if av < 0 {
			return nil
		}
		r = int64(math.Sqrt(float64(av)))
	default:
		return nil
	}
	out := pool.Alloc(cell.CONST_INT)
	out.IntValue = r
	return out
}

// foldTextConcat handles ADD over two CONST_TEXT operands as string
// concatenation — the "(or textual where applicable)" case in spec §4.3.
func foldTextConcat(pool *cell.Pool, op Opcode, a, b *cell.Cell) (*cell.Cell, bool) {
	if op != ADD {
		return nil, false
	}
	if a == nil || b == nil || a.Kind != cell.CONST_TEXT || b.Kind != cell.CONST_TEXT {
		return nil, false
	}
	out := pool.Alloc(cell.CONST_TEXT)
	out.TextValue = a.TextValue + b.TextValue
	return out, true
}
