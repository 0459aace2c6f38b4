package typesys

import "atalan/internal/cell"

// CellMin and CellMax compute the minimum/maximum representable integer
// value reachable from c, recursing into VARIANT/TUPLE/TYPE/SEQUENCE cells
// (spec §4.2). A plain CONST_INT cell's min and max are both its own
// value. ok is false when c carries no determinable integer range (e.g. a
// STRING or PROC type).
func CellMin(c *cell.Cell) (v int64, ok bool) { return cellLimit(c, true) }
func CellMax(c *cell.Cell) (v int64, ok bool) { return cellLimit(c, false) }

func cellLimit(c *cell.Cell, wantMin bool) (int64, bool) {
	if c == nil {
		return 0, false
	}
	switch c.Kind {
	case cell.CONST_INT:
		return c.IntValue, true
	case cell.SEQUENCE:
		return combine(cellLimit(c.L, wantMin), cellLimit(c.R, wantMin), wantMin)
	case cell.TYPE:
		if c.TypeInfo == nil {
			return 0, false
		}
		switch c.TypeInfo.Variant {
		case cell.INT:
			if wantMin {
				return c.TypeInfo.Min, true
			}
			return c.TypeInfo.Max, true
		case cell.VARIANT_T, cell.TUPLE_T:
			return combine(cellLimit(c.TypeInfo.Left, wantMin), cellLimit(c.TypeInfo.Right, wantMin), wantMin)
		default:
			return 0, false
		}
	default:
		return 0, false
	}
}

// combine merges two (value, ok) results from cellLimit's recursive
// branches: the overall minimum is the smaller of the two known minimums
// (and symmetrically for maximum), per cell.TypeInfo's union semantics for
// VARIANT_T/TUPLE_T/SEQUENCE — each branch contributes a possible value
// range and the combined range must cover every branch.
func combine(a int64, aok bool, b int64, bok bool, wantMin bool) (int64, bool) {
	switch {
	case aok && bok:
		if wantMin == (a < b) {
			return a, true
		}
		return b, true
	case aok:
		return a, true
	case bok:
		return b, true
	default:
		return 0, false
	}
}
