// Package typesys implements type operations (spec §4.2): constructing
// type cells, computing size/range/limits, and matching values against
// types. It builds on package cell's TYPE kind and TypeInfo payload.
//
// Grounded on branches/newtech/src/atalan/type.c's TypeAlloc/TypeType/
// TypeAdrOf constructors.
package typesys

import "atalan/internal/cell"

func alloc(pool *cell.Pool, variant cell.Variant) *cell.Cell {
	t := pool.Alloc(cell.TYPE)
	t.TypeInfo = &cell.TypeInfo{Variant: variant}
	return t
}

// NewUndefined allocates the placeholder type assigned before inference
// has determined a cell's real type.
func NewUndefined(pool *cell.Pool) *cell.Cell { return alloc(pool, cell.UNDEFINED) }

// NewInt allocates an INT type with range [min,max]. min must be <= max
// (invariant 3); violating this is a programmer error in the caller (the
// parser is expected to have already range-checked any user-facing
// declaration) and panics rather than returning an error.
func NewInt(pool *cell.Pool, min, max int64) *cell.Cell {
	if min > max {
		panic("typesys: NewInt with min > max")
	}
	t := alloc(pool, cell.INT)
	t.TypeInfo.Min = min
	t.TypeInfo.Max = max
	return t
}

// NewString allocates the built-in string type.
func NewString(pool *cell.Pool) *cell.Cell { return alloc(pool, cell.STRING) }

// NewLabel allocates the built-in label type (invariant 5: never occupies
// storage).
func NewLabel(pool *cell.Pool) *cell.Cell { return alloc(pool, cell.LABEL) }

// NewProc allocates an empty procedure type. Parameters are attached to it
// afterwards via pool.Attach(param, procType) so that name lookup can find
// them through the procedure-typed-scope twist (cell.FindInChain).
func NewProc(pool *cell.Pool) *cell.Cell { return alloc(pool, cell.PROC) }

// NewMacro allocates an empty macro type.
func NewMacro(pool *cell.Pool) *cell.Cell { return alloc(pool, cell.MACRO) }

// NewScopeType allocates the type of a SCOPE cell.
func NewScopeType(pool *cell.Pool) *cell.Cell { return alloc(pool, cell.SCOPE_T) }

// NewAdr allocates an "address of element" type. A nil element means
// "address of memory in general"; TypeSize falls back to AdrSize either
// way (spec §4.2: "a platform address size (default 2)").
func NewAdr(pool *cell.Pool, element *cell.Cell) *cell.Cell {
	t := alloc(pool, cell.ADR)
	t.TypeInfo.Element = element
	return t
}

// NewTypeOfType allocates "type of <restriction>"; restriction == nil
// means the unconstrained meta-type.
func NewTypeOfType(pool *cell.Pool, restriction *cell.Cell) *cell.Cell {
	t := alloc(pool, cell.TYPE_T)
	t.TypeInfo.Element = restriction
	return t
}

// NewArray allocates an array type: element is the item type, index is
// the dimension type (an INT range, or a TUPLE_T of per-dimension types
// for a multi-dimensional array). step == 0 means "use TypeSize(element)"
// (open question 4 — load-bearing, preserved here and in EffectiveStep).
func NewArray(pool *cell.Pool, element, index *cell.Cell, step int64) *cell.Cell {
	t := alloc(pool, cell.ARRAY)
	t.TypeInfo.Element = element
	t.TypeInfo.Index = index
	t.TypeInfo.Step = step
	return t
}

// NewTuple allocates a TUPLE_T type pairing left and right.
func NewTuple(pool *cell.Pool, left, right *cell.Cell) *cell.Cell {
	t := alloc(pool, cell.TUPLE_T)
	t.TypeInfo.Left = left
	t.TypeInfo.Right = right
	return t
}

// NewVariant allocates a VARIANT_T type (a tagged union of left/right).
func NewVariant(pool *cell.Pool, left, right *cell.Cell) *cell.Cell {
	t := alloc(pool, cell.VARIANT_T)
	t.TypeInfo.Left = left
	t.TypeInfo.Right = right
	return t
}

// NewStruct allocates a STRUCT type and attaches members both to its
// Members slice (declaration order, for StructAssignOffsets) and to its
// Subscope chain (so cell.FindInChain can resolve "struct.field" lookups
// the same way it resolves procedure parameters).
func NewStruct(pool *cell.Pool, members []*cell.Cell) *cell.Cell {
	t := alloc(pool, cell.STRUCT)
	t.TypeInfo.Members = members
	for _, m := range members {
		pool.Attach(m, t)
	}
	return t
}

// Derive produces a new type whose Type back-pointer references base,
// supporting named derived-integer types. The derived type's range starts
// out identical to base's and is marked Flexible so it may still widen
// during inference (open question 1), until the declaration site narrows
// it explicitly.
func Derive(pool *cell.Pool, base *cell.Cell) *cell.Cell {
	t := pool.Alloc(cell.TYPE)
	t.Type = base
	if base != nil && base.TypeInfo != nil {
		info := *base.TypeInfo // shallow copy of the payload
		info.Owner = base
		info.Flexible = true
		t.TypeInfo = &info
	} else {
		t.TypeInfo = &cell.TypeInfo{Variant: cell.UNDEFINED, Owner: base, Flexible: true}
	}
	return t
}

// NewConstInt allocates a CONST_INT cell holding v.
func NewConstInt(pool *cell.Pool, v int64) *cell.Cell {
	c := pool.Alloc(cell.CONST_INT)
	c.IntValue = v
	return c
}

// ConstIntValue reads the value of a CONST_INT cell.
func ConstIntValue(c *cell.Cell) (int64, bool) {
	if c == nil || c.Kind != cell.CONST_INT {
		return 0, false
	}
	return c.IntValue, true
}
