// Package cell implements the unified symbolic cell model (spec §3, §4.1):
// the single tagged-node universe used for variables, constants, types,
// ranges and expressions, plus the bump+freelist slab allocator and scope
// tree operations described in spec §9's design notes.
package cell

import "atalan/internal/diag"

// Cell is the universal node. Shared bookkeeping lives in this header;
// kind-specific meaning is carried by L/R (generic child slots, aliased
// by the accessors below per the table in spec §3) and, for Kind==TYPE,
// by TypeInfo.
type Cell struct {
	Kind    Kind
	Submode Submode
	Flags   Flags

	Name string
	Idx  uint32 // numeric suffix for generated names (e.g. "_lbl3")
	At   diag.Bookmark

	Type *Cell // back-reference giving the semantic type

	L, R *Cell // generic child slots; see accessors for kind-specific aliases

	Scope       *Cell // parent scope (invariant 2: set at most once)
	Subscope    *Cell // head of this cell's own member list
	NextInScope *Cell // next sibling in Scope's member list

	Read, Write uint32 // liveness counters

	IntValue  int64  // payload when Kind == CONST_INT
	TextValue string // payload when Kind == CONST_TEXT

	TypeInfo *TypeInfo // non-nil only when Kind == TYPE

	Body *Body // attached instruction block list (procedures, initialized arrays)

	nextFree *Cell // free-list link; meaningful only when Kind == NULL
}

// Body is the instruction block list attached to a cell (a procedure's
// compiled form, or an initialized array's data block). It is declared as
// an opaque pointer type here — rather than importing package ir's
// *ir.BlockList directly — because ir imports cell for its operand type;
// package ir supplies typed helpers (ir.BodyOf/ir.SetBody) over this field
// so cell itself never needs to import ir.
type Body struct {
	Opaque interface{}
}

// --- kind-specific accessors (spec §3 table) -------------------------------

// Adr is VAR's physical address cell (nil if not yet allocated).
func (c *Cell) Adr() *Cell     { return c.L }
func (c *Cell) SetAdr(v *Cell) { c.L = v }

// Val is VAR's attached value.
func (c *Cell) Val() *Cell     { return c.R }
func (c *Cell) SetVal(v *Cell) { c.R = v }

// Lo/Hi are RANGE's low/high bound cells.
func (c *Cell) Lo() *Cell { return c.L }
func (c *Cell) Hi() *Cell { return c.R }

// First/Second are TUPLE's components.
func (c *Cell) First() *Cell  { return c.L }
func (c *Cell) Second() *Cell { return c.R }

// Container/Index are ELEMENT's container and index (the index may itself
// be a RANGE or TUPLE cell for multi-dimensional access).
func (c *Cell) Container() *Cell { return c.L }
func (c *Cell) IndexOf() *Cell   { return c.R }

// Pointee is DEREF's sole child.
func (c *Cell) Pointee() *Cell     { return c.R }
func (c *Cell) SetPointee(v *Cell) { c.R = v }

// ByteOf/ByteIndex are BYTE's containing cell and byte index.
func (c *Cell) ByteOf() *Cell    { return c.L }
func (c *Cell) ByteIndex() *Cell { return c.R }

// Left/Right are an operator cell's operands.
func (c *Cell) Left() *Cell  { return c.L }
func (c *Cell) Right() *Cell { return c.R }

// IsType reports whether c is a TYPE cell of the given variant.
func (c *Cell) IsType(v Variant) bool {
	return c != nil && c.Kind == TYPE && c.TypeInfo != nil && c.TypeInfo.Variant == v
}
