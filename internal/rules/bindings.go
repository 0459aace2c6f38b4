package rules

import "atalan/internal/cell"

// Bindings is the %A..%Z substitution table (spec §4.4): the 26 slots an
// ARG pattern may bind to, shared between pattern capture and emission
// format-string interpolation. Matching must respect all earlier bindings
// of the same slot within one match attempt.
type Bindings struct {
	slots [26]*cell.Cell
	bound [26]bool
}

// Bind records slot (1..26) as matching c. If the slot was already bound
// in this match attempt, it succeeds only when c is consistent with the
// earlier binding (same cell, or equal constant value).
func (b *Bindings) Bind(slot int, c *cell.Cell) bool {
	i := slot - 1
	if b.bound[i] {
		return sameCell(b.slots[i], c)
	}
	b.bound[i] = true
	b.slots[i] = c
	return true
}

// Get returns the cell bound to slot, or nil if the slot was not bound.
func (b *Bindings) Get(slot int) *cell.Cell {
	if slot < 1 || slot > 26 {
		return nil
	}
	return b.slots[slot-1]
}

// sameCell is the consistency check for repeated slot bindings: identical
// cell identity, or two constants carrying the same value.
func sameCell(a, b *cell.Cell) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case cell.CONST_INT:
		return a.IntValue == b.IntValue
	case cell.CONST_TEXT:
		return a.TextValue == b.TextValue
	default:
		return false
	}
}
