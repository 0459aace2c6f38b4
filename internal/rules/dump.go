package rules

import (
	"fmt"
	"maps"
	"slices"

	"atalan/internal/ir"
)

// Summary returns a deterministically ordered, one-line-per-opcode report
// of how many translation and emission rules are registered for each
// opcode family that has at least one of either — consulted by the -V
// verbose trace (spec §6) to show what rule coverage a compilation ran
// with, without dumping the rule slices' internal representation.
//
// Rule families are gathered into a map first (registration order across
// db.Translate/db.Emit is otherwise opcode-array order, which already
// happens to be deterministic, but grouping by name makes the report
// readable); the map is then flattened through maps.Keys and ordered
// with slices.Sorted so two runs over an identical database always print
// identical output, independent of map iteration order.
func (db *DB) Summary() []string {
	type counts struct{ translate, emit int }
	byName := make(map[string]counts)
	for op := ir.Opcode(0); op < ir.NumOpcodes; op++ {
		t, e := len(db.Translate[op]), len(db.Emit[op])
		if t == 0 && e == 0 {
			continue
		}
		byName[op.String()] = counts{t, e}
	}

	names := slices.Sorted(maps.Keys(byName))
	lines := make([]string, 0, len(names))
	for _, name := range names {
		c := byName[name]
		lines = append(lines, fmt.Sprintf("%s: %d translate, %d emit", name, c.translate, c.emit))
	}
	return lines
}
