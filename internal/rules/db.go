package rules

import "atalan/internal/ir"

// DB holds the two rule namespaces of spec §4.4, each indexed by opcode
// (one slice per opcode rather than the original's linked list per
// opcode — same "linear list, first match wins, order is priority"
// semantics, built with a Go slice instead of hand-rolled next pointers).
type DB struct {
	Translate [ir.NumOpcodes][]*Rule
	Emit      [ir.NumOpcodes][]*Rule
}

// NewDB creates an empty rule database.
func NewDB() *DB { return &DB{} }

// AddTranslate registers r in the translation namespace. Rules are tried
// in registration order, so earlier AddTranslate calls take priority.
func (db *DB) AddTranslate(r *Rule) {
	db.Translate[r.Op] = append(db.Translate[r.Op], r)
}

// AddEmit registers r in the emission namespace.
func (db *DB) AddEmit(r *Rule) {
	db.Emit[r.Op] = append(db.Emit[r.Op], r)
}

// MatchTranslate returns the first translation rule matching instr, or
// (nil, nil) if the instruction is already target-legal.
func (db *DB) MatchTranslate(instr *ir.Instr) (*Rule, *Bindings) {
	return match(db.Translate[instr.Op], instr)
}

// MatchEmit returns the first emission rule matching instr. LINE
// instructions are the one opcode RuleMatch treats specially (spec
// §4.8): their operands are a line number and line text, not matchable
// cell patterns, so the first registered rule is returned unconditionally
// rather than pattern-matched (mirrors the original EmitRule's explicit
// INSTR_LINE bypass).
func (db *DB) MatchEmit(instr *ir.Instr) (*Rule, *Bindings) {
	if instr.Op == ir.LINE {
		rules := db.Emit[ir.LINE]
		if len(rules) == 0 {
			return nil, nil
		}
		return rules[0], &Bindings{}
	}
	return match(db.Emit[instr.Op], instr)
}

func match(candidates []*Rule, instr *ir.Instr) (*Rule, *Bindings) {
	for _, r := range candidates {
		if b, ok := r.Matches(instr); ok {
			return r, b
		}
	}
	return nil, nil
}
