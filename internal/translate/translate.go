package translate

import (
	"atalan/internal/ir"
	"atalan/internal/rules"
)

// Run rewrites every instruction in bl using db's translation rules
// (spec §4.5): an instruction that matches a rule is replaced in place by
// the rule's instantiated substitution; an instruction matching no rule
// is already target-legal and is left untouched. Translation is
// deliberately non-confluent — db's per-opcode rule order is priority,
// not commutativity, and substituted instructions are not themselves
// re-matched in the same pass.
func Run(db *rules.DB, bl *ir.BlockList) {
	for b := range bl.Blocks {
		runBlock(db, b)
	}
}

func runBlock(db *rules.DB, b *ir.Block) {
	for i := range b.Instrs {
		rule, bind := db.MatchTranslate(i)
		if rule == nil {
			continue
		}
		splice(b, i, rule, bind)
	}
}

// splice replaces i with rule's instantiated substitution block, in
// order, preserving i's source bookmark on each new instruction.
func splice(b *ir.Block, i *ir.Instr, rule *rules.Rule, bind *rules.Bindings) {
	at := i
	for _, t := range rule.To {
		ni := t.Instantiate(i, bind)
		ni.At = i.At
		b.InsertAfter(at, ni)
		at = ni
	}
	b.Remove(i)
}
