package ir

import (
	"atalan/internal/cell"
	"atalan/internal/diag"
)

// Instr is one IR instruction: an opcode plus up to three operand cells
// (spec §4.3). Instructions are doubly linked within their owning Block so
// the translator and optimizer can splice replacements in place.
type Instr struct {
	Op           Opcode
	Result       *cell.Cell
	Arg1         *cell.Cell
	Arg2         *cell.Cell
	At           diag.Bookmark
	Format       string // EMIT's format string (spec §4.4); unused otherwise
	Prev, Next   *Instr
	Block        *Block
}

// New creates a detached instruction (not yet linked into any block).
func New(op Opcode, result, arg1, arg2 *cell.Cell) *Instr {
	return &Instr{Op: op, Result: result, Arg1: arg1, Arg2: arg2}
}

// NewLine creates a LINE pseudo-instruction: Arg1 carries the line number
// as a CONST_INT cell, Arg2 the line text as a CONST_TEXT cell (spec
// §4.4: "For the LINE opcode %1 is the source line number and %2 is the
// line text").
func NewLine(pool *cell.Pool, lineNo int64, text string) *Instr {
	lineCell := pool.Alloc(cell.CONST_INT)
	lineCell.IntValue = lineNo
	textCell := pool.Alloc(cell.CONST_TEXT)
	textCell.TextValue = text
	return New(LINE, nil, lineCell, textCell)
}

// Operands returns the instruction's non-nil operand cells in
// result/arg1/arg2 order, for passes that need to walk every reference
// (liveness counting, scope-closure checks).
func (i *Instr) Operands() []*cell.Cell {
	var ops []*cell.Cell
	if i.Result != nil {
		ops = append(ops, i.Result)
	}
	if i.Arg1 != nil {
		ops = append(ops, i.Arg1)
	}
	if i.Arg2 != nil {
		ops = append(ops, i.Arg2)
	}
	return ops
}
