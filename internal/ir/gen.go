package ir

// Cursor is the generation cursor (spec §4.3, §9): a stack of begin/end
// markers so the parser can open a sub-block, emit instructions into it,
// and snapshot the produced block for later insertion — e.g. compiling a
// loop body into its own block before splicing it after the loop test.
//
// Begin/End must balance on every exit path, mirroring the EnterScope/
// ReturnScope discipline in package cell (spec §5).
type Cursor struct {
	stack []*Block
}

// NewCursor creates an empty generation cursor with no block open.
func NewCursor() *Cursor { return &Cursor{} }

// Begin opens a new block and makes it the emission target.
func (c *Cursor) Begin() *Block {
	b := NewBlock()
	c.stack = append(c.stack, b)
	return b
}

// Emit appends i to the currently open block. Emitting with no block open
// is a programmer error and panics.
func (c *Cursor) Emit(i *Instr) {
	if len(c.stack) == 0 {
		panic("ir: Emit with no block open (GenBegin/GenEnd imbalance)")
	}
	c.stack[len(c.stack)-1].Append(i)
}

// Current returns the currently open block, or nil if none is open.
func (c *Cursor) Current() *Block {
	if len(c.stack) == 0 {
		return nil
	}
	return c.stack[len(c.stack)-1]
}

// End closes and returns the innermost open block. Calling End with no
// block open is a programmer error and panics.
func (c *Cursor) End() *Block {
	n := len(c.stack)
	if n == 0 {
		panic("ir: End with no matching Begin")
	}
	b := c.stack[n-1]
	c.stack = c.stack[:n-1]
	return b
}

// Depth reports how many begin/end markers are currently open (for
// balance assertions in tests).
func (c *Cursor) Depth() int { return len(c.stack) }
