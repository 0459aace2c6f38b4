package ir

import "atalan/internal/cell"

// Block is a doubly-linked list of instructions. Before the basic-block
// builder (package blockbuild, spec §4.6) runs, a Block is simply the
// linear sequence the translator produced for one procedure; afterwards,
// Label and Succ are populated and the Block is a true basic block with a
// single entry and at most two successors.
type Block struct {
	First, Last *Instr

	Label *cell.Cell // entry label, nil if unlabeled
	Succ  [2]*Block  // computed by blockbuild; unused entries are nil

	Prev, Next *Block // linkage within the owning BlockList
}

// NewBlock creates an empty block.
func NewBlock() *Block { return &Block{} }

// Append adds i to the end of b's instruction list.
func (b *Block) Append(i *Instr) {
	i.Block = b
	i.Prev = b.Last
	i.Next = nil
	if b.Last != nil {
		b.Last.Next = i
	} else {
		b.First = i
	}
	b.Last = i
}

// Prepend adds i to the front of b's instruction list.
func (b *Block) Prepend(i *Instr) {
	if b.First == nil {
		b.Append(i)
		return
	}
	b.InsertBefore(b.First, i)
}

// InsertBefore splices i immediately before at, which must belong to b.
func (b *Block) InsertBefore(at, i *Instr) {
	i.Block = b
	i.Next = at
	i.Prev = at.Prev
	if at.Prev != nil {
		at.Prev.Next = i
	} else {
		b.First = i
	}
	at.Prev = i
}

// InsertAfter splices i immediately after at, which must belong to b.
func (b *Block) InsertAfter(at, i *Instr) {
	i.Block = b
	i.Prev = at
	i.Next = at.Next
	if at.Next != nil {
		at.Next.Prev = i
	} else {
		b.Last = i
	}
	at.Next = i
}

// Remove unlinks i from b's instruction list.
func (b *Block) Remove(i *Instr) {
	if i.Prev != nil {
		i.Prev.Next = i.Next
	} else {
		b.First = i.Next
	}
	if i.Next != nil {
		i.Next.Prev = i.Prev
	} else {
		b.Last = i.Prev
	}
	i.Prev, i.Next, i.Block = nil, nil, nil
}

// Instrs iterates b's instruction list head to tail. Safe against the
// current instruction being removed mid-iteration (the next pointer is
// captured before the body runs), which optimizer passes rely on.
func (b *Block) Instrs(yield func(*Instr) bool) {
	for i := b.First; i != nil; {
		next := i.Next
		if !yield(i) {
			return
		}
		i = next
	}
}

// Empty reports whether b has no instructions.
func (b *Block) Empty() bool { return b.First == nil }

// BlockList is a procedure body: a doubly-linked list of blocks.
type BlockList struct {
	First, Last *Block
}

// NewBlockList creates an empty block list.
func NewBlockList() *BlockList { return &BlockList{} }

// Append adds b to the end of the list.
func (bl *BlockList) Append(b *Block) {
	b.Prev = bl.Last
	b.Next = nil
	if bl.Last != nil {
		bl.Last.Next = b
	} else {
		bl.First = b
	}
	bl.Last = b
}

// InsertAfter splices b immediately after at (at == nil means "at the
// front").
func (bl *BlockList) InsertAfter(at, b *Block) {
	if at == nil {
		b.Prev = nil
		b.Next = bl.First
		if bl.First != nil {
			bl.First.Prev = b
		} else {
			bl.Last = b
		}
		bl.First = b
		return
	}
	b.Prev = at
	b.Next = at.Next
	if at.Next != nil {
		at.Next.Prev = b
	} else {
		bl.Last = b
	}
	at.Next = b
}

// Remove unlinks b from the list.
func (bl *BlockList) Remove(b *Block) {
	if b.Prev != nil {
		b.Prev.Next = b.Next
	} else {
		bl.First = b.Next
	}
	if b.Next != nil {
		b.Next.Prev = b.Prev
	} else {
		bl.Last = b.Prev
	}
	b.Prev, b.Next = nil, nil
}

// Blocks iterates the list head to tail, tolerant of removal of the
// current block mid-iteration.
func (bl *BlockList) Blocks(yield func(*Block) bool) {
	for b := bl.First; b != nil; {
		next := b.Next
		if !yield(b) {
			return
		}
		b = next
	}
}

// BodyOf returns the *BlockList attached to c (a procedure or initialized
// array), or nil if none is attached. See cell.Body's doc comment for why
// this indirection exists instead of cell.Cell.Body being typed directly.
func BodyOf(c *cell.Cell) *BlockList {
	if c == nil || c.Body == nil {
		return nil
	}
	bl, _ := c.Body.Opaque.(*BlockList)
	return bl
}

// SetBody attaches bl to c.
func SetBody(c *cell.Cell, bl *BlockList) {
	c.Body = &cell.Body{Opaque: bl}
}
