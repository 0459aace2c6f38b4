package cell

// slabCapacity is the number of cells per allocated block. Grounded on the
// original compiler's CellBlock/VAR_BLOCK_CAPACITY slab strategy (spec §9:
// "keep the block-slab strategy... avoid per-cell heap churn").
const slabCapacity = 512

// Pool is the cell universe: a bump+freelist slab allocator plus the
// process-wide current-scope stack (spec §3 lifecycle, §4.1, §5).
//
// Cells are never freed individually; the pool only ever grows by adding
// slabs. This matches the source compiler, which runs as a single batch
// and tears the whole arena down at process exit.
type Pool struct {
	slabs      [][]Cell
	freeHead   *Cell
	scopeStack []*Cell
}

// NewPool creates an empty cell universe.
func NewPool() *Pool {
	p := &Pool{}
	p.growSlab()
	return p
}

func (p *Pool) growSlab() {
	slab := make([]Cell, slabCapacity)
	p.slabs = append(p.slabs, slab)
	// Thread the new slab's cells onto the free list.
	for i := range slab {
		slab[i].Kind = NULL
		if i+1 < len(slab) {
			slab[i].nextFree = &slab[i+1]
		}
	}
	slab[len(slab)-1].nextFree = p.freeHead
	p.freeHead = &slab[0]
}

// Alloc allocates a cell of kind K, zeroed except for Kind, per the
// allocation contract in spec §4.1.
func (p *Pool) Alloc(kind Kind) *Cell {
	if p.freeHead == nil {
		p.growSlab()
	}
	c := p.freeHead
	p.freeHead = c.nextFree
	*c = Cell{Kind: kind}
	return c
}

// AllocIn allocates a cell of kind K and attaches it to scope in one step.
// scope may be nil, meaning "the current scope" (CurrentScope()).
func (p *Pool) AllocIn(kind Kind, scope *Cell) *Cell {
	c := p.Alloc(kind)
	p.Attach(c, scope)
	return c
}

// Copy duplicates a cell's kind-independent payload (name, type, child
// slots, flags, type info, body) into a freshly allocated cell. The copy
// is deliberately left unattached (Scope/Subscope/NextInScope are nil and
// Read/Write counters reset to zero) so that Attach can be called on it
// without tripping invariant 2 — blindly duplicating the scope-chain
// pointers, as the original C CellCopy's memcpy does, would hand back a
// cell that already claims membership in its source's scope without
// actually being linked into that scope's sibling list.
func (p *Pool) Copy(src *Cell) *Cell {
	c := p.Alloc(src.Kind)
	c.Submode = src.Submode
	c.Flags = src.Flags
	c.Name = src.Name
	c.Idx = src.Idx
	c.At = src.At
	c.Type = src.Type
	c.L = src.L
	c.R = src.R
	c.TypeInfo = src.TypeInfo
	c.Body = src.Body
	return c
}

// All iterates every live (non-NULL) cell across every slab, in allocation
// order. Used by property tests (spec §8 property 1) and by passes that
// need to enumerate every procedure/type regardless of scope.
func (p *Pool) All(yield func(*Cell) bool) {
	for _, slab := range p.slabs {
		for i := range slab {
			if slab[i].Kind == NULL {
				continue
			}
			if !yield(&slab[i]) {
				return
			}
		}
	}
}

// Members iterates the direct members of scope, in sibling-list order.
func Members(scope *Cell) func(func(*Cell) bool) {
	return func(yield func(*Cell) bool) {
		for m := scope.Subscope; m != nil; m = m.NextInScope {
			if !yield(m) {
				return
			}
		}
	}
}

// Attach appends c to scope's member list (spec §4.1: "attach cell to
// scope (appends to sibling list)"). scope == nil means the current
// scope. Attaching a cell that already has a scope set is a programmer
// error (invariant 2) and panics, matching the contract in spec §4.1.
func (p *Pool) Attach(c *Cell, scope *Cell) {
	if c.Scope != nil {
		panic("cell: attach of a cell that already has a scope set")
	}
	if scope == nil {
		scope = p.CurrentScope()
	}
	c.Scope = scope
	if scope == nil {
		return
	}
	if scope.Subscope == nil {
		scope.Subscope = c
		return
	}
	last := scope.Subscope
	for last.NextInScope != nil {
		last = last.NextInScope
	}
	last.NextInScope = c
}

// EnterScope pushes scope onto the current-scope stack.
func (p *Pool) EnterScope(scope *Cell) {
	p.scopeStack = append(p.scopeStack, scope)
}

// ReturnScope pops the current-scope stack. Every EnterScope must be
// matched by a ReturnScope on every exit path (spec §5); calling it with
// an empty stack is a programmer error and panics.
func (p *Pool) ReturnScope() {
	n := len(p.scopeStack)
	if n == 0 {
		panic("cell: ReturnScope with no matching EnterScope")
	}
	p.scopeStack = p.scopeStack[:n-1]
}

// CurrentScope returns the top of the scope stack, or nil at the root.
func (p *Pool) CurrentScope() *Cell {
	if len(p.scopeStack) == 0 {
		return nil
	}
	return p.scopeStack[len(p.scopeStack)-1]
}

// FindInScope looks up name among scope's direct members only.
// Lookup is case-sensitive and stops at the first match (spec §4.1).
func FindInScope(scope *Cell, name string) (*Cell, bool) {
	for m := scope.Subscope; m != nil; m = m.NextInScope {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// FindInChain walks the scope chain starting at scope, looking for name.
// When the scope being searched is a procedure (its Type is a PROC-variant
// TYPE cell), the procedure's type cell is also searched directly so that
// parameters — which live as members of the type cell, not of the
// procedure body scope — are visible (spec §4.1's "twist").
func FindInChain(scope *Cell, name string) (*Cell, bool) {
	for s := scope; s != nil; s = s.Scope {
		if found, ok := FindInScope(s, name); ok {
			return found, true
		}
		if s.Type != nil && s.Type.IsType(PROC) {
			if found, ok := FindInScope(s.Type, name); ok {
				return found, true
			}
		}
	}
	return nil, false
}
