package cell

import "testing"

func TestAllocZeroedExceptKind(t *testing.T) {
	p := NewPool()
	c := p.Alloc(VAR)
	if c.Kind != VAR {
		t.Fatalf("Kind = %v, want VAR", c.Kind)
	}
	if c.Submode != 0 || c.Flags != 0 || c.Name != "" || c.L != nil || c.R != nil {
		t.Fatalf("Alloc did not zero payload: %+v", c)
	}
}

func TestAttachAppendsToSiblingList(t *testing.T) {
	p := NewPool()
	scope := p.Alloc(SCOPE)
	a := p.Alloc(VAR)
	a.Name = "a"
	b := p.Alloc(VAR)
	b.Name = "b"

	p.Attach(a, scope)
	p.Attach(b, scope)

	var names []string
	for m := range Members(scope) {
		names = append(names, m.Name)
	}
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("sibling order = %v, want [a b]", names)
	}
	if a.Scope != scope || b.Scope != scope {
		t.Fatalf("members did not record their scope")
	}
}

func TestAttachAlreadyScopedPanics(t *testing.T) {
	p := NewPool()
	scope := p.Alloc(SCOPE)
	a := p.Alloc(VAR)
	p.Attach(a, scope)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic attaching an already-scoped cell")
		}
	}()
	p.Attach(a, scope)
}

func TestReturnScopeImbalancePanics(t *testing.T) {
	p := NewPool()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on unmatched ReturnScope")
		}
	}()
	p.ReturnScope()
}

func TestEnterReturnScopeBalanced(t *testing.T) {
	p := NewPool()
	root := p.Alloc(SCOPE)
	child := p.Alloc(SCOPE)
	p.EnterScope(root)
	p.EnterScope(child)
	if p.CurrentScope() != child {
		t.Fatal("CurrentScope should be child")
	}
	p.ReturnScope()
	if p.CurrentScope() != root {
		t.Fatal("CurrentScope should be root after one ReturnScope")
	}
	p.ReturnScope()
	if p.CurrentScope() != nil {
		t.Fatal("CurrentScope should be nil at the root")
	}
}

func TestFindInScopeCaseSensitiveFirstMatch(t *testing.T) {
	p := NewPool()
	scope := p.Alloc(SCOPE)
	x1 := p.Alloc(VAR)
	x1.Name = "x"
	x1.Idx = 1
	p.Attach(x1, scope)
	x2 := p.Alloc(VAR)
	x2.Name = "x"
	x2.Idx = 2
	p.Attach(x2, scope)

	found, ok := FindInScope(scope, "x")
	if !ok || found != x1 {
		t.Fatalf("expected first match x1, got %+v", found)
	}
	if _, ok := FindInScope(scope, "X"); ok {
		t.Fatal("lookup must be case-sensitive")
	}
}

func TestFindInChainSearchesProcedureType(t *testing.T) {
	p := NewPool()
	root := p.Alloc(SCOPE)

	procType := p.Alloc(TYPE)
	procType.TypeInfo = &TypeInfo{Variant: PROC}
	param := p.Alloc(VAR)
	param.Name = "arg"
	param.Submode.Set(ARG_IN)
	p.Attach(param, procType)

	proc := p.Alloc(VAR)
	proc.Name = "proc"
	proc.Type = procType
	p.Attach(proc, root)

	body := p.Alloc(SCOPE)
	p.Attach(body, proc) // body scope's parent is the proc var, which carries Type
	body.Scope = proc

	found, ok := FindInChain(body, "arg")
	if !ok || found != param {
		t.Fatalf("expected to find parameter via procedure type, got %+v ok=%v", found, ok)
	}
}

func TestAllEnumeratesOnlyLiveCells(t *testing.T) {
	p := NewPool()
	p.Alloc(VAR)
	p.Alloc(VAR)
	count := 0
	for c := range p.All {
		if c.Kind == NULL {
			t.Fatal("All yielded a NULL (free) cell")
		}
		count++
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
}

func TestCopyDoesNotInheritScope(t *testing.T) {
	p := NewPool()
	scope := p.Alloc(SCOPE)
	src := p.Alloc(VAR)
	src.Name = "v"
	p.Attach(src, scope)

	cp := p.Copy(src)
	if cp.Scope != nil || cp.Subscope != nil || cp.NextInScope != nil {
		t.Fatalf("Copy must not inherit scope linkage: %+v", cp)
	}
	if cp.Name != "v" {
		t.Fatalf("Copy must preserve payload, Name = %q", cp.Name)
	}
	// The copy must be attachable without panicking.
	p.Attach(cp, scope)
}

func TestSlabGrowsAcrossCapacity(t *testing.T) {
	p := NewPool()
	for i := 0; i < slabCapacity*2+5; i++ {
		c := p.Alloc(VAR)
		c.Idx = uint32(i)
	}
	count := 0
	for range p.All {
		count++
	}
	if count != slabCapacity*2+5 {
		t.Fatalf("count = %d, want %d", count, slabCapacity*2+5)
	}
}
