package alloc

import (
	"testing"

	"atalan/internal/cell"
	"atalan/internal/diag"
	"atalan/internal/typesys"
)

func localVar(p *cell.Pool, scope *cell.Cell, name string, lo, hi int64) *cell.Cell {
	v := p.Alloc(cell.VAR)
	v.Name = name
	v.Type = typesys.NewInt(p, lo, hi)
	p.Attach(v, scope)
	return v
}

func noCalls(_, _ *cell.Cell) bool { return false }

// TestAllocateProcedureReusesDisjointLocals is spec §8 scenario S4:
// procedures with disjoint locals that never call each other must share
// an address.
func TestAllocateProcedureReusesDisjointLocals(t *testing.T) {
	p := cell.NewPool()
	procA := p.Alloc(cell.VAR)
	procA.Name = "A"
	a1 := localVar(p, procA, "a1", 0, 255)

	procB := p.Alloc(cell.VAR)
	procB.Name = "B"
	b1 := localVar(p, procB, "b1", 0, 255)

	prog := &Program{Procedures: []*cell.Cell{procA, procB}, Calls: noCalls}
	heap := &VarHeap{Region: Range{Start: 0x8000, Size: 0x100}}
	sink := diag.NewSink()

	AllocateProcedure(sink, prog, procA, heap)
	AllocateProcedure(sink, prog, procB, heap)

	if sink.ErrorCount() != 0 {
		t.Fatalf("unexpected diagnostics: %v", sink.Diagnostics())
	}
	if a1.Adr() == nil || b1.Adr() == nil {
		t.Fatalf("both locals must receive an address")
	}
	if a1.Adr().IntValue != b1.Adr().IntValue {
		t.Fatalf("disjoint, non-calling procedures should reuse the same address: a1=%d b1=%d",
			a1.Adr().IntValue, b1.Adr().IntValue)
	}
}

// TestAllocateProcedureKeepsCallersDisjoint is spec §8 scenario S5 in
// spirit: a procedure that calls another must not share addresses with
// it.
func TestAllocateProcedureKeepsCallersDisjoint(t *testing.T) {
	p := cell.NewPool()
	callee := p.Alloc(cell.VAR)
	callee.Name = "Callee"
	c1 := localVar(p, callee, "c1", 0, 255)

	caller := p.Alloc(cell.VAR)
	caller.Name = "Caller"
	k1 := localVar(p, caller, "k1", 0, 255)

	calls := func(from, to *cell.Cell) bool { return from == caller && to == callee }
	prog := &Program{Procedures: []*cell.Cell{caller, callee}, Calls: calls}
	heap := &VarHeap{Region: Range{Start: 0x8000, Size: 0x100}}
	sink := diag.NewSink()

	AllocateProcedure(sink, prog, callee, heap)
	AllocateProcedure(sink, prog, caller, heap)

	if c1.Adr().IntValue == k1.Adr().IntValue {
		t.Fatalf("a calling/called pair must never share an address")
	}
}

func TestAllocateProcedureInterruptHandlerConflictsWithEverything(t *testing.T) {
	p := cell.NewPool()
	main := p.Alloc(cell.VAR)
	main.Name = "main"
	m1 := localVar(p, main, "m1", 0, 255)

	onVBI := p.Alloc(cell.VAR)
	onVBI.Name = "onVBI"
	onVBI.Flags.Set(cell.ProcInterrupt)
	i1 := localVar(p, onVBI, "i1", 0, 255)

	prog := &Program{Procedures: []*cell.Cell{main, onVBI}, Calls: noCalls}
	heap := &VarHeap{Region: Range{Start: 0x8000, Size: 0x100}}
	sink := diag.NewSink()

	AllocateProcedure(sink, prog, onVBI, heap)
	AllocateProcedure(sink, prog, main, heap)

	if m1.Adr().IntValue == i1.Adr().IntValue {
		t.Fatalf("an interrupt handler must never share addresses with mainline code")
	}
}

func TestAllocateProcedureOutOfSpaceIsFatal(t *testing.T) {
	p := cell.NewPool()
	proc := p.Alloc(cell.VAR)
	proc.Name = "P"
	localVar(p, proc, "big", 0, 255)

	prog := &Program{Procedures: []*cell.Cell{proc}, Calls: noCalls}
	heap := &VarHeap{Region: Range{Start: 0x8000, Size: 0}}
	sink := diag.NewSink()

	AllocateProcedure(sink, prog, proc, heap)

	if sink.ErrorCount() == 0 {
		t.Fatalf("exhausting VAR_HEAP must be reported as a fatal internal error")
	}
	if sink.Diagnostics()[0].Kind != diag.InternalError {
		t.Fatalf("wrong diagnostic kind: %v", sink.Diagnostics()[0].Kind)
	}
}
