// Package alloc implements the per-procedure address allocator (spec
// §4.9): a heap of reusable address ranges built from every procedure
// that cannot transitively interact with P, shrunk by every procedure
// that can, and drawn down to give P's own locals addresses.
//
// Grounded on the original compiler's opt_var_use.c (ProcCallsProc,
// HeapAddVariables/HeapRemoveVariables, AllocateVariablesFromHeap,
// AllocateVariables): the C source walks the same two-phase add/remove
// sequence per procedure rather than computing a single global
// interference graph, so this package mirrors that shape instead of
// reaching for a textbook graph-coloring allocator.
package alloc

import (
	"github.com/dustin/go-humanize"

	"atalan/internal/cell"
	"atalan/internal/diag"
	"atalan/internal/typesys"
)

// Range is a half-open byte range [Start, Start+Size) of address space.
type Range struct {
	Start int64
	Size  int64
}

func (r Range) end() int64 { return r.Start + r.Size }

// overlaps reports whether r and o share any address.
func (r Range) overlaps(o Range) bool {
	return r.Start < o.end() && o.Start < r.end()
}

// Program is the whole-compilation view the allocator needs.
type Program struct {
	Procedures []*cell.Cell
	// Calls reports whether caller transitively calls callee, computed
	// ahead of time by the caller (cmd/atalan builds it in callGraph from
	// each procedure's CALL instructions) — the allocator itself does no
	// graph traversal beyond straight map lookups.
	Calls func(caller, callee *cell.Cell) bool
}

// VarHeap is the platform-declared fallback region (spec §4.9 step 4,
// GLOSSARY "VAR_HEAP"). Exhausting it is a fatal internal error per
// Open Question 3's resolution: the source silently truncated on
// overflow, but a rewrite must not.
type VarHeap struct {
	Region Range
	used   int64
}

func (h *VarHeap) alloc(size int64) (int64, bool) {
	if h.used+size > h.Region.Size {
		return 0, false
	}
	start := h.Region.Start + h.used
	h.used += size
	return start, true
}

// AllocateProcedure assigns addresses to every local of proc that lacks
// one, per the four-step algorithm of spec §4.9. The scratch
// reusable-range pool is built inside this call from proc's own
// call-graph position and is not shared across procedures; varHeap is
// the shared fallback region, passed to every call and advanced by each
// allocation from it.
func AllocateProcedure(sink *diag.Sink, prog *Program, proc *cell.Cell, varHeap *VarHeap) {
	heap := buildHeap(prog, proc)
	for _, local := range procLocals(proc) {
		if local.Adr() != nil {
			continue
		}
		size := int64(typesys.TypeSize(local.Type))
		if size == 0 {
			continue
		}
		if start, ok := heap.take(size); ok {
			local.SetAdr(addrCell(start))
			continue
		}
		start, ok := varHeap.alloc(size)
		if !ok {
			sink.Fatal(local.At, "out of address space allocating %q (%s of %s already used)",
				local.Name, humanize.Bytes(uint64(varHeap.used)), humanize.Bytes(uint64(varHeap.Region.Size)))
			continue
		}
		local.SetAdr(addrCell(start))
	}
}

// addrCell wraps an allocated address as a CONST_INT cell so Adr()
// continues to mean "a cell naming where this variable lives" uniformly
// with the register-argument case (internal/translate's SpillRegisterArgs
// already relies on Adr() being "a cell", not a bare integer).
func addrCell(addr int64) *cell.Cell {
	return &cell.Cell{Kind: cell.CONST_INT, IntValue: addr}
}

// heapPool is the scratch set of reusable address ranges being built for
// one procedure's allocation pass.
type heapPool struct {
	ranges []Range
}

func (h *heapPool) add(r Range) {
	if r.Size <= 0 {
		return
	}
	h.ranges = append(h.ranges, r)
}

// remove deletes any portion of h's ranges overlapping r (spec §4.9 step
// 3: "remove Q's variable ranges from the heap" — Q's storage might have
// already been added by a different, now-conflicting procedure, so this
// operates directly on the range list rather than assuming r is exactly
// one previously-added entry).
func (h *heapPool) remove(r Range) {
	var kept []Range
	for _, existing := range h.ranges {
		if !existing.overlaps(r) {
			kept = append(kept, existing)
			continue
		}
		if existing.Start < r.Start {
			kept = append(kept, Range{Start: existing.Start, Size: r.Start - existing.Start})
		}
		if existing.end() > r.end() {
			kept = append(kept, Range{Start: r.end(), Size: existing.end() - r.end()})
		}
	}
	h.ranges = kept
}

// take draws the first range big enough for size, splitting off any
// leftover back into the pool.
func (h *heapPool) take(size int64) (int64, bool) {
	for i, r := range h.ranges {
		if r.Size < size {
			continue
		}
		start := r.Start
		if r.Size > size {
			h.ranges[i] = Range{Start: r.Start + size, Size: r.Size - size}
		} else {
			h.ranges = append(h.ranges[:i], h.ranges[i+1:]...)
		}
		return start, true
	}
	return 0, false
}

// buildHeap runs spec §4.9 steps 1-3 for proc: add every procedure that
// cannot interact with proc, then remove every one that can.
func buildHeap(prog *Program, proc *cell.Cell) *heapPool {
	h := &heapPool{}
	for _, q := range prog.Procedures {
		if q == proc {
			continue
		}
		if conflicts(prog, proc, q) {
			continue
		}
		for _, local := range procLocals(q) {
			if r, ok := localRange(local); ok {
				h.add(r)
			}
		}
	}
	for _, q := range prog.Procedures {
		if q == proc || !conflicts(prog, proc, q) {
			continue
		}
		for _, local := range procLocals(q) {
			if r, ok := localRange(local); ok {
				h.remove(r)
			}
		}
	}
	return h
}

// conflicts reports whether P and Q's locals must not share addresses:
// either transitively calls the other, or either is an interrupt handler
// (spec §4.9: "Interrupt handlers conservatively conflict with all
// procedures reachable in the main line").
func conflicts(prog *Program, p, q *cell.Cell) bool {
	if p.Flags.Has(cell.ProcInterrupt) || q.Flags.Has(cell.ProcInterrupt) {
		return true
	}
	return prog.Calls(p, q) || prog.Calls(q, p)
}

func procLocals(proc *cell.Cell) []*cell.Cell {
	var out []*cell.Cell
	for m := range cell.Members(proc) {
		if m.Kind == cell.VAR {
			out = append(out, m)
		}
	}
	return out
}

func localRange(local *cell.Cell) (Range, bool) {
	adr := local.Adr()
	if adr == nil || adr.Kind != cell.CONST_INT {
		return Range{}, false
	}
	size := int64(typesys.TypeSize(local.Type))
	if size == 0 {
		return Range{}, false
	}
	return Range{Start: adr.IntValue, Size: size}, true
}
