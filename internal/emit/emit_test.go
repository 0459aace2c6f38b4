package emit

import (
	"strings"
	"testing"

	"atalan/internal/cell"
	"atalan/internal/diag"
	"atalan/internal/ir"
	"atalan/internal/rules"
	"atalan/internal/typesys"
)

func TestNameOfPrefixesWithOwningScope(t *testing.T) {
	p := cell.NewPool()
	proc := p.Alloc(cell.VAR)
	proc.Name = "Foo"
	local := p.Alloc(cell.VAR)
	local.Name = "x"
	p.Attach(local, proc)

	if got := NameOf(local); got != "Foo_x" {
		t.Fatalf("NameOf(local) = %q, want Foo_x", got)
	}
	if got := NameOf(proc); got != "Foo" {
		t.Fatalf("NameOf(proc) = %q, want Foo (no scope of its own)", got)
	}
}

func TestRenderConstantsAndNames(t *testing.T) {
	p := cell.NewPool()
	n := p.Alloc(cell.CONST_INT)
	n.IntValue = 42
	if got := Render(n, false); got != "42" {
		t.Fatalf("Render(const int) = %q, want 42", got)
	}

	s := p.Alloc(cell.CONST_TEXT)
	s.TextValue = "hi"
	if got := Render(s, true); got != `"hi"` {
		t.Fatalf("Render(quoted text) = %q, want quoted", got)
	}
	if got := Render(s, false); got != "hi" {
		t.Fatalf("Render(unquoted text) = %q, want hi", got)
	}

	v := p.Alloc(cell.VAR)
	v.Name = "y"
	if got := Render(v, false); got != "y" {
		t.Fatalf("Render(var) = %q, want y", got)
	}
	if got := Render(nil, false); got != "" {
		t.Fatalf("Render(nil) = %q, want empty", got)
	}
}

func TestEmitInstrUsesMatchingRule(t *testing.T) {
	p := cell.NewPool()
	db := rules.NewDB()
	db.AddEmit(rules.NewEmitRule(ir.LET, rules.Arg(1), rules.Arg(2), nil, []string{"\tLDA %1\n\tSTA %0"}))

	x := p.Alloc(cell.VAR)
	x.Name = "x"
	y := p.Alloc(cell.VAR)
	y.Name = "y"
	i := ir.New(ir.LET, x, y, nil)

	var out strings.Builder
	e := &Emitter{DB: db, Sink: diag.NewSink()}
	e.emitInstr(&out, i)

	got := out.String()
	if !strings.Contains(got, "LDA y") || !strings.Contains(got, "STA x") {
		t.Fatalf("emitted text = %q, want LDA y / STA x", got)
	}
}

func TestEmitInstrNoMatchReportsInternalError(t *testing.T) {
	db := rules.NewDB()
	sink := diag.NewSink()
	e := &Emitter{DB: db, Sink: sink}
	var out strings.Builder
	e.emitInstr(&out, ir.New(ir.ADD, nil, nil, nil))

	if sink.ErrorCount() != 1 || sink.Diagnostics()[0].Kind != diag.InternalError {
		t.Fatalf("an unmatched instruction must raise an InternalError diagnostic")
	}
}

func TestEmitOrdersSectionsAndAppendsCodeEnd(t *testing.T) {
	p := cell.NewPool()
	db := rules.NewDB()
	db.AddEmit(rules.NewEmitRule(ir.ENDPROC, nil, nil, nil, nil))

	v := p.Alloc(cell.VAR)
	v.Name = "counter"
	v.Type = typesys.NewInt(p, 0, 255)
	v.SetAdr(&cell.Cell{Kind: cell.CONST_INT, IntValue: 0x80})

	proc := p.Alloc(cell.VAR)
	proc.Name = "Main"
	body := ir.NewBlock()
	body.Append(ir.New(ir.ENDPROC, nil, nil, nil))
	bl := ir.NewBlockList()
	bl.Append(body)
	ir.SetBody(proc, bl)

	e := &Emitter{DB: db, Sink: diag.NewSink()}
	out := e.Emit(&Program{
		Procedures:  []*cell.Cell{proc},
		Variables:   []*cell.Cell{v},
		AsmIncludes: []string{"extra.asm"},
	})

	labelIdx := strings.Index(out, "counter:")
	procIdx := strings.Index(out, "Main:")
	includeIdx := strings.Index(out, "extra.asm")
	endIdx := strings.Index(out, "CODE_END")
	allocIdx := strings.Index(out, "ALLOC")

	if labelIdx < 0 || procIdx < 0 || includeIdx < 0 || endIdx < 0 || allocIdx < 0 {
		t.Fatalf("missing expected section in output:\n%s", out)
	}
	if !(labelIdx < procIdx && procIdx < includeIdx && includeIdx < endIdx && endIdx < allocIdx) {
		t.Fatalf("sections out of order: labels=%d proc=%d include=%d end=%d alloc=%d",
			labelIdx, procIdx, includeIdx, endIdx, allocIdx)
	}
}
