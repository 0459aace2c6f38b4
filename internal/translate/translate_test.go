package translate

import (
	"testing"

	"atalan/internal/cell"
	"atalan/internal/ir"
	"atalan/internal/rules"
	"atalan/internal/typesys"
)

func oneBlockList(instrs ...*ir.Instr) *ir.BlockList {
	b := ir.NewBlock()
	for _, i := range instrs {
		b.Append(i)
	}
	bl := ir.NewBlockList()
	bl.Append(b)
	return bl
}

func TestRunReplacesMatchedInstruction(t *testing.T) {
	p := cell.NewPool()
	db := rules.NewDB()

	// ADD result, CONST(0), ANY -> LET result, arg2  (x = 0 + y  =>  x = y)
	db.AddTranslate(rules.NewTranslateRule(
		ir.ADD, rules.Arg(1), rules.Value(0), rules.Arg(2),
		[]rules.TemplateInstr{{Op: ir.LET, Result: rules.ArgOperand(1), Arg1: rules.ArgOperand(2), Arg2: rules.LiteralOperand(nil)}},
	))

	result := p.Alloc(cell.VAR)
	result.Name = "x"
	y := p.Alloc(cell.VAR)
	y.Name = "y"
	add := ir.New(ir.ADD, result, typesys.NewConstInt(p, 0), y)
	bl := oneBlockList(add)

	Run(db, bl)

	b := bl.First
	if b.First == nil || b.First != b.Last {
		t.Fatalf("expected exactly one instruction after translation")
	}
	got := b.First
	if got.Op != ir.LET || got.Result != result || got.Arg1 != y {
		t.Fatalf("ADD was not replaced by the expected LET, got %+v", got)
	}
}

func TestRunLeavesNonMatchingInstructionAlone(t *testing.T) {
	p := cell.NewPool()
	db := rules.NewDB()
	db.AddTranslate(rules.NewTranslateRule(ir.ADD, rules.Any(), rules.Value(0), rules.Any(), nil))

	sub := ir.New(ir.SUB, p.Alloc(cell.VAR), p.Alloc(cell.VAR), p.Alloc(cell.VAR))
	bl := oneBlockList(sub)
	Run(db, bl)

	if bl.First.First != sub {
		t.Fatalf("an instruction matching no rule must be left untouched")
	}
}

func TestRunSubstitutionPreservesBookmark(t *testing.T) {
	p := cell.NewPool()
	db := rules.NewDB()
	db.AddTranslate(rules.NewTranslateRule(
		ir.NOT, rules.Arg(1), rules.Any(), nil,
		[]rules.TemplateInstr{{Op: ir.LET, Result: rules.ArgOperand(1), Arg1: rules.Arg1Operand(), Arg2: rules.LiteralOperand(nil)}},
	))
	i := ir.New(ir.NOT, p.Alloc(cell.VAR), p.Alloc(cell.VAR), nil)
	i.At.Line = 42
	bl := oneBlockList(i)
	Run(db, bl)

	if bl.First.First.At.Line != 42 {
		t.Fatalf("substituted instruction must inherit the original's source bookmark")
	}
}

func registerCell(p *cell.Pool, name string) *cell.Cell {
	r := p.Alloc(cell.VAR)
	r.Name = name
	r.Submode.Set(cell.REG)
	return r
}

func TestSpillRegisterArgsEntry(t *testing.T) {
	p := cell.NewPool()
	hl := registerCell(p, "HL")

	param := p.Alloc(cell.VAR)
	param.Name = "n"
	param.Submode.Set(cell.REG)
	param.Submode.Set(cell.ARG_IN)
	param.SetAdr(hl)

	procType := typesys.NewProc(p)
	p.Attach(param, procType)
	proc := p.Alloc(cell.VAR)
	proc.Type = procType

	use := ir.New(ir.LET, p.Alloc(cell.VAR), hl, nil)
	bl := oneBlockList(use)

	SpillRegisterArgs(p, proc, bl)

	first := bl.First.First
	if first.Op != ir.LET || first.Arg1 != hl {
		t.Fatalf("expected an entry LET tmp, reg inserted at the top of the body")
	}
	tmp := first.Result
	if tmp == hl {
		t.Fatalf("entry spill must introduce a fresh temporary, not reuse the register cell")
	}
	if use.Arg1 != tmp {
		t.Fatalf("body uses of the register must be rewritten to the fresh temporary, got %+v", use.Arg1)
	}
}

func TestSpillRegisterArgsExit(t *testing.T) {
	p := cell.NewPool()
	de := registerCell(p, "DE")

	param := p.Alloc(cell.VAR)
	param.Name = "result"
	param.Submode.Set(cell.REG)
	param.Submode.Set(cell.ARG_OUT)
	param.SetAdr(de)

	procType := typesys.NewProc(p)
	p.Attach(param, procType)
	proc := p.Alloc(cell.VAR)
	proc.Type = procType

	write := ir.New(ir.LET, de, typesys.NewConstInt(p, 7), nil)
	end := ir.New(ir.ENDPROC, nil, nil, nil)
	bl := oneBlockList(write, end)

	SpillRegisterArgs(p, proc, bl)

	before := end.Prev
	if before == nil || before.Op != ir.LET || before.Result != de {
		t.Fatalf("expected an exit LET reg, tmp inserted immediately before ENDPROC")
	}
	if write.Result == de {
		t.Fatalf("body writes to the output register must be rewritten to the fresh temporary")
	}
	if before.Arg1 != write.Result {
		t.Fatalf("the exit copy must read the same temporary the body wrote")
	}
}

func TestCallSiteSpillComputesArgsAndMovesRegisters(t *testing.T) {
	p := cell.NewPool()
	a := registerCell(p, "A")

	param := p.Alloc(cell.VAR)
	param.Name = "x"
	param.Submode.Set(cell.REG)
	param.Submode.Set(cell.ARG_IN)
	param.SetAdr(a)

	calleeType := typesys.NewProc(p)
	p.Attach(param, calleeType)
	callee := p.Alloc(cell.VAR)
	callee.Name = "Foo"
	callee.Type = calleeType

	argExpr := p.Alloc(cell.VAR)
	argExpr.Name = "y"
	call := ir.New(ir.CALL, nil, callee, argExpr)
	bl := oneBlockList(call)

	callerProc := p.Alloc(cell.VAR) // no params of its own
	SpillRegisterArgs(p, callerProc, bl)

	b := bl.First
	var ops []*ir.Instr
	for i := range b.Instrs {
		ops = append(ops, i)
	}
	if len(ops) != 3 {
		t.Fatalf("expected 3 instructions (compute-arg, move-to-register, CALL), got %d", len(ops))
	}
	computeArg, moveToReg, callInstr := ops[0], ops[1], ops[2]
	if computeArg.Op != ir.LET || computeArg.Arg1 != argExpr {
		t.Fatalf("first instruction must compute the argument into a fresh temp")
	}
	if moveToReg.Op != ir.LET || moveToReg.Result != a || moveToReg.Arg1 != computeArg.Result {
		t.Fatalf("second instruction must move the computed temp into the register right before CALL")
	}
	if callInstr != call {
		t.Fatalf("CALL instruction itself must remain in place")
	}
}
