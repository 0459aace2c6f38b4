// Command atalan is the compiler driver (spec §6): it parses the command
// line, resolves the target platform, runs the compilation pipeline
// (translate, optimize, basic-block analysis, address allocation, emit)
// over the procedures a front end hands it, and writes the resulting
// assembly text next to the source file.
//
// Grounded on cmd/sentra/main.go for the banner/diagnostic printing
// conventions, but not its subcommand dispatch: sentra is an
// interactive multi-command tool (run/repl/test/build/...), while atalan
// is a single-purpose batch compiler invoked once per source module, so
// main here is a linear pipeline rather than a command table.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/ncruces/go-strftime"

	"atalan/internal/alloc"
	"atalan/internal/analyze"
	"atalan/internal/blockbuild"
	"atalan/internal/cell"
	"atalan/internal/cliopts"
	"atalan/internal/compctx"
	"atalan/internal/diag"
	"atalan/internal/emit"
	"atalan/internal/ir"
	"atalan/internal/optimize"
	"atalan/internal/platform"
	"atalan/internal/translate"
)

// version is the compiler's own release identifier, distinct from any
// PLATFORM_VERSION a platform module declares.
const version = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	opts, err := cliopts.Parse(argv)
	if err != nil {
		fmt.Fprintln(os.Stderr, "usage:", err)
		return -1
	}

	printer := diag.NewPrinter(os.Stderr, os.Stderr.Fd(), true)
	ctx := compctx.New()
	ctx.OptimizeLevel = opts.OptimizeLevel
	ctx.Verbose = opts.Verbose
	ctx.Release = opts.Release

	if !opts.SuppressBanner {
		printBanner(ctx.Sink, opts)
	}

	root := opts.Root
	if root == "" {
		root = "."
	}
	platformName := opts.Platform
	if platformName == "" {
		platformName = "atari800"
	}
	desc, err := platform.NewLoader(root).Load(platformName, "default")
	if err != nil {
		ctx.Sink.Report(diag.PlatformNotSupported, diag.Bookmark{}, platformName, "%v", err)
		flush(printer, ctx.Sink)
		return 2
	}
	desc.Apply()
	ctx.Platform = desc

	unit, err := defaultFrontend.Parse(ctx, opts.Source)
	if err != nil {
		ctx.Sink.Report(diag.SyntaxError, diag.Bookmark{File: opts.Source}, opts.Source, "%v", err)
		flush(printer, ctx.Sink)
		return 2
	}

	if ctx.Verbose {
		printer.DumpVerbose("rule database", ctx.Rules.Summary())
	}

	compile(ctx, unit)
	flush(printer, ctx.Sink)
	if ctx.Failed() {
		return 2
	}

	text := (&emit.Emitter{DB: ctx.Rules, Sink: ctx.Sink}).Emit(&emit.Program{
		Procedures:  usedProcedures(unit.Program),
		Variables:   unit.Variables,
		AsmIncludes: unit.AsmIncludes,
	})
	flush(printer, ctx.Sink)
	if ctx.Failed() {
		return 2
	}

	outPath := opts.Source + ".asm"
	if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "atalan: writing", outPath, "failed:", err)
		return 2
	}

	if opts.AssemblerOnly {
		return 0
	}
	return invokeAssembler(desc, outPath)
}

// compile runs C5 through C9 (spec §4.5-§4.9) over unit's procedures in
// place: spill register-bound arguments and translate each body to
// target-legal IR, inline small callees while the stream is still
// linear, split into basic blocks, resolve reachability and jump
// targets, run the remaining optimizer passes, rebuild basic blocks
// against whatever the optimizer left behind, and finally allocate
// addresses.
//
// Procedure-use analysis runs twice, per spec §2's data-flow diagram:
// once right after parsing, establishing the baseline call graph the
// parser produced, and again after translation, since inlining and the
// register-spill protocol can materialize or remove calls the first
// pass never saw. analyze.Run only ever sets flags (never clears them),
// so the two passes compose: a procedure reachable at either point
// stays marked reachable.
func compile(ctx *compctx.Context, unit *Unit) {
	analyze.Run(unit.Program, unit.Root)

	for _, proc := range unit.Program.Procedures {
		bl := ir.BodyOf(proc)
		if bl == nil {
			continue
		}
		translate.SpillRegisterArgs(ctx.Pool, proc, bl)
		translate.Run(ctx.Rules, bl)
		if ctx.OptimizeLevel > 0 {
			optimize.Inline(ctx.Pool, bl, ir.BodyOf, procParams)
		}
	}

	analyze.Run(unit.Program, unit.Root)

	labelIdx := analyze.LabelIndex(unit.Program)
	for _, proc := range unit.Program.Procedures {
		bl := ir.BodyOf(proc)
		if bl == nil {
			continue
		}
		built := blockbuild.Build(ctx.Sink, bl, analyze.OtherProcLabels(labelIdx, proc.Name))
		ir.SetBody(proc, built)
	}
	if ctx.Failed() {
		return
	}

	for _, proc := range unit.Program.Procedures {
		bl := ir.BodyOf(proc)
		if bl == nil || ctx.OptimizeLevel == 0 {
			continue
		}
		optimize.FoldConstants(ctx.Pool, bl)
		optimize.ThreadJumps(bl)
		optimize.CountUses(bl)
		optimize.EliminateDeadStores(bl)
	}

	if ctx.OptimizeLevel > 0 {
		labelIdx = analyze.LabelIndex(unit.Program)
		for _, proc := range unit.Program.Procedures {
			bl := ir.BodyOf(proc)
			if bl == nil {
				continue
			}
			built := blockbuild.Build(ctx.Sink, bl, analyze.OtherProcLabels(labelIdx, proc.Name))
			ir.SetBody(proc, built)
		}
		if ctx.Failed() {
			return
		}
	}

	varHeap := &alloc.VarHeap{Region: ctx.Platform.VarHeap}
	allocProg := &alloc.Program{Procedures: unit.Program.Procedures, Calls: callGraph(unit.Program)}
	for _, proc := range unit.Program.Procedures {
		if !proc.Flags.Has(cell.Used) {
			continue
		}
		alloc.AllocateProcedure(ctx.Sink, allocProg, proc, varHeap)
	}
}

// procParams returns proc's formal parameters in declaration order
// (spec §4.1's "twist": they live as members of the procedure's PROC-type
// cell, not of its body scope), for optimize.Inline's parameter-to-argument
// substitution.
func procParams(proc *cell.Cell) []*cell.Cell {
	if proc.Type == nil || !proc.Type.IsType(cell.PROC) {
		return nil
	}
	var out []*cell.Cell
	for m := range cell.Members(proc.Type) {
		if m.Submode.Has(cell.ARG_IN) {
			out = append(out, m)
		}
	}
	return out
}

// callGraph builds the transitive caller-calls-callee closure as a Calls
// callback for package alloc, by walking each procedure's CALL
// instructions directly (cheaper than
// re-deriving it from the Used/Processed flags analyze.Run leaves
// behind, which only record reachability from the root, not pairwise
// reachability between arbitrary procedures).
func callGraph(prog *analyze.Program) func(caller, callee *cell.Cell) bool {
	direct := map[*cell.Cell]map[*cell.Cell]bool{}
	for _, p := range prog.Procedures {
		bl := ir.BodyOf(p)
		if bl == nil {
			continue
		}
		callees := map[*cell.Cell]bool{}
		for b := range bl.Blocks {
			for i := range b.Instrs {
				if i.Op == ir.CALL && i.Arg1 != nil {
					callees[i.Arg1] = true
				}
			}
		}
		direct[p] = callees
	}
	closure := map[*cell.Cell]map[*cell.Cell]bool{}
	var reach func(p *cell.Cell) map[*cell.Cell]bool
	reach = func(p *cell.Cell) map[*cell.Cell]bool {
		if r, ok := closure[p]; ok {
			return r
		}
		r := map[*cell.Cell]bool{}
		closure[p] = r // guard against cycles before recursing
		for callee := range direct[p] {
			if r[callee] {
				continue
			}
			r[callee] = true
			for transitive := range reach(callee) {
				r[transitive] = true
			}
		}
		return r
	}
	for _, p := range prog.Procedures {
		reach(p)
	}
	return func(caller, callee *cell.Cell) bool { return closure[caller][callee] }
}

// usedProcedures filters prog to the procedures analyze.Run marked
// reachable, in original declaration order (spec §4.10: unreachable
// procedures are never emitted).
func usedProcedures(prog *analyze.Program) []*cell.Cell {
	var out []*cell.Cell
	for _, p := range prog.Procedures {
		if p.Flags.Has(cell.Used) {
			out = append(out, p)
		}
	}
	return out
}

// printBanner writes the startup line (printed unless -V0 suppresses
// it): version, a per-invocation session id (github.com/google/uuid,
// matching the one diag.Sink stamps its own diagnostics with), and the
// date buildTime returns — the current date of this invocation — rendered
// with github.com/ncruces/go-strftime's POSIX-style format directives.
func printBanner(sink *diag.Sink, opts *cliopts.Options) {
	built := strftime.Format("%Y-%m-%d", buildTime())
	fmt.Fprintf(os.Stdout, "atalan %s (built %s) session %s, optimize level %d\n",
		version, built, sink.Session, opts.OptimizeLevel)
}

func flush(p *diag.Printer, sink *diag.Sink) {
	for _, d := range sink.Diagnostics() {
		p.PrintDiagnostic(d)
	}
}

// invokeAssembler runs the platform-declared assembler command string
// against outPath, surfacing its own exit code unchanged (spec §6: "exits
// with the assembler's own exit code when invoked"). BIN_EXTENSION is a
// whitespace-separated command plus flags, not a shell script, so it is
// split directly into argv rather than handed to a shell.
func invokeAssembler(desc *platform.Descriptor, outPath string) int {
	fields := strings.Fields(desc.BinExtension)
	if len(fields) == 0 {
		fmt.Fprintln(os.Stderr, "atalan: platform declares no assembler command")
		return 2
	}
	cmd := exec.Command(fields[0], append(fields[1:], outPath)...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode()
		}
		fmt.Fprintln(os.Stderr, "atalan: running assembler failed:", err)
		return 2
	}
	return 0
}
