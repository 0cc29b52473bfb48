// Package driver runs the compiler pipeline over a set of forests:
// load, symbol tables, analysis and monomorphization.
package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kestrel/internal/ast"
	"kestrel/internal/astio"
	"kestrel/internal/diag"
	"kestrel/internal/mono"
	"kestrel/internal/observ"
	"kestrel/internal/sema"
	"kestrel/internal/source"
	"kestrel/internal/symbols"
	"kestrel/internal/trace"
	"kestrel/internal/types"
)

// Stage is the last phase Compile runs.
type Stage string

const (
	StageSymbols Stage = "symbols"
	StageSema    Stage = "sema"
	StageMono    Stage = "mono"
)

type Options struct {
	Stage          Stage
	Core           string
	Entry          string
	MaxDiagnostics int
	MaxInstances   int
	// Jobs bounds concurrent file loading; 0 uses GOMAXPROCS.
	Jobs          int
	EnableTimings bool
	Observer      PhaseObserver
}

// Result holds whatever the pipeline produced before it stopped.
type Result struct {
	FileSet *source.FileSet
	Docs    []*astio.Document
	Forest  *ast.Forest
	Bag     *diag.Bag
	Types   *types.Interner
	Table   *symbols.Table
	Sema    *sema.Result
	Program *mono.Program
	Timer   *observ.Timer
}

// Compile loads paths and runs the pipeline up to opts.Stage. Load
// failures and internal compiler errors are returned as errors. A fatal
// diagnostic is added to the bag and returned as a *diag.FatalError; other
// diagnostics only land in the bag, and monomorphization is skipped while
// the bag holds errors.
func Compile(ctx context.Context, paths []string, opts Options) (*Result, error) {
	res := newResult(opts)
	p := &pipeline{ctx: ctx, opts: opts, res: res}
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeDriver, "compile", trace.CurrentSpan(ctx).SpanID)
	defer span.End("")
	p.ctx = trace.WithSpan(ctx, span)

	var err error
	p.phase("load", func() string {
		res.Forest, res.Docs, err = astio.LoadFiles(p.ctx, res.FileSet, paths, opts.Jobs)
		if err != nil {
			return "failed"
		}
		return fmt.Sprintf("%d units", len(res.Forest.Units))
	})
	if err != nil {
		return res, fmt.Errorf("load: %w", err)
	}
	return res, p.run()
}

// CompileForest runs the pipeline on an already decoded forest whose spans
// refer to fs.
func CompileForest(ctx context.Context, fs *source.FileSet, forest *ast.Forest, opts Options) (*Result, error) {
	res := newResult(opts)
	res.FileSet = fs
	res.Forest = forest
	p := &pipeline{ctx: ctx, opts: opts, res: res}
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeDriver, "compile", trace.CurrentSpan(ctx).SpanID)
	defer span.End("")
	p.ctx = trace.WithSpan(ctx, span)
	return res, p.run()
}

func newResult(opts Options) *Result {
	res := &Result{
		FileSet: source.NewFileSet(),
		Bag:     diag.NewBag(opts.MaxDiagnostics),
		Types:   types.NewInterner(),
	}
	if opts.EnableTimings {
		res.Timer = observ.NewTimer()
	}
	return res
}

type pipeline struct {
	ctx  context.Context
	opts Options
	res  *Result
}

// phase runs fn inside a trace span, a timer phase and observer events.
// fn returns the note recorded for the phase.
func (p *pipeline) phase(name string, fn func() string) {
	idx := -1
	if p.res.Timer != nil {
		idx = p.res.Timer.Begin(name)
	}
	if p.opts.Observer != nil {
		p.opts.Observer(PhaseEvent{Name: name, Status: PhaseStart})
	}
	start := time.Now()
	parent := p.ctx
	span := trace.Begin(trace.FromContext(parent), trace.ScopePass, name, trace.CurrentSpan(parent).SpanID)
	p.ctx = trace.WithSpan(parent, span)
	defer func() {
		p.ctx = parent
	}()

	note := fn()

	span.End(note)
	if p.res.Timer != nil {
		p.res.Timer.End(idx, note)
	}
	if p.opts.Observer != nil {
		p.opts.Observer(PhaseEvent{Name: name, Status: PhaseEnd, Elapsed: time.Since(start)})
	}
}

func (p *pipeline) run() (err error) {
	defer diag.RecoverInternal(&err)
	res := p.res
	rep := diag.NewDedupReporter(diag.BagReporter{Bag: res.Bag})

	p.phase("symbols", func() string {
		res.Table, err = symbols.Build(res.Forest, res.Types, symbols.Options{Core: p.opts.Core, Reporter: rep})
		if err != nil {
			return "failed"
		}
		return fmt.Sprintf("%d units, %d fns", len(res.Table.Units()), len(res.Table.Fns.IDs()))
	})
	if err != nil {
		return p.fatal(err)
	}
	if p.opts.Stage == StageSymbols {
		return nil
	}

	p.phase("sema", func() string {
		res.Sema = sema.Check(p.ctx, res.Table, sema.Options{Reporter: rep})
		return fmt.Sprintf("%d errors", res.Bag.ErrorCount())
	})
	if p.opts.Stage == StageSema || res.Bag.HasErrors() {
		return nil
	}

	p.phase("mono", func() string {
		res.Program, err = mono.Monomorphize(p.ctx, res.Table, res.Sema, mono.Options{
			Entry:        p.opts.Entry,
			MaxInstances: p.opts.MaxInstances,
			Reporter:     rep,
		})
		if err != nil {
			return "failed"
		}
		return fmt.Sprintf("%d funcs, %d types", len(res.Program.Funcs), len(res.Program.Types))
	})
	if err != nil {
		return p.fatal(err)
	}
	return nil
}

// fatal records a *diag.FatalError in the bag so it is printed with the
// other diagnostics.
func (p *pipeline) fatal(err error) error {
	var fe *diag.FatalError
	if errors.As(err, &fe) {
		p.res.Bag.Add(fe.Diagnostic())
	}
	return err
}
