package mono

import (
	"context"
	"fmt"
	"strings"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/hir"
	"kestrel/internal/sema"
	"kestrel/internal/source"
	"kestrel/internal/symbols"
	"kestrel/internal/trace"
	"kestrel/internal/types"
)

// Options configure monomorphization.
type Options struct {
	// Entry names the entry function; "main" when empty.
	Entry string
	// MaxInstances bounds the number of instantiations; 4096 when zero.
	MaxInstances int
	Reporter     diag.Reporter
}

type builder struct {
	tab      *symbols.Table
	in       *types.Interner
	res      *sema.Result
	resolver *sema.Resolver
	opts     Options
	rep      *reporter

	used  map[Key]*Instance
	names map[string]int
	queue []*Instance
	prog  *Program
	fatal error

	// current is the instance being built; diagnostics mark it broken.
	current *Instance
	broken  map[*Instance]bool
}

// reporter forwards diagnostics and remembers which instance they hit.
type reporter struct {
	b    *builder
	next diag.Reporter
}

func (r *reporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note, fixes []diag.Fix) {
	if sev >= diag.SevError && r.b.current != nil {
		r.b.broken[r.b.current] = true
	}
	if r.next != nil {
		r.next.Report(code, sev, primary, msg, notes, fixes)
	}
}

// Monomorphize instantiates every function reachable from the entry at the
// concrete types it is used with, starting from the entry with an empty
// substitution. Deferred trait calls and function references are resolved
// against the concrete types. A missing or duplicated entry, a struct that
// contains itself by value and a runaway instantiation are fatal.
func Monomorphize(ctx context.Context, tab *symbols.Table, res *sema.Result, opts Options) (*Program, error) {
	if opts.Entry == "" {
		opts.Entry = "main"
	}
	if opts.MaxInstances <= 0 {
		opts.MaxInstances = 4096
	}
	b := &builder{
		tab:      tab,
		in:       tab.Types,
		res:      res,
		resolver: sema.NewResolver(tab),
		opts:     opts,
		used:     make(map[Key]*Instance),
		names:    make(map[string]int),
		prog:     &Program{},
		broken:   make(map[*Instance]bool),
	}
	b.rep = &reporter{b: b, next: opts.Reporter}

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopePass, "mono", trace.CurrentSpan(ctx).SpanID)
	defer span.End("")

	entry, err := b.findEntry()
	if err != nil {
		return nil, err
	}
	b.prog.Entry = b.instantiate(entry, tab.Fn(entry).Type, 0, tab.Fn(entry).Span)
	b.globals()
	for len(b.queue) > 0 && b.fatal == nil {
		inst := b.queue[0]
		b.queue = b.queue[1:]
		fspan := trace.Begin(tracer, trace.ScopeNode, "mono.fn:"+inst.Name, span.ID())
		b.build(inst)
		fspan.End("")
	}
	if b.fatal != nil {
		return nil, b.fatal
	}
	b.checkConcrete()
	if err := b.orderTypes(); err != nil {
		return nil, err
	}
	span.WithExtra("funcs", fmt.Sprint(len(b.prog.Funcs))).WithExtra("types", fmt.Sprint(len(b.prog.Types)))
	return b.prog, nil
}

func (b *builder) findEntry() (symbols.FnID, error) {
	var found []symbols.FnID
	for _, id := range b.res.Order {
		fn := b.tab.Fn(id)
		if fn.Name == b.opts.Entry && fn.Mode == ast.ModeFn {
			found = append(found, id)
		}
	}
	switch len(found) {
	case 0:
		return symbols.NoFnID, diag.Fatal(diag.MonoNoMain, source.Span{}, "no function %s to start from", b.opts.Entry)
	case 1:
	default:
		second := b.tab.Fn(found[1])
		return symbols.NoFnID, diag.Fatal(diag.MonoMultipleMain, second.Span,
			"function %s is defined %d times; first in unit %s", b.opts.Entry, len(found), b.tab.UnitName(b.tab.Fn(found[0]).Unit))
	}
	fn := b.tab.Fn(found[0])
	if fn.Generic {
		return symbols.NoFnID, diag.Fatal(diag.MonoGenericEscape, fn.Span,
			"entry function %s cannot be generic: %s", fn.Name, b.in.Format(fn.Type))
	}
	return found[0], nil
}

// instantiate returns the instance of id at the concrete type sig, queueing
// it the first time the key is seen. A key already used is never queued
// again, which is what stops recursive generics.
func (b *builder) instantiate(id symbols.FnID, sig types.TypeID, mask uint64, span source.Span) *Instance {
	fn := b.tab.Fn(id)
	if !fn.Mode.IsDecl() {
		mask = 0
	}
	key := Key{Fn: id, Type: sig, Mode: fn.Mode, Mask: mask}
	if inst, ok := b.used[key]; ok {
		return inst
	}
	if b.in.IsGeneric(sig) || b.in.HasAmbiguous(sig) {
		diag.ReportError(b.rep, diag.MonoGenericEscape, span,
			fmt.Sprintf("%s would be instantiated at %s, which is not concrete", fn.Name, b.in.Format(sig))).
			WithNote(fn.Span, "declared as "+b.tab.FormatFn(id)).
			Emit()
		return nil
	}
	subst := make(types.Subst)
	if !b.in.Applicable(sig, fn.Type, true, subst) {
		diag.CompilerError("mono: %s does not fit %s", b.in.Format(sig), b.tab.FormatFn(id))
	}
	if len(b.used) >= b.opts.MaxInstances {
		if b.fatal == nil {
			b.fatal = diag.Fatal(diag.MonoInstanceLimit, span,
				"more than %d instantiations, last %s at %s", b.opts.MaxInstances, fn.Name, b.in.Format(sig))
		}
		return nil
	}
	inst := &Instance{Key: key, Name: b.mangle(fn, subst, mask), Subst: subst, Wrapper: fn.Mode.IsDecl()}
	b.used[key] = inst
	b.queue = append(b.queue, inst)
	b.prog.Funcs = append(b.prog.Funcs, inst)
	return inst
}

// mangle names an instance unit.name[T1,T2]; decl wrappers add {mask} and
// repeated names get #n.
func (b *builder) mangle(fn *symbols.Fn, m types.Subst, mask uint64) string {
	var sb strings.Builder
	sb.WriteString(b.tab.UnitName(fn.Unit))
	sb.WriteByte('.')
	sb.WriteString(fn.Name)
	if generics := b.in.GenericNames(fn.Type); len(generics) > 0 {
		sb.WriteByte('[')
		for i, g := range generics {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(b.in.Format(m[g]))
		}
		sb.WriteByte(']')
	}
	if fn.Mode.IsDecl() {
		fmt.Fprintf(&sb, "{%b}", mask)
	}
	name := sb.String()
	n := b.names[name]
	b.names[name] = n + 1
	if n > 0 {
		name = fmt.Sprintf("%s#%d", name, n)
	}
	return name
}

// build produces the body of one instance.
func (b *builder) build(inst *Instance) {
	b.current = inst
	defer func() { b.current = nil }()
	if inst.Wrapper {
		inst.Func = b.wrapper(inst)
		return
	}
	src := b.res.Funcs[inst.Key.Fn]
	if src == nil {
		diag.CompilerError("mono: no checked body for %s", inst.Name)
	}
	c := b.cloner(inst.Subst)
	f := &hir.Func{
		Sym:    src.Sym,
		Name:   inst.Name,
		Params: append([]hir.LocalID(nil), src.Params...),
		Locals: make([]hir.Local, len(src.Locals)),
		Result: b.in.Apply(src.Result, inst.Subst),
		Span:   src.Span,
	}
	for i, l := range src.Locals {
		l.Type = b.in.Apply(l.Type, inst.Subst)
		f.Locals[i] = l
	}
	f.Body = c.Block(src.Body)
	inst.Func = f
}

// globals rewrites global initializers, which may name functions.
func (b *builder) globals() {
	c := b.cloner(nil)
	for _, g := range b.res.Globals {
		out := *g
		out.Value = c.Expr(g.Value)
		b.prog.Globals = append(b.prog.Globals, &out)
	}
}
