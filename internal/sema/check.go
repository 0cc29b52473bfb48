package sema

import (
	"context"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/hir"
	"kestrel/internal/symbols"
	"kestrel/internal/trace"
	"kestrel/internal/types"
)

// Options configure the semantic pass.
type Options struct {
	Reporter diag.Reporter
}

// DefaultKey identifies the default argument of a decl parameter.
type DefaultKey struct {
	Fn    symbols.FnID
	Param int
}

// Result stores semantic artefacts produced by the checker.
type Result struct {
	// Funcs holds the checked body of every function with one; Order lists
	// them in declaration order.
	Funcs map[symbols.FnID]*hir.Func
	Order []symbols.FnID
	// Globals are in evaluation order.
	Globals []*hir.Global
	// Defaults holds checked default arguments of decl parameters.
	Defaults map[DefaultKey]*hir.Expr
}

type program struct {
	tab      *symbols.Table
	resolver *Resolver
	reporter diag.Reporter
	result   *Result
}

// Check type-checks every global and function of the table. Globals come
// first, in unit and declaration order, since bodies may read them.
func Check(ctx context.Context, tab *symbols.Table, opts Options) *Result {
	res := &Result{
		Funcs:    make(map[symbols.FnID]*hir.Func),
		Defaults: make(map[DefaultKey]*hir.Expr),
	}
	if tab == nil {
		return res
	}
	p := &program{
		tab:      tab,
		resolver: NewResolver(tab),
		reporter: opts.Reporter,
		result:   res,
	}
	tracer := trace.FromContext(ctx)

	span := trace.Begin(tracer, trace.ScopePass, "sema.globals", trace.CurrentSpan(ctx).SpanID)
	for _, uid := range tab.Units() {
		u := tab.Unit(uid)
		for _, decl := range u.Decl.Globals {
			if gid, ok := u.Globals[symbols.Normalize(decl.Name)]; ok && tab.Global(gid).Decl == decl {
				p.checkGlobal(gid)
			}
		}
	}
	span.End("")

	for _, id := range tab.Fns.IDs() {
		fn := tab.Fn(id)
		switch {
		case fn.Mode == ast.ModeMacro:
			continue
		case fn.Mode.IsDecl():
			p.checkDecl(id)
			continue
		}
		fspan := trace.Begin(tracer, trace.ScopeNode, "sema.fn:"+fn.Name, trace.CurrentSpan(ctx).SpanID)
		res.Funcs[id] = p.checkFn(id)
		res.Order = append(res.Order, id)
		fspan.End("")
	}
	return res
}

func (p *program) checkGlobal(id symbols.GlobalID) {
	g := p.tab.Global(id)
	tc := p.newChecker(g.Unit)
	out := &hir.Global{Sym: id, Name: g.Name, Type: g.Type, Span: g.Span}
	if g.Decl.Value == nil {
		if g.Type == types.NoTypeID {
			tc.report(diag.SemaTypeMismatch, g.Span, "global %s needs a type or a value", g.Name)
		}
		p.result.Globals = append(p.result.Globals, out)
		return
	}
	value := tc.value(g.Decl.Value, g.Type)
	if g.Type == types.NoTypeID && value.Type != types.NoTypeID {
		g.Type = tc.types.DefaultAmbiguous(value.Type)
		if tc.types.IsGeneric(g.Type) {
			tc.report(diag.SemaGenericEscape, g.Span, "global %s cannot have generic type %s", g.Name, tc.typeLabel(g.Type))
			g.Type = types.NoTypeID
		}
	}
	if g.Type != types.NoTypeID {
		value = tc.coerce(value, g.Type, g.Decl.Value.Span)
	}
	out.Type = g.Type
	out.Value = value
	tc.settleExpr(out.Value, out.Type)
	p.result.Globals = append(p.result.Globals, out)
}

func (p *program) checkFn(id symbols.FnID) *hir.Func {
	sym := p.tab.Fn(id)
	tc := p.newChecker(sym.Unit)
	tc.sym = sym
	tc.generics = tc.types.GenericNames(sym.Type)
	f := tc.fn
	f.Sym, f.Name, f.Result, f.Span = id, sym.Name, sym.Return, sym.Span
	for _, param := range sym.Params {
		f.Params = append(f.Params, tc.declareLocal(param.Name, param.Type, true, param.Span))
	}
	f.Body = tc.block(sym.Decl.Body, sym.Span)
	if sym.Return != tc.void() && tc.returnStatus(f.Body) != returnClosed {
		tc.report(diag.SemaMissingReturn, sym.Span, "function %s does not always return", sym.Name)
	}
	tc.settleFunc()
	return f
}

// checkDecl validates that the forwarding target of a decl accepts its
// parameters, and checks the parameters' defaults.
func (p *program) checkDecl(id symbols.FnID) {
	sym := p.tab.Fn(id)
	args := make([]Arg, len(sym.Params))
	for i, param := range sym.Params {
		args[i] = Arg{Type: param.Type}
	}
	p.resolver.ResolveFn(CallSite{
		Unit: sym.Unit,
		Name: sym.Decl.Target,
		Args: args,
		Want: sym.Return,
		Span: sym.Span,
	}, p.reporter)
	for i := range sym.Params {
		if sym.Params[i].Default != nil {
			p.result.Defaults[DefaultKey{Fn: id, Param: i}] = p.defaultArg(sym, i)
		}
	}
}

// defaultArg checks a decl parameter's default in the decl's unit. Defaults
// cannot see the other parameters.
func (p *program) defaultArg(sym *symbols.Fn, param int) *hir.Expr {
	tc := p.newChecker(sym.Unit)
	tc.generics = tc.types.GenericNames(sym.Type)
	want := sym.Params[param].Type
	def := sym.Params[param].Default
	var e *hir.Expr
	if ref, ok := tc.deferredFnRef(def, want); ok {
		e = ref
	} else if ref, ok := tc.implFnRef(def, want); ok {
		e = ref
	} else {
		e = tc.coerce(tc.value(def, want), want, def.Span)
		tc.settleExpr(e, want)
	}
	return e
}
