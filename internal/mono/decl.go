package mono

import (
	"fmt"

	"fortio.org/safecast"

	"kestrel/internal/diag"
	"kestrel/internal/hir"
	"kestrel/internal/sema"
	"kestrel/internal/types"
)

// wrapper synthesizes the body of a decl instance: it takes the supplied
// parameters, fills the others from their defaults and forwards everything
// to the decl's target.
func (b *builder) wrapper(inst *Instance) *hir.Func {
	fn := b.tab.Fn(inst.Key.Fn)
	ret, params, ok := b.in.FnSignature(inst.Key.Type)
	if !ok || len(params) != len(fn.Params) {
		diag.CompilerError("mono: decl %s instantiated at %s", fn.Name, b.in.Format(inst.Key.Type))
	}
	f := &hir.Func{Sym: inst.Key.Fn, Name: inst.Name, Result: ret, Span: fn.Span, Locals: []hir.Local{{}}}
	c := b.cloner(inst.Subst)
	args := make([]*hir.Expr, len(params))
	callArgs := make([]sema.Arg, len(params))
	for i, p := range params {
		param := fn.Params[i]
		callArgs[i] = sema.Arg{Type: p}
		if inst.Key.Mask&(1<<uint(i)) != 0 {
			n, err := safecast.Conv[uint32](len(f.Locals))
			if err != nil {
				panic(fmt.Errorf("mono: local overflow: %w", err))
			}
			id := hir.LocalID(n)
			f.Locals = append(f.Locals, hir.Local{Name: param.Name, Type: p, Param: true, Span: param.Span})
			f.Params = append(f.Params, id)
			args[i] = &hir.Expr{Kind: hir.ExprLocal, Type: p, Span: param.Span, Data: hir.LocalData{Local: id, Name: param.Name}}
			continue
		}
		def := b.res.Defaults[sema.DefaultKey{Fn: inst.Key.Fn, Param: i}]
		if def == nil {
			diag.CompilerError("mono: parameter %s of %s has no default", param.Name, fn.Name)
		}
		args[i] = c.Expr(def)
	}

	body := &hir.Block{Span: fn.Span}
	f.Body = body
	target, ok := b.resolver.ResolveFn(sema.CallSite{
		Unit: fn.Unit,
		Name: fn.Decl.Target,
		Args: callArgs,
		Want: ret,
		Span: fn.Span,
	}, b.rep)
	if !ok {
		return f
	}
	for i, a := range args {
		if b.in.Kind(target.Params[i]) == types.KindReference && b.in.Kind(a.Type) != types.KindReference {
			args[i] = &hir.Expr{Kind: hir.ExprAddrOf, Type: b.in.Reference(a.Type), Span: a.Span, Data: hir.OperandData{Operand: a}}
		}
	}
	call := b.rewrite(&hir.Expr{
		Kind: hir.ExprCall,
		Type: target.Return,
		Span: fn.Span,
		Data: hir.CallData{Fn: target.Fn, Sig: target.Sig, Args: args},
	})
	if b.in.IsVoid(ret) {
		body.Stmts = append(body.Stmts,
			&hir.Stmt{Kind: hir.StmtExpr, Span: fn.Span, Data: hir.ExprStmtData{Expr: call}},
			&hir.Stmt{Kind: hir.StmtReturn, Span: fn.Span, Data: hir.ReturnData{}},
		)
		return f
	}
	body.Stmts = append(body.Stmts, &hir.Stmt{Kind: hir.StmtReturn, Span: fn.Span, Data: hir.ReturnData{Value: call}})
	return f
}
