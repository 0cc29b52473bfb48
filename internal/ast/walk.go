package ast

import "kestrel/internal/source"

// StampFile sets the document of every span in u to file. Forests are
// serialized without document ids.
func StampFile(u *Unit, file source.FileID) {
	if u == nil {
		return
	}
	u.File = file
	u.Span.File = file
	for _, use := range u.Uses {
		use.Span.File = file
	}
	for _, s := range u.Structs {
		s.Span.File = file
		for _, f := range s.Fields {
			f.Span.File = file
			stampType(f.Type, file)
		}
	}
	for _, fn := range u.Fns {
		fn.Span.File = file
		for _, p := range fn.Params {
			p.Span.File = file
			stampType(p.Type, file)
			WalkExpr(p.Default, func(e *Expr) { stampExpr(e, file) })
		}
		stampType(fn.Return, file)
		WalkStmts(fn.Body, func(s *Stmt) {
			s.Span.File = file
			stampType(s.Type, file)
		}, func(e *Expr) { stampExpr(e, file) })
	}
	for _, g := range u.Globals {
		g.Span.File = file
		stampType(g.Type, file)
		WalkExpr(g.Value, func(e *Expr) { stampExpr(e, file) })
	}
}

func stampExpr(e *Expr, file source.FileID) {
	e.Span.File = file
	stampType(e.Type, file)
	for _, a := range e.Args {
		a.Span.File = file
	}
}

func stampType(t *TypeExpr, file source.FileID) {
	if t == nil {
		return
	}
	t.Span.File = file
	for _, a := range t.Args {
		stampType(a, file)
	}
	for _, p := range t.Params {
		stampType(p, file)
	}
	stampType(t.Elem, file)
	stampType(t.Return, file)
	stampType(t.Left, file)
	stampType(t.Right, file)
}

// WalkStmts visits statements and the expressions they hold in source order.
// Either callback may be nil.
func WalkStmts(body []*Stmt, stmt func(*Stmt), expr func(*Expr)) {
	for _, s := range body {
		if s == nil {
			continue
		}
		if stmt != nil {
			stmt(s)
		}
		if expr != nil {
			WalkExpr(s.Target, expr)
			WalkExpr(s.Value, expr)
		}
		WalkStmts(s.Body, stmt, expr)
	}
}

// WalkExpr visits e and its sub-expressions, parents first.
func WalkExpr(e *Expr, visit func(*Expr)) {
	if e == nil {
		return
	}
	visit(e)
	WalkExpr(e.X, visit)
	WalkExpr(e.Y, visit)
	WalkExpr(e.Z, visit)
	for _, a := range e.Args {
		WalkExpr(a.Value, visit)
	}
}

// CloneExpr deep-copies an expression tree. Type references are shared.
func CloneExpr(e *Expr) *Expr {
	if e == nil {
		return nil
	}
	out := *e
	out.X = CloneExpr(e.X)
	out.Y = CloneExpr(e.Y)
	out.Z = CloneExpr(e.Z)
	if len(e.Args) > 0 {
		out.Args = make([]*Arg, len(e.Args))
		for i, a := range e.Args {
			ca := *a
			ca.Value = CloneExpr(a.Value)
			out.Args[i] = &ca
		}
	}
	return &out
}

// Substitute clones e replacing unqualified identifiers named in repl with
// copies of the mapped expressions.
func Substitute(e *Expr, repl map[string]*Expr) *Expr {
	if e == nil {
		return nil
	}
	if e.Kind == ExprIdent && e.Qualifier == "" {
		if r, ok := repl[e.Text]; ok {
			return CloneExpr(r)
		}
	}
	out := *e
	out.X = Substitute(e.X, repl)
	out.Y = Substitute(e.Y, repl)
	out.Z = Substitute(e.Z, repl)
	if len(e.Args) > 0 {
		out.Args = make([]*Arg, len(e.Args))
		for i, a := range e.Args {
			ca := *a
			ca.Value = Substitute(a.Value, repl)
			out.Args[i] = &ca
		}
	}
	return &out
}
