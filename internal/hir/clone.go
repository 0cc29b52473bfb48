package hir

import "kestrel/internal/types"

// Cloner deep-copies trees. Every type is passed through Type, and Rewrite,
// when set, sees each cloned expression after its children and may replace it.
type Cloner struct {
	Type    func(types.TypeID) types.TypeID
	Rewrite func(*Expr) *Expr
}

func (c *Cloner) typ(t types.TypeID) types.TypeID {
	if c.Type == nil || t == types.NoTypeID {
		return t
	}
	return c.Type(t)
}

// Block clones a block.
func (c *Cloner) Block(b *Block) *Block {
	if b == nil {
		return nil
	}
	out := &Block{Span: b.Span, Stmts: make([]*Stmt, 0, len(b.Stmts))}
	for _, s := range b.Stmts {
		out.Stmts = append(out.Stmts, c.Stmt(s))
	}
	return out
}

// Stmt clones a statement.
func (c *Cloner) Stmt(s *Stmt) *Stmt {
	if s == nil {
		return nil
	}
	out := &Stmt{Kind: s.Kind, Span: s.Span}
	switch d := s.Data.(type) {
	case LetData:
		out.Data = LetData{Local: d.Local, Name: d.Name, Type: c.typ(d.Type), Value: c.Expr(d.Value)}
	case ExprStmtData:
		out.Data = ExprStmtData{Expr: c.Expr(d.Expr)}
	case AssignData:
		out.Data = AssignData{Target: c.Expr(d.Target), Op: d.Op, Value: c.Expr(d.Value)}
	case ReturnData:
		out.Data = ReturnData{Value: c.Expr(d.Value)}
	case IfData:
		out.Data = IfData{Cond: c.Expr(d.Cond), Then: c.Block(d.Then), Else: c.Block(d.Else)}
	case WhileData:
		out.Data = WhileData{Cond: c.Expr(d.Cond), Body: c.Block(d.Body)}
	case ForData:
		out.Data = ForData{Local: d.Local, Name: d.Name, Elem: c.typ(d.Elem), Next: c.Expr(d.Next), Body: c.Block(d.Body)}
	case BlockData:
		out.Data = BlockData{Block: c.Block(d.Block)}
	default:
		out.Data = s.Data
	}
	return out
}

func (c *Cloner) exprs(in []*Expr) []*Expr {
	if in == nil {
		return nil
	}
	out := make([]*Expr, len(in))
	for i, e := range in {
		out[i] = c.Expr(e)
	}
	return out
}

// Expr clones an expression.
func (c *Cloner) Expr(e *Expr) *Expr {
	if e == nil {
		return nil
	}
	out := &Expr{Kind: e.Kind, Type: c.typ(e.Type), Span: e.Span}
	switch d := e.Data.(type) {
	case UnaryOpData:
		out.Data = UnaryOpData{Op: d.Op, Operand: c.Expr(d.Operand)}
	case BinaryOpData:
		out.Data = BinaryOpData{Op: d.Op, Left: c.Expr(d.Left), Right: c.Expr(d.Right)}
	case CallData:
		d.Sig = c.typ(d.Sig)
		d.Args = c.exprs(d.Args)
		out.Data = d
	case IndirectCallData:
		out.Data = IndirectCallData{Callee: c.Expr(d.Callee), Args: c.exprs(d.Args)}
	case FieldAccessData:
		out.Data = FieldAccessData{Object: c.Expr(d.Object), FieldName: d.FieldName, FieldIdx: d.FieldIdx}
	case VariantData:
		out.Data = VariantData{Value: c.Expr(d.Value), Variant: d.Variant, Index: d.Index}
	case StructLitData:
		fields := make([]StructFieldInit, len(d.Fields))
		for i, f := range d.Fields {
			fields[i] = StructFieldInit{Name: f.Name, Value: c.Expr(f.Value), Span: f.Span}
		}
		out.Data = StructLitData{Fields: fields}
	case IndexData:
		out.Data = IndexData{Object: c.Expr(d.Object), Index: c.Expr(d.Index)}
	case OperandData:
		out.Data = OperandData{Operand: c.Expr(d.Operand)}
	default:
		// literals, locals, globals and function references carry no children
		out.Data = e.Data
	}
	if c.Rewrite != nil {
		return c.Rewrite(out)
	}
	return out
}

// WalkBlock visits statements and expressions in source order, parents first.
func WalkBlock(b *Block, stmt func(*Stmt), expr func(*Expr)) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		WalkStmt(s, stmt, expr)
	}
}

// WalkStmt visits one statement. Either callback may be nil.
func WalkStmt(s *Stmt, stmt func(*Stmt), expr func(*Expr)) {
	if s == nil {
		return
	}
	if stmt != nil {
		stmt(s)
	}
	visit := func(e *Expr) {
		if expr != nil {
			WalkExpr(e, expr)
		}
	}
	switch d := s.Data.(type) {
	case LetData:
		visit(d.Value)
	case ExprStmtData:
		visit(d.Expr)
	case AssignData:
		visit(d.Target)
		visit(d.Value)
	case ReturnData:
		visit(d.Value)
	case IfData:
		visit(d.Cond)
		WalkBlock(d.Then, stmt, expr)
		WalkBlock(d.Else, stmt, expr)
	case WhileData:
		visit(d.Cond)
		WalkBlock(d.Body, stmt, expr)
	case ForData:
		visit(d.Next)
		WalkBlock(d.Body, stmt, expr)
	case BlockData:
		WalkBlock(d.Block, stmt, expr)
	}
}

// WalkExpr visits e and its children, parents first.
func WalkExpr(e *Expr, visit func(*Expr)) {
	if e == nil {
		return
	}
	visit(e)
	switch d := e.Data.(type) {
	case UnaryOpData:
		WalkExpr(d.Operand, visit)
	case BinaryOpData:
		WalkExpr(d.Left, visit)
		WalkExpr(d.Right, visit)
	case CallData:
		for _, a := range d.Args {
			WalkExpr(a, visit)
		}
	case IndirectCallData:
		WalkExpr(d.Callee, visit)
		for _, a := range d.Args {
			WalkExpr(a, visit)
		}
	case FieldAccessData:
		WalkExpr(d.Object, visit)
	case VariantData:
		WalkExpr(d.Value, visit)
	case StructLitData:
		for _, f := range d.Fields {
			WalkExpr(f.Value, visit)
		}
	case IndexData:
		WalkExpr(d.Object, visit)
		WalkExpr(d.Index, visit)
	case OperandData:
		WalkExpr(d.Operand, visit)
	}
}
