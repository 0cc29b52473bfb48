package ast

import "strconv"

// Terse constructors used to assemble forests in code, mostly in tests.
// Nodes built here carry no position.

func NewForest(units ...*Unit) *Forest { return &Forest{Units: units} }

func NewUnit(name string) *Unit { return &Unit{Name: name} }

// Use adds a plain import.
func (u *Unit) Use(unit string) *Unit {
	u.Uses = append(u.Uses, &Use{Unit: unit})
	return u
}

// UseAs adds an aliased import.
func (u *Unit) UseAs(unit, alias string) *Unit {
	u.Uses = append(u.Uses, &Use{Unit: unit, Alias: alias})
	return u
}

// Add appends declarations of any supported node type.
func (u *Unit) Add(decls ...any) *Unit {
	for _, d := range decls {
		switch d := d.(type) {
		case *Struct:
			u.Structs = append(u.Structs, d)
		case *Fn:
			u.Fns = append(u.Fns, d)
		case *Global:
			u.Globals = append(u.Globals, d)
		case *Use:
			u.Uses = append(u.Uses, d)
		default:
			panic("ast: unsupported declaration")
		}
	}
	return u
}

// Types

func T(name string, args ...*TypeExpr) *TypeExpr {
	return &TypeExpr{Kind: TypeName, Name: name, Args: args}
}

func QT(qual, name string, args ...*TypeExpr) *TypeExpr {
	return &TypeExpr{Kind: TypeName, Qualifier: qual, Name: name, Args: args}
}

func Ptr(elem *TypeExpr) *TypeExpr { return &TypeExpr{Kind: TypePointer, Elem: elem} }
func Ref(elem *TypeExpr) *TypeExpr { return &TypeExpr{Kind: TypeReference, Elem: elem} }

func FnT(ret *TypeExpr, params ...*TypeExpr) *TypeExpr {
	return &TypeExpr{Kind: TypeFn, Return: ret, Params: params}
}

func UnionT(left, right *TypeExpr) *TypeExpr {
	return &TypeExpr{Kind: TypeUnion, Left: left, Right: right}
}

// Declarations

func Func(name string, params []*Param, ret *TypeExpr, body ...*Stmt) *Fn {
	return &Fn{Name: name, Params: params, Return: ret, Body: body}
}

// Params is a shorthand for a parameter list.
func Params(ps ...*Param) []*Param { return ps }

func P(name string, ty *TypeExpr) *Param { return &Param{Name: name, Type: ty} }

func PDefault(name string, ty *TypeExpr, def *Expr) *Param {
	return &Param{Name: name, Type: ty, Default: def}
}

// WithMode sets the function mode.
func (f *Fn) WithMode(m FnMode) *Fn {
	f.Mode = m
	return f
}

// WithTarget sets the forwarding target of a decl.
func (f *Fn) WithTarget(target string) *Fn {
	f.Target = target
	return f
}

func StructDecl(name string, generics []string, fields ...*Field) *Struct {
	return &Struct{Name: name, Generics: generics, Fields: fields}
}

func EnumDecl(name string, generics []string, variants ...*Field) *Struct {
	return &Struct{Name: name, Generics: generics, Fields: variants, IsEnum: true}
}

func F(name string, ty *TypeExpr) *Field { return &Field{Name: name, Type: ty} }

func FVis(name string, ty *TypeExpr, vis Visibility) *Field {
	return &Field{Name: name, Type: ty, Visibility: vis}
}

func G(name string, ty *TypeExpr, value *Expr) *Global {
	return &Global{Name: name, Type: ty, Value: value}
}

func MutG(name string, ty *TypeExpr, value *Expr) *Global {
	return &Global{Name: name, Type: ty, Value: value, Mutable: true}
}

// Expressions

func Int(v int) *Expr             { return &Expr{Kind: ExprInt, Text: strconv.Itoa(v)} }
func Float(text string) *Expr     { return &Expr{Kind: ExprFloat, Text: text} }
func Str(text string) *Expr       { return &Expr{Kind: ExprStr, Text: text} }
func Char(text string) *Expr      { return &Expr{Kind: ExprChar, Text: text} }
func Bool(v bool) *Expr           { return &Expr{Kind: ExprBool, Bool: v} }
func Id(name string) *Expr        { return &Expr{Kind: ExprIdent, Text: name} }
func QId(q, name string) *Expr    { return &Expr{Kind: ExprIdent, Qualifier: q, Text: name} }
func Addr(x *Expr) *Expr          { return &Expr{Kind: ExprAddr, X: x} }
func Deref(x *Expr) *Expr         { return &Expr{Kind: ExprDeref, X: x} }
func Current(x *Expr) *Expr       { return &Expr{Kind: ExprCurrent, X: x} }
func Not(x *Expr) *Expr           { return &Expr{Kind: ExprUnary, Text: "not", X: x} }
func Neg(x *Expr) *Expr           { return &Expr{Kind: ExprUnary, Text: "-", X: x} }
func Sel(x *Expr, f string) *Expr { return &Expr{Kind: ExprField, X: x, Text: f} }
func Is(x *Expr, v string) *Expr  { return &Expr{Kind: ExprIs, X: x, Text: v} }

func Index(x, i *Expr) *Expr { return &Expr{Kind: ExprIndex, X: x, Y: i} }

func Range(x, from, to *Expr) *Expr { return &Expr{Kind: ExprRange, X: x, Y: from, Z: to} }

func Bin(x *Expr, op string, y *Expr) *Expr { return &Expr{Kind: ExprBinary, Text: op, X: x, Y: y} }

// Call builds a call with positional arguments.
func Call(name string, args ...*Expr) *Expr {
	return QCall("", name, args...)
}

func QCall(qual, name string, args ...*Expr) *Expr {
	e := &Expr{Kind: ExprCall, Qualifier: qual, Text: name}
	for _, a := range args {
		e.Args = append(e.Args, &Arg{Value: a})
	}
	return e
}

// CallArgs builds a call with positional and named arguments.
func CallArgs(qual, name string, args ...*Arg) *Expr {
	return &Expr{Kind: ExprCall, Qualifier: qual, Text: name, Args: args}
}

func Pos(v *Expr) *Arg                { return &Arg{Value: v} }
func Named(name string, v *Expr) *Arg { return &Arg{Name: name, Value: v} }

// Lit builds a struct literal.
func Lit(ty *TypeExpr, fields ...*Arg) *Expr {
	return &Expr{Kind: ExprStruct, Type: ty, Args: fields}
}

// Statements

func Let(name string, ty *TypeExpr, value *Expr) *Stmt {
	return &Stmt{Kind: StmtLet, Name: name, Type: ty, Value: value}
}

func Assign(target *Expr, op string, value *Expr) *Stmt {
	return &Stmt{Kind: StmtAssign, Target: target, Op: op, Value: value}
}

func Do(e *Expr) *Stmt { return &Stmt{Kind: StmtExpr, Value: e} }

func If(cond *Expr, body ...*Stmt) *Stmt   { return &Stmt{Kind: StmtIf, Value: cond, Body: body} }
func Elif(cond *Expr, body ...*Stmt) *Stmt { return &Stmt{Kind: StmtElif, Value: cond, Body: body} }
func Else(body ...*Stmt) *Stmt             { return &Stmt{Kind: StmtElse, Body: body} }

func While(cond *Expr, body ...*Stmt) *Stmt { return &Stmt{Kind: StmtWhile, Value: cond, Body: body} }

func For(name string, iter *Expr, body ...*Stmt) *Stmt {
	return &Stmt{Kind: StmtFor, Name: name, Value: iter, Body: body}
}

func Ret(e *Expr) *Stmt { return &Stmt{Kind: StmtReturn, Value: e} }
func Break() *Stmt      { return &Stmt{Kind: StmtBreak} }
func Continue() *Stmt   { return &Stmt{Kind: StmtContinue} }

func Block(body ...*Stmt) *Stmt { return &Stmt{Kind: StmtBlock, Body: body} }
