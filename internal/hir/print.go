package hir

import (
	"fmt"
	"io"
	"strings"

	"kestrel/internal/types"
)

// Printer is used to dump HIR to text format.
type Printer struct {
	w        io.Writer
	interner *types.Interner
	fn       *Func
	indent   int
	err      error
}

// NewPrinter creates a new HIR printer.
func NewPrinter(w io.Writer, interner *types.Interner) *Printer {
	return &Printer{w: w, interner: interner}
}

// PrintFunc prints one function under the given name.
func (p *Printer) PrintFunc(name string, f *Func) error {
	p.fn = f
	params := make([]string, 0, len(f.Params))
	for _, id := range f.Params {
		l := f.Local(id)
		params = append(params, fmt.Sprintf("%s: %s", l.Name, p.typ(l.Type)))
	}
	p.printf("fn %s(%s) %s\n", name, strings.Join(params, ", "), p.typ(f.Result))
	p.indent++
	p.block(f.Body)
	p.indent--
	return p.err
}

func (p *Printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *Printer) line(format string, args ...any) {
	p.printf("%s", strings.Repeat("  ", p.indent))
	p.printf(format, args...)
	p.printf("\n")
}

func (p *Printer) typ(t types.TypeID) string {
	if p.interner == nil {
		return fmt.Sprintf("type#%d", t)
	}
	return p.interner.Format(t)
}

func (p *Printer) block(b *Block) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		p.stmt(s)
	}
}

func (p *Printer) nested(b *Block) {
	p.indent++
	p.block(b)
	p.indent--
}

func (p *Printer) stmt(s *Stmt) {
	switch d := s.Data.(type) {
	case LetData:
		if d.Value == nil {
			p.line("let %s: %s", d.Name, p.typ(d.Type))
			return
		}
		p.line("let %s: %s = %s", d.Name, p.typ(d.Type), p.Expr(d.Value))
	case ExprStmtData:
		p.line("%s", p.Expr(d.Expr))
	case AssignData:
		p.line("%s %s %s", p.Expr(d.Target), d.Op, p.Expr(d.Value))
	case ReturnData:
		if d.Value == nil {
			p.line("return")
			return
		}
		p.line("return %s", p.Expr(d.Value))
	case IfData:
		p.line("if %s:", p.Expr(d.Cond))
		p.nested(d.Then)
		if d.Else != nil {
			p.line("else:")
			p.nested(d.Else)
		}
	case WhileData:
		p.line("while %s:", p.Expr(d.Cond))
		p.nested(d.Body)
	case ForData:
		p.line("for %s: %s in %s:", d.Name, p.typ(d.Elem), p.Expr(d.Next))
		p.nested(d.Body)
	case BlockData:
		p.line("block:")
		p.nested(d.Block)
	default:
		p.line("%s", strings.ToLower(s.Kind.String()))
	}
}

// Expr renders an expression on one line.
func (p *Printer) Expr(e *Expr) string {
	if e == nil {
		return "<nil>"
	}
	switch d := e.Data.(type) {
	case LiteralData:
		switch d.Kind {
		case LiteralBool:
			return fmt.Sprintf("%t", d.Bool)
		case LiteralString:
			return fmt.Sprintf("%q", d.Text)
		case LiteralChar:
			return "'" + d.Text + "'"
		}
		return fmt.Sprintf("%s:%s", d.Text, p.typ(e.Type))
	case LocalData:
		return d.Name
	case GlobalData:
		return d.Name
	case FnRefData:
		if d.Instance != "" {
			return "&" + d.Instance
		}
		return "&" + d.Name
	case UnaryOpData:
		return fmt.Sprintf("(%s %s)", d.Op, p.Expr(d.Operand))
	case BinaryOpData:
		return fmt.Sprintf("(%s %s %s)", p.Expr(d.Left), d.Op, p.Expr(d.Right))
	case CallData:
		name := d.Instance
		if name == "" {
			name = d.Op
		}
		if name == "" {
			name = fmt.Sprintf("fn#%d", d.Fn)
		}
		return fmt.Sprintf("%s(%s)", name, p.list(d.Args))
	case IndirectCallData:
		return fmt.Sprintf("%s(%s)", p.Expr(d.Callee), p.list(d.Args))
	case FieldAccessData:
		return fmt.Sprintf("%s.%s", p.Expr(d.Object), d.FieldName)
	case VariantData:
		switch e.Kind {
		case ExprTagTest:
			return fmt.Sprintf("(%s is %s)", p.Expr(d.Value), d.Variant)
		case ExprVariantPayload:
			return fmt.Sprintf("%s!%s", p.Expr(d.Value), d.Variant)
		}
		if d.Value == nil {
			return fmt.Sprintf("%s.%s()", p.typ(e.Type), d.Variant)
		}
		return fmt.Sprintf("%s.%s(%s)", p.typ(e.Type), d.Variant, p.Expr(d.Value))
	case StructLitData:
		fields := make([]string, len(d.Fields))
		for i, f := range d.Fields {
			fields[i] = f.Name + ": " + p.Expr(f.Value)
		}
		return fmt.Sprintf("%s{%s}", p.typ(e.Type), strings.Join(fields, ", "))
	case IndexData:
		return fmt.Sprintf("%s[%s]", p.Expr(d.Object), p.Expr(d.Index))
	case OperandData:
		if e.Kind == ExprAddrOf {
			return "&" + p.Expr(d.Operand)
		}
		return "*" + p.Expr(d.Operand)
	}
	return e.Kind.String()
}

func (p *Printer) list(es []*Expr) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = p.Expr(e)
	}
	return strings.Join(parts, ", ")
}
