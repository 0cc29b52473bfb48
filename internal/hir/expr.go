package hir

import (
	"kestrel/internal/source"
	"kestrel/internal/symbols"
	"kestrel/internal/types"
)

// ExprKind enumerates HIR expression kinds.
type ExprKind uint8

const (
	// ExprLiteral represents literals (int, float, bool, str, char).
	ExprLiteral ExprKind = iota
	// ExprLocal reads a parameter or local variable.
	ExprLocal
	// ExprGlobal reads a unit-level variable.
	ExprGlobal
	// ExprFnRef names a function as a value.
	ExprFnRef
	// ExprUnaryOp represents builtin unary operators (-, not).
	ExprUnaryOp
	// ExprBinaryOp represents builtin operators on primitives.
	ExprBinaryOp
	// ExprCall represents a call of a resolved function or trait implementation.
	ExprCall
	// ExprIndirectCall calls a function-typed value.
	ExprIndirectCall
	// ExprFieldAccess represents field access (expr.field).
	ExprFieldAccess
	// ExprVariantPayload reads the payload of the active variant of a tagged union.
	ExprVariantPayload
	// ExprTagTest checks whether a tagged union holds a variant.
	ExprTagTest
	// ExprStructLit represents struct literals.
	ExprStructLit
	// ExprVariantLit constructs an enum variant.
	ExprVariantLit
	// ExprInject wraps a value into a T|K sum.
	ExprInject
	// ExprIndex indexes a raw pointer or a str.
	ExprIndex
	// ExprDeref reads through a pointer or reference.
	ExprDeref
	// ExprAddrOf takes a reference to an lvalue.
	ExprAddrOf
)

// String returns a human-readable name for the expression kind.
func (k ExprKind) String() string {
	switch k {
	case ExprLiteral:
		return "Literal"
	case ExprLocal:
		return "Local"
	case ExprGlobal:
		return "Global"
	case ExprFnRef:
		return "FnRef"
	case ExprUnaryOp:
		return "UnaryOp"
	case ExprBinaryOp:
		return "BinaryOp"
	case ExprCall:
		return "Call"
	case ExprIndirectCall:
		return "IndirectCall"
	case ExprFieldAccess:
		return "FieldAccess"
	case ExprVariantPayload:
		return "VariantPayload"
	case ExprTagTest:
		return "TagTest"
	case ExprStructLit:
		return "StructLit"
	case ExprVariantLit:
		return "VariantLit"
	case ExprInject:
		return "Inject"
	case ExprIndex:
		return "Index"
	case ExprDeref:
		return "Deref"
	case ExprAddrOf:
		return "AddrOf"
	default:
		return "Unknown"
	}
}

// Expr represents an HIR expression with type information.
type Expr struct {
	Kind ExprKind
	Type types.TypeID
	Span source.Span
	Data ExprData // Kind-specific payload
}

// ExprData is the interface for expression-specific data.
type ExprData interface {
	exprData()
}

// LiteralKind enumerates literal value kinds.
type LiteralKind uint8

const (
	LiteralInt LiteralKind = iota
	LiteralFloat
	LiteralBool
	LiteralString
	LiteralChar
)

// LiteralData holds data for ExprLiteral.
type LiteralData struct {
	Kind LiteralKind
	Text string // raw literal text
	Bool bool
}

func (LiteralData) exprData() {}

// LocalData holds data for ExprLocal.
type LocalData struct {
	Local LocalID
	Name  string
}

func (LocalData) exprData() {}

// GlobalData holds data for ExprGlobal.
type GlobalData struct {
	Global symbols.GlobalID
	Name   string
}

func (GlobalData) exprData() {}

// FnRefData holds data for ExprFnRef. A deferred reference is resolved by
// name against the concrete Sig during monomorphization; with Impl set the
// name is an operation looked up among the implementations of every unit.
type FnRefData struct {
	Fn       symbols.FnID
	Name     string
	Unit     symbols.UnitID
	Deferred bool
	Impl     bool
	Instance string // set by mono
}

func (FnRefData) exprData() {}

// UnaryOpData holds data for ExprUnaryOp.
type UnaryOpData struct {
	Op      string
	Operand *Expr
}

func (UnaryOpData) exprData() {}

// BinaryOpData holds data for ExprBinaryOp.
type BinaryOpData struct {
	Op    string
	Left  *Expr
	Right *Expr
}

func (BinaryOpData) exprData() {}

// CallData holds data for ExprCall.
//
// Sig is the callee's signature at this call site: the declared signature
// with the callee's generics substituted, possibly still mentioning the
// caller's own generics. For decl callees Args hold only the supplied
// parameters in parameter order and Mask has one bit per supplied parameter.
// Op names the trait operation for compiler-synthesized calls; Deferred ones
// are re-resolved with concrete types during monomorphization.
type CallData struct {
	Fn       symbols.FnID
	Sig      types.TypeID
	Args     []*Expr
	Mask     uint64
	Op       string
	Deferred bool
	Instance string // set by mono
}

func (CallData) exprData() {}

// IndirectCallData holds data for ExprIndirectCall.
type IndirectCallData struct {
	Callee *Expr
	Args   []*Expr
}

func (IndirectCallData) exprData() {}

// FieldAccessData holds data for ExprFieldAccess.
type FieldAccessData struct {
	Object    *Expr
	FieldName string
	FieldIdx  int
}

func (FieldAccessData) exprData() {}

// VariantData holds data for ExprVariantPayload, ExprTagTest, ExprVariantLit
// and ExprInject. Value is the tagged union for reads and tests, and the
// payload for constructions (nil for void payloads).
type VariantData struct {
	Value   *Expr
	Variant string
	Index   int
}

func (VariantData) exprData() {}

// StructLitData holds data for ExprStructLit; fields are in declaration order.
type StructLitData struct {
	Fields []StructFieldInit
}

func (StructLitData) exprData() {}

// StructFieldInit represents a field initializer in a struct literal.
type StructFieldInit struct {
	Name  string
	Value *Expr
	Span  source.Span
}

// IndexData holds data for ExprIndex.
type IndexData struct {
	Object *Expr
	Index  *Expr
}

func (IndexData) exprData() {}

// OperandData holds data for ExprDeref and ExprAddrOf.
type OperandData struct {
	Operand *Expr
}

func (OperandData) exprData() {}
