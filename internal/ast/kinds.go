package ast

import (
	"fmt"
)

// Kinds are serialized by name so that hand-written YAML forests stay readable.

func kindName[T ~uint8](names []string, k T) string {
	if int(k) < len(names) {
		return names[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

func parseKind[T ~uint8](names []string, what string, text []byte, out *T) error {
	s := string(text)
	for i, n := range names {
		if n == s {
			*out = T(i) //nolint:gosec // len(names) < 256
			return nil
		}
	}
	return fmt.Errorf("unknown %s %q", what, s)
}

// FnMode classifies functions.
type FnMode uint8

const (
	ModeFn FnMode = iota
	// ModeDecl is a named-parameter wrapper forwarding to Target.
	ModeDecl
	// ModeDeclImpl is a dispatchable ModeDecl.
	ModeDeclImpl
	ModeImpl
	ModeTrait
	ModeMacro
)

var fnModeNames = []string{"fn", "decl", "declImpl", "impl", "trait", "macro"}

func (m FnMode) String() string                { return kindName(fnModeNames, m) }
func (m FnMode) MarshalText() ([]byte, error)  { return []byte(m.String()), nil }
func (m *FnMode) UnmarshalText(b []byte) error { return parseKind(fnModeNames, "fn mode", b, m) }

// Callable reports modes that plain overload resolution may pick.
func (m FnMode) Callable() bool { return m != ModeMacro }

// Dispatchable reports modes that trait-implementation resolution searches.
func (m FnMode) Dispatchable() bool {
	return m == ModeImpl || m == ModeDeclImpl || m == ModeTrait
}

// IsDecl reports the named-parameter wrapper modes.
func (m FnMode) IsDecl() bool { return m == ModeDecl || m == ModeDeclImpl }

// Visibility of a struct field.
type Visibility uint8

const (
	VisPublic Visibility = iota
	VisGet
	VisPrivate
)

var visibilityNames = []string{"public", "get", "private"}

func (v Visibility) String() string               { return kindName(visibilityNames, v) }
func (v Visibility) MarshalText() ([]byte, error) { return []byte(v.String()), nil }
func (v *Visibility) UnmarshalText(b []byte) error {
	return parseKind(visibilityNames, "visibility", b, v)
}

// TypeKind discriminates syntactic types.
type TypeKind uint8

const (
	TypeName TypeKind = iota
	TypePointer
	TypeReference
	TypeFn
	TypeUnion
)

var typeKindNames = []string{"name", "pointer", "reference", "fn", "union"}

func (k TypeKind) String() string                { return kindName(typeKindNames, k) }
func (k TypeKind) MarshalText() ([]byte, error)  { return []byte(k.String()), nil }
func (k *TypeKind) UnmarshalText(b []byte) error { return parseKind(typeKindNames, "type kind", b, k) }

// StmtKind discriminates instructions.
type StmtKind uint8

const (
	StmtLet StmtKind = iota
	StmtAssign
	StmtExpr
	StmtIf
	StmtElif
	StmtElse
	StmtWhile
	StmtFor
	StmtReturn
	StmtBreak
	StmtContinue
	StmtBlock
)

var stmtKindNames = []string{
	"let", "assign", "expr", "if", "elif", "else", "while", "for",
	"return", "break", "continue", "block",
}

func (k StmtKind) String() string                { return kindName(stmtKindNames, k) }
func (k StmtKind) MarshalText() ([]byte, error)  { return []byte(k.String()), nil }
func (k *StmtKind) UnmarshalText(b []byte) error { return parseKind(stmtKindNames, "stmt kind", b, k) }

// ExprKind discriminates expressions.
type ExprKind uint8

const (
	ExprInt ExprKind = iota
	ExprFloat
	ExprStr
	ExprBool
	ExprChar
	ExprIdent
	ExprCall
	ExprField
	ExprIndex
	ExprRange
	ExprBinary
	ExprUnary
	ExprIs
	ExprStruct
	// ExprCurrent reads the payload of the statically known variant.
	ExprCurrent
	ExprAddr
	ExprDeref
)

var exprKindNames = []string{
	"int", "float", "str", "bool", "char", "ident", "call", "field", "index",
	"range", "binary", "unary", "is", "struct", "current", "addr", "deref",
}

func (k ExprKind) String() string                { return kindName(exprKindNames, k) }
func (k ExprKind) MarshalText() ([]byte, error)  { return []byte(k.String()), nil }
func (k *ExprKind) UnmarshalText(b []byte) error { return parseKind(exprKindNames, "expr kind", b, k) }
