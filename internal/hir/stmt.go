package hir

import (
	"kestrel/internal/source"
	"kestrel/internal/types"
)

// StmtKind enumerates HIR statement kinds.
type StmtKind uint8

const (
	// StmtLet represents variable declaration (let x = ...).
	StmtLet StmtKind = iota
	// StmtExpr represents an expression statement.
	StmtExpr
	// StmtAssign represents assignment (lhs = rhs, lhs += rhs on primitives).
	StmtAssign
	// StmtReturn represents return statement.
	StmtReturn
	// StmtBreak represents break statement.
	StmtBreak
	// StmtContinue represents continue statement.
	StmtContinue
	// StmtIf represents if/else; elif chains nest in Else.
	StmtIf
	// StmtWhile represents while loop.
	StmtWhile
	// StmtFor represents iteration driven by the `next` implementation.
	StmtFor
	// StmtBlock represents a nested block.
	StmtBlock
)

// String returns a human-readable name for the statement kind.
func (k StmtKind) String() string {
	switch k {
	case StmtLet:
		return "Let"
	case StmtExpr:
		return "Expr"
	case StmtAssign:
		return "Assign"
	case StmtReturn:
		return "Return"
	case StmtBreak:
		return "Break"
	case StmtContinue:
		return "Continue"
	case StmtIf:
		return "If"
	case StmtWhile:
		return "While"
	case StmtFor:
		return "For"
	case StmtBlock:
		return "Block"
	default:
		return "Unknown"
	}
}

// Stmt represents an HIR statement.
type Stmt struct {
	Kind StmtKind
	Span source.Span
	Data StmtData // Kind-specific payload
}

// StmtData is the interface for statement-specific data.
type StmtData interface {
	stmtData()
}

// Block is a sequence of statements.
type Block struct {
	Stmts []*Stmt
	Span  source.Span
}

// LetData holds data for StmtLet. Value may be nil.
type LetData struct {
	Local LocalID
	Name  string
	Type  types.TypeID
	Value *Expr
}

func (LetData) stmtData() {}

// ExprStmtData holds data for StmtExpr.
type ExprStmtData struct {
	Expr *Expr
}

func (ExprStmtData) stmtData() {}

// AssignData holds data for StmtAssign.
type AssignData struct {
	Target *Expr
	Op     string // "=", "+=", "-=", "*=", "/="
	Value  *Expr
}

func (AssignData) stmtData() {}

// ReturnData holds data for StmtReturn. Value is nil in void functions.
type ReturnData struct {
	Value *Expr
}

func (ReturnData) stmtData() {}

// IfData holds data for StmtIf. Else may be nil.
type IfData struct {
	Cond *Expr
	Then *Block
	Else *Block
}

func (IfData) stmtData() {}

// WhileData holds data for StmtWhile.
type WhileData struct {
	Cond *Expr
	Body *Block
}

func (WhileData) stmtData() {}

// ForData holds data for StmtFor: Next is the call advancing the iterator,
// returning Elem|void; the loop ends on void.
type ForData struct {
	Local LocalID
	Name  string
	Elem  types.TypeID
	Next  *Expr
	Body  *Block
}

func (ForData) stmtData() {}

// BlockData holds data for StmtBlock.
type BlockData struct {
	Block *Block
}

func (BlockData) stmtData() {}
