package sema

import "kestrel/internal/hir"

type returnStatus uint8

const (
	returnOpen returnStatus = iota
	returnClosed
)

// returnStatus reports whether every path through b ends in a return. Only
// `while true` loops count as never falling through.
func (tc *typeChecker) returnStatus(b *hir.Block) returnStatus {
	if b == nil {
		return returnOpen
	}
	for _, s := range b.Stmts {
		if tc.stmtReturns(s) == returnClosed {
			return returnClosed
		}
	}
	return returnOpen
}

func (tc *typeChecker) stmtReturns(s *hir.Stmt) returnStatus {
	switch d := s.Data.(type) {
	case hir.ReturnData:
		return returnClosed
	case hir.BlockData:
		return tc.returnStatus(d.Block)
	case hir.IfData:
		if d.Else == nil {
			return returnOpen
		}
		if tc.returnStatus(d.Then) == returnClosed && tc.returnStatus(d.Else) == returnClosed {
			return returnClosed
		}
	case hir.WhileData:
		if isTrueLiteral(d.Cond) && !breaks(d.Body) {
			return returnClosed
		}
	}
	return returnOpen
}

func isTrueLiteral(e *hir.Expr) bool {
	lit, ok := e.Data.(hir.LiteralData)
	return ok && lit.Kind == hir.LiteralBool && lit.Bool
}

// breaks reports a break that leaves the loop owning b.
func breaks(b *hir.Block) bool {
	if b == nil {
		return false
	}
	for _, s := range b.Stmts {
		switch d := s.Data.(type) {
		case nil:
			if s.Kind == hir.StmtBreak {
				return true
			}
		case hir.BlockData:
			if breaks(d.Block) {
				return true
			}
		case hir.IfData:
			if breaks(d.Then) || breaks(d.Else) {
				return true
			}
		}
	}
	return false
}

// exits reports whether control never falls out of the end of b: every
// path returns, breaks or continues.
func exits(b *hir.Block) bool {
	if b == nil {
		return false
	}
	for _, s := range b.Stmts {
		switch d := s.Data.(type) {
		case hir.ReturnData:
			return true
		case nil:
			if s.Kind == hir.StmtBreak || s.Kind == hir.StmtContinue {
				return true
			}
		case hir.BlockData:
			if exits(d.Block) {
				return true
			}
		case hir.IfData:
			if d.Else != nil && exits(d.Then) && exits(d.Else) {
				return true
			}
		case hir.WhileData:
			if isTrueLiteral(d.Cond) && !breaks(d.Body) {
				return true
			}
		}
	}
	return false
}
