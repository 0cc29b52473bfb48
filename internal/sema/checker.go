package sema

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/hir"
	"kestrel/internal/narrow"
	"kestrel/internal/source"
	"kestrel/internal/symbols"
	"kestrel/internal/types"
)

// maxMacroDepth stops runaway macro expansion.
const maxMacroDepth = 64

// typeChecker analyzes one function body, one global initializer or one
// default argument. Shared state lives in program.
type typeChecker struct {
	prog     *program
	tab      *symbols.Table
	types    *types.Interner
	resolver *Resolver
	reporter diag.Reporter
	unit     symbols.UnitID

	fn       *hir.Func
	sym      *symbols.Fn
	generics []string // generic names of the enclosing signature

	scopes     []map[string]hir.LocalID
	narrow     *narrow.Tracker
	loopDepth  int
	macroDepth int
}

func (p *program) newChecker(unit symbols.UnitID) *typeChecker {
	return &typeChecker{
		prog:     p,
		tab:      p.tab,
		types:    p.tab.Types,
		resolver: p.resolver,
		reporter: p.reporter,
		unit:     unit,
		fn:       &hir.Func{Locals: make([]hir.Local, 1)},
		scopes:   []map[string]hir.LocalID{{}},
		narrow:   narrow.NewTracker(),
	}
}

func (tc *typeChecker) report(code diag.Code, span source.Span, format string, args ...any) {
	if tc.reporter == nil {
		return
	}
	diag.ReportError(tc.reporter, code, span, fmt.Sprintf(format, args...)).Emit()
}

func (tc *typeChecker) typeLabel(id types.TypeID) string {
	if id == types.NoTypeID {
		return "_"
	}
	return tc.types.Format(id)
}

// withReporter runs f with diagnostics redirected to rep.
func (tc *typeChecker) withReporter(rep diag.Reporter, f func()) {
	saved := tc.reporter
	tc.reporter = rep
	defer func() { tc.reporter = saved }()
	f()
}

// countingReporter swallows diagnostics of tentative checks, remembering only
// whether there were any.
type countingReporter struct {
	errors int
}

func (r *countingReporter) Report(_ diag.Code, sev diag.Severity, _ source.Span, _ string, _ []diag.Note, _ []diag.Fix) {
	if sev >= diag.SevError {
		r.errors++
	}
}

// Scopes -----------------------------------------------------------------------

func (tc *typeChecker) pushScope() {
	tc.scopes = append(tc.scopes, map[string]hir.LocalID{})
	tc.narrow.Push()
}

func (tc *typeChecker) popScope() {
	tc.scopes = tc.scopes[:len(tc.scopes)-1]
	tc.narrow.Pop()
}

func (tc *typeChecker) declareLocal(name string, ty types.TypeID, param bool, span source.Span) hir.LocalID {
	value, err := safecast.Conv[uint32](len(tc.fn.Locals))
	if err != nil {
		panic(fmt.Errorf("locals overflow: %w", err))
	}
	id := hir.LocalID(value)
	tc.fn.Locals = append(tc.fn.Locals, hir.Local{Name: name, Type: ty, Param: param, Span: span})
	tc.scopes[len(tc.scopes)-1][name] = id
	return id
}

func (tc *typeChecker) lookupLocal(name string) (hir.LocalID, bool) {
	for i := len(tc.scopes) - 1; i >= 0; i-- {
		if id, ok := tc.scopes[i][name]; ok {
			return id, true
		}
	}
	return hir.NoLocalID, false
}

// Signature generics -------------------------------------------------------------

// checkEscape reports generics in ty that the enclosing signature does not
// bind; they would have no value after monomorphization.
func (tc *typeChecker) checkEscape(ty types.TypeID, span source.Span, what string) bool {
	for _, g := range tc.types.GenericNames(ty) {
		if !slices.Contains(tc.generics, g) {
			tc.report(diag.SemaGenericEscape, span, "generic %s of %s is not bound by the enclosing signature", g, what)
			return false
		}
	}
	return true
}

// resolveType resolves a syntactic type in the checker's unit.
func (tc *typeChecker) resolveType(te *ast.TypeExpr) types.TypeID {
	return tc.tab.ResolveType(te, tc.unit, tc.reporter)
}

func (tc *typeChecker) void() types.TypeID { return tc.types.Builtins().Void }
func (tc *typeChecker) boolT() types.TypeID {
	return tc.types.Builtins().Bool
}
