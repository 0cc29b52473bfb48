// Package testkit holds checks shared by tests of several packages.
package testkit

import (
	"fmt"
	"unicode/utf8"

	"fortio.org/safecast"

	"kestrel/internal/ast"
	"kestrel/internal/source"
)

// CheckSpanInvariants verifies that every positioned span of u belongs to
// f and fits on an existing line:
//  1. span.File is f.ID
//  2. Line is within the document
//  3. Col <= EndCol <= rune count of the line + 1
//
// Spans without a position are skipped.
func CheckSpanInvariants(u *ast.Unit, f *source.File) error {
	if u == nil || f == nil {
		return fmt.Errorf("nil unit or file")
	}
	lines, err := safecast.Conv[uint32](len(f.LineIdx) + 1)
	if err != nil {
		return fmt.Errorf("line count overflow: %w", err)
	}
	var first error
	check := func(what string, sp source.Span) {
		if first != nil || !sp.IsValid() {
			return
		}
		switch {
		case sp.File != f.ID:
			first = fmt.Errorf("%s: span %v belongs to file %d, want %d", what, sp, sp.File, f.ID)
		case sp.Line > lines:
			first = fmt.Errorf("%s: line %d beyond %d lines", what, sp.Line, lines)
		case sp.EndCol < sp.Col:
			first = fmt.Errorf("%s: span %v ends before it starts", what, sp)
		default:
			width := utf8.RuneCountInString(f.GetLine(sp.Line))
			if int(sp.EndCol) > width+1 {
				first = fmt.Errorf("%s: span %v past the end of line %d (%d runes)", what, sp, sp.Line, width)
			}
		}
	}

	check("unit "+u.Name, u.Span)
	for _, s := range u.Structs {
		check("struct "+s.Name, s.Span)
		for _, fld := range s.Fields {
			check("field "+fld.Name, fld.Span)
		}
	}
	for _, fn := range u.Fns {
		check("fn "+fn.Name, fn.Span)
		for _, p := range fn.Params {
			check("param "+p.Name, p.Span)
		}
		ast.WalkStmts(fn.Body, func(s *ast.Stmt) {
			check(s.Kind.String(), s.Span)
		}, func(e *ast.Expr) {
			check(e.Kind.String(), e.Span)
		})
	}
	for _, g := range u.Globals {
		check("global "+g.Name, g.Span)
	}
	return first
}
