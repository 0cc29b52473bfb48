// Package diag defines the diagnostic model shared by all kestrel phases.
//
// # Purpose
//
//   - Provide deterministic data structures that capture findings produced by
//     the symbol table builder, the analyzer and the monomorphizer.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to concrete storage or formatting layers.
//
// # Error classes
//
// Recoverable findings (lookup, ambiguity, shape and escape errors) go through
// a Reporter so that a single run collects as many of them as possible. The
// usual shape is
//
//	diag.ReportError(r, diag.SemaUnknownType, span, msg).Emit()
//
// and, for findings that carry context lines (rejected overloads, candidate
// lists), the builder's WithNote / WithNotes before Emit.
//
// Structural failures that invalidate everything downstream (unknown unit in
// an import, missing or duplicated entry function, recursive value types) are
// returned as *FatalError values.
//
// Violations of internal invariants call CompilerError, which panics with an
// *InternalError; the driver recovers it with RecoverInternal.
//
// # Scope
//
// Package diag does not perform any formatting beyond the single-line short
// form. Rendering lives in internal/diagfmt.
package diag
