// Package narrow tracks which variants of a tagged union are statically
// possible for each addressable path at a program point.
//
// A path key identifies an lvalue: a variable followed by field names and
// constant integer indexes ("L3.next.value", "G1[2]"). Sets combine the way
// conditions do:
//
//	a && b   UnionsIntersection  every key of both, possibilities intersected
//	a || b   IntersectingUnion   shared keys only, possibilities united
//	not a    InnerComplement     possibilities complemented per key
//
// The Tracker keeps a stack of frames alongside the analyzer's lexical
// scopes. Clearing a path inside a branch leaves a tombstone that reaches the
// enclosing frame when the branch is popped, because the branch may have run.
package narrow
