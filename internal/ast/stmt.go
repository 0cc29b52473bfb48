package ast

import "kestrel/internal/source"

// Stmt is an unchecked instruction.
//
//	let:      let Name[: Type] [= Value]
//	assign:   Target Op Value  (Op is one of = += -= *= /= ++=)
//	expr:     Value
//	if/elif:  Value is the condition, Body the branch
//	else:     Body
//	while:    Value is the condition
//	for:      for Name in Value
//	return:   return [Value]
//	block:    Body
type Stmt struct {
	Kind   StmtKind    `yaml:"kind" msgpack:"kind"`
	Name   string      `yaml:"name,omitempty" msgpack:"name,omitempty"`
	Type   *TypeExpr   `yaml:"type,omitempty" msgpack:"type,omitempty"`
	Op     string      `yaml:"op,omitempty" msgpack:"op,omitempty"`
	Target *Expr       `yaml:"target,omitempty" msgpack:"target,omitempty"`
	Value  *Expr       `yaml:"value,omitempty" msgpack:"value,omitempty"`
	Body   []*Stmt     `yaml:"body,omitempty" msgpack:"body,omitempty"`
	Span   source.Span `yaml:"span,omitempty" msgpack:"span,omitempty"`
}
