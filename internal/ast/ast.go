package ast

import "kestrel/internal/source"

// Forest is the parser output for a whole program: one entry per unit.
type Forest struct {
	Units []*Unit `yaml:"units" msgpack:"units"`
}

// Unit is one compilation unit.
type Unit struct {
	Name    string    `yaml:"name" msgpack:"name"`
	Uses    []*Use    `yaml:"uses,omitempty" msgpack:"uses,omitempty"`
	Structs []*Struct `yaml:"structs,omitempty" msgpack:"structs,omitempty"`
	Fns     []*Fn     `yaml:"fns,omitempty" msgpack:"fns,omitempty"`
	Globals []*Global `yaml:"globals,omitempty" msgpack:"globals,omitempty"`
	// File is assigned when the unit is loaded, it is not serialized.
	File source.FileID `yaml:"-" msgpack:"-"`
	Span source.Span   `yaml:"span,omitempty" msgpack:"span,omitempty"`
}

// Use imports another unit. An empty Alias is a plain import.
type Use struct {
	Unit  string      `yaml:"unit" msgpack:"unit"`
	Alias string      `yaml:"alias,omitempty" msgpack:"alias,omitempty"`
	Span  source.Span `yaml:"span,omitempty" msgpack:"span,omitempty"`
}

type Struct struct {
	Name     string      `yaml:"name" msgpack:"name"`
	Generics []string    `yaml:"generics,omitempty" msgpack:"generics,omitempty"`
	Fields   []*Field    `yaml:"fields,omitempty" msgpack:"fields,omitempty"`
	IsEnum   bool        `yaml:"enum,omitempty" msgpack:"enum,omitempty"`
	Span     source.Span `yaml:"span,omitempty" msgpack:"span,omitempty"`
}

type Field struct {
	Name       string      `yaml:"name" msgpack:"name"`
	Type       *TypeExpr   `yaml:"type" msgpack:"type"`
	Visibility Visibility  `yaml:"vis,omitempty" msgpack:"vis,omitempty"`
	Span       source.Span `yaml:"span,omitempty" msgpack:"span,omitempty"`
}

// Fn is a function of any mode. Return == nil means void.
type Fn struct {
	Name   string      `yaml:"name" msgpack:"name"`
	Mode   FnMode      `yaml:"mode,omitempty" msgpack:"mode,omitempty"`
	Params []*Param    `yaml:"params,omitempty" msgpack:"params,omitempty"`
	Return *TypeExpr   `yaml:"return,omitempty" msgpack:"return,omitempty"`
	Body   []*Stmt     `yaml:"body,omitempty" msgpack:"body,omitempty"`
	Target string      `yaml:"target,omitempty" msgpack:"target,omitempty"`
	Span   source.Span `yaml:"span,omitempty" msgpack:"span,omitempty"`
}

type Param struct {
	Name    string      `yaml:"name" msgpack:"name"`
	Type    *TypeExpr   `yaml:"type" msgpack:"type"`
	Default *Expr       `yaml:"default,omitempty" msgpack:"default,omitempty"`
	Span    source.Span `yaml:"span,omitempty" msgpack:"span,omitempty"`
}

type Global struct {
	Name    string      `yaml:"name" msgpack:"name"`
	Type    *TypeExpr   `yaml:"type,omitempty" msgpack:"type,omitempty"`
	Value   *Expr       `yaml:"value,omitempty" msgpack:"value,omitempty"`
	Mutable bool        `yaml:"mut,omitempty" msgpack:"mut,omitempty"`
	Span    source.Span `yaml:"span,omitempty" msgpack:"span,omitempty"`
}

// TypeExpr is a syntactic type reference.
//
//	name:      [Qualifier.]Name[Args...]
//	pointer:   *Elem
//	reference: &Elem
//	fn:        fn(Params...) Return
//	union:     Left|Right
type TypeExpr struct {
	Kind      TypeKind    `yaml:"kind,omitempty" msgpack:"kind,omitempty"`
	Qualifier string      `yaml:"qual,omitempty" msgpack:"qual,omitempty"`
	Name      string      `yaml:"name,omitempty" msgpack:"name,omitempty"`
	Args      []*TypeExpr `yaml:"args,omitempty" msgpack:"args,omitempty"`
	Elem      *TypeExpr   `yaml:"elem,omitempty" msgpack:"elem,omitempty"`
	Params    []*TypeExpr `yaml:"params,omitempty" msgpack:"params,omitempty"`
	Return    *TypeExpr   `yaml:"return,omitempty" msgpack:"return,omitempty"`
	Left      *TypeExpr   `yaml:"left,omitempty" msgpack:"left,omitempty"`
	Right     *TypeExpr   `yaml:"right,omitempty" msgpack:"right,omitempty"`
	Span      source.Span `yaml:"span,omitempty" msgpack:"span,omitempty"`
}
