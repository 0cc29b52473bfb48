package ast

import "kestrel/internal/source"

// Expr is an unchecked expression.
//
//	int/float/str/char: Text is the literal text
//	bool:     Bool
//	ident:    [Qualifier.]Text
//	call:     [Qualifier.]Text(Args...); Qualifier may name a unit, an alias
//	          or an enum template (variant constructor)
//	field:    X.Text
//	index:    X[Y]
//	range:    X[Y:Z]
//	binary:   X Text Y
//	unary:    Text X  (Text is "-" or "not")
//	is:       X is Text
//	struct:   Type{Args...} with named Args
//	current:  the payload of X's statically known variant
//	addr:     &X
//	deref:    *X
type Expr struct {
	Kind      ExprKind    `yaml:"kind" msgpack:"kind"`
	Text      string      `yaml:"text,omitempty" msgpack:"text,omitempty"`
	Bool      bool        `yaml:"bool,omitempty" msgpack:"bool,omitempty"`
	Qualifier string      `yaml:"qual,omitempty" msgpack:"qual,omitempty"`
	Type      *TypeExpr   `yaml:"type,omitempty" msgpack:"type,omitempty"`
	X         *Expr       `yaml:"x,omitempty" msgpack:"x,omitempty"`
	Y         *Expr       `yaml:"y,omitempty" msgpack:"y,omitempty"`
	Z         *Expr       `yaml:"z,omitempty" msgpack:"z,omitempty"`
	Args      []*Arg      `yaml:"args,omitempty" msgpack:"args,omitempty"`
	Span      source.Span `yaml:"span,omitempty" msgpack:"span,omitempty"`
}

// Arg is a call argument or a struct literal field. Name is empty for
// positional call arguments.
type Arg struct {
	Name  string      `yaml:"name,omitempty" msgpack:"name,omitempty"`
	Value *Expr       `yaml:"value" msgpack:"value"`
	Span  source.Span `yaml:"span,omitempty" msgpack:"span,omitempty"`
}
