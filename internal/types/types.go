package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// TemplateID identifies a struct/enum template.
type TemplateID uint32

// NoTemplateID marks the absence of a template.
const NoTemplateID TemplateID = 0

// UnitID identifies the compilation unit that owns a template.
// BuiltinUnit is the pseudo-unit holding the compiler's own templates.
type UnitID uint32

const BuiltinUnit UnitID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindGeneric
	KindPointer
	KindReference
	KindAmbiguousInt
	KindAmbiguousFloat
	KindFn
	KindStruct
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindGeneric:
		return "generic"
	case KindPointer:
		return "pointer"
	case KindReference:
		return "reference"
	case KindAmbiguousInt:
		return "ambiguous-int"
	case KindAmbiguousFloat:
		return "ambiguous-float"
	case KindFn:
		return "fn"
	case KindStruct:
		return "struct"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Type is a compact descriptor for any supported type.
//
//	generic:   Name
//	pointer:   Elem
//	reference: Elem
//	fn:        Elem (return), Args (params)
//	struct:    Template, Args (generic arguments)
type Type struct {
	Kind     Kind
	Name     string
	Elem     TypeID
	Template TemplateID
	Args     []TypeID
}

// Visibility controls who can read and write a struct field.
type Visibility uint8

const (
	VisPublic Visibility = iota
	// VisGetOnly fields are readable everywhere and writable in the owning unit.
	VisGetOnly
	// VisPrivate fields are only accessible from the owning unit.
	VisPrivate
)

func (v Visibility) String() string {
	switch v {
	case VisGetOnly:
		return "get"
	case VisPrivate:
		return "private"
	default:
		return "public"
	}
}

// Field is a named member of a template; for enums it is a variant and Type
// is the variant's payload.
type Field struct {
	Name string
	Type TypeID
	Vis  Visibility
}

// BuiltinClass tags templates that the compiler implements itself.
type BuiltinClass uint8

const (
	NotBuiltin BuiltinClass = iota
	BuiltinInt
	BuiltinFloat
	BuiltinBool
	BuiltinChar
	BuiltinStr
	BuiltinVoid
	BuiltinUnion
)
