package diag

import (
	"fmt"
)

type Code uint16

const (
	// Placeholder until a diagnostic gets its own code
	UnknownCode Code = 0

	// Lookup errors
	SemaInfo            Code = 3000
	SemaUnknownType     Code = 3001
	SemaUnknownFunction Code = 3002
	SemaUnknownImpl     Code = 3003
	SemaUnknownUnit     Code = 3004
	SemaUnknownVariable Code = 3005
	SemaUnknownField    Code = 3006
	SemaUnknownVariant  Code = 3007
	SemaUnknownNamedArg Code = 3008

	// Ambiguity errors
	SemaAmbiguousType     Code = 3100
	SemaAmbiguousFunction Code = 3101
	SemaAmbiguousImpl     Code = 3102
	SemaAmbiguousVariable Code = 3103

	// Shape errors
	SemaTypeMismatch        Code = 3200
	SemaWrongArgumentTypes  Code = 3201
	SemaMissingField        Code = 3202
	SemaExtraField          Code = 3203
	SemaDuplicateField      Code = 3204
	SemaDuplicateVariant    Code = 3205
	SemaDuplicateSymbol     Code = 3206
	SemaGenericNameReserved Code = 3207
	SemaMissingReturn       Code = 3208
	SemaLoopControlOutside  Code = 3209
	SemaElseWithoutIf       Code = 3210
	SemaNotMutable          Code = 3211
	SemaPrivateAccess       Code = 3212
	SemaEnumNotNarrowed     Code = 3213
	SemaEnumCannotBe        Code = 3214
	SemaReferenceNotParam   Code = 3215
	SemaGenericArgCount     Code = 3216
	SemaNotCallable         Code = 3217
	SemaMissingArgument     Code = 3218
	SemaInvalidOperands     Code = 3219
	SemaNotAddressable      Code = 3220
	SemaVoidValue           Code = 3221

	// Escape errors
	SemaGenericEscape Code = 3300
	MonoGenericEscape Code = 3301

	// Project errors
	ProjInfo          Code = 5000
	ProjUnknownUnit   Code = 5001
	ProjDuplicateUnit Code = 5002

	ProjRedundantImport Code = 5100

	// Monomorphization fatals
	MonoInfo            Code = 6000
	MonoNoMain          Code = 6001
	MonoMultipleMain    Code = 6002
	MonoRecursiveStruct Code = 6003
	MonoInstanceLimit   Code = 6004

	InternalCompilerError Code = 9000
)

var codeDescription = map[Code]string{
	UnknownCode:             "Unknown error",
	SemaInfo:                "Semantic information",
	SemaUnknownType:         "Unknown type",
	SemaUnknownFunction:     "Unknown function",
	SemaUnknownImpl:         "Unknown trait implementation",
	SemaUnknownUnit:         "Unknown unit or alias",
	SemaUnknownVariable:     "Unknown variable",
	SemaUnknownField:        "Unknown field",
	SemaUnknownVariant:      "Unknown enum variant",
	SemaUnknownNamedArg:     "Unknown named argument",
	SemaAmbiguousType:       "Ambiguous type",
	SemaAmbiguousFunction:   "Ambiguous function",
	SemaAmbiguousImpl:       "Ambiguous trait implementation",
	SemaAmbiguousVariable:   "Ambiguous variable",
	SemaTypeMismatch:        "Type mismatch",
	SemaWrongArgumentTypes:  "No overload accepts these argument types",
	SemaMissingField:        "Missing struct field",
	SemaExtraField:          "Extra struct field",
	SemaDuplicateField:      "Duplicate field",
	SemaDuplicateVariant:    "Duplicate variant",
	SemaDuplicateSymbol:     "Duplicate symbol",
	SemaGenericNameReserved: "Single-letter names are reserved for generics",
	SemaMissingReturn:       "Function does not always return",
	SemaLoopControlOutside:  "break/continue outside of a loop",
	SemaElseWithoutIf:       "elif/else without a preceding if",
	SemaNotMutable:          "Path is not mutable",
	SemaPrivateAccess:       "Private field access",
	SemaEnumNotNarrowed:     "Enum access is not statically narrowed",
	SemaEnumCannotBe:        "Enum can not be this variant here",
	SemaReferenceNotParam:   "References are only allowed as parameters",
	SemaGenericArgCount:     "Wrong number of generic arguments",
	SemaNotCallable:         "Value is not callable",
	SemaMissingArgument:     "Missing argument",
	SemaInvalidOperands:     "Invalid operands",
	SemaNotAddressable:      "Expression is not addressable",
	SemaVoidValue:           "void used as a value",
	SemaGenericEscape:       "Unbound generic escapes its function",
	MonoGenericEscape:       "Generic left unresolved after monomorphization",
	ProjInfo:                "Project information",
	ProjUnknownUnit:         "Import of an unknown unit",
	ProjDuplicateUnit:       "Duplicate unit name",
	ProjRedundantImport:     "Redundant import",
	MonoInfo:                "Monomorphization information",
	MonoNoMain:              "No entry function",
	MonoMultipleMain:        "More than one entry function",
	MonoRecursiveStruct:     "Recursive struct by value",
	MonoInstanceLimit:       "Too many instantiations",
	InternalCompilerError:   "Internal compiler error",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("MON%04d", ic)
	case ic >= 9000:
		return fmt.Sprintf("ICE%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
