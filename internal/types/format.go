package types

import (
	"strings"
)

// Format renders a type the way diagnostics print it.
func (in *Interner) Format(id TypeID) string {
	var sb strings.Builder
	in.format(&sb, id)
	return sb.String()
}

// FormatList renders a comma separated list of types.
func (in *Interner) FormatList(ids []TypeID) string {
	var sb strings.Builder
	for i, id := range ids {
		if i > 0 {
			sb.WriteString(", ")
		}
		in.format(&sb, id)
	}
	return sb.String()
}

func (in *Interner) format(sb *strings.Builder, id TypeID) {
	tt, ok := in.Lookup(id)
	if !ok {
		sb.WriteString("<invalid>")
		return
	}
	switch tt.Kind {
	case KindGeneric:
		sb.WriteString(tt.Name)
	case KindPointer:
		sb.WriteByte('*')
		in.format(sb, tt.Elem)
	case KindReference:
		sb.WriteByte('&')
		in.format(sb, tt.Elem)
	case KindAmbiguousInt:
		sb.WriteString("?int")
	case KindAmbiguousFloat:
		sb.WriteString("?float")
	case KindFn:
		sb.WriteString("fn(")
		sb.WriteString(in.FormatList(tt.Args))
		sb.WriteString(") ")
		in.format(sb, tt.Elem)
	case KindStruct:
		tmpl := in.Template(tt.Template)
		if tmpl == nil {
			sb.WriteString("<template?>")
			return
		}
		if tmpl.Builtin == BuiltinUnion && len(tt.Args) == 2 {
			in.format(sb, tt.Args[0])
			sb.WriteByte('|')
			in.format(sb, tt.Args[1])
			return
		}
		sb.WriteString(tmpl.Name)
		if len(tt.Args) > 0 {
			sb.WriteByte('[')
			sb.WriteString(in.FormatList(tt.Args))
			sb.WriteByte(']')
		}
	default:
		sb.WriteString(tt.Kind.String())
	}
}
