package symbols

import (
	"kestrel/internal/types"
)

// TemplateMatch is a template found by name together with its owner.
type TemplateMatch struct {
	ID   types.TemplateID
	Unit UnitID
}

// LookupTemplates finds every visible template called name.
func (t *Table) LookupTemplates(unit UnitID, qualifier, name string) ([]TemplateMatch, bool) {
	units, ok := t.ScopeUnits(unit, qualifier)
	if !ok {
		return nil, false
	}
	name = Normalize(name)
	var out []TemplateMatch
	for _, uid := range units {
		if id, found := t.Unit(uid).Templates[name]; found {
			out = append(out, TemplateMatch{ID: id, Unit: uid})
		}
	}
	return out, true
}

// LookupFns collects the overload set visible under name, in unit order.
func (t *Table) LookupFns(unit UnitID, qualifier, name string) ([]FnID, bool) {
	units, ok := t.ScopeUnits(unit, qualifier)
	if !ok {
		return nil, false
	}
	name = Normalize(name)
	var out []FnID
	for _, uid := range units {
		out = append(out, t.Unit(uid).Fns[name]...)
	}
	return out, true
}

// LookupMacros collects visible macros called name.
func (t *Table) LookupMacros(unit UnitID, qualifier, name string) []FnID {
	units, ok := t.ScopeUnits(unit, qualifier)
	if !ok {
		return nil
	}
	name = Normalize(name)
	var out []FnID
	for _, uid := range units {
		if id, found := t.Unit(uid).Macros[name]; found {
			out = append(out, id)
		}
	}
	return out
}

// LookupGlobals collects visible globals called name.
func (t *Table) LookupGlobals(unit UnitID, qualifier, name string) ([]GlobalID, bool) {
	units, ok := t.ScopeUnits(unit, qualifier)
	if !ok {
		return nil, false
	}
	name = Normalize(name)
	var out []GlobalID
	for _, uid := range units {
		if id, found := t.Unit(uid).Globals[name]; found {
			out = append(out, id)
		}
	}
	return out, true
}

// IsTemplateName reports whether qualifier names a visible template rather
// than a unit; such qualifiers select enum variant constructors.
func (t *Table) IsTemplateName(unit UnitID, qualifier string) bool {
	if qualifier == "" {
		return false
	}
	if _, ok := t.Unit(unit).Aliases[Normalize(qualifier)]; ok {
		return false
	}
	if _, ok := t.byName[Normalize(qualifier)]; ok {
		return false
	}
	matches, _ := t.LookupTemplates(unit, "", qualifier)
	return len(matches) > 0
}
