package symbols

import (
	"fmt"

	"fortio.org/safecast"

	"kestrel/internal/diag"
	"kestrel/internal/source"
	"kestrel/internal/types"
)

// Table aggregates every unit's symbols plus the shared arenas. It is built
// once by Build and read-only afterwards, except for inferred global types.
type Table struct {
	Types   *types.Interner
	Fns     *Fns
	Globals *Globals
	Impls   *ImplRegistry
	// Core is the implicitly imported unit, BuiltinUnit when absent.
	Core   UnitID
	units  []Unit
	byName map[string]UnitID
}

// NewTable builds an empty table holding only the builtin pseudo-unit.
func NewTable(in *types.Interner) *Table {
	if in == nil {
		in = types.NewInterner()
	}
	t := &Table{
		Types:   in,
		Fns:     NewFns(0),
		Globals: NewGlobals(0),
		Impls:   newImplRegistry(),
		byName:  make(map[string]UnitID),
	}
	builtin := newUnit(BuiltinUnit, "")
	for _, name := range in.BuiltinTemplateNames() {
		id, _ := in.BuiltinTemplate(name)
		builtin.Templates[name] = id
		builtin.templateOrder = append(builtin.templateOrder, id)
	}
	t.units = append(t.units, builtin)
	return t
}

func (t *Table) addUnit(name string, span source.Span) UnitID {
	value, err := safecast.Conv[uint32](len(t.units))
	if err != nil {
		panic(fmt.Errorf("units arena overflow: %w", err))
	}
	id := UnitID(value)
	u := newUnit(id, name)
	u.Span = span
	t.units = append(t.units, u)
	t.byName[name] = id
	return id
}

// Unit returns the unit record or nil.
func (t *Table) Unit(id UnitID) *Unit {
	if t == nil || int(id) >= len(t.units) {
		return nil
	}
	return &t.units[id]
}

// UnitByName finds a user unit by name.
func (t *Table) UnitByName(name string) (UnitID, bool) {
	id, ok := t.byName[Normalize(name)]
	return id, ok
}

// Units lists user units in declaration order; the builtin pseudo-unit is
// not included.
func (t *Table) Units() []UnitID {
	out := make([]UnitID, 0, len(t.units)-1)
	for i := 1; i < len(t.units); i++ {
		out = append(out, UnitID(i)) //nolint:gosec // bounded by addUnit
	}
	return out
}

// UnitName returns the printable unit name.
func (t *Table) UnitName(id UnitID) string {
	if id == BuiltinUnit {
		return "<builtin>"
	}
	if u := t.Unit(id); u != nil {
		return u.Name
	}
	return fmt.Sprintf("<unit %d>", id)
}

// Fn returns the function record or nil.
func (t *Table) Fn(id FnID) *Fn { return t.Fns.Get(id) }

// Global returns the global record or nil.
func (t *Table) Global(id GlobalID) *Global { return t.Globals.Get(id) }

// FormatFn renders a signature for diagnostics, e.g. "core.eq(str, str) bool".
func (t *Table) FormatFn(id FnID) string {
	fn := t.Fn(id)
	if fn == nil {
		return "<fn?>"
	}
	return fmt.Sprintf("%s.%s(%s) %s", t.UnitName(fn.Unit), fn.Name,
		t.Types.FormatList(fn.ParamTypes()), t.Types.Format(fn.Return))
}

// ScopeUnits returns the units searched for a lookup from unit under the
// given qualifier:
//
//	""              the unit itself, its plain imports and the builtin unit
//	alias           only the aliased unit
//	unit name       only that unit
//
// ok is false when the qualifier names neither an alias nor a unit.
func (t *Table) ScopeUnits(unit UnitID, qualifier string) (units []UnitID, ok bool) {
	u := t.Unit(unit)
	if u == nil {
		return nil, false
	}
	if qualifier == "" {
		out := make([]UnitID, 0, len(u.Imports)+2)
		out = append(out, unit)
		for _, id := range u.Imports {
			if id != unit {
				out = append(out, id)
			}
		}
		return append(out, BuiltinUnit), true
	}
	qualifier = Normalize(qualifier)
	if id, found := u.Aliases[qualifier]; found {
		return []UnitID{id}, true
	}
	if id, found := t.byName[qualifier]; found {
		return []UnitID{id}, true
	}
	return nil, false
}

// reportUnknownUnit emits the lookup error for a bad qualifier.
func reportUnknownUnit(rep diag.Reporter, span source.Span, qualifier string) {
	if rep == nil {
		return
	}
	diag.ReportError(rep, diag.SemaUnknownUnit, span, fmt.Sprintf("unknown unit or alias %s", qualifier)).Emit()
}
