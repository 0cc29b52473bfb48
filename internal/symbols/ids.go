package symbols

import "kestrel/internal/types"

// UnitID identifies a compilation unit. Unit 0 is the builtin pseudo-unit
// that owns the compiler's own templates and is visible everywhere.
type UnitID = types.UnitID

const BuiltinUnit = types.BuiltinUnit

// FnID identifies a function in the table arena.
type FnID uint32

// GlobalID identifies a global variable in the table arena.
type GlobalID uint32

const (
	NoFnID     FnID     = 0
	NoGlobalID GlobalID = 0
)

// IsValid reports whether the ID refers to an allocated function.
func (id FnID) IsValid() bool { return id != NoFnID }

// IsValid reports whether the ID refers to an allocated global.
func (id GlobalID) IsValid() bool { return id != NoGlobalID }
