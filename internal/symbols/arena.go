package symbols

import (
	"fmt"

	"fortio.org/safecast"
)

// Fns stores function signatures in a compact arena.
type Fns struct {
	data []Fn
}

// NewFns creates an arena with optional capacity hint.
func NewFns(capacity uint32) *Fns {
	if capacity == 0 {
		capacity = 64
	}
	return &Fns{
		data: make([]Fn, 1, capacity+1), // index 0 reserved for NoFnID
	}
}

// New allocates a function and returns its ID.
func (s *Fns) New(fn *Fn) FnID {
	if fn == nil {
		panic("symbols.Fns.New: nil fn")
	}
	value, err := safecast.Conv[uint32](len(s.data))
	if err != nil {
		panic(fmt.Errorf("fns arena overflow: %w", err))
	}
	s.data = append(s.data, *fn)
	return FnID(value)
}

// Get returns a function pointer or nil for invalid ID.
func (s *Fns) Get(id FnID) *Fn {
	if !id.IsValid() || int(id) >= len(s.data) {
		return nil
	}
	return &s.data[id]
}

// Len reports number of stored functions excluding sentinel.
func (s *Fns) Len() int { return len(s.data) - 1 }

// IDs lists every allocated id in allocation order.
func (s *Fns) IDs() []FnID {
	out := make([]FnID, 0, s.Len())
	for i := 1; i < len(s.data); i++ {
		out = append(out, FnID(i)) //nolint:gosec // bounded by New
	}
	return out
}

// Globals stores unit-level variables.
type Globals struct {
	data []Global
}

// NewGlobals creates an arena with optional capacity hint.
func NewGlobals(capacity uint32) *Globals {
	if capacity == 0 {
		capacity = 16
	}
	return &Globals{
		data: make([]Global, 1, capacity+1), // index 0 reserved for NoGlobalID
	}
}

// New allocates a global and returns its ID.
func (s *Globals) New(g *Global) GlobalID {
	if g == nil {
		panic("symbols.Globals.New: nil global")
	}
	value, err := safecast.Conv[uint32](len(s.data))
	if err != nil {
		panic(fmt.Errorf("globals arena overflow: %w", err))
	}
	s.data = append(s.data, *g)
	return GlobalID(value)
}

// Get returns a global pointer or nil for invalid ID.
func (s *Globals) Get(id GlobalID) *Global {
	if !id.IsValid() || int(id) >= len(s.data) {
		return nil
	}
	return &s.data[id]
}

// Len reports number of stored globals excluding sentinel.
func (s *Globals) Len() int { return len(s.data) - 1 }

// IDs lists every allocated id in allocation order.
func (s *Globals) IDs() []GlobalID {
	out := make([]GlobalID, 0, s.Len())
	for i := 1; i < len(s.data); i++ {
		out = append(out, GlobalID(i)) //nolint:gosec // bounded by New
	}
	return out
}
