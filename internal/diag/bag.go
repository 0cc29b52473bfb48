package diag

import (
	"fmt"
	"sort"
)

type Bag struct {
	items []Diagnostic
	max   uint16
}

func NewBag(max int) *Bag {
	if max <= 0 || max > 0xFFFF {
		max = 0xFFFF
	}
	return &Bag{
		items: make([]Diagnostic, 0, min(max, 64)),
		max:   uint16(max), //nolint:gosec // clamped above
	}
}

// Add appends d unless the bag is full, in which case it returns false.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= int(b.max) {
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Cap() uint16 {
	return b.max
}

// HasErrors reports whether any diagnostic is an error or worse.
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// ErrorCount returns the number of error-level diagnostics.
func (b *Bag) ErrorCount() int {
	n := 0
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			n++
		}
	}
	return n
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns the bag's backing slice. Callers must not modify it.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// HasCode reports whether a diagnostic with the given code was collected.
func (b *Bag) HasCode(code Code) bool {
	for i := range b.items {
		if b.items[i].Code == code {
			return true
		}
	}
	return false
}

// Merge adds the diagnostics of other, raising the limit to fit them.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	newTotal := len(b.items) + len(other.items)
	if newTotal > int(b.max) && newTotal <= 0xFFFF {
		b.max = uint16(newTotal) //nolint:gosec // checked above
	}
	for _, d := range other.items {
		b.Add(d)
	}
}

// Sort orders diagnostics by position, then by descending severity, then by
// code.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Primary != dj.Primary {
			return di.Primary.Before(dj.Primary)
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}

// Dedup drops diagnostics repeating an earlier code, span and message.
func (b *Bag) Dedup() {
	seen := make(map[string]bool)
	newitems := make([]Diagnostic, 0, len(b.items))
	for _, d := range b.items {
		key := fmt.Sprintf("%s:%s:%s", d.Code.ID(), d.Primary.String(), d.Message)
		if seen[key] {
			continue
		}
		seen[key] = true
		newitems = append(newitems, d)
	}
	b.items = newitems
}
