package narrow

import "strings"

type frame struct {
	entries map[string]Entry
	cleared map[string]struct{}
}

func newFrame() frame {
	return frame{entries: make(map[string]Entry), cleared: make(map[string]struct{})}
}

// Tracker is the stack of narrowing frames of one function.
type Tracker struct {
	frames []frame
}

// NewTracker returns a tracker with a single root frame.
func NewTracker() *Tracker {
	return &Tracker{frames: []frame{newFrame()}}
}

// Push opens a frame for a branch or loop body.
func (t *Tracker) Push() {
	t.frames = append(t.frames, newFrame())
}

// Pop closes the innermost frame. Narrowing learned inside is dropped, while
// paths cleared inside stay cleared in the enclosing frame.
func (t *Tracker) Pop() {
	if len(t.frames) <= 1 {
		panic("narrow: pop of the root frame")
	}
	top := t.frames[len(t.frames)-1]
	t.frames = t.frames[:len(t.frames)-1]
	for key := range top.cleared {
		t.Clear(key)
	}
}

// Depth reports the number of open frames, root included.
func (t *Tracker) Depth() int { return len(t.frames) }

// Possible returns the variants currently possible for key. Untracked paths
// may be any of total.
func (t *Tracker) Possible(key string, total []string) []string {
	for i := len(t.frames) - 1; i >= 0; i-- {
		f := t.frames[i]
		if e, ok := f.entries[key]; ok {
			return e.Possible
		}
		if f.clears(key) {
			break
		}
	}
	return total
}

// Apply narrows the innermost frame by s.
func (t *Tracker) Apply(s Set) {
	top := &t.frames[len(t.frames)-1]
	for key, e := range s {
		current := t.Possible(key, e.Total)
		top.entries[key] = Entry{Total: e.Total, Possible: intersect(current, e.Possible)}
	}
}

// Clear forgets everything known about key and the paths below it.
func (t *Tracker) Clear(key string) {
	top := &t.frames[len(t.frames)-1]
	for k := range top.entries {
		if covers(key, k) {
			delete(top.entries, k)
		}
	}
	top.cleared[key] = struct{}{}
}

// Install clears key and records that it holds exactly variant.
func (t *Tracker) Install(key string, total []string, variant string) {
	t.Clear(key)
	top := &t.frames[len(t.frames)-1]
	top.entries[key] = Entry{Total: total, Possible: []string{variant}}
}

func (f frame) clears(key string) bool {
	for k := range f.cleared {
		if covers(k, key) {
			return true
		}
	}
	return false
}

// covers reports whether path key is prefix itself or lies below it.
func covers(prefix, key string) bool {
	if key == prefix {
		return true
	}
	if !strings.HasPrefix(key, prefix) {
		return false
	}
	next := key[len(prefix)]
	return next == '.' || next == '['
}
