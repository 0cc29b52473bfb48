package trace

import (
	"sync/atomic"
	"time"
)

var spanSeq atomic.Uint64

// Span is an open region of work. A nil *Span is valid and does nothing,
// which is what Begin returns when the tracer filters the scope out.
type Span struct {
	tracer   Tracer
	id       uint64
	parentID uint64
	scope    Scope
	name     string
	start    time.Time
	extra    map[string]string
}

// Begin opens a span and emits its begin event.
func Begin(t Tracer, scope Scope, name string, parentID uint64) *Span {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return nil
	}
	s := &Span{
		tracer:   t,
		id:       spanSeq.Add(1),
		parentID: parentID,
		scope:    scope,
		name:     name,
		start:    time.Now(),
	}
	t.Emit(&Event{
		Time:     s.start,
		Kind:     KindSpanBegin,
		Scope:    scope,
		SpanID:   s.id,
		ParentID: parentID,
		Name:     name,
	})
	return s
}

// ID returns the span id, or 0 for a nil span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// WithExtra attaches a key/value pair reported by End.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil {
		return nil
	}
	if s.extra == nil {
		s.extra = make(map[string]string, 2)
	}
	s.extra[key] = value
	return s
}

// End closes the span. The end event carries the elapsed time in its
// "dur" extra.
func (s *Span) End(detail string) {
	if s == nil {
		return
	}
	now := time.Now()
	extra := make(map[string]string, len(s.extra)+1)
	for k, v := range s.extra {
		extra[k] = v
	}
	extra["dur"] = now.Sub(s.start).String()
	s.tracer.Emit(&Event{
		Time:     now,
		Kind:     KindSpanEnd,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parentID,
		Name:     s.name,
		Detail:   detail,
		Extra:    extra,
	})
}

// Point emits a standalone event under parentID.
func Point(t Tracer, scope Scope, name string, parentID uint64, detail string) {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	t.Emit(&Event{
		Time:     time.Now(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: parentID,
		Name:     name,
		Detail:   detail,
	})
}
