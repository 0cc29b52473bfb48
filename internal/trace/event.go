package trace

import "time"

// Kind is the type of a trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Scope is the granularity of an event. Lower values are coarser.
type Scope uint8

const (
	// ScopeDriver covers a whole CLI command.
	ScopeDriver Scope = iota + 1
	// ScopePass covers one phase: load, symbols, sema.globals, mono.
	ScopePass
	// ScopeUnit covers work on one compilation unit or input file.
	ScopeUnit
	// ScopeNode covers a single function.
	ScopeNode
)

func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopePass:
		return "pass"
	case ScopeUnit:
		return "unit"
	case ScopeNode:
		return "node"
	default:
		return "unknown"
	}
}

// Event is a single trace record.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64
	// Session identifies the run that produced the event.
	Session string
	Name    string
	Detail  string
	Extra   map[string]string
}
