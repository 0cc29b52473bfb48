package diag

import (
	"fmt"

	"kestrel/internal/source"
)

// FatalError aborts the build: nothing produced after it can be trusted.
type FatalError struct {
	Code    Code
	Span    source.Span
	Message string
}

func (e *FatalError) Error() string {
	if e.Span.IsValid() {
		return fmt.Sprintf("%s at %s: %s", e.Code.ID(), e.Span, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code.ID(), e.Message)
}

// Fatal builds a FatalError.
func Fatal(code Code, span source.Span, format string, args ...any) *FatalError {
	return &FatalError{Code: code, Span: span, Message: fmt.Sprintf(format, args...)}
}

// Diagnostic converts the fatal error to a regular error diagnostic.
func (e *FatalError) Diagnostic() Diagnostic {
	return NewError(e.Code, e.Span, e.Message)
}

// InternalError is raised when a phase reaches a state a prior check was
// supposed to rule out.
type InternalError struct {
	Message string
}

func (e *InternalError) Error() string {
	return "internal compiler error: " + e.Message
}

// CompilerError panics with an *InternalError. The driver recovers it and
// turns it into a returned error.
func CompilerError(format string, args ...any) {
	panic(&InternalError{Message: fmt.Sprintf(format, args...)})
}

// RecoverInternal converts a recovered *InternalError into err; any other
// panic value is re-raised.
func RecoverInternal(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if ie, ok := r.(*InternalError); ok {
		*err = ie
		return
	}
	panic(r)
}
