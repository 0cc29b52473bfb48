package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff Level = iota
	// LevelError keeps events only for the crash dump.
	LevelError
	LevelPhase
	LevelDetail
	LevelDebug
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel accepts the names printed by String in any case.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(i), nil //nolint:gosec // len(levelNames) is 5
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level %q (expected off|error|phase|detail|debug)", s)
}

// ShouldEmit reports whether events of scope are recorded at this level.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelError, LevelPhase:
		return scope <= ScopePass
	case LevelDetail:
		return scope <= ScopeUnit
	case LevelDebug:
		return true
	}
	return false
}
