package source

import (
	"fmt"
)

// Span points at a column range of a single line in a document.
// Lines and columns are 1-based; EndCol is exclusive.
// File is not serialized: loaders stamp it when a forest is read.
type Span struct {
	File   FileID `yaml:"-" msgpack:"-"`
	Line   uint32 `yaml:"line" msgpack:"l"`
	Col    uint32 `yaml:"col" msgpack:"c"`
	EndCol uint32 `yaml:"end" msgpack:"e"`
}

// NoSpan is used when no position is available (synthesized code, probes).
var NoSpan = Span{}

// IsValid reports whether the span carries a position.
func (s Span) IsValid() bool {
	return s.Line != 0
}

func (s Span) Empty() bool {
	return s.Col == s.EndCol
}

func (s Span) Len() uint32 {
	if s.EndCol < s.Col {
		return 0
	}
	return s.EndCol - s.Col
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d:%d-%d", s.File, s.Line, s.Col, s.EndCol)
}

// Cover widens s to include other when both sit on the same line.
func (s Span) Cover(other Span) Span {
	if !s.IsValid() {
		return other
	}
	if s.File != other.File || s.Line != other.Line {
		return s
	}
	if other.Col < s.Col {
		s.Col = other.Col
	}
	if other.EndCol > s.EndCol {
		s.EndCol = other.EndCol
	}
	return s
}

// Before orders spans by file, line and column.
func (s Span) Before(other Span) bool {
	if s.File != other.File {
		return s.File < other.File
	}
	if s.Line != other.Line {
		return s.Line < other.Line
	}
	if s.Col != other.Col {
		return s.Col < other.Col
	}
	return s.EndCol < other.EndCol
}
