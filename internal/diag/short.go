package diag

import (
	"fmt"
	"sort"
	"strings"

	"kestrel/internal/source"
)

type shortDiagnostic struct {
	Severity string
	Code     string
	Path     string
	Line     uint32
	Column   uint32
	Message  string
}

// FormatShortDiagnostics renders diagnostics into a stable, single-line-per-entry
// representation used by tests and the CLI short output.
func FormatShortDiagnostics(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if len(diags) == 0 {
		return ""
	}
	rendered := make([]shortDiagnostic, 0, len(diags))
	for i := range diags {
		d := &diags[i]
		rendered = append(rendered, shortEntry(d.Severity.String(), d.Code.ID(), d.Primary, d.Message, fs))
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			rendered = append(rendered, shortEntry("NOTE", d.Code.ID(), n.Span, n.Msg, fs))
		}
	}

	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Path != dj.Path {
			return di.Path < dj.Path
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		return di.Column < dj.Column
	})

	var b strings.Builder
	for i, r := range rendered {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s:%d:%d: %s %s %s", r.Path, r.Line, r.Column, r.Severity, r.Code, r.Message)
	}
	return b.String()
}

func shortEntry(sev, code string, span source.Span, msg string, fs *source.FileSet) shortDiagnostic {
	path := "<unknown>"
	if fs != nil && span.IsValid() {
		path = fs.Name(span.File)
	}
	// multi-line messages stay on one line
	msg = strings.ReplaceAll(msg, "\n", " ")
	return shortDiagnostic{
		Severity: sev,
		Code:     code,
		Path:     path,
		Line:     span.Line,
		Column:   span.Col,
		Message:  msg,
	}
}
