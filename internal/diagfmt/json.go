package diagfmt

import (
	"encoding/json"
	"io"

	"kestrel/internal/diag"
	"kestrel/internal/source"
)

type LocationJSON struct {
	File   string `json:"file"`
	Line   uint32 `json:"line,omitempty"`
	Col    uint32 `json:"col,omitempty"`
	EndCol uint32 `json:"end_col,omitempty"`
}

type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

type FixEditJSON struct {
	Location LocationJSON `json:"location"`
	NewText  string       `json:"new_text"`
}

type FixJSON struct {
	Title string        `json:"title"`
	Edits []FixEditJSON `json:"edits,omitempty"`
}

type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Title    string       `json:"title"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
	Fixes    []FixJSON    `json:"fixes,omitempty"`
}

// DiagnosticsOutput is the root object written by JSON.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Errors      int              `json:"errors"`
}

func makeLocation(sp source.Span, fs *source.FileSet, opts JSONOpts) LocationJSON {
	loc := LocationJSON{File: displayPath(fs, sp, opts.PathMode, opts.BaseDir)}
	if sp.IsValid() {
		loc.Line, loc.Col, loc.EndCol = sp.Line, sp.Col, sp.EndCol
	}
	return loc
}

// BuildDiagnosticsOutput converts bag without serializing it.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	items := bag.Items()
	if opts.Max > 0 && opts.Max < len(items) {
		items = items[:opts.Max]
	}
	out := DiagnosticsOutput{Diagnostics: make([]DiagnosticJSON, 0, len(items)), Errors: bag.ErrorCount()}
	for _, d := range items {
		dj := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			Message:  d.Message,
			Location: makeLocation(d.Primary, fs, opts),
		}
		if opts.IncludeNotes {
			for _, n := range d.Notes {
				dj.Notes = append(dj.Notes, NoteJSON{Message: n.Msg, Location: makeLocation(n.Span, fs, opts)})
			}
		}
		if opts.IncludeFixes {
			for _, f := range d.Fixes {
				fj := FixJSON{Title: f.Title}
				for _, e := range f.Edits {
					fj.Edits = append(fj.Edits, FixEditJSON{Location: makeLocation(e.Span, fs, opts), NewText: e.NewText})
				}
				dj.Fixes = append(dj.Fixes, fj)
			}
		}
		out.Diagnostics = append(out.Diagnostics, dj)
	}
	out.Count = len(out.Diagnostics)
	return out
}

// JSON writes the diagnostics as one indented JSON object.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildDiagnosticsOutput(bag, fs, opts))
}
