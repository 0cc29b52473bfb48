package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"kestrel/internal/diag"
	"kestrel/internal/source"
)

const tabWidth = 4

type palette struct {
	err, warn, info, note, help, gutter, caret, loc *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		note:   color.New(color.FgBlue, color.Bold),
		help:   color.New(color.FgGreen, color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgRed, color.Bold),
		loc:    color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.help, p.gutter, p.caret, p.loc} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty writes diagnostics in bag order:
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//	   3 | let x: int = "s"
//	     |              ^~~
//	  note: <path>:<line>:<col>: <message>
//
// Callers usually Sort the bag first.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	pr := &printer{w: w, fs: fs, opts: opts, pal: newPalette(opts.Color)}
	for _, d := range bag.Items() {
		pr.diagnostic(d)
	}
	return pr.err
}

type printer struct {
	w    io.Writer
	fs   *source.FileSet
	opts PrettyOpts
	pal  palette
	err  error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) location(sp source.Span) string {
	path := displayPath(p.fs, sp, p.opts.PathMode, p.opts.BaseDir)
	if !sp.IsValid() {
		return path
	}
	return fmt.Sprintf("%s:%d:%d", path, sp.Line, sp.Col)
}

func (p *printer) diagnostic(d diag.Diagnostic) {
	sev := p.pal.severity(d.Severity)
	p.printf("%s: %s %s: %s\n",
		p.pal.loc.Sprint(p.location(d.Primary)),
		sev.Sprint(d.Severity.String()),
		sev.Sprint(d.Code.ID()),
		d.Message)
	p.snippet(d.Primary)
	if p.opts.ShowNotes {
		for _, n := range d.Notes {
			if n.Span.IsValid() {
				p.printf("  %s %s: %s\n", p.pal.note.Sprint("note:"), p.location(n.Span), n.Msg)
				continue
			}
			p.printf("  %s %s\n", p.pal.note.Sprint("note:"), n.Msg)
		}
	}
	if p.opts.ShowFixes {
		for _, f := range d.Fixes {
			p.printf("  %s %s\n", p.pal.help.Sprint("help:"), f.Title)
		}
	}
}

// snippet prints the source line of sp with the span underlined. Nothing
// is printed when the document has no text for that line.
func (p *printer) snippet(sp source.Span) {
	if p.fs == nil || !sp.IsValid() {
		return
	}
	line := p.fs.Get(sp.File).GetLine(sp.Line)
	if line == "" {
		return
	}
	shown, pad, width := layoutLine(line, sp, p.opts.Width)
	num := fmt.Sprintf("%d", sp.Line)
	blank := strings.Repeat(" ", len(num))
	p.printf(" %s %s %s\n", p.pal.gutter.Sprint(num), p.pal.gutter.Sprint("|"), shown)
	marker := "^" + strings.Repeat("~", max(0, width-1))
	p.printf(" %s %s %s%s\n", blank, p.pal.gutter.Sprint("|"), strings.Repeat(" ", pad), p.pal.caret.Sprint(marker))
}

// layoutLine expands tabs in line and measures, in terminal cells, the
// text before the span and the span itself. Columns count runes.
func layoutLine(line string, sp source.Span, limit int) (shown string, pad, width int) {
	var sb strings.Builder
	col := uint32(1)
	for _, r := range line {
		w := runewidth.RuneWidth(r)
		if r == '\t' {
			w = tabWidth
			sb.WriteString(strings.Repeat(" ", tabWidth))
		} else {
			sb.WriteRune(r)
		}
		switch {
		case col < sp.Col:
			pad += w
		case col < sp.EndCol:
			width += w
		}
		col++
	}
	shown = sb.String()
	if limit > 0 && runewidth.StringWidth(shown) > limit {
		shown = runewidth.Truncate(shown, limit, "...")
		pad = min(pad, limit)
		width = min(width, limit-pad)
	}
	return shown, pad, max(width, 1)
}
