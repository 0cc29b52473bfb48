package diagfmt

import (
	"path/filepath"

	"kestrel/internal/source"
)

func displayPath(fs *source.FileSet, span source.Span, mode PathMode, base string) string {
	if fs == nil || !span.IsValid() {
		return "<unknown>"
	}
	path := fs.Name(span.File)
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(path); err == nil {
			return filepath.ToSlash(abs)
		}
	case PathModeRelative:
		if base == "" {
			break
		}
		if rel, err := filepath.Rel(base, path); err == nil {
			return filepath.ToSlash(rel)
		}
	case PathModeBasename:
		return filepath.Base(path)
	}
	return path
}
