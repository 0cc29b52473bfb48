package diagfmt

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto prints paths as they were registered.
	PathModeAuto PathMode = iota
	PathModeAbsolute
	// PathModeRelative prints paths relative to BaseDir.
	PathModeRelative
	PathModeBasename
)

// PrettyOpts configures the human-readable renderer.
type PrettyOpts struct {
	Color    bool
	PathMode PathMode
	BaseDir  string
	// Width truncates source lines wider than this many cells; 0 means no
	// limit.
	Width     int
	ShowNotes bool
	ShowFixes bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	PathMode     PathMode
	BaseDir      string
	Max          int // truncates the output, not the bag
	IncludeNotes bool
	IncludeFixes bool
}
