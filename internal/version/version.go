// Package version holds build information for kestrelc. The variables are
// set with -ldflags "-X kestrel/internal/version.Version=...".
package version

import (
	"strings"

	"github.com/fatih/color"
)

var (
	Version   = "0.1.0-dev"
	GitCommit = ""
	BuildDate = ""
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

// Colored renders Version with each numeric component in its own colour.
// fatih/color drops the escapes when colour is disabled.
func Colored() string {
	core, suffix, _ := strings.Cut(Version, "-")
	parts := strings.SplitN(core, ".", 3)
	paint := []*color.Color{majorColor, minorColor, patchColor}
	for i := range parts {
		parts[i] = paint[i].Sprint(parts[i])
	}
	out := strings.Join(parts, ".")
	if suffix != "" {
		out += "-" + suffix
	}
	return out
}

// Info is the one-line description printed by `kestrelc version`.
func Info(colored bool) string {
	v := Version
	if colored {
		v = Colored()
	}
	out := "kestrelc " + v
	if GitCommit != "" {
		out += " (" + GitCommit + ")"
	}
	if BuildDate != "" {
		out += " built " + BuildDate
	}
	return out
}
