package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestInfo(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	defer func() { Version, GitCommit, BuildDate = origVersion, origCommit, origDate }()

	Version, GitCommit, BuildDate = "1.2.3-rc1", "abc123", "2024-01-15"
	if got := Info(false); got != "kestrelc 1.2.3-rc1 (abc123) built 2024-01-15" {
		t.Fatalf("Info = %q", got)
	}
	GitCommit, BuildDate = "", ""
	if got := Info(false); got != "kestrelc 1.2.3-rc1" {
		t.Fatalf("Info = %q", got)
	}
}

func TestColoredWithoutColor(t *testing.T) {
	orig := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = orig }()
	origVersion := Version
	defer func() { Version = origVersion }()

	Version = "0.4.1"
	if got := Colored(); got != "0.4.1" {
		t.Fatalf("Colored = %q", got)
	}
}
