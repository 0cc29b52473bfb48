package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"kestrel/internal/diagfmt"
	"kestrel/internal/driver"
	"kestrel/internal/project"
)

// settings are kestrel.toml values overridden by the flags the user set.
type settings struct {
	manifest *project.Manifest
	color    bool
	width    int
	timings  bool
	jobs     int
}

func loadSettings(cmd *cobra.Command) (*settings, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	m, _, err := project.Load(cwd)
	if err != nil {
		return nil, err
	}
	flags := cmd.Root().PersistentFlags()
	if flags.Changed("core") {
		m.Build.Core, _ = flags.GetString("core")
	}
	if flags.Changed("entry") {
		m.Build.Entry, _ = flags.GetString("entry")
	}
	if flags.Changed("max-diagnostics") {
		m.Build.MaxDiagnostics, _ = flags.GetInt("max-diagnostics")
	}
	if flags.Changed("max-instances") {
		m.Build.MaxInstances, _ = flags.GetInt("max-instances")
	}

	s := &settings{manifest: m}
	if s.timings, err = flags.GetBool("timings"); err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if s.jobs, err = flags.GetInt("jobs"); err != nil {
		return nil, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	colorMode, err := flags.GetString("color")
	if err != nil {
		return nil, fmt.Errorf("failed to get color flag: %w", err)
	}
	out := cmd.OutOrStdout()
	switch strings.ToLower(colorMode) {
	case "on":
		s.color = true
	case "off":
	case "auto":
		s.color = diagfmt.ColorEnabled(out)
	default:
		return nil, fmt.Errorf("unknown color mode %q (expected auto|on|off)", colorMode)
	}
	s.width = diagfmt.TerminalWidth(out)
	return s, nil
}

func (s *settings) driverOptions(stage driver.Stage) driver.Options {
	b := s.manifest.Build
	return driver.Options{
		Stage:          stage,
		Core:           b.Core,
		Entry:          b.Entry,
		MaxDiagnostics: b.MaxDiagnostics,
		MaxInstances:   b.MaxInstances,
		Jobs:           s.jobs,
		EnableTimings:  s.timings,
	}
}

// inputs returns args, or the manifest's [build].inputs when args is empty.
func (s *settings) inputs(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	files, err := s.manifest.InputFiles()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files: pass forests explicitly or set [build].inputs in %s", project.ManifestName)
	}
	return files, nil
}
