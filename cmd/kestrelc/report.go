package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"kestrel/internal/diag"
	"kestrel/internal/diagfmt"
	"kestrel/internal/driver"
)

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "pretty", "diagnostic format (pretty|json|short)")
	cmd.Flags().Bool("with-notes", true, "include diagnostic notes")
	cmd.Flags().Bool("fullpath", false, "emit absolute file paths")
}

// compile runs the driver and prints its diagnostics. It returns errFailed
// when the bag holds errors or the pipeline stopped on a fatal error.
func compile(cmd *cobra.Command, args []string, stage driver.Stage) (*driver.Result, error) {
	defer dumpTraceOnPanic()
	paths, err := cfg.inputs(args)
	if err != nil {
		return nil, err
	}
	res, err := driver.Compile(cmd.Context(), paths, cfg.driverOptions(stage))
	var fe *diag.FatalError
	if err != nil && !errors.As(err, &fe) {
		return nil, err
	}
	if perr := printDiagnostics(cmd, res); perr != nil {
		return nil, perr
	}
	if cfg.timings && res.Timer != nil {
		fmt.Fprint(cmd.ErrOrStderr(), res.Timer.Summary())
	}
	if fe != nil || res.Bag.HasErrors() {
		return res, errFailed
	}
	return res, nil
}

func printDiagnostics(cmd *cobra.Command, res *driver.Result) error {
	if res.Bag.Len() == 0 {
		return nil
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	pathMode := diagfmt.PathModeRelative
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	base, _ := os.Getwd()

	res.Bag.Sort()
	out := cmd.OutOrStdout()
	switch format {
	case "pretty":
		return diagfmt.Pretty(out, res.Bag, res.FileSet, diagfmt.PrettyOpts{
			Color:     cfg.color,
			PathMode:  pathMode,
			BaseDir:   base,
			Width:     cfg.width,
			ShowNotes: withNotes,
			ShowFixes: true,
		})
	case "json":
		return diagfmt.JSON(out, res.Bag, res.FileSet, diagfmt.JSONOpts{
			PathMode:     pathMode,
			BaseDir:      base,
			IncludeNotes: withNotes,
			IncludeFixes: true,
		})
	case "short":
		_, err := io.WriteString(out, diag.FormatShortDiagnostics(res.Bag.Items(), res.FileSet, withNotes)+"\n")
		return err
	}
	return fmt.Errorf("unknown format %q (expected pretty|json|short)", format)
}
