package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kestrel/internal/version"
)

// errFailed reports that diagnostics were already printed; main only sets
// the exit status.
var errFailed = errors.New("compilation failed")

// cfg is filled before any subcommand runs.
var cfg *settings

var rootCmd = &cobra.Command{
	Use:           "kestrelc",
	Short:         "Kestrel semantic analyzer and monomorphizer",
	Long:          `kestrelc checks parsed Kestrel forests and produces the concrete program handed to the C backend`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		cfg = s
		if err := startProfiling(cmd); err != nil {
			return err
		}
		return setupTracing(cmd, s)
	},
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(monoCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)

	flags := rootCmd.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("timings", false, "print phase timings")
	flags.Int("max-diagnostics", 100, "maximum number of diagnostics to keep")
	flags.String("core", "", "unit imported implicitly by every unit (default from kestrel.toml or \"core\")")
	flags.String("entry", "", "entry function (default from kestrel.toml or \"main\")")
	flags.Int("max-instances", 0, "limit on function instances (default from kestrel.toml)")
	flags.Int("jobs", 0, "parallel file loaders (0=auto)")
	flags.String("trace", "", "trace output file (\"-\" for stderr)")
	flags.String("trace-level", "", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "", "trace storage (stream|ring|both)")
	flags.String("trace-format", "", "trace format (text|ndjson)")
	flags.String("cpuprofile", "", "write a CPU profile to this file")
	flags.String("memprofile", "", "write a heap profile to this file")

	err := rootCmd.Execute()
	closeTracing()
	if perr := profiling.Stop(); perr != nil {
		fmt.Fprintln(os.Stderr, "kestrelc: profile:", perr)
	}
	if err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, "kestrelc:", err)
		}
		os.Exit(1)
	}
}
