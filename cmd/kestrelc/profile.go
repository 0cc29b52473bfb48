package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kestrel/internal/prof"
)

var profiling *prof.Session

func startProfiling(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()
	cpu, err := flags.GetString("cpuprofile")
	if err != nil {
		return fmt.Errorf("failed to get cpuprofile flag: %w", err)
	}
	mem, err := flags.GetString("memprofile")
	if err != nil {
		return fmt.Errorf("failed to get memprofile flag: %w", err)
	}
	profiling, err = prof.Start(prof.Options{CPU: cpu, Mem: mem})
	return err
}
