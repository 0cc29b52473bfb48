package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kestrel/internal/driver"
)

var checkCmd = &cobra.Command{
	Use:   "check [forest.yaml|forest.kfo...]",
	Short: "Build symbol tables and analyze every function",
	Long:  `check runs the analysis phases and reports diagnostics without monomorphizing`,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := compile(cmd, args, driver.StageSema)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "ok: %d units, %d functions\n", len(res.Forest.Units), len(res.Sema.Order))
		return nil
	},
}

func init() {
	addOutputFlags(checkCmd)
}
