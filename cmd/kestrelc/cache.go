package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"kestrel/internal/astio"
)

var cacheCmd = &cobra.Command{
	Use:   "cache -o out.kfo <forest.yaml...>",
	Short: "Pack YAML forests into a msgpack forest cache",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := cmd.Flags().GetString("output")
		if err != nil {
			return fmt.Errorf("failed to get output flag: %w", err)
		}
		if out == "" {
			return fmt.Errorf("missing -o/--output")
		}
		if !strings.EqualFold(filepath.Ext(out), astio.CacheExt) {
			out += astio.CacheExt
		}
		batches, err := astio.ReadFiles(cmd.Context(), args, cfg.jobs)
		if err != nil {
			return err
		}
		var docs []*astio.Document
		units := 0
		for _, b := range batches {
			for _, d := range b {
				units += len(d.Units)
			}
			docs = append(docs, b...)
		}
		if err := astio.WriteCache(out, docs); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s: %d documents, %d units\n", out, len(docs), units)
		return nil
	},
}

func init() {
	cacheCmd.Flags().StringP("output", "o", "", "cache file to write")
}
