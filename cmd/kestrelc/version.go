package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"kestrel/internal/version"
)

type versionPayload struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show kestrelc build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := cmd.Flags().GetString("format")
		if err != nil {
			return fmt.Errorf("failed to get format flag: %w", err)
		}
		out := cmd.OutOrStdout()
		switch format {
		case "pretty":
			_, err = fmt.Fprintln(out, version.Info(cfg.color))
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			err = enc.Encode(versionPayload{
				Tool:      "kestrelc",
				Version:   version.Version,
				GitCommit: version.GitCommit,
				BuildDate: version.BuildDate,
			})
		default:
			err = fmt.Errorf("unknown format %q (expected pretty|json)", format)
		}
		return err
	},
}

func init() {
	versionCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}
