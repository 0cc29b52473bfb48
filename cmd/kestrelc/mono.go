package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"kestrel/internal/driver"
	"kestrel/internal/mono"
)

var monoCmd = &cobra.Command{
	Use:   "mono [forest.yaml|forest.kfo...]",
	Short: "Run the whole pipeline and print the concrete program",
	Long: `mono analyzes the forests, instantiates every function reachable from the
entry and prints the instances and the ordered concrete types`,
	RunE: runMono,
}

func init() {
	addOutputFlags(monoCmd)
	monoCmd.Flags().Bool("summary", false, "render the instances as a table")
	monoCmd.Flags().Bool("yaml", false, "print the program listing as YAML")
}

func runMono(cmd *cobra.Command, args []string) error {
	res, err := compile(cmd, args, driver.StageMono)
	if err != nil {
		return err
	}
	summary, err := cmd.Flags().GetBool("summary")
	if err != nil {
		return fmt.Errorf("failed to get summary flag: %w", err)
	}
	asYAML, err := cmd.Flags().GetBool("yaml")
	if err != nil {
		return fmt.Errorf("failed to get yaml flag: %w", err)
	}
	listing := res.Program.Listing(res.Table)
	out := cmd.OutOrStdout()
	switch {
	case asYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(listing); err != nil {
			return err
		}
		return enc.Close()
	case summary:
		_, err := fmt.Fprintln(out, renderSummary(listing, cfg.color))
		return err
	}
	return printListing(out, listing)
}

func printListing(w io.Writer, l mono.Listing) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "entry %s\n", l.Entry)
	for _, f := range l.Functions {
		fmt.Fprintf(&sb, "fn %s: %s", f.Name, f.Type)
		if f.Wrapper {
			sb.WriteString(" (wrapper)")
		}
		sb.WriteByte('\n')
		for _, c := range f.Calls {
			fmt.Fprintf(&sb, "  -> %s\n", c)
		}
	}
	for _, g := range l.Globals {
		fmt.Fprintf(&sb, "global %s\n", g)
	}
	for i, t := range l.Types {
		fmt.Fprintf(&sb, "type #%d %s\n", i, t)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func renderSummary(l mono.Listing, colored bool) string {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	border := lipgloss.NewStyle()
	if colored {
		header = header.Foreground(lipgloss.Color("6"))
		border = border.Foreground(lipgloss.Color("8"))
	}
	rows := make([][]string, 0, len(l.Functions))
	for _, f := range l.Functions {
		kind := "fn"
		if f.Wrapper {
			kind = "wrapper"
		}
		rows = append(rows, []string{f.Name, f.Type, kind, fmt.Sprint(len(f.Calls))})
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(border).
		Headers("INSTANCE", "TYPE", "KIND", "CALLS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
	footer := fmt.Sprintf("%d instances, %d types, entry %s", len(l.Functions), len(l.Types), l.Entry)
	return t.Render() + "\n" + footer
}
