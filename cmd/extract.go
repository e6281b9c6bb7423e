package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eykd/cukable-go/internal/feature"
	"github.com/eykd/cukable-go/internal/table"
)

// NewExtractCmd creates the extract subcommand.
func NewExtractCmd(reader InputReader) *cobra.Command {
	return &cobra.Command{
		Use:          "extract <content.txt>",
		Short:        "Print the scenario documents found in a wiki page",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := reader.ReadInput(cmd.Context(), args[0], cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("reading page: %w", err)
			}
			lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
			out := cmd.OutOrStdout()
			for i, t := range table.WikiToTables(lines) {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "# table %d\n", i)
				if err := feature.Validate(t); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: table %d: %v\n", i, err)
				}
				for _, line := range feature.Render(t) {
					fmt.Fprintln(out, line)
				}
			}
			return nil
		},
	}
}
