package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eykd/cukable-go/internal/feature"
)

// NewLintCmd creates the lint subcommand.
func NewLintCmd(reader InputReader) *cobra.Command {
	return &cobra.Command{
		Use:          "lint <feature-file>...",
		Short:        "Check scenario files with the Gherkin parser",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var failed int
			for _, path := range args {
				data, err := reader.ReadInput(cmd.Context(), path, cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading %s: %w", path, err)
				}
				if err := feature.Lint(strings.Split(string(data), "\n")); err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", sanitizePath(path), err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ok %s\n", sanitizePath(path))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed lint", failed, len(args))
			}
			return nil
		},
	}
}
