package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eykd/cukable-go/internal/results"
	"github.com/eykd/cukable-go/internal/table"
)

// tableOutput is the JSON output schema for the table command.
type tableOutput struct {
	Rows        []results.Row `json:"rows"`
	Cached      bool          `json:"cached"`
	Degraded    bool          `json:"degraded"`
	EngineError string        `json:"engine_error,omitempty"`
}

// NewTableCmd creates the table subcommand.
func NewTableCmd(s *Session, newAccel AcceleratorFactory, reader InputReader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table [file]",
		Short: "Run one wiki table and print its status-tagged rows as JSON",
		Long: "table reads a JSON array of rows of cells (stdin when file is omitted or \"-\"),\n" +
			"runs it through the engine, and prints the rows aligned with the input.\n" +
			"With --accelerate the named accelerator page is run first, so a table from\n" +
			"that suite is served from the batch results.",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			ctx := cmd.Context()

			data, err := reader.ReadInput(ctx, path, cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("reading table: %w", err)
			}
			var t table.Table
			if err := json.Unmarshal(data, &t); err != nil {
				return fmt.Errorf("decoding table: %w", err)
			}

			acc := newAccel(s)
			suite, _ := cmd.Flags().GetString("accelerate")
			extra, _ := cmd.Flags().GetString("args")
			if suite != "" || extra != "" {
				if _, err := acc.Accelerate(ctx, suite, extra); err != nil {
					return fmt.Errorf("accelerating %s: %w", suite, err)
				}
			}

			res, err := acc.DoTable(ctx, t)
			if err != nil {
				return fmt.Errorf("running table: %w", err)
			}
			if res.Degraded {
				s.log().Warn("engine produced no results; every cell is ignored")
			}
			out := tableOutput{Rows: res.Rows, Cached: res.Cached, Degraded: res.Degraded}
			if res.EngineErr != nil {
				out.EngineError = res.EngineErr.Error()
				s.log().Debug("engine exit", zap.Error(res.EngineErr))
			}
			if err := json.NewEncoder(cmd.OutOrStdout()).Encode(out); err != nil {
				return fmt.Errorf("encoding output: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().String("accelerate", "", "accelerator page to run first, e.g. MySuite.AaaAccelerator")
	cmd.Flags().String("args", "", "extra arguments passed to the engine")
	return cmd
}
