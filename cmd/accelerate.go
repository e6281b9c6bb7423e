package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eykd/cukable-go/internal/accel"
	"github.com/eykd/cukable-go/internal/engine"
	"github.com/eykd/cukable-go/internal/table"
)

// Accelerator runs suites and single tables for the accelerate and table
// commands.
type Accelerator interface {
	Accelerate(ctx context.Context, testName, args string) (*accel.BatchReport, error)
	DoTable(ctx context.Context, t table.Table) (*accel.TableResult, error)
}

// AcceleratorFactory builds an Accelerator once the session is open.
type AcceleratorFactory func(s *Session) Accelerator

// accelerateOutput is the JSON output schema for the accelerate command.
type accelerateOutput struct {
	Suite       string `json:"suite"`
	Ran         bool   `json:"ran"`
	Nested      bool   `json:"nested"`
	Tables      int    `json:"tables"`
	Malformed   int    `json:"malformed"`
	EngineError string `json:"engine_error,omitempty"`
}

// NewAccelerateCmd creates the accelerate subcommand.
func NewAccelerateCmd(s *Session, newAccel AcceleratorFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accelerate <TestName>",
		Short: "Run a whole suite in one engine pass when TestName is its accelerator page",
		Long: "accelerate handles the execution of a wiki page such as MySuite.AaaAccelerator.\n" +
			"Accelerator pages write every Cuke table under the suite as a scenario file and\n" +
			"run the engine once; other pages are passed through untouched.",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			extra, _ := cmd.Flags().GetString("args")
			report, err := newAccel(s).Accelerate(cmd.Context(), args[0], extra)
			if err != nil {
				return fmt.Errorf("accelerating %s: %w", args[0], err)
			}
			out := accelerateOutput{
				Suite:     report.Suite,
				Ran:       report.Ran,
				Nested:    report.Nested,
				Tables:    report.Tables,
				Malformed: report.Malformed,
			}
			if report.EngineErr != nil {
				out.EngineError = report.EngineErr.Error()
			}
			if err := json.NewEncoder(cmd.OutOrStdout()).Encode(out); err != nil {
				return fmt.Errorf("encoding output: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().String("args", "", "extra arguments passed to the engine")
	return cmd
}

// newDefaultAccelerator wires a Controller to the engine named in the
// session config. Engine output goes to stderr so stdout stays JSON.
func newDefaultAccelerator(s *Session) Accelerator {
	cfg := s.settings()
	runner := &engine.ExecRunner{
		Command:   cfg.Engine.Command,
		BaseArgs:  cfg.Engine.Args,
		Require:   cfg.Engine.Require,
		Formatter: cfg.Engine.Formatter,
		Stdout:    os.Stderr,
		Logger:    s.log(),
	}
	return accel.New(accel.Options{
		WikiRoot:        cfg.WikiRoot,
		FeaturesDir:     cfg.FeaturesDir,
		ResultsDir:      cfg.ResultsDir,
		AcceleratorPage: cfg.AcceleratorPage,
		ExtraArgs:       cfg.Engine.ExtraArgs,
	}, runner, s.log())
}
