// Package cmd implements the cuke CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eykd/cukable-go/internal/config"
	"github.com/eykd/cukable-go/internal/logging"
)

// Session holds what every subcommand needs: the loaded configuration and
// the logger. The root command fills it before a subcommand runs.
type Session struct {
	ConfigPath string
	Verbose    bool

	Config *config.Config
	Logger *zap.Logger
}

// NewRootCmd creates the root cuke command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	s := &Session{}
	root := &cobra.Command{
		Use:               "cuke",
		Short:             "cuke - run wiki acceptance tables through a Gherkin engine",
		Args:              cobra.NoArgs,
		SilenceErrors:     true,
		RunE:              rootRunE,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error { return s.Open(os.LookupEnv) },
		PersistentPostRun: func(_ *cobra.Command, _ []string) { s.Close() },
	}
	root.PersistentFlags().StringVar(&s.ConfigPath, "config", "", "config file (.yaml, .yml or .toml); defaults to cuke.yaml, cuke.yml or cuke.toml in the working directory")
	root.PersistentFlags().BoolVarP(&s.Verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(NewAccelerateCmd(s, newDefaultAccelerator))
	root.AddCommand(NewTableCmd(s, newDefaultAccelerator, newDefaultInputReader()))
	root.AddCommand(NewConvertCmd(s, newDefaultConverter()))
	root.AddCommand(NewExtractCmd(newDefaultInputReader()))
	root.AddCommand(NewLintCmd(newDefaultInputReader()))
	return root
}

func rootRunE(cmd *cobra.Command, _ []string) error {
	return cmd.Help()
}

// Open loads the configuration, applies environment overrides from lookup,
// validates it and builds the logger. Without --config, a cuke.yaml,
// cuke.yml or cuke.toml in the working directory is used when present.
func (s *Session) Open(lookup func(string) (string, bool)) error {
	path := s.ConfigPath
	if path == "" {
		path = config.Find(".")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	cfg.ApplyEnv(lookup)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	logger, err := logging.New(s.Verbose)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	s.Config, s.Logger = cfg, logger
	return nil
}

// Close flushes the logger.
func (s *Session) Close() {
	if s.Logger != nil {
		_ = s.Logger.Sync()
	}
}

// settings returns the loaded configuration, or the defaults when the session
// was never opened.
func (s *Session) settings() *config.Config {
	if s == nil || s.Config == nil {
		return config.Default()
	}
	return s.Config
}

func (s *Session) log() *zap.Logger {
	if s == nil {
		return zap.NewNop()
	}
	return logging.OrNop(s.Logger)
}
