package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eykd/cukable-go/internal/wiki"
)

// Converter writes scenario files as wiki pages for the convert command.
type Converter interface {
	ConvertFeatures(ctx context.Context, featuresDir, wikiDir string, logger *zap.Logger) ([]wiki.Converted, error)
}

// NewConvertCmd creates the convert subcommand.
func NewConvertCmd(s *Session, conv Converter) *cobra.Command {
	return &cobra.Command{
		Use:          "convert <features-dir> <wiki-dir>",
		Short:        "Convert .feature files into wiki test pages",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			converted, err := conv.ConvertFeatures(cmd.Context(), args[0], args[1], s.log())
			for _, c := range converted {
				fmt.Fprintf(cmd.OutOrStdout(), "OK: %s => %s\n", sanitizePath(c.Feature), sanitizePath(c.Page))
			}
			if err != nil {
				return fmt.Errorf("converting features: %w", err)
			}
			return nil
		},
	}
}

// fileConverter implements Converter on the local filesystem.
type fileConverter struct{}

func newDefaultConverter() *fileConverter {
	return &fileConverter{}
}

func (c *fileConverter) ConvertFeatures(_ context.Context, featuresDir, wikiDir string, logger *zap.Logger) ([]wiki.Converted, error) {
	return wiki.ConvertFeatures(featuresDir, wikiDir, logger)
}
