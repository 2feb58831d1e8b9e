// Command charts renders the KPI charts and the loss-making products table
// from the CSVs written by build.
package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dataco/internal/cli"
	"dataco/internal/pipeline"
)

func newCommand() *cobra.Command {
	var flags cli.Flags
	cmd := &cobra.Command{
		Use:           "charts",
		Short:         "Render KPI charts into reports/",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := cli.Setup(cmd, flags)
			if err != nil {
				return err
			}
			defer env.Close()
			_, err = pipeline.Charts(cmd.Context(), env.Config, env.Log)
			return err
		},
	}
	flags.Bind(cmd, false)
	return cmd
}

func main() {
	if err := newCommand().Execute(); err != nil {
		if errors.Is(err, cli.ErrValidateOnly) {
			return
		}
		log, _ := zap.NewProduction()
		log.Error("charts failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}
