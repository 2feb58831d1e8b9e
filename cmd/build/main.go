// Command build cleans the raw DataCo export, writes the processed CSV and
// Parquet files, and computes the KPI tables into outputs/.
package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dataco/internal/cli"
	"dataco/internal/pipeline"

	// register every storage engine; the config picks one.
	_ "dataco/internal/storage/all"
)

func newCommand() *cobra.Command {
	var flags cli.Flags
	cmd := &cobra.Command{
		Use:           "build",
		Short:         "Clean the raw export and compute the KPI tables",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := cli.Setup(cmd, flags)
			if err != nil {
				return err
			}
			defer env.Close()
			_, err = pipeline.Build(cmd.Context(), env.Config, env.Log)
			return err
		},
	}
	flags.Bind(cmd, true)
	return cmd
}

func main() {
	if err := newCommand().Execute(); err != nil {
		if errors.Is(err, cli.ErrValidateOnly) {
			return
		}
		log, _ := zap.NewProduction()
		log.Error("build failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}
