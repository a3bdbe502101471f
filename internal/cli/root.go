package cli

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"trivia-cli/internal/config"
	"trivia-cli/internal/logger"
)

var configPath string

// Execute runs the CLI.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "trivia",
		Short:        "Answer five trivia questions, with hints and optional translation",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			log, err := logger.New(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			deps, cleanup, err := NewDeps(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer cleanup()

			return Run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), cfg, deps)
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("TRIVIA_CONFIG"), "path to YAML config (optional)")
	return cmd
}
