package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ruhan-islam/text-summarizer/internal/pkg/config"
	"github.com/ruhan-islam/text-summarizer/internal/pkg/logger"
)

// app carries what every subcommand needs once the root command has run
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "textprep",
		Short:         "Clean and prepare summarization datasets",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			a.cfg = cfg
			// stdout carries command output
			a.logger = logger.InitializeWithWriter(cfg.Environment, os.Stderr)
			return nil
		},
	}

	root.AddCommand(
		newCleanCmd(a),
		newPrepareCmd(a),
		newEnqueueCmd(a),
		newWorkerCmd(a),
		newRefineriesCmd(a),
		newRunsCmd(a),
		newCleanupCmd(a),
	)

	return root
}
