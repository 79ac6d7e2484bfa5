package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ruhan-islam/text-summarizer/internal/core/services/dataset"
	"github.com/ruhan-islam/text-summarizer/internal/infrastructure/database/repositories"
	apperrors "github.com/ruhan-islam/text-summarizer/internal/pkg/errors"
)

func newPrepareCmd(a *app) *cobra.Command {
	var (
		flags      datasetFlags
		refineryID string
		persist    bool
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Clean a dataset and write its splits into run storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := flags.config()
			if err != nil {
				return err
			}
			if flags.crossRun && !persist {
				return fmt.Errorf("--cross-run needs --persist")
			}

			db, err := withDatabase(ctx, a, persist)
			if err != nil {
				return err
			}
			if db != nil {
				defer db.Close()
			}

			store, err := a.newStorage()
			if err != nil {
				return err
			}

			cleaner, cleanup, err := a.newCleaner(refineryID)
			if err != nil {
				return err
			}
			defer cleanup()

			preparer, err := a.newPreparer(store, cleaner, db)
			if err != nil {
				return err
			}

			src, err := openFile(flags.file)
			if err != nil {
				return err
			}
			defer src.Close()

			runID := uuid.New()
			name := filepath.Base(flags.file)
			meta, err := store.SaveSource(ctx, runID.String(), name, src)
			if err != nil {
				return err
			}

			if db != nil && !force {
				runs := repositories.NewRunRepository(db.DB, a.logger)
				previous, err := runs.FindCompleted(ctx, meta.Hash, cleaner.Version())
				switch {
				case err == nil:
					a.logger.Info("source already prepared, use --force to run again",
						slog.String("run_id", previous.ID.String()))
					_ = store.DeleteRun(ctx, runID.String())
					return printJSON(cmd, previous)
				case !apperrors.HasCode(err, apperrors.ErrCodeRecordNotFound):
					return err
				}
			}

			result, err := preparer.Prepare(ctx, dataset.Request{
				RunID:      runID,
				SourcePath: meta.StoredPath,
				SourceName: name,
				SourceHash: meta.Hash,
				Config:     cfg,
			})
			if err != nil {
				return err
			}

			a.logger.Info("artifacts written", slog.String("path", store.RunPath(runID.String())))
			return printJSON(cmd, result)
		},
	}

	flags.bind(cmd)
	cmd.Flags().StringVar(&refineryID, "refinery", "", "refinery version or alias (default from REFINERY_VERSION)")
	cmd.Flags().BoolVar(&persist, "persist", false, "track the run in PostgreSQL")
	cmd.Flags().BoolVar(&force, "force", false, "prepare even when this source was already prepared with the same refinery")

	return cmd
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
