package main

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/ruhan-islam/text-summarizer/internal/infrastructure/queue"
)

func newEnqueueCmd(a *app) *cobra.Command {
	var (
		flags     datasetFlags
		queueName string
	)

	cmd := &cobra.Command{
		Use:   "enqueue",
		Short: "Store a dataset and queue its preparation for a worker",
		Long: `Copies the dataset into run storage and queues a dataset:prepare task.
The worker must share STORAGE_BASE_PATH with this command.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := flags.config()
			if err != nil {
				return err
			}

			store, err := a.newStorage()
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

			client := queue.NewAsynqClient(&a.cfg.Queue, a.logger)
			defer client.Close()

			info, err := client.EnqueuePrepare(ctx, queue.PreparePayload{
				RunID:      runID,
				SourcePath: meta.StoredPath,
				SourceName: name,
				SourceHash: meta.Hash,
				Config:     cfg,
			}, asynq.Queue(queueName))
			if err != nil {
				_ = store.DeleteRun(ctx, runID.String())
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", runID, info.Queue)
			return nil
		},
	}

	flags.bind(cmd)
	cmd.Flags().StringVar(&queueName, "queue", queue.QueueDefault, "queue name (critical, high, default)")

	return cmd
}
