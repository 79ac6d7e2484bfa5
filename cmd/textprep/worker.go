package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ruhan-islam/text-summarizer/internal/infrastructure/queue"
	"github.com/ruhan-islam/text-summarizer/internal/observability/metrics"
	"github.com/ruhan-islam/text-summarizer/internal/worker"
)

func newWorkerCmd(a *app) *cobra.Command {
	var persist bool

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Process queued dataset preparations and serve /metrics and /health",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a.cfg.LogConfig(a.logger)

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

			cleaner, cleanup, err := a.newCleaner("")
			if err != nil {
				return err
			}
			defer cleanup()

			preparer, err := a.newPreparer(store, cleaner, db)
			if err != nil {
				return err
			}

			server := queue.NewAsynqServer(&a.cfg.Queue, a.logger)
			server.Handle(queue.TaskTypePrepareDataset, worker.NewPrepareHandler(preparer, a.logger.With(slog.String("component", "worker"))))

			checks := map[string]metrics.HealthCheck{
				"queue": func(ctx context.Context) map[string]interface{} {
					if err := server.Ping(); err != nil {
						return map[string]interface{}{"status": "down", "error": err.Error()}
					}
					return map[string]interface{}{"status": "up"}
				},
			}
			if db != nil {
				checks["database"] = db.Health
			}
			metrics.StartServer(ctx, a.cfg.Metrics.Port, a.logger, checks)

			a.logger.Info("worker started",
				slog.String("refinery", cleaner.Version()),
				slog.Bool("run_tracking", db != nil))

			// asynq handles SIGINT/SIGTERM itself and returns after a graceful shutdown
			return server.Start()
		},
	}

	cmd.Flags().BoolVar(&persist, "persist", true, "track runs and dedup hashes in PostgreSQL")

	return cmd
}
