package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ruhan-islam/text-summarizer/internal/infrastructure/database/repositories"
)

func newRunsCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List recent tracked runs, or show one run with its artifacts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			db, err := withDatabase(ctx, a, true)
			if err != nil {
				return err
			}
			defer db.Close()
			runs := repositories.NewRunRepository(db.DB, a.logger)

			if len(args) == 1 {
				id, err := uuid.Parse(args[0])
				if err != nil {
					return fmt.Errorf("invalid run id %q: %w", args[0], err)
				}
				run, err := runs.GetByID(ctx, id)
				if err != nil {
					return err
				}

				store, err := a.newStorage()
				if err != nil {
					return err
				}
				artifacts, err := store.ListArtifacts(ctx, id.String())
				if err != nil {
					return err
				}

				return printJSON(cmd, map[string]interface{}{
					"run":       run,
					"artifacts": artifacts,
				})
			}

			recent, err := runs.ListRecent(ctx, limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tSOURCE\tREFINERY\tROWS\tCREATED")
			for _, r := range recent {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
					r.ID, r.Status, r.SourceFilename, r.RefineryVersion, r.CleanedRows,
					r.CreatedAt.Format(time.RFC3339))
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to list")

	return cmd
}
