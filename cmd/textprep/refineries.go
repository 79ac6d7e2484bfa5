package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ruhan-islam/text-summarizer/internal/core/services/refinery"
)

func newRefineriesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refineries",
		Short: "List registered refineries",
		RunE: func(cmd *cobra.Command, args []string) error {
			meta := refinery.ListAvailableWithMetadata()

			versions := make([]string, 0, len(meta))
			for v := range meta {
				versions = append(versions, v)
			}
			sort.Strings(versions)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tNAME\tALIASES\tSTEPS")
			for _, v := range versions {
				m := meta[v]
				if errMsg, ok := m["error"].(string); ok {
					fmt.Fprintf(w, "%s\t(error: %s)\t\t\n", v, errMsg)
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", v, m["name"],
					strings.Join(stringList(m["aliases"]), ","),
					strings.Join(stringList(m["steps"]), " > "))
			}
			return w.Flush()
		},
	}
}

func stringList(v interface{}) []string {
	s, _ := v.([]string)
	return s
}
