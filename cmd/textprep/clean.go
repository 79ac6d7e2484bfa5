package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ruhan-islam/text-summarizer/internal/core/services/refinery"
)

func newCleanCmd(a *app) *cobra.Command {
	var (
		refineryID string
		stage      string
	)

	cmd := &cobra.Command{
		Use:   "clean [text...]",
		Short: "Clean text from arguments or stdin, one result per line",
		Example: `  textprep clean "I'm so sooo happy!! It's \$5"
  textprep clean --stage normalize < headlines.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			lines := args
			if len(lines) == 0 {
				var err error
				lines, err = readLines(cmd.InOrStdin())
				if err != nil {
					return err
				}
			}

			cleaner, cleanup, err := a.newCleaner(refineryID)
			if err != nil {
				return err
			}
			defer cleanup()

			var out []string
			if stage == refinery.StageAll {
				out, err = cleaner.CleanColumn(cmd.Context(), "cli", lines)
				if err != nil {
					return err
				}
			} else {
				step, err := cleaner.Pipeline().Stage(stage)
				if err != nil {
					return err
				}
				out = make([]string, len(lines))
				for i, line := range lines {
					out[i] = step(line)
				}
			}

			w := bufio.NewWriter(cmd.OutOrStdout())
			for _, line := range out {
				fmt.Fprintln(w, line)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&refineryID, "refinery", "", "refinery version or alias (default from REFINERY_VERSION)")
	cmd.Flags().StringVar(&stage, "stage", refinery.StageAll,
		strings.Join([]string{refinery.StageNormalize, refinery.StageSanitize, refinery.StageStopwords, refinery.StageAll}, "|"))

	return cmd
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return lines, nil
}

func openFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}
