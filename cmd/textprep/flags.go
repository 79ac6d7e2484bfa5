package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ruhan-islam/text-summarizer/internal/core/services/dataset"
)

// datasetFlags are shared by prepare and enqueue
type datasetFlags struct {
	file           string
	summaryColumn  string
	documentColumn string
	clean          []string
	noUnescape     bool
	dedup          bool
	crossRun       bool
	splits         string
	format         string
	noShards       bool
	shardSize      int
}

func (f *datasetFlags) bind(cmd *cobra.Command) {
	defaults := dataset.DefaultConfig()

	cmd.Flags().StringVarP(&f.file, "file", "f", "", "source dataset (.csv, .xlsx, .json, .jsonl)")
	cmd.Flags().StringVar(&f.summaryColumn, "summary-column", defaults.SummaryColumn, "summary column")
	cmd.Flags().StringVar(&f.documentColumn, "document-column", defaults.DocumentColumn, "document column")
	cmd.Flags().StringSliceVar(&f.clean, "clean", nil, "columns to clean (default both)")
	cmd.Flags().BoolVar(&f.noUnescape, "no-unescape", false, "keep &#34; &#39; &amp; in the raw text")
	cmd.Flags().BoolVar(&f.dedup, "dedup", false, "drop duplicate summary/document pairs")
	cmd.Flags().BoolVar(&f.crossRun, "cross-run", false, "also drop pairs kept by earlier runs (needs --persist)")
	cmd.Flags().StringVar(&f.splits, "splits", formatSplits(defaults.Splits), "comma separated name:start:size ranges")
	cmd.Flags().StringVar(&f.format, "format", defaults.OutputFormat, "split file format (csv, jsonl, xlsx)")
	cmd.Flags().BoolVar(&f.noShards, "no-shards", false, "skip JSON training shards")
	cmd.Flags().IntVar(&f.shardSize, "shard-size", defaults.ShardSize, "examples per training shard")
	_ = cmd.MarkFlagRequired("file")
}

func (f *datasetFlags) config() (dataset.Config, error) {
	splits, err := parseSplits(f.splits)
	if err != nil {
		return dataset.Config{}, err
	}

	cfg := dataset.DefaultConfig()
	cfg.SummaryColumn = f.summaryColumn
	cfg.DocumentColumn = f.documentColumn
	if len(f.clean) > 0 {
		cfg.CleanColumns = f.clean
	}
	cfg.UnescapeEntities = !f.noUnescape
	cfg.Dedup = f.dedup || f.crossRun
	cfg.CrossRunDedup = f.crossRun
	cfg.Splits = splits
	cfg.OutputFormat = f.format
	cfg.WriteShards = !f.noShards
	cfg.ShardSize = f.shardSize
	return cfg, nil
}

// parseSplits reads "train:35000:20000,val:20000:15000". An empty string means no splits.
func parseSplits(s string) ([]dataset.Split, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	var splits []dataset.Split
	for _, part := range strings.Split(s, ",") {
		fields := strings.Split(strings.TrimSpace(part), ":")
		if len(fields) != 3 {
			return nil, fmt.Errorf("invalid split %q, want name:start:size", part)
		}
		start, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("invalid start in split %q: %w", part, err)
		}
		size, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("invalid size in split %q: %w", part, err)
		}
		splits = append(splits, dataset.Split{Name: fields[0], Start: start, Size: size})
	}

	return splits, dataset.ValidateSplits(splits)
}

func formatSplits(splits []dataset.Split) string {
	parts := make([]string, len(splits))
	for i, s := range splits {
		parts[i] = fmt.Sprintf("%s:%d:%d", s.Name, s.Start, s.Size)
	}
	return strings.Join(parts, ",")
}
