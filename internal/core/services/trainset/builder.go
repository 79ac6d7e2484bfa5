package trainset

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ruhan-islam/text-summarizer/internal/infrastructure/tabular"
)

// Builder splits examples into shards
type Builder struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewBuilder creates a new shard builder
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{logger: logger, now: time.Now}
}

// ExamplesFromTable reads the document and summary columns. offset is added to each row index.
func ExamplesFromTable(table *tabular.Table, config Config, offset int) ([]Example, error) {
	docs, err := table.Column(config.DocumentColumn)
	if err != nil {
		return nil, err
	}
	sums, err := table.Column(config.SummaryColumn)
	if err != nil {
		return nil, err
	}

	examples := make([]Example, 0, len(docs))
	for i := range docs {
		ex := Example{
			RowIndex: offset + i,
			Document: tabular.FormatCell(docs[i]),
			Summary:  tabular.FormatCell(sums[i]),
		}
		if config.SkipEmpty && (ex.Document == "" || ex.Summary == "") {
			continue
		}
		examples = append(examples, ex)
	}
	return examples, nil
}

// Build splits examples into shards of at most config.ShardSize. No examples give no shards.
func (b *Builder) Build(runID uuid.UUID, split string, examples []Example, config Config) ([]*Shard, error) {
	if config.ShardSize <= 0 {
		return nil, fmt.Errorf("shard_size must be greater than 0")
	}

	total := len(examples)
	totalShards := (total + config.ShardSize - 1) / config.ShardSize
	shards := make([]*Shard, 0, totalShards)
	generatedAt := b.now().UTC()

	for i := 0; i < totalShards; i++ {
		start := i * config.ShardSize
		end := min(start+config.ShardSize, total)

		shard := &Shard{
			Metadata: ShardMetadata{
				RunID:           runID,
				Split:           split,
				ShardNumber:     i + 1,
				TotalShards:     totalShards,
				TotalExamples:   total,
				DocumentColumn:  config.DocumentColumn,
				SummaryColumn:   config.SummaryColumn,
				RefineryVersion: config.RefineryVersion,
				GeneratedAt:     generatedAt,
				Version:         FormatVersion,
			},
			Examples: examples[start:end],
		}
		shard.Stats = b.stats(shard)
		shards = append(shards, shard)
	}

	b.logger.Info("training shards built",
		slog.String("split", split),
		slog.Int("examples", total),
		slog.Int("shards", len(shards)))

	return shards, nil
}

func (b *Builder) stats(shard *Shard) ShardStats {
	stats := ShardStats{Examples: len(shard.Examples)}
	if len(shard.Examples) == 0 {
		return stats
	}

	docWords, sumWords := 0, 0
	for _, ex := range shard.Examples {
		docWords += len(strings.Fields(ex.Document))
		sumWords += len(strings.Fields(ex.Summary))
	}
	n := float64(len(shard.Examples))
	stats.AvgDocumentWords = float64(docWords) / n
	stats.AvgSummaryWords = float64(sumWords) / n
	stats.EstimatedTokens = b.EstimateTokenCount(shard)
	return stats
}

// EstimateTokenCount gives a rough token count: about 4 characters per token of
// document and summary text, plus a fixed overhead per example for special tokens.
func (b *Builder) EstimateTokenCount(shard *Shard) int {
	const perExampleOverhead = 4

	chars := 0
	for _, ex := range shard.Examples {
		chars += len(ex.Document) + len(ex.Summary)
	}
	return chars/4 + perExampleOverhead*len(shard.Examples)
}

// ValidateShard checks a shard before it is written
func (b *Builder) ValidateShard(shard *Shard) error {
	if shard == nil {
		return fmt.Errorf("shard is nil")
	}
	if len(shard.Examples) == 0 {
		return fmt.Errorf("no examples in shard")
	}
	if shard.Metadata.ShardNumber < 1 || shard.Metadata.ShardNumber > shard.Metadata.TotalShards {
		return fmt.Errorf("shard number %d out of range 1..%d", shard.Metadata.ShardNumber, shard.Metadata.TotalShards)
	}

	seen := make(map[int]bool, len(shard.Examples))
	for _, ex := range shard.Examples {
		if seen[ex.RowIndex] {
			return fmt.Errorf("duplicate row_index: %d", ex.RowIndex)
		}
		seen[ex.RowIndex] = true
	}
	return nil
}

// ToJSON serializes a shard
func (b *Builder) ToJSON(shard *Shard, compact bool) ([]byte, error) {
	if compact {
		return json.Marshal(shard)
	}
	return json.MarshalIndent(shard, "", "  ")
}

// ShardName is the artifact file name of a shard, e.g. "train_0001.json".
func ShardName(split string, number int) string {
	return fmt.Sprintf("%s_%04d.json", split, number)
}
