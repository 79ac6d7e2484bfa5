// Package trainset turns cleaned (document, summary) pairs into JSON shards for the external trainer.
package trainset

import (
	"time"

	"github.com/google/uuid"
)

// FormatVersion is written into every shard
const FormatVersion = "1.0"

// Example is one training pair. RowIndex is the row's position in the prepared table.
type Example struct {
	RowIndex int    `json:"row_index"`
	Document string `json:"document"`
	Summary  string `json:"summary"`
}

// Shard is a bounded slice of a split, serialised as one JSON file
type Shard struct {
	Metadata ShardMetadata `json:"metadata"`
	Examples []Example     `json:"examples"`
	Stats    ShardStats    `json:"stats"`
}

// ShardMetadata describes where a shard came from
type ShardMetadata struct {
	RunID           uuid.UUID `json:"run_id"`
	Split           string    `json:"split"`
	ShardNumber     int       `json:"shard_number"`
	TotalShards     int       `json:"total_shards"`
	TotalExamples   int       `json:"total_examples"`
	DocumentColumn  string    `json:"document_column"`
	SummaryColumn   string    `json:"summary_column"`
	RefineryVersion string    `json:"refinery_version,omitempty"`
	GeneratedAt     time.Time `json:"generated_at"`
	Version         string    `json:"version"`
}

// ShardStats summarises a shard
type ShardStats struct {
	Examples         int     `json:"examples"`
	EstimatedTokens  int     `json:"estimated_tokens"`
	AvgDocumentWords float64 `json:"avg_document_words"`
	AvgSummaryWords  float64 `json:"avg_summary_words"`
}

// Config controls shard generation
type Config struct {
	// Maximum examples per shard
	ShardSize int `json:"shard_size"`

	DocumentColumn string `json:"document_column"`
	SummaryColumn  string `json:"summary_column"`

	// SkipEmpty leaves out pairs whose document or summary cleaned to ""
	SkipEmpty bool `json:"skip_empty"`

	// Compact mode: minimal whitespace
	Compact bool `json:"compact"`

	RefineryVersion string `json:"refinery_version,omitempty"`
}

// DefaultConfig uses the news dataset's column names
func DefaultConfig() Config {
	return Config{
		ShardSize:      1000,
		DocumentColumn: "long",
		SummaryColumn:  "short",
		Compact:        true,
	}
}

// WithShardSize creates a config with a custom shard size
func (c Config) WithShardSize(size int) Config {
	c.ShardSize = size
	return c
}
