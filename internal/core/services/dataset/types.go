// Package dataset prepares a raw news dataset for summarization training: load, clean,
// deduplicate, describe and split.
package dataset

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ruhan-islam/text-summarizer/internal/core/domain"
)

// Split is an index range [Start, Start+Size) of the prepared table.
type Split struct {
	Name  string `json:"name"`
	Start int    `json:"start"`
	Size  int    `json:"size"`
}

// DefaultSplits are the ranges the news dataset was trained, validated and tested on.
// They overlap; callers wanting disjoint splits pass their own.
func DefaultSplits() []Split {
	return []Split{
		{Name: "train", Start: 35000, Size: 20000},
		{Name: "val", Start: 20000, Size: 15000},
		{Name: "test", Start: 10000, Size: 10000},
	}
}

// Config controls one preparation run
type Config struct {
	SummaryColumn  string `json:"summary_column"`
	DocumentColumn string `json:"document_column"`

	// CleanColumns lists the columns run through the refinery. nil means both.
	CleanColumns []string `json:"clean_columns"`

	// UnescapeEntities replaces &#34;, &#39; and &amp; in the raw text before anything else.
	UnescapeEntities bool `json:"unescape_entities"`

	Dedup bool `json:"dedup"`
	// CrossRunDedup also drops pairs kept by earlier runs. Implies Dedup; needs a hash repository.
	CrossRunDedup bool `json:"cross_run_dedup"`

	Splits []Split `json:"splits"`

	// OutputFormat is the split file format: csv, jsonl or xlsx
	OutputFormat string `json:"output_format"`

	WriteShards bool `json:"write_shards"`
	ShardSize   int  `json:"shard_size"`
}

// DefaultConfig matches the news dataset layout
func DefaultConfig() Config {
	return Config{
		SummaryColumn:    "short",
		DocumentColumn:   "long",
		UnescapeEntities: true,
		Splits:           DefaultSplits(),
		OutputFormat:     "csv",
		WriteShards:      true,
		ShardSize:        1000,
	}
}

// Request asks for one source file to be prepared
type Request struct {
	// RunID identifies the run; a new one is generated when zero
	RunID uuid.UUID

	SourcePath string
	// SourceName is the user-facing file name; defaults to the base of SourcePath
	SourceName string
	// SourceHash is the sha256 of the source; computed when empty
	SourceHash string

	Config Config
}

// WordStats describes the whitespace-separated word counts of a column
type WordStats struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	P25   float64 `json:"25%"`
	P50   float64 `json:"50%"`
	P75   float64 `json:"75%"`
	Max   float64 `json:"max"`
}

// SplitResult describes a written split
type SplitResult struct {
	Name     string   `json:"name"`
	Start    int      `json:"start"`
	End      int      `json:"end"`
	Rows     int      `json:"rows"`
	Artifact string   `json:"artifact"`
	Shards   []string `json:"shards,omitempty"`
}

// Result summarises a finished run
type Result struct {
	RunID           uuid.UUID            `json:"run_id"`
	RefineryVersion string               `json:"refinery_version"`
	SourceName      string               `json:"source_name"`
	SourceHash      string               `json:"source_hash"`
	SourceRows      int                  `json:"source_rows"`
	DroppedRows     int                  `json:"dropped_rows"`
	DuplicateRows   int                  `json:"duplicate_rows"`
	Rows            int                  `json:"rows"`
	Stats           map[string]WordStats `json:"stats"`
	Splits          []SplitResult        `json:"splits"`
	Duration        time.Duration        `json:"duration_ns"`
}

// Cleaner cleans a column through a refinery, preserving order and length
type Cleaner interface {
	CleanColumn(ctx context.Context, name string, column []string) ([]string, error)
	Version() string
}

// ArtifactStore receives split, shard and report files
type ArtifactStore interface {
	SaveArtifact(ctx context.Context, runID, kind, name string, data []byte) (string, error)
}

// RunRepository tracks run status
type RunRepository interface {
	Create(ctx context.Context, run *domain.Run) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Save(ctx context.Context, run *domain.Run) error
}
