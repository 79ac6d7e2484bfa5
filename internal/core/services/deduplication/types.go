package deduplication

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Strategy defines how far deduplication looks for earlier copies
type Strategy string

const (
	StrategyWithinRun Strategy = "within_run" // Exact match within one run
	StrategyCrossRun  Strategy = "cross_run"  // Also drop pairs kept by earlier runs
)

// Record is one cleaned row to be deduplicated
type Record struct {
	RowIndex int                    `json:"row_index"`
	Data     map[string]interface{} `json:"data"`
	Hash     string                 `json:"hash,omitempty"`
}

// DeduplicationResult contains the result of deduplication
type DeduplicationResult struct {
	OriginalCount     int                `json:"original_count"`
	DeduplicatedCount int                `json:"deduplicated_count"`
	RemovedCount      int                `json:"removed_count"`
	Strategy          Strategy           `json:"strategy"`
	Records           []Record           `json:"records"`
	Stats             DeduplicationStats `json:"stats"`
}

// DeduplicationStats provides detailed statistics
type DeduplicationStats struct {
	WithinRunDuplicates int   `json:"within_run_duplicates"`
	CrossRunDuplicates  int   `json:"cross_run_duplicates"`
	UniqueRecords       int   `json:"unique_records"`
	ProcessingTimeMs    int64 `json:"processing_time_ms"`
}

// Config for deduplication service
type Config struct {
	Strategy       Strategy `json:"strategy"`
	Fields         []string `json:"fields"`          // Fields to use for hashing
	StoreHashes    bool     `json:"store_hashes"`    // Persist hashes through the HashRepository
	CaseSensitive  bool     `json:"case_sensitive"`  // Case-sensitive comparison
	TrimWhitespace bool     `json:"trim_whitespace"` // Trim whitespace before hashing
}

// DefaultConfig hashes the cleaned summary/document pair within a run.
func DefaultConfig() Config {
	return Config{
		Strategy:       StrategyWithinRun,
		Fields:         []string{"short", "long"},
		StoreHashes:    true,
		CaseSensitive:  false,
		TrimWhitespace: true,
	}
}

// HashRepository stores pair hashes across runs
type HashRepository interface {
	// ExistingHashes returns which of hashes were kept by runs other than runID
	ExistingHashes(ctx context.Context, runID uuid.UUID, hashes []string) (map[string]bool, error)

	// SaveHashes stores deduplication hashes for a run
	SaveHashes(ctx context.Context, runID uuid.UUID, hashes []HashEntry) error

	// GetRunHashes retrieves all hashes for a run
	GetRunHashes(ctx context.Context, runID uuid.UUID) ([]HashEntry, error)
}

// HashEntry represents a hash entry to be stored
type HashEntry struct {
	Hash             string
	OriginalRowIndex int
	Kept             bool
}

// Deduplicator defines the interface for deduplication operations
type Deduplicator interface {
	Deduplicate(ctx context.Context, runID uuid.UUID, records []Record) (*DeduplicationResult, error)
	GetConfig() Config
}

// generateHash creates a SHA256 hash over the JSON encoding of the selected fields
func generateHash(record Record, fields []string, config Config) (string, error) {
	hashData := make(map[string]interface{}, len(fields))

	for _, field := range fields {
		if val, exists := record.Data[field]; exists {
			hashData[field] = normalizeValue(val, config)
		}
	}

	// map keys are marshalled in sorted order
	jsonData, err := json.Marshal(hashData)
	if err != nil {
		return "", fmt.Errorf("failed to marshal hash data: %w", err)
	}

	hash := sha256.Sum256(jsonData)
	return hex.EncodeToString(hash[:]), nil
}

func normalizeValue(val interface{}, config Config) interface{} {
	strVal, ok := val.(string)
	if !ok {
		return val
	}

	if config.TrimWhitespace {
		strVal = strings.TrimSpace(strVal)
	}
	if !config.CaseSensitive {
		strVal = strings.ToLower(strVal)
	}

	return strVal
}
