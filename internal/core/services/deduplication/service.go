package deduplication

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ruhan-islam/text-summarizer/internal/observability/metrics"
)

// Service implements the Deduplicator interface
type Service struct {
	config   Config
	hashRepo HashRepository
	logger   *slog.Logger
}

// NewService creates a new deduplication service. hashRepo may be nil.
func NewService(config Config, hashRepo HashRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		config:   config,
		hashRepo: hashRepo,
		logger:   logger,
	}
}

// GetConfig returns the current configuration
func (s *Service) GetConfig() Config {
	return s.config
}

// Deduplicate drops repeated pairs, keeping the first occurrence. Record order is preserved and
// the Hash of every input record is filled in.
func (s *Service) Deduplicate(ctx context.Context, runID uuid.UUID, records []Record) (*DeduplicationResult, error) {
	startTime := time.Now()

	s.logger.Info("starting deduplication",
		slog.String("run_id", runID.String()),
		slog.Int("record_count", len(records)),
		slog.String("strategy", string(s.config.Strategy)))

	if len(records) == 0 {
		return &DeduplicationResult{
			Strategy: s.config.Strategy,
			Records:  []Record{},
		}, nil
	}

	if err := s.generateHashes(ctx, records); err != nil {
		return nil, fmt.Errorf("failed to generate hashes: %w", err)
	}

	// Level 1: within the run
	finalRecords, withinRun := s.deduplicateWithinRun(records)

	// Level 2: against earlier runs
	crossRun := 0
	if s.config.Strategy == StrategyCrossRun && s.hashRepo != nil {
		finalRecords, crossRun = s.deduplicateCrossRun(ctx, runID, finalRecords)
	}

	if s.config.StoreHashes && s.hashRepo != nil {
		if err := s.storeHashes(ctx, runID, records, finalRecords); err != nil {
			// the cleaned output does not depend on stored hashes
			s.logger.Error("failed to store hashes", slog.Any("error", err))
		}
	}

	processingTime := time.Since(startTime).Milliseconds()
	result := &DeduplicationResult{
		OriginalCount:     len(records),
		DeduplicatedCount: len(finalRecords),
		RemovedCount:      len(records) - len(finalRecords),
		Strategy:          s.config.Strategy,
		Records:           finalRecords,
		Stats: DeduplicationStats{
			WithinRunDuplicates: withinRun,
			CrossRunDuplicates:  crossRun,
			UniqueRecords:       len(finalRecords),
			ProcessingTimeMs:    processingTime,
		},
	}

	metrics.RecordDuplicates(result.RemovedCount)

	s.logger.Info("deduplication completed",
		slog.Int("original_count", result.OriginalCount),
		slog.Int("final_count", result.DeduplicatedCount),
		slog.Int("removed_count", result.RemovedCount),
		slog.Int64("processing_time_ms", processingTime))

	return result, nil
}

func (s *Service) deduplicateWithinRun(records []Record) ([]Record, int) {
	seen := make(map[string]bool, len(records))
	unique := make([]Record, 0, len(records))
	duplicates := 0

	for _, record := range records {
		if seen[record.Hash] {
			duplicates++
			s.logger.Debug("duplicate within run",
				slog.String("hash", record.Hash),
				slog.Int("row_index", record.RowIndex))
			continue
		}
		seen[record.Hash] = true
		unique = append(unique, record)
	}

	return unique, duplicates
}

// deduplicateCrossRun fails open: when the lookup fails every record is kept.
func (s *Service) deduplicateCrossRun(ctx context.Context, runID uuid.UUID, records []Record) ([]Record, int) {
	hashes := make([]string, len(records))
	for i, r := range records {
		hashes[i] = r.Hash
	}

	existing, err := s.hashRepo.ExistingHashes(ctx, runID, hashes)
	if err != nil {
		s.logger.Error("failed to check hashes of earlier runs", slog.Any("error", err))
		return records, 0
	}

	unique := make([]Record, 0, len(records))
	duplicates := 0
	for _, record := range records {
		if existing[record.Hash] {
			duplicates++
			continue
		}
		unique = append(unique, record)
	}

	return unique, duplicates
}

func (s *Service) generateHashes(ctx context.Context, records []Record) error {
	for i := range records {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		hash, err := generateHash(records[i], s.config.Fields, s.config)
		if err != nil {
			return fmt.Errorf("failed to hash record %d: %w", records[i].RowIndex, err)
		}
		records[i].Hash = hash
	}
	return nil
}

// storeHashes saves one entry per input record, flagged with whether it was kept.
func (s *Service) storeHashes(ctx context.Context, runID uuid.UUID, all, kept []Record) error {
	keptRows := make(map[int]bool, len(kept))
	for _, r := range kept {
		keptRows[r.RowIndex] = true
	}

	entries := make([]HashEntry, len(all))
	for i, r := range all {
		entries[i] = HashEntry{
			Hash:             r.Hash,
			OriginalRowIndex: r.RowIndex,
			Kept:             keptRows[r.RowIndex],
		}
	}

	return s.hashRepo.SaveHashes(ctx, runID, entries)
}
