package repositories

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ruhan-islam/text-summarizer/internal/core/domain"
	"github.com/ruhan-islam/text-summarizer/internal/core/services/deduplication"
	apperrors "github.com/ruhan-islam/text-summarizer/internal/pkg/errors"
)

// lookupChunk bounds the number of parameters of one IN query
const lookupChunk = 1000

// DedupHashRepository implements deduplication.HashRepository using GORM
type DedupHashRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewDedupHashRepository creates a new repository instance
func NewDedupHashRepository(db *gorm.DB, logger *slog.Logger) *DedupHashRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &DedupHashRepository{
		db:     db,
		logger: logger,
	}
}

// ExistingHashes returns which hashes were kept by any run other than runID
func (r *DedupHashRepository) ExistingHashes(ctx context.Context, runID uuid.UUID, hashes []string) (map[string]bool, error) {
	found := make(map[string]bool)

	for start := 0; start < len(hashes); start += lookupChunk {
		end := min(start+lookupChunk, len(hashes))

		var matched []string
		err := r.db.WithContext(ctx).
			Model(&domain.DedupHash{}).
			Where("hash IN ? AND kept = ? AND run_id <> ?", hashes[start:end], true, runID).
			Distinct().
			Pluck("hash", &matched).
			Error
		if err != nil {
			r.logger.Error("failed to look up hashes",
				slog.String("run_id", runID.String()),
				slog.Any("error", err))
			return nil, apperrors.DatabaseError(err)
		}

		for _, h := range matched {
			found[h] = true
		}
	}

	return found, nil
}

// SaveHashes stores deduplication hashes for a run
func (r *DedupHashRepository) SaveHashes(ctx context.Context, runID uuid.UUID, hashes []deduplication.HashEntry) error {
	if len(hashes) == 0 {
		return nil
	}

	rows := make([]domain.DedupHash, 0, len(hashes))
	for _, entry := range hashes {
		rows = append(rows, domain.DedupHash{
			ID:               uuid.New(),
			RunID:            runID,
			Hash:             entry.Hash,
			OriginalRowIndex: entry.OriginalRowIndex,
			Kept:             entry.Kept,
		})
	}

	// explicit Select so that Kept=false is written instead of the column default
	err := r.db.WithContext(ctx).
		Select("*").
		CreateInBatches(rows, 1000).
		Error
	if err != nil {
		r.logger.Error("failed to save hashes",
			slog.String("run_id", runID.String()),
			slog.Int("hash_count", len(hashes)),
			slog.Any("error", err))
		return apperrors.DatabaseError(err)
	}

	r.logger.Info("saved deduplication hashes",
		slog.String("run_id", runID.String()),
		slog.Int("hash_count", len(hashes)))

	return nil
}

// GetRunHashes retrieves all hashes for a run, in row order
func (r *DedupHashRepository) GetRunHashes(ctx context.Context, runID uuid.UUID) ([]deduplication.HashEntry, error) {
	var rows []domain.DedupHash

	err := r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("original_row_index ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	entries := make([]deduplication.HashEntry, 0, len(rows))
	for _, dh := range rows {
		entries = append(entries, deduplication.HashEntry{
			Hash:             dh.Hash,
			OriginalRowIndex: dh.OriginalRowIndex,
			Kept:             dh.Kept,
		})
	}

	return entries, nil
}

// DeleteRunHashes removes all hashes for a run
func (r *DedupHashRepository) DeleteRunHashes(ctx context.Context, runID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Delete(&domain.DedupHash{}).
		Error
	if err != nil {
		return apperrors.DatabaseError(err)
	}

	r.logger.Info("deleted run hashes", slog.String("run_id", runID.String()))
	return nil
}

// GetDuplicateCount returns the number of rows dropped as duplicates in a run
func (r *DedupHashRepository) GetDuplicateCount(ctx context.Context, runID uuid.UUID) (int64, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&domain.DedupHash{}).
		Where("run_id = ? AND kept = ?", runID, false).
		Count(&count).
		Error
	if err != nil {
		return 0, apperrors.DatabaseError(err)
	}

	return count, nil
}
