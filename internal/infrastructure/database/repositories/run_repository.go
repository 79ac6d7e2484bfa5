package repositories

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ruhan-islam/text-summarizer/internal/core/domain"
	apperrors "github.com/ruhan-islam/text-summarizer/internal/pkg/errors"
)

// RunRepository persists preparation runs
type RunRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewRunRepository creates a new repository instance
func NewRunRepository(db *gorm.DB, logger *slog.Logger) *RunRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &RunRepository{db: db, logger: logger}
}

// Create inserts a run; the ID is generated when unset
func (r *RunRepository) Create(ctx context.Context, run *domain.Run) error {
	if run.Status == "" {
		run.Status = domain.RunStatusUploaded
	}
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return apperrors.DatabaseError(err)
	}

	r.logger.Debug("run created",
		slog.String("run_id", run.ID.String()),
		slog.String("source", run.SourceFilename))
	return nil
}

// Save writes every field of run
func (r *RunRepository) Save(ctx context.Context, run *domain.Run) error {
	if err := r.db.WithContext(ctx).Save(run).Error; err != nil {
		return apperrors.DatabaseError(err)
	}
	return nil
}

// UpdateStatus moves a run to status. Terminal statuses also set completed_at.
func (r *RunRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	if !domain.IsValidStatus(status) {
		return apperrors.BadRequest("invalid run status: " + status)
	}

	updates := map[string]interface{}{"status": status}
	if domain.IsTerminalStatus(status) {
		updates["completed_at"] = time.Now().UTC()
	}

	result := r.db.WithContext(ctx).
		Model(&domain.Run{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return apperrors.DatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.RecordNotFound("run " + id.String())
	}

	r.logger.Debug("run status updated",
		slog.String("run_id", id.String()),
		slog.String("status", status))
	return nil
}

// GetByID loads a run
func (r *RunRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	var run domain.Run
	err := r.db.WithContext(ctx).First(&run, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.RecordNotFound("run " + id.String())
		}
		return nil, apperrors.DatabaseError(err)
	}
	return &run, nil
}

// ListRecent returns the latest runs, newest first
func (r *RunRepository) ListRecent(ctx context.Context, limit int) ([]domain.Run, error) {
	var runs []domain.Run
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).
		Error
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return runs, nil
}

// FindCompleted returns the most recent completed run of a source under a refinery version.
func (r *RunRepository) FindCompleted(ctx context.Context, sourceHash, refineryVersion string) (*domain.Run, error) {
	var run domain.Run
	err := r.db.WithContext(ctx).
		Where("source_hash = ? AND refinery_version = ? AND status = ?", sourceHash, refineryVersion, domain.RunStatusCompleted).
		Order("created_at DESC").
		First(&run).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.RecordNotFound("completed run for " + sourceHash)
		}
		return nil, apperrors.DatabaseError(err)
	}
	return &run, nil
}

// Delete removes a run and, by cascade, its hashes
func (r *RunRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&domain.Run{}, "id = ?", id).Error; err != nil {
		return apperrors.DatabaseError(err)
	}
	return nil
}
