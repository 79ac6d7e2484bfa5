// Package worker processes queued dataset preparations.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/ruhan-islam/text-summarizer/internal/core/services/dataset"
	"github.com/ruhan-islam/text-summarizer/internal/infrastructure/queue"
	apperrors "github.com/ruhan-islam/text-summarizer/internal/pkg/errors"
)

// Preparer runs one dataset preparation
type Preparer interface {
	Prepare(ctx context.Context, req dataset.Request) (*dataset.Result, error)
}

// PrepareHandler handles dataset:prepare tasks
type PrepareHandler struct {
	preparer Preparer
	logger   *slog.Logger
}

// NewPrepareHandler creates a handler backed by preparer
func NewPrepareHandler(preparer Preparer, logger *slog.Logger) *PrepareHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PrepareHandler{preparer: preparer, logger: logger}
}

// ProcessTask implements asynq.Handler. Errors caused by the input are not retried.
func (h *PrepareHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	payload, err := queue.ParsePreparePayload(task)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	logger := h.logger.With(slog.String("run_id", payload.RunID.String()))
	if id, ok := asynq.GetTaskID(ctx); ok {
		logger = logger.With(slog.String("task_id", id))
	}
	if retry, ok := asynq.GetRetryCount(ctx); ok && retry > 0 {
		logger.Info("retrying dataset preparation", slog.Int("retry", retry))
	}

	result, err := h.preparer.Prepare(ctx, payload.Request())
	if err != nil {
		if permanent(err) {
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		return err
	}

	logger.Info("dataset task completed",
		slog.Int("rows", result.Rows),
		slog.Int("splits", len(result.Splits)))

	if w := task.ResultWriter(); w != nil {
		if _, err := w.Write([]byte(result.RunID.String())); err != nil {
			logger.Warn("failed to write task result", slog.Any("error", err))
		}
	}
	return nil
}

// permanent reports whether retrying err cannot succeed
func permanent(err error) bool {
	for _, code := range []apperrors.ErrorCode{
		apperrors.ErrCodeBadRequest,
		apperrors.ErrCodeInvalidInput,
		apperrors.ErrCodeInvalidFile,
		apperrors.ErrCodeFileTooLarge,
		apperrors.ErrCodeUnsupportedFormat,
		apperrors.ErrCodeFileParseError,
		apperrors.ErrCodeColumnNotFound,
		apperrors.ErrCodePreconditionViolation,
	} {
		if apperrors.HasCode(err, code) {
			return true
		}
	}
	return false
}
