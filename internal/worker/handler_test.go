package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruhan-islam/text-summarizer/internal/core/services/dataset"
	"github.com/ruhan-islam/text-summarizer/internal/infrastructure/queue"
	apperrors "github.com/ruhan-islam/text-summarizer/internal/pkg/errors"
	"github.com/ruhan-islam/text-summarizer/internal/pkg/logger"
)

type fakePreparer struct {
	got dataset.Request
	err error
}

func (f *fakePreparer) Prepare(ctx context.Context, req dataset.Request) (*dataset.Result, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &dataset.Result{RunID: req.RunID, Rows: 3}, nil
}

func prepareTask(t *testing.T) (*asynq.Task, queue.PreparePayload) {
	t.Helper()
	payload := queue.PreparePayload{
		RunID:      uuid.New(),
		SourcePath: "/data/news.csv",
		SourceName: "news.csv",
		Config:     dataset.DefaultConfig(),
	}
	task, err := queue.NewPrepareTask(payload)
	require.NoError(t, err)
	return task, payload
}

func TestPrepareHandler_ProcessTask(t *testing.T) {
	task, payload := prepareTask(t)
	preparer := &fakePreparer{}
	handler := NewPrepareHandler(preparer, logger.Discard())

	require.NoError(t, handler.ProcessTask(context.Background(), task))
	assert.Equal(t, payload.Request(), preparer.got)
}

func TestPrepareHandler_Errors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		skipRetry bool
	}{
		{"missing column is permanent", apperrors.ColumnNotFound("short"), true},
		{"unsupported format is permanent", apperrors.UnsupportedFormat(".parquet"), true},
		{"wrapped bad request is permanent", errors.Join(errors.New("ctx"), apperrors.BadRequest("bad split")), true},
		{"database errors are retried", apperrors.DatabaseError(errors.New("conn reset")), false},
		{"plain errors are retried", errors.New("disk full"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, _ := prepareTask(t)
			handler := NewPrepareHandler(&fakePreparer{err: tt.err}, logger.Discard())

			err := handler.ProcessTask(context.Background(), task)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, tt.skipRetry, errors.Is(err, asynq.SkipRetry))
		})
	}
}

func TestPrepareHandler_BadPayload(t *testing.T) {
	handler := NewPrepareHandler(&fakePreparer{}, logger.Discard())

	err := handler.ProcessTask(context.Background(), asynq.NewTask(queue.TaskTypePrepareDataset, []byte("{")))
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
