package queue

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/ruhan-islam/text-summarizer/internal/core/services/dataset"
)

// TaskTypePrepareDataset runs the full preparation of one stored source file
const TaskTypePrepareDataset = "dataset:prepare"

// PreparePayload is the body of a dataset:prepare task
type PreparePayload struct {
	RunID      uuid.UUID      `json:"run_id"`
	SourcePath string         `json:"source_path"`
	SourceName string         `json:"source_name"`
	SourceHash string         `json:"source_hash,omitempty"`
	Config     dataset.Config `json:"config"`
}

// NewPrepareTask encodes payload as a dataset:prepare task
func NewPrepareTask(payload PreparePayload) (*asynq.Task, error) {
	if payload.RunID == uuid.Nil {
		return nil, fmt.Errorf("prepare task needs a run id")
	}
	if payload.SourcePath == "" {
		return nil, fmt.Errorf("prepare task needs a source path")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode prepare payload: %w", err)
	}
	return asynq.NewTask(TaskTypePrepareDataset, data), nil
}

// ParsePreparePayload decodes a dataset:prepare task body
func ParsePreparePayload(task *asynq.Task) (PreparePayload, error) {
	var payload PreparePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("failed to decode prepare payload: %w", err)
	}
	if payload.RunID == uuid.Nil || payload.SourcePath == "" {
		return payload, fmt.Errorf("prepare payload is missing run_id or source_path")
	}
	return payload, nil
}

// Request converts the payload into a preparation request
func (p PreparePayload) Request() dataset.Request {
	return dataset.Request{
		RunID:      p.RunID,
		SourcePath: p.SourcePath,
		SourceName: p.SourceName,
		SourceHash: p.SourceHash,
		Config:     p.Config,
	}
}
