package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	apperrors "github.com/ruhan-islam/text-summarizer/internal/pkg/errors"
)

const (
	runsDir     = "runs"
	sourceDir   = "source"
	artifactDir = "artifacts"
)

// Artifact kinds written by a preparation run
const (
	KindSplits  = "splits"
	KindShards  = "shards"
	KindReports = "reports"
)

// LocalStorage keeps run inputs and outputs under basePath/runs/<run id>.
type LocalStorage struct {
	basePath string
	logger   *slog.Logger
}

// LocalStorageConfig configures local storage
type LocalStorageConfig struct {
	BasePath string // e.g. "./data"
}

// FileMetadata contains information about a stored source file
type FileMetadata struct {
	RunID        string
	OriginalName string
	StoredPath   string
	Size         int64
	Hash         string
	ContentType  string
	CreatedAt    time.Time
}

// NewLocalStorage creates a new local storage instance
func NewLocalStorage(cfg *LocalStorageConfig, logger *slog.Logger) (*LocalStorage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Join(cfg.BasePath, runsDir), 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &LocalStorage{
		basePath: cfg.BasePath,
		logger:   logger,
	}, nil
}

// SaveSource copies a dataset into the run's source directory, hashing it on the way.
func (s *LocalStorage) SaveSource(ctx context.Context, runID, filename string, reader io.Reader) (*FileMetadata, error) {
	dir := s.RunPath(runID, sourceDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create source directory: %w", err)
	}

	destPath := filepath.Join(dir, filepath.Base(filename))
	destFile, err := os.Create(destPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer destFile.Close()

	hash := sha256.New()
	size, err := io.Copy(io.MultiWriter(destFile, hash), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to copy file: %w", err)
	}

	metadata := &FileMetadata{
		RunID:        runID,
		OriginalName: filename,
		StoredPath:   destPath,
		Size:         size,
		Hash:         hex.EncodeToString(hash.Sum(nil)),
		ContentType:  getContentType(filename),
		CreatedAt:    time.Now(),
	}

	s.logger.Info("source saved",
		slog.String("run_id", runID),
		slog.String("filename", filename),
		slog.Int64("size", size),
		slog.String("hash", metadata.Hash))

	return metadata, nil
}

// OpenSource opens a stored source file.
func (s *LocalStorage) OpenSource(ctx context.Context, runID, filename string) (io.ReadCloser, error) {
	file, err := os.Open(s.SourcePath(runID, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.RecordNotFound(fmt.Sprintf("source %s of run %s", filename, runID))
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// SourcePath returns where SaveSource stores filename for a run.
func (s *LocalStorage) SourcePath(runID, filename string) string {
	return filepath.Join(s.RunPath(runID, sourceDir), filepath.Base(filename))
}

// SaveArtifact writes an output file (split, shard, report) and returns its path.
func (s *LocalStorage) SaveArtifact(ctx context.Context, runID, kind, name string, data []byte) (string, error) {
	dir := s.RunPath(runID, artifactDir, kind)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}

	path := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}

	s.logger.Debug("artifact saved",
		slog.String("run_id", runID),
		slog.String("kind", kind),
		slog.String("name", name),
		slog.Int("size", len(data)))

	return path, nil
}

// GetArtifact reads an artifact back
func (s *LocalStorage) GetArtifact(ctx context.Context, runID, kind, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.RunPath(runID, artifactDir, kind), filepath.Base(name)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.RecordNotFound(fmt.Sprintf("artifact %s/%s/%s", runID, kind, name))
		}
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	return data, nil
}

// ListArtifacts returns artifact names per kind, sorted.
func (s *LocalStorage) ListArtifacts(ctx context.Context, runID string) (map[string][]string, error) {
	root := s.RunPath(runID, artifactDir)
	result := make(map[string][]string)

	kinds, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return nil, fmt.Errorf("failed to read artifact directory: %w", err)
	}

	for _, kind := range kinds {
		if !kind.IsDir() {
			continue
		}

		files, err := os.ReadDir(filepath.Join(root, kind.Name()))
		if err != nil {
			continue
		}

		var names []string
		for _, f := range files {
			if !f.IsDir() {
				names = append(names, f.Name())
			}
		}
		if len(names) > 0 {
			sort.Strings(names)
			result[kind.Name()] = names
		}
	}

	return result, nil
}

// DeleteRun removes everything stored for a run
func (s *LocalStorage) DeleteRun(ctx context.Context, runID string) error {
	if err := os.RemoveAll(s.RunPath(runID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete run directory: %w", err)
	}

	s.logger.Info("run deleted", slog.String("run_id", runID))
	return nil
}

// CleanupOldRuns removes run directories not modified within olderThan and returns how many were removed.
func (s *LocalStorage) CleanupOldRuns(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	dir := filepath.Join(s.basePath, runsDir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	removed := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if !entry.IsDir() {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			s.logger.Warn("failed to get file info",
				slog.String("path", path),
				slog.Any("error", err))
			continue
		}

		if info.ModTime().Before(cutoff) {
			if err := os.RemoveAll(path); err != nil {
				s.logger.Warn("failed to remove run directory",
					slog.String("path", path),
					slog.Any("error", err))
				continue
			}
			removed++
		}
	}

	s.logger.Info("cleanup completed",
		slog.Duration("older_than", olderThan),
		slog.Int("removed", removed))

	return removed, nil
}

// RunPath joins elem under the run's directory.
func (s *LocalStorage) RunPath(runID string, elem ...string) string {
	parts := append([]string{s.basePath, runsDir, filepath.Base(runID)}, elem...)
	return filepath.Join(parts...)
}

func getContentType(filename string) string {
	switch filepath.Ext(filename) {
	case ".xlsx", ".xlsm":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".csv":
		return "text/csv"
	case ".json":
		return "application/json"
	case ".jsonl", ".ndjson", ".jsonnl":
		return "application/x-ndjson"
	default:
		return "application/octet-stream"
	}
}
