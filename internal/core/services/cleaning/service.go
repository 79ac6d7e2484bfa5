// Package cleaning runs refinery pipelines over text and columns with an optional result cache.
package cleaning

import (
	"context"
	"log/slog"
	"time"

	"github.com/ruhan-islam/text-summarizer/internal/core/services/refinery"
	"github.com/ruhan-islam/text-summarizer/internal/observability/metrics"
)

// Cache stores cleaned text per refinery version, keyed by the raw input.
type Cache interface {
	GetMany(ctx context.Context, version string, texts []string) (map[string]string, error)
	SetMany(ctx context.Context, version string, entries map[string]string) error
}

// Service cleans text through a refinery pipeline. The cache is an optimisation only: lookup
// and store failures are logged and the rows are cleaned directly.
type Service struct {
	pipeline *refinery.Pipeline
	cache    Cache
	logger   *slog.Logger
}

// NewService creates a cleaning service. cache may be nil.
func NewService(pipeline *refinery.Pipeline, cache Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		pipeline: pipeline,
		cache:    cache,
		logger:   logger,
	}
}

// Pipeline returns the underlying pipeline.
func (s *Service) Pipeline() *refinery.Pipeline {
	return s.pipeline
}

// Version returns the refinery version results are produced under.
func (s *Service) Version() string {
	return s.pipeline.GetVersion()
}

// CleanText cleans a single text.
func (s *Service) CleanText(ctx context.Context, text string) string {
	start := time.Now()
	defer func() { metrics.RecordCleanDuration("text", time.Since(start)) }()

	if s.cache == nil {
		return s.pipeline.CleanText(text)
	}

	out, err := s.CleanColumn(ctx, "text", []string{text})
	if err != nil || len(out) != 1 {
		return s.pipeline.CleanText(text)
	}
	return out[0]
}

// CleanColumn cleans every row of column, preserving order and length. name labels metrics
// and logs.
func (s *Service) CleanColumn(ctx context.Context, name string, column []string) ([]string, error) {
	start := time.Now()
	version := s.pipeline.GetVersion()

	var (
		results []string
		err     error
	)
	if s.cache == nil {
		results, err = s.pipeline.CleanColumn(ctx, column)
	} else {
		results, err = s.cleanCached(ctx, s.pipeline.CacheVersion(), column)
	}
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	metrics.RecordCleanDuration("column", elapsed)
	metrics.RecordRowsCleaned(version, name, len(column))

	s.logger.Debug("column cleaned",
		slog.String("column", name),
		slog.String("refinery", version),
		slog.Int("rows", len(column)),
		slog.Duration("duration", elapsed))

	return results, nil
}

// cleanCached memoises under the pipeline's cache version, so differently configured
// pipelines sharing one Redis never read each other's entries.
func (s *Service) cleanCached(ctx context.Context, version string, column []string) ([]string, error) {
	unique := uniqueTexts(column)

	hits, err := s.cache.GetMany(ctx, version, unique)
	if err != nil {
		metrics.RecordCacheError()
		s.logger.Warn("clean cache lookup failed, cleaning without cache",
			slog.String("refinery", version),
			slog.Any("error", err))
		hits = map[string]string{}
	}

	misses := make([]string, 0, len(unique)-len(hits))
	for _, text := range unique {
		if _, ok := hits[text]; !ok {
			misses = append(misses, text)
		}
	}
	metrics.RecordCacheLookup(len(unique)-len(misses), len(misses))

	cleaned, err := s.pipeline.CleanColumn(ctx, misses)
	if err != nil {
		return nil, err
	}

	fresh := make(map[string]string, len(misses))
	for i, text := range misses {
		fresh[text] = cleaned[i]
		hits[text] = cleaned[i]
	}

	if err := s.cache.SetMany(ctx, version, fresh); err != nil {
		metrics.RecordCacheError()
		s.logger.Warn("clean cache store failed",
			slog.String("refinery", version),
			slog.Int("entries", len(fresh)),
			slog.Any("error", err))
	}

	results := make([]string, len(column))
	for i, text := range column {
		results[i] = hits[text]
	}
	return results, nil
}

// uniqueTexts returns the distinct values of column in first-seen order.
func uniqueTexts(column []string) []string {
	seen := make(map[string]struct{}, len(column))
	out := make([]string, 0, len(column))
	for _, text := range column {
		if _, ok := seen[text]; ok {
			continue
		}
		seen[text] = struct{}{}
		out = append(out, text)
	}
	return out
}
