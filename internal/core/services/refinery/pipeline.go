package refinery

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/ruhan-islam/text-summarizer/internal/pkg/errors"
)

// Stage names accepted by Pipeline.Stage.
const (
	StageNormalize = "normalize"
	StageSanitize  = "sanitize"
	StageStopwords = "stopwords"
	StageAll       = "all"
)

// stagedRefinery is implemented by refineries that expose their stages individually.
type stagedRefinery interface {
	Normalize(text string) string
	Sanitize(text string) string
	FilterStopwords(text string) string
}

// fingerprinter is implemented by refineries whose output depends on configuration beyond the version.
type fingerprinter interface {
	Fingerprint() string
}

// Pipeline orchestrates the text cleaning process using a specific refinery
type Pipeline struct {
	refinery     BaseRefinery
	version      string
	cacheVersion string
	workers      int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithWorkers bounds CleanColumn's concurrency. n <= 0 means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// NewPipeline creates a new refinery pipeline.
// refineryType can be a version (e.g., "v1") or an alias (e.g., "english")
func NewPipeline(refineryType string, customConfig map[string]interface{}, opts ...Option) (*Pipeline, error) {
	refinery, err := Create(refineryType, customConfig)
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create refinery: %w", err)
	}

	return NewPipelineFor(refinery, opts...), nil
}

// NewPipelineFor wraps an already constructed refinery.
func NewPipelineFor(refinery BaseRefinery, opts ...Option) *Pipeline {
	p := &Pipeline{
		refinery:     refinery,
		version:      refinery.GetVersion(),
		cacheVersion: refinery.GetVersion(),
		workers:      runtime.GOMAXPROCS(0),
	}
	if fp, ok := refinery.(fingerprinter); ok {
		p.cacheVersion = p.version + ":" + fp.Fingerprint()[:12]
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CleanText processes a single text string
func (p *Pipeline) CleanText(text string) string {
	return p.refinery.Process(text)
}

// CleanValue coerces a scalar cell value to text and cleans it. Missing values are rejected.
func (p *Pipeline) CleanValue(v interface{}) (string, error) {
	text, err := CoerceText(v)
	if err != nil {
		return "", err
	}
	return p.refinery.Process(text), nil
}

// CleanBatch processes a batch of texts sequentially
func (p *Pipeline) CleanBatch(texts []string) []string {
	results := make([]string, len(texts))
	for i, text := range texts {
		results[i] = p.refinery.Process(text)
	}
	return results
}

// CleanColumn cleans every row of column on a bounded worker pool. results[i] is always the
// cleaned column[i]; rows never see each other. The only error is ctx cancellation.
func (p *Pipeline) CleanColumn(ctx context.Context, column []string) ([]string, error) {
	results := make([]string, len(column))
	if len(column) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	chunk := chunkSize(len(column), p.workers)
	for start := 0; start < len(column); start += chunk {
		if gctx.Err() != nil {
			break
		}

		end := min(start+chunk, len(column))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				results[i] = p.refinery.Process(column[i])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// chunkSize aims for a few chunks per worker so slow rows do not stall one goroutine.
func chunkSize(rows, workers int) int {
	size := rows / (workers * 4)
	if size < 1 {
		return 1
	}
	return size
}

// Stage returns a single stage of the refinery, or the whole pipeline for StageAll.
func (p *Pipeline) Stage(name string) (ProcessingStep, error) {
	if name == StageAll || name == "" {
		return p.refinery.Process, nil
	}

	staged, ok := p.refinery.(stagedRefinery)
	if !ok {
		return nil, apperrors.BadRequest(fmt.Sprintf("refinery %s does not expose individual stages", p.version))
	}

	switch name {
	case StageNormalize:
		return staged.Normalize, nil
	case StageSanitize:
		return staged.Sanitize, nil
	case StageStopwords:
		return staged.FilterStopwords, nil
	default:
		return nil, apperrors.BadRequest(fmt.Sprintf("unknown stage %q", name))
	}
}

// GetVersion returns the refinery version being used
func (p *Pipeline) GetVersion() string {
	return p.version
}

// CacheVersion namespaces memoised output. Pipelines of the same version but with different
// stopwords or stage flags get different values.
func (p *Pipeline) CacheVersion() string {
	return p.cacheVersion
}

// GetName returns the refinery name
func (p *Pipeline) GetName() string {
	return p.refinery.GetName()
}

// GetDescription returns the refinery description
func (p *Pipeline) GetDescription() string {
	return p.refinery.GetDescription()
}

// GetPipelineSteps returns the processing steps
func (p *Pipeline) GetPipelineSteps() []string {
	return p.refinery.GetPipelineSteps()
}

// Workers returns the CleanColumn concurrency bound.
func (p *Pipeline) Workers() int {
	return p.workers
}
