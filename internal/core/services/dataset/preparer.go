package dataset

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ruhan-islam/text-summarizer/internal/core/domain"
	"github.com/ruhan-islam/text-summarizer/internal/core/services/deduplication"
	"github.com/ruhan-islam/text-summarizer/internal/core/services/refinery"
	"github.com/ruhan-islam/text-summarizer/internal/core/services/trainset"
	"github.com/ruhan-islam/text-summarizer/internal/infrastructure/storage"
	"github.com/ruhan-islam/text-summarizer/internal/infrastructure/tabular"
	"github.com/ruhan-islam/text-summarizer/internal/observability/metrics"
	apperrors "github.com/ruhan-islam/text-summarizer/internal/pkg/errors"
)

// ReportName is the artifact name of the run report
const ReportName = "report.json"

var entityReplacements = []struct{ old, new string }{
	{"&#34;", "'"},
	{"&#39;", "'"},
	{"&amp;", "&"},
}

// Dependencies wires a Preparer. Cleaner and Store are required.
type Dependencies struct {
	Cleaner Cleaner
	Store   ArtifactStore
	Parsers *tabular.ParserFactory
	Writers *tabular.WriterFactory
	Hashes  deduplication.HashRepository
	Runs    RunRepository
	Shards  *trainset.Builder
	Logger  *slog.Logger
}

// Preparer runs the dataset preparation workflow
type Preparer struct {
	cleaner Cleaner
	store   ArtifactStore
	parsers *tabular.ParserFactory
	writers *tabular.WriterFactory
	hashes  deduplication.HashRepository
	runs    RunRepository
	shards  *trainset.Builder
	logger  *slog.Logger
}

// NewPreparer creates a preparer, filling in default parsers, writers and shard builder
func NewPreparer(deps Dependencies) (*Preparer, error) {
	if deps.Cleaner == nil || deps.Store == nil {
		return nil, apperrors.Internal("dataset preparer needs a cleaner and an artifact store")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Parsers == nil {
		deps.Parsers = tabular.NewParserFactory(nil)
	}
	if deps.Writers == nil {
		deps.Writers = tabular.NewWriterFactory()
	}
	if deps.Shards == nil {
		deps.Shards = trainset.NewBuilder(deps.Logger)
	}

	return &Preparer{
		cleaner: deps.Cleaner,
		store:   deps.Store,
		parsers: deps.Parsers,
		writers: deps.Writers,
		hashes:  deps.Hashes,
		runs:    deps.Runs,
		shards:  deps.Shards,
		logger:  deps.Logger,
	}, nil
}

// Prepare loads req.SourcePath, cleans it and writes the splits. Rows keep their source order;
// only missing values and (when enabled) duplicates remove rows.
func (p *Preparer) Prepare(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	cfg := req.Config

	if err := p.validate(cfg); err != nil {
		return nil, err
	}

	if req.RunID == uuid.Nil {
		req.RunID = uuid.New()
	}
	if req.SourceName == "" {
		req.SourceName = filepath.Base(req.SourcePath)
	}
	if req.SourceHash == "" {
		hash, err := hashFile(req.SourcePath)
		if err != nil {
			return nil, err
		}
		req.SourceHash = hash
	}

	logger := p.logger.With(slog.String("run_id", req.RunID.String()))
	logger.Info("preparing dataset",
		slog.String("source", req.SourceName),
		slog.String("refinery", p.cleaner.Version()))

	run := &domain.Run{
		ID:              req.RunID,
		SourceFilename:  req.SourceName,
		SourcePath:      req.SourcePath,
		SourceHash:      req.SourceHash,
		RefineryVersion: p.cleaner.Version(),
		Status:          domain.RunStatusUploaded,
		Config:          toJSONB(cfg),
	}
	if p.runs != nil {
		if err := p.runs.Create(ctx, run); err != nil {
			return nil, err
		}
	}

	result, err := p.prepare(ctx, req, run, start, logger)
	duration := time.Since(start)
	if err != nil {
		p.fail(ctx, run, err, logger)
		metrics.RecordRun(domain.RunStatusFailed, duration)
		return nil, err
	}

	now := time.Now().UTC()
	run.Status = domain.RunStatusCompleted
	run.CompletedAt = &now
	run.TotalRows = result.SourceRows
	run.CleanedRows = result.Rows
	run.DroppedRows = result.DroppedRows
	run.DuplicateRows = result.DuplicateRows
	run.Stats = toJSONB(result.Stats)
	if p.runs != nil {
		if err := p.runs.Save(ctx, run); err != nil {
			logger.Warn("failed to record completed run", slog.Any("error", err))
		}
	}
	metrics.RecordRun(domain.RunStatusCompleted, duration)

	logger.Info("dataset prepared",
		slog.Int("rows", result.Rows),
		slog.Int("dropped", result.DroppedRows),
		slog.Int("duplicates", result.DuplicateRows),
		slog.Duration("duration", result.Duration))

	return result, nil
}

func (p *Preparer) prepare(ctx context.Context, req Request, run *domain.Run, start time.Time, logger *slog.Logger) (*Result, error) {
	cfg := req.Config
	runID := req.RunID.String()

	source, err := p.parsers.ParseFile(ctx, req.SourcePath)
	if err != nil {
		return nil, err
	}

	p.setStatus(ctx, run, domain.RunStatusCleaning, logger)

	pair := []string{cfg.SummaryColumn, cfg.DocumentColumn}
	if cfg.UnescapeEntities {
		for _, col := range pair {
			if source.HasColumn(col) {
				unescapeColumn(source, col)
			}
		}
	}

	selected, err := source.Select(pair...)
	if err != nil {
		return nil, err
	}
	table, dropped := selected.DropMissing()

	for _, col := range cleanColumns(cfg) {
		if err := p.cleanColumn(ctx, table, col); err != nil {
			return nil, err
		}
	}

	duplicates := 0
	if cfg.Dedup || cfg.CrossRunDedup {
		table, duplicates, err = p.deduplicate(ctx, req.RunID, table, cfg)
		if err != nil {
			return nil, err
		}
	}

	result := &Result{
		RunID:           req.RunID,
		RefineryVersion: p.cleaner.Version(),
		SourceName:      req.SourceName,
		SourceHash:      req.SourceHash,
		SourceRows:      source.Len(),
		DroppedRows:     dropped,
		DuplicateRows:   duplicates,
		Rows:            table.Len(),
		Stats:           make(map[string]WordStats, len(pair)),
	}
	for _, col := range pair {
		result.Stats[col] = DescribeWords(columnStrings(table, col))
	}

	p.setStatus(ctx, run, domain.RunStatusSplitting, logger)

	writer, err := p.writers.Get(cfg.OutputFormat)
	if err != nil {
		return nil, err
	}

	for _, split := range cfg.Splits {
		sr, err := p.writeSplit(ctx, runID, req.RunID, table, split, writer, cfg)
		if err != nil {
			return nil, err
		}
		result.Splits = append(result.Splits, *sr)

		logger.Debug("split written",
			slog.String("split", split.Name),
			slog.Int("rows", sr.Rows))
	}

	result.Duration = time.Since(start)
	report, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	if _, err := p.store.SaveArtifact(ctx, runID, storage.KindReports, ReportName, report); err != nil {
		return nil, err
	}

	return result, nil
}

func (p *Preparer) cleanColumn(ctx context.Context, table *tabular.Table, col string) error {
	values, err := table.Column(col)
	if err != nil {
		return err
	}

	texts := make([]string, len(values))
	for i, v := range values {
		text, err := refinery.CoerceText(v)
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeInvalidInput,
				fmt.Sprintf("column %s row %d", col, i), 400)
		}
		texts[i] = text
	}

	cleaned, err := p.cleaner.CleanColumn(ctx, col, texts)
	if err != nil {
		return err
	}
	return table.SetColumn(col, cleaned)
}

// newDeduplicator hashes the cleaned pair. Hashes are stored only when a repository is wired.
func (p *Preparer) newDeduplicator(cfg Config) deduplication.Deduplicator {
	dc := deduplication.DefaultConfig()
	dc.Fields = []string{cfg.SummaryColumn, cfg.DocumentColumn}
	dc.StoreHashes = p.hashes != nil
	if cfg.CrossRunDedup {
		dc.Strategy = deduplication.StrategyCrossRun
	}
	return deduplication.NewService(dc, p.hashes, p.logger)
}

func (p *Preparer) deduplicate(ctx context.Context, runID uuid.UUID, table *tabular.Table, cfg Config) (*tabular.Table, int, error) {
	cols := []string{cfg.SummaryColumn, cfg.DocumentColumn}
	records := make([]deduplication.Record, table.Len())
	for i, row := range table.Rows {
		data := make(map[string]interface{}, len(cols))
		for _, col := range cols {
			data[col] = tabular.FormatCell(row[col])
		}
		records[i] = deduplication.Record{RowIndex: i, Data: data}
	}

	res, err := p.newDeduplicator(cfg).Deduplicate(ctx, runID, records)
	if err != nil {
		return nil, 0, err
	}

	kept := make([]tabular.Record, 0, len(res.Records))
	for _, r := range res.Records {
		kept = append(kept, table.Rows[r.RowIndex])
	}

	out := &tabular.Table{
		Columns:     table.Columns,
		Rows:        kept,
		TotalRows:   table.TotalRows,
		SkippedRows: table.SkippedRows,
		Format:      table.Format,
	}
	return out, res.RemovedCount, nil
}

func (p *Preparer) writeSplit(ctx context.Context, runID string, id uuid.UUID, table *tabular.Table, split Split, writer tabular.TableWriter, cfg Config) (*SplitResult, error) {
	start, end := split.Bounds(table.Len())
	part := table.Slice(start, end)

	var buf bytes.Buffer
	if err := writer.Write(ctx, &buf, part); err != nil {
		return nil, fmt.Errorf("failed to write split %s: %w", split.Name, err)
	}

	name := split.Name + writer.Extension()
	if _, err := p.store.SaveArtifact(ctx, runID, storage.KindSplits, name, buf.Bytes()); err != nil {
		return nil, err
	}

	sr := &SplitResult{
		Name:     split.Name,
		Start:    start,
		End:      end,
		Rows:     part.Len(),
		Artifact: name,
	}

	if !cfg.WriteShards {
		return sr, nil
	}

	shardCfg := trainset.DefaultConfig().WithShardSize(cfg.ShardSize)
	shardCfg.DocumentColumn = cfg.DocumentColumn
	shardCfg.SummaryColumn = cfg.SummaryColumn
	shardCfg.RefineryVersion = p.cleaner.Version()

	examples, err := trainset.ExamplesFromTable(part, shardCfg, start)
	if err != nil {
		return nil, err
	}
	shards, err := p.shards.Build(id, split.Name, examples, shardCfg)
	if err != nil {
		return nil, err
	}

	for _, shard := range shards {
		if err := p.shards.ValidateShard(shard); err != nil {
			return nil, fmt.Errorf("invalid shard %d of %s: %w", shard.Metadata.ShardNumber, split.Name, err)
		}
		data, err := p.shards.ToJSON(shard, shardCfg.Compact)
		if err != nil {
			return nil, err
		}
		shardName := trainset.ShardName(split.Name, shard.Metadata.ShardNumber)
		if _, err := p.store.SaveArtifact(ctx, runID, storage.KindShards, shardName, data); err != nil {
			return nil, err
		}
		sr.Shards = append(sr.Shards, shardName)
	}

	return sr, nil
}

func (p *Preparer) validate(cfg Config) error {
	if cfg.SummaryColumn == "" || cfg.DocumentColumn == "" {
		return apperrors.BadRequest("summary and document columns are required")
	}
	if cfg.SummaryColumn == cfg.DocumentColumn {
		return apperrors.BadRequest("summary and document columns must differ")
	}
	for _, col := range cleanColumns(cfg) {
		if col != cfg.SummaryColumn && col != cfg.DocumentColumn {
			return apperrors.BadRequest(fmt.Sprintf("cannot clean %q: only the summary and document columns are kept", col))
		}
	}
	if err := ValidateSplits(cfg.Splits); err != nil {
		return err
	}
	if cfg.CrossRunDedup && p.hashes == nil {
		return apperrors.BadRequest("cross-run deduplication needs run tracking")
	}
	if cfg.WriteShards && cfg.ShardSize <= 0 {
		return apperrors.BadRequest("shard size must be positive")
	}
	_, err := p.writers.Get(cfg.OutputFormat)
	return err
}

func (p *Preparer) setStatus(ctx context.Context, run *domain.Run, status string, logger *slog.Logger) {
	run.Status = status
	if p.runs == nil {
		return
	}
	if err := p.runs.UpdateStatus(ctx, run.ID, status); err != nil {
		logger.Warn("failed to update run status",
			slog.String("status", status),
			slog.Any("error", err))
	}
}

func (p *Preparer) fail(ctx context.Context, run *domain.Run, cause error, logger *slog.Logger) {
	logger.Error("dataset preparation failed",
		slog.String("status", run.Status),
		slog.Any("error", cause))

	now := time.Now().UTC()
	run.Status = domain.RunStatusFailed
	run.Error = cause.Error()
	run.CompletedAt = &now
	if p.runs == nil {
		return
	}
	// the caller's context may be the reason we failed
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := p.runs.Save(saveCtx, run); err != nil {
		logger.Warn("failed to record failed run", slog.Any("error", err))
	}
}

func cleanColumns(cfg Config) []string {
	if cfg.CleanColumns == nil {
		return []string{cfg.SummaryColumn, cfg.DocumentColumn}
	}
	return cfg.CleanColumns
}

// UnescapeEntities replaces the HTML entities the news source leaves in its text.
func UnescapeEntities(s string) string {
	for _, r := range entityReplacements {
		s = strings.ReplaceAll(s, r.old, r.new)
	}
	return s
}

// unescapeColumn rewrites string cells only; missing and non-string cells are left alone.
func unescapeColumn(table *tabular.Table, col string) {
	for _, row := range table.Rows {
		if s, ok := row[col].(string); ok {
			row[col] = UnescapeEntities(s)
		}
	}
}

func columnStrings(table *tabular.Table, col string) []string {
	out := make([]string, len(table.Rows))
	for i, row := range table.Rows {
		out[i] = tabular.FormatCell(row[col])
	}
	return out
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", apperrors.InvalidFile(fmt.Sprintf("failed to open %s: %v", path, err))
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", apperrors.InvalidFile(fmt.Sprintf("failed to read %s: %v", path, err))
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func toJSONB(v interface{}) domain.JSONB {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var m domain.JSONB
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	return m
}
