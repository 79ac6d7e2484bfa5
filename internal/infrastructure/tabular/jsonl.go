package tabular

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"

	apperrors "github.com/ruhan-islam/text-summarizer/internal/pkg/errors"
)

// JSONLParser parses JSONL/NDJSON files (newline-delimited JSON)
type JSONLParser struct {
	config *ParserConfig
}

// NewJSONLParser creates a new JSONL parser
func NewJSONLParser(config *ParserConfig) *JSONLParser {
	if config == nil {
		config = DefaultParserConfig()
	}
	return &JSONLParser{config: config}
}

// Parse reads and parses a JSONL file from disk
func (p *JSONLParser) Parse(ctx context.Context, filePath string) (*Table, error) {
	file, err := openLimited(filePath, p.config.MaxFileSize)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return p.ParseStream(ctx, file)
}

// ParseStream reads one JSON object per line. Blank and malformed lines are skipped.
func (p *JSONLParser) ParseStream(ctx context.Context, r io.Reader) (*Table, error) {
	scanner := bufio.NewScanner(r)
	// Articles can be long: allow up to 16MB per line
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var records []Record
	totalRows := 0
	skippedRows := 0

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		line := bytes.TrimSpace(scanner.Bytes())
		totalRows++

		if len(line) == 0 {
			skippedRows++
			continue
		}

		decoder := json.NewDecoder(bytes.NewReader(line))
		decoder.UseNumber()

		var record Record
		if err := decoder.Decode(&record); err != nil {
			skippedRows++
			continue
		}

		if p.config.SkipEmptyRows && len(record) == 0 {
			skippedRows++
			continue
		}

		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, apperrors.FileParseError(err, "JSONL")
	}

	return &Table{
		Columns:     collectColumns(records),
		Rows:        records,
		TotalRows:   totalRows,
		SkippedRows: skippedRows,
		Format:      "JSONL",
	}, nil
}

// SupportedFormats returns the file extensions this parser supports
func (p *JSONLParser) SupportedFormats() []string {
	return []string{".jsonl", ".ndjson", ".jsonnl"}
}
