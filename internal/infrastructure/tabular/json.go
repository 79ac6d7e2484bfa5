package tabular

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	apperrors "github.com/ruhan-islam/text-summarizer/internal/pkg/errors"
)

// JSONParser parses a JSON array of objects, or a single object
type JSONParser struct {
	config *ParserConfig
}

// NewJSONParser creates a new JSON parser
func NewJSONParser(config *ParserConfig) *JSONParser {
	if config == nil {
		config = DefaultParserConfig()
	}
	return &JSONParser{config: config}
}

// Parse reads and parses a JSON file from disk
func (p *JSONParser) Parse(ctx context.Context, filePath string) (*Table, error) {
	file, err := openLimited(filePath, p.config.MaxFileSize)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return p.ParseStream(ctx, file)
}

// ParseStream reads JSON from r. Numbers are kept as json.Number so integer ids render
// without a decimal point.
func (p *JSONParser) ParseStream(ctx context.Context, r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.FileParseError(err, "JSON")
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	token, err := decoder.Token()
	if err != nil {
		return nil, apperrors.FileParseError(fmt.Errorf("failed to read JSON: %w", err), "JSON")
	}

	var records []Record
	if delim, ok := token.(json.Delim); ok && delim == '[' {
		for decoder.More() {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}

			var record Record
			if err := decoder.Decode(&record); err != nil {
				return nil, apperrors.FileParseError(fmt.Errorf("failed to decode JSON record: %w", err), "JSON")
			}
			records = append(records, record)
		}
		if _, err := decoder.Token(); err != nil {
			return nil, apperrors.FileParseError(fmt.Errorf("failed to read closing bracket: %w", err), "JSON")
		}
	} else {
		decoder = json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber()

		var record Record
		if err := decoder.Decode(&record); err != nil {
			return nil, apperrors.FileParseError(fmt.Errorf("failed to decode JSON object: %w", err), "JSON")
		}
		records = []Record{record}
	}

	skipped := 0
	if p.config.SkipEmptyRows {
		kept := records[:0]
		for _, rec := range records {
			if len(rec) == 0 {
				skipped++
				continue
			}
			kept = append(kept, rec)
		}
		records = kept
	}

	return &Table{
		Columns:     collectColumns(records),
		Rows:        records,
		TotalRows:   len(records) + skipped,
		SkippedRows: skipped,
		Format:      "JSON",
	}, nil
}

// SupportedFormats returns the file extensions this parser supports
func (p *JSONParser) SupportedFormats() []string {
	return []string{".json"}
}

// collectColumns returns the union of record keys: keys of the first record sorted, then keys
// first seen later, sorted per record.
func collectColumns(records []Record) []string {
	seen := make(map[string]bool)
	var columns []string

	for _, rec := range records {
		var fresh []string
		for key := range rec {
			if !seen[key] {
				seen[key] = true
				fresh = append(fresh, key)
			}
		}
		sort.Strings(fresh)
		columns = append(columns, fresh...)
	}

	return columns
}
