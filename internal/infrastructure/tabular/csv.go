package tabular

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	apperrors "github.com/ruhan-islam/text-summarizer/internal/pkg/errors"
)

// CSVParser parses CSV files
type CSVParser struct {
	config *ParserConfig
}

// NewCSVParser creates a new CSV parser
func NewCSVParser(config *ParserConfig) *CSVParser {
	if config == nil {
		config = DefaultParserConfig()
	}
	return &CSVParser{config: config}
}

// Parse reads and parses a CSV file from disk
func (p *CSVParser) Parse(ctx context.Context, filePath string) (*Table, error) {
	file, err := openLimited(filePath, p.config.MaxFileSize)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return p.ParseStream(ctx, file)
}

// ParseStream reads CSV with a header row. Quoted fields may span lines. Empty cells are
// kept as "" and count as missing for Table.DropMissing.
func (p *CSVParser) ParseStream(ctx context.Context, r io.Reader) (*Table, error) {
	csvReader := csv.NewReader(r)
	csvReader.FieldsPerRecord = -1
	csvReader.LazyQuotes = true

	header, err := csvReader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &Table{Format: "CSV"}, nil
		}
		return nil, apperrors.FileParseError(fmt.Errorf("failed to read CSV header: %w", err), "CSV")
	}
	header = cleanHeader(header, p.config.TrimWhitespace)

	var (
		rows        []Record
		totalRows   int
		skippedRows int
	)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		row, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		totalRows++
		if err != nil {
			skippedRows++
			continue
		}

		if p.config.SkipEmptyRows && isEmptyRow(row) {
			skippedRows++
			continue
		}

		record := make(Record, len(header))
		for i, col := range header {
			value := ""
			if i < len(row) {
				value = row[i]
				if p.config.TrimWhitespace {
					value = strings.TrimSpace(value)
				}
			}
			record[col] = value
		}
		rows = append(rows, record)
	}

	return &Table{
		Columns:     header,
		Rows:        rows,
		TotalRows:   totalRows,
		SkippedRows: skippedRows,
		Format:      "CSV",
	}, nil
}

// SupportedFormats returns the file extensions this parser supports
func (p *CSVParser) SupportedFormats() []string {
	return []string{".csv"}
}

// openLimited opens a file, rejecting it when it exceeds maxSize (0 = unlimited).
func openLimited(filePath string, maxSize int64) (*os.File, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, apperrors.InvalidFile(fmt.Sprintf("failed to open %s: %v", filePath, err))
	}

	if maxSize > 0 {
		stat, err := file.Stat()
		if err != nil {
			file.Close()
			return nil, apperrors.InvalidFile(fmt.Sprintf("failed to stat %s: %v", filePath, err))
		}
		if stat.Size() > maxSize {
			file.Close()
			return nil, apperrors.FileTooLarge(stat.Size(), maxSize)
		}
	}

	return file, nil
}

// cleanHeader strips a UTF-8 BOM from the first column name and optionally trims names.
func cleanHeader(header []string, trim bool) []string {
	out := make([]string, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\uFEFF")
		}
		if trim {
			name = strings.TrimSpace(name)
		}
		out[i] = name
	}
	return out
}

// isEmptyRow checks if a row contains only blank strings
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
