package tabular

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/ruhan-islam/text-summarizer/internal/pkg/errors"
)

// ExcelParser parses the first sheet of .xlsx workbooks
type ExcelParser struct {
	config *ParserConfig
}

// NewExcelParser creates a new Excel parser
func NewExcelParser(config *ParserConfig) *ExcelParser {
	if config == nil {
		config = DefaultParserConfig()
	}
	return &ExcelParser{config: config}
}

// Parse reads and parses an Excel file from disk
func (p *ExcelParser) Parse(ctx context.Context, filePath string) (*Table, error) {
	file, err := openLimited(filePath, p.config.MaxFileSize)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return p.ParseStream(ctx, file)
}

// ParseStream reads and parses Excel data from r
func (p *ExcelParser) ParseStream(ctx context.Context, r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.FileParseError(err, "XLSX")
	}
	defer f.Close()

	return p.parseWorkbook(ctx, f)
}

func (p *ExcelParser) parseWorkbook(ctx context.Context, f *excelize.File) (*Table, error) {
	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, apperrors.FileParseError(fmt.Errorf("no sheets found"), "XLSX")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, apperrors.FileParseError(fmt.Errorf("failed to get rows from sheet %s: %w", sheetName, err), "XLSX")
	}

	if len(rows) == 0 {
		return &Table{Format: "XLSX"}, nil
	}

	header := cleanHeader(rows[0], p.config.TrimWhitespace)

	records := make([]Record, 0, len(rows)-1)
	totalRows := 0
	skippedRows := 0

	for _, row := range rows[1:] {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		totalRows++
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
		records = append(records, record)
	}

	return &Table{
		Columns:     header,
		Rows:        records,
		TotalRows:   totalRows,
		SkippedRows: skippedRows,
		Format:      "XLSX",
	}, nil
}

// SupportedFormats returns the file extensions this parser supports
func (p *ExcelParser) SupportedFormats() []string {
	return []string{".xlsx", ".xlsm"}
}
