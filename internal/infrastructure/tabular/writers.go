package tabular

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/ruhan-islam/text-summarizer/internal/pkg/errors"
)

// TableWriter serializes a table in one output format.
type TableWriter interface {
	Write(ctx context.Context, w io.Writer, table *Table) error
	Extension() string
}

// CSVWriter writes a header row followed by one row per record.
type CSVWriter struct{}

func (CSVWriter) Extension() string { return ".csv" }

func (CSVWriter) Write(ctx context.Context, w io.Writer, table *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Columns); err != nil {
		return err
	}

	row := make([]string, len(table.Columns))
	for _, rec := range table.Rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		for i, col := range table.Columns {
			row[i] = FormatCell(rec[col])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// JSONLWriter writes one JSON object per record. Only table columns are emitted.
type JSONLWriter struct{}

func (JSONLWriter) Extension() string { return ".jsonl" }

func (JSONLWriter) Write(ctx context.Context, w io.Writer, table *Table) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)

	for _, rec := range table.Rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		out := make(map[string]interface{}, len(table.Columns))
		for _, col := range table.Columns {
			out[col] = rec[col]
		}
		if err := enc.Encode(out); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// XLSXWriter writes the table to the first sheet of a new workbook.
type XLSXWriter struct {
	SheetName string
}

func (XLSXWriter) Extension() string { return ".xlsx" }

func (x XLSXWriter) Write(ctx context.Context, w io.Writer, table *Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	if x.SheetName != "" {
		if err := f.SetSheetName(sheet, x.SheetName); err != nil {
			return err
		}
		sheet = x.SheetName
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}

	header := make([]interface{}, len(table.Columns))
	for i, col := range table.Columns {
		header[i] = col
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for r, rec := range table.Rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		values := make([]interface{}, len(table.Columns))
		for i, col := range table.Columns {
			values[i] = FormatCell(rec[col])
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, values); err != nil {
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return err
	}
	_, err = f.WriteTo(w)
	return err
}

// WriterFactory selects a TableWriter by format name or extension.
type WriterFactory struct {
	writers map[string]TableWriter
}

// NewWriterFactory registers the CSV, JSONL and XLSX writers.
func NewWriterFactory() *WriterFactory {
	f := &WriterFactory{writers: make(map[string]TableWriter)}
	f.Register(CSVWriter{})
	f.Register(JSONLWriter{})
	f.Register(XLSXWriter{})
	return f
}

func (f *WriterFactory) Register(w TableWriter) {
	f.writers[w.Extension()] = w
}

// Get accepts "csv", ".csv", "JSONL" and so on.
func (f *WriterFactory) Get(format string) (TableWriter, error) {
	w, ok := f.writers[normalizeExt(format)]
	if !ok {
		return nil, apperrors.UnsupportedFormat(format)
	}
	return w, nil
}

func (f *WriterFactory) Formats() []string {
	formats := make([]string, 0, len(f.writers))
	for ext := range f.writers {
		formats = append(formats, ext)
	}
	sort.Strings(formats)
	return formats
}

// WriteFile writes table to path using the writer for the path's extension.
func (f *WriterFactory) WriteFile(ctx context.Context, path string, table *Table) error {
	w, err := f.Get(filepath.Ext(path))
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := w.Write(ctx, file, table); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}
