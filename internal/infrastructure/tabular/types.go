// Package tabular reads and writes the row-oriented datasets the preparation pipeline works on.
package tabular

import (
	"context"
	"io"
)

// FileParser is the interface all parsers must implement
type FileParser interface {
	// Parse reads and parses the file at filePath
	Parse(ctx context.Context, filePath string) (*Table, error)

	// ParseStream reads and parses from r
	ParseStream(ctx context.Context, r io.Reader) (*Table, error)

	// SupportedFormats returns the file extensions this parser supports
	SupportedFormats() []string
}

// ParserConfig holds configuration for all parsers
type ParserConfig struct {
	// SkipEmptyRows drops rows whose cells are all blank
	SkipEmptyRows bool

	// TrimWhitespace trims column names and cell values
	TrimWhitespace bool

	// MaxFileSize is the maximum file size in bytes (0 = unlimited)
	MaxFileSize int64
}

// DefaultParserConfig returns sensible defaults. Cell values are not trimmed: leading and
// trailing whitespace is the refinery's business.
func DefaultParserConfig() *ParserConfig {
	return &ParserConfig{
		SkipEmptyRows:  true,
		TrimWhitespace: false,
		MaxFileSize:    500 * 1024 * 1024, // 500 MB
	}
}
