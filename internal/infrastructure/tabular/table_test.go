package tabular

import (
	"bytes"
	"context"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ruhan-islam/text-summarizer/internal/pkg/errors"
)

func newsTable(t *testing.T) *Table {
	t.Helper()
	table, err := NewTable([]string{"headlines", "text"}, map[string][]string{
		"headlines": {"a", "", "c", "d"},
		"text":      {"one", "two", "", "four"},
	})
	require.NoError(t, err)
	return table
}

func TestNewTable(t *testing.T) {
	table := newsTable(t)
	assert.Equal(t, 4, table.Len())
	assert.Equal(t, "two", table.Rows[1]["text"])

	_, err := NewTable([]string{"a", "b"}, map[string][]string{"a": {"1"}, "b": {"1", "2"}})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidInput))

	_, err = NewTable([]string{"a"}, map[string][]string{})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeColumnNotFound))
}

func TestTable_SelectAndColumn(t *testing.T) {
	table := newsTable(t)
	table.Columns = append(table.Columns, "extra")

	selected, err := table.Select("text", "headlines")
	require.NoError(t, err)
	assert.Equal(t, []string{"text", "headlines"}, selected.Columns)
	assert.NotContains(t, selected.Rows[0], "extra")

	values, err := selected.Column("text")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"one", "two", "", "four"}, values)

	_, err = table.Select("summary")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeColumnNotFound))

	_, err = table.Column("summary")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeColumnNotFound))
}

func TestTable_DropMissing(t *testing.T) {
	table := newsTable(t)

	cleaned, dropped := table.DropMissing()
	assert.Equal(t, 2, dropped)
	assert.Equal(t, 2, cleaned.SkippedRows)
	assert.Equal(t, "a", cleaned.Rows[0]["headlines"])
	assert.Equal(t, "d", cleaned.Rows[1]["headlines"])

	textOnly, dropped := table.DropMissing("text")
	assert.Equal(t, 1, dropped)
	assert.Equal(t, 3, textOnly.Len())
}

func TestTable_SetColumn(t *testing.T) {
	table := newsTable(t)

	require.NoError(t, table.SetColumn("text", []string{"1", "2", "3", "4"}))
	assert.Equal(t, "3", table.Rows[2]["text"])

	require.NoError(t, table.SetColumn("summary", []string{"", "", "", ""}))
	assert.Equal(t, []string{"headlines", "text", "summary"}, table.Columns)

	err := table.SetColumn("text", []string{"1"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidInput))
}

func TestTable_Slice(t *testing.T) {
	table := newsTable(t)

	tests := []struct {
		name       string
		start, end int
		expected   int
	}{
		{"inside", 1, 3, 2},
		{"end clamped", 2, 100, 2},
		{"start past end", 10, 20, 0},
		{"inverted", 3, 1, 0},
		{"negative start", -5, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, table.Slice(tt.start, tt.end).Len())
		})
	}
}

func TestIsMissing(t *testing.T) {
	assert.True(t, IsMissing(nil))
	assert.True(t, IsMissing(""))
	assert.True(t, IsMissing(math.NaN()))
	assert.False(t, IsMissing(" "))
	assert.False(t, IsMissing(0))
	assert.False(t, IsMissing("0"))
}

func TestWriterFactory(t *testing.T) {
	factory := NewWriterFactory()
	assert.Equal(t, []string{".csv", ".jsonl", ".xlsx"}, factory.Formats())

	for _, format := range []string{"csv", ".JSONL", "xlsx"} {
		_, err := factory.Get(format)
		assert.NoError(t, err, format)
	}

	_, err := factory.Get("parquet")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeUnsupportedFormat))
}

func TestCSVWriter_Write(t *testing.T) {
	table := newsTable(t)

	var buf bytes.Buffer
	require.NoError(t, CSVWriter{}.Write(context.Background(), &buf, table))

	assert.Equal(t, "headlines,text\na,one\n,two\nc,\nd,four\n", buf.String())
}

func TestJSONLWriter_Write(t *testing.T) {
	table := newsTable(t)
	table = table.Slice(0, 1)

	var buf bytes.Buffer
	require.NoError(t, JSONLWriter{}.Write(context.Background(), &buf, table))

	assert.Equal(t, `{"headlines":"a","text":"one"}`+"\n", buf.String())
}

func TestWriterFactory_WriteFileRoundTrip(t *testing.T) {
	table := newsTable(t)
	writers := NewWriterFactory()
	parsers := NewParserFactory(&ParserConfig{})
	dir := t.TempDir()

	for _, name := range []string{"out.csv", "out.jsonl", "nested/out.xlsx"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, writers.WriteFile(context.Background(), path, table))

			back, err := parsers.ParseFile(context.Background(), path)
			require.NoError(t, err)
			require.Equal(t, table.Len(), back.Len(), strings.ToUpper(back.Format))

			for i := range table.Rows {
				for _, col := range table.Columns {
					assert.Equal(t, FormatCell(table.Rows[i][col]), FormatCell(back.Rows[i][col]))
				}
			}
		})
	}
}
