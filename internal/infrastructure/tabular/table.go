package tabular

import (
	"fmt"
	"math"
	"strconv"

	apperrors "github.com/ruhan-islam/text-summarizer/internal/pkg/errors"
)

// Record is one row keyed by column name.
type Record map[string]interface{}

// Table is an ordered set of rows with a fixed column order.
type Table struct {
	Columns     []string
	Rows        []Record
	TotalRows   int
	SkippedRows int
	Format      string
}

// NewTable builds a table from columns of equal length.
func NewTable(columns []string, values map[string][]string) (*Table, error) {
	n := -1
	for _, col := range columns {
		v, ok := values[col]
		if !ok {
			return nil, apperrors.ColumnNotFound(col)
		}
		if n >= 0 && len(v) != n {
			return nil, apperrors.InvalidInput(fmt.Sprintf("column %s has %d rows, expected %d", col, len(v), n))
		}
		n = len(v)
	}
	if n < 0 {
		n = 0
	}

	rows := make([]Record, n)
	for i := range rows {
		rec := make(Record, len(columns))
		for _, col := range columns {
			rec[col] = values[col][i]
		}
		rows[i] = rec
	}

	return &Table{
		Columns:   append([]string(nil), columns...),
		Rows:      rows,
		TotalRows: n,
	}, nil
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// HasColumn reports whether name is one of the table's columns.
func (t *Table) HasColumn(name string) bool {
	for _, col := range t.Columns {
		if col == name {
			return true
		}
	}
	return false
}

// Column returns the raw values of a column in row order.
func (t *Table) Column(name string) ([]interface{}, error) {
	if !t.HasColumn(name) {
		return nil, apperrors.ColumnNotFound(name)
	}

	values := make([]interface{}, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[name]
	}
	return values, nil
}

// Select returns a table with only cols, in that order. Rows are copied.
func (t *Table) Select(cols ...string) (*Table, error) {
	for _, col := range cols {
		if !t.HasColumn(col) {
			return nil, apperrors.ColumnNotFound(col)
		}
	}

	rows := make([]Record, len(t.Rows))
	for i, row := range t.Rows {
		rec := make(Record, len(cols))
		for _, col := range cols {
			rec[col] = row[col]
		}
		rows[i] = rec
	}

	return &Table{
		Columns:     append([]string(nil), cols...),
		Rows:        rows,
		TotalRows:   t.TotalRows,
		SkippedRows: t.SkippedRows,
		Format:      t.Format,
	}, nil
}

// DropMissing drops rows with a missing value in any of cols (all columns when none given).
// It returns the filtered table and the number of rows dropped. Row maps are shared with t.
func (t *Table) DropMissing(cols ...string) (*Table, int) {
	if len(cols) == 0 {
		cols = t.Columns
	}

	kept := make([]Record, 0, len(t.Rows))
	for _, row := range t.Rows {
		missing := false
		for _, col := range cols {
			if IsMissing(row[col]) {
				missing = true
				break
			}
		}
		if !missing {
			kept = append(kept, row)
		}
	}

	dropped := len(t.Rows) - len(kept)
	return &Table{
		Columns:     append([]string(nil), t.Columns...),
		Rows:        kept,
		TotalRows:   t.TotalRows,
		SkippedRows: t.SkippedRows + dropped,
		Format:      t.Format,
	}, dropped
}

// SetColumn replaces (or appends) a column. values must have one entry per row.
func (t *Table) SetColumn(name string, values []string) error {
	if len(values) != len(t.Rows) {
		return apperrors.InvalidInput(fmt.Sprintf("column %s has %d values for %d rows", name, len(values), len(t.Rows)))
	}

	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
	for i, row := range t.Rows {
		row[name] = values[i]
	}
	return nil
}

// Slice returns rows [start, end), clamped to the table. Row maps are shared with t.
func (t *Table) Slice(start, end int) *Table {
	start = max(0, min(start, len(t.Rows)))
	end = max(start, min(end, len(t.Rows)))

	return &Table{
		Columns:   append([]string(nil), t.Columns...),
		Rows:      t.Rows[start:end],
		TotalRows: end - start,
		Format:    t.Format,
	}
}

// IsMissing reports whether a cell counts as missing: nil, the empty string or NaN.
func IsMissing(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case float64:
		return math.IsNaN(t)
	case float32:
		return math.IsNaN(float64(t))
	default:
		return false
	}
}

// FormatCell renders a cell for text outputs. Missing values render as "".
func FormatCell(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if math.IsNaN(t) {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
