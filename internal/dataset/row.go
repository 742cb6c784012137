package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"salesmetrics/internal/domain"
)

const utf8BOM = "\ufeff"

func stripBOM(s string) string { return strings.TrimPrefix(s, utf8BOM) }

// row is a cursor over one CSV data row. The typed accessors translate parse
// failures into *SchemaError values carrying file, column, and line.
type row struct {
	file   string
	line   int
	idx    map[string]int
	fields []string
}

// raw returns the trimmed cell for col and whether the column exists and the
// cell is non-empty.
func (r row) raw(col string) (string, bool) {
	i, ok := r.idx[col]
	if !ok || i >= len(r.fields) {
		return "", false
	}
	v := strings.TrimSpace(r.fields[i])
	return v, v != ""
}

// str returns the cell for col, or "" when the column is absent or empty.
// Required columns are verified against the header before rows are read.
func (r row) str(col string) string {
	v, _ := r.raw(col)
	return v
}

// optStr returns a pointer to the cell value, or nil when empty.
func (r row) optStr(col string) *string {
	v, ok := r.raw(col)
	if !ok {
		return nil
	}
	return &v
}

func (r row) schemaErr(col string, err error) error {
	return &SchemaError{File: r.file, Column: col, Row: r.line, Err: err}
}

func (r row) float(col string) (float64, error) {
	v, ok := r.raw(col)
	if !ok {
		return 0, r.schemaErr(col, fmt.Errorf("empty value"))
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, r.schemaErr(col, fmt.Errorf("not a number: %q", v))
	}
	return f, nil
}

func (r row) optFloat(col string) (*float64, error) {
	v, ok := r.raw(col)
	if !ok {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, r.schemaErr(col, fmt.Errorf("not a number: %q", v))
	}
	return &f, nil
}

func (r row) int(col string) (int, error) {
	v, ok := r.raw(col)
	if !ok {
		return 0, r.schemaErr(col, fmt.Errorf("empty value"))
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, r.schemaErr(col, fmt.Errorf("not an integer: %q", v))
	}
	return n, nil
}

// optIntDefault returns def when the column is absent or the cell empty.
func (r row) optIntDefault(col string, def int) (int, error) {
	v, ok := r.raw(col)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, r.schemaErr(col, fmt.Errorf("not an integer: %q", v))
	}
	return n, nil
}

func (r row) time(col string) (time.Time, error) {
	v, ok := r.raw(col)
	if !ok {
		return time.Time{}, r.schemaErr(col, fmt.Errorf("empty timestamp"))
	}
	ts, err := time.Parse(domain.Layout, v)
	if err != nil {
		return time.Time{}, r.schemaErr(col, fmt.Errorf("not a timestamp: %q", v))
	}
	return ts, nil
}

func (r row) optTime(col string) (*time.Time, error) {
	v, ok := r.raw(col)
	if !ok {
		return nil, nil
	}
	ts, err := time.Parse(domain.Layout, v)
	if err != nil {
		return nil, r.schemaErr(col, fmt.Errorf("not a timestamp: %q", v))
	}
	return &ts, nil
}
