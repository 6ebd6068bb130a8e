// Package tabular parses delimited report text into an ordered-column
// table with header-keyed row access. Parsing is deliberately lenient:
// real report exports carry ragged rows, stray quotes and trailing blank
// lines, and none of those should abort a file.
package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Warning records a non-fatal issue encountered while parsing one row.
type Warning struct {
	Row     int
	Message string
}

// Row is one data row keyed by column header. Index is 1-based and counts
// data rows only (the header is row 0).
type Row struct {
	Index  int
	fields map[string]string
}

// Get returns the value for a column and whether the column exists.
func (r Row) Get(col string) (string, bool) {
	v, ok := r.fields[col]
	return v, ok
}

// Value returns the value for a column, empty when absent.
func (r Row) Value(col string) string {
	return r.fields[col]
}

// Fields returns a copy of the row's raw values, for error reporting.
func (r Row) Fields() map[string]string {
	out := make(map[string]string, len(r.fields))
	for k, v := range r.fields {
		out[k] = v
	}
	return out
}

// Table is a parsed delimited file.
type Table struct {
	Columns  []string
	Rows     []Row
	Warnings []Warning

	columnSet map[string]struct{}
}

// HasColumn reports whether the header row contained the named column.
func (t *Table) HasColumn(col string) bool {
	_, ok := t.columnSet[col]
	return ok
}

// Parse reads delimited text into a Table. Headers are trimmed; ragged
// rows are padded or truncated to the header width; rows that fail to
// parse become warnings, not errors. Fully empty rows are dropped.
func Parse(data []byte, delim rune) (*Table, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delim
	// Ragged rows are handled below by padding/truncating.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty file: no header row found")
		}
		return nil, fmt.Errorf("read header row: %w", err)
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	t := &Table{
		Columns:   headers,
		columnSet: make(map[string]struct{}, len(headers)),
	}
	for _, h := range headers {
		t.columnSet[h] = struct{}{}
	}

	index := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		index++
		if err != nil {
			t.Warnings = append(t.Warnings, Warning{
				Row:     index,
				Message: fmt.Sprintf("parse error: %v", err),
			})
			continue
		}
		if isEmptyRecord(record) {
			index--
			continue
		}

		if len(record) != len(headers) {
			t.Warnings = append(t.Warnings, Warning{
				Row:     index,
				Message: fmt.Sprintf("expected %d fields, got %d", len(headers), len(record)),
			})
		}

		fields := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(record) {
				fields[h] = strings.TrimSpace(record[i])
			} else {
				fields[h] = ""
			}
		}
		t.Rows = append(t.Rows, Row{Index: index, fields: fields})
	}

	return t, nil
}

func isEmptyRecord(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
