// Package crm loads customer records from CSV exports and filters
// them for the dashboard.
package crm

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Table - загруженная CRM-выгрузка: нормализованные заголовки и строки.
type Table struct {
	Columns []string
	Rows    [][]string
	index   map[string]int
}

// Load reads a CSV export from disk. Headers are normalized to
// lowercase with surrounding whitespace removed, so downstream
// lookups do not depend on how the export tool spelled them.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open crm file: %w", err)
	}
	defer f.Close()
	table, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read crm file %s: %w", path, err)
	}
	return table, nil
}

// Read parses CSV content from r.
func Read(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make([]string, len(header))
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF")))
		columns[i] = name
		index[name] = i
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		rows = append(rows, record)
	}
	return &Table{Columns: columns, Rows: rows, index: index}, nil
}

// Column returns the position of the named column, or -1.
func (t *Table) Column(name string) int {
	pos, ok := t.index[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return -1
	}
	return pos
}

// Value returns the cell at row/column, tolerating ragged rows.
func (t *Table) Value(row int, column string) string {
	pos := t.Column(column)
	if pos < 0 || row < 0 || row >= len(t.Rows) || pos >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][pos]
}

// FilterCity keeps rows whose city column contains the query,
// case-insensitive. An empty query returns all rows. When the export
// has no city column no rows match.
func (t *Table) FilterCity(query string) *Table {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return &Table{Columns: t.Columns, Rows: t.Rows, index: t.index}
	}
	pos := t.Column("city")
	filtered := &Table{Columns: t.Columns, index: t.index}
	if pos < 0 {
		return filtered
	}
	for _, row := range t.Rows {
		if pos >= len(row) {
			continue
		}
		if strings.Contains(strings.ToLower(row[pos]), query) {
			filtered.Rows = append(filtered.Rows, row)
		}
	}
	return filtered
}
