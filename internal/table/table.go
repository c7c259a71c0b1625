// Package table runs post-parse validations on delimited output files:
// allowed values, numeric bounds, uniqueness and time-series completeness.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/ifrec/internal/quotes"
)

// ErrEmptyTable is returned when a file has no header row.
var ErrEmptyTable = errors.New("table has no header")

// Table is a parsed delimited file. Cells are kept as strings; an empty cell
// is treated as null by every validation.
type Table struct {
	index   map[string]int
	Columns []string
	Rows    [][]string
}

// New builds a table from a header and rows. Short rows read as null in the
// missing columns.
func New(columns []string, rows [][]string) *Table {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := index[c]; !dup {
			index[c] = i
		}
	}
	return &Table{Columns: columns, Rows: rows, index: index}
}

// Load reads a semicolon-delimited file with a header line.
func Load(path string, codec *quotes.Codec) (*Table, error) {
	content, err := codec.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return t, nil
}

// Parse reads semicolon-delimited records from r. The first record is the
// header.
func Parse(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = []rune(quotes.Delimiter)[0]
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyTable
	}
	if err != nil {
		return nil, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	return New(header, rows), nil
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Has reports whether every named column exists.
func (t *Table) Has(columns ...string) bool {
	for _, c := range columns {
		if _, ok := t.index[c]; !ok {
			return false
		}
	}
	return true
}

// Value returns the cell of row i in column. Missing cells read as "".
func (t *Table) Value(i int, column string) string {
	j, ok := t.index[column]
	if !ok || j >= len(t.Rows[i]) {
		return ""
	}
	return t.Rows[i][j]
}
