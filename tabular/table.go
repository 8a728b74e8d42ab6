/*
Package tabular reads and writes header-plus-rows tables.

PURPOSE:
  Roster uploads and exports travel as spreadsheets. This package hides the
  file format (CSV, XLSX, legacy XLS) behind a single Table value so the
  roster package only ever sees headers and string cells.

KEY CONCEPTS:
  - Table: first row is the header, remaining rows are data
  - Format: chosen from the file extension on read, explicitly on write
  - Cells:  always strings; numeric coercion belongs to the caller

HEADER MATCHING:
  Lookups trim whitespace, strip quotes and ignore case, so "rep name",
  " Rep Name " and "\"Rep Name\"" all address the same column.

SEE ALSO:
  - csv.go:   encoding/csv reader and writer
  - xlsx.go:  excelize reader and writer, extrame/xls reader
  - roster/parse.go: Typed roster parsing on top of Table
*/
package tabular

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned for file extensions other than
	// .csv, .xlsx and .xls.
	ErrUnsupportedFormat = errors.New("unsupported file format: use .csv, .xlsx or .xls")

	// ErrEmptySheet is returned when a file has no header row.
	ErrEmptySheet = errors.New("worksheet is empty")
)

// Format identifies a spreadsheet encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
)

// FormatFromFilename picks a format from the file extension.
func FormatFromFilename(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".xls":
		return FormatXLS, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// ParseFormat accepts a format name such as "csv" or "xlsx".
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	case FormatXLS:
		return FormatXLS, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// ContentType returns the MIME type used when serving the format.
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatXLS:
		return "application/vnd.ms-excel"
	default:
		return "text/csv"
	}
}

// =============================================================================
// TABLE
// =============================================================================

// Table is a header row plus data rows. Rows may be shorter than Headers;
// missing trailing cells read as empty.
type Table struct {
	Headers []string
	Rows    [][]string
}

// NewTable builds a table from a raw grid whose first row is the header.
// Blank rows are dropped.
func NewTable(grid [][]string) (Table, error) {
	if len(grid) == 0 {
		return Table{}, ErrEmptySheet
	}
	t := Table{Headers: grid[0]}
	for _, row := range grid[1:] {
		if isBlank(row) {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Column returns the index of the named header, or -1.
func (t Table) Column(name string) int {
	want := NormalizeHeader(name)
	for i, h := range t.Headers {
		if NormalizeHeader(h) == want {
			return i
		}
	}
	return -1
}

// Cell returns the trimmed value in row i under the named header. The bool is
// false if the column does not exist or the cell is empty.
func (t Table) Cell(i int, name string) (string, bool) {
	idx := t.Column(name)
	if idx < 0 || i < 0 || i >= len(t.Rows) {
		return "", false
	}
	v := cellValue(t.Rows[i], idx)
	return v, v != ""
}

// Grid returns the header and rows as one slice, the shape writers consume.
func (t Table) Grid() [][]string {
	grid := make([][]string, 0, len(t.Rows)+1)
	grid = append(grid, t.Headers)
	return append(grid, t.Rows...)
}

// NormalizeHeader trims whitespace and quotes and lowercases.
func NormalizeHeader(h string) string {
	h = strings.ReplaceAll(h, `"`, "")
	return strings.ToLower(strings.TrimSpace(h))
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// =============================================================================
// DISPATCH
// =============================================================================

// Read decodes a table from r using the format implied by filename.
func Read(r io.Reader, filename string) (Table, error) {
	format, err := FormatFromFilename(filename)
	if err != nil {
		return Table{}, err
	}
	return ReadFormat(r, format)
}

// ReadFormat decodes a table from r in the given format.
func ReadFormat(r io.Reader, format Format) (Table, error) {
	switch format {
	case FormatCSV:
		return ReadCSV(r)
	case FormatXLSX:
		return ReadXLSX(r)
	case FormatXLS:
		return ReadXLS(r)
	default:
		return Table{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Write encodes t to w. Legacy XLS cannot be written; use XLSX instead.
func Write(w io.Writer, t Table, format Format, sheet string) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, t)
	case FormatXLSX:
		return WriteXLSX(w, t, sheet)
	default:
		return fmt.Errorf("%w: cannot write %q", ErrUnsupportedFormat, format)
	}
}
