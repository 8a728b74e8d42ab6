package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ReadCSV reads a comma-separated table. Rows may have differing lengths.
func ReadCSV(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	grid, err := cr.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("read csv: %w", err)
	}
	if len(grid) > 0 && len(grid[0]) > 0 {
		grid[0][0] = trimBOM(grid[0][0])
	}
	return NewTable(grid)
}

// WriteCSV writes the header and rows with LF line endings.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(t.Grid()); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// Spreadsheet apps prepend a UTF-8 byte order mark when saving CSV.
func trimBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}
