package tabular

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// maxXLSRows bounds how many rows of a legacy worksheet are read.
const maxXLSRows = 100000

// xlsMaxColumns is the BIFF8 column limit (IV).
const xlsMaxColumns = 256

// DefaultColumnWidth matches the width of the downloadable template columns.
const DefaultColumnWidth = 20

// ReadXLSX reads the first worksheet of an XLSX workbook.
func ReadXLSX(r io.Reader) (Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Table{}, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return Table{}, ErrEmptySheet
	}
	grid, err := f.GetRows(sheet)
	if err != nil {
		return Table{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return NewTable(grid)
}

// ReadXLS reads the first worksheet of a legacy BIFF (.xls) workbook. Other
// worksheets are ignored, as in ReadXLSX.
func ReadXLS(r io.Reader) (Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Table{}, err
	}
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return Table{}, fmt.Errorf("open xls: %w", err)
	}
	if wb.NumSheets() == 0 {
		return Table{}, ErrEmptySheet
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return Table{}, ErrEmptySheet
	}

	last := int(sheet.MaxRow)
	if last >= maxXLSRows {
		last = maxXLSRows - 1
	}
	grid := make([][]string, 0, last+1)
	for i := 0; i <= last; i++ {
		grid = append(grid, xlsRowValues(xlsRow(sheet, i)))
	}
	return NewTable(grid)
}

// xlsRow returns row i, or nil when the sheet has no record for it.
// WorkSheet.Row dereferences the missing row, so the panic is turned into nil.
func xlsRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

// xlsRowValues reads every column of row with trailing blanks trimmed. Rows
// built from cell records alone carry no column bounds, so all BIFF8 columns
// are scanned.
func xlsRowValues(row *xls.Row) []string {
	if row == nil {
		return nil
	}
	values := make([]string, xlsMaxColumns)
	width := 0
	for j := range values {
		values[j] = row.Col(j)
		if values[j] != "" {
			width = j + 1
		}
	}
	return values[:width]
}

// WriteXLSX writes t as a single-sheet workbook. Cells that parse as numbers
// are stored as numbers so spreadsheet formulas work on them.
func WriteXLSX(w io.Writer, t Table, sheet string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheet = "Sheet1"
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	for i, row := range t.Grid() {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = typedCell(v, i == 0)
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if n := len(t.Headers); n > 0 {
		last, err := excelize.ColumnNumberToName(n)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, "A", last, DefaultColumnWidth); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func typedCell(v string, header bool) interface{} {
	if header || v == "" {
		return v
	}
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return n
	}
	return v
}
