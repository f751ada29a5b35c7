// Package spreadsheet reads the payroll workbook: the company sheet ("600")
// and the provider sheet ("610").
package spreadsheet

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	CompanySheet   = "600"
	ProvidersSheet = "610"
)

var (
	ErrSheetNotFound   = errors.New("sheet not found")
	ErrSheetUnreadable = errors.New("sheet could not be read")
)

// Row is one data row. Number is the 1-based row number as shown by Excel.
type Row struct {
	Number int
	Cells  []Cell
}

// Sheet holds the header line and every non-blank data row below it.
type Sheet struct {
	Name    string
	Headers []string
	Rows    []Row
}

// Workbook is the pair of sheets the pipeline consumes.
type Workbook struct {
	Company   *Sheet
	Providers *Sheet
}

// ColumnIndex returns the position of the first header equal to name, or -1.
func (s *Sheet) ColumnIndex(name string) int {
	if name == "" {
		return -1
	}
	for i, h := range s.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// Value returns the cell of row under header, or an empty cell.
func (s *Sheet) Value(row Row, header string) Cell {
	idx := s.ColumnIndex(header)
	if idx < 0 || idx >= len(row.Cells) {
		return Cell{}
	}
	return row.Cells[idx]
}

// Open reads both payroll sheets from an .xlsx file. The file is closed
// before returning on every path.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSheetUnreadable, err)
	}
	defer func() { _ = f.Close() }()

	company, err := readSheet(f, CompanySheet)
	if err != nil {
		return nil, err
	}
	providers, err := readSheet(f, ProvidersSheet)
	if err != nil {
		return nil, err
	}

	return &Workbook{Company: company, Providers: providers}, nil
}

func readSheet(f *excelize.File, name string) (*Sheet, error) {
	idx, err := f.GetSheetIndex(name)
	if err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %q (abas disponíveis: %s)", ErrSheetNotFound, name, strings.Join(f.GetSheetList(), ", "))
	}

	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrSheetUnreadable, name, err)
	}

	sheet := &Sheet{Name: name}
	if len(rows) == 0 {
		return sheet, nil
	}
	sheet.Headers = rows[0]

	for i, values := range rows[1:] {
		number := i + 2
		cells := make([]Cell, len(sheet.Headers))
		blank := true
		for col := range sheet.Headers {
			if col >= len(values) {
				break
			}
			cell := readCell(f, name, col, number, values[col])
			if !cell.Empty() {
				blank = false
			}
			cells[col] = cell
		}
		if blank {
			continue
		}
		sheet.Rows = append(sheet.Rows, Row{Number: number, Cells: cells})
	}

	return sheet, nil
}

// readCell types a raw value using the cell's stored type. Cells without an
// explicit type hold numbers in OOXML.
func readCell(f *excelize.File, sheet string, col, row int, raw string) Cell {
	if raw == "" {
		return Cell{}
	}

	axis, err := excelize.CoordinatesToCellName(col+1, row)
	if err != nil {
		return TextCell(raw)
	}
	cellType, err := f.GetCellType(sheet, axis)
	if err != nil {
		return TextCell(raw)
	}

	if cellType == excelize.CellTypeUnset || cellType == excelize.CellTypeNumber {
		if n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return Cell{Raw: raw, Numeric: true, Number: n}
		}
	}
	return TextCell(raw)
}
