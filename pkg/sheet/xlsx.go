package sheet

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type xlsxWorkbook struct {
	file     *excelize.File
	date1904 bool
}

func openXLSX(data []byte) (Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableFile, err)
	}
	wb := &xlsxWorkbook{file: f}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		wb.date1904 = *props.Date1904
	}
	return wb, nil
}

func (w *xlsxWorkbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// Rows reads the sheet twice: raw values carry the stored number, formatted
// values reveal whether a date number format was applied to it.
func (w *xlsxWorkbook) Rows(name string) ([][]Cell, error) {
	raw, err := w.file.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("error reading sheet %q: %w", name, err)
	}
	shown, err := w.file.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("error reading sheet %q: %w", name, err)
	}

	rows := make([][]Cell, len(raw))
	for i, r := range raw {
		cells := make([]Cell, len(r))
		for j, v := range r {
			formatted := v
			if i < len(shown) && j < len(shown[i]) {
				formatted = shown[i][j]
			}
			cells[j] = w.cell(v, formatted)
		}
		rows[i] = cells
	}
	return rows, nil
}

func (w *xlsxWorkbook) cell(raw, formatted string) Cell {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Cell{}
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return TextCell(raw)
	}
	if formatted != raw && looksLikeDate(formatted) {
		if t, err := excelize.ExcelDateToTime(d.InexactFloat64(), w.date1904); err == nil {
			return DateCell(t)
		}
	}
	return NumberCell(d)
}

func (w *xlsxWorkbook) Close() error {
	return w.file.Close()
}

func looksLikeDate(formatted string) bool {
	if _, ok := ParseAmount(formatted); ok {
		return false
	}
	return strings.ContainsAny(formatted, "/-:")
}
