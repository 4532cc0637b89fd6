package sheet

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/shakinm/xlsReader/xls"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type xlsWorkbook struct {
	workbook xls.Workbook
}

func openXLS(data []byte) (wb Workbook, err error) {
	// the BIFF decoder panics on some truncated streams
	defer func() {
		if r := recover(); r != nil {
			wb, err = nil, fmt.Errorf("%w: %v", ErrUnreadableFile, r)
		}
	}()

	workbook, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableFile, err)
	}
	return &xlsWorkbook{workbook: workbook}, nil
}

func (w *xlsWorkbook) SheetNames() []string {
	sheets := w.workbook.GetSheets()
	names := make([]string, 0, len(sheets))
	for _, s := range sheets {
		names = append(names, s.GetName())
	}
	return names
}

func (w *xlsWorkbook) Rows(name string) (rows [][]Cell, err error) {
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("error reading sheet %q: %v", name, r)
		}
	}()

	for _, s := range w.workbook.GetSheets() {
		if s.GetName() != name {
			continue
		}
		for _, row := range s.GetRows() {
			cols := row.GetCols()
			cells := make([]Cell, len(cols))
			for j, c := range cols {
				c := c
				cells[j] = resolve(c.GetType(), c.GetString(), c.GetFloat64(), func() (int, string) {
					xf := w.workbook.GetXFbyIndex(c.GetXFIndex())
					idx := int(xf.GetFormatIndex())
					if idx < firstCustomFormat {
						return idx, ""
					}
					format := w.workbook.GetFormatByIndex(xf.GetFormatIndex())
					return idx, format.GetFormatString(c)
				})
			}
			rows = append(rows, cells)
		}
		return trimTrailingEmpty(rows), nil
	}
	return nil, fmt.Errorf("sheet %q not found", name)
}

func (w *xlsWorkbook) Close() error {
	return nil
}

// resolve turns a BIFF record into a Cell. Numeric records keep their
// stored value; the number format of the cell's XF only decides whether that
// value is a date.
func resolve(kind, text string, value float64, format func() (int, string)) Cell {
	kind = strings.ToLower(kind)
	switch {
	case strings.Contains(kind, "blank"):
		return Cell{}
	case strings.Contains(kind, "label"), strings.Contains(kind, "sst"):
		return TextCell(text)
	case strings.Contains(kind, "number"), strings.Contains(kind, "rk"):
		if isDateFormat(format) {
			if t, err := excelize.ExcelDateToTime(value, false); err == nil {
				return DateCell(t)
			}
		}
		return NumberCell(decimal.NewFromFloat(value))
	default:
		return textValue(text)
	}
}

func isDateFormat(format func() (int, string)) (date bool) {
	defer func() {
		if recover() != nil {
			date = false
		}
	}()

	idx, code := format()
	if idx < firstCustomFormat {
		return builtinDateFormat(idx)
	}
	return dateFormatCode(code)
}

const firstCustomFormat = 164

// builtinDateFormat covers the predefined date and time formats, including
// the East Asian ones.
func builtinDateFormat(idx int) bool {
	return 14 <= idx && idx <= 22 ||
		27 <= idx && idx <= 36 ||
		45 <= idx && idx <= 47 ||
		50 <= idx && idx <= 58
}

// dateFormatCode reports whether a number format code renders a date.
// Literals, escapes and bracketed sections ([Red], [$R$-416]) are skipped.
func dateFormatCode(code string) bool {
	code = strings.ToLower(code)
	if code == "general" {
		return false
	}
	quoted, bracket := false, false
	for i := 0; i < len(code); i++ {
		ch := code[i]
		switch {
		case quoted:
			quoted = ch != '"'
		case bracket:
			bracket = ch != ']'
		case ch == '"':
			quoted = true
		case ch == '[':
			bracket = true
		case ch == '\\', ch == '_', ch == '*':
			i++
		case ch == 'd', ch == 'y', ch == 'm':
			return true
		}
	}
	return false
}

func textValue(s string) Cell {
	c := TextCell(s)
	if c.IsEmpty() {
		return c
	}
	if d, err := decimal.NewFromString(c.text); err == nil {
		return NumberCell(d)
	}
	if t, ok := ParseDate(c.text); ok {
		return DateCell(t)
	}
	return c
}

func trimTrailingEmpty(rows [][]Cell) [][]Cell {
	for len(rows) > 0 && rowEmpty(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return rows
}

func rowEmpty(row []Cell) bool {
	for _, c := range row {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}
