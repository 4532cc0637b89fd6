package sheet

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Kind tags the value held by a Cell.
type Kind int

const (
	Empty Kind = iota
	Text
	Number
	Date
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Number:
		return "number"
	case Date:
		return "date"
	default:
		return "empty"
	}
}

// Cell is a spreadsheet value whose type is resolved once, when the workbook
// is read. The zero value is an empty cell.
type Cell struct {
	Kind Kind
	text string
	num  decimal.Decimal
	date time.Time
}

func TextCell(s string) Cell {
	s = strings.TrimSpace(s)
	if s == "" {
		return Cell{}
	}
	return Cell{Kind: Text, text: s}
}

func NumberCell(d decimal.Decimal) Cell {
	return Cell{Kind: Number, num: d}
}

func DateCell(t time.Time) Cell {
	return Cell{Kind: Date, date: t}
}

func (c Cell) IsEmpty() bool {
	return c.Kind == Empty
}

// String renders the cell the way a person reading the sheet would type it.
func (c Cell) String() string {
	switch c.Kind {
	case Text:
		return c.text
	case Number:
		return c.num.String()
	case Date:
		if c.date.Hour() == 0 && c.date.Minute() == 0 && c.date.Second() == 0 {
			return c.date.Format("2006-01-02")
		}
		return c.date.Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}

// Decimal returns the numeric value of a Number cell, or of a Text cell that
// holds an amount ("1.234,56", "R$ 10,00", "-400"). Dates are not numbers.
func (c Cell) Decimal() (decimal.Decimal, bool) {
	switch c.Kind {
	case Number:
		return c.num, true
	case Text:
		return ParseAmount(c.text)
	default:
		return decimal.Zero, false
	}
}

// Time returns the calendar value of a Date cell, of a Text cell holding a
// recognised date layout, or of a Number cell read as an Excel serial date.
func (c Cell) Time() (time.Time, bool) {
	switch c.Kind {
	case Date:
		return c.date, true
	case Text:
		return ParseDate(c.text)
	case Number:
		serial := c.num.InexactFloat64()
		if serial < 1 || serial > maxExcelSerial {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	default:
		return time.Time{}, false
	}
}

// maxExcelSerial is 9999-12-31.
const maxExcelSerial = 2958465
