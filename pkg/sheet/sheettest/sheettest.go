// Package sheettest builds in-memory workbooks for tests.
package sheettest

import (
	"testing"

	"github.com/xuri/excelize/v2"
)

type Sheet struct {
	Name string
	Rows [][]any
}

// XLSX renders the sheets, in order, into an .xlsx file. A nil value in a
// row leaves that cell blank.
func XLSX(t testing.TB, sheets ...Sheet) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.Name); err != nil {
				t.Fatalf("failed to rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			t.Fatalf("failed to create sheet %q: %v", s.Name, err)
		}
		for r, row := range s.Rows {
			for c, v := range row {
				if v == nil {
					continue
				}
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					t.Fatalf("bad coordinates: %v", err)
				}
				if err := f.SetCellValue(s.Name, cell, v); err != nil {
					t.Fatalf("failed to set %s!%s: %v", s.Name, cell, err)
				}
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("failed to write workbook: %v", err)
	}
	return buf.Bytes()
}

// Rows is a shorthand for a header row followed by data rows.
func Rows(header []any, data ...[]any) [][]any {
	return append([][]any{header}, data...)
}
