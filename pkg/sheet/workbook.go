package sheet

import (
	"bytes"
	"errors"
	"fmt"
	"os"
)

// ErrUnreadableFile reports that the upload is not a spreadsheet container
// this package can open.
var ErrUnreadableFile = errors.New("unreadable spreadsheet")

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// Workbook exposes the named sheets of an opened spreadsheet. Rows keeps the
// column order of the file; the first row is the header when there is one.
type Workbook interface {
	SheetNames() []string
	Rows(name string) ([][]Cell, error)
	Close() error
}

// Open detects the container format from its leading bytes: OOXML workbooks
// are zip archives, legacy BIFF workbooks live in an OLE2 compound file.
func Open(data []byte) (Workbook, error) {
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return openXLSX(data)
	case bytes.HasPrefix(data, oleMagic):
		return openXLS(data)
	default:
		return nil, fmt.Errorf("%w: unknown container format", ErrUnreadableFile)
	}
}

func OpenFile(path string) (Workbook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Open(data)
}

// HasSheet reports whether name is one of the workbook's sheets.
func HasSheet(wb Workbook, name string) bool {
	for _, s := range wb.SheetNames() {
		if s == name {
			return true
		}
	}
	return false
}

// FindSheet returns the first sheet whose folded name matches one of names.
func FindSheet(wb Workbook, names ...string) (string, bool) {
	for _, s := range wb.SheetNames() {
		key := Fold(s)
		for _, n := range names {
			if key == Fold(n) {
				return s, true
			}
		}
	}
	return "", false
}
