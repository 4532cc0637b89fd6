package csv

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/JorgeHRP/renato-bi/pkg/models"
)

type FilterFunc func(models.Entry) bool

var header = []string{"Date", "Description", "Category", "Amount", "Direction", "Status"}

// Create renders the entries accepted by filter (all when nil) as CSV.
func Create(entries []models.Entry, filter FilterFunc) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, e := range entries {
		if filter != nil && !filter(e) {
			continue
		}
		row := []string{e.Date, e.Description, e.Category, e.Amount.StringFixed(2), e.Direction, e.Status}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.Bytes(), nil
}
