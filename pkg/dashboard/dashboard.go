// Package dashboard reads precomputed figures from a dashboard style sheet,
// where each value sits in the cell right after its caption.
package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/JorgeHRP/renato-bi/pkg/layout"
	"github.com/JorgeHRP/renato-bi/pkg/models"
	"github.com/JorgeHRP/renato-bi/pkg/sheet"
)

type Scanner struct {
	logger *log.Logger
	layout *layout.Layout
}

func New(logger *log.Logger, l *layout.Layout) *Scanner {
	return &Scanner{
		logger: logger,
		layout: l,
	}
}

// Extract scans the first dashboard sheet of wb. It never fails: a missing
// sheet or a read error gives an empty summary.
func (s *Scanner) Extract(wb sheet.Workbook) (summary models.Summary) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("dashboard scan panicked", "error", fmt.Sprint(r))
			summary = models.Summary{}
		}
	}()

	name, ok := sheet.FindSheet(wb, s.layout.DashboardSheets...)
	if !ok {
		s.logger.Debug("no dashboard sheet", "want", s.layout.DashboardSheets)
		return models.Summary{}
	}
	rows, err := wb.Rows(name)
	if err != nil {
		s.logger.Warn("failed to read dashboard sheet", "sheet", name, "error", err)
		return models.Summary{}
	}
	return Scan(rows, s.layout.DashboardLabels)
}

// Scan flattens rows into a single sequence of non-empty cells and, for
// each label, takes the value following the first text cell containing it.
// Labels without a numeric successor are left out.
func Scan(rows [][]sheet.Cell, labels []layout.Label) models.Summary {
	var cells []sheet.Cell
	for _, row := range rows {
		for _, c := range row {
			if !c.IsEmpty() {
				cells = append(cells, c)
			}
		}
	}

	summary := models.Summary{}
	for _, lb := range labels {
		needle := sheet.Fold(lb.Text)
		for i, c := range cells {
			if c.Kind != sheet.Text || !strings.Contains(sheet.Fold(c.String()), needle) {
				continue
			}
			if i+1 < len(cells) && cells[i+1].Kind != sheet.Date {
				if d, ok := cells[i+1].Decimal(); ok {
					summary[lb.Key] = models.NewMoney(d)
				}
			}
			break
		}
	}
	return summary
}
