package parser

import (
	"github.com/charmbracelet/log"

	"github.com/JorgeHRP/renato-bi/pkg/layout"
	"github.com/JorgeHRP/renato-bi/pkg/models"
	"github.com/JorgeHRP/renato-bi/pkg/sheet"
)

// Header holds the index of each canonical column, or -1 when the sheet
// does not have it.
type Header struct {
	Amount      int
	Direction   int
	Date        int
	Description int
	Category    int
	Status      int
}

func (h Header) HasAmount() bool    { return h.Amount >= 0 }
func (h Header) HasDirection() bool { return h.Direction >= 0 }
func (h Header) HasDate() bool      { return h.Date >= 0 }
func (h Header) HasCategory() bool  { return h.Category >= 0 }

type Result struct {
	Header       Header
	Transactions []*models.Transaction
}

type Parser struct {
	logger *log.Logger
	layout *layout.Layout
}

func New(logger *log.Logger, l *layout.Layout) *Parser {
	return &Parser{
		logger: logger,
		layout: l,
	}
}

// Normalize turns the rows of a transaction sheet into transactions. The
// first row is the header. Rows without a numeric amount are dropped before
// anything else looks at them.
func (p *Parser) Normalize(rows [][]sheet.Cell) *Result {
	res := &Result{Header: Header{-1, -1, -1, -1, -1, -1}}
	if len(rows) == 0 {
		return res
	}
	res.Header = p.matchHeader(rows[0])
	p.logger.Debug("matched header", "header", res.Header)
	if !res.Header.HasAmount() {
		return res
	}

	h := res.Header
	for i, row := range rows[1:] {
		amount, ok := at(row, h.Amount).Decimal()
		if !ok {
			p.logger.Debug("skipping row without amount", "row", i+2)
			continue
		}

		tx := &models.Transaction{
			Amount:      amount,
			Kind:        at(row, h.Direction).String(),
			Description: at(row, h.Description).String(),
			Category:    at(row, h.Category).String(),
			Status:      at(row, h.Status).String(),
		}
		switch tx.Kind {
		case p.layout.Directions.Inflow:
			tx.Direction = models.In
		case p.layout.Directions.Outflow:
			tx.Direction = models.Out
		}
		if c := at(row, h.Date); !c.IsEmpty() {
			if d, ok := c.Time(); ok {
				tx.Date = &d
			} else {
				p.logger.Debug("unparseable date", "row", i+2, "value", c.String())
			}
		}
		res.Transactions = append(res.Transactions, tx)
	}
	return res
}

func (p *Parser) matchHeader(row []sheet.Cell) Header {
	cols := p.layout.Columns
	return Header{
		Amount:      find(row, cols.Amount),
		Direction:   find(row, cols.Direction),
		Date:        find(row, cols.Date),
		Description: find(row, cols.Description),
		Category:    find(row, cols.Category),
		Status:      find(row, cols.Status),
	}
}

// find returns the first column whose header equals one of the aliases.
func find(row []sheet.Cell, aliases []string) int {
	want := make(map[string]bool, len(aliases))
	for _, a := range aliases {
		want[sheet.Fold(a)] = true
	}
	for i, c := range row {
		if c.Kind == sheet.Text && want[sheet.Fold(c.String())] {
			return i
		}
	}
	return -1
}

func at(row []sheet.Cell, i int) sheet.Cell {
	if i < 0 || i >= len(row) {
		return sheet.Cell{}
	}
	return row[i]
}
