// Package aggregate turns normalized transactions into the figures shown on
// a company dashboard. All functions are pure.
package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/JorgeHRP/renato-bi/pkg/models"
	"github.com/JorgeHRP/renato-bi/pkg/parser"
)

// Build assembles a record from a normalized sheet. The summary stays empty
// when the amount or direction column is missing or no row had an amount.
func Build(res *parser.Result, sheets []string, recentLimit, topCategories int) *models.Record {
	rec := models.NewRecord(sheets)
	if !res.Header.HasAmount() || !res.Header.HasDirection() || len(res.Transactions) == 0 {
		return rec
	}

	txs := res.Transactions
	rec.Summary = Totals(txs)
	if res.Header.HasDate() {
		if m := Monthly(txs); len(m.Labels) > 0 {
			rec.Charts.Monthly = m
		}
	}
	if res.Header.HasCategory() {
		if c := Categories(txs, topCategories); len(c.Labels) > 0 {
			rec.Charts.Categories = c
		}
	}
	rec.Transactions = Recent(txs, recentLimit)
	return rec
}

// Totals sums inflows and the magnitude of outflows. The balance is taken
// from the rounded totals so that it always equals their difference.
func Totals(txs []*models.Transaction) models.Summary {
	in, out := decimal.Zero, decimal.Zero
	for _, tx := range txs {
		switch tx.Direction {
		case models.In:
			in = in.Add(tx.Amount)
		case models.Out:
			out = out.Add(tx.Amount)
		}
	}
	totalIn := models.Cents(in)
	totalOut := models.Cents(out.Abs())
	return models.Summary{
		models.TotalIn:  totalIn,
		models.TotalOut: totalOut,
		models.Balance:  models.NewMoney(totalIn.Sub(totalOut.Decimal)),
	}
}

// Monthly buckets dated transactions by "YYYY-MM". Months that only hold
// unclassified rows still get a label, with zero on both sides.
func Monthly(txs []*models.Transaction) *models.MonthlySeries {
	in := map[string]decimal.Decimal{}
	out := map[string]decimal.Decimal{}
	seen := map[string]bool{}
	for _, tx := range txs {
		month, ok := tx.Month()
		if !ok {
			continue
		}
		seen[month] = true
		switch tx.Direction {
		case models.In:
			in[month] = in[month].Add(tx.Amount)
		case models.Out:
			out[month] = out[month].Add(tx.Amount)
		}
	}

	labels := make([]string, 0, len(seen))
	for m := range seen {
		labels = append(labels, m)
	}
	sort.Strings(labels)

	series := &models.MonthlySeries{
		Labels: labels,
		In:     make([]models.Money, len(labels)),
		Out:    make([]models.Money, len(labels)),
	}
	for i, m := range labels {
		series.In[i] = models.Cents(in[m])
		series.Out[i] = models.Cents(out[m].Abs())
	}
	return series
}

// Categories returns the n outflow categories with the largest magnitude.
// Ties keep the order in which categories first appear.
func Categories(txs []*models.Transaction, n int) *models.CategoryBreakdown {
	var order []string
	sums := map[string]decimal.Decimal{}
	for _, tx := range txs {
		if tx.Direction != models.Out || tx.Category == "" {
			continue
		}
		if _, ok := sums[tx.Category]; !ok {
			order = append(order, tx.Category)
		}
		sums[tx.Category] = sums[tx.Category].Add(tx.Amount)
	}

	sort.SliceStable(order, func(i, j int) bool {
		return sums[order[i]].Abs().GreaterThan(sums[order[j]].Abs())
	})
	if len(order) > n {
		order = order[:n]
	}

	b := &models.CategoryBreakdown{
		Labels: order,
		Values: make([]models.Money, len(order)),
	}
	if b.Labels == nil {
		b.Labels = []string{}
	}
	for i, c := range order {
		b.Values[i] = models.Cents(sums[c].Abs())
	}
	return b
}

// Recent lists the n latest transactions, undated ones last. Rows sharing a
// date keep their sheet order.
func Recent(txs []*models.Transaction, n int) []models.Entry {
	sorted := make([]*models.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Date, sorted[j].Date
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return a.After(*b)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}

	entries := make([]models.Entry, len(sorted))
	for i, tx := range sorted {
		e := models.Entry{
			Description: tx.Description,
			Category:    tx.Category,
			Amount:      models.Cents(tx.Amount),
			Direction:   tx.Kind,
			Status:      tx.Status,
		}
		if tx.Date != nil {
			e.Date = tx.Date.Format("2006-01-02")
		}
		entries[i] = e
	}
	return entries
}
