package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/JorgeHRP/renato-bi/pkg/csv"
	"github.com/JorgeHRP/renato-bi/pkg/models"
)

type filters struct {
	startDate   string
	endDate     string
	minAmount   float64
	maxAmount   float64
	description string
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

// toFilterFunc accepts every entry when no filter is set. Undated entries
// are dropped as soon as a date bound is given.
func (f *filters) toFilterFunc() csv.FilterFunc {
	return func(e models.Entry) bool {
		if f.startDate != "" || f.endDate != "" {
			date, err := time.Parse("2006-01-02", e.Date)
			if err != nil {
				return false
			}
			if f.startDate != "" {
				start, _ := time.Parse("2006-01-02", f.startDate)
				if date.Before(start) {
					return false
				}
			}
			if f.endDate != "" {
				end, _ := time.Parse("2006-01-02", f.endDate)
				if date.After(end) {
					return false
				}
			}
		}
		if f.minAmount != 0 && e.Amount.LessThan(decimal.NewFromFloat(f.minAmount)) {
			return false
		}
		if f.maxAmount != 0 && e.Amount.GreaterThan(decimal.NewFromFloat(f.maxAmount)) {
			return false
		}
		if f.description != "" && !strings.Contains(strings.ToLower(e.Description), strings.ToLower(f.description)) {
			return false
		}
		return true
	}
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // gray
	inflowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	outflowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

func printRecord(rec *models.Record, filter csv.FilterFunc) {
	fmt.Println(titleStyle.Render(fmt.Sprintf("%s (%s)", rec.Filename, rec.CompanyID)))
	if rec.UploadedAt != nil {
		fmt.Println(mutedStyle.Render("uploaded " + rec.UploadedAt.Format(time.RFC3339)))
	}
	if rec.Error != "" {
		fmt.Println(errorStyle.Render("error: " + rec.Error))
		return
	}
	if rec.Summary.Empty() {
		fmt.Println(mutedStyle.Render("no summary could be extracted"))
	}
	for _, key := range summaryKeys(rec.Summary) {
		fmt.Printf("%-15s R$ %s\n", key, rec.Summary[key].StringFixed(2))
	}

	if m := rec.Charts.Monthly; m != nil {
		fmt.Println(titleStyle.Render("\nMonthly"))
		for i, label := range m.Labels {
			fmt.Printf("%s  %s  %s\n", label,
				inflowStyle.Render(fmt.Sprintf("+%12s", m.In[i].StringFixed(2))),
				outflowStyle.Render(fmt.Sprintf("-%12s", m.Out[i].StringFixed(2))))
		}
	}
	if c := rec.Charts.Categories; c != nil {
		fmt.Println(titleStyle.Render("\nTop categories"))
		for i, label := range c.Labels {
			fmt.Printf("%-30s R$ %s\n", label, c.Values[i].StringFixed(2))
		}
	}

	fmt.Println(titleStyle.Render("\nRecent transactions"))
	for _, e := range rec.Transactions {
		if filter != nil && !filter(e) {
			continue
		}
		line := fmt.Sprintf("%-10s | %-30s | %-20s | R$ %10s | %s", e.Date, e.Description, e.Category, e.Amount.StringFixed(2), e.Status)
		switch {
		case e.Amount.IsNegative():
			fmt.Println(outflowStyle.Render("- " + line))
		case e.Amount.IsPositive():
			fmt.Println(inflowStyle.Render("+ " + line))
		default:
			fmt.Println(mutedStyle.Render("  " + line))
		}
	}
}

// summaryKeys puts the known keys first, in reading order.
func summaryKeys(s models.Summary) []string {
	order := []string{models.TotalIn, models.TotalOut, models.Balance, "saldo_inicial", "geracao_caixa", "saldo_final"}
	var keys []string
	seen := map[string]bool{}
	for _, k := range order {
		if _, ok := s[k]; ok {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	var rest []string
	for k := range s {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

func printCSV(entries []models.Entry, filter csv.FilterFunc) error {
	out, err := csv.Create(entries, filter)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}

func printCompanies(companies []*models.Company) {
	for _, c := range companies {
		status := mutedStyle.Render("no data")
		if c.HasData && c.LastUpload != nil {
			status = inflowStyle.Render("updated " + c.LastUpload.Format("2006-01-02 15:04"))
		}
		fmt.Printf("%s  %-30s %-18s %s\n", c.ID, c.Name, c.CNPJ, status)
	}
}
