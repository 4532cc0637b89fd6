package layout

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Columns lists, per canonical field, the header names that identify it.
// Matching ignores case, accents and surrounding whitespace.
type Columns struct {
	Amount      []string `yaml:"amount"`
	Direction   []string `yaml:"direction"`
	Date        []string `yaml:"date"`
	Description []string `yaml:"description"`
	Category    []string `yaml:"category"`
	Status      []string `yaml:"status"`
}

type Directions struct {
	Inflow  string `yaml:"inflow"`
	Outflow string `yaml:"outflow"`
}

// Label maps a caption on a dashboard sheet to a summary key.
type Label struct {
	Key  string `yaml:"key"`
	Text string `yaml:"text"`
}

// Hints lists filename terms that mark an upload as a transaction export.
type Hints struct {
	Transactions []string `yaml:"transactions"`
}

// Layout describes where figures live in an uploaded workbook.
type Layout struct {
	TransactionSheet string     `yaml:"transaction_sheet"`
	DashboardSheets  []string   `yaml:"dashboard_sheets"`
	Columns          Columns    `yaml:"columns"`
	Directions       Directions `yaml:"directions"`
	DashboardLabels  []Label    `yaml:"dashboard_labels"`
	Hints            Hints      `yaml:"hints"`
	RecentLimit      int        `yaml:"recent_limit"`
	TopCategories    int        `yaml:"top_categories"`
}

func Default() *Layout {
	return &Layout{
		TransactionSheet: "Base",
		DashboardSheets:  []string{"DASH"},
		Columns: Columns{
			Amount:      []string{"valor", "amount", "value"},
			Direction:   []string{"tipo", "type", "direction"},
			Date:        []string{"data", "date"},
			Description: []string{"descricao", "description", "historico"},
			Category:    []string{"categoria", "category"},
			Status:      []string{"status", "situacao"},
		},
		Directions: Directions{Inflow: "Entrada", Outflow: "Saída"},
		DashboardLabels: []Label{
			{Key: "saldo_inicial", Text: "SALDO INICIAL"},
			{Key: "geracao_caixa", Text: "GERAÇÃO CAIXA"},
			{Key: "saldo_final", Text: "SALDO FINAL"},
		},
		Hints: Hints{
			Transactions: []string{"financeiro", "base"},
		},
		RecentLimit:   20,
		TopCategories: 8,
	}
}

// Load reads a layout file. Fields left out of the file keep their default.
func Load(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout file: %w", err)
	}

	l := Default()
	if err := yaml.Unmarshal(data, l); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Layout) Validate() error {
	if l.TransactionSheet == "" {
		return fmt.Errorf("layout has no transaction sheet")
	}
	if len(l.Columns.Amount) == 0 || len(l.Columns.Direction) == 0 {
		return fmt.Errorf("layout must name the amount and direction columns")
	}
	if l.Directions.Inflow == "" || l.Directions.Outflow == "" {
		return fmt.Errorf("layout must name the inflow and outflow labels")
	}
	if l.Directions.Inflow == l.Directions.Outflow {
		return fmt.Errorf("inflow and outflow labels must differ")
	}
	for i, lb := range l.DashboardLabels {
		if lb.Key == "" || lb.Text == "" {
			return fmt.Errorf("dashboard label %d needs both key and text", i+1)
		}
	}
	if l.RecentLimit < 0 || l.TopCategories < 0 {
		return fmt.Errorf("limits must not be negative")
	}
	return nil
}

// Print writes the effective layout in a human readable form.
func (l *Layout) Print(w io.Writer) {
	fmt.Fprintf(w, "transaction sheet: %s\n", l.TransactionSheet)
	fmt.Fprintf(w, "dashboard sheets: %v\n", l.DashboardSheets)
	fmt.Fprintf(w, "columns:\n")
	fmt.Fprintf(w, "  amount: %v\n", l.Columns.Amount)
	fmt.Fprintf(w, "  direction: %v\n", l.Columns.Direction)
	fmt.Fprintf(w, "  date: %v\n", l.Columns.Date)
	fmt.Fprintf(w, "  description: %v\n", l.Columns.Description)
	fmt.Fprintf(w, "  category: %v\n", l.Columns.Category)
	fmt.Fprintf(w, "  status: %v\n", l.Columns.Status)
	fmt.Fprintf(w, "directions: in=%q out=%q\n", l.Directions.Inflow, l.Directions.Outflow)
	for i, lb := range l.DashboardLabels {
		fmt.Fprintf(w, "[%d] %s <- %q\n", i+1, lb.Key, lb.Text)
	}
	fmt.Fprintf(w, "transaction hints: %v\n", l.Hints.Transactions)
	fmt.Fprintf(w, "recent limit: %d, top categories: %d\n", l.RecentLimit, l.TopCategories)
}
