package aggregate

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JorgeHRP/renato-bi/pkg/models"
	"github.com/JorgeHRP/renato-bi/pkg/parser"
)

func day(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func tx(date string, dir models.Direction, amount string, category string) *models.Transaction {
	t := &models.Transaction{
		Amount:    decimal.RequireFromString(amount),
		Direction: dir,
		Category:  category,
	}
	switch dir {
	case models.In:
		t.Kind = "Entrada"
	case models.Out:
		t.Kind = "Saída"
	}
	if date != "" {
		t.Date = day(date)
	}
	return t
}

func fullHeader() parser.Header {
	return parser.Header{Amount: 0, Direction: 1, Date: 2, Description: 3, Category: 4, Status: 5}
}

func money(t *testing.T, got models.Money, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestBuildScenario(t *testing.T) {
	res := &parser.Result{
		Header: fullHeader(),
		Transactions: []*models.Transaction{
			tx("2025-01-10", models.In, "1000", ""),
			tx("2025-01-15", models.Out, "-400", ""),
			tx("2025-02-01", models.In, "500", ""),
		},
	}

	rec := Build(res, []string{"Base"}, 20, 8)

	money(t, rec.Summary[models.TotalIn], "1500")
	money(t, rec.Summary[models.TotalOut], "400")
	money(t, rec.Summary[models.Balance], "1100")

	m := rec.Charts.Monthly
	if m == nil {
		t.Fatal("expected monthly series")
	}
	if fmt.Sprint(m.Labels) != "[2025-01 2025-02]" {
		t.Fatalf("labels: %v", m.Labels)
	}
	money(t, m.In[0], "1000")
	money(t, m.In[1], "500")
	money(t, m.Out[0], "400")
	money(t, m.Out[1], "0")

	if rec.Charts.Categories != nil {
		t.Errorf("no categories were named, got %+v", rec.Charts.Categories)
	}
	if len(rec.Transactions) != 3 || rec.Transactions[0].Date != "2025-02-01" {
		t.Errorf("recent: %+v", rec.Transactions)
	}
}

func TestBuildWithoutRequiredColumns(t *testing.T) {
	txs := []*models.Transaction{tx("2025-01-10", models.Unknown, "10", "")}

	noDirection := fullHeader()
	noDirection.Direction = -1
	rec := Build(&parser.Result{Header: noDirection, Transactions: txs}, nil, 20, 8)
	if !rec.Summary.Empty() || len(rec.Transactions) != 0 || rec.Charts.Monthly != nil {
		t.Errorf("expected an empty record, got %+v", rec)
	}

	rec = Build(&parser.Result{Header: fullHeader()}, nil, 20, 8)
	if !rec.Summary.Empty() {
		t.Errorf("no surviving rows must leave the summary empty, got %v", rec.Summary)
	}
}

func TestTotalsRounding(t *testing.T) {
	s := Totals([]*models.Transaction{
		tx("", models.In, "0.005", ""),
		tx("", models.In, "10.00", ""),
		tx("", models.Out, "-3.335", ""),
		tx("", models.Unknown, "999", ""),
	})
	money(t, s[models.TotalIn], "10.01")
	money(t, s[models.TotalOut], "3.34")
	money(t, s[models.Balance], "6.67")
}

func TestMonthlySkipsUndated(t *testing.T) {
	m := Monthly([]*models.Transaction{
		tx("2025-03-02", models.Out, "50", ""),
		tx("", models.In, "1000", ""),
		tx("2025-01-31", models.Unknown, "7", ""),
	})
	if fmt.Sprint(m.Labels) != "[2025-01 2025-03]" {
		t.Fatalf("labels: %v", m.Labels)
	}
	money(t, m.In[0], "0")
	money(t, m.Out[1], "50")
}

func TestCategories(t *testing.T) {
	var txs []*models.Transaction
	for i := 0; i < 10; i++ {
		txs = append(txs, tx("", models.Out, fmt.Sprintf("-%d", (i+1)*10), fmt.Sprintf("cat%d", i)))
	}
	txs = append(txs,
		tx("", models.Out, "-5", ""),
		tx("", models.In, "5000", "cat0"),
		tx("", models.Out, "-90", "cat0"),
	)

	c := Categories(txs, 8)
	if len(c.Labels) != 8 || len(c.Values) != 8 {
		t.Fatalf("expected 8 categories, got %d", len(c.Labels))
	}
	if c.Labels[0] != "cat0" || c.Labels[1] != "cat9" || c.Labels[2] != "cat8" {
		t.Errorf("unexpected order: %v", c.Labels)
	}
	money(t, c.Values[0], "100")
	money(t, c.Values[1], "100")
	for _, l := range c.Labels {
		if l == "" {
			t.Error("blank category returned")
		}
	}
}

func TestCategoriesTiesKeepFirstSeen(t *testing.T) {
	c := Categories([]*models.Transaction{
		tx("", models.Out, "-10", "b"),
		tx("", models.Out, "-10", "a"),
		tx("", models.Out, "-20", "c"),
	}, 8)
	if fmt.Sprint(c.Labels) != "[c b a]" {
		t.Errorf("unexpected order: %v", c.Labels)
	}
}

// Outflows stored with both signs: each category reports the magnitude of
// its own sum, so the breakdown can exceed total_out but never the summed
// magnitudes of the outflow rows.
func TestCategoriesMixedSignOutflows(t *testing.T) {
	txs := []*models.Transaction{
		tx("2025-01-02", models.Out, "-300", "Aluguel"),
		tx("2025-01-03", models.Out, "100", "Estorno"),
	}
	rec := Build(&parser.Result{Header: fullHeader(), Transactions: txs}, nil, 20, 8)

	money(t, rec.Summary[models.TotalOut], "200")
	c := rec.Charts.Categories
	if fmt.Sprint(c.Labels) != "[Aluguel Estorno]" {
		t.Fatalf("unexpected labels: %v", c.Labels)
	}
	money(t, c.Values[0], "300")
	money(t, c.Values[1], "100")
}

func TestRecent(t *testing.T) {
	txs := []*models.Transaction{
		tx("", models.In, "1", ""),
		tx("2025-01-01", models.In, "2", ""),
		tx("2025-03-01", models.In, "3.456", ""),
		tx("2025-01-01", models.Out, "4", ""),
	}
	txs[0].Description = "undated"

	got := Recent(txs, 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	if got[0].Date != "2025-03-01" || got[1].Direction != "Entrada" || got[2].Direction != "Saída" {
		t.Errorf("unexpected order: %+v", got)
	}
	money(t, got[0].Amount, "3.46")

	all := Recent(txs, 20)
	if all[3].Date != "" || all[3].Description != "undated" {
		t.Errorf("undated rows go last: %+v", all[3])
	}
}

// TestProperties checks the structural guarantees against generated data.
func TestProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	dirs := []models.Direction{models.In, models.Out, models.Unknown}

	for run := 0; run < 50; run++ {
		var txs []*models.Transaction
		n := rng.Intn(80)
		for i := 0; i < n; i++ {
			date := ""
			if rng.Intn(5) > 0 {
				date = fmt.Sprintf("2024-%02d-%02d", rng.Intn(12)+1, rng.Intn(28)+1)
			}
			amount := decimal.New(rng.Int63n(2000000)-1000000, -3)
			txs = append(txs, tx(date, dirs[rng.Intn(3)], amount.String(), fmt.Sprintf("c%d", rng.Intn(12))))
		}
		rec := Build(&parser.Result{Header: fullHeader(), Transactions: txs}, nil, 20, 8)
		if len(txs) == 0 {
			continue
		}

		in, out := rec.Summary[models.TotalIn], rec.Summary[models.TotalOut]
		if !rec.Summary[models.Balance].Equal(in.Sub(out.Decimal)) {
			t.Fatalf("run %d: balance %s != %s - %s", run, rec.Summary[models.Balance], in, out)
		}
		if out.IsNegative() {
			t.Fatalf("run %d: negative total_out %s", run, out)
		}

		if m := rec.Charts.Monthly; m != nil {
			if len(m.Labels) != len(m.In) || len(m.Labels) != len(m.Out) {
				t.Fatalf("run %d: ragged monthly series", run)
			}
			for i := 1; i < len(m.Labels); i++ {
				if m.Labels[i-1] >= m.Labels[i] {
					t.Fatalf("run %d: labels not strictly ascending: %v", run, m.Labels)
				}
			}
		}

		if c := rec.Charts.Categories; c != nil {
			if len(c.Labels) > 8 {
				t.Fatalf("run %d: %d categories", run, len(c.Labels))
			}
			sum := decimal.Zero
			for i, v := range c.Values {
				sum = sum.Add(v.Decimal)
				if i > 0 && v.GreaterThan(c.Values[i-1].Decimal) {
					t.Fatalf("run %d: categories not descending: %v", run, c.Values)
				}
			}
			magnitude := decimal.Zero
			for _, tx := range txs {
				if tx.Direction == models.Out {
					magnitude = magnitude.Add(tx.Amount.Abs())
				}
			}
			if sum.GreaterThan(magnitude.Add(decimal.New(1, -2).Mul(decimal.NewFromInt(int64(len(c.Values)))))) {
				t.Fatalf("run %d: categories %s exceed outflows %s", run, sum, magnitude)
			}
		}

		if len(rec.Transactions) > 20 {
			t.Fatalf("run %d: %d recent entries", run, len(rec.Transactions))
		}
		for i := 1; i < len(rec.Transactions); i++ {
			prev, cur := rec.Transactions[i-1].Date, rec.Transactions[i].Date
			if prev == "" && cur != "" {
				t.Fatalf("run %d: dated entry after undated one", run)
			}
			if prev != "" && cur != "" && prev < cur {
				t.Fatalf("run %d: recent not descending: %s before %s", run, prev, cur)
			}
		}
	}
}
