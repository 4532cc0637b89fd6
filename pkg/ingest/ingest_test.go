package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/JorgeHRP/renato-bi/pkg/layout"
	"github.com/JorgeHRP/renato-bi/pkg/models"
	"github.com/JorgeHRP/renato-bi/pkg/sheet/sheettest"
	"github.com/JorgeHRP/renato-bi/pkg/store"
)

var fixedNow = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

type fixture struct {
	ingester  *Ingester
	records   *store.Records
	companies *store.Companies
	company   *models.Company
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	docs := store.NewMemoryStore()
	f := &fixture{
		records:   store.NewRecords(docs),
		companies: store.NewCompanies(docs),
		company:   models.NewCompany("Acme", "", "varejo", fixedNow.Add(-time.Hour)),
	}
	if err := f.companies.Put(context.Background(), f.company); err != nil {
		t.Fatalf("failed to create company: %v", err)
	}
	f.ingester = New(log.New(io.Discard), layout.Default(), f.records, f.companies)
	f.ingester.now = func() time.Time { return fixedNow }
	return f
}

func baseSheet() sheettest.Sheet {
	return sheettest.Sheet{Name: "Base", Rows: sheettest.Rows(
		[]any{"Data", "Tipo", "Valor", "Categoria", "Descricao"},
		[]any{"2025-01-10", "Entrada", 1000, "Vendas", "Pedido 1"},
		[]any{"2025-01-15", "Saída", -400, "Aluguel", "Janeiro"},
		[]any{"2025-02-01", "Entrada", 500, "Vendas", "Pedido 2"},
	)}
}

func dashSheet() sheettest.Sheet {
	return sheettest.Sheet{Name: "DASH", Rows: [][]any{{"SALDO INICIAL", 200, "SALDO FINAL", 350}}}
}

func amount(t *testing.T, s models.Summary, key, want string) {
	t.Helper()
	got, ok := s[key]
	if !ok {
		t.Errorf("%s missing from %v", key, s)
		return
	}
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s: got %s, want %s", key, got, want)
	}
}

func TestIngestTransactions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.ingester.Ingest(ctx, Upload{
		CompanyID: f.company.ID,
		Filename:  "financeiro_jan.xlsx",
		Data:      sheettest.XLSX(t, baseSheet()),
	})
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if res.Imported != 3 {
		t.Errorf("expected 3 transactions imported, got %d", res.Imported)
	}

	rec, err := f.records.Get(ctx, f.company.ID)
	if err != nil {
		t.Fatalf("record not stored: %v", err)
	}
	amount(t, rec.Summary, models.TotalIn, "1500")
	amount(t, rec.Summary, models.TotalOut, "400")
	amount(t, rec.Summary, models.Balance, "1100")
	if rec.Charts.Monthly == nil || len(rec.Charts.Monthly.Labels) != 2 {
		t.Errorf("monthly series: %+v", rec.Charts.Monthly)
	}
	if rec.Charts.Categories == nil || rec.Charts.Categories.Labels[0] != "Aluguel" {
		t.Errorf("categories: %+v", rec.Charts.Categories)
	}
	if rec.Filename != "financeiro_jan.xlsx" || rec.CompanyID != f.company.ID {
		t.Errorf("provenance: %+v", rec)
	}
	if rec.UploadedAt == nil || !rec.UploadedAt.Equal(fixedNow) {
		t.Errorf("uploaded_at: %v", rec.UploadedAt)
	}

	company, err := f.companies.Get(ctx, f.company.ID)
	if err != nil {
		t.Fatalf("company lookup failed: %v", err)
	}
	if !company.HasData || company.LastUpload == nil || !company.LastUpload.Equal(fixedNow) {
		t.Errorf("company not flagged: %+v", company)
	}
}

func TestIngestFallsBackToDashboard(t *testing.T) {
	f := newFixture(t)

	res, err := f.ingester.Ingest(context.Background(), Upload{
		CompanyID: f.company.ID,
		Filename:  "relatorio.xlsx",
		Data:      sheettest.XLSX(t, dashSheet()),
	})
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	s := res.Record.Summary
	if len(s) != 2 {
		t.Fatalf("unexpected summary: %v", s)
	}
	amount(t, s, "saldo_inicial", "200")
	amount(t, s, "saldo_final", "350")
	if _, ok := s["geracao_caixa"]; ok {
		t.Error("geracao_caixa should be absent")
	}
	if res.Imported != 0 {
		t.Errorf("expected 0 imported, got %d", res.Imported)
	}
}

func TestExtractBlankAmounts(t *testing.T) {
	blank := sheettest.Sheet{Name: "Base", Rows: sheettest.Rows(
		[]any{"Data", "Tipo", "Valor"},
		[]any{"2025-01-10", "Entrada", nil},
		[]any{"2025-01-11", "Saída", nil},
	)}
	f := newFixture(t)

	rec := f.ingester.Extract(sheettest.XLSX(t, blank), "base.xlsx")
	if !rec.Summary.Empty() || len(rec.Transactions) != 0 || rec.Error != "" {
		t.Errorf("expected an empty record, got %+v", rec)
	}

	rec = f.ingester.Extract(sheettest.XLSX(t, blank, dashSheet()), "planilha.xlsx")
	amount(t, rec.Summary, "saldo_inicial", "200")
	if len(rec.Sheets) != 2 {
		t.Errorf("expected both sheet names, got %v", rec.Sheets)
	}
}

func TestExtractInvalidFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.ingester.Ingest(ctx, Upload{CompanyID: f.company.ID, Filename: "x.xlsx", Data: []byte("not a spreadsheet")})
	if err != nil {
		t.Fatalf("extraction faults must not be returned: %v", err)
	}
	rec := res.Record
	if rec.Error == "" {
		t.Fatal("expected an error message")
	}
	if len(rec.Sheets) != 0 || !rec.Summary.Empty() || len(rec.Transactions) != 0 ||
		rec.Charts.Monthly != nil || rec.Charts.Categories != nil {
		t.Errorf("unexpected content: %+v", rec)
	}

	stored, err := f.records.Get(ctx, f.company.ID)
	if err != nil {
		t.Fatalf("error record should still be stored: %v", err)
	}
	if stored.Error != rec.Error {
		t.Errorf("stored error %q, want %q", stored.Error, rec.Error)
	}
}

func TestExtractHintOrder(t *testing.T) {
	f := newFixture(t)
	data := sheettest.XLSX(t, baseSheet(), dashSheet())

	for _, name := range []string{"Financeiro.xlsx", "planilha.xlsx", "dashboard_clientes.xlsx", "DASH_marco.xlsx"} {
		rec := f.ingester.Extract(data, name)
		amount(t, rec.Summary, models.Balance, "1100")
		if _, ok := rec.Summary["saldo_inicial"]; ok {
			t.Errorf("%s: a usable transaction sheet must win, got %v", name, rec.Summary)
		}
	}
}

func TestExtractTransactionHintSkipsDashboard(t *testing.T) {
	f := newFixture(t)
	data := sheettest.XLSX(t, dashSheet())

	rec := f.ingester.Extract(data, "base_marco.xlsx")
	if !rec.Summary.Empty() || rec.Error != "" {
		t.Errorf("transaction hint must not scan the dashboard, got %+v", rec)
	}
	if len(rec.Sheets) != 1 {
		t.Errorf("expected the sheet names, got %v", rec.Sheets)
	}

	rec = f.ingester.Extract(data, "marco.xlsx")
	amount(t, rec.Summary, "saldo_final", "350")
}

func TestExtractIsDeterministic(t *testing.T) {
	f := newFixture(t)
	data := sheettest.XLSX(t, baseSheet())

	encode := func(rec *models.Record) string {
		b, err := json.Marshal([]any{rec.Summary, rec.Charts, rec.Transactions})
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		return string(b)
	}
	first := encode(f.ingester.Extract(data, "financeiro.xlsx"))
	second := encode(f.ingester.Extract(data, "financeiro.xlsx"))
	if first != second {
		t.Errorf("runs differ:\n%s\n%s", first, second)
	}
}

func TestIngestUnknownCompany(t *testing.T) {
	f := newFixture(t)
	_, err := f.ingester.Ingest(context.Background(), Upload{CompanyID: "missing", Filename: "a.xlsx", Data: sheettest.XLSX(t, baseSheet())})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestIngestDirectory(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	data := sheettest.XLSX(t, baseSheet())

	files := map[string][]byte{
		UploadName(f.company.ID, "financeiro.xlsx"): data,
		UploadName("ghost000", "financeiro.xlsx"):   data,
		"notes.txt":                                 []byte("ignored"),
		"noprefix.xlsx":                             data,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), content, 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
	}

	n, err := f.ingester.IngestDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("IngestDirectory failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 file ingested, got %d", n)
	}
	if _, err := f.records.Get(context.Background(), f.company.ID); err != nil {
		t.Errorf("record not stored: %v", err)
	}
}

func TestExtractLegacyWorkbook(t *testing.T) {
	f := newFixture(t)

	data, err := os.ReadFile(filepath.Join("..", "sheet", "testdata", "financeiro.xls"))
	if err != nil {
		t.Fatalf("failed to read fixture: %v", err)
	}
	rec := f.ingester.Extract(data, "financeiro.xls")
	if rec.Error != "" {
		t.Fatalf("unexpected error: %s", rec.Error)
	}
	amount(t, rec.Summary, models.TotalIn, "1500.5")
	amount(t, rec.Summary, models.TotalOut, "499.9")
	amount(t, rec.Summary, models.Balance, "1000.6")
	if len(rec.Transactions) != 3 || rec.Transactions[0].Date != "2024-02-03" {
		t.Errorf("unexpected transactions: %+v", rec.Transactions)
	}
	if m := rec.Charts.Monthly; m == nil || len(m.Labels) != 2 || m.Labels[0] != "2024-01" || m.Labels[1] != "2024-02" {
		t.Errorf("unexpected monthly series: %+v", rec.Charts.Monthly)
	}

	data, err = os.ReadFile(filepath.Join("..", "sheet", "testdata", "dashboard.xls"))
	if err != nil {
		t.Fatalf("failed to read fixture: %v", err)
	}
	rec = f.ingester.Extract(data, "dash_marco.xls")
	amount(t, rec.Summary, "saldo_inicial", "200")
	amount(t, rec.Summary, "geracao_caixa", "150.25")
	amount(t, rec.Summary, "saldo_final", "350")
}
