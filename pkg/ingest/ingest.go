// Package ingest runs an uploaded spreadsheet through the extraction paths
// and stores the resulting record for its company.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/JorgeHRP/renato-bi/pkg/aggregate"
	"github.com/JorgeHRP/renato-bi/pkg/dashboard"
	"github.com/JorgeHRP/renato-bi/pkg/layout"
	"github.com/JorgeHRP/renato-bi/pkg/models"
	"github.com/JorgeHRP/renato-bi/pkg/parser"
	"github.com/JorgeHRP/renato-bi/pkg/sheet"
	"github.com/JorgeHRP/renato-bi/pkg/store"
)

type RecordRepository interface {
	Put(ctx context.Context, companyID string, rec *models.Record) error
}

type CompanyRepository interface {
	Get(ctx context.Context, id string) (*models.Company, error)
	Put(ctx context.Context, c *models.Company) error
}

type Upload struct {
	CompanyID string
	Filename  string
	Data      []byte
}

type Result struct {
	Record *models.Record
	// Imported is the number of transactions kept in the record.
	Imported int
}

type Ingester struct {
	logger    *log.Logger
	layout    *layout.Layout
	parser    *parser.Parser
	scanner   *dashboard.Scanner
	records   RecordRepository
	companies CompanyRepository
	now       func() time.Time
}

func New(logger *log.Logger, l *layout.Layout, records RecordRepository, companies CompanyRepository) *Ingester {
	return &Ingester{
		logger:    logger,
		layout:    l,
		parser:    parser.New(logger, l),
		scanner:   dashboard.New(logger, l),
		records:   records,
		companies: companies,
		now:       time.Now,
	}
}

// Ingest extracts a record from the upload, stores it in place of the
// company's previous one and flags the company as having data. Extraction
// problems end up in the record; only lookup and storage errors are
// returned.
func (i *Ingester) Ingest(ctx context.Context, u Upload) (*Result, error) {
	company, err := i.companies.Get(ctx, u.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load company %s: %w", u.CompanyID, err)
	}

	rec := i.Extract(u.Data, u.Filename)
	now := i.now().UTC()
	rec.Stamp(company.ID, u.Filename, now)

	if err := i.records.Put(ctx, company.ID, rec); err != nil {
		return nil, fmt.Errorf("failed to store record: %w", err)
	}
	company.MarkUploaded(now)
	if err := i.companies.Put(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to update company: %w", err)
	}

	i.logger.Info("ingested upload", "company_id", company.ID, "file", u.Filename,
		"transactions", len(rec.Transactions), "summary", len(rec.Summary), "error", rec.Error)
	return &Result{Record: rec, Imported: len(rec.Transactions)}, nil
}

// Extract builds a record from spreadsheet bytes without storing anything.
// It always returns a record; faults are reported in its Error field.
func (i *Ingester) Extract(data []byte, filename string) (rec *models.Record) {
	defer func() {
		if r := recover(); r != nil {
			i.logger.Error("extraction panicked", "file", filename, "panic", r)
			rec = models.Failed(fmt.Errorf("failed to process spreadsheet: %v", r))
		}
	}()

	wb, err := sheet.Open(data)
	if err != nil {
		i.logger.Warn("failed to open spreadsheet", "file", filename, "error", err)
		return models.Failed(err)
	}
	defer wb.Close()

	hint := DetectHint(filename, i.layout.Hints)
	i.logger.Debug("extracting", "file", filename, "hint", hint, "sheets", wb.SheetNames())

	primary, err := i.primary(wb)
	if err != nil {
		return models.Failed(err)
	}
	if hint == HintTransactions || !primary.Summary.Empty() {
		return primary
	}
	i.logger.Info("transaction sheet gave no summary, scanning dashboard", "file", filename)
	if fb := i.fallback(wb); !fb.Summary.Empty() {
		return fb
	}
	return primary
}

func (i *Ingester) primary(wb sheet.Workbook) (*models.Record, error) {
	name, ok := sheet.FindSheet(wb, i.layout.TransactionSheet)
	if !ok {
		return models.NewRecord(wb.SheetNames()), nil
	}
	rows, err := wb.Rows(name)
	if err != nil {
		return nil, err
	}
	res := i.parser.Normalize(rows)
	return aggregate.Build(res, wb.SheetNames(), i.layout.RecentLimit, i.layout.TopCategories), nil
}

func (i *Ingester) fallback(wb sheet.Workbook) *models.Record {
	rec := models.NewRecord(wb.SheetNames())
	rec.Summary = i.scanner.Extract(wb)
	return rec
}

// IngestDirectory re-ingests every "<company>_<name>.xls[x]" file in dir.
// Files of unknown companies are skipped. It returns how many files were
// ingested.
func (i *Ingester) IngestDirectory(ctx context.Context, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("error reading directory: %w", err)
	}

	count := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		ok, err := i.ingestEntry(ctx, dir, entry)
		if err != nil {
			i.logger.Error("failed to process entry", "file", entry.Name(), "error", err)
			continue
		}
		if ok {
			count++
		}
	}
	return count, nil
}

func (i *Ingester) ingestEntry(ctx context.Context, dir string, entry os.DirEntry) (bool, error) {
	if entry.IsDir() || !Allowed(entry.Name()) {
		return false, nil
	}
	companyID, filename, ok := ParseUploadName(entry.Name())
	if !ok {
		i.logger.Debug("skipping file without company prefix", "file", entry.Name())
		return false, nil
	}

	data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
	if err != nil {
		return false, fmt.Errorf("error reading file: %w", err)
	}
	if _, err := i.Ingest(ctx, Upload{CompanyID: companyID, Filename: filename, Data: data}); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			i.logger.Warn("skipping upload of unknown company", "file", entry.Name(), "company_id", companyID)
			return false, nil
		}
		return false, err
	}
	return true, nil
}
