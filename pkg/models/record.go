package models

import "time"

// Summary keys written by the transaction path.
const (
	TotalIn  = "total_in"
	TotalOut = "total_out"
	Balance  = "balance"
)

// Summary holds the headline figures of a record. It is empty when nothing
// usable could be extracted.
type Summary map[string]Money

func (s Summary) Empty() bool {
	return len(s) == 0
}

// MonthlySeries holds parallel, equally long arrays ordered by month.
type MonthlySeries struct {
	Labels []string `json:"labels"`
	In     []Money  `json:"in"`
	Out    []Money  `json:"out"`
}

// CategoryBreakdown holds the largest outflow categories, biggest first.
type CategoryBreakdown struct {
	Labels []string `json:"labels"`
	Values []Money  `json:"values"`
}

type Charts struct {
	Monthly    *MonthlySeries     `json:"monthly,omitempty"`
	Categories *CategoryBreakdown `json:"categories,omitempty"`
}

// Record is the result of one ingestion run for one company. A newer upload
// replaces it entirely.
type Record struct {
	Sheets       []string `json:"sheets"`
	Summary      Summary  `json:"summary"`
	Transactions []Entry  `json:"transactions"`
	Charts       Charts   `json:"charts"`
	Error        string   `json:"error,omitempty"`

	Filename   string     `json:"filename,omitempty"`
	UploadedAt *time.Time `json:"uploaded_at,omitempty"`
	CompanyID  string     `json:"company_id,omitempty"`
}

// NewRecord returns a record with every collection initialised, so it
// encodes as [] and {} rather than null.
func NewRecord(sheets []string) *Record {
	if sheets == nil {
		sheets = []string{}
	}
	return &Record{
		Sheets:       sheets,
		Summary:      Summary{},
		Transactions: []Entry{},
	}
}

// Failed returns the record describing an extraction fault.
func Failed(err error) *Record {
	r := NewRecord(nil)
	r.Error = err.Error()
	return r
}

// Stamp attaches upload provenance.
func (r *Record) Stamp(companyID, filename string, at time.Time) {
	r.CompanyID = companyID
	r.Filename = filename
	r.UploadedAt = &at
}
