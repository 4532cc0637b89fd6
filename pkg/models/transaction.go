package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction classifies a transaction as money coming in or going out.
type Direction string

const (
	In      Direction = "in"
	Out     Direction = "out"
	Unknown Direction = ""
)

// Transaction represents a normalized row of a transaction sheet
type Transaction struct {
	Date        *time.Time
	Description string
	Category    string
	Amount      decimal.Decimal
	Direction   Direction
	// Kind is the direction label exactly as it appeared in the sheet.
	Kind   string
	Status string
}

// Month returns the "YYYY-MM" key of the transaction date.
func (t *Transaction) Month() (string, bool) {
	if t.Date == nil {
		return "", false
	}
	return t.Date.Format("2006-01"), true
}

// Entry is a transaction as shown in the recent transactions feed
type Entry struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Amount      Money  `json:"amount"`
	Direction   string `json:"direction"`
	Status      string `json:"status"`
}
