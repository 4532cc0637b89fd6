package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Company is a client whose uploads are turned into records.
type Company struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	CNPJ       string     `json:"cnpj"`
	Segment    string     `json:"segment"`
	CreatedAt  time.Time  `json:"created_at"`
	HasData    bool       `json:"has_data"`
	LastUpload *time.Time `json:"last_upload"`
}

// NewCompany assigns a short random id.
func NewCompany(name, cnpj, segment string, now time.Time) *Company {
	return &Company{
		ID:        uuid.NewString()[:8],
		Name:      strings.TrimSpace(name),
		CNPJ:      strings.TrimSpace(cnpj),
		Segment:   strings.TrimSpace(segment),
		CreatedAt: now,
	}
}

// MarkUploaded records that a new record was stored for the company.
func (c *Company) MarkUploaded(at time.Time) {
	c.HasData = true
	c.LastUpload = &at
}
