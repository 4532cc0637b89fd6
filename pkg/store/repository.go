package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/JorgeHRP/renato-bi/pkg/models"
)

// Records keeps the latest record of each company.
type Records struct {
	docs Documents
}

func NewRecords(docs Documents) *Records {
	return &Records{docs: docs}
}

func (r *Records) Get(ctx context.Context, companyID string) (*models.Record, error) {
	data, err := r.docs.Get(ctx, CollectionRecords, companyID)
	if err != nil {
		return nil, err
	}
	var rec models.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode record %s: %w", companyID, err)
	}
	return &rec, nil
}

// Put replaces whatever record the company had.
func (r *Records) Put(ctx context.Context, companyID string, rec *models.Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	return r.docs.Put(ctx, CollectionRecords, companyID, data)
}

func (r *Records) Delete(ctx context.Context, companyID string) error {
	return r.docs.Delete(ctx, CollectionRecords, companyID)
}

type Companies struct {
	docs Documents
}

func NewCompanies(docs Documents) *Companies {
	return &Companies{docs: docs}
}

func (c *Companies) Get(ctx context.Context, id string) (*models.Company, error) {
	data, err := c.docs.Get(ctx, CollectionCompanies, id)
	if err != nil {
		return nil, err
	}
	var company models.Company
	if err := json.Unmarshal(data, &company); err != nil {
		return nil, fmt.Errorf("failed to decode company %s: %w", id, err)
	}
	return &company, nil
}

func (c *Companies) Put(ctx context.Context, company *models.Company) error {
	data, err := json.MarshalIndent(company, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode company: %w", err)
	}
	return c.docs.Put(ctx, CollectionCompanies, company.ID, data)
}

func (c *Companies) Delete(ctx context.Context, id string) error {
	return c.docs.Delete(ctx, CollectionCompanies, id)
}

// List returns all companies, oldest first.
func (c *Companies) List(ctx context.Context) ([]*models.Company, error) {
	docs, err := c.docs.List(ctx, CollectionCompanies)
	if err != nil {
		return nil, err
	}
	companies := make([]*models.Company, 0, len(docs))
	for _, data := range docs {
		var company models.Company
		if err := json.Unmarshal(data, &company); err != nil {
			return nil, fmt.Errorf("failed to decode company: %w", err)
		}
		companies = append(companies, &company)
	}
	sort.SliceStable(companies, func(i, j int) bool {
		return companies[i].CreatedAt.Before(companies[j].CreatedAt)
	})
	return companies, nil
}
