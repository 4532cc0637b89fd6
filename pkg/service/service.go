// Package service wires configuration, storage and ingestion together for
// the command line and the HTTP server.
package service

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/JorgeHRP/renato-bi/pkg/config"
	"github.com/JorgeHRP/renato-bi/pkg/ingest"
	"github.com/JorgeHRP/renato-bi/pkg/layout"
	"github.com/JorgeHRP/renato-bi/pkg/store"
	"github.com/JorgeHRP/renato-bi/pkg/store/backend"
)

type Service struct {
	Config    *config.Config
	Logger    *log.Logger
	Layout    *layout.Layout
	Records   *store.Records
	Companies *store.Companies
	Ingester  *ingest.Ingester

	docs store.Documents
}

// New opens the configured store. Close releases it.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Service, error) {
	l, err := cfg.LoadLayout()
	if err != nil {
		return nil, err
	}
	docs, err := backend.Open(ctx, cfg.StoreOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	logger.Debug("store opened", "backend", cfg.Store.Backend)

	records := store.NewRecords(docs)
	companies := store.NewCompanies(docs)
	return &Service{
		Config:    cfg,
		Logger:    logger,
		Layout:    l,
		Records:   records,
		Companies: companies,
		Ingester:  ingest.New(logger, l, records, companies),
		docs:      docs,
	}, nil
}

func (s *Service) Close() error {
	return s.docs.Close()
}
