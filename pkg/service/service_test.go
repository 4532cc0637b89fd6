package service

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/JorgeHRP/renato-bi/pkg/config"
	"github.com/JorgeHRP/renato-bi/pkg/models"
)

func TestNewWiresStore(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{DataDir: t.TempDir(), Store: config.Store{Backend: "file"}}

	svc, err := New(ctx, cfg, log.New(io.Discard))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer svc.Close()

	c := &models.Company{ID: "abcd1234", Name: "Acme"}
	if err := svc.Companies.Put(ctx, c); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	got, err := svc.Companies.Get(ctx, "abcd1234")
	if err != nil || got.Name != "Acme" {
		t.Errorf("company not stored: %+v, %v", got, err)
	}
	if svc.Layout.TransactionSheet != "Base" {
		t.Errorf("expected default layout, got %q", svc.Layout.TransactionSheet)
	}
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	cfg := &config.Config{Store: config.Store{Backend: "tape"}}
	if _, err := New(context.Background(), cfg, log.New(io.Discard)); err == nil {
		t.Error("expected an error")
	}
}

func TestNewRejectsMissingLayout(t *testing.T) {
	cfg := &config.Config{Store: config.Store{Backend: "memory"}, Layout: "/nonexistent/layout.yaml"}
	if _, err := New(context.Background(), cfg, log.New(io.Discard)); err == nil {
		t.Error("expected an error")
	}
}
