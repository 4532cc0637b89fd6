package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestFailedRecordShape(t *testing.T) {
	data, err := json.Marshal(Failed(errors.New("boom")))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	want := `{"sheets":[],"summary":{},"transactions":[],"charts":{},"error":"boom"}`
	if string(data) != want {
		t.Errorf("got %s\nwant %s", data, want)
	}
}

func TestMoneyEncodesAsNumber(t *testing.T) {
	s := Summary{TotalIn: Cents(decimal.RequireFromString("1500.005"))}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `{"total_in":1500.01}` {
		t.Errorf("unexpected encoding: %s", data)
	}

	var back Summary
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !back[TotalIn].Equal(decimal.RequireFromString("1500.01")) {
		t.Errorf("round trip lost value: %s", back[TotalIn])
	}
}

func TestNewCompany(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewCompany(" Acme ", "00.000.000/0001-00", "", now)
	if len(c.ID) != 8 {
		t.Errorf("expected 8 character id, got %q", c.ID)
	}
	if c.Name != "Acme" || c.HasData || c.LastUpload != nil {
		t.Errorf("unexpected company: %+v", c)
	}

	c.MarkUploaded(now)
	if !c.HasData || c.LastUpload == nil || !c.LastUpload.Equal(now) {
		t.Errorf("upload not recorded: %+v", c)
	}
}
