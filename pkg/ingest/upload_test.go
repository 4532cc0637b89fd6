package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/JorgeHRP/renato-bi/pkg/layout"
)

func TestDetectHint(t *testing.T) {
	hints := layout.Default().Hints
	tests := []struct {
		filename string
		want     Hint
	}{
		{"Financeiro 2025.xlsx", HintTransactions},
		{"BASE.xls", HintTransactions},
		{"dash_base.xlsx", HintTransactions},
		{"Dashboard.xlsx", HintNone},
		{"relatorio.xlsx", HintNone},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := DetectHint(tt.filename, hints); got != tt.want {
				t.Errorf("DetectHint(%q) = %s, want %s", tt.filename, got, tt.want)
			}
		})
	}
}

func TestAllowed(t *testing.T) {
	for name, want := range map[string]bool{
		"a.xls":      true,
		"a.XLSX":     true,
		"a.csv":      false,
		"xlsx":       false,
		"a.xlsx.exe": false,
	} {
		if got := Allowed(name); got != want {
			t.Errorf("Allowed(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"Relatório Março.xlsx":  "Relatorio_Marco.xlsx",
		"../../etc/passwd":      "passwd",
		`C:\Users\ana\base.xls`: "base.xls",
		"..hidden.xlsx":         "hidden.xlsx",
	}
	for in, want := range tests {
		if got := SanitizeFilename(in); got != want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseUploadName(t *testing.T) {
	id, name, ok := ParseUploadName("ab12cd34_financeiro_jan.xlsx")
	if !ok || id != "ab12cd34" || name != "financeiro_jan.xlsx" {
		t.Errorf("got %q %q %v", id, name, ok)
	}
	if _, _, ok := ParseUploadName("plain.xlsx"); ok {
		t.Error("names without a prefix should not parse")
	}
}

func TestSaveUpload(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	path, err := SaveUpload(dir, "ab12cd34", "base.xlsx", []byte("data"))
	if err != nil {
		t.Fatalf("SaveUpload failed: %v", err)
	}
	if filepath.Base(path) != "ab12cd34_base.xlsx" {
		t.Errorf("unexpected path %s", path)
	}
	got, err := os.ReadFile(path)
	if err != nil || string(got) != "data" {
		t.Errorf("file content: %q, %v", got, err)
	}
}
