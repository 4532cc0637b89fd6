package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/JorgeHRP/renato-bi/pkg/sheet"
)

var allowedExtensions = map[string]bool{".xls": true, ".xlsx": true}

// Allowed reports whether filename has a spreadsheet extension we accept.
func Allowed(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// SanitizeFilename keeps the base name and replaces anything outside
// [A-Za-z0-9._-] with an underscore.
func SanitizeFilename(filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	name = sheet.StripAccents(strings.TrimSpace(name))

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return strings.TrimLeft(b.String(), "._")
}

// UploadName is the name under which a raw upload is kept on disk.
func UploadName(companyID, filename string) string {
	return companyID + "_" + filename
}

// ParseUploadName splits a stored upload name back into company id and the
// original file name. Company ids never contain an underscore.
func ParseUploadName(name string) (companyID, filename string, ok bool) {
	companyID, filename, ok = strings.Cut(name, "_")
	if !ok || companyID == "" || filename == "" {
		return "", "", false
	}
	return companyID, filename, true
}

// SaveUpload writes the raw file into dir and returns its path.
func SaveUpload(dir, companyID, filename string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}
	path := filepath.Join(dir, UploadName(companyID, filename))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save upload: %w", err)
	}
	return path, nil
}
