package casedoc

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxNameLen caps the byte length of a sanitized document name.
const maxNameLen = 120

// Artifact is the extracted text of one document, keyed by case number and
// sanitized document name.
type Artifact struct {
	CaseNumber   string
	DocumentName string
	SourceURL    string
	Text         string
}

// ArtifactStore is a flat, write-once store of extracted text.
type ArtifactStore interface {
	// Save stores the artifact. Returns ECONFLICT if one already exists under
	// the same key.
	Save(ctx context.Context, a *Artifact) error
}

// SanitizeName turns a document display name into a filesystem-safe key.
// Runs of characters other than letters, digits, '-' and '_' collapse into
// a single underscore. Names longer than maxNameLen bytes are cut on a rune
// boundary.
func SanitizeName(name string) string {
	var sb strings.Builder
	prevUnderscore := false
	for _, r := range strings.TrimSpace(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			sb.WriteRune(r)
			prevUnderscore = r == '_'
			continue
		}
		if !prevUnderscore && sb.Len() > 0 {
			sb.WriteRune('_')
			prevUnderscore = true
		}
	}
	result := sb.String()
	if len(result) > maxNameLen {
		cut := maxNameLen
		for cut > 0 && !utf8.RuneStart(result[cut]) {
			cut--
		}
		result = result[:cut]
	}
	result = strings.TrimSuffix(result, "_")
	if result == "" {
		return "document"
	}
	return result
}
