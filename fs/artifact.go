// Package fs provides file-based storage for extracted document text.
package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/casedoc"
)

// ArtifactPath returns the path of an artifact relative to the store root:
// <caseNumber>/<sanitized document name>.txt
func ArtifactPath(caseNumber, documentName string) string {
	return filepath.Join(casedoc.SanitizeName(caseNumber), casedoc.SanitizeName(documentName)+".txt")
}

// FormatArtifact formats an artifact with a YAML frontmatter header.
func FormatArtifact(a *casedoc.Artifact, extracted time.Time) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("case: ")
	b.WriteString(a.CaseNumber)
	b.WriteString("\ndocument: ")
	b.WriteString(a.DocumentName)
	b.WriteString("\nsource: ")
	b.WriteString(a.SourceURL)
	b.WriteString("\nextracted: ")
	b.WriteString(extracted.Format("2006-01-02"))
	fmt.Fprintf(&b, "\nhash: %016x", xxhash.Sum64String(a.Text))
	b.WriteString("\n---\n\n")
	b.WriteString(a.Text)
	return b.String()
}

// Ensure ArtifactStore implements casedoc.ArtifactStore at compile time.
var _ casedoc.ArtifactStore = (*ArtifactStore)(nil)

// ArtifactStore implements casedoc.ArtifactStore as a directory of text
// files. Artifacts are written once: the text goes to a temporary file that
// is then hard-linked into place, so readers never see a partial artifact and
// concurrent writers of the same key cannot both succeed.
type ArtifactStore struct {
	baseDir string

	// Now returns the time written into artifact headers.
	Now func() time.Time
}

// NewArtifactStore creates an ArtifactStore rooted at baseDir.
func NewArtifactStore(baseDir string) *ArtifactStore {
	return &ArtifactStore{baseDir: baseDir, Now: time.Now}
}

// Path returns the absolute location of an artifact.
func (s *ArtifactStore) Path(caseNumber, documentName string) string {
	return filepath.Join(s.baseDir, ArtifactPath(caseNumber, documentName))
}

// Save writes the artifact. Returns ECONFLICT if it already exists.
func (s *ArtifactStore) Save(ctx context.Context, a *casedoc.Artifact) error {
	if a.CaseNumber == "" {
		return casedoc.Errorf(casedoc.EINVALID, "artifact case number required")
	}
	if a.DocumentName == "" {
		return casedoc.Errorf(casedoc.EINVALID, "artifact document name required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	fullPath := s.Path(a.CaseNumber, a.DocumentName)
	if _, err := os.Stat(fullPath); err == nil {
		return casedoc.Errorf(casedoc.ECONFLICT, "artifact %s already exists", fullPath)
	}

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".artifact-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.WriteString(FormatArtifact(a, s.Now())); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Link(tmpPath, fullPath); err != nil {
		if errors.Is(err, os.ErrExist) {
			return casedoc.Errorf(casedoc.ECONFLICT, "artifact %s already exists", fullPath)
		}
		return fmt.Errorf("failed to publish artifact: %w", err)
	}
	return nil
}
