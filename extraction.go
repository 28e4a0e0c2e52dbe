package casedoc

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ExtractionResult is the outcome of extracting one document. RawText holds
// the page-delimited text produced by FormatPages. On failure Err is set and
// ErrorCode(Err) classifies it.
type ExtractionResult struct {
	Document       DocumentRef `json:"document"`
	Success        bool        `json:"success"`
	PagesExtracted int         `json:"pagesExtracted"`
	TotalPages     int         `json:"totalPages"`
	Degraded       bool        `json:"degraded"`
	RawText        string      `json:"rawText"`
	Err            error       `json:"-"`
	WorkerID       int         `json:"workerId"`
}

// ErrorKind returns the failure classification, or "" for a success.
func (r *ExtractionResult) ErrorKind() string {
	if r.Success {
		return ""
	}
	return ErrorCode(r.Err)
}

// FailureRecord is a structured failure log entry for one document.
type FailureRecord struct {
	ID           int64     `json:"id,omitempty"`
	RunID        string    `json:"runId"`
	CaseNumber   string    `json:"caseNumber"`
	DocumentName string    `json:"documentName"`
	DocumentURL  string    `json:"documentUrl"`
	ErrorKind    string    `json:"errorKind"`
	Message      string    `json:"message"`
	WorkerID     int       `json:"workerId"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewFailureRecord builds a failure log entry from a failed result.
func NewFailureRecord(runID string, r *ExtractionResult, now time.Time) *FailureRecord {
	return &FailureRecord{
		RunID:        runID,
		CaseNumber:   r.Document.CaseNumber,
		DocumentName: r.Document.DisplayName,
		DocumentURL:  r.Document.ViewerURL,
		ErrorKind:    r.ErrorKind(),
		Message:      ErrorMessage(r.Err),
		WorkerID:     r.WorkerID,
		Timestamp:    now.UTC(),
	}
}

// FailureService persists failure log entries.
type FailureService interface {
	CreateFailure(ctx context.Context, f *FailureRecord) error
	FindFailures(ctx context.Context, runID string) ([]*FailureRecord, error)
}

var pageMarkerRe = regexp.MustCompile(`(?m)^=== Page (\d+) ===\n`)

// FormatPages joins pages into page-delimited raw text. Each page is
// introduced by a "=== Page N ===" marker line.
func FormatPages(pages []PageText) string {
	var sb strings.Builder
	for i, p := range pages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "=== Page %d ===\n", p.Number)
		sb.WriteString(p.Text)
	}
	return sb.String()
}

// SplitPages reverses FormatPages. It returns nil when the text carries no
// page markers. Page text is trimmed of surrounding whitespace and empty
// pages are omitted.
func SplitPages(raw string) []PageText {
	locs := pageMarkerRe.FindAllStringSubmatchIndex(raw, -1)
	if len(locs) == 0 {
		return nil
	}

	pages := make([]PageText, 0, len(locs))
	for i, loc := range locs {
		n, err := strconv.Atoi(raw[loc[2]:loc[3]])
		if err != nil {
			continue
		}
		end := len(raw)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		text := strings.TrimSpace(raw[loc[1]:end])
		if text == "" {
			continue
		}
		pages = append(pages, PageText{Number: n, Text: text})
	}
	return pages
}
