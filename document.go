package casedoc

import (
	"context"
	"strings"
)

// Document index sections as they appear on case detail pages.
const (
	SectionCompany    = "Company"
	SectionStaff      = "Staff"
	SectionIntervenor = "Intervenor"
	SectionCommission = "Commission"
	SectionPublic     = "Public"
	SectionOther      = "Other"
)

// DocumentRef references one document in a case's document index, prior to
// extraction. ViewerType is empty until the viewer has been classified.
type DocumentRef struct {
	CaseNumber  string     `json:"caseNumber"`
	ViewerURL   string     `json:"viewerUrl"`
	DisplayName string     `json:"displayName"`
	Section     string     `json:"section"`
	ViewerType  ViewerType `json:"viewerType,omitempty"`
}

// Validate returns an error if the document reference contains invalid fields.
func (d *DocumentRef) Validate() error {
	if d.CaseNumber == "" {
		return Errorf(EINVALID, "document case number required")
	}
	if d.ViewerURL == "" {
		return Errorf(EINVALID, "document viewer URL required")
	}
	return nil
}

// NormalizeSection maps a free-form section heading onto a known section.
// Unrecognized headings are returned trimmed, empty headings become SectionOther.
func NormalizeSection(heading string) string {
	h := strings.ToLower(strings.TrimSpace(heading))
	switch {
	case h == "":
		return SectionOther
	case strings.Contains(h, "company") || strings.Contains(h, "applicant") || strings.Contains(h, "utility"):
		return SectionCompany
	case strings.Contains(h, "staff"):
		return SectionStaff
	case strings.Contains(h, "intervenor"):
		return SectionIntervenor
	case strings.Contains(h, "commission") || strings.Contains(h, "order"):
		return SectionCommission
	case strings.Contains(h, "public") || strings.Contains(h, "comment"):
		return SectionPublic
	}
	return strings.TrimSpace(heading)
}

// DocumentSource enumerates the documents of a case.
type DocumentSource interface {
	FindDocuments(ctx context.Context, c *Case) ([]DocumentRef, error)
}

// Fetcher retrieves HTML for listing and case detail pages.
// Implementations may use browser automation to handle JavaScript-rendered content.
type Fetcher interface {
	// Fetch loads the URL and returns its HTML.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
