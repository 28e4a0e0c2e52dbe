package casedoc

import (
	"context"
	"regexp"
	"time"
)

// CaseNumberPattern matches docket identifiers such as "ABC-E-24-01".
var CaseNumberPattern = regexp.MustCompile(`\b[A-Z]{2,4}-[A-Z]-\d{2}-\d{2}\b`)

// UtilityType is the utility service a case belongs to.
type UtilityType string

// Supported utility types.
const (
	UtilityElectric   UtilityType = "electric"
	UtilityNaturalGas UtilityType = "natural_gas"
)

// CaseStatus is the docket state shown by a listing view.
type CaseStatus string

// Case statuses.
const (
	StatusOpen   CaseStatus = "open"
	StatusClosed CaseStatus = "closed"
)

// Case represents a regulatory docket discovered on a listing page.
// A Case is immutable once created by the listing scanner.
type Case struct {
	CaseNumber  string      `json:"caseNumber"`
	Company     string      `json:"company"`
	Description string      `json:"description"`
	ListingURL  string      `json:"listingUrl"`
	Utility     UtilityType `json:"utilityType"`
	Status      CaseStatus  `json:"status"`
	DateFiled   string      `json:"dateFiled"`
}

// Validate returns an error if the case contains invalid fields.
func (c *Case) Validate() error {
	if !CaseNumberPattern.MatchString(c.CaseNumber) {
		return Errorf(EINVALID, "invalid case number %q", c.CaseNumber)
	}
	if c.ListingURL == "" {
		return Errorf(EINVALID, "case listing URL required")
	}
	return nil
}

// ListingView identifies one of the four case listings on the source site.
type ListingView struct {
	Utility UtilityType
	Status  CaseStatus
}

// String returns a short label such as "electric/open".
func (v ListingView) String() string {
	return string(v.Utility) + "/" + string(v.Status)
}

// AllListingViews returns the listing views in scan order.
func AllListingViews() []ListingView {
	return []ListingView{
		{Utility: UtilityElectric, Status: StatusOpen},
		{Utility: UtilityElectric, Status: StatusClosed},
		{Utility: UtilityNaturalGas, Status: StatusOpen},
		{Utility: UtilityNaturalGas, Status: StatusClosed},
	}
}

// DateRange is an inclusive filing date range. A zero Start or End leaves
// that side of the range open.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Validate returns an error if the range is inverted.
func (r DateRange) Validate() error {
	if !r.Start.IsZero() && !r.End.IsZero() && r.End.Before(r.Start) {
		return Errorf(EINVALID, "date range end %s is before start %s",
			r.End.Format(time.DateOnly), r.Start.Format(time.DateOnly))
	}
	return nil
}

// ScanRequest describes which cases a listing scan should return.
type ScanRequest struct {
	Query     string
	Utilities []UtilityType
	Range     DateRange
}

// CaseScanner discovers cases matching a request from the listing views.
type CaseScanner interface {
	// Scan returns matched, in-range cases concatenated across listing views.
	// Per-view and per-case failures are skipped, never returned.
	Scan(ctx context.Context, req ScanRequest) ([]*Case, error)
}

// ListingPage is one parsed page of a listing view.
type ListingPage struct {
	Cases   []*Case
	NextURL string
}

// ListingParser extracts structured data from listing and case detail pages.
type ListingParser interface {
	// ParseListing returns the valid case rows on a listing page and the
	// URL of the next page, if any.
	ParseListing(html string, baseURL string, view ListingView) (*ListingPage, error)

	// ParseFiledDate returns the raw filed date shown on a case detail page,
	// or an empty string when none is present.
	ParseFiledDate(html string) string

	// ParseDocuments returns the documents listed on a case detail page.
	ParseDocuments(html string, baseURL string, caseNumber string) ([]DocumentRef, error)
}
