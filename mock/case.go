package mock

import (
	"context"

	"github.com/fwojciec/casedoc"
)

var _ casedoc.CaseScanner = (*CaseScanner)(nil)

// CaseScanner is a mock implementation of casedoc.CaseScanner.
type CaseScanner struct {
	ScanFn func(ctx context.Context, req casedoc.ScanRequest) ([]*casedoc.Case, error)
}

func (s *CaseScanner) Scan(ctx context.Context, req casedoc.ScanRequest) ([]*casedoc.Case, error) {
	return s.ScanFn(ctx, req)
}

var _ casedoc.DocumentSource = (*DocumentSource)(nil)

// DocumentSource is a mock implementation of casedoc.DocumentSource.
type DocumentSource struct {
	FindDocumentsFn func(ctx context.Context, c *casedoc.Case) ([]casedoc.DocumentRef, error)
}

func (s *DocumentSource) FindDocuments(ctx context.Context, c *casedoc.Case) ([]casedoc.DocumentRef, error) {
	return s.FindDocumentsFn(ctx, c)
}

var _ casedoc.ListingParser = (*ListingParser)(nil)

// ListingParser is a mock implementation of casedoc.ListingParser.
type ListingParser struct {
	ParseListingFn   func(html string, baseURL string, view casedoc.ListingView) (*casedoc.ListingPage, error)
	ParseFiledDateFn func(html string) string
	ParseDocumentsFn func(html string, baseURL string, caseNumber string) ([]casedoc.DocumentRef, error)
}

func (p *ListingParser) ParseListing(html string, baseURL string, view casedoc.ListingView) (*casedoc.ListingPage, error) {
	return p.ParseListingFn(html, baseURL, view)
}

func (p *ListingParser) ParseFiledDate(html string) string {
	return p.ParseFiledDateFn(html)
}

func (p *ListingParser) ParseDocuments(html string, baseURL string, caseNumber string) ([]casedoc.DocumentRef, error) {
	return p.ParseDocumentsFn(html, baseURL, caseNumber)
}
