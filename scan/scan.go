// Package scan discovers cases on the commission's listing views and
// enumerates their documents.
package scan

import (
	"context"
	"io"
	"log/slog"
	"net/url"

	"github.com/fwojciec/casedoc"
	"github.com/fwojciec/casedoc/bloom"
)

// DefaultMissThreshold is the number of consecutive out-of-range cases after
// which a listing view is abandoned. Listings are assumed to be roughly
// ordered by filing date.
const DefaultMissThreshold = 5

// maxListingPages bounds pagination of one view.
const maxListingPages = 200

// visitedFPRate is the false positive rate of the per-view page filter.
const visitedFPRate = 0.001

// Compile-time interface verification.
var (
	_ casedoc.CaseScanner    = (*Scanner)(nil)
	_ casedoc.DocumentSource = (*Scanner)(nil)
)

// Scanner walks listing views and case detail pages.
type Scanner struct {
	Fetcher     casedoc.Fetcher
	Parser      casedoc.ListingParser
	Limiter     casedoc.DomainLimiter // optional
	ListingURLs map[casedoc.ListingView]string

	// MissThreshold stops a view after this many consecutive matched cases
	// fall outside the date range. Zero or less disables the early stop.
	MissThreshold int

	Logger *slog.Logger
}

// NewScanner creates a Scanner with the default miss threshold.
func NewScanner(fetcher casedoc.Fetcher, parser casedoc.ListingParser, listingURLs map[casedoc.ListingView]string) *Scanner {
	return &Scanner{
		Fetcher:       fetcher,
		Parser:        parser,
		ListingURLs:   listingURLs,
		MissThreshold: DefaultMissThreshold,
	}
}

// Scan returns the matched, in-range cases of every requested view, in view
// order. A case listed on several views is returned once. A view that fails
// to load is logged and skipped; only cancellation is returned as an error.
func (s *Scanner) Scan(ctx context.Context, req casedoc.ScanRequest) ([]*casedoc.Case, error) {
	seen := make(map[string]bool)

	var cases []*casedoc.Case
	for _, view := range views(req.Utilities) {
		listingURL, ok := s.ListingURLs[view]
		if !ok {
			s.logger().Debug("no listing configured", "view", view.String())
			continue
		}

		found, err := s.scanView(ctx, view, listingURL, req, seen)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return cases, ctxErr
		}
		if err != nil {
			s.logger().Warn("listing view failed", "view", view.String(), "error", err)
		}
		cases = append(cases, found...)
	}
	return cases, nil
}

// scanView paginates one view. Cases found before an error are returned
// with it.
func (s *Scanner) scanView(ctx context.Context, view casedoc.ListingView, pageURL string, req casedoc.ScanRequest, seen map[string]bool) ([]*casedoc.Case, error) {
	log := s.logger().With("view", view.String())
	visited := bloom.NewFilter(maxListingPages, visitedFPRate)
	defer func() {
		log.Debug("listing view done", "pages", visited.EstimatedCount())
	}()
	misses := 0

	var found []*casedoc.Case
	for pages := 0; pageURL != "" && pages < maxListingPages; pages++ {
		if visited.TestAndAdd(pageURL) {
			log.Debug("pagination revisits a page", "url", pageURL)
			break
		}

		html, err := s.fetch(ctx, pageURL)
		if err != nil {
			return found, err
		}
		page, err := s.Parser.ParseListing(html, pageURL, view)
		if err != nil {
			return found, err
		}
		log.Debug("listing page parsed", "url", pageURL, "rows", len(page.Cases))

		for _, c := range page.Cases {
			if !casedoc.MatchesQuery(c, req.Query) {
				continue
			}

			dated, err := s.withFiledDate(ctx, c)
			if err != nil {
				if ctx.Err() != nil {
					return found, ctx.Err()
				}
				// A detail page that fails to load says nothing about the
				// filing date, so it is not a miss.
				log.Warn("case detail failed", "case", c.CaseNumber, "error", err)
				continue
			}

			if !casedoc.InDateRange(dated.DateFiled, req.Range) {
				misses++
				if s.MissThreshold > 0 && misses >= s.MissThreshold {
					log.Info("view stopped after consecutive misses", "misses", misses)
					return found, nil
				}
				continue
			}
			misses = 0

			if !seen[dated.CaseNumber] {
				seen[dated.CaseNumber] = true
				found = append(found, dated)
			}
		}

		pageURL = page.NextURL
	}
	return found, nil
}

// withFiledDate loads the case detail page and returns a copy of c carrying
// the filed date shown there. The listing's date is kept when the detail
// page shows none.
func (s *Scanner) withFiledDate(ctx context.Context, c *casedoc.Case) (*casedoc.Case, error) {
	html, err := s.fetch(ctx, c.ListingURL)
	if err != nil {
		return nil, err
	}
	dated := *c
	if date := s.Parser.ParseFiledDate(html); date != "" {
		dated.DateFiled = date
	}
	return &dated, nil
}

// FindDocuments returns the documents listed on the case detail page.
func (s *Scanner) FindDocuments(ctx context.Context, c *casedoc.Case) ([]casedoc.DocumentRef, error) {
	html, err := s.fetch(ctx, c.ListingURL)
	if err != nil {
		return nil, err
	}
	return s.Parser.ParseDocuments(html, c.ListingURL, c.CaseNumber)
}

// fetch waits for the domain's rate limit, then loads rawURL.
func (s *Scanner) fetch(ctx context.Context, rawURL string) (string, error) {
	if s.Limiter != nil {
		if err := s.Limiter.Wait(ctx, host(rawURL)); err != nil {
			return "", err
		}
	}
	return s.Fetcher.Fetch(ctx, rawURL)
}

func (s *Scanner) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s.Logger
}

// views returns the listing views for the requested utilities, all views
// when none are requested.
func views(utilities []casedoc.UtilityType) []casedoc.ListingView {
	all := casedoc.AllListingViews()
	if len(utilities) == 0 {
		return all
	}
	wanted := make(map[casedoc.UtilityType]bool, len(utilities))
	for _, u := range utilities {
		wanted[u] = true
	}
	var out []casedoc.ListingView
	for _, v := range all {
		if wanted[v.Utility] {
			out = append(out, v)
		}
	}
	return out
}

func host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Host
}
