package main

import (
	"context"

	"github.com/fwojciec/casedoc"
)

// ProbeFetcher decides how listing pages are loaded. It fetches the probe
// listing over plain HTTP and keeps the HTTP fetcher when the page already
// carries case rows; otherwise the listing is rendered by JavaScript and a
// browser fetcher is started.
//
// Decision flow:
//   - HTTP fetch fails → browser
//   - HTTP listing parses with at least one case row → HTTP
//   - HTTP listing has no case rows → browser
func ProbeFetcher(
	ctx context.Context,
	probeURL string,
	view casedoc.ListingView,
	httpFetcher casedoc.Fetcher,
	newBrowserFetcher func() (casedoc.Fetcher, error),
	parser casedoc.ListingParser,
) (casedoc.Fetcher, error) {
	html, err := httpFetcher.Fetch(ctx, probeURL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return newBrowserFetcher()
	}

	page, err := parser.ParseListing(html, probeURL, view)
	if err == nil && len(page.Cases) > 0 {
		return httpFetcher, nil
	}

	return newBrowserFetcher()
}
