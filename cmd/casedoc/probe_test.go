package main_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/casedoc"
	main "github.com/fwojciec/casedoc/cmd/casedoc"
	"github.com/fwojciec/casedoc/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeFetcher(t *testing.T) {
	t.Parallel()

	view := casedoc.ListingView{Utility: casedoc.UtilityElectric, Status: casedoc.StatusOpen}
	const probeURL = "https://puc.example.gov/cases?status=open&utility=electric"

	parserWith := func(cases int) *mock.ListingParser {
		return &mock.ListingParser{
			ParseListingFn: func(html, baseURL string, v casedoc.ListingView) (*casedoc.ListingPage, error) {
				page := &casedoc.ListingPage{}
				for i := 0; i < cases; i++ {
					page.Cases = append(page.Cases, &casedoc.Case{CaseNumber: "ABC-E-24-01"})
				}
				return page, nil
			},
		}
	}

	t.Run("keeps HTTP when the listing is server rendered", func(t *testing.T) {
		t.Parallel()

		httpFetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				assert.Equal(t, probeURL, url)
				return "<table></table>", nil
			},
		}
		browser := func() (casedoc.Fetcher, error) {
			t.Fatal("browser should not start")
			return nil, nil
		}

		got, err := main.ProbeFetcher(context.Background(), probeURL, view, httpFetcher, browser, parserWith(1))

		require.NoError(t, err)
		assert.Same(t, httpFetcher, got)
	})

	t.Run("starts the browser for script-rendered listings", func(t *testing.T) {
		t.Parallel()

		httpFetcher := &mock.Fetcher{
			FetchFn: func(context.Context, string) (string, error) {
				return `<div id="app"></div>`, nil
			},
		}
		browserFetcher := &mock.Fetcher{}

		got, err := main.ProbeFetcher(context.Background(), probeURL, view, httpFetcher,
			func() (casedoc.Fetcher, error) { return browserFetcher, nil }, parserWith(0))

		require.NoError(t, err)
		assert.Same(t, browserFetcher, got)
	})

	t.Run("starts the browser when HTTP fails", func(t *testing.T) {
		t.Parallel()

		httpFetcher := &mock.Fetcher{
			FetchFn: func(context.Context, string) (string, error) {
				return "", casedoc.Errorf(casedoc.ENAVIGATION, "HTTP 403")
			},
		}
		browserFetcher := &mock.Fetcher{}

		got, err := main.ProbeFetcher(context.Background(), probeURL, view, httpFetcher,
			func() (casedoc.Fetcher, error) { return browserFetcher, nil }, parserWith(1))

		require.NoError(t, err)
		assert.Same(t, browserFetcher, got)
	})

	t.Run("returns browser launch errors", func(t *testing.T) {
		t.Parallel()

		httpFetcher := &mock.Fetcher{
			FetchFn: func(context.Context, string) (string, error) {
				return "", nil
			},
		}

		_, err := main.ProbeFetcher(context.Background(), probeURL, view, httpFetcher,
			func() (casedoc.Fetcher, error) { return nil, errors.New("no chrome") }, parserWith(0))

		assert.EqualError(t, err, "no chrome")
	})

	t.Run("stops when the context is canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		httpFetcher := &mock.Fetcher{
			FetchFn: func(ctx context.Context, _ string) (string, error) {
				return "", ctx.Err()
			},
		}
		browser := func() (casedoc.Fetcher, error) {
			t.Fatal("browser should not start")
			return nil, nil
		}

		_, err := main.ProbeFetcher(ctx, probeURL, view, httpFetcher, browser, parserWith(1))

		assert.ErrorIs(t, err, context.Canceled)
	})
}
