package extract

import (
	"context"
	"log/slog"

	"github.com/fwojciec/casedoc"
	"github.com/fwojciec/casedoc/goquery"
)

// Ensure MarkedContentExtractor implements casedoc.PageExtractor at compile time.
var _ casedoc.PageExtractor = (*MarkedContentExtractor)(nil)

// MarkedContentExtractor reads renderers that emit page text as many small
// marked-content fragments. Rendered pages are read in place; when too few
// pages carry text the viewer gets one lazy-load pass and is read again.
type MarkedContentExtractor struct {
	Thresholds Thresholds
	Logger     *slog.Logger
}

// NewMarkedContentExtractor creates a MarkedContentExtractor.
func NewMarkedContentExtractor(t Thresholds, logger *slog.Logger) *MarkedContentExtractor {
	return &MarkedContentExtractor{Thresholds: t, Logger: logger}
}

// ExtractPages recovers the text of every rendered page.
func (e *MarkedContentExtractor) ExtractPages(ctx context.Context, v casedoc.Viewer) (*casedoc.PageSet, error) {
	logger := orDiscard(e.Logger)

	html, err := v.HTML(ctx)
	if err != nil {
		return nil, classify(err, casedoc.ENAVIGATION)
	}

	pages := goquery.MarkedContentPages(html)
	expected := expectedPages(html, pages)

	if belowFloor(len(pages), expected, e.Thresholds.MinSuccessRatio) {
		logger.Info("marked content below floor, forcing lazy load",
			"pages", len(pages), "expected", expected)

		if reloaded, err := e.lazyLoad(ctx, v); err != nil {
			logger.Warn("lazy load pass failed", "error", err)
		} else if len(reloaded) > len(pages) {
			pages = reloaded
		}
	}

	if len(pages) == 0 {
		return nil, casedoc.Errorf(casedoc.ENOCONTENT, "no marked content text")
	}

	return &casedoc.PageSet{
		Pages:      pages,
		TotalPages: expected,
		Degraded:   belowFloor(len(pages), expected, e.Thresholds.MinSuccessRatio),
	}, nil
}

// lazyLoad scrolls to the bottom and back to the top, then re-reads the pages.
func (e *MarkedContentExtractor) lazyLoad(ctx context.Context, v casedoc.Viewer) ([]casedoc.PageText, error) {
	if err := v.Scroll(ctx, "", 1); err != nil {
		return nil, err
	}
	if err := wait(ctx, e.Thresholds.LazyLoadWait); err != nil {
		return nil, err
	}
	if err := v.Scroll(ctx, "", 0); err != nil {
		return nil, err
	}
	if err := wait(ctx, e.Thresholds.LazyLoadWait); err != nil {
		return nil, err
	}
	html, err := v.HTML(ctx)
	if err != nil {
		return nil, err
	}
	return goquery.MarkedContentPages(html), nil
}

// expectedPages is the page-count indicator, or the number of page
// containers when the viewer shows no indicator.
func expectedPages(html string, pages []casedoc.PageText) int {
	expected := goquery.PageCount(html)
	if expected == 0 {
		expected = goquery.RenderedPageCount(html)
	}
	if expected < len(pages) {
		expected = len(pages)
	}
	return expected
}
