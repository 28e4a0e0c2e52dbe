package extract

import (
	"context"
	"log/slog"
	"sort"

	"github.com/fwojciec/casedoc"
	"github.com/fwojciec/casedoc/goquery"
)

// Ensure LazyFrameExtractor implements casedoc.PageExtractor at compile time.
var _ casedoc.PageExtractor = (*LazyFrameExtractor)(nil)

// LazyFrameExtractor reads viewers that embed the document in an iframe and
// only materialize pages as they scroll into view. Pages are read once the
// viewer marks them loaded.
//
// Small documents are stepped through with the "next" control. Large
// documents get scroll passes proportional to their size, each followed by a
// settle delay, and then a single bulk read.
type LazyFrameExtractor struct {
	Thresholds Thresholds
	Logger     *slog.Logger
}

// NewLazyFrameExtractor creates a LazyFrameExtractor.
func NewLazyFrameExtractor(t Thresholds, logger *slog.Logger) *LazyFrameExtractor {
	return &LazyFrameExtractor{Thresholds: t, Logger: logger}
}

// ExtractPages recovers the text of every loaded page. Recovering fewer than
// the success floor is a degraded result, not a failure.
func (e *LazyFrameExtractor) ExtractPages(ctx context.Context, v casedoc.Viewer) (*casedoc.PageSet, error) {
	logger := orDiscard(e.Logger)

	frame, err := v.FrameHTML(ctx, goquery.ViewerFrameSelector)
	if err != nil {
		return nil, classify(err, casedoc.ENOCONTENT)
	}

	total := goquery.PageCount(frame)
	if total == 0 {
		if top, err := v.HTML(ctx); err == nil {
			total = goquery.PageCount(top)
		}
	}

	collected := make(map[int]string)
	collect(collected, goquery.LoadedPages(frame))

	if total > 0 && total <= e.Thresholds.SmallDocumentPages {
		err = e.step(ctx, v, total, collected)
	} else {
		err = e.bulk(ctx, v, total, collected)
	}
	if err != nil {
		if len(collected) == 0 {
			return nil, err
		}
		logger.Warn("lazy frame extraction stopped early", "pages", len(collected), "total", total, "error", err)
	}

	pages := sortedPages(collected, e.Thresholds.MinPageChars)
	if len(pages) == 0 {
		return nil, casedoc.Errorf(casedoc.ENOCONTENT, "no loaded pages in viewer frame")
	}

	expected := max(total, len(pages))
	rate := float64(len(pages)) / float64(expected)
	degraded := belowFloor(len(pages), expected, e.Thresholds.MinSuccessRatio)
	logger.Info("lazy frame extraction finished",
		"pages", len(pages), "expected", expected, "successRate", rate, "degraded", degraded)

	return &casedoc.PageSet{Pages: pages, TotalPages: expected, Degraded: degraded}, nil
}

// step advances one page at a time, reading the pages marked loaded after
// every step.
func (e *LazyFrameExtractor) step(ctx context.Context, v casedoc.Viewer, total int, collected map[int]string) error {
	errs := newErrorRun(e.Thresholds.MaxConsecutiveErrors)

	for n := 2; n <= total; n++ {
		if err := e.stepOnce(ctx, v, collected); err != nil {
			if stop := errs.record(ctx, err); stop != nil {
				return stop
			}
			continue
		}
		errs.reset()
	}
	return nil
}

func (e *LazyFrameExtractor) stepOnce(ctx context.Context, v casedoc.Viewer, collected map[int]string) error {
	if err := v.Click(ctx, goquery.ViewerFrameSelector, goquery.NextPageSelector); err != nil {
		return err
	}
	if err := wait(ctx, e.Thresholds.PageStepWait); err != nil {
		return err
	}
	frame, err := v.FrameHTML(ctx, goquery.ViewerFrameSelector)
	if err != nil {
		return err
	}
	collect(collected, goquery.LoadedPages(frame))
	return nil
}

// bulk scrolls through the frame in evenly spaced passes, then reads every
// loaded page once.
func (e *LazyFrameExtractor) bulk(ctx context.Context, v casedoc.Viewer, total int, collected map[int]string) error {
	passes := scrollPasses(total, e.Thresholds.PagesPerScrollPass, e.Thresholds.MaxScrollPasses)
	errs := newErrorRun(e.Thresholds.MaxConsecutiveErrors)

	for i := 1; i <= passes; i++ {
		if err := v.Scroll(ctx, goquery.ViewerFrameSelector, float64(i)/float64(passes)); err != nil {
			if stop := errs.record(ctx, err); stop != nil {
				return stop
			}
			continue
		}
		errs.reset()
		if err := wait(ctx, e.Thresholds.ScrollSettleWait); err != nil {
			return classify(err, casedoc.ETIMEOUT)
		}
	}

	frame, err := v.FrameHTML(ctx, goquery.ViewerFrameSelector)
	if err != nil {
		return classify(err, casedoc.ENOCONTENT)
	}
	collect(collected, goquery.LoadedPages(frame))
	return nil
}

// scrollPasses returns one pass per perPass pages, at least one and at most
// maxPasses.
func scrollPasses(total, perPass, maxPasses int) int {
	if perPass < 1 {
		perPass = 1
	}
	passes := (total + perPass - 1) / perPass
	if maxPasses > 0 && passes > maxPasses {
		passes = maxPasses
	}
	return max(passes, 1)
}

func collect(into map[int]string, pages []casedoc.PageText) {
	for _, p := range pages {
		if _, ok := into[p.Number]; !ok {
			into[p.Number] = p.Text
		}
	}
}

func sortedPages(collected map[int]string, minChars int) []casedoc.PageText {
	pages := make([]casedoc.PageText, 0, len(collected))
	for n, text := range collected {
		if len(text) < minChars {
			continue
		}
		pages = append(pages, casedoc.PageText{Number: n, Text: text})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Number < pages[j].Number })
	return pages
}
