package extract

import (
	"context"
	"log/slog"

	"github.com/fwojciec/casedoc"
	"github.com/fwojciec/casedoc/goquery"
)

// Ensure TextLayerExtractor implements casedoc.PageExtractor at compile time.
var _ casedoc.PageExtractor = (*TextLayerExtractor)(nil)

// TextLayerExtractor reads viewers that render each page with a selectable
// text layer, with or without a page image underneath.
//
// Small documents are read by jumping to every page through the numeric
// page input. Large documents are split into sections: the extractor jumps
// to the start of each section and then steps with the "next" control.
type TextLayerExtractor struct {
	Thresholds Thresholds
	Logger     *slog.Logger
}

// NewTextLayerExtractor creates a TextLayerExtractor.
func NewTextLayerExtractor(t Thresholds, logger *slog.Logger) *TextLayerExtractor {
	return &TextLayerExtractor{Thresholds: t, Logger: logger}
}

// ExtractPages recovers the text of every non-blank page.
func (e *TextLayerExtractor) ExtractPages(ctx context.Context, v casedoc.Viewer) (*casedoc.PageSet, error) {
	logger := orDiscard(e.Logger)

	html, err := v.HTML(ctx)
	if err != nil {
		return nil, classify(err, casedoc.ENAVIGATION)
	}

	total := goquery.PageCount(html)
	if total == 0 {
		// No page-count indicator: take what is rendered.
		pages := e.keep(goquery.TextLayerPages(html))
		if len(pages) == 0 {
			// A lone text layer without page containers is a single page.
			pages = e.keep([]casedoc.PageText{{Number: 1, Text: goquery.TextLayerPageText(html, 1)}})
		}
		if len(pages) == 0 {
			return nil, casedoc.Errorf(casedoc.ENOCONTENT, "no text layer content")
		}
		return &casedoc.PageSet{Pages: pages, TotalPages: pages[len(pages)-1].Number}, nil
	}

	var pages []casedoc.PageText
	var read int
	if total <= e.Thresholds.SmallDocumentPages {
		pages, read, err = e.jumpEachPage(ctx, v, total)
	} else {
		pages, read, err = e.stepSections(ctx, v, total, logger)
	}
	if len(pages) == 0 {
		if err != nil {
			return nil, err
		}
		return nil, casedoc.Errorf(casedoc.ENOCONTENT, "no text in %d pages", total)
	}
	if err != nil {
		logger.Warn("text layer extraction stopped early", "pages", len(pages), "total", total, "error", err)
	}

	// Blank pages were read successfully; only unread pages degrade the result.
	return &casedoc.PageSet{
		Pages:      pages,
		TotalPages: total,
		Degraded:   belowFloor(read, total, e.Thresholds.MinSuccessRatio),
	}, nil
}

// jumpEachPage returns the non-blank pages and the number of pages read.
func (e *TextLayerExtractor) jumpEachPage(ctx context.Context, v casedoc.Viewer, total int) ([]casedoc.PageText, int, error) {
	var pages []casedoc.PageText
	read := 0
	errs := newErrorRun(e.Thresholds.MaxConsecutiveErrors)

	for n := 1; n <= total; n++ {
		text, err := e.jumpAndRead(ctx, v, n)
		if err != nil {
			if stop := errs.record(ctx, err); stop != nil {
				return pages, read, stop
			}
			continue
		}
		errs.reset()
		read++
		if len(text) >= e.Thresholds.MinPageChars {
			pages = append(pages, casedoc.PageText{Number: n, Text: text})
		}
	}
	return pages, read, nil
}

func (e *TextLayerExtractor) stepSections(ctx context.Context, v casedoc.Viewer, total int, logger *slog.Logger) ([]casedoc.PageText, int, error) {
	sections := e.Thresholds.MaxSections
	if sections < 1 {
		sections = 1
	}
	if sections > total {
		sections = total
	}
	size := (total + sections - 1) / sections

	var pages []casedoc.PageText
	read := 0
	errs := newErrorRun(e.Thresholds.MaxConsecutiveErrors)
	processed := 0

	for start := 1; start <= total; start += size {
		end := min(start+size-1, total)

		for n := start; n <= end; n++ {
			var text string
			var err error
			if n == start {
				text, err = e.jumpAndRead(ctx, v, n)
			} else {
				text, err = e.stepAndRead(ctx, v, n)
			}
			processed++
			if processed%e.progressEvery() == 0 {
				logger.Info("text layer progress", "page", n, "total", total, "extracted", len(pages))
			}
			if err != nil {
				if stop := errs.record(ctx, err); stop != nil {
					return pages, read, stop
				}
				// Stepping from a failed page would drift; resume at the next section.
				break
			}
			errs.reset()
			read++
			if len(text) >= e.Thresholds.MinPageChars {
				pages = append(pages, casedoc.PageText{Number: n, Text: text})
			}
		}
	}
	return pages, read, nil
}

func (e *TextLayerExtractor) jumpAndRead(ctx context.Context, v casedoc.Viewer, n int) (string, error) {
	if err := v.JumpToPage(ctx, goquery.PageNumberInputSelector, n); err != nil {
		return "", err
	}
	if err := wait(ctx, e.Thresholds.PageJumpWait); err != nil {
		return "", err
	}
	return e.read(ctx, v, n)
}

func (e *TextLayerExtractor) stepAndRead(ctx context.Context, v casedoc.Viewer, n int) (string, error) {
	if err := v.Click(ctx, "", goquery.NextPageSelector); err != nil {
		return "", err
	}
	if err := wait(ctx, e.Thresholds.PageStepWait); err != nil {
		return "", err
	}
	return e.read(ctx, v, n)
}

func (e *TextLayerExtractor) read(ctx context.Context, v casedoc.Viewer, n int) (string, error) {
	html, err := v.HTML(ctx)
	if err != nil {
		return "", err
	}
	return goquery.TextLayerPageText(html, n), nil
}

func (e *TextLayerExtractor) keep(pages []casedoc.PageText) []casedoc.PageText {
	kept := pages[:0]
	for _, p := range pages {
		if len(p.Text) >= e.Thresholds.MinPageChars {
			kept = append(kept, p)
		}
	}
	return kept
}

func (e *TextLayerExtractor) progressEvery() int {
	if e.Thresholds.ProgressEvery < 1 {
		return 25
	}
	return e.Thresholds.ProgressEvery
}
