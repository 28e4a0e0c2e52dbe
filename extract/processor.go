package extract

import (
	"context"
	"log/slog"
	"sync"

	"github.com/fwojciec/casedoc"
	"github.com/fwojciec/casedoc/goquery"
)

// Ensure Processor implements casedoc.DocumentExtractor at compile time.
var _ casedoc.DocumentExtractor = (*Processor)(nil)

// Processor extracts one document: it navigates the viewer, switches it to
// plain text when offered, classifies it and hands it to the strategy
// registered for its type. Viewer types are detected once per viewer URL.
type Processor struct {
	Detector   casedoc.ViewerDetector
	Strategies map[casedoc.ViewerType]casedoc.PageExtractor
	Thresholds Thresholds
	Logger     *slog.Logger

	mu       sync.Mutex
	detected map[string]casedoc.ViewerType
}

// NewProcessor creates a Processor with the goquery detector and the
// strategy for each known viewer type. The image and plain text layer
// viewers share one strategy.
func NewProcessor(t Thresholds, logger *slog.Logger) *Processor {
	textLayer := NewTextLayerExtractor(t, logger)
	return &Processor{
		Detector: goquery.NewDetector(),
		Strategies: map[casedoc.ViewerType]casedoc.PageExtractor{
			casedoc.ViewerImageTextLayer: textLayer,
			casedoc.ViewerTextLayer:      textLayer,
			casedoc.ViewerMarkedContent:  NewMarkedContentExtractor(t, logger),
			casedoc.ViewerLazyFrame:      NewLazyFrameExtractor(t, logger),
		},
		Thresholds: t,
		Logger:     logger,
	}
}

// ExtractDocument extracts ref through v. It never returns an error:
// failures are classified in the result.
func (p *Processor) ExtractDocument(ctx context.Context, v casedoc.Viewer, ref casedoc.DocumentRef) *casedoc.ExtractionResult {
	logger := orDiscard(p.Logger).With("case", ref.CaseNumber, "document", ref.DisplayName)
	result := &casedoc.ExtractionResult{Document: ref}

	if err := v.Navigate(ctx, ref.ViewerURL); err != nil {
		result.Err = classify(err, casedoc.ENAVIGATION)
		return result
	}

	// Viewers that never render a known structure are classified as unknown below.
	if err := v.WaitFor(ctx, goquery.ViewerReadySelector); err != nil {
		logger.Debug("viewer structure did not appear", "error", err)
	}

	html, err := v.HTML(ctx)
	if err != nil {
		result.Err = classify(err, casedoc.ENAVIGATION)
		return result
	}

	if goquery.HasPlainTextToggle(html) {
		if html, err = p.switchToPlainText(ctx, v); err != nil {
			result.Err = classify(err, casedoc.ENAVIGATION)
			return result
		}
	}

	vt := p.detect(ref.ViewerURL, html)
	result.Document.ViewerType = vt
	if vt == casedoc.ViewerUnknown {
		result.Err = casedoc.Errorf(casedoc.EUNKNOWNVIEWER, "unrecognized viewer at %s", ref.ViewerURL)
		return result
	}

	strategy, ok := p.Strategies[vt]
	if !ok {
		result.Err = casedoc.Errorf(casedoc.EUNKNOWNVIEWER, "no extractor for viewer type %q", vt)
		return result
	}

	set, err := strategy.ExtractPages(ctx, v)
	if err != nil {
		result.Err = classify(err, casedoc.ENOCONTENT)
		return result
	}
	if set == nil || len(set.Pages) == 0 {
		result.Err = casedoc.Errorf(casedoc.ENOCONTENT, "no pages extracted")
		return result
	}

	result.Success = true
	result.PagesExtracted = len(set.Pages)
	result.TotalPages = set.TotalPages
	result.Degraded = set.Degraded
	result.RawText = casedoc.FormatPages(set.Pages)

	if set.Degraded {
		logger.Warn("degraded extraction", "pages", len(set.Pages), "total", set.TotalPages)
	}
	return result
}

func (p *Processor) switchToPlainText(ctx context.Context, v casedoc.Viewer) (string, error) {
	if err := v.Click(ctx, "", goquery.PlainTextToggleSelector); err != nil {
		return "", err
	}
	if err := wait(ctx, p.Thresholds.ToggleWait); err != nil {
		return "", err
	}
	return v.HTML(ctx)
}

// detect classifies html, caching the type per viewer URL.
func (p *Processor) detect(viewerURL, html string) casedoc.ViewerType {
	p.mu.Lock()
	vt, ok := p.detected[viewerURL]
	p.mu.Unlock()
	if ok {
		return vt
	}

	vt = p.Detector.Detect(html)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.detected == nil {
		p.detected = make(map[string]casedoc.ViewerType)
	}
	p.detected[viewerURL] = vt
	return vt
}
