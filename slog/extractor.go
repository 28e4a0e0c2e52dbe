package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/casedoc"
)

// Ensure LoggingDetector implements casedoc.ViewerDetector.
var _ casedoc.ViewerDetector = (*LoggingDetector)(nil)

// LoggingDetector wraps a ViewerDetector with debug logging of the detected
// viewer type.
type LoggingDetector struct {
	next   casedoc.ViewerDetector
	logger *slog.Logger
}

// NewLoggingDetector creates a new LoggingDetector.
func NewLoggingDetector(next casedoc.ViewerDetector, logger *slog.Logger) *LoggingDetector {
	return &LoggingDetector{next: next, logger: logger}
}

// Detect delegates to the wrapped detector and logs the outcome.
func (d *LoggingDetector) Detect(html string) casedoc.ViewerType {
	begin := time.Now()
	viewer := d.next.Detect(html)
	viewerName := string(viewer)
	if viewer == casedoc.ViewerUnknown {
		viewerName = "(unknown)"
	}
	d.logger.Debug("viewer detection",
		"viewer", viewerName,
		"duration", time.Since(begin),
	)
	return viewer
}

// Ensure LoggingPageExtractor implements casedoc.PageExtractor.
var _ casedoc.PageExtractor = (*LoggingPageExtractor)(nil)

// LoggingPageExtractor wraps one extraction strategy with logging.
type LoggingPageExtractor struct {
	next     casedoc.PageExtractor
	strategy casedoc.ViewerType
	logger   *slog.Logger
}

// NewLoggingPageExtractor creates a new LoggingPageExtractor. The strategy
// name is attached to every log record.
func NewLoggingPageExtractor(next casedoc.PageExtractor, strategy casedoc.ViewerType, logger *slog.Logger) *LoggingPageExtractor {
	return &LoggingPageExtractor{next: next, strategy: strategy, logger: logger}
}

// ExtractPages delegates to the wrapped strategy and logs page counts.
func (e *LoggingPageExtractor) ExtractPages(ctx context.Context, v casedoc.Viewer) (set *casedoc.PageSet, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"strategy", string(e.strategy),
			"duration", time.Since(begin),
		}
		if set != nil {
			attrs = append(attrs,
				"pages", len(set.Pages),
				"total", set.TotalPages,
				"degraded", set.Degraded,
			)
		}
		if err != nil {
			attrs = append(attrs, "code", casedoc.ErrorCode(err), "err", err)
		}
		e.logger.Info("extract pages", attrs...)
	}(time.Now())
	return e.next.ExtractPages(ctx, v)
}

// Ensure LoggingDocumentExtractor implements casedoc.DocumentExtractor.
var _ casedoc.DocumentExtractor = (*LoggingDocumentExtractor)(nil)

// LoggingDocumentExtractor wraps a DocumentExtractor and logs each result.
// Failures log at warn level.
type LoggingDocumentExtractor struct {
	next   casedoc.DocumentExtractor
	logger *slog.Logger
}

// NewLoggingDocumentExtractor creates a new LoggingDocumentExtractor.
func NewLoggingDocumentExtractor(next casedoc.DocumentExtractor, logger *slog.Logger) *LoggingDocumentExtractor {
	return &LoggingDocumentExtractor{next: next, logger: logger}
}

// ExtractDocument delegates to the wrapped extractor and logs the result.
func (e *LoggingDocumentExtractor) ExtractDocument(ctx context.Context, v casedoc.Viewer, ref casedoc.DocumentRef) *casedoc.ExtractionResult {
	begin := time.Now()
	result := e.next.ExtractDocument(ctx, v, ref)

	attrs := []any{
		"case", ref.CaseNumber,
		"document", ref.DisplayName,
		"duration", time.Since(begin),
	}
	if result.Success {
		attrs = append(attrs,
			"viewer", string(result.Document.ViewerType),
			"pages", result.PagesExtracted,
			"total", result.TotalPages,
			"degraded", result.Degraded,
		)
		e.logger.Info("extract document", attrs...)
		return result
	}

	attrs = append(attrs, "code", result.ErrorKind(), "err", result.Err)
	e.logger.Warn("extract document", attrs...)
	return result
}
