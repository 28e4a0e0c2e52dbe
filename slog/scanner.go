package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/casedoc"
)

// Ensure LoggingScanner implements casedoc.CaseScanner and casedoc.DocumentSource.
var (
	_ casedoc.CaseScanner    = (*LoggingScanner)(nil)
	_ casedoc.DocumentSource = (*LoggingScanner)(nil)
)

// LoggingScanner wraps a listing scanner and its document source with
// logging.
type LoggingScanner struct {
	scanner   casedoc.CaseScanner
	documents casedoc.DocumentSource
	logger    *slog.Logger
}

// NewLoggingScanner creates a new LoggingScanner.
func NewLoggingScanner(scanner casedoc.CaseScanner, documents casedoc.DocumentSource, logger *slog.Logger) *LoggingScanner {
	return &LoggingScanner{scanner: scanner, documents: documents, logger: logger}
}

// Scan delegates to the wrapped scanner and logs the number of cases found.
func (s *LoggingScanner) Scan(ctx context.Context, req casedoc.ScanRequest) (cases []*casedoc.Case, err error) {
	defer func(begin time.Time) {
		s.logger.Info("scan listings",
			"query", req.Query,
			"cases", len(cases),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.scanner.Scan(ctx, req)
}

// FindDocuments delegates to the wrapped source and logs the document count.
func (s *LoggingScanner) FindDocuments(ctx context.Context, c *casedoc.Case) (docs []casedoc.DocumentRef, err error) {
	defer func(begin time.Time) {
		s.logger.Info("find documents",
			"case", c.CaseNumber,
			"documents", len(docs),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.documents.FindDocuments(ctx, c)
}
