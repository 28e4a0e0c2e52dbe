package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/casedoc"
)

// Ensure LoggingSearchService implements casedoc.SearchService.
var _ casedoc.SearchService = (*LoggingSearchService)(nil)

// LoggingSearchService wraps a SearchService with logging.
type LoggingSearchService struct {
	next   casedoc.SearchService
	logger *slog.Logger
}

// NewLoggingSearchService creates a new LoggingSearchService.
func NewLoggingSearchService(next casedoc.SearchService, logger *slog.Logger) *LoggingSearchService {
	return &LoggingSearchService{next: next, logger: logger}
}

// Search delegates to the wrapped service and logs the result count.
func (s *LoggingSearchService) Search(ctx context.Context, query string, opts casedoc.SearchOptions) (results []casedoc.SearchResult, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"query", query,
			"run", opts.RunID,
			"results", len(results),
			"duration", time.Since(begin),
		}
		if len(results) > 0 {
			attrs = append(attrs, "top_score", results[0].Score)
		}
		attrs = append(attrs, "err", err)
		s.logger.Info("search", attrs...)
	}(time.Now())
	return s.next.Search(ctx, query, opts)
}
