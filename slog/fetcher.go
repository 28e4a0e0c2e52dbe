// Package slog provides logging decorators for casedoc services using the
// standard library's structured logger.
package slog

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/fwojciec/casedoc"
)

// Ensure LoggingFetcher implements casedoc.Fetcher.
var _ casedoc.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with logging of listing and detail page
// loads. Successful loads are logged at debug level, failures as warnings
// with their error code.
type LoggingFetcher struct {
	next   casedoc.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next casedoc.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the outcome.
func (f *LoggingFetcher) Fetch(ctx context.Context, rawURL string) (html string, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"host", hostOf(rawURL),
			"url", rawURL,
			"duration", time.Since(begin),
		}
		if err != nil {
			f.logger.Warn("fetch failed", append(attrs, "code", casedoc.ErrorCode(err), "err", err)...)
			return
		}
		f.logger.Debug("fetch", append(attrs, "bytes", len(html))...)
	}(time.Now())
	return f.next.Fetch(ctx, rawURL)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
