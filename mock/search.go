package mock

import (
	"context"

	"github.com/fwojciec/casedoc"
)

var _ casedoc.SearchService = (*SearchService)(nil)

// SearchService is a mock implementation of casedoc.SearchService.
type SearchService struct {
	SearchFn func(ctx context.Context, query string, opts casedoc.SearchOptions) ([]casedoc.SearchResult, error)
}

func (s *SearchService) Search(ctx context.Context, query string, opts casedoc.SearchOptions) ([]casedoc.SearchResult, error) {
	return s.SearchFn(ctx, query, opts)
}

var _ casedoc.Asker = (*Asker)(nil)

// Asker is a mock implementation of casedoc.Asker.
type Asker struct {
	AskFn func(ctx context.Context, runID string, question string) (string, error)
}

func (a *Asker) Ask(ctx context.Context, runID string, question string) (string, error) {
	return a.AskFn(ctx, runID, question)
}

var _ casedoc.TokenCounter = (*TokenCounter)(nil)

// TokenCounter is a mock implementation of casedoc.TokenCounter.
type TokenCounter struct {
	CountTokensFn func(ctx context.Context, text string) (int, error)
}

func (t *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	return t.CountTokensFn(ctx, text)
}
