package mock

import (
	"context"

	"github.com/fwojciec/casedoc"
)

var _ casedoc.PageExtractor = (*PageExtractor)(nil)

// PageExtractor is a mock implementation of casedoc.PageExtractor.
type PageExtractor struct {
	ExtractPagesFn func(ctx context.Context, v casedoc.Viewer) (*casedoc.PageSet, error)
}

func (e *PageExtractor) ExtractPages(ctx context.Context, v casedoc.Viewer) (*casedoc.PageSet, error) {
	return e.ExtractPagesFn(ctx, v)
}

var _ casedoc.DocumentExtractor = (*DocumentExtractor)(nil)

// DocumentExtractor is a mock implementation of casedoc.DocumentExtractor.
type DocumentExtractor struct {
	ExtractDocumentFn func(ctx context.Context, v casedoc.Viewer, ref casedoc.DocumentRef) *casedoc.ExtractionResult
}

func (e *DocumentExtractor) ExtractDocument(ctx context.Context, v casedoc.Viewer, ref casedoc.DocumentRef) *casedoc.ExtractionResult {
	return e.ExtractDocumentFn(ctx, v, ref)
}

var _ casedoc.ChunkIndexer = (*ChunkIndexer)(nil)

// ChunkIndexer is a mock implementation of casedoc.ChunkIndexer.
type ChunkIndexer struct {
	IndexFn func(result *casedoc.ExtractionResult, company string) ([]*casedoc.Chunk, error)
}

func (i *ChunkIndexer) Index(result *casedoc.ExtractionResult, company string) ([]*casedoc.Chunk, error) {
	return i.IndexFn(result, company)
}
