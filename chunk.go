package casedoc

import (
	"context"
)

// Chunk is a bounded span of extracted document text plus derived metadata.
// It is the unit of indexing and ranking and is immutable once created.
type Chunk struct {
	ID         string        `json:"id"`
	RunID      string        `json:"runId"`
	CaseNumber string        `json:"caseNumber"`
	Company    string        `json:"company"` // Denormalized for citations
	Document   DocumentRef   `json:"document"`
	PageNumber int           `json:"pageNumber,omitempty"` // 0 when the text had no page markers
	ChunkIndex int           `json:"chunkIndex"`
	Content    string        `json:"content"`
	Metadata   ChunkMetadata `json:"metadata"`
}

// ChunkMetadata holds ranking signals derived from the chunk and its document.
type ChunkMetadata struct {
	Witness              string            `json:"witness,omitempty"`
	Topic                string            `json:"topic"`
	IsAppendix           bool              `json:"isAppendix"`
	IsDirectTestimony    bool              `json:"isDirectTestimony"`
	FinancialAmounts     []string          `json:"financialAmounts,omitempty"`
	FinancialPercentages []string          `json:"financialPercentages,omitempty"`
	FinancialFigures     []FinancialFigure `json:"financialFigures,omitempty"`
	SearchTerms          []string          `json:"searchTerms,omitempty"`

	// Byte offsets of the chunk within its page text (or whole text).
	Start int `json:"start"`
	End   int `json:"end"`
}

// FinancialFigure is a currency amount or percentage with the text around it.
type FinancialFigure struct {
	Value   string `json:"value"`
	Kind    string `json:"kind"` // "amount" or "percentage"
	Context string `json:"context"`
}

// Validate returns an error if the chunk contains invalid fields.
func (c *Chunk) Validate() error {
	if c.CaseNumber == "" {
		return Errorf(EINVALID, "chunk case number required")
	}
	if c.Document.ViewerURL == "" {
		return Errorf(EINVALID, "chunk document URL required")
	}
	if c.Content == "" {
		return Errorf(EINVALID, "chunk content required")
	}
	return nil
}

// ChunkIndexer splits one extraction result into annotated chunks.
type ChunkIndexer interface {
	Index(result *ExtractionResult, company string) ([]*Chunk, error)
}

// ChunkService represents a service for managing chunks.
type ChunkService interface {
	// CreateChunks stores chunks in a batch.
	CreateChunks(ctx context.Context, chunks []*Chunk) error

	// FindChunks retrieves chunks matching the filter.
	FindChunks(ctx context.Context, filter ChunkFilter) ([]*Chunk, error)

	// DeleteChunksByRun removes all chunks produced by a run.
	DeleteChunksByRun(ctx context.Context, runID string) error
}

// ChunkFilter represents a filter for FindChunks.
type ChunkFilter struct {
	RunID      *string `json:"runId"`
	CaseNumber *string `json:"caseNumber"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
