// Package index turns extraction results into annotated, overlapping chunks.
//
// Indexing is two-pass: document-level facts (witness, topic, testimony and
// appendix signals) are derived once from the whole document, then each chunk
// is tagged from those shared facts plus its own text.
package index

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/casedoc"
)

// Chunking defaults.
const (
	DefaultChunkSize            = 1000
	DefaultOverlap              = 200
	DefaultMinChunkSize         = 50
	DefaultMaxChunksPerDocument = 500
)

// Ensure Indexer implements casedoc.ChunkIndexer at compile time.
var _ casedoc.ChunkIndexer = (*Indexer)(nil)

// Indexer splits extraction results into chunks. It holds no mutable state
// and is safe for concurrent use.
type Indexer struct {
	chunkSize int
	overlap   int
	minSize   int
	maxChunks int
	chunker   *Chunker
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithChunkSize sets the chunk window in bytes.
func WithChunkSize(size int) Option {
	return func(ix *Indexer) {
		if size > 0 {
			ix.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between consecutive chunks in bytes.
func WithOverlap(overlap int) Option {
	return func(ix *Indexer) {
		if overlap >= 0 {
			ix.overlap = overlap
		}
	}
}

// WithMinChunkSize sets the smallest chunk kept.
func WithMinChunkSize(size int) Option {
	return func(ix *Indexer) {
		if size >= 0 {
			ix.minSize = size
		}
	}
}

// WithMaxChunks caps the chunks produced per document.
func WithMaxChunks(n int) Option {
	return func(ix *Indexer) {
		if n > 0 {
			ix.maxChunks = n
		}
	}
}

// New creates an Indexer with the given options.
func New(opts ...Option) *Indexer {
	ix := &Indexer{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
		minSize:   DefaultMinChunkSize,
		maxChunks: DefaultMaxChunksPerDocument,
	}
	for _, opt := range opts {
		opt(ix)
	}
	ix.chunker = NewChunker(ix.chunkSize, ix.overlap, ix.minSize)
	return ix
}

// Index chunks the page-delimited text of a successful extraction. Each page
// is chunked on its own so no chunk spans a page boundary; text without page
// markers is chunked as one unit with page number 0.
//
// Returns EINVALID for failed results and for text with nothing to index.
func (ix *Indexer) Index(result *casedoc.ExtractionResult, company string) ([]*casedoc.Chunk, error) {
	if result == nil || !result.Success {
		return nil, casedoc.Errorf(casedoc.EINVALID, "cannot index a failed extraction")
	}

	units := casedoc.SplitPages(result.RawText)
	if units == nil {
		units = []casedoc.PageText{{Number: 0, Text: result.RawText}}
	}

	facts := AnalyzeDocument(result.Document.DisplayName, units)
	doc := result.Document

	var chunks []*casedoc.Chunk
	for _, unit := range units {
		remaining := ix.maxChunks - len(chunks)
		if remaining <= 0 {
			break
		}
		for _, span := range ix.chunker.Split(unit.Text, remaining) {
			content := unit.Text[span.Start:span.End]
			chunks = append(chunks, &casedoc.Chunk{
				ID:         ChunkID(doc.ViewerURL, unit.Number, span.Start, content),
				CaseNumber: doc.CaseNumber,
				Company:    company,
				Document:   doc,
				PageNumber: unit.Number,
				ChunkIndex: len(chunks),
				Content:    content,
				Metadata:   tagChunk(facts, unit.Number, content, span),
			})
		}
	}

	if len(chunks) == 0 {
		return nil, casedoc.Errorf(casedoc.EINVALID, "no indexable text in %q", doc.DisplayName)
	}
	return chunks, nil
}

// ChunkID derives a stable chunk ID from where the chunk sits and what it
// says. Re-chunking the same bytes yields the same IDs.
func ChunkID(viewerURL string, page, start int, content string) string {
	h := xxhash.New()
	_, _ = h.WriteString(viewerURL)
	_, _ = h.WriteString("\x00" + strconv.Itoa(page) + "\x00" + strconv.Itoa(start) + "\x00")
	_, _ = h.WriteString(content)
	return fmt.Sprintf("%016x", h.Sum64())
}
