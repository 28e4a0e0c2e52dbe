// Package search ranks indexed chunks against keyword queries.
//
// Ranking is lexical: term occurrences weighted by term length, a bonus for
// rate-of-return vocabulary, and multipliers from chunk metadata that favor
// direct testimony and early pages over appendices.
package search

import (
	"context"
	"sort"
	"strings"

	"github.com/fwojciec/casedoc"
)

// DefaultLimit is the number of results returned when SearchOptions.Limit is
// not set.
const DefaultLimit = 10

// Ranking weights.
const (
	PhraseBonus           = 5.0
	AppendixFactor        = 0.1
	DirectTestimonyFactor = 2.0
	EarlyPageFactor       = 1.2
	LatePageFactor        = 0.7

	EarlyPageLimit = 10
	LatePageStart  = 100
)

// regulatoryPhrases is the rate-of-return vocabulary that earns a bonus.
var regulatoryPhrases = []string{
	"return on equity",
	"rate of return",
	"cost of capital",
	"cost of equity",
	"capital structure",
	"discounted cash flow",
	"risk premium",
	"authorized return",
}

// Ensure Engine implements casedoc.SearchService at compile time.
var _ casedoc.SearchService = (*Engine)(nil)

// Engine ranks the chunks held by a ChunkService.
type Engine struct {
	Chunks casedoc.ChunkService
}

// NewEngine creates an Engine over the given chunk store.
func NewEngine(chunks casedoc.ChunkService) *Engine {
	return &Engine{Chunks: chunks}
}

// Search returns the highest scoring chunks for query. Chunks that match no
// term are omitted. Equal scores are ordered by chunk ID so repeated queries
// return the same order.
func (e *Engine) Search(ctx context.Context, query string, opts casedoc.SearchOptions) ([]casedoc.SearchResult, error) {
	terms := normalizeTerms(opts.Terms)
	if len(terms) == 0 {
		terms = Terms(query)
	}
	if len(terms) == 0 {
		return nil, casedoc.Errorf(casedoc.EINVALID, "query has no searchable terms")
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	var filter casedoc.ChunkFilter
	if opts.RunID != "" {
		filter.RunID = &opts.RunID
	}
	chunks, err := e.Chunks.FindChunks(ctx, filter)
	if err != nil {
		return nil, err
	}

	var results []casedoc.SearchResult
	for _, c := range chunks {
		score, matched := Score(c, terms)
		if score <= 0 {
			continue
		}
		results = append(results, casedoc.SearchResult{
			Chunk:        c,
			Score:        score,
			MatchedTerms: matched,
			Citation:     casedoc.NewCitation(c),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.ID < results[j].Chunk.ID
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Terms derives search terms from a natural-language query: lowercase words
// with stop words and short words removed, first occurrence order, no
// duplicates.
func Terms(query string) []string {
	return dedupe(casedoc.Tokenize(query))
}

func normalizeTerms(terms []string) []string {
	var out []string
	for _, t := range terms {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return dedupe(out)
}

func dedupe(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	out := terms[:0:0]
	for _, t := range terms {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// Score rates a chunk against terms and returns the terms that occur in it.
// A chunk matching no term scores zero.
func Score(c *casedoc.Chunk, terms []string) (float64, []string) {
	content := strings.ToLower(c.Content)

	var score float64
	var matched []string
	for _, t := range terms {
		if n := strings.Count(content, t); n > 0 {
			score += float64(n * len(t))
			matched = append(matched, t)
		}
	}
	if score == 0 {
		return 0, nil
	}

	for _, p := range regulatoryPhrases {
		if strings.Contains(content, p) {
			score += PhraseBonus
		}
	}

	if c.Metadata.IsAppendix {
		score *= AppendixFactor
	}
	if c.Metadata.IsDirectTestimony {
		score *= DirectTestimonyFactor
	}
	switch {
	case c.PageNumber >= 1 && c.PageNumber <= EarlyPageLimit:
		score *= EarlyPageFactor
	case c.PageNumber > LatePageStart:
		score *= LatePageFactor
	}
	return score, matched
}
