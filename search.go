package casedoc

import (
	"context"
	"fmt"
	"strings"
)

// Citation is the minimal fact set needed to attribute a chunk to its source.
type Citation struct {
	CaseNumber   string `json:"caseNumber"`
	Company      string `json:"company"`
	DocumentName string `json:"documentName"`
	PageNumber   int    `json:"pageNumber,omitempty"`
	DocumentURL  string `json:"documentUrl"`
	Witness      string `json:"witness,omitempty"`
}

// NewCitation builds the citation for a chunk from the chunk's own fields.
// The result depends on nothing else, so it is stable across queries.
func NewCitation(c *Chunk) Citation {
	return Citation{
		CaseNumber:   c.CaseNumber,
		Company:      c.Company,
		DocumentName: c.Document.DisplayName,
		PageNumber:   c.PageNumber,
		DocumentURL:  c.Document.ViewerURL,
		Witness:      c.Metadata.Witness,
	}
}

// String formats the citation for display, e.g.
// "ABC-E-24-01, Test Utility, Direct Testimony (Jane Doe), p. 12".
func (c Citation) String() string {
	parts := []string{c.CaseNumber}
	if c.Company != "" {
		parts = append(parts, c.Company)
	}
	name := c.DocumentName
	if name == "" {
		name = c.DocumentURL
	}
	if c.Witness != "" {
		name = fmt.Sprintf("%s (%s)", name, c.Witness)
	}
	parts = append(parts, name)
	if c.PageNumber > 0 {
		parts = append(parts, fmt.Sprintf("p. %d", c.PageNumber))
	}
	return strings.Join(parts, ", ")
}

// SearchResult represents a ranked chunk for one query. It is never persisted.
type SearchResult struct {
	Chunk        *Chunk   `json:"chunk"`
	Score        float64  `json:"score"`
	MatchedTerms []string `json:"matchedTerms"`
	Citation     Citation `json:"citation"`
}

// SearchOptions configures search behavior.
type SearchOptions struct {
	// Restrict results to the chunks of one run.
	RunID string `json:"runId,omitempty"`

	// Terms replaces query-derived terms when set.
	Terms []string `json:"terms,omitempty"`

	// Maximum number of results to return.
	Limit int `json:"limit,omitempty"`
}

// SearchService ranks indexed chunks against a query.
type SearchService interface {
	// Search returns chunks ordered by descending relevance.
	Search(ctx context.Context, query string, opts SearchOptions) ([]SearchResult, error)
}
