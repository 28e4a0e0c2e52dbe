package sqlite

import (
	"context"
	"strings"

	"github.com/fwojciec/casedoc"
)

// Compile-time interface verification.
var _ casedoc.ChunkService = (*ChunkService)(nil)

// ChunkService implements casedoc.ChunkService using SQLite. Chunk metadata
// is stored as JSON.
type ChunkService struct {
	db *DB
}

// NewChunkService creates a new ChunkService.
func NewChunkService(db *DB) *ChunkService {
	return &ChunkService{db: db}
}

// CreateChunks stores chunks in one transaction. Every chunk must belong to
// an existing run; either all chunks are stored or none.
func (s *ChunkService) CreateChunks(ctx context.Context, chunks []*casedoc.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	for _, c := range chunks {
		if err := c.Validate(); err != nil {
			return err
		}
		if c.RunID == "" {
			return casedoc.Errorf(casedoc.EINVALID, "chunk run ID required")
		}
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, run_id, case_number, company, document_url, document_name, section,
			viewer_type, page_number, chunk_index, content, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range chunks {
		metadata, err := encodeJSON(c.Metadata, "metadata")
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, c.ID, c.RunID, c.CaseNumber, c.Company,
			c.Document.ViewerURL, c.Document.DisplayName, c.Document.Section, string(c.Document.ViewerType),
			c.PageNumber, c.ChunkIndex, c.Content, metadata); err != nil {
			if isUniqueViolation(err) {
				return casedoc.Errorf(casedoc.ECONFLICT, "chunk %s already stored", c.ID)
			}
			return err
		}
	}

	return tx.Commit()
}

// FindChunks retrieves chunks matching the filter in document order.
func (s *ChunkService) FindChunks(ctx context.Context, filter casedoc.ChunkFilter) ([]*casedoc.Chunk, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT id, run_id, case_number, company, document_url, document_name, section,
		viewer_type, page_number, chunk_index, content, metadata FROM chunks WHERE 1=1`)

	if filter.RunID != nil {
		query.WriteString(" AND run_id = ?")
		args = append(args, *filter.RunID)
	}
	if filter.CaseNumber != nil {
		query.WriteString(" AND case_number = ?")
		args = append(args, *filter.CaseNumber)
	}

	query.WriteString(" ORDER BY run_id, case_number, document_url, chunk_index")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*casedoc.Chunk
	for rows.Next() {
		var c casedoc.Chunk
		var viewerType, metadata string

		if err := rows.Scan(&c.ID, &c.RunID, &c.CaseNumber, &c.Company,
			&c.Document.ViewerURL, &c.Document.DisplayName, &c.Document.Section, &viewerType,
			&c.PageNumber, &c.ChunkIndex, &c.Content, &metadata); err != nil {
			return nil, err
		}
		c.Document.CaseNumber = c.CaseNumber
		c.Document.ViewerType = casedoc.ViewerType(viewerType)

		if err := decodeJSON(metadata, &c.Metadata, "metadata"); err != nil {
			return nil, err
		}

		chunks = append(chunks, &c)
	}

	return chunks, rows.Err()
}

// DeleteChunksByRun removes all chunks produced by a run.
func (s *ChunkService) DeleteChunksByRun(ctx context.Context, runID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM chunks WHERE run_id = ?", runID)
	return err
}
