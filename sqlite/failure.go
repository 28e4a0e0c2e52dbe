package sqlite

import (
	"context"
	"time"

	"github.com/fwojciec/casedoc"
)

// Compile-time interface verification.
var _ casedoc.FailureService = (*FailureService)(nil)

// FailureService implements casedoc.FailureService using SQLite.
type FailureService struct {
	db *DB
}

// NewFailureService creates a new FailureService.
func NewFailureService(db *DB) *FailureService {
	return &FailureService{db: db}
}

// CreateFailure appends a failure log entry and assigns its ID.
func (s *FailureService) CreateFailure(ctx context.Context, f *casedoc.FailureRecord) error {
	if f.RunID == "" {
		return casedoc.Errorf(casedoc.EINVALID, "failure run ID required")
	}
	if f.ErrorKind == "" {
		return casedoc.Errorf(casedoc.EINVALID, "failure error kind required")
	}
	if f.Timestamp.IsZero() {
		f.Timestamp = time.Now().UTC()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO failures (run_id, case_number, document_name, document_url, error_kind, message, worker_id, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, f.RunID, f.CaseNumber, f.DocumentName, f.DocumentURL, f.ErrorKind, f.Message, f.WorkerID,
		formatTime(f.Timestamp))
	if err != nil {
		return err
	}

	f.ID, err = result.LastInsertId()
	return err
}

// FindFailures returns the failures of a run in the order they were recorded.
func (s *FailureService) FindFailures(ctx context.Context, runID string) ([]*casedoc.FailureRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, case_number, document_name, document_url, error_kind, message, worker_id, timestamp
		FROM failures
		WHERE run_id = ?
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var failures []*casedoc.FailureRecord
	for rows.Next() {
		var f casedoc.FailureRecord
		var timestamp string

		if err := rows.Scan(&f.ID, &f.RunID, &f.CaseNumber, &f.DocumentName, &f.DocumentURL,
			&f.ErrorKind, &f.Message, &f.WorkerID, &timestamp); err != nil {
			return nil, err
		}
		if f.Timestamp, err = parseTime(timestamp, "timestamp"); err != nil {
			return nil, err
		}
		failures = append(failures, &f)
	}

	return failures, rows.Err()
}
