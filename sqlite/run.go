package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/fwojciec/casedoc"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ casedoc.RunService = (*RunService)(nil)

// RunService implements casedoc.RunService using SQLite.
type RunService struct {
	db *DB
}

// NewRunService creates a new RunService.
func NewRunService(db *DB) *RunService {
	return &RunService{db: db}
}

// CreateRun records a new run with a generated ID.
func (s *RunService) CreateRun(ctx context.Context, run *casedoc.Run) error {
	if err := run.Request.Validate(); err != nil {
		return err
	}

	request, err := encodeJSON(run.Request, "request")
	if err != nil {
		return err
	}

	run.ID = uuid.New().String()
	run.CreatedAt = time.Now().UTC()
	run.Summary = nil
	run.CompletedAt = nil

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, query, request, created_at)
		VALUES (?, ?, ?, ?)
	`, run.ID, run.Request.Query, request, formatTime(run.CreatedAt))

	return err
}

const runColumns = "id, request, summary, created_at, completed_at"

// FindRunByID retrieves a run by ID.
func (s *RunService) FindRunByID(ctx context.Context, id string) (*casedoc.Run, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, casedoc.Errorf(casedoc.ENOTFOUND, "run %q not found", id)
	}
	return run, err
}

// FindRuns retrieves runs, newest first.
func (s *RunService) FindRuns(ctx context.Context, filter casedoc.RunFilter) ([]*casedoc.Run, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + runColumns + " FROM runs ORDER BY created_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*casedoc.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// CompleteRun stores the run summary and its completion time.
func (s *RunService) CompleteRun(ctx context.Context, id string, summary *casedoc.RunSummary) error {
	if summary == nil {
		return casedoc.Errorf(casedoc.EINVALID, "run summary required")
	}
	encoded, err := encodeJSON(summary, "summary")
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE runs SET summary = ?, completed_at = ? WHERE id = ?
	`, encoded, formatTime(time.Now()), id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return casedoc.Errorf(casedoc.ENOTFOUND, "run %q not found", id)
	}
	return nil
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*casedoc.Run, error) {
	var run casedoc.Run
	var request, createdAt string
	var summary, completedAt sql.NullString

	if err := row.Scan(&run.ID, &request, &summary, &createdAt, &completedAt); err != nil {
		return nil, err
	}

	if err := decodeJSON(request, &run.Request, "request"); err != nil {
		return nil, err
	}
	if summary.Valid {
		run.Summary = &casedoc.RunSummary{}
		if err := decodeJSON(summary.String, run.Summary, "summary"); err != nil {
			return nil, err
		}
	}

	var err error
	if run.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if completedAt.Valid {
		t, err := parseTime(completedAt.String, "completed_at")
		if err != nil {
			return nil, err
		}
		run.CompletedAt = &t
	}

	return &run, nil
}
