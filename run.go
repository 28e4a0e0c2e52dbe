package casedoc

import (
	"context"
	"time"
)

// RunRequest starts a discovery, extraction and indexing run.
type RunRequest struct {
	Query     string        `json:"query"`
	Utilities []UtilityType `json:"utilityTypes"`
	Range     DateRange     `json:"dateRange"`
	Workers   int           `json:"workerCount"`
}

// Validate returns an error if the request contains invalid fields.
func (r *RunRequest) Validate() error {
	if r.Query == "" {
		return Errorf(EINVALID, "run query required")
	}
	if len(QueryTerms(r.Query)) == 0 {
		return Errorf(EINVALID, "run query %q has no terms longer than two characters", r.Query)
	}
	for _, u := range r.Utilities {
		if u != UtilityElectric && u != UtilityNaturalGas {
			return Errorf(EINVALID, "unknown utility type %q", u)
		}
	}
	if r.Workers < 0 {
		return Errorf(EINVALID, "worker count must not be negative")
	}
	return r.Range.Validate()
}

// ScanRequest returns the listing scan portion of the request.
func (r *RunRequest) ScanRequest() ScanRequest {
	return ScanRequest{Query: r.Query, Utilities: r.Utilities, Range: r.Range}
}

// RunSummary aggregates the outcome of a run.
type RunSummary struct {
	CasesFound         int     `json:"casesFound"`
	DocumentsFound     int     `json:"documentsFound"`
	DocumentsExtracted int     `json:"documentsExtracted"`
	DocumentsDegraded  int     `json:"documentsDegraded"`
	DocumentsFailed    int     `json:"documentsFailed"`
	DocumentsSkipped   int     `json:"documentsSkipped"`
	ChunksIndexed      int     `json:"chunksIndexed"`
	Tokens             int     `json:"tokens"`
	ElapsedSeconds     float64 `json:"elapsedSeconds"`
}

// Run is a recorded run. Chunks and failures are scoped to it.
type Run struct {
	ID          string      `json:"id"`
	Request     RunRequest  `json:"request"`
	Summary     *RunSummary `json:"summary,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	CompletedAt *time.Time  `json:"completedAt,omitempty"`
}

// RunService represents a service for managing runs.
type RunService interface {
	// CreateRun records a new run and assigns its ID.
	CreateRun(ctx context.Context, run *Run) error

	// FindRunByID retrieves a run by ID.
	// Returns ENOTFOUND if the run does not exist.
	FindRunByID(ctx context.Context, id string) (*Run, error)

	// FindRuns retrieves runs, newest first.
	FindRuns(ctx context.Context, filter RunFilter) ([]*Run, error)

	// CompleteRun stores the summary and marks the run complete.
	// Returns ENOTFOUND if the run does not exist.
	CompleteRun(ctx context.Context, id string, summary *RunSummary) error
}

// RunFilter represents a filter for FindRuns.
type RunFilter struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
