package mock

import (
	"context"

	"github.com/fwojciec/casedoc"
)

var _ casedoc.RunService = (*RunService)(nil)

// RunService is a mock implementation of casedoc.RunService.
type RunService struct {
	CreateRunFn   func(ctx context.Context, run *casedoc.Run) error
	FindRunByIDFn func(ctx context.Context, id string) (*casedoc.Run, error)
	FindRunsFn    func(ctx context.Context, filter casedoc.RunFilter) ([]*casedoc.Run, error)
	CompleteRunFn func(ctx context.Context, id string, summary *casedoc.RunSummary) error
}

func (s *RunService) CreateRun(ctx context.Context, run *casedoc.Run) error {
	return s.CreateRunFn(ctx, run)
}

func (s *RunService) FindRunByID(ctx context.Context, id string) (*casedoc.Run, error) {
	return s.FindRunByIDFn(ctx, id)
}

func (s *RunService) FindRuns(ctx context.Context, filter casedoc.RunFilter) ([]*casedoc.Run, error) {
	return s.FindRunsFn(ctx, filter)
}

func (s *RunService) CompleteRun(ctx context.Context, id string, summary *casedoc.RunSummary) error {
	return s.CompleteRunFn(ctx, id, summary)
}

var _ casedoc.ChunkService = (*ChunkService)(nil)

// ChunkService is a mock implementation of casedoc.ChunkService.
type ChunkService struct {
	CreateChunksFn      func(ctx context.Context, chunks []*casedoc.Chunk) error
	FindChunksFn        func(ctx context.Context, filter casedoc.ChunkFilter) ([]*casedoc.Chunk, error)
	DeleteChunksByRunFn func(ctx context.Context, runID string) error
}

func (s *ChunkService) CreateChunks(ctx context.Context, chunks []*casedoc.Chunk) error {
	return s.CreateChunksFn(ctx, chunks)
}

func (s *ChunkService) FindChunks(ctx context.Context, filter casedoc.ChunkFilter) ([]*casedoc.Chunk, error) {
	return s.FindChunksFn(ctx, filter)
}

func (s *ChunkService) DeleteChunksByRun(ctx context.Context, runID string) error {
	return s.DeleteChunksByRunFn(ctx, runID)
}

var _ casedoc.FailureService = (*FailureService)(nil)

// FailureService is a mock implementation of casedoc.FailureService.
type FailureService struct {
	CreateFailureFn func(ctx context.Context, f *casedoc.FailureRecord) error
	FindFailuresFn  func(ctx context.Context, runID string) ([]*casedoc.FailureRecord, error)
}

func (s *FailureService) CreateFailure(ctx context.Context, f *casedoc.FailureRecord) error {
	return s.CreateFailureFn(ctx, f)
}

func (s *FailureService) FindFailures(ctx context.Context, runID string) ([]*casedoc.FailureRecord, error) {
	return s.FindFailuresFn(ctx, runID)
}

var _ casedoc.ArtifactStore = (*ArtifactStore)(nil)

// ArtifactStore is a mock implementation of casedoc.ArtifactStore.
type ArtifactStore struct {
	SaveFn func(ctx context.Context, a *casedoc.Artifact) error
}

func (s *ArtifactStore) Save(ctx context.Context, a *casedoc.Artifact) error {
	return s.SaveFn(ctx, a)
}
