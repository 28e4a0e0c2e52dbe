package casedoc

import "context"

// Asker answers natural language questions from a run's indexed passages.
type Asker interface {
	// Ask answers a question using the ranked chunks of the given run.
	// Returns ENOTFOUND if no passage matches the question.
	Ask(ctx context.Context, runID string, question string) (string, error)
}
