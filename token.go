package casedoc

import "context"

// TokenCounter counts model tokens in extracted text.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}
