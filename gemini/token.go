package gemini

import (
	"context"
	"strings"

	"github.com/fwojciec/casedoc"
	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

var _ casedoc.TokenCounter = (*TokenCounter)(nil)

// TokenCounter sizes extracted document text with the local Gemini tokenizer.
// No API calls are made.
type TokenCounter struct {
	tok *tokenizer.LocalTokenizer
}

// NewTokenCounter creates a TokenCounter for the given model.
func NewTokenCounter(model string) (*TokenCounter, error) {
	tok, err := tokenizer.NewLocalTokenizer(model)
	if err != nil {
		return nil, casedoc.Errorf(casedoc.EINVALID, "no local tokenizer for model %q: %v", model, err)
	}
	return &TokenCounter{tok: tok}, nil
}

// CountTokens counts the tokens of page-delimited raw text. Page markers are
// not counted, so the total reflects what a model would be sent as passages.
func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	pages := casedoc.SplitPages(text)
	if pages == nil {
		pages = []casedoc.PageText{{Text: text}}
	}

	contents := make([]*genai.Content, 0, len(pages))
	for _, p := range pages {
		if strings.TrimSpace(p.Text) == "" {
			continue
		}
		contents = append(contents, genai.NewContentFromText(p.Text, genai.RoleUser))
	}
	if len(contents) == 0 {
		return 0, nil
	}

	result, err := tc.tok.CountTokens(contents, nil)
	if err != nil {
		return 0, casedoc.Errorf(casedoc.EINTERNAL, "count tokens: %v", err)
	}
	return int(result.TotalTokens), nil
}
