// Package gemini answers questions over ranked case passages with Google
// Gemini and counts tokens with the Gemini local tokenizer.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/casedoc"
	"google.golang.org/genai"
)

const model = "gemini-2.5-flash"

// DefaultPassages is how many ranked passages are sent with a question.
const DefaultPassages = 20

// Ensure Asker implements casedoc.Asker at compile time.
var _ casedoc.Asker = (*Asker)(nil)

// Asker implements casedoc.Asker using Google Gemini.
type Asker struct {
	client *genai.Client
	search casedoc.SearchService

	// Passages caps the ranked passages included in the prompt.
	Passages int
}

// NewAsker creates a new Asker.
func NewAsker(client *genai.Client, search casedoc.SearchService) *Asker {
	return &Asker{client: client, search: search, Passages: DefaultPassages}
}

// Ask answers a natural language question from a run's ranked passages.
func (a *Asker) Ask(ctx context.Context, runID, question string) (string, error) {
	if runID == "" {
		return "", casedoc.Errorf(casedoc.EINVALID, "run ID required")
	}
	if question == "" {
		return "", casedoc.Errorf(casedoc.EINVALID, "question required")
	}

	results, err := a.search.Search(ctx, question, casedoc.SearchOptions{RunID: runID, Limit: a.Passages})
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", casedoc.Errorf(casedoc.ENOTFOUND, "no passages match the question in run %q", runID)
	}

	prompt := BuildUserPrompt(results, question)
	config := BuildConfig()

	result, err := a.client.Models.GenerateContent(ctx, model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: prompt}},
		}},
		config,
	)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", casedoc.Errorf(casedoc.EINTERNAL, "gemini returned nil result")
	}

	return result.Text(), nil
}

// BuildConfig returns the GenerateContentConfig for Gemini API calls.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0.2)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You are a research assistant answering questions about utility regulatory proceedings. " +
					"Answer based only on the passages provided. Cite every claim with the passage index in brackets, e.g. [2]. " +
					"Quote dollar amounts and percentages exactly as written. If the answer is not in the passages, say so.",
			}},
		},
		Temperature: &temp,
	}
}

// BuildUserPrompt builds the user prompt containing the cited passages and
// the question. Passages keep their rank order and are numbered from 1.
func BuildUserPrompt(results []casedoc.SearchResult, question string) string {
	var sb strings.Builder
	sb.WriteString("<passages>\n")
	for i, r := range results {
		sb.WriteString("<passage>\n")
		fmt.Fprintf(&sb, "<index>%d</index>\n", i+1)
		fmt.Fprintf(&sb, "<citation>%s</citation>\n", r.Citation.String())
		fmt.Fprintf(&sb, "<source>%s</source>\n", r.Citation.DocumentURL)
		fmt.Fprintf(&sb, "<content>%s</content>\n", r.Chunk.Content)
		sb.WriteString("</passage>\n")
	}
	sb.WriteString("</passages>\n\n")
	fmt.Fprintf(&sb, "Question: %s", question)
	return sb.String()
}
