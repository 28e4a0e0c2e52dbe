package casedoc

import (
	"fmt"
	"strings"
)

// FormatResults renders ranked passages for the terminal. Each passage is
// headed by its rank, citation and score, and passages are separated by
// blank lines.
func FormatResults(results []SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "[%d] %s (score %.1f)\n", i+1, r.Citation.String(), r.Score)
		sb.WriteString(strings.TrimSpace(r.Chunk.Content))
	}
	return sb.String()
}
