package crawl

import (
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/casedoc"
)

// ComputeHash returns the xxhash of content as hex.
func ComputeHash(content string) string {
	return fmt.Sprintf("%x", xxhash.Sum64String(content))
}

// TruncateURL shortens a URL for display, keeping the end which is more informative.
func TruncateURL(url string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if maxLen < 4 {
		return url[:min(len(url), maxLen)]
	}
	if len(url) <= maxLen {
		return url
	}
	return "..." + url[len(url)-maxLen+3:]
}

// FormatTokens formats token count in human-readable form.
func FormatTokens(tokens int) string {
	if tokens < 1000 {
		return fmt.Sprintf("~%d tokens", tokens)
	}
	return fmt.Sprintf("~%dk tokens", (tokens+500)/1000)
}

// FormatProgress renders a progress snapshot as a single status line, e.g.
// "[42%] 21/50 docs (2 failed) | 3.5 docs/min | ETA 8m17s | 3 workers | ABC-E-24-01 4/9".
func FormatProgress(p casedoc.Progress) string {
	line := fmt.Sprintf("[%.0f%%] %d/%d docs", p.Percent, p.Extracted+p.Failed, p.Total)
	if p.Failed > 0 {
		line += fmt.Sprintf(" (%d failed)", p.Failed)
	}
	if p.DocsPerMinute > 0 {
		eta := time.Duration(p.ETASeconds) * time.Second
		line += fmt.Sprintf(" | %.1f docs/min | ETA %s", p.DocsPerMinute, eta)
	}
	line += fmt.Sprintf(" | %d workers", p.ActiveWorkers)
	if p.CurrentCase != "" {
		line += fmt.Sprintf(" | %s %d/%d", p.CurrentCase, p.CaseDone, p.CaseTotal)
	}
	return line
}

// FormatSummary renders a run summary for display.
func FormatSummary(s *casedoc.RunSummary) string {
	return fmt.Sprintf("%d cases, %d/%d documents extracted (%d degraded, %d failed, %d skipped), %d chunks, %s in %.0fs",
		s.CasesFound, s.DocumentsExtracted, s.DocumentsFound, s.DocumentsDegraded,
		s.DocumentsFailed, s.DocumentsSkipped, s.ChunksIndexed, FormatTokens(s.Tokens), s.ElapsedSeconds)
}
